package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nguyentantai21042004/lecture-scribe/internal/logger"
	"gopkg.in/yaml.v3"
)

const (
	BackendFasterWhisper = "faster-whisper"
	BackendOpenAI        = "openai"

	// cpuBeamLimit is the widest beam that stays reasonably fast without an accelerator.
	cpuBeamLimit = 3
)

type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Whisper WhisperConfig `yaml:"whisper"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Output  OutputConfig  `yaml:"output"`
	Summary SummaryConfig `yaml:"summary"`
	Logging LoggingConfig `yaml:"logging"`
	Watch   WatchConfig   `yaml:"watch"`
}

type PathsConfig struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
}

type WhisperConfig struct {
	Backend     string `yaml:"backend"`
	Model       string `yaml:"model"`
	Device      string `yaml:"device"`
	ComputeType string `yaml:"compute_type"`
	BeamSize    int    `yaml:"beam_size"`
	VADFilter   bool   `yaml:"vad_filter"`
	Python      string `yaml:"python"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type OutputConfig struct {
	// ParagraphGap is the silence, in seconds, that starts a new paragraph.
	ParagraphGap float64 `yaml:"paragraph_gap"`
	Docx         bool    `yaml:"docx"`
	Progress     bool    `yaml:"progress"`
}

type SummaryConfig struct {
	Enabled bool     `yaml:"enabled"`
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WatchConfig struct {
	Enabled     bool          `yaml:"enabled"`
	SettleDelay time.Duration `yaml:"settle_delay"`
}

// Default returns the configuration used when no file or flag overrides a value
func Default() Config {
	return Config{
		Paths: PathsConfig{
			InputDir:  "audios",
			OutputDir: "transcripts",
		},
		Whisper: WhisperConfig{
			Backend:     BackendFasterWhisper,
			Model:       "medium",
			Device:      "cpu",
			ComputeType: "int8",
			BeamSize:    3,
			VADFilter:   true,
			Python:      "python3",
		},
		OpenAI: OpenAIConfig{
			Model: "whisper-1",
		},
		Output: OutputConfig{
			ParagraphGap: 2.0,
			Progress:     true,
		},
		Summary: SummaryConfig{
			Model: "gemini-2.5-flash",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "plain",
		},
		Watch: WatchConfig{
			SettleDelay: 500 * time.Millisecond,
		},
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep their default.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv fills credentials left empty from the environment
func (c *Config) ApplyEnv() {
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if len(c.Summary.APIKeys) == 0 {
		for _, key := range strings.Split(os.Getenv("GEMINI_API_KEYS"), ",") {
			if key = strings.TrimSpace(key); key != "" {
				c.Summary.APIKeys = append(c.Summary.APIKeys, key)
			}
		}
	}
}

func (c *Config) Validate() error {
	if c.Paths.InputDir == "" {
		return fmt.Errorf("paths.input_dir is required")
	}
	if c.Paths.OutputDir == "" {
		return fmt.Errorf("paths.output_dir is required")
	}
	if c.Whisper.Model == "" {
		return fmt.Errorf("whisper.model is required")
	}
	if c.Whisper.BeamSize <= 0 {
		return fmt.Errorf("whisper.beam_size must be a positive integer, got %d", c.Whisper.BeamSize)
	}
	if c.Output.ParagraphGap <= 0 {
		return fmt.Errorf("output.paragraph_gap must be positive, got %v", c.Output.ParagraphGap)
	}

	switch c.Whisper.Backend {
	case "":
		c.Whisper.Backend = BackendFasterWhisper
	case BackendFasterWhisper, BackendOpenAI:
	default:
		return fmt.Errorf("whisper.backend %q is not supported (use %s or %s)",
			c.Whisper.Backend, BackendFasterWhisper, BackendOpenAI)
	}

	if c.Summary.Enabled && len(c.Summary.APIKeys) == 0 {
		return fmt.Errorf("summary.api_keys is required when summaries are enabled")
	}

	if c.Whisper.Device == "" {
		c.Whisper.Device = "cpu"
	}
	if c.Whisper.ComputeType == "" {
		c.Whisper.ComputeType = "int8"
	}
	if c.Whisper.Python == "" {
		c.Whisper.Python = "python3"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "whisper-1"
	}
	if c.Summary.Model == "" {
		c.Summary.Model = "gemini-2.5-flash"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if !logger.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "":
		c.Logging.Format = logger.FormatPlain
	case logger.FormatPlain, logger.FormatText:
	default:
		return fmt.Errorf("logging.format %q is not one of plain, text", c.Logging.Format)
	}
	if c.Watch.SettleDelay <= 0 {
		c.Watch.SettleDelay = 500 * time.Millisecond
	}

	return nil
}

// Advisories returns non-fatal warnings about the resolved settings
func (c *Config) Advisories() []string {
	var out []string
	if strings.EqualFold(c.Whisper.Device, "cpu") && c.Whisper.BeamSize > cpuBeamLimit {
		out = append(out, fmt.Sprintf(
			"You are using device='cpu' with a beam_size of %d. This may be slow. "+
				"Consider using --beam_size 1 or --beam_size 2 for faster CPU performance.",
			c.Whisper.BeamSize))
	}
	return out
}
