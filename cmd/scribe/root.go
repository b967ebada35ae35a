package main

import (
	"github.com/nguyentantai21042004/lecture-scribe/internal/config"
	"github.com/spf13/cobra"
)

type flagValues struct {
	configPath  string
	inputDir    string
	outputDir   string
	model       string
	device      string
	computeType string
	beamSize    int
	backend     string
	logLevel    string
	watch       bool
	docx        bool
	summarize   bool
	noProgress  bool
}

func newRootCommand() *cobra.Command {
	var flags flagValues
	defaults := config.Default()

	rootCmd := &cobra.Command{
		Use:           "scribe",
		Short:         "Batch transcribe lectures with Whisper",
		Long:          "Transcribes every audio file in a folder into a text file, starting a new paragraph after long pauses.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := rootCmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "", "Configuration file path (YAML)")

	// Paths
	f.StringVar(&flags.inputDir, "input_dir", defaults.Paths.InputDir, "Folder containing audio files")
	f.StringVar(&flags.outputDir, "output_dir", defaults.Paths.OutputDir, "Folder to save text files")

	// Model settings
	f.StringVar(&flags.model, "model", defaults.Whisper.Model, "tiny, base, small, medium, large-v2")
	f.StringVar(&flags.device, "device", defaults.Whisper.Device, "cpu or cuda (use cuda if you have a GPU)")
	f.StringVar(&flags.computeType, "compute_type", defaults.Whisper.ComputeType, "int8, float16")
	f.StringVar(&flags.backend, "backend", defaults.Whisper.Backend, "Inference backend: faster-whisper or openai")

	// Tuning
	f.IntVar(&flags.beamSize, "beam_size", defaults.Whisper.BeamSize, "Beam size (1-10). Higher = more accurate but slower.")

	// Extras
	f.StringVar(&flags.logLevel, "log_level", defaults.Logging.Level, "debug, info, warn, error")
	f.BoolVar(&flags.watch, "watch", false, "Keep watching input_dir for new audio files after the batch")
	f.BoolVar(&flags.docx, "docx", false, "Also write a .docx copy of each transcript")
	f.BoolVar(&flags.summarize, "summarize", false, "Summarize each transcript with Gemini (needs GEMINI_API_KEYS)")
	f.BoolVar(&flags.noProgress, "no_progress", false, "Disable the progress bar")

	return rootCmd
}

// resolveConfig layers defaults, the optional config file, and flags the user actually set
func resolveConfig(cmd *cobra.Command, flags flagValues) (*config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	changed := cmd.Flags().Changed
	if changed("input_dir") {
		cfg.Paths.InputDir = flags.inputDir
	}
	if changed("output_dir") {
		cfg.Paths.OutputDir = flags.outputDir
	}
	if changed("model") {
		cfg.Whisper.Model = flags.model
	}
	if changed("device") {
		cfg.Whisper.Device = flags.device
	}
	if changed("compute_type") {
		cfg.Whisper.ComputeType = flags.computeType
	}
	if changed("beam_size") {
		cfg.Whisper.BeamSize = flags.beamSize
	}
	if changed("backend") {
		cfg.Whisper.Backend = flags.backend
	}
	if changed("log_level") {
		cfg.Logging.Level = flags.logLevel
	}
	if changed("watch") {
		cfg.Watch.Enabled = flags.watch
	}
	if changed("docx") {
		cfg.Output.Docx = flags.docx
	}
	if changed("summarize") {
		cfg.Summary.Enabled = flags.summarize
	}
	if flags.noProgress {
		cfg.Output.Progress = false
	}

	cfg.ApplyEnv()
	return &cfg, nil
}
