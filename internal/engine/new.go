package engine

import (
	"fmt"

	"github.com/nguyentantai21042004/lecture-scribe/internal/config"
	"github.com/nguyentantai21042004/lecture-scribe/internal/logger"
	"github.com/nguyentantai21042004/lecture-scribe/pkg/executor"
)

// New picks the Engine implementation named by cfg.Whisper.Backend
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) (Engine, error) {
	switch cfg.Whisper.Backend {
	case config.BackendFasterWhisper, "":
		return &fasterWhisperEngine{
			python:      cfg.Whisper.Python,
			model:       cfg.Whisper.Model,
			device:      cfg.Whisper.Device,
			computeType: cfg.Whisper.ComputeType,
			executor:    exec,
			logger:      log,
		}, nil
	case config.BackendOpenAI:
		return &openAIEngine{
			cfg:    cfg.OpenAI,
			logger: log,
		}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Whisper.Backend)
	}
}
