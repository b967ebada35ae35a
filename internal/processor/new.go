package processor

import (
	"github.com/nguyentantai21042004/lecture-scribe/internal/config"
	"github.com/nguyentantai21042004/lecture-scribe/internal/engine"
	"github.com/nguyentantai21042004/lecture-scribe/internal/logger"
	"github.com/nguyentantai21042004/lecture-scribe/internal/progress"
	"github.com/nguyentantai21042004/lecture-scribe/internal/summarizer"
)

type implProcessor struct {
	cfg        *config.Config
	engine     engine.Engine
	session    engine.Session
	logger     logger.Logger
	progress   progress.Factory
	summarizer summarizer.Summarizer
}

// Option customizes a Processor
type Option func(*implProcessor)

// WithProgress sets how per-file progress bars are rendered
func WithProgress(f progress.Factory) Option {
	return func(p *implProcessor) { p.progress = f }
}

// WithSummarizer enables a summary for every successful transcript
func WithSummarizer(s summarizer.Summarizer) Option {
	return func(p *implProcessor) { p.summarizer = s }
}

// New creates a new Processor instance
func New(cfg *config.Config, eng engine.Engine, log logger.Logger, opts ...Option) Processor {
	p := &implProcessor{
		cfg:      cfg,
		engine:   eng,
		logger:   log,
		progress: progress.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
