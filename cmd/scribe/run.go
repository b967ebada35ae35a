package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nguyentantai21042004/lecture-scribe/internal/audiofile"
	"github.com/nguyentantai21042004/lecture-scribe/internal/config"
	"github.com/nguyentantai21042004/lecture-scribe/internal/engine"
	"github.com/nguyentantai21042004/lecture-scribe/internal/logger"
	"github.com/nguyentantai21042004/lecture-scribe/internal/processor"
	"github.com/nguyentantai21042004/lecture-scribe/internal/progress"
	"github.com/nguyentantai21042004/lecture-scribe/internal/summarizer"
	"github.com/nguyentantai21042004/lecture-scribe/internal/watcher"
	"github.com/nguyentantai21042004/lecture-scribe/pkg/executor"
)

// run executes one batch. Fatal conditions are reported on the console and
// the run ends normally; only flag and config file errors reach cobra.
func run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.NewWithWriter(stdout, cfg.Logging.Level, cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		log.Error(ctx, "Invalid configuration: %v", err)
		return nil
	}
	for _, msg := range cfg.Advisories() {
		log.Warn(ctx, "%s", msg)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := engine.New(cfg, executor.New(), log)
	if err != nil {
		log.Error(ctx, "%v", err)
		return nil
	}

	opts := []processor.Option{
		processor.WithProgress(progress.New(stderr, cfg.Output.Progress && isTerminal(stderr))),
	}
	if cfg.Summary.Enabled {
		opts = append(opts, processor.WithSummarizer(summarizer.New(cfg.Summary.APIKeys, cfg.Summary.Model, log)))
	}

	proc := processor.New(cfg, eng, log, opts...)
	if err := proc.Prepare(ctx); err != nil {
		switch {
		case errors.Is(err, processor.ErrInputDirMissing), errors.Is(err, processor.ErrModelLoad):
			log.Error(ctx, "%v", err)
		default:
			log.Error(ctx, "Setup failed: %v", err)
		}
		return nil
	}
	defer proc.Close()

	if _, err := proc.Run(ctx); err != nil {
		log.Error(ctx, "Run failed: %v", err)
		return nil
	}

	if cfg.Watch.Enabled && ctx.Err() == nil {
		watchInput(ctx, cfg, proc, log)
	}
	return nil
}

func watchInput(ctx context.Context, cfg *config.Config, proc processor.Processor, log logger.Logger) {
	w, err := watcher.New(cfg.Paths.InputDir, newWatchHandler(proc, log), log, 1, cfg.Watch.SettleDelay)
	if err != nil {
		log.Error(ctx, "Failed to create watcher: %v", err)
		return
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "Watcher error: %v", err)
	}
}

// newWatchHandler transcribes files that appear after the batch, logging the
// same header the batch loop prints
func newWatchHandler(proc processor.Processor, log logger.Logger) watcher.EventHandler {
	return func(ctx context.Context, path string) error {
		entry := audiofile.NewEntry(path)
		log.Info(ctx, "")
		log.Info(ctx, "[new] Transcribing: %s", entry.Name)
		return proc.Process(ctx, entry).Err
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && progress.IsTerminal(f)
}
