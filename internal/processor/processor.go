package processor

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nguyentantai21042004/lecture-scribe/internal/audiofile"
)

// Prepare validates the directories and loads the inference session.
// It fails with ErrInputDirMissing or ErrModelLoad; nothing is read or loaded
// when the input directory is absent.
func (p *implProcessor) Prepare(ctx context.Context) error {
	info, err := os.Stat(p.cfg.Paths.InputDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: '%s'", ErrInputDirMissing, p.cfg.Paths.InputDir)
	}

	if err := os.MkdirAll(p.cfg.Paths.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output dir %s: %w", p.cfg.Paths.OutputDir, err)
	}

	p.logger.Info(ctx, "Loading %s model on %s (%s backend)...",
		p.cfg.Whisper.Model, p.cfg.Whisper.Device, p.engine.Name())

	session, err := p.engine.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	p.session = session

	return nil
}

// Run discovers the audio files and transcribes them one by one.
// A failed file never stops the batch.
func (p *implProcessor) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	if p.session == nil {
		return summary, ErrNotPrepared
	}

	files, err := audiofile.Discover(p.cfg.Paths.InputDir)
	if err != nil {
		return summary, fmt.Errorf("discover audio files: %w", err)
	}

	if len(files) == 0 {
		p.logger.Warn(ctx, "No audio files found.")
		return summary, nil
	}

	p.logger.Info(ctx, "Found %d lectures. Starting transcription...", len(files))

	for i, file := range files {
		if ctx.Err() != nil {
			p.logger.Warn(ctx, "Interrupted, %d file(s) not processed", len(files)-i)
			break
		}

		p.logger.Info(ctx, "")
		p.logger.Info(ctx, "[%d/%d] Transcribing: %s", i+1, len(files), file.Name)
		summary.add(p.Process(ctx, file))
	}

	if ctx.Err() == nil {
		p.logger.Info(ctx, "")
		p.logger.Info(ctx, "All lectures transcribed!")
	}
	p.logger.Info(ctx, "Summary: %d succeeded, %d failed\n%s",
		summary.Succeeded(), summary.Failed(), RenderSummary(summary))

	return summary, nil
}

// Process transcribes one file into the output directory
func (p *implProcessor) Process(ctx context.Context, entry audiofile.Entry) Result {
	startTime := time.Now()
	res := Result{
		Entry:      entry,
		OutputPath: entry.OutputPath(p.cfg.Paths.OutputDir),
	}

	if p.session == nil {
		res.Err = ErrNotPrepared
		return res
	}

	err := p.ensureSession(ctx)
	if err == nil {
		err = p.transcribe(ctx, entry, &res)
	}
	res.Elapsed = time.Since(startTime)
	if err != nil {
		res.Err = err
		p.logger.Error(ctx, "   %s: %v", entry.Name, err)
		return res
	}

	p.logger.Info(ctx, "   Saved to: %s (Took %.1fs)", res.OutputPath, res.Elapsed.Seconds())

	p.export(ctx, entry, res.OutputPath)
	return res
}

// ensureSession reloads the model when the previous file left the session unusable
func (p *implProcessor) ensureSession(ctx context.Context) error {
	cause := p.session.Err()
	if cause == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.logger.Warn(ctx, "   Inference session lost (%v), reloading %s model...", cause, p.cfg.Whisper.Model)
	if err := p.session.Close(); err != nil {
		p.logger.Debug(ctx, "   Closing failed session: %v", err)
	}

	session, err := p.engine.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	p.session = session
	return nil
}

// export runs the optional follow-up steps. Their failures are warnings only.
func (p *implProcessor) export(ctx context.Context, entry audiofile.Entry, transcriptPath string) {
	if p.cfg.Output.Docx {
		if docxPath, err := p.writeDocx(entry, transcriptPath); err != nil {
			p.logger.Warn(ctx, "   DOCX export failed for %s: %v", entry.Name, err)
		} else {
			p.logger.Info(ctx, "   DOCX: %s", docxPath)
		}
	}

	if p.summarizer != nil {
		if mdPath, err := p.summarizer.Summarize(ctx, entry.BaseName(), transcriptPath); err != nil {
			p.logger.Warn(ctx, "   Summary failed for %s: %v", entry.Name, err)
		} else {
			p.logger.Info(ctx, "   Summary: %s", mdPath)
		}
	}
}

func (p *implProcessor) Close() error {
	if p.session == nil {
		return nil
	}
	err := p.session.Close()
	p.session = nil
	return err
}
