package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyentantai21042004/lecture-scribe/internal/audiofile"
	"github.com/nguyentantai21042004/lecture-scribe/internal/engine"
	"github.com/nguyentantai21042004/lecture-scribe/internal/transcript"
)

// transcribe runs inference on one file and streams the segments into its
// transcript. The transcript only appears at res.OutputPath on success.
func (p *implProcessor) transcribe(ctx context.Context, entry audiofile.Entry, res *Result) error {
	info, stream, err := p.session.Transcribe(ctx, entry.Path, engine.Options{
		BeamSize:  p.cfg.Whisper.BeamSize,
		VADFilter: p.cfg.Whisper.VADFilter,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	res.Language = info.Language
	res.Duration = info.Duration
	p.logger.Info(ctx, "   Language: %s | Duration: %.2f min", strings.ToUpper(info.Language), info.Duration/60)

	out, err := createPartial(res.OutputPath)
	if err != nil {
		return err
	}
	defer out.Discard()

	bar := p.progress(info.Duration)
	defer bar.Finish()

	tw := transcript.NewWriter(out, p.cfg.Output.ParagraphGap)
	for {
		seg, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("segment %d: %w", tw.Segments()+1, err)
		}

		if err := tw.WriteSegment(seg); err != nil {
			return err
		}
		bar.Set(seg.End)
	}
	bar.Finish()

	res.Segments = tw.Segments()
	p.logger.Debug(ctx, "   %d segment(s), %d paragraph break(s), speech ends at %.1fs",
		tw.Segments(), tw.Breaks(), tw.Position())
	if n := tw.OutOfOrder(); n > 0 {
		p.logger.Debug(ctx, "   %d segment(s) in %s started before the previous one ended", n, entry.Name)
	}

	return out.Commit()
}

func (p *implProcessor) writeDocx(entry audiofile.Entry, transcriptPath string) (string, error) {
	text, err := readFile(transcriptPath)
	if err != nil {
		return "", err
	}
	docxPath := strings.TrimSuffix(transcriptPath, audiofile.TranscriptExt) + ".docx"
	if err := transcript.WriteDocx(entry.BaseName(), text, docxPath); err != nil {
		return "", err
	}
	return docxPath, nil
}
