// Package transcript turns a stream of timed segments into paragraph text.
//
// Segments are joined with single spaces. A silence longer than the paragraph
// gap between the previous segment's end and the next segment's start begins a
// new paragraph, written as a blank line.
package transcript

import (
	"fmt"
	"io"
	"strings"

	"github.com/nguyentantai21042004/lecture-scribe/internal/engine"
)

// DefaultParagraphGap is the silence, in seconds, that separates paragraphs.
const DefaultParagraphGap = 2.0

const paragraphBreak = "\n\n"

// Writer applies the paragraph heuristic while copying segment text to an io.Writer
type Writer struct {
	w          io.Writer
	gap        float64
	prevEnd    float64
	segments   int
	paragraphs int
	outOfOrder int
}

// NewWriter wraps w. A non-positive gap falls back to DefaultParagraphGap.
func NewWriter(w io.Writer, gap float64) *Writer {
	if gap <= 0 {
		gap = DefaultParagraphGap
	}
	return &Writer{w: w, gap: gap}
}

// WriteSegment appends one segment. Segments that start before the previous
// one ended are written as-is and only counted.
func (tw *Writer) WriteSegment(seg engine.Segment) error {
	if seg.Start < tw.prevEnd {
		tw.outOfOrder++
	}

	if seg.Start-tw.prevEnd > tw.gap {
		if _, err := io.WriteString(tw.w, paragraphBreak); err != nil {
			return fmt.Errorf("write paragraph break: %w", err)
		}
		tw.paragraphs++
	}

	if _, err := io.WriteString(tw.w, strings.TrimSpace(seg.Text)+" "); err != nil {
		return fmt.Errorf("write segment: %w", err)
	}

	tw.prevEnd = seg.End
	tw.segments++
	return nil
}

// Position is the end time of the last written segment
func (tw *Writer) Position() float64 { return tw.prevEnd }

func (tw *Writer) Segments() int { return tw.segments }

// Breaks is the number of paragraph breaks written
func (tw *Writer) Breaks() int { return tw.paragraphs }

// OutOfOrder counts segments that overlapped or preceded their predecessor
func (tw *Writer) OutOfOrder() int { return tw.outOfOrder }

// Paragraphs splits finished transcript text back into its paragraphs
func Paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, paragraphBreak) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
