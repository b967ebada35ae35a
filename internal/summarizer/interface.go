package summarizer

import "context"

// Summarizer writes an LLM-generated markdown summary next to a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, title, transcriptPath string) (string, error)
}
