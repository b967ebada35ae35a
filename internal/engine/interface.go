package engine

import "context"

// Segment is a timed span of recognized speech. Times are in seconds.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Info is the metadata known before any segment is decoded.
type Info struct {
	Language string
	// Duration is the total audio length in seconds.
	Duration float64
}

// Options are the decoding parameters passed with each file.
type Options struct {
	BeamSize  int
	VADFilter bool
}

// SegmentStream is a forward-only, single-pass sequence of segments.
// Next returns io.EOF once the sequence is exhausted. Closing a stream before
// io.EOF abandons the remaining segments.
type SegmentStream interface {
	Next() (Segment, error)
	Close() error
}

// Session is a loaded model. It serves one stream at a time.
type Session interface {
	Transcribe(ctx context.Context, path string, opts Options) (Info, SegmentStream, error)
	// Err reports why the session can no longer serve requests. Once non-nil
	// it stays non-nil and the model has to be loaded again.
	Err() error
	Close() error
}

// Engine loads an inference Session
type Engine interface {
	Name() string
	Load(ctx context.Context) (Session, error)
}
