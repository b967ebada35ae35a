package processor

import (
	"context"

	"github.com/nguyentantai21042004/lecture-scribe/internal/audiofile"
)

// Processor drives a batch transcription run
type Processor interface {
	// Prepare checks the input and output directories and loads the model once.
	Prepare(ctx context.Context) error
	// Run transcribes every audio file found in the input directory.
	Run(ctx context.Context) (Summary, error)
	// Process transcribes a single file. Failures are reported in the Result.
	Process(ctx context.Context, entry audiofile.Entry) Result
	Close() error
}
