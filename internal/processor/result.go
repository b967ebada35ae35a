package processor

import (
	"time"

	"github.com/nguyentantai21042004/lecture-scribe/internal/audiofile"
)

// Result is the outcome of one file: a written transcript, or Err.
type Result struct {
	Entry      audiofile.Entry
	OutputPath string
	Language   string
	// Duration is the audio length in seconds.
	Duration float64
	Segments int
	Elapsed  time.Duration
	Err      error
}

func (r Result) OK() bool { return r.Err == nil }

// Summary aggregates the results of a run in processing order
type Summary struct {
	Results []Result
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
}

func (s Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

func (s Summary) Failed() int {
	return len(s.Results) - s.Succeeded()
}
