// Package progress renders how many seconds of audio a transcription has covered.
package progress

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Bar tracks audio seconds processed for one file
type Bar interface {
	// Set moves the bar to seconds. The bar never moves backwards or past the total.
	Set(seconds float64)
	Finish()
}

// Factory creates a Bar for a file of the given total duration in seconds
type Factory func(total float64) Bar

// New returns a Factory rendering to w, or a no-op Factory when disabled
func New(w io.Writer, enabled bool) Factory {
	if !enabled {
		return Nop()
	}
	return func(total float64) Bar {
		pb := progressbar.NewOptions64(int64(math.Ceil(total)),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("   "),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("s"),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		)
		return newTracker(total, func(n int64) { pb.Set64(n) }, func() { pb.Finish() })
	}
}

// Nop returns a Factory whose bars render nothing
func Nop() Factory {
	return func(total float64) Bar { return newTracker(total, func(int64) {}, func() {}) }
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type tracker struct {
	total    float64
	current  float64
	finished bool
	set      func(int64)
	finish   func()
}

func newTracker(total float64, set func(int64), finish func()) *tracker {
	if total < 0 || math.IsNaN(total) {
		total = 0
	}
	return &tracker{total: total, set: set, finish: finish}
}

func (t *tracker) Set(seconds float64) {
	if t.finished || math.IsNaN(seconds) {
		return
	}
	if seconds > t.total {
		seconds = t.total
	}
	if seconds <= t.current {
		return
	}
	t.current = seconds
	t.set(int64(math.Round(seconds)))
}

func (t *tracker) Finish() {
	if t.finished {
		return
	}
	t.finished = true
	t.finish()
}

// Current is the furthest position reported so far
func (t *tracker) Current() float64 { return t.current }
