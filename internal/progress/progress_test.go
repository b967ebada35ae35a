package progress

import (
	"bytes"
	"math"
	"testing"
)

func TestTrackerMonotonicAndBounded(t *testing.T) {
	var sets []int64
	tr := newTracker(600, func(n int64) { sets = append(sets, n) }, func() {})

	for _, s := range []float64{5, 12, 10, 12, 700, 650} {
		tr.Set(s)
	}

	want := []int64{5, 12, 600}
	if len(sets) != len(want) {
		t.Fatalf("sets = %v, want %v", sets, want)
	}
	for i := range want {
		if sets[i] != want[i] {
			t.Errorf("sets[%d] = %d, want %d", i, sets[i], want[i])
		}
	}
	if tr.Current() != 600 {
		t.Errorf("Current() = %v, want 600", tr.Current())
	}
}

func TestTrackerIgnoresNaNAndNegativeTotal(t *testing.T) {
	calls := 0
	tr := newTracker(-1, func(int64) { calls++ }, func() {})
	tr.Set(math.NaN())
	tr.Set(3)
	if calls != 0 {
		t.Errorf("set called %d times for a zero-length file", calls)
	}
}

func TestTrackerFinishOnce(t *testing.T) {
	finishes := 0
	tr := newTracker(10, func(int64) {}, func() { finishes++ })
	tr.Finish()
	tr.Finish()
	tr.Set(5)
	if finishes != 1 {
		t.Errorf("finish called %d times, want 1", finishes)
	}
	if tr.Current() != 0 {
		t.Errorf("Set after Finish moved the bar to %v", tr.Current())
	}
}

func TestNewDisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	bar := New(&buf, false)(120)
	bar.Set(60)
	bar.Finish()
	if buf.Len() != 0 {
		t.Errorf("disabled bar wrote %q", buf.String())
	}
}
