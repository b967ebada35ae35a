package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/lecture-scribe/internal/config"
	"github.com/nguyentantai21042004/lecture-scribe/internal/logger"
	"github.com/nguyentantai21042004/lecture-scribe/pkg/executor"
)

// handleFunc answers one request. Returning false makes the fake helper exit.
type handleFunc func(req helperRequest, emit func(helperEvent)) bool

type fakeProcess struct {
	stdinR  *io.PipeReader
	stdinW  *io.PipeWriter
	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter
	done    chan struct{}

	mu       sync.Mutex
	stderr   string
	requests []helperRequest
}

func startFakeProcess(startup helperEvent, handle handleFunc) *fakeProcess {
	p := &fakeProcess{done: make(chan struct{})}
	p.stdinR, p.stdinW = io.Pipe()
	p.stdoutR, p.stdoutW = io.Pipe()

	go func() {
		defer close(p.done)
		defer p.stdoutW.Close()

		enc := json.NewEncoder(p.stdoutW)
		emit := func(ev helperEvent) { enc.Encode(ev) }

		emit(startup)
		if startup.Event != "ready" {
			return
		}

		scanner := bufio.NewScanner(p.stdinR)
		for scanner.Scan() {
			var req helperRequest
			if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
				emit(helperEvent{Event: "error", Message: err.Error()})
				continue
			}
			p.mu.Lock()
			p.requests = append(p.requests, req)
			p.mu.Unlock()
			if !handle(req, emit) {
				return
			}
		}
	}()
	return p
}

func (p *fakeProcess) Stdin() io.WriteCloser { return p.stdinW }
func (p *fakeProcess) Stdout() io.Reader     { return p.stdoutR }

func (p *fakeProcess) Stderr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stderr
}

func (p *fakeProcess) setStderr(s string) {
	p.mu.Lock()
	p.stderr = s
	p.mu.Unlock()
}

func (p *fakeProcess) Wait() error {
	<-p.done
	return nil
}

func (p *fakeProcess) Kill() error {
	p.stdoutR.CloseWithError(errors.New("killed"))
	p.stdinR.Close()
	return nil
}

type fakeExecutor struct {
	versionErr error
	proc       *fakeProcess
	startArgs  []string
}

func (e *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	if e.versionErr != nil {
		return "", e.versionErr
	}
	return "Python 3.11.9\n", nil
}

func (e *fakeExecutor) Start(ctx context.Context, name string, args ...string) (executor.Process, error) {
	e.startArgs = append([]string{name}, args...)
	return e.proc, nil
}

func newTestEngine(t *testing.T, exec *fakeExecutor) Engine {
	t.Helper()
	cfg := config.Default()
	eng, err := New(&cfg, exec, logger.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return eng
}

// lectureHandler streams two segments per file, echoing the file name into the text.
func lectureHandler(req helperRequest, emit func(helperEvent)) bool {
	emit(helperEvent{Event: "info", Language: "en", Duration: 600})
	emit(helperEvent{Event: "segment", Start: 0, End: 5, Text: " Hello " + req.Path})
	emit(helperEvent{Event: "segment", Start: 8, End: 12, Text: " Today we begin"})
	emit(helperEvent{Event: "done"})
	return true
}

func collect(t *testing.T, stream SegmentStream) []Segment {
	t.Helper()
	var out []Segment
	for {
		seg, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		out = append(out, seg)
	}
}

func TestFasterWhisperStreamsSegments(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{proc: startFakeProcess(helperEvent{Event: "ready"}, lectureHandler)}

	session, err := newTestEngine(t, exec).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer session.Close()

	args := strings.Join(exec.startArgs, " ")
	for _, want := range []string{"python3", "--model medium", "--device cpu", "--compute_type int8"} {
		if !strings.Contains(args, want) {
			t.Errorf("helper args %q missing %q", args, want)
		}
	}

	for _, file := range []string{"a.wav", "b.mp3"} {
		info, stream, err := session.Transcribe(ctx, file, Options{BeamSize: 3, VADFilter: true})
		if err != nil {
			t.Fatalf("Transcribe(%s) error = %v", file, err)
		}
		if info.Language != "en" || info.Duration != 600 {
			t.Errorf("info = %+v, want en/600", info)
		}
		segs := collect(t, stream)
		if len(segs) != 2 {
			t.Fatalf("got %d segments, want 2", len(segs))
		}
		if segs[0].Text != " Hello "+file || segs[1].Start != 8 || segs[1].End != 12 {
			t.Errorf("segments = %+v", segs)
		}
		if err := stream.Close(); err != nil {
			t.Errorf("stream Close() error = %v", err)
		}
	}

	exec.proc.mu.Lock()
	reqs := exec.proc.requests
	exec.proc.mu.Unlock()
	if len(reqs) != 2 || reqs[0].BeamSize != 3 || !reqs[0].VADFilter {
		t.Errorf("requests = %+v", reqs)
	}
}

func TestFasterWhisperLoadError(t *testing.T) {
	exec := &fakeExecutor{proc: startFakeProcess(
		helperEvent{Event: "error", Message: "unsupported device: tpu"}, nil)}

	_, err := newTestEngine(t, exec).Load(context.Background())
	if err == nil {
		t.Fatal("Load() should fail when the helper reports a load error")
	}
	if !strings.Contains(err.Error(), "unsupported device: tpu") {
		t.Errorf("error = %v, want the helper message", err)
	}
}

func TestFasterWhisperMissingInterpreter(t *testing.T) {
	exec := &fakeExecutor{versionErr: errors.New("executable file not found in $PATH")}

	_, err := newTestEngine(t, exec).Load(context.Background())
	if err == nil {
		t.Fatal("Load() should fail without a python interpreter")
	}
	if exec.startArgs != nil {
		t.Error("helper should not be started when the interpreter check fails")
	}
}

func TestFasterWhisperFileErrorIsolated(t *testing.T) {
	ctx := context.Background()
	handler := func(req helperRequest, emit func(helperEvent)) bool {
		if req.Path == "corrupt.wav" {
			emit(helperEvent{Event: "error", Message: "Invalid data found when processing input"})
			return true
		}
		return lectureHandler(req, emit)
	}
	exec := &fakeExecutor{proc: startFakeProcess(helperEvent{Event: "ready"}, handler)}

	session, err := newTestEngine(t, exec).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer session.Close()

	if _, _, err := session.Transcribe(ctx, "corrupt.wav", Options{BeamSize: 1}); err == nil {
		t.Fatal("Transcribe(corrupt.wav) should fail")
	}

	_, stream, err := session.Transcribe(ctx, "good.wav", Options{BeamSize: 1})
	if err != nil {
		t.Fatalf("Transcribe(good.wav) after failure error = %v", err)
	}
	if got := len(collect(t, stream)); got != 2 {
		t.Errorf("got %d segments, want 2", got)
	}
}

func TestFasterWhisperMidStreamError(t *testing.T) {
	ctx := context.Background()
	handler := func(req helperRequest, emit func(helperEvent)) bool {
		emit(helperEvent{Event: "info", Language: "fr", Duration: 30})
		emit(helperEvent{Event: "segment", Start: 0, End: 2, Text: "Bonjour"})
		emit(helperEvent{Event: "error", Message: "decode failed"})
		return true
	}
	exec := &fakeExecutor{proc: startFakeProcess(helperEvent{Event: "ready"}, handler)}

	session, err := newTestEngine(t, exec).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer session.Close()

	_, stream, err := session.Transcribe(ctx, "x.wav", Options{BeamSize: 1})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if _, err := stream.Next(); err != nil {
		t.Fatalf("first Next() error = %v", err)
	}
	if _, err := stream.Next(); err == nil || err.Error() != "decode failed" {
		t.Fatalf("second Next() error = %v, want decode failed", err)
	}
	stream.Close()

	// the helper recovered, so the session is usable again
	if _, stream, err = session.Transcribe(ctx, "y.wav", Options{BeamSize: 1}); err != nil {
		t.Fatalf("Transcribe() after stream error = %v", err)
	}
	stream.Close()
}

func TestFasterWhisperEarlyCloseStopsHelper(t *testing.T) {
	ctx := context.Background()
	handler := func(req helperRequest, emit func(helperEvent)) bool {
		emit(helperEvent{Event: "info", Language: "en", Duration: 100})
		for i := 0; i < 5; i++ {
			emit(helperEvent{Event: "segment", Start: float64(i * 10), End: float64(i*10 + 5), Text: fmt.Sprintf("%s-%d", req.Path, i)})
		}
		emit(helperEvent{Event: "done"})
		return true
	}
	exec := &fakeExecutor{proc: startFakeProcess(helperEvent{Event: "ready"}, handler)}

	session, err := newTestEngine(t, exec).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer session.Close()

	if err := session.Err(); err != nil {
		t.Fatalf("Err() on a fresh session = %v", err)
	}

	_, stream, err := session.Transcribe(ctx, "first", Options{BeamSize: 1})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if _, err := stream.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if !errors.Is(session.Err(), ErrAbandoned) {
		t.Errorf("Err() = %v, want ErrAbandoned", session.Err())
	}
	if _, _, err := session.Transcribe(ctx, "second", Options{BeamSize: 1}); !errors.Is(err, ErrAbandoned) {
		t.Errorf("Transcribe() after early close error = %v, want ErrAbandoned", err)
	}

	select {
	case <-exec.proc.done:
	case <-time.After(2 * time.Second):
		t.Error("helper should be stopped after an early close")
	}
}

func TestFasterWhisperHelperExit(t *testing.T) {
	ctx := context.Background()
	var proc *fakeProcess
	handler := func(req helperRequest, emit func(helperEvent)) bool {
		emit(helperEvent{Event: "info", Language: "en", Duration: 60})
		proc.setStderr("Traceback (most recent call last):\nRuntimeError: CUDA out of memory")
		return false
	}
	proc = startFakeProcess(helperEvent{Event: "ready"}, handler)
	exec := &fakeExecutor{proc: proc}

	session, err := newTestEngine(t, exec).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer session.Close()

	_, stream, err := session.Transcribe(ctx, "long.wav", Options{BeamSize: 1})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	_, err = stream.Next()
	if !errors.Is(err, ErrHelperExited) {
		t.Fatalf("Next() error = %v, want ErrHelperExited", err)
	}
	if !strings.Contains(err.Error(), "CUDA out of memory") {
		t.Errorf("error = %v, want last stderr line", err)
	}

	if !errors.Is(session.Err(), ErrHelperExited) {
		t.Errorf("Err() = %v, want ErrHelperExited", session.Err())
	}
	if _, _, err := session.Transcribe(ctx, "next.wav", Options{BeamSize: 1}); err == nil {
		t.Error("Transcribe() on a dead helper should fail")
	}
}

func TestFasterWhisperOneStreamAtATime(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{proc: startFakeProcess(helperEvent{Event: "ready"}, lectureHandler)}

	session, err := newTestEngine(t, exec).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer session.Close()

	_, stream, err := session.Transcribe(ctx, "a.wav", Options{BeamSize: 1})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if _, _, err := session.Transcribe(ctx, "b.wav", Options{BeamSize: 1}); !errors.Is(err, ErrStreamOpen) {
		t.Errorf("second Transcribe() error = %v, want ErrStreamOpen", err)
	}
	stream.Close()
}

func TestFasterWhisperClosedSession(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{proc: startFakeProcess(helperEvent{Event: "ready"}, lectureHandler)}

	session, err := newTestEngine(t, exec).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, _, err := session.Transcribe(ctx, "a.wav", Options{BeamSize: 1}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Transcribe() error = %v, want ErrSessionClosed", err)
	}
}

func TestLastLine(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"single", "single"},
		{"a\nb\nValueError: bad\n", "ValueError: bad"},
	}
	for _, tt := range tests {
		if got := lastLine(tt.in); got != tt.want {
			t.Errorf("lastLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
