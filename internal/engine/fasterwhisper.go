package engine

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/lecture-scribe/internal/logger"
	"github.com/nguyentantai21042004/lecture-scribe/pkg/executor"
)

//go:embed assets/faster_whisper_helper.py
var helperScript []byte

// maxEventSize bounds one NDJSON line from the helper.
const maxEventSize = 1024 * 1024

type fasterWhisperEngine struct {
	python      string
	model       string
	device      string
	computeType string
	executor    executor.Executor
	logger      logger.Logger
}

func (e *fasterWhisperEngine) Name() string { return "faster-whisper" }

// Load starts the helper process and blocks until the model is loaded or fails to load
func (e *fasterWhisperEngine) Load(ctx context.Context) (Session, error) {
	version, err := e.executor.Execute(ctx, e.python, "--version")
	if err != nil {
		return nil, fmt.Errorf("python interpreter %q: %w", e.python, err)
	}
	e.logger.Debug(ctx, "Using %s (%s)", e.python, strings.TrimSpace(version))

	scriptPath, err := writeHelperScript()
	if err != nil {
		return nil, err
	}

	proc, err := e.executor.Start(ctx, e.python, "-u", scriptPath,
		"--model", e.model,
		"--device", e.device,
		"--compute_type", e.computeType,
	)
	if err != nil {
		os.Remove(scriptPath)
		return nil, fmt.Errorf("start helper: %w", err)
	}

	s := newHelperSession(proc, func() { os.Remove(scriptPath) })
	if err := s.awaitReady(); err != nil {
		proc.Kill()
		s.Close()
		return nil, err
	}

	e.logger.Debug(ctx, "faster-whisper helper ready (model=%s device=%s compute_type=%s)",
		e.model, e.device, e.computeType)
	return s, nil
}

func writeHelperScript() (string, error) {
	f, err := os.CreateTemp("", "scribe-faster-whisper-*.py")
	if err != nil {
		return "", fmt.Errorf("create helper script: %w", err)
	}
	if _, err := f.Write(helperScript); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write helper script: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write helper script: %w", err)
	}
	return f.Name(), nil
}

type helperRequest struct {
	Path      string `json:"path"`
	BeamSize  int    `json:"beam_size"`
	VADFilter bool   `json:"vad_filter"`
}

type helperEvent struct {
	Event    string  `json:"event"`
	Message  string  `json:"message"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Text     string  `json:"text"`
}

type helperSession struct {
	proc    executor.Process
	events  *bufio.Scanner
	cleanup func()

	mu     sync.Mutex
	busy   bool
	closed bool
	broken error
}

func newHelperSession(proc executor.Process, cleanup func()) *helperSession {
	scanner := bufio.NewScanner(proc.Stdout())
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &helperSession{proc: proc, events: scanner, cleanup: cleanup}
}

func (s *helperSession) awaitReady() error {
	ev, err := s.readEvent()
	if err != nil {
		return err
	}
	switch ev.Event {
	case "ready":
		return nil
	case "error":
		return errors.New(ev.Message)
	default:
		return fmt.Errorf("unexpected helper event %q before ready", ev.Event)
	}
}

func (s *helperSession) readEvent() (helperEvent, error) {
	var ev helperEvent
	if !s.events.Scan() {
		if err := s.events.Err(); err != nil {
			return ev, fmt.Errorf("read helper output: %w", err)
		}
		if msg := lastLine(s.proc.Stderr()); msg != "" {
			return ev, fmt.Errorf("%w: %s", ErrHelperExited, msg)
		}
		return ev, ErrHelperExited
	}
	if err := json.Unmarshal(s.events.Bytes(), &ev); err != nil {
		return ev, fmt.Errorf("decode helper event: %w", err)
	}
	return ev, nil
}

func (s *helperSession) Transcribe(ctx context.Context, path string, opts Options) (Info, SegmentStream, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, nil, err
	}

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return Info{}, nil, ErrSessionClosed
	case s.broken != nil:
		err := s.broken
		s.mu.Unlock()
		return Info{}, nil, err
	case s.busy:
		s.mu.Unlock()
		return Info{}, nil, ErrStreamOpen
	}
	s.busy = true
	s.mu.Unlock()

	req, err := json.Marshal(helperRequest{Path: path, BeamSize: opts.BeamSize, VADFilter: opts.VADFilter})
	if err != nil {
		s.release(nil)
		return Info{}, nil, fmt.Errorf("encode request: %w", err)
	}
	if _, err := s.proc.Stdin().Write(append(req, '\n')); err != nil {
		err = fmt.Errorf("send request: %w", err)
		s.release(err)
		return Info{}, nil, err
	}

	ev, err := s.readEvent()
	if err != nil {
		s.release(err)
		return Info{}, nil, err
	}

	switch ev.Event {
	case "info":
		return Info{Language: ev.Language, Duration: ev.Duration}, &helperStream{session: s, ctx: ctx}, nil
	case "error":
		s.release(nil)
		return Info{}, nil, errors.New(ev.Message)
	default:
		err := fmt.Errorf("unexpected helper event %q", ev.Event)
		s.release(err)
		return Info{}, nil, err
	}
}

// release frees the session for the next request. A non-nil err marks the protocol out of sync.
func (s *helperSession) release(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil && s.broken == nil {
		s.broken = err
	}
}

func (s *helperSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broken
}

func (s *helperSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	broken := s.broken
	s.mu.Unlock()

	defer s.cleanup()

	s.proc.Stdin().Close()
	if broken != nil {
		s.proc.Kill()
	}
	if err := s.proc.Wait(); err != nil && broken == nil {
		return fmt.Errorf("helper exit: %w", err)
	}
	return nil
}

type helperStream struct {
	session *helperSession
	ctx     context.Context
	done    bool
	err     error
}

func (st *helperStream) Next() (Segment, error) {
	if st.done {
		if st.err != nil {
			return Segment{}, st.err
		}
		return Segment{}, io.EOF
	}
	if err := st.ctx.Err(); err != nil {
		return Segment{}, err
	}

	ev, err := st.session.readEvent()
	if err != nil {
		st.finish(err, err)
		return Segment{}, err
	}

	switch ev.Event {
	case "segment":
		return Segment{Start: ev.Start, End: ev.End, Text: ev.Text}, nil
	case "done":
		st.finish(nil, nil)
		return Segment{}, io.EOF
	case "error":
		err := errors.New(ev.Message)
		st.finish(err, nil)
		return Segment{}, err
	default:
		err := fmt.Errorf("unexpected helper event %q", ev.Event)
		st.finish(err, err)
		return Segment{}, err
	}
}

func (st *helperStream) finish(err, protocolErr error) {
	st.done = true
	st.err = err
	st.session.release(protocolErr)
}

// Close abandons unread segments. The helper would keep decoding the rest of
// the file, so it is killed and the session reports ErrAbandoned.
func (st *helperStream) Close() error {
	if st.done {
		return nil
	}
	err := st.ctx.Err()
	if err == nil {
		err = ErrAbandoned
	}
	st.finish(err, err)
	st.session.proc.Kill()
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
