package executor

import (
	"context"
	"io"
)

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	Start(ctx context.Context, name string, args ...string) (Process, error)
}

// Process is a long-running command with piped stdin and stdout
type Process interface {
	Stdin() io.WriteCloser
	Stdout() io.Reader
	// Stderr returns the most recent stderr output, trimmed.
	Stderr() string
	Wait() error
	Kill() error
}
