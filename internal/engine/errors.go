package engine

import "errors"

var (
	ErrSessionClosed = errors.New("engine: session closed")
	ErrStreamOpen    = errors.New("engine: previous segment stream still open")
	ErrHelperExited  = errors.New("engine: helper process exited")
	ErrAbandoned     = errors.New("engine: stream closed before the last segment")
)
