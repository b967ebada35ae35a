package processor

import "errors"

var (
	ErrInputDirMissing = errors.New("input directory not found")
	ErrModelLoad       = errors.New("failed to load model")
	ErrNotPrepared     = errors.New("processor not prepared")
)
