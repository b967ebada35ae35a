package processor

import (
	"bufio"
	"fmt"
	"os"
)

// partialSuffix marks a transcript that is still being written.
const partialSuffix = ".partial"

// partialFile buffers a transcript next to its final path and moves it into
// place on Commit. Discard removes it; after Commit it is a no-op.
type partialFile struct {
	file      *os.File
	buf       *bufio.Writer
	finalPath string
	done      bool
}

func createPartial(finalPath string) (*partialFile, error) {
	f, err := os.Create(finalPath + partialSuffix)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &partialFile{file: f, buf: bufio.NewWriter(f), finalPath: finalPath}, nil
}

func (pf *partialFile) Write(b []byte) (int, error) {
	return pf.buf.Write(b)
}

// Commit flushes and closes the file, then replaces finalPath with it
func (pf *partialFile) Commit() error {
	if pf.done {
		return nil
	}
	pf.done = true

	if err := pf.buf.Flush(); err != nil {
		pf.file.Close()
		os.Remove(pf.file.Name())
		return fmt.Errorf("flush output file: %w", err)
	}
	if err := pf.file.Close(); err != nil {
		os.Remove(pf.file.Name())
		return fmt.Errorf("close output file: %w", err)
	}
	if err := os.Rename(pf.file.Name(), pf.finalPath); err != nil {
		os.Remove(pf.file.Name())
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}

// Discard closes and removes the partial file
func (pf *partialFile) Discard() {
	if pf.done {
		return
	}
	pf.done = true
	pf.file.Close()
	os.Remove(pf.file.Name())
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
