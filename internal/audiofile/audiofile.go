// Package audiofile finds the audio files a run will transcribe.
package audiofile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TranscriptExt is the extension of every transcript written for an Entry.
const TranscriptExt = ".txt"

var supportedFormats = []string{".mp3", ".wav", ".m4a", ".flac", ".ogg", ".aac"}

// Entry is one audio file queued for transcription
type Entry struct {
	Name string
	Path string
}

// NewEntry builds an Entry from a file path
func NewEntry(path string) Entry {
	return Entry{Name: filepath.Base(path), Path: path}
}

// BaseName is the file name without its extension
func (e Entry) BaseName() string {
	ext := filepath.Ext(e.Name)
	// leading dots do not start an extension: ".mp3" has none
	if strings.TrimLeft(e.Name, ".") == strings.TrimLeft(ext, ".") {
		return e.Name
	}
	return strings.TrimSuffix(e.Name, ext)
}

// OutputPath is where the transcript for e goes inside outputDir
func (e Entry) OutputPath(outputDir string) string {
	return filepath.Join(outputDir, e.BaseName()+TranscriptExt)
}

// IsAudio checks if the file has a supported audio extension, ignoring case
func IsAudio(path string) bool {
	lower := strings.ToLower(path)
	for _, format := range supportedFormats {
		if strings.HasSuffix(lower, format) {
			return true
		}
	}
	return false
}

// Discover lists the audio files directly inside dir in directory order.
// Subdirectories are not descended into.
func Discover(dir string) ([]Entry, error) {
	// os.ReadDir sorts by name; File.ReadDir keeps the filesystem's order.
	d, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open input dir: %w", err)
	}
	defer d.Close()

	entries, err := d.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var files []Entry
	for _, e := range entries {
		if e.IsDir() || !IsAudio(e.Name()) {
			continue
		}
		files = append(files, Entry{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}

	return files, nil
}
