package tasks

import (
	"fmt"
	"os"
	"path/filepath"

	"spotbatch/internal/playlist"
)

// FailureLog records entries that could not be resolved or added. Lines are
// flushed to disk as they are recorded so an interrupted run still leaves a
// usable log, and the full entries are retained for the failed-tracks M3U.
type FailureLog struct {
	file    *os.File
	entries []playlist.Entry
}

// NewFailureLog truncates or creates the log file at path, creating parent
// directories as needed.
func NewFailureLog(path string) (*FailureLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create failure log: %w", err)
	}

	return &FailureLog{file: f}, nil
}

// Record appends the entry to the log file immediately.
func (l *FailureLog) Record(entry playlist.Entry) error {
	l.entries = append(l.entries, entry)

	if _, err := fmt.Fprintln(l.file, entry.String()); err != nil {
		return fmt.Errorf("failed to write failure log: %w", err)
	}

	return l.file.Sync()
}

// Entries returns all recorded entries in order.
func (l *FailureLog) Entries() []playlist.Entry {
	return l.entries
}

// Len returns the number of recorded failures.
func (l *FailureLog) Len() int {
	return len(l.entries)
}

// Close closes the underlying file.
func (l *FailureLog) Close() error {
	return l.file.Close()
}
