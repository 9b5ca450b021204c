package tasks

import (
	"fmt"

	"spotbatch/internal/playlist"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ReadBatch Phase = iota
	ResolveTracks
	FlushChunk
	FetchPlaylist
	WriteBackup
)

func (p Phase) String() string {
	switch p {
	case ReadBatch:
		return "read_batch"
	case ResolveTracks:
		return "resolve_tracks"
	case FlushChunk:
		return "flush_chunk"
	case FetchPlaylist:
		return "fetch_playlist"
	case WriteBackup:
		return "write_backup"
	default:
		return ""
	}
}

func readBatchUpdate(step, total int, path string, entries int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Reading batch %s (%d entries)", step, total, path, entries),
	}
}

func resolveUpdate(step, total int, entry playlist.Entry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: entry.String(),
	}
}

func resolveFailedUpdate(step, total int, entry playlist.Entry, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✗ %s: %v", entry, err),
	}
}

func flushUpdate(count, added int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FlushChunk,
		Step:    added,
		Total:   added + count,
		Message: fmt.Sprintf("Added chunk of %d tracks to playlist", count),
	}
}

func flushFailedUpdate(count int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FlushChunk,
		Step:    0,
		Total:   count,
		Message: fmt.Sprintf("✗ Failed to add chunk of %d tracks: %v", count, err),
	}
}

func fetchPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching %s...", step, total, name),
	}
}

func writeBackupUpdate(step, total int, name string, files int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteBackup,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, files),
	}
}
