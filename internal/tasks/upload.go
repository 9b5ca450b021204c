// package tasks implements the batch upload and backup pipelines.
//
// The core abstraction is UploadEngine, which resolves batch file entries to
// catalog track IDs and appends them to a remote playlist in order.
// Operations emit progress updates via channels for non-blocking status
// reporting to the CLI layer.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"spotbatch/internal/playlist"
	"spotbatch/internal/services"
	"spotbatch/internal/shared"
)

// DefaultChunkSize matches the API's playlist-append payload limit.
const DefaultChunkSize = 100

// UploadOpts contains configuration for an upload run.
type UploadOpts struct {
	PlaylistID string      // Target playlist
	ChunkSize  int         // Tracks per append request (default 100, capped at 100)
	Failures   *FailureLog // Destination for unresolved entries, required
}

// UploadResult summarizes an upload run.
type UploadResult struct {
	Total        int // Entries processed across all batch files
	Added        int // Tracks appended to the playlist
	Failed       int // Entries that could not be resolved
	ChunksFailed int // Append requests rejected by the API
	StartedAt    time.Time
	FinishedAt   time.Time
}

// UploadEngine resolves track entries and appends them to a remote playlist.
//
// Processing is single-threaded and one-pass: resolve each entry in order,
// enqueue resolved IDs, flush full chunks, flush the remainder at the end.
// Per-entry failures are recorded and skipped; only parse and context errors
// abort the run.
type UploadEngine struct {
	catalog services.Catalog
	writer  services.PlaylistWriter
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewUploadEngine creates an UploadEngine. A nil limiter disables pacing
// (the client library still retries throttled requests).
func NewUploadEngine(catalog services.Catalog, writer services.PlaylistWriter, limiter *rate.Limiter, logger *log.Logger) *UploadEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &UploadEngine{
		catalog: catalog,
		writer:  writer,
		limiter: limiter,
		logger:  logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *UploadEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run processes the given batch files in order against opts.PlaylistID.
func (e *UploadEngine) Run(ctx context.Context, files []string, opts UploadOpts, progress chan<- ProgressUpdate) (*UploadResult, error) {
	if len(files) == 0 {
		return nil, shared.ErrNoBatchFiles
	}
	if opts.Failures == nil {
		return nil, fmt.Errorf("%w: failure log is required", shared.ErrMissingArgument)
	}
	if opts.ChunkSize <= 0 || opts.ChunkSize > DefaultChunkSize {
		opts.ChunkSize = DefaultChunkSize
	}

	result := &UploadResult{StartedAt: time.Now()}

	// Parse everything up front so a malformed batch file aborts the run
	// before any track is submitted.
	batches := make([][]playlist.Entry, 0, len(files))
	for i, file := range files {
		entries, err := playlist.ParseFile(file)
		if err != nil {
			return nil, fmt.Errorf("batch file %s: %w", file, err)
		}
		batches = append(batches, entries)
		result.Total += len(entries)
		e.sendProgress(progress, readBatchUpdate(i+1, len(files), file, len(entries)))
	}

	var pending []string
	step := 0

	for _, entries := range batches {
		for _, entry := range entries {
			step++

			if err := ctx.Err(); err != nil {
				return result, err
			}

			id, err := e.resolve(ctx, entry)
			if err != nil {
				result.Failed++
				e.logger.Warn("could not resolve track", "entry", entry.String(), "error", err)
				e.sendProgress(progress, resolveFailedUpdate(step, result.Total, entry, err))

				if logErr := opts.Failures.Record(entry); logErr != nil {
					e.logger.Error("failed to record failure", "error", logErr)
				}
				continue
			}

			pending = append(pending, id)
			e.sendProgress(progress, resolveUpdate(step, result.Total, entry))

			if len(pending) >= opts.ChunkSize {
				e.flush(ctx, &pending, opts.PlaylistID, result, progress)
			}
		}
	}

	e.flush(ctx, &pending, opts.PlaylistID, result, progress)

	result.FinishedAt = time.Now()
	return result, nil
}

// resolve maps one entry to a track ID: direct URI extraction when the
// location is a catalog reference, catalog search otherwise.
func (e *UploadEngine) resolve(ctx context.Context, entry playlist.Entry) (string, error) {
	if id, ok := services.TrackID(entry.Location); ok {
		return id, nil
	}

	artist, title, ok := entry.SearchMetadata()
	if !ok {
		return "", shared.ErrNoQuery
	}

	if err := e.wait(ctx); err != nil {
		return "", err
	}

	track, err := e.catalog.SearchTrack(ctx, artist, title)
	if err != nil {
		return "", err
	}

	e.logger.Debug("resolved track", "artist", track.Artist, "title", track.Title, "id", track.ID)
	return track.ID, nil
}

// flush submits all pending IDs in order and resets the queue. A rejected
// append is logged and counted; the run continues with the remaining entries.
func (e *UploadEngine) flush(ctx context.Context, pending *[]string, playlistID string, result *UploadResult, progress chan<- ProgressUpdate) {
	ids := *pending
	if len(ids) == 0 {
		return
	}
	*pending = nil

	if err := e.wait(ctx); err != nil {
		result.ChunksFailed++
		e.sendProgress(progress, flushFailedUpdate(len(ids), err))
		return
	}

	if err := e.writer.AddTracks(ctx, playlistID, ids); err != nil {
		result.ChunksFailed++
		e.logger.Error("chunk submission rejected", "size", len(ids), "error", err)
		e.sendProgress(progress, flushFailedUpdate(len(ids), err))
		return
	}

	result.Added += len(ids)
	e.logger.Info("added tracks to playlist", "count", len(ids), "total", result.Added)
	e.sendProgress(progress, flushUpdate(len(ids), result.Added))
}

func (e *UploadEngine) wait(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}
