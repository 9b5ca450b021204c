package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"spotbatch/internal/formatter"
	"spotbatch/internal/services"
	"spotbatch/internal/shared"
)

// BackupConfig selects which playlists to back up and how.
type BackupConfig struct {
	OutputDir  string            `yaml:"output_dir"`
	Formats    []string          `yaml:"formats"` // json, m3u
	LikedSongs bool              `yaml:"liked_songs"`
	Playlists  []BackupSelection `yaml:"playlists"` // empty selects all
}

// BackupSelection identifies a playlist by ID or display name.
type BackupSelection struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// LoadBackupConfig reads a YAML backup config, applying defaults.
func LoadBackupConfig(path string) (*BackupConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup config: %w", err)
	}

	var config BackupConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse backup config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

// DefaultBackupConfig returns a config that backs up every playlist.
func DefaultBackupConfig() *BackupConfig {
	config := &BackupConfig{}
	config.applyDefaults()
	return config
}

func (c *BackupConfig) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = fmt.Sprintf("playlist_backup_%d", time.Now().Unix())
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{"json", "m3u"}
	}
}

// BackupResult summarizes a backup run.
type BackupResult struct {
	OutputDir    string
	Playlists    int
	TotalTracks  int
	Errors       []string
	ManifestPath string
}

// BackupEngine fetches playlists and writes them to local backup files.
type BackupEngine struct {
	library services.Library
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewBackupEngine creates a BackupEngine.
func NewBackupEngine(library services.Library, limiter *rate.Limiter, logger *log.Logger) *BackupEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &BackupEngine{library: library, limiter: limiter, logger: logger}
}

func (e *BackupEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run backs up the selected playlists under config.OutputDir, one
// subdirectory per playlist, and writes a manifest.json summary.
// Per-playlist failures are recorded in the manifest; the run continues.
func (e *BackupEngine) Run(ctx context.Context, config *BackupConfig, progress chan<- ProgressUpdate) (*BackupResult, error) {
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	selected, err := e.selectPlaylists(ctx, config)
	if err != nil {
		return nil, err
	}

	result := &BackupResult{OutputDir: config.OutputDir}
	manifest := &formatter.Manifest{
		CreatedAt: time.Now(),
		OutputDir: config.OutputDir,
	}

	total := len(selected)
	if config.LikedSongs {
		total++
	}
	step := 0

	for _, pl := range selected {
		step++
		e.sendProgress(progress, fetchPlaylistUpdate(step, total, pl.Name))

		if err := e.wait(ctx); err != nil {
			return result, err
		}

		// The playlist listing only carries summary fields; fetch the full
		// record so the metadata backup includes the description.
		if details, err := e.library.GetPlaylist(ctx, pl.ID); err != nil {
			e.logger.Warn("could not fetch playlist details", "playlist", pl.Name, "error", err)
		} else {
			pl = *details
		}

		if err := e.wait(ctx); err != nil {
			return result, err
		}

		tracks, err := e.library.PlaylistTracks(ctx, pl.ID)
		if err != nil {
			msg := fmt.Sprintf("%s: %v", pl.Name, err)
			e.logger.Error("failed to fetch playlist tracks", "playlist", pl.Name, "error", err)
			result.Errors = append(result.Errors, msg)
			manifest.Errors = append(manifest.Errors, msg)
			continue
		}

		entry, err := e.writePlaylist(config, pl, tracks)
		if err != nil {
			msg := fmt.Sprintf("%s: %v", pl.Name, err)
			e.logger.Error("failed to write backup", "playlist", pl.Name, "error", err)
			result.Errors = append(result.Errors, msg)
			manifest.Errors = append(manifest.Errors, msg)
			continue
		}

		manifest.Playlists = append(manifest.Playlists, entry)
		manifest.TotalTracks += len(tracks)
		result.Playlists++
		result.TotalTracks += len(tracks)
		e.sendProgress(progress, writeBackupUpdate(step, total, pl.Name, len(entry.Files)))
	}

	if config.LikedSongs {
		step++
		e.sendProgress(progress, fetchPlaylistUpdate(step, total, "Liked Songs"))

		if err := e.wait(ctx); err != nil {
			return result, err
		}

		tracks, err := e.library.LikedTracks(ctx)
		if err != nil {
			msg := fmt.Sprintf("liked songs: %v", err)
			e.logger.Error("failed to fetch liked songs", "error", err)
			result.Errors = append(result.Errors, msg)
			manifest.Errors = append(manifest.Errors, msg)
		} else {
			liked := services.Playlist{ID: "liked_songs", Name: "Liked Songs", TrackCount: len(tracks)}
			entry, err := e.writePlaylist(config, liked, tracks)
			if err != nil {
				msg := fmt.Sprintf("liked songs: %v", err)
				result.Errors = append(result.Errors, msg)
				manifest.Errors = append(manifest.Errors, msg)
			} else {
				manifest.Playlists = append(manifest.Playlists, entry)
				manifest.TotalTracks += len(tracks)
				result.Playlists++
				result.TotalTracks += len(tracks)
				e.sendProgress(progress, writeBackupUpdate(step, total, "Liked Songs", len(entry.Files)))
			}
		}
	}

	manifestPath := filepath.Join(config.OutputDir, "manifest.json")
	if err := formatter.WriteManifest(manifestPath, manifest); err != nil {
		return result, fmt.Errorf("backup completed but failed to write manifest: %w", err)
	}

	result.ManifestPath = manifestPath
	return result, nil
}

// selectPlaylists resolves the config's selections against the user's
// playlists. An empty selection means everything.
func (e *BackupEngine) selectPlaylists(ctx context.Context, config *BackupConfig) ([]services.Playlist, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}

	all, err := e.library.CurrentPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	if len(config.Playlists) == 0 {
		return all, nil
	}

	var selected []services.Playlist
	for _, sel := range config.Playlists {
		idx := slices.IndexFunc(all, func(p services.Playlist) bool {
			return (sel.ID != "" && p.ID == sel.ID) || (sel.Name != "" && p.Name == sel.Name)
		})
		if idx < 0 {
			return nil, fmt.Errorf("%w: no playlist matching id=%q name=%q", shared.ErrPlaylistNotFound, sel.ID, sel.Name)
		}
		selected = append(selected, all[idx])
	}

	return selected, nil
}

// writePlaylist writes one playlist's backup files and returns its manifest entry.
func (e *BackupEngine) writePlaylist(config *BackupConfig, pl services.Playlist, tracks []services.Track) (formatter.ManifestEntry, error) {
	entry := formatter.ManifestEntry{ID: pl.ID, Name: pl.Name, TrackCount: len(tracks)}

	slug := shared.Slugify(pl.Name)
	if slug == "" {
		slug = pl.ID
	}
	dir := filepath.Join(config.OutputDir, slug)

	backup := &formatter.PlaylistBackup{
		Playlist:   pl,
		Tracks:     tracks,
		ExportedAt: time.Now(),
	}

	for _, format := range config.Formats {
		switch format {
		case "json":
			files, err := formatter.WriteJSONBackup(dir, backup)
			if err != nil {
				return entry, err
			}
			entry.Files = append(entry.Files, files...)
		case "m3u":
			file, err := formatter.WriteM3UBackup(dir, backup)
			if err != nil {
				return entry, err
			}
			entry.Files = append(entry.Files, file)
		default:
			return entry, fmt.Errorf("%w: unknown backup format %q", shared.ErrInvalidArgument, format)
		}
	}

	return entry, nil
}

func (e *BackupEngine) wait(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}
