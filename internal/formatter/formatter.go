// package formatter writes playlist backups to disk as JSON and M3U files.
package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"spotbatch/internal/playlist"
	"spotbatch/internal/services"
	"spotbatch/internal/shared"
)

// PlaylistBackup is one playlist's data ready to be written.
type PlaylistBackup struct {
	Playlist   services.Playlist `json:"playlist"`
	Tracks     []services.Track  `json:"tracks"`
	ExportedAt time.Time         `json:"exported_at"`
}

// Manifest summarizes a backup run.
type Manifest struct {
	CreatedAt   time.Time       `json:"created_at"`
	OutputDir   string          `json:"output_dir"`
	Playlists   []ManifestEntry `json:"playlists"`
	TotalTracks int             `json:"total_tracks"`
	Errors      []string        `json:"errors,omitempty"`
}

// ManifestEntry records one backed-up playlist and its files.
type ManifestEntry struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	TrackCount int      `json:"track_count"`
	Files      []string `json:"files"`
}

// WriteJSONBackup writes metadata.json and tracks.json under dir.
// Returns the written file paths.
func WriteJSONBackup(dir string, backup *PlaylistBackup) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	metaPath := filepath.Join(dir, "metadata.json")
	meta := struct {
		Playlist   services.Playlist `json:"playlist"`
		TrackCount int               `json:"track_count"`
		ExportedAt time.Time         `json:"exported_at"`
	}{backup.Playlist, len(backup.Tracks), backup.ExportedAt}

	if err := writeJSONFile(metaPath, meta); err != nil {
		return nil, err
	}

	tracksPath := filepath.Join(dir, "tracks.json")
	if err := writeJSONFile(tracksPath, backup.Tracks); err != nil {
		return []string{metaPath}, err
	}

	return []string{metaPath, tracksPath}, nil
}

// WriteM3UBackup writes playlist.m3u under dir, mirroring the source playlist
// file shape: EXTINF metadata lines and catalog URL locations.
func WriteM3UBackup(dir string, backup *PlaylistBackup) (string, error) {
	path := filepath.Join(dir, "playlist.m3u")

	entries := make([]playlist.Entry, 0, len(backup.Tracks))
	for _, track := range backup.Tracks {
		entries = append(entries, TrackEntry(track))
	}

	if err := playlist.WriteFile(path, entries); err != nil {
		return "", err
	}

	return path, nil
}

// TrackEntry converts a catalog track back into a playlist entry.
func TrackEntry(track services.Track) playlist.Entry {
	location := track.URL
	if location == "" {
		location = "spotify:track:" + track.ID
	}

	metadata := track.Title
	if track.Artist != "" {
		metadata = fmt.Sprintf("%s - %s", track.Artist, track.Title)
	}

	return playlist.Entry{
		Location: location,
		Artist:   track.Artist,
		Title:    track.Title,
		Duration: track.Duration,
		Metadata: metadata,
	}
}

// WriteManifest writes the backup manifest to path.
func WriteManifest(path string, manifest *Manifest) error {
	return writeJSONFile(path, manifest)
}

func writeJSONFile(path string, data any) error {
	out, err := shared.MarshalJSON(data, true)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
