// package services wraps the Spotify Web API client used by the uploader and
// backup tools.
//
// The network client, OAuth flow, and token refresh are delegated to
// github.com/zmb3/spotify/v2 and golang.org/x/oauth2; this package adapts them
// to the narrow interfaces the task engines consume.
package services

import "context"

// Track represents a resolved catalog track.
type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Duration int    // seconds
	URL      string // open.spotify.com link
}

// Playlist represents a remote playlist.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// Catalog resolves artist/title metadata to catalog tracks.
type Catalog interface {
	// SearchTrack searches for a track and returns the API's top hit.
	// Returns shared.ErrTrackNotFound when nothing matches.
	SearchTrack(ctx context.Context, artist, title string) (*Track, error)
}

// PlaylistWriter appends tracks to a remote playlist.
type PlaylistWriter interface {
	// AddTracks appends the given track IDs to the playlist in order.
	// Callers are responsible for honoring the API's 100-track payload limit.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
}

// Library reads the authenticated user's playlists and saved tracks.
type Library interface {
	CurrentPlaylists(ctx context.Context) ([]Playlist, error)
	GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)
	LikedTracks(ctx context.Context) ([]Track, error)
}
