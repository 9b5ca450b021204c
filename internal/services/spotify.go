// Spotify Web API implementation of the service interfaces, backed by
// github.com/zmb3/spotify/v2.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"spotbatch/internal/shared"
)

// SpotifyService implements [Catalog], [PlaylistWriter], and [Library] over an
// authenticated Spotify client. The client retries 429 responses after the
// API-signaled backoff (spotify.WithRetry), so rate-limit errors surface here
// only when retries are exhausted.
type SpotifyService struct {
	client *spotify.Client
}

// NewSpotifyService wraps an authenticated Spotify client.
func NewSpotifyService(client *spotify.Client) *SpotifyService {
	return &SpotifyService{client: client}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// BuildTrackQuery builds the catalog search query for an artist/title pair.
// With no artist the title is used as a plain text query.
func BuildTrackQuery(artist, title string) string {
	if title == "" {
		return ""
	}
	if artist == "" {
		return title
	}
	return fmt.Sprintf("track:%s artist:%s", title, artist)
}

// SearchTrack searches the catalog and returns the API's top hit unchanged.
// No local scoring or tie-breaking is applied.
func (s *SpotifyService) SearchTrack(ctx context.Context, artist, title string) (*Track, error) {
	query := BuildTrackQuery(artist, title)
	if query == "" {
		return nil, fmt.Errorf("%w: empty artist and title", shared.ErrNoQuery)
	}

	result, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %v", shared.ErrAPIRequest, query, err)
	}

	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return nil, fmt.Errorf("%w: %q", shared.ErrTrackNotFound, query)
	}

	track := fromFullTrack(result.Tracks.Tracks[0])
	return &track, nil
}

// AddTracks appends track IDs to the playlist in order.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids...); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSubmission, err)
	}

	return nil
}

// CurrentPlaylists retrieves all playlists of the authenticated user,
// following pagination.
func (s *SpotifyService) CurrentPlaylists(ctx context.Context) ([]Playlist, error) {
	page, err := s.client.CurrentUsersPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var playlists []Playlist
	for {
		for _, p := range page.Playlists {
			playlists = append(playlists, Playlist{
				ID:         p.ID.String(),
				Name:       p.Name,
				TrackCount: int(p.Tracks.Total),
				Public:     p.IsPublic,
			})
		}

		err = s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	return playlists, nil
}

// GetPlaylist retrieves a playlist's metadata by ID.
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	p, err := s.client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrPlaylistNotFound, playlistID, err)
	}

	return &Playlist{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		TrackCount:  int(p.Tracks.Total),
		Public:      p.IsPublic,
	}, nil
}

// PlaylistTracks retrieves all tracks of a playlist in order, following
// pagination. Episodes and unavailable items are skipped.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	page, err := s.client.GetPlaylistItems(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrPlaylistNotFound, playlistID, err)
	}

	var tracks []Track
	for {
		for _, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			tracks = append(tracks, fromFullTrack(*item.Track.Track))
		}

		err = s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	return tracks, nil
}

// LikedTracks retrieves the user's saved tracks, following pagination.
func (s *SpotifyService) LikedTracks(ctx context.Context) ([]Track, error) {
	page, err := s.client.CurrentUsersTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var tracks []Track
	for {
		for _, saved := range page.Tracks {
			tracks = append(tracks, fromFullTrack(saved.FullTrack))
		}

		err = s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	return tracks, nil
}

// fromFullTrack maps an API track object to the local model.
func fromFullTrack(t spotify.FullTrack) Track {
	track := Track{
		ID:       t.ID.String(),
		Title:    t.Name,
		Album:    t.Album.Name,
		Duration: int(t.TimeDuration().Seconds()),
		URL:      t.ExternalURLs["spotify"],
	}

	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}

	return track
}
