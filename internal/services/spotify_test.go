package services

import (
	"context"
	"errors"
	"testing"

	"github.com/zmb3/spotify/v2"

	"spotbatch/internal/shared"
)

func TestBuildTrackQuery(t *testing.T) {
	tests := []struct {
		name   string
		artist string
		title  string
		want   string
	}{
		{
			name:   "artist and title use field filters",
			artist: "Daft Punk",
			title:  "Around the World",
			want:   "track:Around the World artist:Daft Punk",
		},
		{
			name:  "title only is a plain text query",
			title: "Around the World",
			want:  "Around the World",
		},
		{
			name:   "no title yields no query",
			artist: "Daft Punk",
			want:   "",
		},
		{
			name: "empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildTrackQuery(tt.artist, tt.title); got != tt.want {
				t.Errorf("BuildTrackQuery(%q, %q) = %q, want %q", tt.artist, tt.title, got, tt.want)
			}
		})
	}
}

func TestSearchTrackEmptyQuery(t *testing.T) {
	svc := NewSpotifyService(nil)
	if _, err := svc.SearchTrack(context.Background(), "", ""); !errors.Is(err, shared.ErrNoQuery) {
		t.Errorf("SearchTrack() error = %v, want ErrNoQuery", err)
	}
}

func TestFromFullTrack(t *testing.T) {
	full := spotify.FullTrack{
		SimpleTrack: spotify.SimpleTrack{
			ID:       "5W3cjX2J3tjhG8zb6u0qHn",
			Name:     "Harder Better Faster Stronger",
			Duration: 224693,
			Artists: []spotify.SimpleArtist{
				{Name: "Daft Punk"},
				{Name: "Someone Else"},
			},
			ExternalURLs: map[string]string{
				"spotify": "https://open.spotify.com/track/5W3cjX2J3tjhG8zb6u0qHn",
			},
		},
		Album: spotify.SimpleAlbum{Name: "Discovery"},
	}

	track := fromFullTrack(full)

	if track.ID != "5W3cjX2J3tjhG8zb6u0qHn" {
		t.Errorf("ID = %q", track.ID)
	}
	if track.Title != "Harder Better Faster Stronger" {
		t.Errorf("Title = %q", track.Title)
	}
	if track.Artist != "Daft Punk" {
		t.Errorf("Artist = %q, want the primary artist", track.Artist)
	}
	if track.Album != "Discovery" {
		t.Errorf("Album = %q", track.Album)
	}
	if track.Duration != 224 {
		t.Errorf("Duration = %d, want 224 seconds", track.Duration)
	}
	if track.URL != "https://open.spotify.com/track/5W3cjX2J3tjhG8zb6u0qHn" {
		t.Errorf("URL = %q", track.URL)
	}
}

func TestFromFullTrackNoArtists(t *testing.T) {
	track := fromFullTrack(spotify.FullTrack{
		SimpleTrack: spotify.SimpleTrack{ID: "x", Name: "Untitled"},
	})
	if track.Artist != "" {
		t.Errorf("Artist = %q, want empty", track.Artist)
	}
}
