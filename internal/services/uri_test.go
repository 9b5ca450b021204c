package services

import "testing"

func TestTrackID(t *testing.T) {
	tests := []struct {
		name     string
		location string
		wantID   string
		wantOK   bool
	}{
		{
			name:     "track URI",
			location: "spotify:track:5W3cjX2J3tjhG8zb6u0qHn",
			wantID:   "5W3cjX2J3tjhG8zb6u0qHn",
			wantOK:   true,
		},
		{
			name:     "open URL",
			location: "https://open.spotify.com/track/0U0ldCRmgCqhVvD6ksG63j",
			wantID:   "0U0ldCRmgCqhVvD6ksG63j",
			wantOK:   true,
		},
		{
			name:     "open URL with query string",
			location: "https://open.spotify.com/track/0U0ldCRmgCqhVvD6ksG63j?si=abc123",
			wantID:   "0U0ldCRmgCqhVvD6ksG63j",
			wantOK:   true,
		},
		{
			name:     "locale URL",
			location: "https://open.spotify.com/intl-de/track/0U0ldCRmgCqhVvD6ksG63j",
			wantID:   "0U0ldCRmgCqhVvD6ksG63j",
			wantOK:   true,
		},
		{
			name:     "http scheme",
			location: "http://open.spotify.com/track/0U0ldCRmgCqhVvD6ksG63j",
			wantID:   "0U0ldCRmgCqhVvD6ksG63j",
			wantOK:   true,
		},
		{
			name:     "surrounding whitespace",
			location: "  spotify:track:5W3cjX2J3tjhG8zb6u0qHn  ",
			wantID:   "5W3cjX2J3tjhG8zb6u0qHn",
			wantOK:   true,
		},
		{
			name:     "local file path",
			location: "/music/Daft Punk - Around the World.mp3",
			wantOK:   false,
		},
		{
			name:     "album URI",
			location: "spotify:album:4m2880jivSbbyEGAKfITCa",
			wantOK:   false,
		},
		{
			name:     "playlist URL",
			location: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			wantOK:   false,
		},
		{
			name:     "bare URI prefix",
			location: "spotify:track:",
			wantOK:   false,
		},
		{
			name:     "empty",
			location: "",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := TrackID(tt.location)
			if ok != tt.wantOK {
				t.Fatalf("TrackID(%q) ok = %v, want %v", tt.location, ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("TrackID(%q) = %q, want %q", tt.location, id, tt.wantID)
			}
		})
	}
}
