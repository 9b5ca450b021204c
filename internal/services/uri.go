package services

import (
	"regexp"
	"strings"
)

var trackURLPattern = regexp.MustCompile(`^https?://open\.spotify\.com(?:/intl-[a-z]+)?/track/([A-Za-z0-9]+)`)

const trackURIPrefix = "spotify:track:"

// TrackID extracts the catalog track ID from a Spotify location line.
// Accepts open.spotify.com track URLs (with or without locale segments and
// query strings) and spotify:track: URIs. Returns ok=false for anything else.
func TrackID(location string) (string, bool) {
	location = strings.TrimSpace(location)

	if rest, found := strings.CutPrefix(location, trackURIPrefix); found {
		if id := leadingBase62(rest); id != "" {
			return id, true
		}
		return "", false
	}

	if m := trackURLPattern.FindStringSubmatch(location); m != nil {
		return m[1], true
	}

	return "", false
}

// leadingBase62 returns the leading run of base62 characters.
func leadingBase62(s string) string {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return s[:i]
		}
	}
	return s
}
