package main

import (
	"context"
	"os"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"

	"spotbatch/internal/services"
	"spotbatch/internal/shared"
)

const timeRound = time.Second

// loadConfig reads the TOML config when present, falling back to defaults,
// then overlays credentials from the dotenv file and the environment.
func (r *Runner) loadConfig(path, envPath string) (*shared.Config, error) {
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := shared.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if err := shared.LoadEnv(envPath, config); err != nil {
		return nil, err
	}

	return config, nil
}

// spotifyClient runs the OAuth flow (or reuses a cached token) and returns an
// authenticated API client.
func (r *Runner) spotifyClient(ctx context.Context, config *shared.Config) (*spotify.Client, error) {
	cache := services.TokenCache{Path: services.DefaultTokenCachePath()}
	auth, err := services.NewAuthenticator(config.Credentials.Spotify, config.Server, cache, r.logger)
	if err != nil {
		return nil, err
	}

	return auth.Client(ctx)
}

// rateLimiter builds the request pacer for track searches. Zero or negative
// rates disable pacing.
func rateLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}
