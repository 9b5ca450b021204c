package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"

	"spotbatch/internal/services"
	"spotbatch/internal/shared"
	"spotbatch/internal/tasks"
)

// Runner holds the dependencies for backup commands.
type Runner struct {
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{logger: opts.Logger, output: opts.Output}
}

// Backup fetches the selected playlists and writes them to local files.
func (r *Runner) Backup(ctx context.Context, cmd *cli.Command) error {
	backupConfig := tasks.DefaultBackupConfig()
	if path := cmd.String("config"); path != "" {
		loaded, err := tasks.LoadBackupConfig(path)
		if err != nil {
			return err
		}
		backupConfig = loaded
	}
	if dir := cmd.String("output"); dir != "" {
		backupConfig.OutputDir = dir
	}
	if cmd.Bool("liked") {
		backupConfig.LikedSongs = true
	}

	appConfig, err := r.loadConfig(cmd.String("app-config"), cmd.String("env"))
	if err != nil {
		return err
	}

	client, err := r.spotifyClient(ctx, appConfig)
	if err != nil {
		return err
	}
	svc := services.NewSpotifyService(client)

	limiter := rateLimiter(appConfig.Uploader.RateLimit)
	engine := tasks.NewBackupEngine(svc, limiter, r.logger)

	r.writePlain("Backing up playlists to %s\n\n", backupConfig.OutputDir)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchPlaylist:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.WriteBackup:
				r.writePlain("💾 %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, backupConfig, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlainHeader("Backup Complete")
	r.writePlain("Playlists: %d\n", result.Playlists)
	r.writePlain("Tracks: %d\n", result.TotalTracks)
	r.writePlain("Output: %s\n", result.OutputDir)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if len(result.Errors) > 0 {
		r.writePlain("\n%d playlist(s) failed:\n", len(result.Errors))
		for _, msg := range result.Errors {
			r.writePlain("  - %s\n", msg)
		}
	}

	return nil
}

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

// rateLimiter builds the request pacer for playlist fetches. Zero or negative
// rates disable pacing.
func rateLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
