package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"spotbatch/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:    "backup",
		Usage:   "Export Spotify playlists to local JSON and M3U files",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML backup config selecting playlists and formats",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (overrides the config)",
			},
			&cli.BoolFlag{
				Name:  "liked",
				Usage: "Also back up Liked Songs",
			},
			&cli.StringFlag{
				Name:  "app-config",
				Usage: "Path to TOML configuration file",
				Value: "config.toml",
			},
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Path to dotenv file with Spotify credentials",
				Value:   ".env",
			},
		},
		Action: runner.Backup,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
