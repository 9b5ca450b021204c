package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"spotbatch/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:    "uploader",
		Usage:   "Upload M3U batch files to a Spotify playlist",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "playlist-id",
				Aliases: []string{"p"},
				Usage:   "Target Spotify playlist ID",
			},
			&cli.StringFlag{
				Name:    "batch-dir",
				Aliases: []string{"d"},
				Usage:   "Directory of batch .m3u files to process in order",
			},
			&cli.StringFlag{
				Name:    "batch-file",
				Aliases: []string{"f"},
				Usage:   "Single .m3u file to process",
			},
			&cli.StringFlag{
				Name:  "failed-output",
				Usage: "Log file for unresolved tracks (default from config)",
			},
			&cli.StringFlag{
				Name:  "failed-m3u",
				Usage: "Write unresolved tracks as a playlist at this path (default from config)",
			},
			&cli.IntFlag{
				Name:  "chunk-size",
				Usage: "Tracks per append request (default from config)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Path to dotenv file with Spotify credentials",
				Value:   ".env",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Append logs to this file in addition to stderr",
			},
		},
		Action:   runner.Upload,
		Commands: []*cli.Command{historyCommand(runner)},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrMissingArgument) || errors.Is(err, shared.ErrInvalidArgument) {
			logger.Error(err.Error())
			os.Exit(2)
		}
		logger.Fatalf("application error: %v", err)
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent upload runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.History,
	}
}
