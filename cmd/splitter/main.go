package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"spotbatch/internal/playlist"
	"spotbatch/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:      "splitter",
		Usage:     "Split an M3U playlist into fixed-size batch files",
		Version:   "0.3.0",
		ArgsUsage: "<playlist.m3u>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory for batch files (default: {playlist}_batches)",
			},
			&cli.IntFlag{
				Name:    "size",
				Aliases: []string{"s"},
				Usage:   "Entries per batch file",
				Value:   playlist.DefaultBatchSize,
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Base name for batch files",
				Value:   "playlist_batch",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Append logs to this file in addition to stderr",
			},
		},
		Action: runner.Split,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
