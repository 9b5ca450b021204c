package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"spotbatch/internal/playlist"
	"spotbatch/internal/shared"
)

// Runner holds the dependencies for splitter commands.
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

// Split parses the input playlist and writes it out as numbered batch files.
func (r *Runner) Split(ctx context.Context, cmd *cli.Command) error {
	input := cmd.Args().First()
	if input == "" {
		return fmt.Errorf("%w: path to an M3U playlist is required", shared.ErrMissingArgument)
	}

	if path := cmd.String("log-file"); path != "" {
		logger, closeLog := shared.NewFileLogger(path)
		defer closeLog()
		r.logger = logger
	}

	size := cmd.Int("size")
	outputDir := cmd.String("output")
	if outputDir == "" {
		outputDir = playlist.DeriveOutputDir(input)
	}
	base := cmd.String("name")

	r.logger.Info("splitting playlist", "input", input, "size", size, "output", outputDir)

	entries, err := playlist.ParseFile(input)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: %s contains no entries", shared.ErrEmptyPlaylist, input)
	}

	batches, err := playlist.Split(entries, size)
	if err != nil {
		return err
	}

	paths, err := playlist.WriteBatches(batches, outputDir, base)
	if err != nil {
		return err
	}

	r.writePlain("Split %d entries into %d batch files:\n", len(entries), len(paths))
	for _, path := range paths {
		r.writePlain("  %s\n", path)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
