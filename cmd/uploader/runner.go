package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	ansi "github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"spotbatch/internal/playlist"
	"spotbatch/internal/repositories"
	"spotbatch/internal/services"
	"spotbatch/internal/shared"
	"spotbatch/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
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

// Upload resolves every entry in the selected batch files and appends the
// matches to the target playlist in order.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("playlist-id")
	if playlistID == "" {
		return fmt.Errorf("%w: --playlist-id is required", shared.ErrMissingArgument)
	}

	if path := cmd.String("log-file"); path != "" {
		logger, closeLog := shared.NewFileLogger(path)
		defer closeLog()
		r.logger = logger
	}

	config, err := r.loadConfig(cmd.String("config"), cmd.String("env"))
	if err != nil {
		return err
	}

	files, err := r.collectBatchFiles(cmd)
	if err != nil {
		return err
	}
	source := cmd.String("batch-dir")
	if source == "" {
		source = cmd.String("batch-file")
	}

	failedLog := cmd.String("failed-output")
	if failedLog == "" {
		failedLog = config.Uploader.FailedLog
	}
	failures, err := tasks.NewFailureLog(failedLog)
	if err != nil {
		return err
	}
	defer failures.Close()

	chunkSize := cmd.Int("chunk-size")
	if chunkSize == 0 {
		chunkSize = config.Uploader.ChunkSize
	}

	client, err := r.spotifyClient(ctx, config)
	if err != nil {
		return err
	}
	svc := services.NewSpotifyService(client)

	engine := tasks.NewUploadEngine(svc, svc, rateLimiter(config.Uploader.RateLimit), r.logger)

	r.writePlain("Uploading %d batch file(s) to playlist %s\n\n", len(files), playlistID)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.showProgress(progressCh, done)

	result, err := engine.Run(ctx, files, tasks.UploadOpts{
		PlaylistID: playlistID,
		ChunkSize:  chunkSize,
		Failures:   failures,
	}, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	failedM3U := cmd.String("failed-m3u")
	if failedM3U == "" {
		failedM3U = config.Uploader.FailedM3U
	}
	if failedM3U != "" && failures.Len() > 0 {
		if err := playlist.WriteFile(failedM3U, failures.Entries()); err != nil {
			r.logger.Warn("failed to write unresolved playlist", "path", failedM3U, "error", err)
		} else {
			r.logger.Info("wrote unresolved playlist", "path", failedM3U, "entries", failures.Len())
		}
	}

	r.recordRun(config, playlistID, source, result)

	r.writePlainHeader("Upload Complete")
	r.writePlain("Processed: %d tracks in %d file(s)\n", result.Total, len(files))
	r.writePlain("Added: %d\n", result.Added)
	r.writePlain("Failed to resolve: %d\n", result.Failed)
	if result.ChunksFailed > 0 {
		r.writePlain("Rejected append requests: %d\n", result.ChunksFailed)
	}
	if result.Failed > 0 {
		r.writePlain("\nUnresolved tracks are listed in %s\n", failedLog)
	}
	r.writePlain("Elapsed: %s\n", result.FinishedAt.Sub(result.StartedAt).Round(timeRound))

	return nil
}

// History prints recent upload run summaries from the run database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"), "")
	if err != nil {
		return err
	}
	if config.Database.Path == "" {
		return fmt.Errorf("%w: database.path is not configured", shared.ErrInvalidArgument)
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	runs, err := repositories.NewRunRepository(db).List(cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		r.writePlain("No upload runs recorded.\n")
		return nil
	}

	r.writePlainHeader("Upload Runs")
	for _, run := range runs {
		r.writePlain("%s  playlist=%s  added=%d/%d  failed=%d  source=%s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.PlaylistID, run.Added, run.Total, run.Failed, run.Source)
	}

	return nil
}

// collectBatchFiles resolves the batch-file and batch-dir flags into an
// ordered list of playlist files. Exactly one of the two must be set.
func (r *Runner) collectBatchFiles(cmd *cli.Command) ([]string, error) {
	file := cmd.String("batch-file")
	dir := cmd.String("batch-dir")

	switch {
	case file != "" && dir != "":
		return nil, fmt.Errorf("%w: --batch-file and --batch-dir are mutually exclusive", shared.ErrInvalidArgument)
	case file != "":
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("failed to stat batch file: %w", err)
		}
		return []string{file}, nil
	case dir != "":
		return playlist.BatchFiles(dir)
	default:
		return nil, fmt.Errorf("%w: one of --batch-file or --batch-dir is required", shared.ErrMissingArgument)
	}
}

// showProgress renders engine updates until the channel closes, drawing a
// progress bar for the per-track resolution phase.
func (r *Runner) showProgress(progressCh <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	defer close(done)

	var bar *progressbar.ProgressBar
	for update := range progressCh {
		switch update.Phase {
		case tasks.ReadBatch:
			r.writePlain("📥 %s\n", update.Message)
		case tasks.ResolveTracks:
			if bar == nil {
				bar = newResolveBar(update.Total)
			}
			bar.Add(1)
		case tasks.FlushChunk:
			if bar != nil {
				bar.Clear()
			}
			r.writePlain("  %s\n", update.Message)
		}
	}

	if bar != nil {
		bar.Finish()
		r.writePlain("\n")
	}
}

func newResolveBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Resolving tracks...[reset]"),
	)
}

// recordRun stores a run summary when a run database is configured. Failures
// to record never fail the upload.
func (r *Runner) recordRun(config *shared.Config, playlistID, source string, result *tasks.UploadResult) {
	if config.Database.Path == "" {
		return
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		r.logger.Warn("failed to open run database", "error", err)
		return
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("failed to migrate run database", "error", err)
		return
	}

	run := repositories.Run{
		PlaylistID: playlistID,
		Source:     source,
		Total:      result.Total,
		Added:      result.Added,
		Failed:     result.Failed,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
	}
	if err := repositories.NewRunRepository(db).Create(&run); err != nil {
		r.logger.Warn("failed to record run", "error", err)
	}
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
