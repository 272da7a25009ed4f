package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raoulx24/feed-archiver/internal/config"
	"github.com/raoulx24/feed-archiver/internal/fs"
	"github.com/raoulx24/feed-archiver/internal/history"
	"github.com/raoulx24/feed-archiver/internal/logging"
	"github.com/raoulx24/feed-archiver/internal/metrics"
	"github.com/raoulx24/feed-archiver/internal/pipeline"
)

var runFlags struct {
	feedDir         string
	archiveDir      string
	files           []string
	retentionDays   int
	logFile         string
	metricsTextfile string
	historyDB       string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Check, archive and purge once",
	Long: `Run the pipeline once: check the feed directory, check the expected files,
archive them if all are present, then purge expired archives.

Exit status is 0 when the run completes, 1 when it aborts and 2 when the
configuration is invalid or the log file cannot be opened.

Examples:
  # Use config.yaml
  feed-archiver run

  # Override the retention for this run
  feed-archiver run --config /etc/feed-archiver.yaml --retention-days 30`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVar(&runFlags.feedDir, "feed-dir", "", "override feed directory")
	f.StringVar(&runFlags.archiveDir, "archive-dir", "", "override archive directory")
	f.StringSliceVar(&runFlags.files, "files", nil, "override expected file names (comma separated)")
	f.IntVar(&runFlags.retentionDays, "retention-days", 0, "override retention in days")
	f.StringVar(&runFlags.logFile, "log-file", "", "override log file path")
	f.StringVar(&runFlags.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file")
	f.StringVar(&runFlags.historyDB, "history-db", "", "record the run in this SQLite database")
}

// loadConfig reads the config file. A missing default config.yaml is not an
// error: everything can come from flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	return nil, err
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("feed-dir") {
		cfg.Feed.Dir = runFlags.feedDir
	}
	if flags.Changed("archive-dir") {
		cfg.Archive.Dir = runFlags.archiveDir
	}
	if flags.Changed("files") {
		cfg.Feed.Files = runFlags.files
	}
	if flags.Changed("retention-days") {
		cfg.Archive.RetentionDays = runFlags.retentionDays
	}
	if flags.Changed("log-file") {
		cfg.Logging.Path = runFlags.logFile
	}
	if flags.Changed("metrics-textfile") {
		cfg.Metrics.Textfile = runFlags.metricsTextfile
	}
	if flags.Changed("history-db") {
		cfg.History.Path = runFlags.historyDB
	}
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return configFailure(fmt.Errorf("failed to load config: %w", err))
	}
	applyRunFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return configFailure(err)
	}

	// Nothing is touched until the log is known to be writable.
	sink, err := logging.Open(cfg.Logging.Path)
	if err != nil {
		return configFailure(err)
	}
	defer sink.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := execute(ctx, cfg, sink, cmd.ErrOrStderr())
	if !out.Success() {
		return &exitError{code: exitAborted, err: fmt.Errorf("run %s aborted: %w", out.RunID, out.Err)}
	}
	return nil
}

// execute runs the pipeline and publishes its outcome. Metrics and history
// are best effort: their failures go to diag, never to the run log, whose
// last line stays the pipeline's own terminal message. They never change the
// outcome.
func execute(ctx context.Context, cfg *config.Config, sink logging.Logger, diag io.Writer) pipeline.Outcome {
	p := pipeline.New(sink, fs.New(), "", cfg.Archive.Level())

	out := p.Run(ctx,
		pipeline.FeedSpec{Dir: cfg.Feed.Dir, Files: cfg.Feed.Files},
		pipeline.RetentionPolicy{ArchiveDir: cfg.Archive.Dir, Days: cfg.Archive.RetentionDays},
	)

	if cfg.Metrics.Textfile != "" {
		c := metrics.NewCollector()
		c.Observe(out.Archive, out.Purge)
		c.Finish(out.Success(), out.Started, out.Finished)
		if err := c.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			fmt.Fprintf(diag, "warning: failed to write metrics textfile %s: %v\n", cfg.Metrics.Textfile, err)
		}
	}

	if cfg.History.Path != "" {
		if err := recordHistory(ctx, cfg.History.Path, out); err != nil {
			fmt.Fprintf(diag, "warning: failed to record run history: %v\n", err)
		}
	}

	return out
}

func recordHistory(ctx context.Context, path string, out pipeline.Outcome) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	run := history.Run{
		ID:       out.RunID,
		Started:  out.Started,
		Finished: out.Finished,
		State:    string(out.State),
		Results:  out.Results(),
	}
	if out.Err != nil {
		run.Error = out.Err.Error()
	}

	// record even when the run was interrupted
	return store.Record(context.WithoutCancel(ctx), run)
}
