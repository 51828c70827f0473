package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/onepage/internal/config"
	"github.com/nao1215/onepage/internal/crawler"
	"github.com/nao1215/onepage/internal/database"
	"github.com/nao1215/onepage/internal/log"
	"github.com/nao1215/onepage/internal/pipeline"
	"github.com/nao1215/onepage/internal/report"
)

// NewBundleCmd creates the bundle command.
func NewBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Bundle a local HTML document into a single file",
		Long: `Bundle reads the root document, follows its local links and writes one
self-contained HTML file.

- <img src>, <script src> and other src attributes become data URLs
- <link href> (stylesheets, icons) become data URLs
- <a href> to local pages become anchors to a section holding that page
- Linked SVG files are embedded as their own section
- References starting with "http" are left as they are

A reference whose file cannot be read is kept unchanged and reported.
Unparseable pages, including linked ones, fail the build.

Examples:
  # Bundle a criterion report
  onepage bundle --root target/criterion/report/index.html --dest report.html

  # Destination from the environment
  DEST=report.html onepage bundle --root target/criterion/report/index.html

  # Also write a Markdown build report
  onepage bundle -r site/index.html -d site.html --report build.md

  # Build every target listed in the configuration file
  onepage bundle -c .onepage --jobs 2

Configuration file (.onepage) example:
  title: "Nightly benchmarks"
  mediaTypes:
    jpg: image/jpeg
  targets:
    - root: target/criterion/report/index.html
      dest: out/criterion.html`,
		Args: cobra.NoArgs,
		RunE: runBundleCmd,
	}

	cmd.Flags().StringP("root", "r", "",
		"Root HTML document to bundle")
	cmd.Flags().StringP("dest", "d", "",
		"Output file (default: $"+config.DestEnv+")")
	cmd.Flags().StringP("title", "t", "",
		"Title of the output document (default: title of the root page)")
	cmd.Flags().StringP("report", "o", "",
		"Write a build report to this file (.json for JSON, Markdown otherwise)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .onepage in current or home directory)")
	cmd.Flags().Bool("no-history", false,
		"Do not record this build in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().IntP("jobs", "j", config.DefaultJobs,
		"Number of configured targets built at once")

	return cmd
}

// runBundleCmd executes the bundle command.
func runBundleCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := log.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Verbose)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runBundle(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildConfig creates a Config from the configuration file and the flags.
// Flags override file values.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named file must exist; otherwise a missing file just
	// means defaults.
	if configPath := config.FindConfigFile(cfg.ConfigFilePath); configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if cfg.Root, err = cmd.Flags().GetString("root"); err != nil {
		return nil, err
	}
	if cfg.Dest, err = cmd.Flags().GetString("dest"); err != nil {
		return nil, err
	}
	if cfg.Dest == "" {
		cfg.Dest = os.Getenv(config.DestEnv)
	}
	if cmd.Flags().Changed("title") {
		if cfg.Title, err = cmd.Flags().GetString("title"); err != nil {
			return nil, err
		}
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("report"); err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.SaveHistory = false
	}
	if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("jobs") {
		if cfg.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return nil, err
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogFormat = getLogFormat(cmd)

	return cfg, nil
}

// runBundle builds the configured document, or every configured target.
func runBundle(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	var db *database.HistoryDB
	if cfg.SaveHistory {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("history disabled: failed to open database", "dir", cfg.DBDir, "error", err)
			db = nil
		} else {
			defer db.Close()
			logger.Debug("history database opened", "path", db.Path())
		}
	}

	writers := []report.Writer{
		report.NewSyncWriter(report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))),
	}
	// The report is kept in memory and only replaces the file once builds
	// have finished, so a failed run leaves an earlier report alone.
	var reportBuf bytes.Buffer
	if cfg.ReportFile != "" {
		writers = append(writers, report.NewSyncWriter(report.ForFile(cfg.ReportFile, &reportBuf)))
	}

	newPipeline := func() *pipeline.Pipeline {
		opts := append(cfg.CrawlerOptions(), crawler.WithLogger(logger))
		return pipeline.DefaultPipeline(crawler.New(opts...), writers, db, pipeline.WithLogger(logger))
	}

	if cfg.Batch() {
		// Failed targets never reach the report step, so the report lists
		// the targets that were built.
		err := runBatch(ctx, cfg, newPipeline, logger)
		if reportBuf.Len() > 0 {
			err = errors.Join(err, saveReport(cfg.ReportFile, reportBuf.Bytes()))
		}
		return err
	}

	build := pipeline.NewBuild(cfg.Root, cfg.Dest)
	build.Title = cfg.Title
	build.Generator = generator()
	if err := newPipeline().Execute(ctx, build); err != nil {
		return err
	}
	if cfg.ReportFile != "" {
		return saveReport(cfg.ReportFile, reportBuf.Bytes())
	}
	return nil
}

// runBatch builds every configured target and joins their errors.
func runBatch(ctx context.Context, cfg *config.Config, newPipeline func() *pipeline.Pipeline, logger *slog.Logger) error {
	targets := make([]pipeline.Target, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		title := t.Title
		if title == "" {
			title = cfg.Title
		}
		targets = append(targets, pipeline.Target{Root: t.Root, Dest: t.Dest, Title: title})
	}

	bp := pipeline.NewBatchProcessor(newPipeline,
		pipeline.WithConcurrency(cfg.Jobs),
		pipeline.WithGenerator(generator()),
		pipeline.WithBatchLogger(logger),
	)

	builds, err := bp.ProcessBatch(ctx, targets)
	if err != nil {
		return err
	}

	var errs []error
	for _, b := range builds {
		if b.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.Root, b.Err))
		}
	}
	return errors.Join(errs...)
}

// saveReport atomically replaces the report file, creating its parent
// directories.
func saveReport(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := pipeline.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
