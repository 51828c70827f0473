package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/onepage/internal/crawler"
	"github.com/nao1215/onepage/internal/database"
	"github.com/nao1215/onepage/internal/render"
	"github.com/nao1215/onepage/internal/report"
)

// Step names, in default pipeline order.
const (
	StepCrawl    = "crawl"
	StepAssemble = "assemble"
	StepWrite    = "write"
	StepReport   = "report"
	StepHistory  = "history"
)

// outputMode is the permission of the written document.
const outputMode os.FileMode = 0o644

// Errors returned when a step runs before the step it depends on.
var (
	ErrNotCrawled   = errors.New("pipeline: build has no crawl result")
	ErrNotAssembled = errors.New("pipeline: build has no assembled output")
)

// CrawlStep bundles the root document and every page it links to.
type CrawlStep struct {
	crawler *crawler.Crawler
}

// NewCrawlStep creates a crawl step using c.
func NewCrawlStep(c *crawler.Crawler) *CrawlStep {
	return &CrawlStep{crawler: c}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return StepCrawl
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, build *Build) error {
	result, err := s.crawler.Bundle(ctx, build.Root)
	if err != nil {
		return err
	}
	build.Result = result
	return nil
}

// AssembleStep renders the crawl result into the output document.
type AssembleStep struct{}

// NewAssembleStep creates an assemble step.
func NewAssembleStep() *AssembleStep {
	return &AssembleStep{}
}

// Name returns the step name.
func (s *AssembleStep) Name() string {
	return StepAssemble
}

// Do executes the assemble step.
func (s *AssembleStep) Do(_ context.Context, build *Build) error {
	if build.Result == nil {
		return ErrNotCrawled
	}

	var buf bytes.Buffer
	err := render.Document(&buf, render.Input{
		Title:     build.Title,
		Root:      build.Result.Root,
		RootID:    build.Result.RootID,
		Items:     build.Result.Items,
		IsSVG:     build.Result.IsSVG,
		Generator: build.Generator,
	})
	if err != nil {
		return err
	}
	build.Output = buf.Bytes()
	return nil
}

// WriteStep writes the assembled document to the destination.
//
// The document is written to a temporary file in the destination directory
// and renamed into place, so a failed build never leaves a partial file.
type WriteStep struct {
	logger *slog.Logger
}

// NewWriteStep creates a write step.
func NewWriteStep(logger *slog.Logger) *WriteStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &WriteStep{logger: logger}
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return StepWrite
}

// Do executes the write step.
func (s *WriteStep) Do(_ context.Context, build *Build) error {
	if build.Output == nil {
		return ErrNotAssembled
	}

	if err := WriteFileAtomic(build.Dest, build.Output, outputMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", build.Dest, err)
	}

	build.OutputSize = int64(len(build.Output))
	build.FinishedAt = time.Now()
	s.logger.Info("wrote document", "dest", build.Dest, "bytes", build.OutputSize)
	return nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so path either keeps its old content or holds all of data.
// The directory of path must exist.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(mode); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReportStep passes the build summary to report writers.
type ReportStep struct {
	writer report.Writer
}

// NewReportStep creates a report step that writes to every writer.
func NewReportStep(writers ...report.Writer) *ReportStep {
	return &ReportStep{writer: report.NewMultiWriter(writers...)}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return StepReport
}

// Do executes the report step.
func (s *ReportStep) Do(_ context.Context, build *Build) error {
	if _, err := s.writer.Write(build.Summary()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// HistoryStep records the build in the history database.
//
// The document has already been written when this step runs, so database
// failures are logged rather than failing the build.
type HistoryStep struct {
	db     *database.HistoryDB
	logger *slog.Logger
}

// NewHistoryStep creates a history step storing builds in db.
func NewHistoryStep(db *database.HistoryDB, logger *slog.Logger) *HistoryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStep{db: db, logger: logger}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return StepHistory
}

// Do executes the history step.
func (s *HistoryStep) Do(ctx context.Context, build *Build) error {
	summary := build.Summary()

	previous, err := s.db.LatestBuild(ctx, build.Root)
	if err != nil {
		s.logger.Warn("failed to look up previous build", "root", build.Root, "error", err)
	} else if previous != nil {
		build.Previous = previous
		if previous.RootID == summary.RootID {
			s.logger.Info("root document unchanged since last build",
				"root", build.Root,
				"previous_build", previous.ID,
			)
		}
	}

	id, err := s.db.SaveBuild(ctx, summary)
	if err != nil {
		s.logger.Warn("failed to record build", "root", build.Root, "error", err)
		return nil
	}
	build.BuildID = id
	s.logger.Debug("recorded build", "id", id, "db", s.db.Path())
	return nil
}

// DefaultPipeline creates the standard bundle pipeline:
// crawl, assemble, write, then report when writers are given and history
// when db is not nil.
func DefaultPipeline(c *crawler.Crawler, writers []report.Writer, db *database.HistoryDB, opts ...Option) *Pipeline {
	p := New(opts...)

	p.AddSteps(
		NewCrawlStep(c),
		NewAssembleStep(),
		NewWriteStep(p.logger),
	)
	if len(writers) > 0 {
		p.AddStep(NewReportStep(writers...))
	}
	if db != nil {
		p.AddStep(NewHistoryStep(db, p.logger))
	}

	return p
}
