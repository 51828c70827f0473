package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/onepage/internal/config"
	"github.com/nao1215/onepage/internal/database"
	"github.com/nao1215/onepage/internal/report"
)

// defaultHistoryLimit is the number of builds listed without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded bundle builds",
		Long: `History lists the builds recorded by 'onepage bundle', newest first.

With --build it shows the summary and the pages of one build.

Examples:
  # List the 20 most recent builds
  onepage history

  # Builds of one root document only
  onepage history --root target/criterion/report/index.html

  # Pages of build 12
  onepage history --build 12`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of builds to list (0 for all)")
	cmd.Flags().Int64P("build", "b", 0,
		"Show the pages of one build by ID")
	cmd.Flags().StringP("root", "r", "",
		"Only list builds of this root document")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	buildID, err := cmd.Flags().GetInt64("build")
	if err != nil {
		return err
	}
	root, err := cmd.Flags().GetString("root")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if buildID != 0 {
		return showBuild(ctx, out, db, buildID)
	}
	return listBuilds(ctx, out, db, root, limit)
}

// listBuilds prints a table of recent builds.
func listBuilds(ctx context.Context, out io.Writer, db *database.HistoryDB, root string, limit int) error {
	records, err := db.ListBuilds(ctx, root, limit)
	if err != nil {
		return fmt.Errorf("failed to list builds: %w", err)
	}

	if len(records) == 0 {
		if root != "" {
			fmt.Fprintf(out, "No builds recorded for %s\n", root)
		} else {
			fmt.Fprintln(out, "No builds recorded yet.")
		}
		fmt.Fprintln(out, "\nUse 'onepage bundle' to build a document.")
		return nil
	}

	fmt.Fprintf(out, "Build history (%d builds):\n\n", len(records))
	fmt.Fprintf(out, "  %-6s  %-19s  %5s  %10s  %7s  %s\n", "ID", "Date", "Pages", "Size", "Missing", "Root")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 72))

	for _, r := range records {
		fmt.Fprintf(out, "  %-6d  %-19s  %5d  %10s  %7d  %s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.PageCount,
			report.FormatBytes(r.OutputSize),
			r.MissingCount,
			r.Root,
		)
	}
	fmt.Fprintln(out, "\nUse 'onepage history --build <ID>' to see the pages of a build.")

	return nil
}

// showBuild prints the summary and pages of one build.
func showBuild(ctx context.Context, out io.Writer, db *database.HistoryDB, id int64) error {
	summary, err := db.GetBuild(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrBuildNotFound) {
			return fmt.Errorf("build %d not found (use 'onepage history' to list builds)", id)
		}
		return fmt.Errorf("failed to get build %d: %w", id, err)
	}

	pages, err := db.GetBuildPages(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get pages of build %d: %w", id, err)
	}

	fmt.Fprintf(out, "Build %d (%s)\n", id, summary.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if _, err := report.NewSimpleWriter(out).Write(summary); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %-12s  %10s  %-4s  %s\n", "ID", "Size", "Kind", "Title")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	for _, p := range pages {
		kind := "page"
		switch {
		case p.Root:
			kind = "root"
		case p.SVG:
			kind = "svg"
		}
		fmt.Fprintf(out, "  %-12s  %10s  %-4s  %s\n", p.ID.Short(), report.FormatBytes(int64(p.Size)), kind, p.Title)
	}

	return nil
}
