package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/onepage/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func testSummary(root string, startedAt time.Time) *model.Summary {
	rootID := model.NewPageID([]byte(root))
	return &model.Summary{
		Root:      root,
		Dest:      "out/site.html",
		Title:     "Report",
		RootID:    rootID,
		StartedAt: startedAt,
		Duration:  1500 * time.Millisecond,
		Pages: []model.PageSummary{
			{ID: rootID, Title: "Report", Size: 120, Root: true},
			{ID: model.NewPageID([]byte("b")), Title: "B", Size: 40},
			{ID: model.NewPageID([]byte("svg")), Title: "Latency", Size: 900, SVG: true},
		},
		Resources:     4,
		ResourceBytes: 2048,
		Missing: []model.MissingReference{
			{Page: root, Tag: "img", Attr: "src", Ref: "gone.png", Reason: "not found"},
		},
		OutputSize: 4096,
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if _, err := db.SaveBuild(context.Background(), testSummary("site/index.html", time.Now())); err != nil {
			t.Fatalf("SaveBuild failed: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		builds, err := db.ListBuilds(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("ListBuilds failed: %v", err)
		}
		if len(builds) != 1 {
			t.Errorf("expected 1 build after reopening, got %d", len(builds))
		}
	})
}

// TestSaveBuild tests storing and reading back a build.
func TestSaveBuild(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	started := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	s := testSummary("site/index.html", started)

	id, err := db.SaveBuild(ctx, s)
	if err != nil {
		t.Fatalf("SaveBuild failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	t.Run("list view", func(t *testing.T) {
		t.Parallel()

		builds, err := db.ListBuilds(ctx, "", 10)
		if err != nil {
			t.Fatalf("ListBuilds failed: %v", err)
		}
		if len(builds) != 1 {
			t.Fatalf("expected 1 build, got %d", len(builds))
		}

		b := builds[0]
		if b.ID != id || b.Root != s.Root || b.Dest != s.Dest || b.Title != s.Title {
			t.Errorf("unexpected record %+v", b)
		}
		if b.RootID != s.RootID {
			t.Errorf("expected root id %s, got %s", s.RootID, b.RootID)
		}
		if b.PageCount != 3 || b.ResourceCount != 4 || b.ResourceBytes != 2048 || b.MissingCount != 1 || b.OutputSize != 4096 {
			t.Errorf("unexpected counters %+v", b)
		}
		if !b.StartedAt.Equal(started) {
			t.Errorf("expected started at %v, got %v", started, b.StartedAt)
		}
		if b.Duration != 1500*time.Millisecond {
			t.Errorf("expected 1.5s, got %v", b.Duration)
		}
	})

	t.Run("pages", func(t *testing.T) {
		t.Parallel()

		pages, err := db.GetBuildPages(ctx, id)
		if err != nil {
			t.Fatalf("GetBuildPages failed: %v", err)
		}
		if len(pages) != len(s.Pages) {
			t.Fatalf("expected %d pages, got %d", len(s.Pages), len(pages))
		}
		for i, want := range s.Pages {
			if pages[i] != want {
				t.Errorf("page %d: expected %+v, got %+v", i, want, pages[i])
			}
		}
	})

	t.Run("full summary", func(t *testing.T) {
		t.Parallel()

		got, err := db.GetBuild(ctx, id)
		if err != nil {
			t.Fatalf("GetBuild failed: %v", err)
		}
		if got.RootID != s.RootID || len(got.Missing) != 1 || got.Missing[0].Ref != "gone.png" {
			t.Errorf("unexpected summary %+v", got)
		}
	})
}

// TestListBuilds tests ordering, filtering and limits.
func TestListBuilds(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	// Sub-second offsets check that text ordering matches time ordering.
	for i, root := range []string{"a/index.html", "b/index.html", "a/index.html"} {
		s := testSummary(root, base.Add(time.Duration(i)*100*time.Millisecond+time.Duration(i)))
		if _, err := db.SaveBuild(ctx, s); err != nil {
			t.Fatalf("SaveBuild failed: %v", err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()

		builds, err := db.ListBuilds(ctx, "", 0)
		if err != nil {
			t.Fatalf("ListBuilds failed: %v", err)
		}
		if len(builds) != 3 {
			t.Fatalf("expected 3 builds, got %d", len(builds))
		}
		for i := 1; i < len(builds); i++ {
			if builds[i-1].StartedAt.Before(builds[i].StartedAt) {
				t.Errorf("builds not sorted newest first: %v before %v", builds[i-1].StartedAt, builds[i].StartedAt)
			}
		}
	})

	t.Run("limit", func(t *testing.T) {
		t.Parallel()

		builds, err := db.ListBuilds(ctx, "", 2)
		if err != nil {
			t.Fatalf("ListBuilds failed: %v", err)
		}
		if len(builds) != 2 {
			t.Errorf("expected 2 builds, got %d", len(builds))
		}
	})

	t.Run("filter by root", func(t *testing.T) {
		t.Parallel()

		builds, err := db.ListBuilds(ctx, "b/index.html", 0)
		if err != nil {
			t.Fatalf("ListBuilds failed: %v", err)
		}
		if len(builds) != 1 || builds[0].Root != "b/index.html" {
			t.Errorf("expected the single b build, got %+v", builds)
		}
	})

	t.Run("latest build of root", func(t *testing.T) {
		t.Parallel()

		latest, err := db.LatestBuild(ctx, "a/index.html")
		if err != nil {
			t.Fatalf("LatestBuild failed: %v", err)
		}
		if latest == nil || !latest.StartedAt.Equal(base.Add(200*time.Millisecond+2)) {
			t.Errorf("expected the second a build, got %+v", latest)
		}

		none, err := db.LatestBuild(ctx, "c/index.html")
		if err != nil {
			t.Fatalf("LatestBuild failed: %v", err)
		}
		if none != nil {
			t.Errorf("expected nil for unknown root, got %+v", none)
		}
	})
}

// TestBuildNotFound tests lookups of unknown ids.
func TestBuildNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetBuild(ctx, 42); !errors.Is(err, ErrBuildNotFound) {
		t.Errorf("GetBuild: expected ErrBuildNotFound, got %v", err)
	}
	if _, err := db.GetBuildPages(ctx, 42); !errors.Is(err, ErrBuildNotFound) {
		t.Errorf("GetBuildPages: expected ErrBuildNotFound, got %v", err)
	}
}

// TestParseTimestamp tests timestamp parsing with multiple formats.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for _, s := range []string{
		"2026-10-01T12:00:00.000000000Z",
		"2026-10-01T12:00:00Z",
		"2026-10-01 12:00:00",
	} {
		if got := parseTimestamp(s); !got.Equal(want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", s, got, want)
		}
	}
	if got := parseTimestamp("yesterday"); !got.IsZero() {
		t.Errorf("expected zero time, got %v", got)
	}
}
