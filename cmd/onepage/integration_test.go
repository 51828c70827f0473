package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/onepage/internal/model"
)

// writeFiles creates files below dir. Keys are slash-separated paths.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

// reportSite is a small criterion-like report: an index page linking to a
// benchmark page and a chart, with a shared stylesheet and an image.
var reportSite = map[string]string{
	"report/index.html": `<!DOCTYPE html>
<html><head><title>Index</title><link rel="stylesheet" href="../style.css"></head>
<body>
<h2>Benchmarks</h2>
<a href="fib/index.html">fib</a>
<a href="https://example.com/docs">docs</a>
<img src="missing.png">
</body></html>`,
	"report/fib/index.html": `<!DOCTYPE html>
<html><head><title>fib</title></head>
<body>
<a href="pdf.svg"><img src="pdf_small.png"></a>
<a href="../index.html">back</a>
</body></html>`,
	"report/fib/pdf.svg":       `<svg xmlns="http://www.w3.org/2000/svg"><text><tspan>fib: PDF</tspan></text></svg>`,
	"report/fib/pdf_small.png": "\x89PNG",
	"style.css":                "body { color: #333; }",
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func loadDocument(t *testing.T, path string) *goquery.Document {
	t.Helper()

	data, err := os.ReadFile(path) //nolint:gosec // test file
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}
	return doc
}

// emptyConfig writes an empty configuration file so that tests never pick
// up a .onepage from the developer's home directory.
func emptyConfig(t *testing.T) string {
	t.Helper()
	return writeConfigFile(t, "")
}

// TestBundleEndToEnd bundles a report from disk through the CLI.
func TestBundleEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, reportSite)
	root := filepath.Join(dir, "report", "index.html")
	dest := filepath.Join(dir, "out", "report.html")
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		t.Fatalf("failed to create output dir: %v", err)
	}
	reportFile := filepath.Join(dir, "out", "build.md")
	dbDir := filepath.Join(dir, "db")

	stdout, _, err := runCLI(t, "bundle",
		"-c", emptyConfig(t),
		"--root", root,
		"--dest", dest,
		"--report", reportFile,
		"--db-dir", dbDir,
	)
	if err != nil {
		t.Fatalf("bundle failed: %v", err)
	}

	doc := loadDocument(t, dest)

	rootID := model.NewPageID([]byte(reportSite["report/index.html"]))
	fibID := model.NewPageID([]byte(reportSite["report/fib/index.html"]))
	svgID := model.NewPageID([]byte(reportSite["report/fib/pdf.svg"]))

	t.Run("sections in document order", func(t *testing.T) {
		var ids []string
		doc.Find("section.page").Each(func(_ int, s *goquery.Selection) {
			id, _ := s.Attr("id")
			ids = append(ids, id)
		})
		want := []string{rootID.String(), fibID.String(), svgID.String()}
		if strings.Join(ids, ",") != strings.Join(want, ",") {
			t.Errorf("expected sections %v, got %v", want, ids)
		}
	})

	t.Run("links become anchors", func(t *testing.T) {
		rootSection := doc.Find(`section[id="` + rootID.String() + `"]`)
		fibSection := doc.Find(`section[id="` + fibID.String() + `"]`)

		if href, _ := rootSection.Find(`a:contains("fib")`).Attr("href"); href != fibID.Anchor() {
			t.Errorf("expected fib link %s, got %s", fibID.Anchor(), href)
		}
		if href, _ := fibSection.Find(`a:contains("back")`).Attr("href"); href != rootID.Anchor() {
			t.Errorf("expected back link %s, got %s", rootID.Anchor(), href)
		}
		if href, _ := fibSection.Find("a").First().Attr("href"); href != svgID.Anchor() {
			t.Errorf("expected chart link %s, got %s", svgID.Anchor(), href)
		}
	})

	t.Run("resources are inlined", func(t *testing.T) {
		fibSection := doc.Find(`section[id="` + fibID.String() + `"]`)
		if src, _ := fibSection.Find("img").Attr("src"); !strings.HasPrefix(src, "data:image/png;base64,") {
			t.Errorf("expected inlined png, got %s", src)
		}
	})

	t.Run("remote and missing references are kept", func(t *testing.T) {
		rootSection := doc.Find(`section[id="` + rootID.String() + `"]`)
		if href, _ := rootSection.Find(`a:contains("docs")`).Attr("href"); href != "https://example.com/docs" {
			t.Errorf("expected remote link to be kept, got %s", href)
		}
		if src, _ := rootSection.Find("img").Attr("src"); src != "missing.png" {
			t.Errorf("expected missing image to be kept, got %s", src)
		}
	})

	t.Run("svg chart is embedded", func(t *testing.T) {
		svgSection := doc.Find(`section[id="` + svgID.String() + `"]`)
		if !svgSection.HasClass("svg") {
			t.Error("expected svg section class")
		}
		if title := svgSection.Find("h1.page-title").Text(); title != "fib: PDF" {
			t.Errorf("expected chart title, got %q", title)
		}
	})

	t.Run("document title and generator", func(t *testing.T) {
		if title := doc.Find("title").Text(); title != "Index" {
			t.Errorf("expected title Index, got %q", title)
		}
		if gen, _ := doc.Find(`meta[name="generator"]`).Attr("content"); !strings.HasPrefix(gen, "onepage ") {
			t.Errorf("expected generator meta, got %q", gen)
		}
	})

	t.Run("summary is printed", func(t *testing.T) {
		for _, want := range []string{"Wrote " + dest, "Pages:     3 (root + 2 linked)", "Missing:   1"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected %q in output, got %q", want, stdout)
			}
		}
	})

	t.Run("report file is written", func(t *testing.T) {
		data, err := os.ReadFile(reportFile) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(data), "onepage build report") {
			t.Errorf("expected markdown report, got %q", data)
		}
		if !strings.Contains(string(data), "missing.png") {
			t.Error("expected missing reference in report")
		}
	})

	t.Run("history records the build", func(t *testing.T) {
		out, _, err := runCLI(t, "history", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(out, "Build history (1 builds)") || !strings.Contains(out, root) {
			t.Errorf("expected one recorded build, got %q", out)
		}

		out, _, err = runCLI(t, "history", "--db-dir", dbDir, "--build", "1")
		if err != nil {
			t.Fatalf("history --build failed: %v", err)
		}
		for _, want := range []string{"Build 1", "root", "fib: PDF", fibID.Short()} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got %q", want, out)
			}
		}
	})
}

// TestBundleFailures tests that fatal problems fail the command and name
// the offending file.
func TestBundleFailures(t *testing.T) {
	t.Parallel()

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		root := filepath.Join(dir, "nope.html")
		_, _, err := runCLI(t, "bundle", "-c", emptyConfig(t), "--no-history",
			"--root", root, "--dest", filepath.Join(dir, "out.html"))
		if err == nil || !strings.Contains(err.Error(), root) {
			t.Errorf("expected error naming %s, got %v", root, err)
		}
	})

	t.Run("linked page without body", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"index.html": `<html><head><title>I</title></head><body><a href="frame.html">f</a></body></html>`,
			"frame.html": `<html><head><title>F</title></head><frameset><frame src="a.html"></frameset></html>`,
		})
		dest := filepath.Join(dir, "out.html")

		_, _, err := runCLI(t, "bundle", "-c", emptyConfig(t), "--no-history",
			"--root", filepath.Join(dir, "index.html"), "--dest", dest)
		if err == nil || !strings.Contains(err.Error(), "frame.html") {
			t.Errorf("expected error naming frame.html, got %v", err)
		}
		if _, err := os.Stat(dest); !os.IsNotExist(err) {
			t.Errorf("expected no output file, got %v", err)
		}
	})

	t.Run("failed build keeps the previous report", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"index.html": `<html><head><title>I</title></head><body><a href="frame.html">f</a></body></html>`,
			"frame.html": `<html><head><title>F</title></head><frameset><frame src="a.html"></frameset></html>`,
			"build.md":   "previous report\n",
		})
		reportFile := filepath.Join(dir, "build.md")

		_, _, err := runCLI(t, "bundle", "-c", emptyConfig(t), "--no-history",
			"--root", filepath.Join(dir, "index.html"), "--dest", filepath.Join(dir, "out.html"),
			"--report", reportFile)
		if err == nil {
			t.Fatal("expected the build to fail")
		}

		data, err := os.ReadFile(reportFile) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if string(data) != "previous report\n" {
			t.Errorf("expected report to be kept, got %q", data)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".tmp") {
				t.Errorf("unexpected temporary file %s", e.Name())
			}
		}
	})

	t.Run("missing destination", func(t *testing.T) {
		t.Parallel()

		_, _, err := runCLI(t, "bundle", "-c", emptyConfig(t), "--no-history", "--root", "index.html", "--dest", "")
		if err == nil {
			t.Skip("DEST is set in the environment")
		}
		if !strings.Contains(err.Error(), "configuration error") {
			t.Errorf("expected configuration error, got %v", err)
		}
	})

	t.Run("invalid log format", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, _, err := runCLI(t, "--log-format", "xml", "bundle", "-c", emptyConfig(t), "--no-history",
			"--root", filepath.Join(dir, "a.html"), "--dest", filepath.Join(dir, "b.html"))
		if err == nil || !strings.Contains(err.Error(), "log format") {
			t.Errorf("expected log format error, got %v", err)
		}
	})
}

// TestBundleTargets builds several documents from the configuration file.
func TestBundleTargets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, reportSite)
	writeFiles(t, dir, map[string]string{
		"docs/index.html": `<html><head><title>Docs</title></head><body><p>Read me</p></body></html>`,
	})

	a := filepath.Join(dir, "a.html")
	b := filepath.Join(dir, "b.html")
	cfgPath := writeConfigFile(t, `title: "Shared"
targets:
  - root: `+filepath.Join(dir, "report", "index.html")+`
    dest: `+a+`
  - root: `+filepath.Join(dir, "docs", "index.html")+`
    dest: `+b+`
    title: "Documentation"
`)

	stdout, _, err := runCLI(t, "bundle", "-c", cfgPath, "--no-history", "--jobs", "2")
	if err != nil {
		t.Fatalf("bundle failed: %v", err)
	}

	if title := loadDocument(t, a).Find("title").Text(); title != "Shared" {
		t.Errorf("expected shared title, got %q", title)
	}
	if title := loadDocument(t, b).Find("title").Text(); title != "Documentation" {
		t.Errorf("expected target title, got %q", title)
	}
	if strings.Count(stdout, "Wrote ") != 2 {
		t.Errorf("expected two summaries, got %q", stdout)
	}
}

// TestHistoryEmpty tests history on a fresh database.
func TestHistoryEmpty(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, "history", "--db-dir", t.TempDir())
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "No builds recorded yet.") {
		t.Errorf("expected empty history message, got %q", out)
	}

	_, _, err = runCLI(t, "history", "--db-dir", t.TempDir(), "--build", "7")
	if err == nil || !strings.Contains(err.Error(), "build 7 not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}
