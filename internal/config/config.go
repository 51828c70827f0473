package config

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/adrg/xdg"

	"github.com/nao1215/onepage/internal/crawler"
	"github.com/nao1215/onepage/internal/log"
	"github.com/nao1215/onepage/internal/tree"
)

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "onepage"

	// DestEnv names the environment variable used when --dest is not given.
	DestEnv = "DEST"

	// DefaultJobs is the number of targets built at once.
	DefaultJobs = 4
)

// Config holds all configuration options for a build.
// It is populated from the optional configuration file first and from CLI
// flags second, then passed through the application explicitly.
//
// Design decision: We use a single flat struct because every option belongs
// to the one build the command runs. The crawler, renderer and history store
// each receive the fields they need as options.
type Config struct {
	// Root is the HTML document the build starts from.
	Root string

	// Dest is the file the bundled document is written to.
	Dest string

	// Title overrides the output document title. When empty the root page's
	// title is used.
	Title string

	// ReportFile is where a Markdown build report is written. Empty means no
	// report file; a short summary is still printed.
	ReportFile string

	// ConfigFilePath is the explicit configuration file, if any.
	ConfigFilePath string

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is log.FormatText or log.FormatJSON.
	LogFormat string

	// SaveHistory records the build in the history database.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/onepage on Linux).
	DBDir string

	// MissingTitle replaces the title of pages without a <title>.
	MissingTitle string

	// UnknownSVGTitle replaces the title of linked SVGs without a caption.
	UnknownSVGTitle string

	// RemotePrefix marks references that are never read.
	RemotePrefix string

	// SVGIgnorePrefixes are SVG captions skipped when titling linked charts.
	SVGIgnorePrefixes []string

	// MediaTypes adds extension to media type mappings for inlined src
	// resources, on top of the built-in svg and png entries.
	MediaTypes map[string]string

	// Targets are built instead of Root when Root is empty.
	Targets []Target

	// Jobs is the number of Targets built at once.
	Jobs int
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (placeholder titles,
// the remote prefix, history on). This also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		LogFormat:         log.FormatText,
		SaveHistory:       true,
		DBDir:             XDGDataDir(),
		MissingTitle:      crawler.DefaultMissingTitle,
		UnknownSVGTitle:   crawler.DefaultUnknownSVGTitle,
		RemotePrefix:      crawler.DefaultRemotePrefix,
		SVGIgnorePrefixes: slices.Clone(tree.DefaultSVGIgnorePrefixes),
		MediaTypes:        make(map[string]string),
		Jobs:              DefaultJobs,
	}
}

// ApplyFile copies the values set in f over c. Unset file values keep the
// current ones, so flags applied afterwards still win.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.Title != "" {
		c.Title = f.Title
	}
	if f.MissingTitle != "" {
		c.MissingTitle = f.MissingTitle
	}
	if f.UnknownSVGTitle != "" {
		c.UnknownSVGTitle = f.UnknownSVGTitle
	}
	if f.RemotePrefix != "" {
		c.RemotePrefix = f.RemotePrefix
	}
	if f.SVGTitleIgnorePrefixes != nil {
		c.SVGIgnorePrefixes = slices.Clone(f.SVGTitleIgnorePrefixes)
	}
	if len(f.MediaTypes) > 0 {
		if c.MediaTypes == nil {
			c.MediaTypes = make(map[string]string, len(f.MediaTypes))
		}
		for ext, mediaType := range f.MediaTypes {
			c.MediaTypes[ext] = mediaType
		}
	}
	if f.History != nil {
		c.SaveHistory = *f.History
	}
	if len(f.Targets) > 0 {
		c.Targets = slices.Clone(f.Targets)
	}
	if f.Jobs > 0 {
		c.Jobs = f.Jobs
	}
}

// Batch reports whether the configuration builds Targets rather than a
// single Root.
func (c *Config) Batch() bool {
	return c.Root == "" && len(c.Targets) > 0
}

// CrawlerOptions returns the crawler options described by c.
func (c *Config) CrawlerOptions() []crawler.Option {
	return []crawler.Option{
		crawler.WithMissingTitle(c.MissingTitle),
		crawler.WithUnknownSVGTitle(c.UnknownSVGTitle),
		crawler.WithRemotePrefix(c.RemotePrefix),
		crawler.WithSVGIgnorePrefixes(c.SVGIgnorePrefixes),
		crawler.WithMediaTypes(c.MediaTypes),
	}
}

// XDGDataDir returns the XDG data directory for onepage.
// On Linux: ~/.local/share/onepage
// On macOS: ~/Library/Application Support/onepage
// On Windows: %LOCALAPPDATA%\onepage
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for onepage.
// On Linux: ~/.config/onepage
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.Batch() {
		if err := c.validateTargets(); err != nil {
			return err
		}
	} else {
		if c.Root == "" {
			return ErrNoRoot
		}
		if c.Dest == "" {
			return ErrNoDest
		}
		if samePath(c.Root, c.Dest) {
			return ErrSameRootAndDest
		}
	}

	switch c.LogFormat {
	case log.FormatText, log.FormatJSON:
	default:
		return ErrInvalidLogFormat
	}

	if c.RemotePrefix == "" {
		return ErrEmptyRemotePrefix
	}
	if c.Jobs < 1 {
		return ErrInvalidJobs
	}
	return nil
}

func (c *Config) validateTargets() error {
	dests := make([]string, 0, len(c.Targets))
	for i, t := range c.Targets {
		if t.Root == "" || t.Dest == "" {
			return fmt.Errorf("target %d: %w", i+1, ErrIncompleteTarget)
		}
		if samePath(t.Root, t.Dest) {
			return fmt.Errorf("target %d (%s): %w", i+1, t.Root, ErrSameRootAndDest)
		}
		for _, d := range dests {
			if samePath(d, t.Dest) {
				return fmt.Errorf("target %d (%s): %w", i+1, t.Dest, ErrDuplicateDest)
			}
		}
		dests = append(dests, t.Dest)
	}
	return nil
}

// samePath reports whether a and b name the same file, comparing absolute
// cleaned paths. Symlinks are not resolved.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
