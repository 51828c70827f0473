package config

// File is the structure of the .onepage configuration file.
// Every field is optional; unset fields keep the built-in defaults.
type File struct {
	// Title is the output document title.
	Title string `yaml:"title,omitempty"`

	// MissingTitle replaces the title of pages without a <title>.
	MissingTitle string `yaml:"missingTitle,omitempty"`

	// UnknownSVGTitle replaces the title of linked SVGs without a caption.
	UnknownSVGTitle string `yaml:"unknownSvgTitle,omitempty"`

	// RemotePrefix marks references that are never read. Default "http".
	RemotePrefix string `yaml:"remotePrefix,omitempty"`

	// SVGTitleIgnorePrefixes replaces the list of boilerplate SVG captions.
	// An explicit empty list disables filtering.
	SVGTitleIgnorePrefixes []string `yaml:"svgTitleIgnorePrefixes,omitempty"`

	// MediaTypes maps file extensions (e.g. "jpg" or ".jpg") to the media
	// type declared on inlined resources.
	MediaTypes map[string]string `yaml:"mediaTypes,omitempty"`

	// History enables or disables recording builds. Default true.
	History *bool `yaml:"history,omitempty"`

	// Targets lists documents built together when bundle runs without --root.
	Targets []Target `yaml:"targets,omitempty"`

	// Jobs is the number of targets built at once.
	Jobs int `yaml:"jobs,omitempty"`
}

// Target is one document of a multi-document build.
type Target struct {
	Root  string `yaml:"root"`
	Dest  string `yaml:"dest"`
	Title string `yaml:"title,omitempty"`
}
