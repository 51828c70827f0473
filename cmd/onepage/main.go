// Package main provides the entry point for the onepage CLI.
//
// onepage bundles a local HTML report, every page it links to and the
// resources those pages reference into one self-contained HTML file.
//
// Usage:
//
//	onepage bundle --root target/criterion/report/index.html --dest report.html
//	DEST=report.html onepage bundle --root target/criterion/report/index.html
//
// See --help for all available options.
package main

// main is the entry point for onepage.
func main() {
	Execute()
}
