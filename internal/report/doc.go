// Package report writes build summaries.
//
// This package contains writers for different output formats:
//   - SimpleWriter: a short plain-text summary printed after each build
//   - MarkdownWriter: a detailed report for --report files
//   - JSONWriter: the summary as JSON for tool integration
//
// Design decision: We separate report writing from the summary data
// structure (which is in the model package) so that the history database
// and the writers share one description of a build.
package report
