// Package log provides the application's slog setup.
//
// Bundled documents carry whole files as data URLs, and a single attribute
// can easily hold megabytes of base64. The ElidingHandler wraps any
// slog.Handler and shortens such values before they are written:
//   - data URLs are replaced by their header and decoded payload size
//   - other very long strings are cut and annotated with their length
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("inlined resource", "src", dataURL) // src=data:image/png;base64,…(2048 bytes)
//
//	slog.SetDefault(logger)
//
// NewJSONLogger produces the same records as JSON for log aggregation.
package log
