// Package database provides SQLite-based build history for onepage.
//
// Every bundle run can be recorded as a build: the root and destination
// paths, counters describing what was inlined, and the list of pages that
// ended up in the document. The history lets users see when a document was
// last built and how its page set changed.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
package database
