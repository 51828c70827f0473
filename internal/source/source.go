// Package source abstracts how the crawler reads referenced files so that the
// rewriting logic can be exercised against an in-memory file map in tests.
package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Source reads files by path.
//
// Design decision: We use a one-method interface rather than io/fs.FS because:
//  1. fs.FS forbids absolute and "../" paths, which relative references in
//     real documents routinely produce
//  2. The crawler only ever needs whole-file reads
type Source interface {
	// ReadFile returns the full contents of the named file.
	ReadFile(name string) ([]byte, error)
}

// OS reads from the local filesystem.
type OS struct{}

// ReadFile implements Source.
func (OS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) //nolint:gosec // Reading user-referenced files is the purpose
}

// Map is an in-memory Source keyed by slash-separated, cleaned paths.
type Map map[string][]byte

// ReadFile implements Source.
// Missing entries return an error wrapping fs.ErrNotExist.
func (m Map) ReadFile(name string) ([]byte, error) {
	data, ok := m[key(name)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

func key(name string) string {
	return filepath.ToSlash(filepath.Clean(name))
}

// Recorder wraps a Source and remembers every path read through it.
// It is safe for concurrent use.
type Recorder struct {
	src   Source
	mu    sync.Mutex
	reads []string
}

// NewRecorder creates a Recorder around src.
func NewRecorder(src Source) *Recorder {
	return &Recorder{src: src}
}

// ReadFile implements Source.
func (r *Recorder) ReadFile(name string) ([]byte, error) {
	r.mu.Lock()
	r.reads = append(r.reads, key(name))
	r.mu.Unlock()

	data, err := r.src.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Reads returns the cleaned paths read so far, in order.
func (r *Recorder) Reads() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.reads...)
}

// Count returns how many times path was read.
func (r *Recorder) Count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.reads {
		if p == key(path) {
			n++
		}
	}
	return n
}
