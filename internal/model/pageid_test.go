package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// TestNewPageID tests content-addressed page identity.
func TestNewPageID(t *testing.T) {
	t.Parallel()

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		src := []byte("<html><body>Hi</body></html>")
		if NewPageID(src) != NewPageID(src) {
			t.Error("expected equal ids for the same content")
		}
	})

	t.Run("byte identical content from different buffers is equal", func(t *testing.T) {
		t.Parallel()

		a := []byte("<body>same</body>")
		b := append([]byte(nil), a...)
		if NewPageID(a) != NewPageID(b) {
			t.Error("expected equal ids for byte-identical content")
		}
	})

	t.Run("different content differs", func(t *testing.T) {
		t.Parallel()

		a := NewPageID([]byte("<body>a</body>"))
		b := NewPageID([]byte("<body>a</body>\n"))
		if a == b {
			t.Error("expected different ids for different content")
		}
	})

	t.Run("matches known sha256 digest", func(t *testing.T) {
		t.Parallel()

		// sha256("")
		want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
		if got := NewPageID(nil).String(); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})
}

// TestPageIDText tests the textual forms of PageID.
func TestPageIDText(t *testing.T) {
	t.Parallel()

	id := NewPageID([]byte("page"))

	t.Run("string is lowercase hex of 64 characters", func(t *testing.T) {
		t.Parallel()

		s := id.String()
		if len(s) != 64 {
			t.Errorf("expected 64 characters, got %d", len(s))
		}
		if s != strings.ToLower(s) {
			t.Errorf("expected lowercase hex, got %s", s)
		}
	})

	t.Run("anchor prefixes a hash", func(t *testing.T) {
		t.Parallel()

		if id.Anchor() != "#"+id.String() {
			t.Errorf("unexpected anchor %q", id.Anchor())
		}
	})

	t.Run("short is a prefix", func(t *testing.T) {
		t.Parallel()

		if !strings.HasPrefix(id.String(), id.Short()) {
			t.Errorf("expected %q to prefix %q", id.Short(), id.String())
		}
	})

	t.Run("parse round trips", func(t *testing.T) {
		t.Parallel()

		parsed, err := ParsePageID(id.String())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if parsed != id {
			t.Error("expected parsed id to equal original")
		}
	})

	t.Run("parse rejects wrong length", func(t *testing.T) {
		t.Parallel()

		_, err := ParsePageID("abc")
		if !errors.Is(err, ErrInvalidPageID) {
			t.Errorf("expected ErrInvalidPageID, got %v", err)
		}
	})

	t.Run("parse rejects non hex", func(t *testing.T) {
		t.Parallel()

		_, err := ParsePageID(strings.Repeat("z", 64))
		if !errors.Is(err, ErrInvalidPageID) {
			t.Errorf("expected ErrInvalidPageID, got %v", err)
		}
	})

	t.Run("json uses hex", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(RenderItem{LinkMarker: id})
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}
		if !strings.Contains(string(data), `"linkmarker":"`+id.String()+`"`) {
			t.Errorf("expected hex linkmarker in %s", data)
		}
	})

	t.Run("zero value", func(t *testing.T) {
		t.Parallel()

		var zero PageID
		if !zero.IsZero() {
			t.Error("expected zero value to report IsZero")
		}
		if id.IsZero() {
			t.Error("expected computed id not to be zero")
		}
	})
}
