package model

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// PageIDSize is the size of a PageID digest in bytes.
const PageIDSize = sha256.Size

// shortIDLength is the number of hex characters used by Short.
const shortIDLength = 12

// ErrInvalidPageID is returned by ParsePageID for malformed input.
var ErrInvalidPageID = errors.New("invalid page id")

// PageID identifies a linked page by the SHA-256 digest of its exact,
// unmodified source bytes. Two pages share a PageID iff their sources are
// byte-identical, regardless of the path they were reached through.
//
// Design decision: PageID is a fixed-size array rather than a string or slice
// because:
//  1. Arrays are comparable, so PageID can key a map directly
//  2. Equality is defined purely over the digest bytes
//  3. The zero value is distinguishable via IsZero
type PageID [PageIDSize]byte

// NewPageID computes the identity of a page from its raw source.
// It must be called before the page is parsed or rewritten.
func NewPageID(raw []byte) PageID {
	return PageID(sha256.Sum256(raw))
}

// ParsePageID parses the lowercase hexadecimal form produced by String.
func ParsePageID(s string) (PageID, error) {
	var id PageID
	if len(s) != hex.EncodedLen(PageIDSize) {
		return id, fmt.Errorf("%w: expected %d hex characters, got %d",
			ErrInvalidPageID, hex.EncodedLen(PageIDSize), len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("%w: %w", ErrInvalidPageID, err)
	}
	return id, nil
}

// String returns the lowercase hexadecimal form of the digest.
func (id PageID) String() string {
	return hex.EncodeToString(id[:])
}

// Anchor returns the in-document fragment reference for the page.
func (id PageID) Anchor() string {
	return "#" + id.String()
}

// Short returns an abbreviated hex form for logs and reports.
func (id PageID) Short() string {
	return id.String()[:shortIDLength]
}

// IsZero reports whether id is the zero value.
func (id PageID) IsZero() bool {
	return id == PageID{}
}

// MarshalText implements encoding.TextMarshaler so that PageID serializes
// as hex in JSON and YAML.
func (id PageID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *PageID) UnmarshalText(text []byte) error {
	parsed, err := ParsePageID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
