// Package dataurl builds and parses RFC 2397 data URLs used to embed
// resources directly inside document attributes.
package dataurl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// DefaultCharset is the charset implied by a data URL without a charset
// parameter. Encode omits it because spelling it out is redundant.
const DefaultCharset = "US-ASCII"

const (
	scheme        = "data:"
	base64Marker  = ";base64"
	charsetPrefix = ";charset="
)

// ErrMalformed is returned by Decode for strings that are not base64 data URLs.
var ErrMalformed = errors.New("malformed data url")

// Encode builds `data:<mediaType>[;charset=<charset>];base64,<payload>`.
//
// The payload uses the standard base64 alphabet without padding. The charset
// parameter is left out when charset is empty or names the default
// US-ASCII charset (compared case-insensitively). An empty mediaType is
// allowed and yields a type-less data URL.
func Encode(mediaType, charset string, data []byte) string {
	charset = strings.TrimSpace(charset)

	var b strings.Builder
	b.Grow(len(scheme) + len(mediaType) + len(charsetPrefix) + len(charset) +
		len(base64Marker) + 1 + base64.RawStdEncoding.EncodedLen(len(data)))

	b.WriteString(scheme)
	b.WriteString(mediaType)
	if charset != "" && !strings.EqualFold(charset, DefaultCharset) {
		b.WriteString(charsetPrefix)
		b.WriteString(charset)
	}
	b.WriteString(base64Marker)
	b.WriteByte(',')
	b.WriteString(base64.RawStdEncoding.EncodeToString(data))
	return b.String()
}

// URL is a decoded base64 data URL.
type URL struct {
	MediaType string
	Charset   string
	Data      []byte
}

// Decode parses a base64 data URL as produced by Encode.
// Both padded and unpadded payloads are accepted.
func Decode(s string) (*URL, error) {
	if !IsDataURL(s) {
		return nil, fmt.Errorf("%w: missing %q scheme", ErrMalformed, scheme)
	}

	header, payload, ok := strings.Cut(s[len(scheme):], ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing ',' separator", ErrMalformed)
	}
	if !strings.HasSuffix(header, base64Marker) {
		return nil, fmt.Errorf("%w: only base64 payloads are supported", ErrMalformed)
	}
	header = strings.TrimSuffix(header, base64Marker)

	u := &URL{}
	params := strings.Split(header, ";")
	u.MediaType = params[0]
	for _, p := range params[1:] {
		if v, found := strings.CutPrefix(p, "charset="); found {
			u.Charset = v
		}
	}

	data, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	u.Data = data
	return u, nil
}

// IsDataURL reports whether s uses the data scheme.
func IsDataURL(s string) bool {
	return len(s) >= len(scheme) && strings.EqualFold(s[:len(scheme)], scheme)
}

// Describe returns a short form of a base64 data URL suitable for logs:
// the header followed by the decoded payload size instead of the payload.
// Strings that are not data URLs are returned unchanged.
func Describe(s string) string {
	if !IsDataURL(s) {
		return s
	}
	header, payload, ok := strings.Cut(s, ",")
	if !ok {
		return s
	}
	size := base64.RawStdEncoding.DecodedLen(len(strings.TrimRight(payload, "=")))
	return fmt.Sprintf("%s,…(%d bytes)", header, size)
}
