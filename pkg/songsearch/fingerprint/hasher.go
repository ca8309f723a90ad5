// Package fingerprint derives the content identity of a song record and the
// canonical text that is fed to the embedder.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// Separator joins the identity fields before hashing.
	Separator = "|"

	// TextSeparator joins the fields of the canonical embedding text.
	TextSeparator = ", "

	// Length is the length of a fingerprint in hex characters.
	Length = sha256.Size * 2
)

// Fields is the ordered identity tuple of a song. A missing year is an empty
// string, so an absent field and an explicitly empty one hash identically.
type Fields struct {
	Artist      string
	Title       string
	Album       string
	Year        string
	Description string
}

// Compute returns the lowercase hex SHA-256 of artist|title|album|year|description.
func Compute(f Fields) string {
	joined := strings.Join([]string{f.Artist, f.Title, f.Album, f.Year, f.Description}, Separator)
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}

// CanonicalText renders the record as "title, artist, album, year, description".
// Note the title leads here while the artist leads in the identity tuple.
func CanonicalText(f Fields) string {
	return strings.Join([]string{f.Title, f.Artist, f.Album, f.Year, f.Description}, TextSeparator)
}

// Valid reports whether s looks like a fingerprint produced by Compute.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
