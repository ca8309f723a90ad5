package songsearch

import (
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/SongSearch/pkg/songsearch/fingerprint"
)

// Song is the metadata record submitted by clients.
type Song struct {
	Artist      string // Performing artist
	Title       string // Song title
	Album       string // Album name
	Year        *int   // Release year, nil when unknown
	Description string // Free-text description
}

// YearString renders the year for hashing and embedding; unknown is "".
func (s Song) YearString() string {
	if s.Year == nil {
		return ""
	}
	return strconv.Itoa(*s.Year)
}

func (s Song) fields() fingerprint.Fields {
	return fingerprint.Fields{
		Artist:      s.Artist,
		Title:       s.Title,
		Album:       s.Album,
		Year:        s.YearString(),
		Description: s.Description,
	}
}

// Fingerprint returns the content identity of the record.
func (s Song) Fingerprint() string {
	return fingerprint.Compute(s.fields())
}

// CanonicalText returns the text that is embedded for the record.
func (s Song) CanonicalText() string {
	return fingerprint.CanonicalText(s.fields())
}

// Validate rejects records that carry neither an artist nor a title, or a
// negative year.
func (s Song) Validate() error {
	if strings.TrimSpace(s.Artist) == "" && strings.TrimSpace(s.Title) == "" {
		return invalidf("artist or title is required")
	}
	if s.Year != nil && *s.Year < 0 {
		return invalidf("year must be non-negative, got %d", *s.Year)
	}
	return nil
}

// Entry is a stored catalog row. Embedding holds the JSON-encoded vector.
type Entry struct {
	Fingerprint string
	Song
	Embedding string
	Model     string
	CreatedAt time.Time
}

// CatalogSong is a stored record without its vector.
type CatalogSong struct {
	Fingerprint string
	Song
	Model     string
	CreatedAt time.Time
}

// Filters narrows a search or listing by exact match. Empty strings and a
// zero Year are ignored.
type Filters struct {
	Artist string
	Title  string
	Album  string
	Year   int
}

// AddResult reports the outcome of an insert. Created is false when the
// fingerprint was already present and nothing was written.
type AddResult struct {
	Fingerprint string
	Created     bool
}

type SearchRequest struct {
	Query   string
	Filters Filters
	TopK    int
}

// SearchResult is one ranked hit. Similarity is rounded to four decimals;
// Distance is the unrounded squared L2 distance used for ordering.
type SearchResult struct {
	Fingerprint string
	Song
	Similarity float64
	Distance   float64
}

type SearchResponse struct {
	Query      string
	TopK       int // effective value after defaulting and clamping
	Candidates int // entries that passed the filters
	Results    []SearchResult
}

// Stats summarises the catalog and the active embedder.
type Stats struct {
	Songs        int64
	Model        string
	Dimension    int
	StoredModels []string
}
