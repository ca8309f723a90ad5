package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/himanishpuri/SongSearch/pkg/songsearch"
)

// SongRequest is the request body for POST /api/songs and POST /song.
// The title travels as "song" on the wire.
type SongRequest struct {
	Artist      string `json:"artist"`
	Song        string `json:"song"`
	Album       string `json:"album"`
	Year        *int   `json:"year"`
	Description string `json:"description"`
}

// Validate checks if the request is valid
func (r *SongRequest) Validate() error {
	if strings.TrimSpace(r.Artist) == "" && strings.TrimSpace(r.Song) == "" {
		return fmt.Errorf("artist or song is required")
	}
	if r.Year != nil && *r.Year < 0 {
		return fmt.Errorf("year must be non-negative")
	}
	return nil
}

func (r *SongRequest) toSong() songsearch.Song {
	return songsearch.Song{
		Artist:      r.Artist,
		Title:       r.Song,
		Album:       r.Album,
		Year:        r.Year,
		Description: r.Description,
	}
}

// SearchRequest is the request body for POST /api/search and POST /search.
// Artist, Song, Album and Year are optional exact-match filters.
type SearchRequest struct {
	Query  string `json:"query"`
	TopK   int    `json:"top_k"`
	Artist string `json:"artist"`
	Song   string `json:"song"`
	Album  string `json:"album"`
	Year   *int   `json:"year"`
}

// Validate checks if the request is valid
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("missing search query")
	}
	if r.TopK < 0 {
		return fmt.Errorf("top_k must be non-negative")
	}
	return nil
}

func (r *SearchRequest) toRequest() songsearch.SearchRequest {
	f := songsearch.Filters{Artist: r.Artist, Title: r.Song, Album: r.Album}
	if r.Year != nil {
		f.Year = *r.Year
	}
	return songsearch.SearchRequest{Query: r.Query, Filters: f, TopK: r.TopK}
}

// AddSongResponse is the response for successful song addition
type AddSongResponse struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
}

// SongDTO represents a song in API responses
type SongDTO struct {
	Hash        string `json:"hash"`
	Artist      string `json:"artist"`
	Song        string `json:"song"`
	Album       string `json:"album"`
	Year        *int   `json:"year"`
	Description string `json:"description"`
	Model       string `json:"model,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func songDTO(cs songsearch.CatalogSong) SongDTO {
	dto := SongDTO{
		Hash:        cs.Fingerprint,
		Artist:      cs.Artist,
		Song:        cs.Title,
		Album:       cs.Album,
		Year:        cs.Year,
		Description: cs.Description,
		Model:       cs.Model,
	}
	if !cs.CreatedAt.IsZero() {
		dto.CreatedAt = cs.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// SearchResultDTO is one ranked hit: the record fields plus similarity.
type SearchResultDTO struct {
	Hash        string  `json:"hash"`
	Artist      string  `json:"artist"`
	Song        string  `json:"song"`
	Album       string  `json:"album"`
	Year        *int    `json:"year"`
	Description string  `json:"description"`
	Similarity  float64 `json:"similarity"`
}

func searchResultDTOs(results []songsearch.SearchResult) []SearchResultDTO {
	out := make([]SearchResultDTO, len(results))
	for i, r := range results {
		out[i] = SearchResultDTO{
			Hash:        r.Fingerprint,
			Artist:      r.Artist,
			Song:        r.Title,
			Album:       r.Album,
			Year:        r.Year,
			Description: r.Description,
			Similarity:  r.Similarity,
		}
	}
	return out
}

// SearchResponse is the response for POST /api/search. POST /search
// returns only the Results array.
type SearchResponse struct {
	Query      string            `json:"query"`
	TopK       int               `json:"top_k"`
	Candidates int               `json:"candidates"`
	Count      int               `json:"count"`
	Results    []SearchResultDTO `json:"results"`
}

// ListSongsResponse is the response for GET /api/songs
type ListSongsResponse struct {
	Songs []SongDTO `json:"songs"`
	Count int       `json:"count"`
}

// DeleteSongResponse is the response for DELETE /api/songs/{hash}
type DeleteSongResponse struct {
	Message string `json:"message"`
	Hash    string `json:"hash"`
}

// MetricsResponse provides server health and catalog metrics
type MetricsResponse struct {
	Status         string   `json:"status"`
	DatabasePath   string   `json:"database_path"`
	SongCount      int64    `json:"song_count"`
	EmbeddingModel string   `json:"embedding_model"`
	Dimension      int      `json:"dimension"`
	StoredModels   []string `json:"stored_models"`
	Uptime         string   `json:"uptime"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      int    `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
