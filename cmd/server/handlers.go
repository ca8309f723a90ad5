package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/SongSearch/pkg/logger"
	"github.com/himanishpuri/SongSearch/pkg/songsearch"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service    songsearch.Service
	config     *ServerConfig
	log        songsearch.Logger
	static     http.Handler
	started    time.Time
	httpServer *http.Server
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr           string
	DBPath         string
	StaticDir      string
	AllowedOrigins []string
	RequestTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxBodyBytes   int64
}

// NewServer creates a new server instance
func NewServer(service songsearch.Service, config *ServerConfig, log *logger.Logger) *Server {
	if log == nil {
		log = logger.GetLogger()
	}
	s := &Server{
		service: service,
		config:  config,
		log:     log.Named("http"),
		started: time.Now(),
	}
	if config.StaticDir != "" {
		if info, err := os.Stat(config.StaticDir); err == nil && info.IsDir() {
			s.static = http.FileServer(http.Dir(config.StaticDir))
		}
	}
	s.httpServer = &http.Server{
		Addr:         config.Addr,
		Handler:      s.setupRoutes(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		Code:      statusCode,
		RequestID: w.Header().Get(requestIDHeader),
	})
}

// respondServiceError maps service errors onto status codes.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, songsearch.ErrInvalidInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, songsearch.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "Song not found")
	case songsearch.IsIntegrityError(err):
		s.log.Errorf("[%s] Catalog integrity failure: %v", requestID(r.Context()), err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Errorf("[%s] Request timed out: %v", requestID(r.Context()), err)
		s.respondError(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		s.log.Errorf("[%s] Request failed: %v", requestID(r.Context()), err)
		s.respondError(w, http.StatusInternalServerError, "Internal error")
	}
}

// decodeJSON reads a size-limited JSON body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

func (s *Server) hasIndex() bool {
	if s.static == nil {
		return false
	}
	info, err := os.Stat(filepath.Join(s.config.StaticDir, "index.html"))
	return err == nil && !info.IsDir()
}

// handleRoot serves static files, falling back to a service description
// at / when no index.html is present.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" && !s.hasIndex() {
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"service": "SongSearch API",
			"version": version,
			"endpoints": map[string]string{
				"health":     "GET /health",
				"metrics":    "GET /api/health/metrics",
				"songs":      "GET /api/songs",
				"addSong":    "POST /api/songs",
				"getSong":    "GET /api/songs/{hash}",
				"deleteSong": "DELETE /api/songs/{hash}",
				"search":     "POST /api/search",
			},
		})
		return
	}
	if s.static == nil || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		s.respondError(w, http.StatusNotFound, "File not found")
		return
	}
	s.static.ServeHTTP(w, r)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	stats, err := s.service.Stats(ctx)
	if err != nil {
		s.log.Errorf("Failed to get catalog stats: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:         "healthy",
		DatabasePath:   s.config.DBPath,
		SongCount:      stats.Songs,
		EmbeddingModel: stats.Model,
		Dimension:      stats.Dimension,
		StoredModels:   stats.StoredModels,
		Uptime:         time.Since(s.started).Round(time.Second).String(),
	})
}

// handleListSongs handles GET /api/songs with optional artist, song,
// album and year query filters.
func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	q := r.URL.Query()
	filters := songsearch.Filters{
		Artist: q.Get("artist"),
		Title:  q.Get("song"),
		Album:  q.Get("album"),
	}
	if ys := q.Get("year"); ys != "" {
		y, err := strconv.Atoi(ys)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		filters.Year = y
	}

	songs, err := s.service.ListSongs(ctx, filters)
	if err != nil {
		s.log.Errorf("Failed to list songs: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve songs")
		return
	}

	dtos := make([]SongDTO, len(songs))
	for i, song := range songs {
		dtos[i] = songDTO(song)
	}
	s.respondJSON(w, http.StatusOK, ListSongsResponse{
		Songs: dtos,
		Count: len(dtos),
	})
}

// handleGetSong handles GET /api/songs/{hash} and GET /song?hash=
func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request, hash string) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	song, err := s.service.GetSong(ctx, hash)
	if err != nil {
		if errors.Is(err, songsearch.ErrNotFound) {
			s.log.Warnf("Song not found: %s", hash)
		}
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, songDTO(*song))
}

// handleDeleteSong handles DELETE /api/songs/{hash} and DELETE /song?hash=
func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request, hash string) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	if err := s.service.DeleteSong(ctx, hash); err != nil {
		if errors.Is(err, songsearch.ErrNotFound) {
			s.log.Warnf("Song not found for deletion: %s", hash)
		}
		s.respondServiceError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, DeleteSongResponse{
		Message: fmt.Sprintf("Song with hash %s has been deleted.", hash),
		Hash:    hash,
	})
}

// handleAddSong handles POST /api/songs and POST /song
func (s *Server) handleAddSong(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	var req SongRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.service.AddSong(ctx, req.toSong())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if !res.Created {
		s.respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:     http.StatusText(http.StatusConflict),
			Message:   "Song already exists",
			Code:      http.StatusConflict,
			RequestID: w.Header().Get(requestIDHeader),
		})
		return
	}

	s.respondJSON(w, http.StatusCreated, AddSongResponse{
		Hash:    res.Fingerprint,
		Message: "Song added successfully",
	})
}

// search decodes and runs a search request. When it returns false the
// error response has already been written.
func (s *Server) search(w http.ResponseWriter, r *http.Request) (*songsearch.SearchResponse, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	var req SearchRequest
	if !s.decodeJSON(w, r, &req) {
		return nil, false
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	resp, err := s.service.Search(ctx, req.toRequest())
	if err != nil {
		s.respondServiceError(w, r, err)
		return nil, false
	}
	return resp, true
}

// handleSearch handles POST /api/search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	resp, ok := s.search(w, r)
	if !ok {
		return
	}
	results := searchResultDTOs(resp.Results)
	s.respondJSON(w, http.StatusOK, SearchResponse{
		Query:      resp.Query,
		TopK:       resp.TopK,
		Candidates: resp.Candidates,
		Count:      len(results),
		Results:    results,
	})
}

// handleLegacySearch handles POST /search, which returns a bare list.
func (s *Server) handleLegacySearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	resp, ok := s.search(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, searchResultDTOs(resp.Results))
}

// handleSongs routes requests to /api/songs
func (s *Server) handleSongs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListSongs(w, r)
	case http.MethodPost:
		s.handleAddSong(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSong routes requests to /api/songs/{hash}
func (s *Server) handleSong(w http.ResponseWriter, r *http.Request) {
	hash := strings.Trim(r.URL.Path[len("/api/songs/"):], "/")
	if hash == "" {
		s.respondError(w, http.StatusBadRequest, "Missing song hash")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetSong(w, r, hash)
	case http.MethodDelete:
		s.handleDeleteSong(w, r, hash)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleLegacySong routes /song, which carries the hash as a query parameter.
func (s *Server) handleLegacySong(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		s.handleAddSong(w, r)
		return
	}

	hash := r.URL.Query().Get("hash")
	switch r.Method {
	case http.MethodGet, http.MethodDelete:
		if hash == "" {
			s.respondError(w, http.StatusBadRequest, "Missing song hash")
			return
		}
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if r.Method == http.MethodGet {
		s.handleGetSong(w, r, hash)
	} else {
		s.handleDeleteSong(w, r, hash)
	}
}
