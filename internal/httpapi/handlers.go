package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fingermark/fingermark/pkg/audio"
	"github.com/fingermark/fingermark/pkg/fingermark"
	"github.com/fingermark/fingermark/pkg/logger"
)

const maxUploadSize = 64 << 20 // 64 MiB

// ServerConfig configures a Server.
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	SampleRate     int
	AllowedOrigins []string
}

// Server wires together a fingermark.Service and HTTP routes.
type Server struct {
	svc    fingermark.Service
	config *ServerConfig
	log    *logger.Logger
	mux    *http.ServeMux
}

func NewServer(svc fingermark.Service, config *ServerConfig) *Server {
	s := &Server{
		svc:    svc,
		config: config,
		log:    logger.GetLogger(),
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.GetLogger().Errorf("encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: http.StatusText(status), Message: message, Code: status})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "fingermarkd",
		"status":  "ok",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.svc.ListTracks()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, MetricsResponse{
		Status:       "ok",
		DatabasePath: s.config.DBPath,
		TrackCount:   len(tracks),
		SampleRate:   s.config.SampleRate,
	})
}

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.svc.ListTracks()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dtos := make([]TrackDTO, 0, len(tracks))
	for _, t := range tracks {
		dtos = append(dtos, trackToDTO(t))
	}
	respondJSON(w, http.StatusOK, ListTracksResponse{Tracks: dtos, Count: len(dtos)})
}

func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request, id uint32) {
	track, err := s.svc.GetTrack(id)
	if err != nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("track %d not found", id))
		return
	}
	respondJSON(w, http.StatusOK, trackToDTO(track))
}

func (s *Server) handleDeleteTrack(w http.ResponseWriter, r *http.Request, id uint32) {
	if _, err := s.svc.GetTrack(id); err != nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("track %d not found", id))
		return
	}
	if err := s.svc.DeleteTrack(id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, DeleteTrackResponse{Message: "track deleted", ID: id})
}

// handleAddTrackFile accepts a multipart upload of an audio file plus
// title/artist form fields and registers it in the catalog.
func (s *Server) handleAddTrackFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}

	title := r.FormValue("title")
	artist := r.FormValue("artist")
	if title == "" || artist == "" {
		respondError(w, http.StatusBadRequest, "title and artist are required")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		respondError(w, http.StatusBadRequest, "audio file is required: "+err.Error())
		return
	}
	defer file.Close()

	tmpPath := filepath.Join(s.config.TempDir, fmt.Sprintf("upload-%d-%s", time.Now().UnixNano(), sanitizeFilename(header.Filename)))
	dst, err := os.Create(tmpPath)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to stage upload: "+err.Error())
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		respondError(w, http.StatusInternalServerError, "failed to stage upload: "+err.Error())
		return
	}
	dst.Close()
	defer os.Remove(tmpPath)

	trackID, err := s.svc.AddTrack(r.Context(), tmpPath, title, artist, header.Filename)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "failed to fingerprint track: "+err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, AddTrackResponse{Message: "track added", ID: trackID, Title: title, Artist: artist, Source: header.Filename})
}

// handleAddTrackYouTube downloads and registers a YouTube video's audio.
func (s *Server) handleAddTrackYouTube(w http.ResponseWriter, r *http.Request) {
	var req AddTrackYouTubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Minute)
	defer cancel()

	audioPath, meta, err := audio.FetchYouTubeAudio(ctx, req.YouTubeURL, s.config.TempDir)
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to download audio: "+err.Error())
		return
	}
	defer os.Remove(audioPath)

	title := req.Title
	if title == "" {
		title = meta.Title
	}
	artist := req.Artist
	if artist == "" {
		artist = meta.Artist
	}

	trackID, err := s.svc.AddTrack(ctx, audioPath, title, artist, meta.WebpageURL)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "failed to fingerprint track: "+err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, AddTrackResponse{Message: "track added", ID: trackID, Title: title, Artist: artist, Source: meta.WebpageURL})
}

// handleRecognise accepts a multipart audio upload and returns the best
// catalog match, if any.
func (s *Server) handleRecognise(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		respondError(w, http.StatusBadRequest, "audio file is required: "+err.Error())
		return
	}
	defer file.Close()

	tmpPath := filepath.Join(s.config.TempDir, fmt.Sprintf("query-%d-%s", time.Now().UnixNano(), sanitizeFilename(header.Filename)))
	dst, err := os.Create(tmpPath)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to stage upload: "+err.Error())
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		respondError(w, http.StatusInternalServerError, "failed to stage upload: "+err.Error())
		return
	}
	dst.Close()
	defer os.Remove(tmpPath)

	result, err := s.svc.Recognise(r.Context(), tmpPath)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "recognition failed: "+err.Error())
		return
	}
	if result == nil {
		respondJSON(w, http.StatusOK, RecogniseResponse{Found: false})
		return
	}
	respondJSON(w, http.StatusOK, RecogniseResponse{
		Found:      true,
		TrackID:    result.TrackID,
		Title:      result.Title,
		Artist:     result.Artist,
		Source:     result.Source,
		Score:      result.Score,
		OffsetSecs: result.OffsetSeconds,
		Confidence: result.Confidence,
	})
}

func (s *Server) handleTracksRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTracks(w, r)
	case http.MethodPost:
		s.handleAddTrackFile(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleTracksByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/tracks/")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid track id")
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.handleGetTrack(w, r, uint32(id))
	case http.MethodDelete:
		s.handleDeleteTrack(w, r, uint32(id))
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func trackToDTO(t fingermark.Track) TrackDTO {
	return TrackDTO{
		ID:           t.ID,
		Title:        t.Title,
		Artist:       t.Artist,
		Source:       t.Source,
		DurationSecs: t.Duration,
	}
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
