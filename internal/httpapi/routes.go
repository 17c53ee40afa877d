package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fingermark/fingermark/pkg/logger"
	"github.com/google/uuid"
)

type requestIDKey struct{}

// SplitOrigins parses a comma-separated CORS origin list, trimming
// whitespace around each entry. "*" passes through unsplit.
func SplitOrigins(raw string) []string {
	if raw == "*" {
		return []string{"*"}
	}
	origins := strings.Split(raw, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

// registerRoutes wires every HTTP route onto the server's mux.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/metrics", s.handleMetrics)

	s.mux.HandleFunc("/api/tracks", s.handleTracksRoot)
	s.mux.HandleFunc("/api/tracks/", s.handleTracksByID)
	s.mux.HandleFunc("/api/tracks/youtube", s.handleAddTrackYouTube)

	s.mux.HandleFunc("/api/recognise", s.handleRecognise)
	s.mux.HandleFunc("/api/recognize", s.handleRecognise)
}

func (s *Server) handler() http.Handler {
	return corsMiddleware(s.config.AllowedOrigins)(loggingMiddleware(s.mux))
}

// corsMiddleware adds CORS headers to responses.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				allowed = true
			} else {
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
				w.Header().Set("Access-Control-Max-Age", "3600")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware stamps each request with a trace id and logs its
// method, path, and resulting status code under that id.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		log := logger.GetLogger().WithPrefix(fmt.Sprintf("[%s]", requestID))
		log.Infof("%s %s from %s", r.Method, r.URL.Path, getClientIP(r))

		next.ServeHTTP(wrapped, r)

		log.Infof("%s %s -> %d", r.Method, r.URL.Path, wrapped.statusCode)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Start runs the HTTP server until it errors or is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.log.Infof("fingermarkd starting on %s", addr)
	s.log.Infof("   database:    %s", s.config.DBPath)
	s.log.Infof("   sample rate: %d Hz", s.config.SampleRate)
	s.log.Infof("   CORS origins: %v", s.config.AllowedOrigins)
	s.log.Infof("endpoints:")
	s.log.Infof("   GET    /health                 - health check")
	s.log.Infof("   GET    /api/metrics            - server metrics")
	s.log.Infof("   GET    /api/tracks             - list tracks")
	s.log.Infof("   POST   /api/tracks             - add track from file")
	s.log.Infof("   POST   /api/tracks/youtube     - add track from YouTube URL")
	s.log.Infof("   GET    /api/tracks/{id}        - get track by id")
	s.log.Infof("   DELETE /api/tracks/{id}        - delete track by id")
	s.log.Infof("   POST   /api/recognise          - recognise an audio file")

	return http.ListenAndServe(addr, s.handler())
}
