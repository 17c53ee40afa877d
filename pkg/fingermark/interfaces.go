package fingermark

import (
	"context"

	"github.com/fingermark/fingermark/internal/fpcore"
)

// Service is the fingermark audio-fingerprinting engine: register tracks,
// recognise queries against them, manage the catalog.
type Service interface {
	// AddTrack fingerprints an audio file and registers it under title/
	// artist/source. source is caller-defined provenance (a file path,
	// a YouTube URL, whatever the caller wants echoed back later) and is
	// never interpreted by the service itself.
	AddTrack(ctx context.Context, audioPath, title, artist, source string) (uint32, error)

	// Recognise fingerprints a query audio file and returns its best
	// match, if any. A nil result with no error means no track in the
	// catalog shares a single token with the query — that is success, not
	// failure. Any shared token yields a result; callers apply their own
	// score threshold.
	Recognise(ctx context.Context, audioPath string) (*RecognitionResult, error)

	// GetTrack returns a single track's metadata.
	GetTrack(trackID uint32) (Track, error)

	// ListTracks returns every track currently registered.
	ListTracks() ([]Track, error)

	// DeleteTrack removes a track and every token it contributed.
	DeleteTrack(trackID uint32) error

	// Close releases any resources the service holds (database
	// connections, primarily). Safe to call once a service is done with.
	Close() error
}

// Backend is the persistence contract a Service's catalog is built on.
// pkg/storage.SQLiteIndexStore implements it directly; the service falls
// back to a pure in-memory implementation when no Backend is configured.
type Backend interface {
	RegisterTrack(meta fpcore.TrackMetadata) (uint32, error)
	StorePostings(postings map[fpcore.Token][]fpcore.Posting) error
	PostingsForTokens(tokens []fpcore.Token) (map[fpcore.Token][]fpcore.Posting, error)
	AllPostings() (map[fpcore.Token][]fpcore.Posting, error)
	NextTrackID() (uint32, error)
	DeleteTrack(trackID uint32) error
	GetTrack(trackID uint32) (fpcore.TrackMetadata, error)
	ListTracks() ([]uint32, error)
	Close() error
}

// Logger is the logging interface Service calls through, so callers can
// supply their own implementation in place of pkg/logger's default.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
