package fingermark

import (
	"context"
	"fmt"
	"math"

	"github.com/fingermark/fingermark/internal/fpcore"
	"github.com/fingermark/fingermark/pkg/audio"
	"github.com/fingermark/fingermark/pkg/logger"
	"github.com/fingermark/fingermark/pkg/storage"
)

type service struct {
	idx     *fpcore.Index
	backend Backend // nil when running pure in-memory
	log     Logger
	cfg     *Config
}

// NewService builds a Service from the given options. With no options it
// runs a pure in-memory catalog with no persistence beyond whatever the
// caller does with Index.Save/LoadIndex directly; WithDBPath/WithBackend
// add a SQLite-backed durability mirror that is also replayed back into
// memory at startup, so Recognise always runs against an in-process index
// regardless of which backend is configured.
func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	var backend Backend
	switch {
	case cfg.Backend != nil:
		backend = cfg.Backend
	case cfg.UseSQLite:
		store, err := storage.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite backend: %w", err)
		}
		backend = store
	}

	idx, err := hydrateIndex(backend)
	if err != nil {
		return nil, err
	}

	return &service{idx: idx, backend: backend, log: cfg.Logger, cfg: cfg}, nil
}

func hydrateIndex(backend Backend) (*fpcore.Index, error) {
	if backend == nil {
		return fpcore.NewIndex(), nil
	}

	tokens, err := backend.AllPostings()
	if err != nil {
		return nil, fmt.Errorf("hydrating token index: %w", err)
	}
	trackIDs, err := backend.ListTracks()
	if err != nil {
		return nil, fmt.Errorf("hydrating track list: %w", err)
	}
	metadata := make(map[uint32]fpcore.TrackMetadata, len(trackIDs))
	for _, id := range trackIDs {
		meta, err := backend.GetTrack(id)
		if err != nil {
			return nil, fmt.Errorf("hydrating track %d: %w", id, err)
		}
		metadata[id] = meta
	}
	nextID, err := backend.NextTrackID()
	if err != nil {
		return nil, fmt.Errorf("hydrating next track id: %w", err)
	}

	return fpcore.NewIndexFrom(tokens, metadata, nextID), nil
}

func (s *service) AddTrack(ctx context.Context, audioPath, title, artist, source string) (uint32, error) {
	s.log.Infof("fingermark: fingerprinting %q (%s - %s)", audioPath, artist, title)

	wavPath, err := audio.ConvertToMonoWAV(ctx, audioPath, s.cfg.TempDir, audio.ConvertConfig{SampleRate: s.cfg.SampleRate})
	if err != nil {
		return 0, fmt.Errorf("converting audio: %w", err)
	}
	samples, sampleRate, err := audio.ReadWAV(wavPath)
	if err != nil {
		return 0, fmt.Errorf("reading converted wav: %w", err)
	}

	peaks, err := fpcore.Analyse(samples)
	if err != nil {
		return 0, fmt.Errorf("analysing audio: %w", err)
	}

	meta := fpcore.TrackMetadata{
		Title:    title,
		Artist:   artist,
		Source:   source,
		Duration: float64(len(samples)) / float64(sampleRate),
	}

	var trackID uint32
	if s.backend != nil {
		trackID, err = s.backend.RegisterTrack(meta)
		if err != nil {
			return 0, fmt.Errorf("registering track: %w", err)
		}
		if err := s.backend.StorePostings(postingsFor(trackID, peaks)); err != nil {
			return 0, fmt.Errorf("storing postings: %w", err)
		}
		s.idx.AddTrackWithID(trackID, peaks, meta)
	} else {
		trackID = s.idx.AddTrack(peaks, meta)
	}

	s.log.Infof("fingermark: registered track %d with %d peaks", trackID, len(peaks))
	return trackID, nil
}

// postingsFor packs one track's peaks into the token->postings map a
// Backend's StorePostings expects.
func postingsFor(trackID uint32, peaks []fpcore.Peak) map[fpcore.Token][]fpcore.Posting {
	fp := fpcore.GenerateTokens(peaks)
	out := make(map[fpcore.Token][]fpcore.Posting, len(fp.Tokens))
	for i, tok := range fp.Tokens {
		out[tok] = append(out[tok], fpcore.Posting{TrackID: trackID, AnchorTime: fp.AnchorTimes[i]})
	}
	return out
}

func (s *service) Recognise(ctx context.Context, audioPath string) (*RecognitionResult, error) {
	s.log.Infof("fingermark: recognising %q", audioPath)

	wavPath, err := audio.ConvertToMonoWAV(ctx, audioPath, s.cfg.TempDir, audio.ConvertConfig{SampleRate: s.cfg.SampleRate})
	if err != nil {
		return nil, fmt.Errorf("converting audio: %w", err)
	}
	samples, sampleRate, err := audio.ReadWAV(wavPath)
	if err != nil {
		return nil, fmt.Errorf("reading converted wav: %w", err)
	}

	peaks, err := fpcore.Analyse(samples)
	if err != nil {
		return nil, fmt.Errorf("analysing audio: %w", err)
	}

	match, found := s.idx.Recognise(peaks)
	if !found {
		s.log.Infof("fingermark: no match found")
		return nil, nil
	}

	meta, ok := s.idx.GetTrack(match.TrackID)
	if !ok {
		return nil, fmt.Errorf("matched track %d has no recorded metadata", match.TrackID)
	}

	queryTokenCount := len(fpcore.GenerateTokens(peaks).Tokens)
	confidence := calculateConfidence(match.Score, queryTokenCount)

	result := &RecognitionResult{
		TrackID:       match.TrackID,
		Title:         meta.Title,
		Artist:        meta.Artist,
		Source:        meta.Source,
		Score:         match.Score,
		OffsetSeconds: float64(match.Offset) * float64(fpcore.HopSize) / float64(sampleRate),
		Confidence:    confidence,
	}
	s.log.Infof("fingermark: matched track %d (%q) score=%d confidence=%.1f%%", match.TrackID, meta.Title, match.Score, confidence)
	return result, nil
}

// calculateConfidence scales a raw vote score against the query's total
// token count with a logistic curve, so a handful of agreeing tokens out
// of a few hundred reads as low confidence and a third or more reads as
// high — the same sigmoid shape the teacher used, re-derived against a
// single token count instead of a min(query, db) pair, since the matcher
// here doesn't track per-track token counts.
func calculateConfidence(score, queryTokenCount int) float64 {
	if score == 0 || queryTokenCount == 0 {
		return 0.0
	}

	ratio := float64(score) / float64(queryTokenCount)
	const (
		steepness = 20.0
		midpoint  = 0.15
	)
	confidence := 100.0 / (1.0 + math.Exp(-steepness*(ratio-midpoint)))

	if ratio > 0.30 {
		confidence = math.Min(100.0, confidence+(ratio-0.30)*50)
	}
	if score < 5 {
		confidence *= float64(score) / 5.0
	}
	return confidence
}

func (s *service) GetTrack(trackID uint32) (Track, error) {
	meta, ok := s.idx.GetTrack(trackID)
	if !ok {
		return Track{}, fmt.Errorf("track %d not found", trackID)
	}
	return Track{ID: trackID, Title: meta.Title, Artist: meta.Artist, Source: meta.Source, Duration: meta.Duration}, nil
}

func (s *service) ListTracks() ([]Track, error) {
	ids := s.idx.Tracks()
	tracks := make([]Track, 0, len(ids))
	for _, id := range ids {
		meta, ok := s.idx.GetTrack(id)
		if !ok {
			continue
		}
		tracks = append(tracks, Track{ID: id, Title: meta.Title, Artist: meta.Artist, Source: meta.Source, Duration: meta.Duration})
	}
	return tracks, nil
}

func (s *service) DeleteTrack(trackID uint32) error {
	s.idx.DeleteTrack(trackID)
	if s.backend != nil {
		if err := s.backend.DeleteTrack(trackID); err != nil {
			return fmt.Errorf("deleting track from backend: %w", err)
		}
	}
	return nil
}

func (s *service) Close() error {
	if s.backend != nil {
		return s.backend.Close()
	}
	return nil
}
