package fpcore

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Index is the inverted token index plus the per-track metadata it was
// built from. Index is safe for concurrent use: AddTrack takes a write
// lock, Recognise and the Get* accessors take a read lock.
type Index struct {
	mu       sync.RWMutex
	tokens   map[Token][]Posting
	metadata map[uint32]TrackMetadata
	nextID   uint32
}

// NewIndex returns an empty Index ready for AddTrack/Recognise.
func NewIndex() *Index {
	return &Index{
		tokens:   make(map[Token][]Posting),
		metadata: make(map[uint32]TrackMetadata),
	}
}

// NewIndexFrom rebuilds an in-memory Index from token postings and track
// metadata read out of an external store — the hydration path a
// SQLite-backed service uses to give Recognise an in-process fast path
// without keeping the authoritative copy in memory.
func NewIndexFrom(tokens map[Token][]Posting, metadata map[uint32]TrackMetadata, nextID uint32) *Index {
	if tokens == nil {
		tokens = make(map[Token][]Posting)
	}
	if metadata == nil {
		metadata = make(map[uint32]TrackMetadata)
	}
	return &Index{tokens: tokens, metadata: metadata, nextID: nextID}
}

// AddTrack fingerprints peaks and inserts every resulting token into the
// index under a freshly assigned track id, which is never reused for the
// lifetime of the Index. meta is stored verbatim and returned by
// GetTrack.
func (idx *Index) AddTrack(peaks []Peak, meta TrackMetadata) uint32 {
	idx.mu.Lock()
	trackID := idx.nextID
	idx.nextID++
	idx.mu.Unlock()

	idx.AddTrackWithID(trackID, peaks, meta)
	return trackID
}

// AddTrackWithID is AddTrack for callers whose track id comes from
// elsewhere — an external store's own autoincrement key, for instance —
// rather than from this Index's own counter. It never advances nextID,
// so mixing it with AddTrack on the same Index is the caller's risk.
func (idx *Index) AddTrackWithID(trackID uint32, peaks []Peak, meta TrackMetadata) {
	fp := GenerateTokens(peaks)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for i, tok := range fp.Tokens {
		idx.tokens[tok] = append(idx.tokens[tok], Posting{TrackID: trackID, AnchorTime: fp.AnchorTimes[i]})
	}
	idx.metadata[trackID] = meta
}

// Recognise fingerprints peaks and votes them against the index. A zero
// Match and found=false means no track accumulated any matching tokens;
// that is a normal, successful outcome, not an error.
func (idx *Index) Recognise(peaks []Peak) (Match, bool) {
	fp := GenerateTokens(peaks)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	m := match(fp, func(tok Token) []Posting { return idx.tokens[tok] })
	return m, m.Score > 0
}

// GetTrack returns the metadata recorded for trackID by AddTrack.
func (idx *Index) GetTrack(trackID uint32) (TrackMetadata, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	meta, ok := idx.metadata[trackID]
	return meta, ok
}

// Tracks returns every track id currently in the index, in no particular
// order.
func (idx *Index) Tracks() []uint32 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ids := make([]uint32, 0, len(idx.metadata))
	for id := range idx.metadata {
		ids = append(ids, id)
	}
	return ids
}

// DeleteTrack removes a track's metadata and every posting it contributed
// to the token index.
func (idx *Index) DeleteTrack(trackID uint32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.metadata, trackID)
	for tok, postings := range idx.tokens {
		kept := postings[:0]
		for _, p := range postings {
			if p.TrackID != trackID {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(idx.tokens, tok)
		} else {
			idx.tokens[tok] = kept
		}
	}
}

// indexDocument is the on-disk shape of an Index: its three fields,
// nothing more.
type indexDocument struct {
	Tokens   map[Token][]Posting    `yaml:"tokens"`
	Metadata map[uint32]TrackMetadata `yaml:"metadata"`
	NextID   uint32                 `yaml:"next_id"`
}

// Save serializes the index to path as a YAML document. It does not
// attempt to read the legacy pickle format produced by the original
// Python implementation.
func (idx *Index) Save(path string) error {
	idx.mu.RLock()
	doc := indexDocument{Tokens: idx.tokens, Metadata: idx.metadata, NextID: idx.nextID}
	idx.mu.RUnlock()

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("fpcore: marshal index: %w", ErrIndexIO)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("fpcore: write index %q: %w", path, ErrIndexIO)
	}
	return nil
}

// LoadIndex reads an Index previously written by Save.
func LoadIndex(path string) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fpcore: read index %q: %w", path, ErrIndexIO)
	}

	var doc indexDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("fpcore: unmarshal index %q: %w", path, ErrIndexIO)
	}

	idx := &Index{
		tokens:   doc.Tokens,
		metadata: doc.Metadata,
		nextID:   doc.NextID,
	}
	if idx.tokens == nil {
		idx.tokens = make(map[Token][]Posting)
	}
	if idx.metadata == nil {
		idx.metadata = make(map[uint32]TrackMetadata)
	}
	return idx, nil
}
