package fpcore

// packVoteKey combines a track id and a candidate offset into a single
// map key so the matcher can use one flat map instead of a map of maps —
// one fewer map lookup per vote, and no need to allocate an inner map the
// first time a track is seen.
func packVoteKey(trackID uint32, offset int) int64 {
	return int64(trackID)<<32 | int64(uint32(offset))
}

func unpackVoteKey(key int64) (trackID uint32, offset int) {
	trackID = uint32(key >> 32)
	offset = int(int32(uint32(key)))
	return
}

// vote tallies offset histograms for every track a query token touches,
// then reports the best-scoring track.
type vote struct {
	counts map[int64]int
}

func newVote() *vote {
	return &vote{counts: make(map[int64]int)}
}

func (v *vote) add(trackID uint32, offset int) {
	v.counts[packVoteKey(trackID, offset)]++
}

// best returns the track with the largest single-offset bin. Ties go to
// the smallest track id, and within that track to the smallest offset, so
// the result is deterministic regardless of Go's randomized map iteration
// order.
func (v *vote) best() (trackID uint32, offset int, score int, found bool) {
	for key, count := range v.counts {
		id, off := unpackVoteKey(key)
		switch {
		case count > score:
			score, trackID, offset, found = count, id, off, true
		case count == score && found && id < trackID:
			trackID, offset = id, off
		case count == score && found && id == trackID && off < offset:
			offset = off
		}
	}
	return
}

// match runs a single-hypothesis offset vote between a query fingerprint
// and an index's postings, recording the anchor-time delta between query
// and database occurrences of every shared token.
func match(fp Fingerprint, postingsFor func(Token) []Posting) Match {
	v := newVote()
	for i, tok := range fp.Tokens {
		queryAnchor := fp.AnchorTimes[i]
		for _, p := range postingsFor(tok) {
			v.add(p.TrackID, p.AnchorTime-queryAnchor)
		}
	}
	trackID, offset, score, found := v.best()
	if !found {
		return Match{}
	}
	return Match{TrackID: trackID, Offset: offset, Score: score}
}
