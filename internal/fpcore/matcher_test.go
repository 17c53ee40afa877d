package fpcore

import "testing"

func TestPackVoteKeyRoundTrip(t *testing.T) {
	cases := []struct {
		trackID uint32
		offset  int
	}{
		{0, 0},
		{42, -17},
		{1 << 20, 12345},
	}
	for _, c := range cases {
		key := packVoteKey(c.trackID, c.offset)
		gotID, gotOffset := unpackVoteKey(key)
		if gotID != c.trackID || gotOffset != c.offset {
			t.Errorf("packVoteKey(%d,%d) round-trip got (%d,%d)", c.trackID, c.offset, gotID, gotOffset)
		}
	}
}

func TestVoteBestPicksLargestBin(t *testing.T) {
	v := newVote()
	v.add(1, 10)
	v.add(1, 10)
	v.add(2, 5)

	trackID, offset, score, found := v.best()
	if !found || trackID != 1 || offset != 10 || score != 2 {
		t.Errorf("expected track 1 offset 10 score 2, got track %d offset %d score %d found %v", trackID, offset, score, found)
	}
}

func TestVoteBestTieBreaksSmallestID(t *testing.T) {
	v := newVote()
	v.add(5, 0)
	v.add(2, 0)
	v.add(9, 0)

	trackID, _, _, found := v.best()
	if !found || trackID != 2 {
		t.Errorf("expected tie-break to pick track 2, got %d", trackID)
	}
}

func TestVoteBestEmpty(t *testing.T) {
	v := newVote()
	_, _, _, found := v.best()
	if found {
		t.Error("expected found=false for an empty vote")
	}
}

func TestMatchNoSharedTokens(t *testing.T) {
	fp := Fingerprint{Tokens: []Token{1, 2, 3}, AnchorTimes: []int{0, 1, 2}}
	m := match(fp, func(Token) []Posting { return nil })
	if m.Score != 0 {
		t.Errorf("expected a zero Match when nothing matches, got %+v", m)
	}
}

func TestMatchAccumulatesConsistentOffset(t *testing.T) {
	// Every query token's db posting sits exactly 100 frames after the
	// query's own anchor, so the offset histogram should concentrate
	// entirely on 100.
	fp := Fingerprint{
		Tokens:      []Token{1, 1, 1},
		AnchorTimes: []int{0, 10, 20},
	}
	postings := map[Token][]Posting{
		1: {{TrackID: 7, AnchorTime: 100}, {TrackID: 7, AnchorTime: 110}, {TrackID: 7, AnchorTime: 120}},
	}
	m := match(fp, func(tok Token) []Posting { return postings[tok] })
	if m.TrackID != 7 || m.Offset != 100 {
		t.Errorf("expected track 7 at offset 100, got %+v", m)
	}
	if m.Score != 3 {
		t.Errorf("expected score 3, got %d", m.Score)
	}
}
