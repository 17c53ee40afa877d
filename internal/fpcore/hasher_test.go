package fpcore

import "testing"

func TestPackTokenLayout(t *testing.T) {
	tok := packToken(5, 7, 3)
	want := Token(uint32(5)<<22 | uint32(7)<<12 | uint32(3))
	if tok != want {
		t.Errorf("expected %032b, got %032b", want, tok)
	}
}

func TestPackTokenMasksNotClamps(t *testing.T) {
	// Values outside the field widths must alias (mask), never saturate.
	tok := packToken(1<<10|5, 1<<10|7, 1<<12|3)
	want := packToken(5, 7, 3)
	if tok != want {
		t.Errorf("expected oversized fields to alias to %v, got %v", want, tok)
	}
}

func TestGenerateTokensFanOut(t *testing.T) {
	// 1 anchor followed by Fan+2 targets, all within range: only Fan
	// tokens should be produced for the anchor at time 0. The later peaks
	// anchor fans of their own, emitted after the first anchor's.
	peaks := make([]Peak, 0, Fan+3)
	peaks = append(peaks, Peak{TimeIdx: 0, FreqIdx: 1})
	for i := 1; i <= Fan+2; i++ {
		peaks = append(peaks, Peak{TimeIdx: i, FreqIdx: i})
	}

	fp := GenerateTokens(peaks)
	fromAnchor := 0
	for _, at := range fp.AnchorTimes {
		if at == 0 {
			fromAnchor++
		}
	}
	if fromAnchor != Fan {
		t.Fatalf("expected %d tokens from the anchor's fan-out, got %d", Fan, fromAnchor)
	}
	for i, at := range fp.AnchorTimes[:Fan] {
		if at != 0 {
			t.Errorf("expected token %d's anchor time to be 0, got %d", i, at)
		}
	}
}

func TestGenerateTokensRespectsDeltaBounds(t *testing.T) {
	peaks := []Peak{
		{TimeIdx: 0, FreqIdx: 1},
		{TimeIdx: MaxDeltaFrames + 1, FreqIdx: 2}, // just past the max delta
	}
	fp := GenerateTokens(peaks)
	if len(fp.Tokens) != 0 {
		t.Errorf("expected no tokens beyond MaxDeltaFrames, got %d", len(fp.Tokens))
	}

	peaksInBounds := []Peak{
		{TimeIdx: 0, FreqIdx: 1},
		{TimeIdx: MaxDeltaFrames, FreqIdx: 2},
	}
	fp = GenerateTokens(peaksInBounds)
	if len(fp.Tokens) != 1 {
		t.Errorf("expected exactly 1 token at the max delta boundary, got %d", len(fp.Tokens))
	}
}

func TestGenerateTokensSameFrameAllowed(t *testing.T) {
	// dt=0 (MinDeltaFrames) is inclusive: two peaks in the same frame
	// still pair.
	peaks := []Peak{
		{TimeIdx: 5, FreqIdx: 1},
		{TimeIdx: 5, FreqIdx: 2},
	}
	fp := GenerateTokens(peaks)
	if len(fp.Tokens) != 1 {
		t.Fatalf("expected 1 token for a same-frame pair, got %d", len(fp.Tokens))
	}
}

func TestGenerateTokensUnsortedInput(t *testing.T) {
	// GenerateTokens must sort its own copy; callers shouldn't need to
	// pre-sort by time.
	peaks := []Peak{
		{TimeIdx: 5, FreqIdx: 1},
		{TimeIdx: 0, FreqIdx: 2},
	}
	fp := GenerateTokens(peaks)
	if len(fp.Tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(fp.Tokens))
	}
	if fp.AnchorTimes[0] != 0 {
		t.Errorf("expected anchor time 0 (the earlier peak), got %d", fp.AnchorTimes[0])
	}
}
