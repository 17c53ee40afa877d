package fpcore

import "testing"

func flatDB(nT, nF int, val float64) [][]float64 {
	db := make([][]float64, nT)
	for t := range db {
		db[t] = make([]float64, nF)
		for f := range db[t] {
			db[t][f] = val
		}
	}
	return db
}

func TestExtractPeaksEmpty(t *testing.T) {
	if peaks := ExtractPeaks(nil); peaks != nil {
		t.Errorf("expected nil peaks for nil spectrogram, got %v", peaks)
	}
}

func TestExtractPeaksSingleSpike(t *testing.T) {
	db := flatDB(5, 5, AmplitudeFloorDB-10) // everything below the floor
	db[2][2] = 0                            // one isolated loud cell

	peaks := ExtractPeaks(db)
	if len(peaks) != 1 {
		t.Fatalf("expected exactly 1 peak, got %d: %v", len(peaks), peaks)
	}
	if peaks[0].TimeIdx != 2 || peaks[0].FreqIdx != 2 {
		t.Errorf("expected peak at (2,2), got (%d,%d)", peaks[0].TimeIdx, peaks[0].FreqIdx)
	}
}

func TestExtractPeaksBelowFloorExcluded(t *testing.T) {
	db := flatDB(5, 5, AmplitudeFloorDB-1)
	if peaks := ExtractPeaks(db); len(peaks) != 0 {
		t.Errorf("expected no peaks below the floor, got %v", peaks)
	}
}

func TestExtractPeaksBorderSurvivesWithFewerNeighbours(t *testing.T) {
	// A spike in the corner has only 3 neighbours, all quieter; it must
	// still register as a local maximum.
	db := flatDB(3, 3, AmplitudeFloorDB-10)
	db[0][0] = 0

	peaks := ExtractPeaks(db)
	if len(peaks) != 1 || peaks[0].TimeIdx != 0 || peaks[0].FreqIdx != 0 {
		t.Fatalf("expected a single corner peak at (0,0), got %v", peaks)
	}
}

func TestExtractPeaksPlateauThinnedToBoundary(t *testing.T) {
	// A uniform 5x5 block of equal, above-floor values is one giant
	// plateau: every cell is a "local max" before erosion, but the
	// erosion/XOR step should strip the fully-surrounded interior cells
	// and keep only the boundary ring.
	db := flatDB(5, 5, 0)

	peaks := ExtractPeaks(db)
	if len(peaks) == 0 {
		t.Fatal("expected plateau boundary peaks, got none")
	}
	for _, p := range peaks {
		if p.TimeIdx > 0 && p.TimeIdx < 4 && p.FreqIdx > 0 && p.FreqIdx < 4 {
			t.Errorf("interior cell (%d,%d) should have been eroded away", p.TimeIdx, p.FreqIdx)
		}
	}
	// The centre of the plateau, (2,2), must not appear.
	for _, p := range peaks {
		if p.TimeIdx == 2 && p.FreqIdx == 2 {
			t.Error("center of the plateau should not survive erosion")
		}
	}
}

func TestExtractPeaksSortedByTimeThenFreq(t *testing.T) {
	db := flatDB(6, 6, AmplitudeFloorDB-10)
	db[1][4] = 0
	db[1][1] = 0
	db[3][0] = 0

	peaks := ExtractPeaks(db)
	for i := 1; i < len(peaks); i++ {
		prev, cur := peaks[i-1], peaks[i]
		if cur.TimeIdx < prev.TimeIdx {
			t.Fatalf("peaks not sorted by time: %v before %v", prev, cur)
		}
		if cur.TimeIdx == prev.TimeIdx && cur.FreqIdx < prev.FreqIdx {
			t.Fatalf("peaks with equal time not sorted by freq: %v before %v", prev, cur)
		}
	}
}
