package fpcore

import "sort"

// ExtractPeaks finds every 8-connected local maximum in a dB
// spectrogram that clears AmplitudeFloorDB, then thins plateaus down to
// their boundary cells.
//
// A cell is a local maximum if no neighbour that actually exists (border
// cells simply have fewer neighbours to beat, never a zero stand-in)
// exceeds it. Flat plateaus of equal-value cells all pass that test, so
// the raw mask is eroded with the same 8-connected neighbourhood and
// XORed against the original to keep just the plateau's edge. Erosion
// requires a full set of 8 neighbours — a cell missing any of them, by
// sitting on the grid's border, cannot survive erosion — which is what
// makes a plateau's boundary ring distinct from its interior.
func ExtractPeaks(db [][]float64) []Peak {
	mask := localMaxMask(db, AmplitudeFloorDB)
	if mask == nil {
		return nil
	}
	eroded := erode8(mask)

	peaks := make([]Peak, 0)
	for t := range mask {
		for f := range mask[t] {
			if mask[t][f] && !eroded[t][f] {
				peaks = append(peaks, Peak{TimeIdx: t, FreqIdx: f})
			}
		}
	}

	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].TimeIdx == peaks[j].TimeIdx {
			return peaks[i].FreqIdx < peaks[j].FreqIdx
		}
		return peaks[i].TimeIdx < peaks[j].TimeIdx
	})
	return peaks
}

func localMaxMask(db [][]float64, floor float64) [][]bool {
	nT := len(db)
	if nT == 0 {
		return nil
	}
	nF := len(db[0])

	mask := make([][]bool, nT)
	for t := 0; t < nT; t++ {
		mask[t] = make([]bool, nF)
		for f := 0; f < nF; f++ {
			v := db[t][f]
			if v <= floor {
				continue
			}
			mask[t][f] = isLocalMax(db, t, f, v)
		}
	}
	return mask
}

func isLocalMax(db [][]float64, t, f int, v float64) bool {
	nT, nF := len(db), len(db[0])
	for dt := -1; dt <= 1; dt++ {
		tt := t + dt
		if tt < 0 || tt >= nT {
			continue
		}
		for df := -1; df <= 1; df++ {
			if dt == 0 && df == 0 {
				continue
			}
			ff := f + df
			if ff < 0 || ff >= nF {
				continue
			}
			if db[tt][ff] > v {
				return false
			}
		}
	}
	return true
}

// erode8 shrinks mask with the 8-connected structuring element: a cell
// survives only if it is set and all 8 of its neighbours exist and are set.
func erode8(mask [][]bool) [][]bool {
	nT := len(mask)
	if nT == 0 {
		return nil
	}
	nF := len(mask[0])

	out := make([][]bool, nT)
	for t := 0; t < nT; t++ {
		out[t] = make([]bool, nF)
		for f := 0; f < nF; f++ {
			if !mask[t][f] {
				continue
			}
			out[t][f] = survivesErosion(mask, t, f)
		}
	}
	return out
}

// survivesErosion requires a FULL set of 8 neighbours, all set. Unlike
// isLocalMax, a missing neighbour here counts against the cell rather
// than being skipped — that asymmetry is what lets a plateau's boundary
// ring differ from its interior: interior cells have all 8 neighbours
// and keep them, so a uniform block eroded this way strips down to its
// edge.
func survivesErosion(mask [][]bool, t, f int) bool {
	nT, nF := len(mask), len(mask[0])
	for dt := -1; dt <= 1; dt++ {
		tt := t + dt
		for df := -1; df <= 1; df++ {
			if dt == 0 && df == 0 {
				continue
			}
			ff := f + df
			if tt < 0 || tt >= nT || ff < 0 || ff >= nF {
				return false
			}
			if !mask[tt][ff] {
				return false
			}
		}
	}
	return true
}
