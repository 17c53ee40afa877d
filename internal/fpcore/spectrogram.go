package fpcore

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// WindowSize and HopSize are the STFT frame length and hop, in samples.
const (
	WindowSize = 4096
	HopSize    = 512
)

// AmplitudeFloorDB is the minimum dB level a spectrogram cell must clear to
// ever be considered a candidate peak.
const AmplitudeFloorDB = -50.0

const dbEpsilon = 1e-10

// hannWindow returns the n-point Hann window.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func fftReal(frame []float64) []complex128 {
	return fft.FFTReal(frame)
}

// magnitudeDB converts an FFT output into decibels: 20*log10(|X| + eps),
// keeping the DC bin through the Nyquist bin inclusive (len(spectrum)/2+1
// bins for an even-length spectrum).
func magnitudeDB(spectrum []complex128) []float64 {
	bins := len(spectrum)/2 + 1
	db := make([]float64, bins)
	for i := 0; i < bins; i++ {
		db[i] = 20.0 * math.Log10(cmplx.Abs(spectrum[i])+dbEpsilon)
	}
	return db
}

// ComputeSpectrogram runs a Hann-windowed STFT over samples and returns the
// resulting dB matrix, indexed [frame][bin]. samples must contain at least
// one full window; otherwise ErrInvalidInput is returned.
func ComputeSpectrogram(samples []float64) ([][]float64, error) {
	if len(samples) < WindowSize {
		return nil, fmt.Errorf("fpcore: %w: need at least %d samples, got %d", ErrInvalidInput, WindowSize, len(samples))
	}

	window := hannWindow(WindowSize)
	frames := make([][]float64, 0, (len(samples)-WindowSize)/HopSize+1)

	buf := make([]float64, WindowSize)
	for start := 0; start+WindowSize <= len(samples); start += HopSize {
		copy(buf, samples[start:start+WindowSize])
		for i := range buf {
			buf[i] *= window[i]
		}
		frames = append(frames, magnitudeDB(fftReal(buf)))
	}
	return frames, nil
}
