package fpcore

// Analyse runs the full spectrogram -> peak-picking pipeline over a mono
// PCM buffer, returning the constellation that AddTrack/Recognise expect.
func Analyse(samples []float64) ([]Peak, error) {
	spectrogram, err := ComputeSpectrogram(samples)
	if err != nil {
		return nil, err
	}
	return ExtractPeaks(spectrogram), nil
}
