package audio

import (
	"encoding/binary"
	"os"
)

// WriteMonoWAV16 writes mono samples (expected in [-1, 1], clipped if
// not) as a canonical 16-bit PCM WAV file at path. Used by tooling that
// needs to carve a short clip out of a larger buffer and hand it back to
// ReadWAV/ConvertToMonoWAV as an ordinary file — cmd/fingermarkctl's
// dataset evaluator, primarily.
func WriteMonoWAV16(path string, samples []float64, sampleRate int) error {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(s*32767)))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	const (
		numChannels   = 1
		bitsPerSample = 16
	)
	byteRate := uint32(sampleRate * numChannels * bitsPerSample / 8)
	blockAlign := uint16(numChannels * bitsPerSample / 8)
	dataSize := uint32(len(data))
	riffSize := 36 + dataSize

	f.WriteString("RIFF")
	binary.Write(f, binary.LittleEndian, riffSize)
	f.WriteString("WAVE")
	f.WriteString("fmt ")
	binary.Write(f, binary.LittleEndian, uint32(16))
	binary.Write(f, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(f, binary.LittleEndian, uint16(numChannels))
	binary.Write(f, binary.LittleEndian, uint32(sampleRate))
	binary.Write(f, binary.LittleEndian, byteRate)
	binary.Write(f, binary.LittleEndian, blockAlign)
	binary.Write(f, binary.LittleEndian, uint16(bitsPerSample))
	f.WriteString("data")
	binary.Write(f, binary.LittleEndian, dataSize)
	f.Write(data)

	return nil
}
