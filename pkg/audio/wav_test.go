package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fingermark/fingermark/pkg/fmerrors"
)

// writeTestWAV builds a minimal canonical PCM WAV file from interleaved
// sample frames and writes it to a temp file, returning its path.
func writeTestWAV(t *testing.T, numChannels, sampleRate, bitsPerSample int, samples []int32) string {
	t.Helper()

	width := bitsPerSample / 8
	dataBytes := make([]byte, len(samples)*width)
	for i, s := range samples {
		switch bitsPerSample {
		case 8:
			dataBytes[i] = byte(int8(s)) + 128
		case 16:
			binary.LittleEndian.PutUint16(dataBytes[i*2:], uint16(int16(s)))
		case 24:
			off := i * 3
			dataBytes[off] = byte(s)
			dataBytes[off+1] = byte(s >> 8)
			dataBytes[off+2] = byte(s >> 16)
		case 32:
			binary.LittleEndian.PutUint32(dataBytes[i*4:], uint32(s))
		default:
			t.Fatalf("unsupported test bit depth %d", bitsPerSample)
		}
	}

	var buf bytes.Buffer
	fmtChunkSize := uint32(16)
	dataChunkSize := uint32(len(dataBytes))
	riffSize := 4 + (8 + fmtChunkSize) + (8 + dataChunkSize)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, riffSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, fmtChunkSize)
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	byteRate := uint32(sampleRate * numChannels * width)
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, uint16(numChannels*width))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataChunkSize)
	buf.Write(dataBytes)

	path := filepath.Join(t.TempDir(), "test.wav")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing test WAV: %v", err)
	}
	return path
}

func TestReadWAV16BitMono(t *testing.T) {
	path := writeTestWAV(t, 1, 11025, 16, []int32{0, 16384, -16384, 32767, -32768})

	samples, sr, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV failed: %v", err)
	}
	if sr != 11025 {
		t.Errorf("expected sample rate 11025, got %d", sr)
	}
	if len(samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(samples))
	}
	if samples[0] != 0 {
		t.Errorf("expected 0 for zero sample, got %f", samples[0])
	}
	for i, v := range samples {
		if v < -1.0 || v > 1.0 {
			t.Errorf("sample %d out of range: %f", i, v)
		}
	}
}

func TestReadWAVStereoDownmix(t *testing.T) {
	// L,R pairs: (16384,16384) and (-16384,-16384) -> both channels equal,
	// so the mono average should equal either channel.
	path := writeTestWAV(t, 2, 44100, 16, []int32{16384, 16384, -16384, -16384})

	samples, _, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 mono frames, got %d", len(samples))
	}
	want := 16384.0 / 32768.0
	if samples[0] != want {
		t.Errorf("expected %f, got %f", want, samples[0])
	}
}

func TestReadWAV8BitUnsigned(t *testing.T) {
	path := writeTestWAV(t, 1, 8000, 8, []int32{0, -128, 127})

	samples, _, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV failed: %v", err)
	}
	if samples[0] != 0 {
		t.Errorf("expected midpoint byte to normalize to 0, got %f", samples[0])
	}
}

func TestReadWAV24And32Bit(t *testing.T) {
	for _, bits := range []int{24, 32} {
		path := writeTestWAV(t, 1, 11025, bits, []int32{0, 1000, -1000})
		samples, _, err := ReadWAV(path)
		if err != nil {
			t.Fatalf("ReadWAV(%d-bit) failed: %v", bits, err)
		}
		for i, v := range samples {
			if v < -1.0 || v > 1.0 {
				t.Errorf("%d-bit sample %d out of range: %f", bits, i, v)
			}
		}
	}
}

func TestReadWAVNonExistent(t *testing.T) {
	if _, _, err := ReadWAV("nonexistent-file.wav"); err == nil {
		t.Error("expected error reading a nonexistent file")
	}
}

func TestWriteMonoWAV16RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "written.wav")
	samples := []float64{0, 0.5, -0.5, 1.0, -1.0}

	if err := WriteMonoWAV16(path, samples, 22050); err != nil {
		t.Fatalf("WriteMonoWAV16 failed: %v", err)
	}

	got, sr, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV of written file failed: %v", err)
	}
	if sr != 22050 {
		t.Errorf("expected sample rate 22050, got %d", sr)
	}
	if len(got) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(got))
	}
	for i := range samples {
		if diff := got[i] - samples[i]; diff > 0.001 || diff < -0.001 {
			t.Errorf("sample %d: wrote %f, read back %f", i, samples[i], got[i])
		}
	}
}

func TestWriteMonoWAV16ClipsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipped.wav")
	if err := WriteMonoWAV16(path, []float64{2.0, -2.0}, 8000); err != nil {
		t.Fatalf("WriteMonoWAV16 failed: %v", err)
	}

	got, _, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV failed: %v", err)
	}
	if got[0] < 0.99 || got[1] > -0.99 {
		t.Errorf("expected clipped samples near +-1, got %v", got)
	}
}

func TestReadWAVRejectsNonRIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.wav")
	if err := os.WriteFile(path, []byte("NOT A RIFF FILE AT ALL"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := ReadWAV(path)
	if err == nil {
		t.Fatal("expected an error for a non-RIFF file")
	}
	if !errors.Is(err, fmerrors.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
