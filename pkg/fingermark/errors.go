package fingermark

import "github.com/fingermark/fingermark/pkg/fmerrors"

// Sentinel errors returned (usually wrapped) by Service methods. Check
// against these with errors.Is, not string comparison.
var (
	// ErrInvalidInput means the caller handed the service something it
	// can't work with: a too-short PCM buffer, misaligned sample data, a
	// WAV header with a zero sample rate.
	ErrInvalidInput = fmerrors.ErrInvalidInput

	// ErrUnsupportedFormat means the input file's container or codec
	// could not be decoded into PCM.
	ErrUnsupportedFormat = fmerrors.ErrUnsupportedFormat

	// ErrIndexIO means a persistence operation (index snapshot or SQLite
	// backend) failed.
	ErrIndexIO = fmerrors.ErrIndexIO
)
