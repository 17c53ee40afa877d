package fpcore

import "github.com/fingermark/fingermark/pkg/fmerrors"

// Re-exported here so fpcore's own files read naturally (errors.Is still
// works against fmerrors.ErrInvalidInput directly, too).
var (
	ErrInvalidInput      = fmerrors.ErrInvalidInput
	ErrUnsupportedFormat = fmerrors.ErrUnsupportedFormat
	ErrIndexIO           = fmerrors.ErrIndexIO
)
