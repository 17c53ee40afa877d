// Package fmerrors defines the sentinel errors shared by fingermark's
// core engine and its I/O collaborators, so every layer can wrap and test
// against the same three failure modes with errors.Is.
package fmerrors

import "errors"

var (
	// ErrInvalidInput marks malformed or out-of-range data: empty PCM
	// buffers, buffers shorter than one analysis window, misaligned
	// sample data, a non-positive sample rate.
	ErrInvalidInput = errors.New("fingermark: invalid input")

	// ErrUnsupportedFormat marks audio data in a container or encoding
	// no collaborator in this repo knows how to decode.
	ErrUnsupportedFormat = errors.New("fingermark: unsupported format")

	// ErrIndexIO marks a failure saving, loading, or otherwise persisting
	// an index.
	ErrIndexIO = errors.New("fingermark: index I/O failure")
)
