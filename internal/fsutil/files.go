// Package fsutil collects the small filesystem helpers the audio and
// storage collaborators share.
package fsutil

import (
	"fmt"
	"os"
)

// MakeDir creates a directory and any missing parents.
func MakeDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// MoveFile moves or renames a file.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("move file %s to %s: %w", src, dst, err)
	}
	return nil
}
