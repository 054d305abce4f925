// Package writer exposes sinks for corpus image emission. Every sink
// validates the image's own header and checksum before committing it,
// rather than trusting gen.Generate's output blindly — the corpus format
// carries its own integrity check for exactly this reason.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileWriter writes a corpus image to a filesystem path atomically.
type FileWriter struct {
	Path string
}

// Write validates buf as a well-formed corpus image (header, declared
// length, checksum) and, only if that holds, writes it to the configured
// path atomically via temp file + rename.
func (w *FileWriter) Write(buf []byte) error {
	if err := validateImage(buf); err != nil {
		return err
	}

	dir := filepath.Dir(w.Path)
	tmpFile, err := os.CreateTemp(dir, ".snapcorpus-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, writeErr := tmpFile.Write(buf); writeErr != nil {
		return fmt.Errorf("write temp file: %w", writeErr)
	}
	if syncErr := tmpFile.Sync(); syncErr != nil {
		return fmt.Errorf("sync temp file: %w", syncErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}
	tmpFile = nil

	if renameErr := os.Rename(tmpPath, w.Path); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", renameErr)
	}
	return nil
}
