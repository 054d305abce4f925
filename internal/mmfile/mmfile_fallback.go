//go:build !unix && !windows

// Package mmfile provides platform-specific helpers for memory-mapping corpus files.
package mmfile

import (
	"fmt"
	"os"

	"github.com/snapcorpus/snapcorpus/internal/layout"
)

// Map reads the entire file when mmap is not available. A file shorter
// than a corpus header is rejected immediately, matching the unix mmap
// path's early size check.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	if len(data) < layout.HeaderSize {
		return nil, func() error { return nil }, fmt.Errorf("%w: %d bytes, need at least %d", ErrImageTooSmall, len(data), layout.HeaderSize)
	}
	return data, func() error { return nil }, nil
}
