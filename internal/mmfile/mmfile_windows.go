//go:build windows

package mmfile

import (
	"fmt"
	"os"

	"github.com/snapcorpus/snapcorpus/internal/layout"
)

// Map maps the file at path into memory and returns its contents. Windows
// has no syscall-level mmap wired here, so this reads the whole file; the
// corpus-header size floor is still enforced up front, matching the unix
// and fallback paths.
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
