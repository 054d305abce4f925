package writer

import (
	"fmt"

	"github.com/snapcorpus/snapcorpus/internal/checksum"
	"github.com/snapcorpus/snapcorpus/internal/layout"
)

// validateImage decodes buf's header and recomputes its whole-image
// checksum, refusing to persist anything that isn't a well-formed
// corpus image: a truncated buffer, a NumBytes field that disagrees
// with the slice actually handed to us, or a checksum mismatch all mean
// gen.Generate's output was corrupted in transit before it ever reached
// the filesystem, and writing it out would just move the problem
// downstream to whatever next opens it.
func validateImage(buf []byte) error {
	if len(buf) < layout.HeaderSize {
		return fmt.Errorf("writer: %w", layout.ErrBufferTooSmall)
	}
	h, _, err := layout.DecodeHeader(buf[:layout.HeaderSize])
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	if h.NumBytes != uint64(len(buf)) {
		return fmt.Errorf("writer: header declares %d bytes, got %d", h.NumBytes, len(buf))
	}
	if got := checksum.ComputeImageChecksum(buf, layout.HeaderChecksumOffset); got != h.Checksum {
		return fmt.Errorf("writer: checksum mismatch: header has %#x, computed %#x", h.Checksum, got)
	}
	return nil
}
