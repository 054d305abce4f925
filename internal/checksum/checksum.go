// Package checksum implements the two streaming checksum calculators the
// corpus format uses: one per memory mapping, one over the whole emitted
// image. Per spec, the algorithm itself is opaque — runner and generator
// must agree on it, not on any combining law — so these are plain
// single-pass io.Writer accumulators, not a checksum with a documented
// combine(a, b, len(b)) property.
package checksum

import "hash/crc32"

// MemoryChecksum accumulates a streaming checksum over one mapping's
// memory-bytes payloads, written in their stored order.
type MemoryChecksum struct {
	h uint32
}

// NewMemoryChecksum returns an empty accumulator.
func NewMemoryChecksum() *MemoryChecksum {
	return &MemoryChecksum{}
}

// Write folds p into the running checksum. It never fails.
func (m *MemoryChecksum) Write(p []byte) (int, error) {
	m.h = crc32.Update(m.h, crc32.IEEETable, p)
	return len(p), nil
}

// Sum returns the checksum accumulated so far, widened to uint64 to match
// the on-wire checksum field width.
func (m *MemoryChecksum) Sum() uint64 {
	return uint64(m.h)
}

// CorpusChecksum accumulates a streaming checksum over the whole emitted
// image.
type CorpusChecksum struct {
	h uint32
}

// NewCorpusChecksum returns an empty accumulator.
func NewCorpusChecksum() *CorpusChecksum {
	return &CorpusChecksum{}
}

// Write folds p into the running checksum. It never fails.
func (c *CorpusChecksum) Write(p []byte) (int, error) {
	c.h = crc32.Update(c.h, crc32.IEEETable, p)
	return len(p), nil
}

// Sum returns the checksum accumulated so far.
func (c *CorpusChecksum) Sum() uint64 {
	return uint64(c.h)
}

// ComputeImageChecksum hashes image with the 8 bytes at
// image[checksumFieldOffset:checksumFieldOffset+8] treated as zero,
// matching the header field's "computed with that field zeroed" rule,
// without mutating the caller's slice.
func ComputeImageChecksum(image []byte, checksumFieldOffset int) uint64 {
	c := NewCorpusChecksum()
	c.Write(image[:checksumFieldOffset])
	var zero [8]byte
	c.Write(zero[:])
	c.Write(image[checksumFieldOffset+8:])
	return c.Sum()
}
