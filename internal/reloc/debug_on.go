//go:build snapcorpus.debug

package reloc

import "bytes"

// debugAssertEqual re-verifies a dedup hit against the ref's own stored
// bytes, built only under the snapcorpus.debug tag. Skipped entirely
// before the backing buffer is attached (the sizing pass can't read
// contents yet), matching the original's debug check running only once
// bytes are actually written.
func debugAssertEqual(content []byte, ref Ref) {
	if ref.block == nil || ref.block.buf == nil {
		return
	}
	if !bytes.Equal(content, ref.Contents()) {
		panic("reloc: dedup hit content mismatch")
	}
}
