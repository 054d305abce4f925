package reloc

import "github.com/snapcorpus/snapcorpus/internal/checks"

// Ref is an opaque handle into a DataBlock: an owning block and a byte
// offset within it, plus the size of the region it was allocated for (a
// Go-idiomatic addition over the spec's bare (block, offset) pair, so
// Contents() can return a correctly bounded slice instead of a bare
// pointer). Refs are plain values, cheaply copied. The zero Ref is the
// null ref: it has no owner and is only ever equal to another null ref.
type Ref struct {
	block *DataBlock
	offset int64
	size   int64
}

// IsNull reports whether r is the null ref.
func (r Ref) IsNull() bool { return r.block == nil }

// Contents returns a write-pointer-equivalent slice into the owning
// block's backing buffer. Valid only during the emission phase, once the
// block's backing buffer has been attached via SetContents.
func (r Ref) Contents() []byte {
	if r.block == nil {
		checks.Fatalf("reloc: contents() called on the null ref")
	}
	if r.block.buf == nil {
		checks.Fatalf("reloc: contents() called before the block's backing buffer was set")
	}
	return r.block.buf[r.offset : r.offset+r.size]
}

// LoadAddress returns the nominal address this ref appears at once the
// owning block's load address is known: block.LoadAddress() + offset.
func (r Ref) LoadAddress() uint64 {
	if r.block == nil {
		return 0
	}
	return r.block.LoadAddress() + uint64(r.offset)
}

// Size reports the number of bytes this ref was allocated for.
func (r Ref) Size() int64 { return r.size }
