// Package reloc implements the growable, two-phase data block and the
// content-keyed dedup table the traversal engine composes snapshots into.
// A DataBlock accumulates (size, alignment) during a sizing pass, then is
// given a backing buffer and load address and re-walked identically
// during an emission pass, so that every allocation lands at the same
// offset both times.
package reloc

import (
	"github.com/snapcorpus/snapcorpus/internal/checks"
	"github.com/snapcorpus/snapcorpus/internal/layout"
)

// DataBlock is a growable logical region parameterized by its current
// size and required alignment. It is not safe for concurrent use.
type DataBlock struct {
	size  int64
	align int64
	buf   []byte
	load  uint64

	// children records sub-blocks composed into this one via
	// AllocateBlock, in composition order, so that a later SetContents
	// can hand each of them their own slice of this block's buffer even
	// though the composition happened before this block had one.
	children []childBlock
}

type childBlock struct {
	block  *DataBlock
	offset int64
}

// NewDataBlock returns an empty block with alignment 1, matching the
// state after a reset.
func NewDataBlock() *DataBlock {
	return &DataBlock{align: 1}
}

// Size reports the block's current accumulated size.
func (d *DataBlock) Size() int64 { return d.size }

// Alignment reports the block's current required alignment.
func (d *DataBlock) Alignment() int64 { return d.align }

// LoadAddress reports the nominal address this block is placed at. Valid
// only after SetLoadAddress has been called.
func (d *DataBlock) LoadAddress() uint64 { return d.load }

// Allocate rounds the block's current size up to alignment, returns a Ref
// at that offset sized size, and advances the block's size by size. It
// raises the block's required alignment to max(current, alignment).
// Allocating past the backing buffer's capacity, once one is attached, is
// a precondition violation (the sizing pass should have prevented it).
func (d *DataBlock) Allocate(size, alignment int64) Ref {
	if alignment < 1 {
		alignment = 1
	}
	offset := layout.AlignN(d.size, alignment)
	newSize := offset + size
	if d.buf != nil && newSize > int64(len(d.buf)) {
		checks.Fatalf("reloc: allocate(%d, %d) at offset %d would exceed capacity %d", size, alignment, offset, len(d.buf))
	}
	d.size = newSize
	if alignment > d.align {
		d.align = alignment
	}
	return Ref{block: d, offset: offset, size: size}
}

// AllocateObjects is equivalent to Allocate(n*elemSize, elemAlign); the
// type parameter exists purely to associate the call site with the
// element type it is sizing for (Go generics carry no sizeof operator).
func AllocateObjects[T any](d *DataBlock, n int, elemSize, elemAlign int64) Ref {
	return d.Allocate(int64(n)*elemSize, elemAlign)
}

// AllocateBlock reserves space in d equal to other's current size, with
// other's required alignment, and returns a ref to the start of that
// reservation. other's load address is set immediately (d's load address
// is assumed already known — typically set to the nominal origin before
// composition begins); if d already has a backing buffer, other is
// immediately given a slice of it too, otherwise the handoff is deferred
// and replayed from d.children once d.SetContents is called. This is how
// sub-blocks are composed into the main block during prepare(), usually
// before the main block's own buffer has been allocated.
func (d *DataBlock) AllocateBlock(other *DataBlock) Ref {
	ref := d.Allocate(other.size, other.align)
	other.SetLoadAddress(d.load + uint64(ref.offset))
	d.children = append(d.children, childBlock{block: other, offset: ref.offset})
	if d.buf != nil {
		other.SetContents(d.buf[ref.offset : ref.offset+other.size])
	}
	return ref
}

// SetContents attaches backing storage to the block. It must be called
// before any Ref.Contents() call on a ref into this block, and must not
// be called with a buffer shorter than the size already accumulated. Any
// sub-blocks previously composed in via AllocateBlock are immediately
// handed their own slice of buf.
func (d *DataBlock) SetContents(buf []byte) {
	if int64(len(buf)) < d.size {
		checks.Fatalf("reloc: set_contents: buffer of %d bytes too small for accumulated size %d", len(buf), d.size)
	}
	d.buf = buf
	for _, c := range d.children {
		c.block.SetContents(buf[c.offset : c.offset+c.block.size])
	}
}

// SetLoadAddress attaches the nominal load address backing storage will
// appear at once relocated.
func (d *DataBlock) SetLoadAddress(addr uint64) {
	d.load = addr
}

// ResetSizeAndAlignment zeroes size and resets alignment to 1, retaining
// any attached buffer and load address. This is what lets a second pass
// re-walk the same allocation sequence and land on the same offsets.
func (d *DataBlock) ResetSizeAndAlignment() {
	d.size = 0
	d.align = 1
}
