package reloc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snapcorpus/snapcorpus/internal/reloc"
)

func TestAllocateDeterministicOffsets(t *testing.T) {
	b1 := reloc.NewDataBlock()
	r1 := b1.Allocate(3, 1)
	r2 := b1.Allocate(8, 8)
	require.EqualValues(t, 3, r1.Size())
	require.EqualValues(t, 0, r1.LoadAddress())
	require.EqualValues(t, 8, r2.LoadAddress()) // rounded up to 8-byte alignment

	b2 := reloc.NewDataBlock()
	s1 := b2.Allocate(3, 1)
	s2 := b2.Allocate(8, 8)
	require.Equal(t, r1.LoadAddress(), s1.LoadAddress())
	require.Equal(t, r2.LoadAddress(), s2.LoadAddress())
}

func TestAllocateRaisesAlignment(t *testing.T) {
	b := reloc.NewDataBlock()
	require.Equal(t, int64(1), b.Alignment())
	b.Allocate(1, 8)
	require.Equal(t, int64(8), b.Alignment())
	b.Allocate(1, 4096)
	require.Equal(t, int64(4096), b.Alignment())
}

func TestAllocateAlignsOffset(t *testing.T) {
	b := reloc.NewDataBlock()
	b.Allocate(1, 1) // size now 1
	r := b.Allocate(8, 8)
	require.Equal(t, uint64(8), r.LoadAddress())
}

func TestSetContentsAndContents(t *testing.T) {
	b := reloc.NewDataBlock()
	r := b.Allocate(4, 4)
	buf := make([]byte, b.Size())
	b.SetContents(buf)
	b.SetLoadAddress(0x1000)

	copy(r.Contents(), []byte{1, 2, 3, 4})
	require.Equal(t, []byte{1, 2, 3, 4}, buf[:4])
	require.Equal(t, uint64(0x1000), r.LoadAddress())
}

func TestResetSizeAndAlignmentKeepsBuffer(t *testing.T) {
	b := reloc.NewDataBlock()
	b.Allocate(10, 8)
	buf := make([]byte, b.Size())
	b.SetContents(buf)
	b.SetLoadAddress(42)

	b.ResetSizeAndAlignment()
	require.Equal(t, int64(0), b.Size())
	require.Equal(t, int64(1), b.Alignment())
	require.Equal(t, uint64(42), b.LoadAddress())

	r := b.Allocate(4, 4)
	require.Equal(t, uint64(42), r.LoadAddress())
}

func TestAllocateBlockComposesSubBlock(t *testing.T) {
	main := reloc.NewDataBlock()
	main.SetLoadAddress(0x2000)

	sub := reloc.NewDataBlock()
	subEntry := sub.Allocate(16, 8)

	subRef := main.AllocateBlock(sub)
	require.Equal(t, sub.LoadAddress(), subRef.LoadAddress())

	mainBuf := make([]byte, main.Size())
	main.SetContents(mainBuf)

	// sub was composed before main had a buffer; SetContents must have
	// replayed the handoff so writes through subEntry land in mainBuf.
	copy(subEntry.Contents(), []byte{0xAA, 0xBB})
	off := subRef.LoadAddress() - main.LoadAddress()
	require.Equal(t, byte(0xAA), mainBuf[off])
	require.Equal(t, byte(0xBB), mainBuf[off+1])
}

func TestAllocateObjectsGeneric(t *testing.T) {
	b := reloc.NewDataBlock()
	type widget struct{ a, b uint64 }
	ref := reloc.AllocateObjects[widget](b, 3, 16, 8)
	require.EqualValues(t, 48, ref.Size())
}

func TestNullRef(t *testing.T) {
	var r reloc.Ref
	require.True(t, r.IsNull())
	require.Equal(t, uint64(0), r.LoadAddress())
}

func TestDedupLookupStore(t *testing.T) {
	d := reloc.NewDedup()
	b := reloc.NewDataBlock()
	ref := b.Allocate(4, 4)
	content := []byte{1, 2, 3, 4}

	_, ok := d.Lookup(content)
	require.False(t, ok)

	d.Store(content, ref)
	got, ok := d.Lookup(content)
	require.True(t, ok)
	require.Equal(t, ref.LoadAddress(), got.LoadAddress())
	require.Equal(t, 1, d.Len())

	d.Clear()
	require.Equal(t, 0, d.Len())
}
