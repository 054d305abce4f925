// Package loader implements the verification side of the corpus format's
// loader contract: mmap an emitted image, validate its header and
// checksum, and apply the base-address relocation on demand to recover
// the object graph a runner would see. It does not execute anything; the
// runner itself is out of scope.
package loader

import (
	"fmt"

	"github.com/snapcorpus/snapcorpus/arch"
	"github.com/snapcorpus/snapcorpus/arch/amd64"
	"github.com/snapcorpus/snapcorpus/internal/buf"
	"github.com/snapcorpus/snapcorpus/internal/checks"
	"github.com/snapcorpus/snapcorpus/internal/checksum"
	"github.com/snapcorpus/snapcorpus/internal/layout"
	"github.com/snapcorpus/snapcorpus/internal/mmfile"
)

// registerStateTypeSize returns the on-wire size of one combined
// greg+fpreg register state for archID, the same figure gen.Generate
// stamps into the header's RegisterStateTypeSize field via its own
// codecsFor. loader has no reason to share gen's regCodec type — it
// never deserializes register blobs, it only needs their combined size
// to confirm the image was built for an ABI this loader understands.
func registerStateTypeSize(archID arch.ID) (uint32, error) {
	return arch.Dispatch(archID, map[arch.ID]func() (uint32, error){
		arch.AMD64: func() (uint32, error) {
			return uint32(amd64.GRegSize + amd64.FPRegSize), nil
		},
	})
}

// View is a validated, read-only mapping of one emitted corpus image.
type View struct {
	data   []byte
	close  func() error
	header layout.Header
	corpus layout.Corpus
	base   uint64
}

// Open maps the file at path read-only, validates its header, architecture,
// record type sizes, and whole-image checksum against archID, and returns
// a View with its load base at the nominal origin (zero). Call Relocate to
// move it to a different base before dereferencing pointer fields.
func Open(path string, archID arch.ID) (*View, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}

	v, err := newView(data, archID)
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	v.close = cleanup
	return v, nil
}

func newView(data []byte, archID arch.ID) (*View, error) {
	if len(data) < layout.HeaderSize+layout.CorpusSize {
		return nil, layout.ErrBufferTooSmall
	}

	h, _, err := layout.DecodeHeader(data[:layout.HeaderSize])
	if err != nil {
		return nil, err
	}
	if h.ArchitectureID != uint32(archID) {
		return nil, fmt.Errorf("%w: header names %d, opened as %s", ErrArchMismatch, h.ArchitectureID, archID)
	}
	if h.CorpusTypeSize != layout.CorpusSize || h.SnapTypeSize != layout.SnapSize {
		return nil, layout.ErrTypeSizeMismatch
	}
	wantRegSize, err := registerStateTypeSize(archID)
	if err != nil {
		return nil, err
	}
	if h.RegisterStateTypeSize != wantRegSize {
		return nil, layout.ErrTypeSizeMismatch
	}
	if h.NumBytes != uint64(len(data)) {
		return nil, fmt.Errorf("%w: header says %d bytes, mapped %d", ErrLengthMismatch, h.NumBytes, len(data))
	}

	ok, err := VerifyChecksum(data)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrChecksumMismatch
	}

	corpus := layout.DecodeCorpus(data[layout.HeaderSize : layout.HeaderSize+layout.CorpusSize])
	return &View{data: data, header: h, corpus: corpus}, nil
}

// VerifyChecksum recomputes image's whole-image checksum with the
// header's checksum field zeroed and reports whether it matches the
// value stored there. It takes a raw image rather than a View so callers
// can check a buffer before ever opening it as one.
func VerifyChecksum(image []byte) (bool, error) {
	if len(image) < layout.HeaderSize {
		return false, layout.ErrBufferTooSmall
	}
	h, _, err := layout.DecodeHeader(image[:layout.HeaderSize])
	if err != nil {
		return false, err
	}
	got := checksum.ComputeImageChecksum(image, layout.HeaderChecksumOffset)
	return got == h.Checksum, nil
}

// Close releases the underlying mapping.
func (v *View) Close() error {
	if v.close == nil {
		return nil
	}
	return v.close()
}

// Header returns the image's decoded header.
func (v *View) Header() layout.Header { return v.header }

// NumSnaps returns the number of Snap records in the corpus.
func (v *View) NumSnaps() int { return int(v.corpus.Snaps.Size) }

// Relocate sets the load base a subsequent Snap/String dereference
// computes relocated pointers against, per the loader contract: every
// pointer field in the image is treated as if base is added to it.
// base must be a multiple of the page size, matching the "alignment >=
// header's required alignment" contract; a misaligned base is a
// precondition violation, not a recoverable error.
func (v *View) Relocate(base uint64) {
	if base%layout.PageSize != 0 {
		checks.Fatalf("loader: load base %#x is not page-aligned", base)
	}
	v.base = base
}

// relocate turns a nominal (as-if-loaded-at-zero) pointer into the
// relocated pointer a runner at the current load base would see.
func (v *View) relocate(nominal uint64) uint64 { return nominal + v.base }

// dereference turns a relocated pointer back into an offset into the
// locally mapped bytes: the inverse of relocate, since the image the
// caller holds is never actually mapped at base.
func (v *View) dereference(relocated uint64) (int, error) {
	if relocated < v.base {
		return 0, fmt.Errorf("%w: %#x is below load base %#x", ErrPointerOutOfRange, relocated, v.base)
	}
	off := relocated - v.base
	if off > uint64(len(v.data)) {
		return 0, fmt.Errorf("%w: offset %#x exceeds image length %d", ErrPointerOutOfRange, off, len(v.data))
	}
	return int(off), nil
}

// Snap decodes the i-th Snap record, following the corpus's indirection
// array of pointers to reach it. Every offset derived from the mapped
// bytes — the pointer array element, and the Snap record it points at —
// is bounds-checked through internal/buf rather than indexed directly,
// since these offsets come from a memory-mapped file that may not
// actually be a corpus this loader emitted.
func (v *View) Snap(i int) (layout.Snap, error) {
	if i < 0 || uint64(i) >= v.corpus.Snaps.Size {
		return layout.Snap{}, fmt.Errorf("loader: snap index %d out of range [0,%d)", i, v.corpus.Snaps.Size)
	}

	arrOff, err := v.dereference(v.relocate(v.corpus.Snaps.Ptr))
	if err != nil {
		return layout.Snap{}, err
	}
	elemEnd, err := buf.CheckListBounds(len(v.data), arrOff, i+1, 8)
	if err != nil {
		return layout.Snap{}, fmt.Errorf("%w: %v", ErrPointerOutOfRange, err)
	}
	elemBytes, ok := buf.Slice(v.data, elemEnd-8, 8)
	if !ok {
		return layout.Snap{}, ErrPointerOutOfRange
	}
	nominalSnapPtr := buf.U64LE(elemBytes)

	snapOff, err := v.dereference(v.relocate(nominalSnapPtr))
	if err != nil {
		return layout.Snap{}, err
	}
	snapBytes, ok := buf.Slice(v.data, snapOff, layout.SnapSize)
	if !ok {
		return layout.Snap{}, ErrPointerOutOfRange
	}
	return layout.DecodeSnap(snapBytes), nil
}

// String dereferences a nominal pointer into a NUL-terminated string,
// such as Snap.IDPtr.
func (v *View) String(nominalPtr uint64) (string, error) {
	off, err := v.dereference(v.relocate(nominalPtr))
	if err != nil {
		return "", err
	}
	if !buf.Has(v.data, off, 0) {
		return "", ErrPointerOutOfRange
	}
	end := off
	for end < len(v.data) && v.data[end] != 0 {
		end++
	}
	if end == len(v.data) {
		return "", ErrUnterminatedString
	}
	return string(v.data[off:end]), nil
}

// Bytes dereferences an array descriptor's element pointer and returns the
// raw bytes of its payload, such as one memory-bytes record's Bytes field.
func (v *View) Bytes(desc layout.ArrayDescriptor) ([]byte, error) {
	off, err := v.dereference(v.relocate(desc.Ptr))
	if err != nil {
		return nil, err
	}
	data, ok := buf.Slice(v.data, off, int(desc.Size))
	if !ok {
		return nil, ErrPointerOutOfRange
	}
	return data, nil
}
