// Package gen implements the two-pass layout-and-emit engine: Generate
// walks a list of snapshots once to compute sizes, composes the eight
// sub-blocks into one main block, allocates a single backing buffer sized
// exactly to fit, then walks the snapshots again to write the final
// image.
package gen

import (
	"github.com/snapcorpus/snapcorpus/arch"
	"github.com/snapcorpus/snapcorpus/arch/amd64"
	"github.com/snapcorpus/snapcorpus/internal/checks"
	"github.com/snapcorpus/snapcorpus/internal/checksum"
	"github.com/snapcorpus/snapcorpus/internal/layout"
	"github.com/snapcorpus/snapcorpus/snapshot"
)

func codecsFor(archID arch.ID) (regCodec, regCodec, error) {
	type pair struct{ greg, fpreg regCodec }
	p, err := arch.Dispatch(archID, map[arch.ID]func() (pair, error){
		arch.AMD64: func() (pair, error) {
			return pair{
				greg: regCodec{
					size: amd64.GRegSize,
					validate: func(b []byte) error {
						_, err := amd64.DeserializeGRegSet(b)
						return err
					},
				},
				fpreg: regCodec{
					size: amd64.FPRegSize,
					validate: func(b []byte) error {
						_, err := amd64.DeserializeFPRegSet(b)
						return err
					},
				},
			}, nil
		},
	})
	if err != nil {
		return regCodec{}, regCodec{}, err
	}
	return p.greg, p.fpreg, nil
}

// Generate is the public entry point: it lays out and emits a relocatable
// corpus image for archID's target architecture from snapshots, according
// to opts. The returned buffer is owned by the caller.
func Generate(archID arch.ID, snapshots []snapshot.Snapshot, opts Options) ([]byte, error) {
	greg, fpreg, err := codecsFor(archID)
	if err != nil {
		return nil, err
	}

	t := newTraversal(archID, greg, fpreg, opts)

	// Sizing pass: walk every snapshot, accumulating size/alignment in
	// every sub-block without writing anything.
	t.pass = passSizing
	t.process(snapshots)

	// prepare(): lay out the Header and Corpus as two adjacent records,
	// then compose the eight sub-blocks into the main block, in that
	// fixed order. Sub-block load addresses become main.LoadAddress() +
	// their offset; main's own load address is the nominal origin, zero.
	t.main.SetLoadAddress(0)
	headerRef := t.main.Allocate(layout.HeaderSize, 8)
	corpusRef := t.main.Allocate(layout.CorpusSize, 8)
	for _, sub := range t.subBlocks() {
		t.main.AllocateBlock(sub)
	}

	if t.main.Alignment() > layout.PageSize {
		checks.Fatalf("gen: main block required alignment %d exceeds page size %d", t.main.Alignment(), layout.PageSize)
	}

	buf := make([]byte, t.main.Size())
	t.main.SetContents(buf)

	// Reset every sub-block (not main — its own layout is now fixed) and
	// clear dedup tables, then re-walk identically for the emission pass.
	for _, sub := range t.subBlocks() {
		sub.ResetSizeAndAlignment()
	}
	t.contentDedup.Clear()
	t.gregDedup.Clear()
	t.fpregDedup.Clear()

	t.pass = passEmitting
	t.process(snapshots)

	header := layout.Header{
		HeaderSize:            layout.HeaderSize,
		ArchitectureID:        uint32(archID),
		CorpusTypeSize:        layout.CorpusSize,
		SnapTypeSize:          layout.SnapSize,
		RegisterStateTypeSize: uint32(greg.size + fpreg.size),
		NumBytes:              uint64(len(buf)),
	}
	header.Encode(headerRef.Contents())

	corpus := layout.Corpus{
		Snaps: layout.ArrayDescriptor{Size: uint64(len(snapshots)), Ptr: t.snapArrayRef().LoadAddress()},
	}
	corpus.Encode(corpusRef.Contents())

	sum := checksum.ComputeImageChecksum(buf, layout.HeaderChecksumOffset)
	binaryPutU64(buf[layout.HeaderChecksumOffset:layout.HeaderChecksumOffset+8], sum)

	if opts.Counters != nil {
		opts.Counters[MainBlock] = t.main.Size()
		opts.Counters[SnapBlockName] = t.snapBlock.Size()
		opts.Counters[MemoryBytesBlockName] = t.memoryBytes.Size()
		opts.Counters[MemoryMappingBlockName] = t.memoryMapping.Size()
		opts.Counters[ByteDataBlockName] = t.byteData.Size()
		opts.Counters[StringBlockName] = t.stringBlock.Size()
		opts.Counters[FPRegsBlockName] = t.fpregBlock.Size()
		opts.Counters[GRegsBlockName] = t.gregBlock.Size()
		opts.Counters[PageDataBlockName] = t.pageData.Size()
	}

	return buf, nil
}
