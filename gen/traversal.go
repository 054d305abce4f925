package gen

import (
	"github.com/snapcorpus/snapcorpus/arch"
	"github.com/snapcorpus/snapcorpus/internal/checks"
	"github.com/snapcorpus/snapcorpus/internal/checksum"
	"github.com/snapcorpus/snapcorpus/internal/layout"
	"github.com/snapcorpus/snapcorpus/internal/reloc"
	"github.com/snapcorpus/snapcorpus/snapshot"
)

type passKind int

const (
	passSizing passKind = iota
	passEmitting
)

// regCodec is the opaque, architecture-specific register codec the
// traversal validates serialized register blobs against. It never
// interprets the bytes beyond checking their length round-trips through
// the architecture's own deserializer — the actual decode is left to the
// runner, matching the spec's "consumed as opaque byte-level codecs."
type regCodec struct {
	size     int
	validate func([]byte) error
}

// traversal is the two-pass driver. It is not safe for concurrent use and
// is meant to be built once per Generate call, not reused.
type traversal struct {
	archID arch.ID
	opts   Options
	pass   passKind

	greg  regCodec
	fpreg regCodec

	main           *reloc.DataBlock
	snapBlock      *reloc.DataBlock
	memoryBytes    *reloc.DataBlock
	memoryMapping  *reloc.DataBlock
	byteData       *reloc.DataBlock
	stringBlock    *reloc.DataBlock
	fpregBlock     *reloc.DataBlock
	gregBlock      *reloc.DataBlock
	pageData       *reloc.DataBlock

	// contentDedup is shared by byteData and pageData: a payload's
	// content alone decides both whether it is reused and which block it
	// lives in, so one map suffices and guarantees content-equal
	// payloads always land in the same place regardless of which caller
	// sees them first.
	contentDedup *reloc.Dedup
	gregDedup    *reloc.Dedup
	fpregDedup   *reloc.Dedup

	snapArrRef reloc.Ref
}

func newTraversal(archID arch.ID, greg, fpreg regCodec, opts Options) *traversal {
	return &traversal{
		archID: archID,
		opts:   opts,
		greg:   greg,
		fpreg:  fpreg,

		main:          reloc.NewDataBlock(),
		snapBlock:     reloc.NewDataBlock(),
		memoryBytes:   reloc.NewDataBlock(),
		memoryMapping: reloc.NewDataBlock(),
		byteData:      reloc.NewDataBlock(),
		stringBlock:   reloc.NewDataBlock(),
		fpregBlock:    reloc.NewDataBlock(),
		gregBlock:     reloc.NewDataBlock(),
		pageData:      reloc.NewDataBlock(),

		contentDedup: reloc.NewDedup(),
		gregDedup:    reloc.NewDedup(),
		fpregDedup:   reloc.NewDedup(),
	}
}

// subBlocks returns the eight sub-blocks in the stable composition order
// spec.md §4.2 mandates: pointer-bearing first (snap, memory-bytes), then
// pointer-free (memory-mapping, byte-data, string, fpreg, greg,
// page-data), so that pointer-free pages stay copy-on-write-shared across
// mmap users once the loader dirties the pointer-bearing ones.
func (t *traversal) subBlocks() []*reloc.DataBlock {
	return []*reloc.DataBlock{
		t.snapBlock, t.memoryBytes, t.memoryMapping, t.byteData,
		t.stringBlock, t.fpregBlock, t.gregBlock, t.pageData,
	}
}

// process walks every snapshot once, in the order spec.md §9 requires:
// per snapshot, id then mappings (each mapping's memory-bytes in order)
// then end-state memory-bytes then entry registers then end-state
// registers; across snapshots, input order. header and corpus are
// allocated by the caller (generate.go) since they aren't part of any
// sub-block.
func (t *traversal) process(snapshots []snapshot.Snapshot) {
	snapPtrs := reloc.AllocateObjects[uint64](t.snapBlock, len(snapshots), 8, 8)
	snapArr := reloc.AllocateObjects[layout.Snap](t.snapBlock, len(snapshots), layout.SnapSize, 8)

	for i, snap := range snapshots {
		t.checkPreconditions(snap)
		rec := t.processSnapshot(snap)
		if t.pass == passEmitting {
			elemPtr := snapArr.LoadAddress() + uint64(i)*uint64(layout.SnapSize)
			binaryPutU64(snapPtrs.Contents()[i*8:], elemPtr)
			rec.Encode(snapArr.Contents()[i*layout.SnapSize : (i+1)*layout.SnapSize])
		}
	}
	t.snapArrRef = snapPtrs
}

// snapArrRef is stashed by process so generate.go can locate the Snap
// pointer array's nominal base address when filling in the Corpus record.
func (t *traversal) snapArrayRef() reloc.Ref { return t.snapArrRef }

func (t *traversal) checkPreconditions(snap snapshot.Snapshot) {
	if snap.Architecture != t.archID {
		checks.Fatalf("gen: snapshot %q: architecture %s does not match traversal architecture %s", snap.ID, snap.Architecture, t.archID)
	}
	if len(snap.EndStates) != 1 {
		checks.Fatalf("gen: snapshot %q: expected exactly 1 end state, got %d", snap.ID, len(snap.EndStates))
	}
}

func (t *traversal) processSnapshot(snap snapshot.Snapshot) layout.Snap {
	sanitizedID, err := snapshot.SanitizeID([]byte(snap.ID))
	if err != nil {
		checks.Fatalf("gen: snapshot %q: invalid id: %v", snap.ID, err)
	}
	idRef := t.allocateString(sanitizedID)

	mappingsRef := t.processMappings(snap.Mappings)

	end := snap.EndStates[0]
	endBytesRef := t.processMemoryBytesArray(end.Bytes)

	currentRegs := t.processRegisterState(snap.ID, snap.Registers, false)
	endRegs := t.processRegisterState(snap.ID, end.Registers, true)

	endChecksum := t.decodeRegisterChecksum(snap.ID, end.RegisterChecksum)
	preMemChecksum := registerMemoryChecksum(snap.Registers)
	endMemChecksum := registerMemoryChecksum(end.Registers)

	return layout.Snap{
		IDPtr:                     idRef.LoadAddress(),
		Mappings:                  layout.ArrayDescriptor{Size: uint64(len(snap.Mappings)), Ptr: mappingsRef.LoadAddress()},
		CurrentRegisters:          currentRegs,
		EndInstructionAddress:     end.InstructionAddress,
		EndRegisters:              endRegs,
		EndMemoryBytes:            layout.ArrayDescriptor{Size: uint64(len(end.Bytes)), Ptr: endBytesRef.LoadAddress()},
		EndRegisterChecksum:       endChecksum,
		PreRegisterMemoryChecksum: preMemChecksum,
		EndRegisterMemoryChecksum: endMemChecksum,
	}
}

// decodeRegisterChecksum decodes the caller-supplied, externally computed
// end-state register checksum blob. An empty blob decodes to zero (no
// integrity value supplied); any other length is a precondition
// violation — the "register-checksum deserialization fails" fatal path.
func (t *traversal) decodeRegisterChecksum(id string, blob []byte) uint64 {
	if len(blob) == 0 {
		return 0
	}
	if len(blob) != 8 {
		checks.Fatalf("gen: snapshot %q: register checksum blob has wrong size: want 8, got %d", id, len(blob))
	}
	return binaryU64(blob)
}

func registerMemoryChecksum(rs snapshot.RegisterState) uint64 {
	m := checksum.NewMemoryChecksum()
	_, _ = m.Write(rs.GReg)
	_, _ = m.Write(rs.FPReg)
	return m.Sum()
}

func (t *traversal) allocateString(s string) reloc.Ref {
	data := append([]byte(s), 0) // NUL-terminated
	ref := t.stringBlock.Allocate(int64(len(data)), 1)
	if t.pass == passEmitting {
		copy(ref.Contents(), data)
	}
	return ref
}

func (t *traversal) processMappings(mappings []snapshot.MemoryMapping) reloc.Ref {
	arrRef := reloc.AllocateObjects[layout.MemoryMapping](t.memoryMapping, len(mappings), layout.MemoryMappingSize, 8)
	if t.pass != passEmitting {
		for _, m := range mappings {
			_ = t.processMapping(m)
		}
		return arrRef
	}
	for i, m := range mappings {
		rec := t.processMapping(m)
		rec.Encode(arrRef.Contents()[i*layout.MemoryMappingSize : (i+1)*layout.MemoryMappingSize])
	}
	return arrRef
}

func (t *traversal) processMapping(m snapshot.MemoryMapping) layout.MemoryMapping {
	bytesRef := t.processMemoryBytesArray(m.Bytes)

	mc := checksum.NewMemoryChecksum()
	for _, payload := range m.Bytes {
		_, _ = mc.Write(payload.Data)
	}

	return layout.MemoryMapping{
		StartAddress:   m.StartAddress,
		NumBytes:       m.NumBytes,
		Perms:          uint32(m.Perms),
		MemoryChecksum: mc.Sum(),
		Bytes:          layout.ArrayDescriptor{Size: uint64(len(m.Bytes)), Ptr: bytesRef.LoadAddress()},
	}
}

func (t *traversal) processMemoryBytesArray(payloads []snapshot.MemoryBytes) reloc.Ref {
	arrRef := reloc.AllocateObjects[layout.MemoryBytes](t.memoryBytes, len(payloads), layout.MemoryBytesSize, 8)
	for i, p := range payloads {
		rec := t.processMemoryBytesPayload(p)
		if t.pass == passEmitting {
			rec.Encode(arrRef.Contents()[i*layout.MemoryBytesSize : (i+1)*layout.MemoryBytesSize])
		}
	}
	return arrRef
}

func (t *traversal) processMemoryBytesPayload(p snapshot.MemoryBytes) layout.MemoryBytes {
	rec := layout.MemoryBytes{StartAddress: p.StartAddress}

	if t.opts.CompressRepeatingBytes {
		if val, ok := repeatingByte(p.Data); ok {
			rec.Flags = layout.FlagRepeatingRun
			rec.RepeatValue = uint64(val)
			rec.RepeatSize = uint64(len(p.Data))
			return rec
		}
	}

	ref, hit := t.contentDedup.Lookup(p.Data)
	if !hit {
		pageClassified := layout.IsPageAligned(p.StartAddress) && layout.IsPageAligned(uint64(len(p.Data)))
		if pageClassified {
			ref = t.pageData.Allocate(int64(len(p.Data)), layout.PageSize)
		} else {
			ref = t.byteData.Allocate(int64(len(p.Data)), 8)
		}
		t.contentDedup.Store(p.Data, ref)
	}
	if t.pass == passEmitting {
		copy(ref.Contents(), p.Data)
	}
	rec.Bytes = layout.ArrayDescriptor{Size: uint64(len(p.Data)), Ptr: ref.LoadAddress()}
	return rec
}

// processRegisterState converts one captured register state into its
// on-wire view. allowEmpty is true only for a snapshot's end state: spec.md
// §4.2 lets a runner omit end-state registers it didn't capture (they
// zero-fill), but a snapshot's entry registers are never optional — a
// producer must always know what it started from.
func (t *traversal) processRegisterState(id string, rs snapshot.RegisterState, allowEmpty bool) layout.RegisterView {
	gregPtr := t.processRegBlob(id, rs.GReg, t.gregDedup, t.gregBlock, t.greg, "greg", allowEmpty)
	fpregPtr := t.processRegBlob(id, rs.FPReg, t.fpregDedup, t.fpregBlock, t.fpreg, "fpreg", allowEmpty)
	return layout.RegisterView{GRegPtr: gregPtr, FPRegPtr: fpregPtr}
}

func (t *traversal) processRegBlob(id string, blob []byte, dedup *reloc.Dedup, block *reloc.DataBlock, codec regCodec, kind string, allowEmpty bool) uint64 {
	content := blob
	if len(content) == 0 {
		if !allowEmpty {
			checks.Fatalf("gen: snapshot %q: entry %s register blob is empty", id, kind)
		}
		content = make([]byte, codec.size)
	} else if err := codec.validate(content); err != nil {
		checks.Fatalf("gen: snapshot %q: %s register blob failed to deserialize: %v", id, kind, err)
	}

	ref, hit := dedup.Lookup(content)
	if !hit {
		ref = block.Allocate(int64(codec.size), 8)
		dedup.Store(content, ref)
	}
	if t.pass == passEmitting {
		copy(ref.Contents(), content)
	}
	return ref.LoadAddress()
}

// repeatingByte reports whether data is a non-empty run of one repeated
// byte value.
func repeatingByte(data []byte) (byte, bool) {
	if len(data) == 0 {
		return 0, false
	}
	v := data[0]
	for _, b := range data[1:] {
		if b != v {
			return 0, false
		}
	}
	return v, true
}
