package layout

// ArrayDescriptor is a (size, nominal pointer to first element) pair —
// the uniform representation for every array referenced from the image.
//
//	offset  size  field
//	0x00    8     Size
//	0x08    8     Ptr
const ArrayDescriptorSize = 16

type ArrayDescriptor struct {
	Size uint64
	Ptr  uint64
}

func (a ArrayDescriptor) Encode(b []byte) {
	putU64(b[0:8], a.Size)
	putU64(b[8:16], a.Ptr)
}

func DecodeArrayDescriptor(b []byte) ArrayDescriptor {
	return ArrayDescriptor{Size: readU64(b[0:8]), Ptr: readU64(b[8:16])}
}

// RegisterView is a view over a snapshot's current or end-state register
// set: nominal pointers to the greg and fpreg blobs.
//
//	offset  size  field
//	0x00    8     GRegPtr
//	0x08    8     FPRegPtr
const RegisterViewSize = 16

type RegisterView struct {
	GRegPtr  uint64
	FPRegPtr uint64
}

func (r RegisterView) Encode(b []byte) {
	putU64(b[0:8], r.GRegPtr)
	putU64(b[8:16], r.FPRegPtr)
}

func DecodeRegisterView(b []byte) RegisterView {
	return RegisterView{GRegPtr: readU64(b[0:8]), FPRegPtr: readU64(b[8:16])}
}

// Header is the fixed prefix of every emitted image.
//
//	offset  size  field
//	0x00    8     Magic
//	0x08    4     HeaderSize
//	0x0c    4     ArchitectureID
//	0x10    4     CorpusTypeSize
//	0x14    4     SnapTypeSize
//	0x18    4     RegisterStateTypeSize
//	0x1c    4     reserved
//	0x20    8     Checksum   (zeroed while computing CorpusChecksum)
//	0x28    8     NumBytes   (total image length)
const HeaderSize = 48

// HeaderChecksumOffset is where the Checksum field starts within the
// header, the offset callers zero before recomputing CorpusChecksum.
const HeaderChecksumOffset = 32

type Header struct {
	HeaderSize            uint32
	ArchitectureID        uint32
	CorpusTypeSize        uint32
	SnapTypeSize          uint32
	RegisterStateTypeSize uint32
	Checksum              uint64
	NumBytes              uint64
}

func (h Header) Encode(b []byte) {
	putU64(b[0:8], Magic)
	putU32(b[8:12], h.HeaderSize)
	putU32(b[12:16], h.ArchitectureID)
	putU32(b[16:20], h.CorpusTypeSize)
	putU32(b[20:24], h.SnapTypeSize)
	putU32(b[24:28], h.RegisterStateTypeSize)
	putU32(b[28:32], 0)
	putU64(b[32:40], h.Checksum)
	putU64(b[40:48], h.NumBytes)
}

func DecodeHeader(b []byte) (Header, uint64, error) {
	magic := readU64(b[0:8])
	h := Header{
		HeaderSize:            readU32(b[8:12]),
		ArchitectureID:        readU32(b[12:16]),
		CorpusTypeSize:        readU32(b[16:20]),
		SnapTypeSize:          readU32(b[20:24]),
		RegisterStateTypeSize: readU32(b[24:28]),
		Checksum:              readU64(b[32:40]),
		NumBytes:              readU64(b[40:48]),
	}
	if magic != Magic {
		return Header{}, magic, ErrMagicMismatch
	}
	return h, magic, nil
}

// Corpus is the top-level container that immediately follows the image's
// Header: an array descriptor of pointers to Snap records.
//
//	offset  size  field
//	0x00    16    Snaps
const CorpusSize = ArrayDescriptorSize

type Corpus struct {
	Snaps ArrayDescriptor
}

func (c Corpus) Encode(b []byte) {
	c.Snaps.Encode(b[0:ArrayDescriptorSize])
}

func DecodeCorpus(b []byte) Corpus {
	return Corpus{Snaps: DecodeArrayDescriptor(b[0:ArrayDescriptorSize])}
}

// Snap is the emitted in-image representation of one snapshot.
//
//	offset  size  field
//	0x00    8     IDPtr                       (nominal ptr to NUL-terminated id)
//	0x08    16    Mappings                     (array descriptor)
//	0x18    16    CurrentRegisters             (register view)
//	0x28    8     EndInstructionAddress
//	0x30    16    EndRegisters                 (register view)
//	0x40    16    EndMemoryBytes                (array descriptor)
//	0x50    8     EndRegisterChecksum
//	0x58    8     PreRegisterMemoryChecksum
//	0x60    8     EndRegisterMemoryChecksum
const SnapSize = 104

type Snap struct {
	IDPtr                     uint64
	Mappings                  ArrayDescriptor
	CurrentRegisters          RegisterView
	EndInstructionAddress     uint64
	EndRegisters              RegisterView
	EndMemoryBytes            ArrayDescriptor
	EndRegisterChecksum       uint64
	PreRegisterMemoryChecksum uint64
	EndRegisterMemoryChecksum uint64
}

func (s Snap) Encode(b []byte) {
	putU64(b[0:8], s.IDPtr)
	s.Mappings.Encode(b[8:24])
	s.CurrentRegisters.Encode(b[24:40])
	putU64(b[40:48], s.EndInstructionAddress)
	s.EndRegisters.Encode(b[48:64])
	s.EndMemoryBytes.Encode(b[64:80])
	putU64(b[80:88], s.EndRegisterChecksum)
	putU64(b[88:96], s.PreRegisterMemoryChecksum)
	putU64(b[96:104], s.EndRegisterMemoryChecksum)
}

func DecodeSnap(b []byte) Snap {
	return Snap{
		IDPtr:                     readU64(b[0:8]),
		Mappings:                  DecodeArrayDescriptor(b[8:24]),
		CurrentRegisters:          DecodeRegisterView(b[24:40]),
		EndInstructionAddress:     readU64(b[40:48]),
		EndRegisters:              DecodeRegisterView(b[48:64]),
		EndMemoryBytes:            DecodeArrayDescriptor(b[64:80]),
		EndRegisterChecksum:       readU64(b[80:88]),
		PreRegisterMemoryChecksum: readU64(b[88:96]),
		EndRegisterMemoryChecksum: readU64(b[96:104]),
	}
}

// MemoryMapping is one mapped region's emitted record.
//
//	offset  size  field
//	0x00    8     StartAddress
//	0x08    8     NumBytes
//	0x10    4     Perms
//	0x14    4     reserved
//	0x18    8     MemoryChecksum
//	0x20    16    Bytes (array descriptor)
const MemoryMappingSize = 48

type MemoryMapping struct {
	StartAddress   uint64
	NumBytes       uint64
	Perms          uint32
	MemoryChecksum uint64
	Bytes          ArrayDescriptor
}

func (m MemoryMapping) Encode(b []byte) {
	putU64(b[0:8], m.StartAddress)
	putU64(b[8:16], m.NumBytes)
	putU32(b[16:20], m.Perms)
	putU32(b[20:24], 0)
	putU64(b[24:32], m.MemoryChecksum)
	m.Bytes.Encode(b[32:48])
}

func DecodeMemoryMapping(b []byte) MemoryMapping {
	return MemoryMapping{
		StartAddress:   readU64(b[0:8]),
		NumBytes:       readU64(b[8:16]),
		Perms:          readU32(b[16:20]),
		MemoryChecksum: readU64(b[24:32]),
		Bytes:          DecodeArrayDescriptor(b[32:48]),
	}
}

// FlagRepeatingRun marks a MemoryBytes record as a repeating-byte-run
// encoding rather than a stored byte array.
const FlagRepeatingRun uint32 = 1 << 0

// MemoryBytes is one memory-contents payload record. Go has no union
// type, so the repeating-run and stored-array representations both carry
// fixed fields rather than overlapping storage; only the fields relevant
// to the Flags value are meaningful.
//
//	offset  size  field
//	0x00    8     StartAddress
//	0x08    4     Flags
//	0x0c    4     reserved
//	0x10    16    Bytes        (array descriptor; meaningful iff not repeating)
//	0x20    8     RepeatValue  (meaningful iff repeating)
//	0x28    8     RepeatSize   (meaningful iff repeating)
const MemoryBytesSize = 48

type MemoryBytes struct {
	StartAddress uint64
	Flags        uint32
	Bytes        ArrayDescriptor
	RepeatValue  uint64
	RepeatSize   uint64
}

func (m MemoryBytes) Encode(b []byte) {
	putU64(b[0:8], m.StartAddress)
	putU32(b[8:12], m.Flags)
	putU32(b[12:16], 0)
	m.Bytes.Encode(b[16:32])
	putU64(b[32:40], m.RepeatValue)
	putU64(b[40:48], m.RepeatSize)
}

func DecodeMemoryBytes(b []byte) MemoryBytes {
	return MemoryBytes{
		StartAddress: readU64(b[0:8]),
		Flags:        readU32(b[8:12]),
		Bytes:        DecodeArrayDescriptor(b[16:32]),
		RepeatValue:  readU64(b[32:40]),
		RepeatSize:   readU64(b[40:48]),
	}
}
