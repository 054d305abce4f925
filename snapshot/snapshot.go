// Package snapshot defines the input contract consumed by gen.Generate: a
// pre-canonicalized description of CPU test cases. Construction, parsing,
// and "snapify" canonicalization of these types live outside this module —
// callers hand in snapshots that already carry exactly one expected end
// state and memory bytes already grouped per mapping.
package snapshot

import "github.com/snapcorpus/snapcorpus/arch"

// Perms holds the subset of mapping permission bits the corpus records:
// the three mprotect bits, independent of whatever richer permission
// representation the caller's own memory model uses.
type Perms uint8

const (
	PermRead Perms = 1 << iota
	PermWrite
	PermExecute
)

func (p Perms) String() string {
	out := [3]byte{'-', '-', '-'}
	if p&PermRead != 0 {
		out[0] = 'r'
	}
	if p&PermWrite != 0 {
		out[1] = 'w'
	}
	if p&PermExecute != 0 {
		out[2] = 'x'
	}
	return string(out[:])
}

// MemoryBytes is one contiguous payload of memory contents, keyed for
// dedup purposes by its Data slice's content. Data is borrowed: it must
// remain live and unmodified for the duration of a Generate call.
type MemoryBytes struct {
	StartAddress uint64
	Data         []byte
}

// MemoryMapping describes one mapped region and the memory-bytes payloads
// that populate it, in the order they should be emitted.
type MemoryMapping struct {
	StartAddress uint64
	NumBytes     uint64
	Perms        Perms
	Bytes        []MemoryBytes
}

// RegisterState is the serialized, architecture-specific form of a
// register set: an opaque byte-level codec output produced and owned by
// the caller. An empty GReg/FPReg is permitted only for end-state
// registers, representing "undefined," and is written as all zeros.
type RegisterState struct {
	GReg []byte
	FPReg []byte
}

// EndState is the single expected end state of a snapshot: the
// instruction address execution is expected to stop at, the expected
// register state there, and the memory bytes expected to differ from the
// entry state. RegisterChecksum is an opaque, externally computed
// integrity value over the expected end-state registers, serialized as 8
// little-endian bytes; decoding it is the "register-checksum
// deserialization" the spec calls fatal on failure, since a wrongly sized
// blob means the caller's contract that inputs arrive pre-canonicalized
// has already been broken.
type EndState struct {
	InstructionAddress uint64
	Registers          RegisterState
	RegisterChecksum   []byte
	Bytes              []MemoryBytes
}

// Snapshot is one CPU test case: mappings, memory contents, entry
// register state, and exactly one expected end state. Generate treats a
// Snapshot with a different count of end states as a precondition
// violation (fatal), per the "pre-canonicalized" caller contract.
type Snapshot struct {
	ID           string
	Architecture arch.ID
	Mappings     []MemoryMapping
	Registers    RegisterState
	EndStates    []EndState
}
