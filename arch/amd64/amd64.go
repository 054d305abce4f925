// Package amd64 provides the fixed-size general-purpose and
// floating-point register shapes for the x86-64 architecture, standing in
// for the architecture-specific serialization primitives the spec treats
// as an opaque, externally owned codec. NumGRegs mirrors the Linux
// user_regs_struct layout; the floating-point area mirrors the legacy
// FXSAVE region.
package amd64

import "encoding/binary"

// NumGRegs is the count of 64-bit general-purpose registers captured,
// matching struct user_regs_struct on Linux/amd64.
const NumGRegs = 27

// GRegSize is the fixed serialized size, in bytes, of a GRegSet.
const GRegSize = NumGRegs * 8

// FPRegSize is the fixed serialized size, in bytes, of an FPRegSet: the
// 512-byte legacy FXSAVE area.
const FPRegSize = 512

// GRegSet is the general-purpose register file.
type GRegSet struct {
	Regs [NumGRegs]uint64
}

// Serialize encodes the register set into its fixed little-endian byte
// form, the form the traversal engine dedups and stores.
func (g GRegSet) Serialize() []byte {
	out := make([]byte, GRegSize)
	for i, r := range g.Regs {
		binary.LittleEndian.PutUint64(out[i*8:], r)
	}
	return out
}

// DeserializeGRegSet decodes a GRegSet from its serialized form. An
// incorrectly sized blob is a precondition violation upstream of this
// package (opaque to arch/amd64, which only validates its own length).
func DeserializeGRegSet(data []byte) (GRegSet, error) {
	if len(data) != GRegSize {
		return GRegSet{}, errWrongSize("greg", GRegSize, len(data))
	}
	var g GRegSet
	for i := range g.Regs {
		g.Regs[i] = binary.LittleEndian.Uint64(data[i*8:])
	}
	return g, nil
}

// FPRegSet is the floating-point/SSE register file, kept as an opaque
// fixed-size byte area: its internal structure isn't interpreted here.
type FPRegSet struct {
	Raw [FPRegSize]byte
}

// Serialize returns the register set's fixed byte form.
func (f FPRegSet) Serialize() []byte {
	out := make([]byte, FPRegSize)
	copy(out, f.Raw[:])
	return out
}

// DeserializeFPRegSet decodes an FPRegSet from its serialized form.
func DeserializeFPRegSet(data []byte) (FPRegSet, error) {
	if len(data) != FPRegSize {
		return FPRegSet{}, errWrongSize("fpreg", FPRegSize, len(data))
	}
	var f FPRegSet
	copy(f.Raw[:], data)
	return f, nil
}
