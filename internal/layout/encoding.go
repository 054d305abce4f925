package layout

import "encoding/binary"

// putU32/putU64/readU32/readU64 wrap encoding/binary.LittleEndian rather
// than reinterpreting the backing buffer through an unsafe pointer cast:
// Go cannot reinterpret_cast a struct over raw bytes and keep it portable
// across compilers the way the original C++ did, and modern Go compilers
// inline and optimize binary.LittleEndian calls extremely well, so the
// explicit form costs nothing at runtime.

func putU32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func putU64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
func readU32(b []byte) uint32   { return binary.LittleEndian.Uint32(b) }
func readU64(b []byte) uint64   { return binary.LittleEndian.Uint64(b) }
