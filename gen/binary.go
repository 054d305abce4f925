package gen

import "encoding/binary"

func binaryPutU64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
func binaryU64(b []byte) uint64       { return binary.LittleEndian.Uint64(b) }
