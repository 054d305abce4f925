package gen

// Counters receives the final byte size of each named block once
// Generate completes, when passed through Options.Counters. The key set
// matches the spec exactly: main_block plus the eight sub-blocks in their
// composition order.
type Counters map[string]int64

// Block name keys reported in Counters.
const (
	MainBlock           = "main_block"
	SnapBlockName       = "snap_block"
	MemoryBytesBlockName = "memory_bytes_block"
	MemoryMappingBlockName = "memory_mapping_block"
	ByteDataBlockName   = "byte_data_block"
	StringBlockName     = "string_block"
	FPRegsBlockName     = "fpregs_block"
	GRegsBlockName      = "gregs_block"
	PageDataBlockName   = "page_data_block"
)

// Options configures a Generate call.
type Options struct {
	// CompressRepeatingBytes, when true, stores a memory-bytes payload
	// that is a run of a single repeated byte as a (value, size) pair
	// instead of copying the bytes into the image.
	CompressRepeatingBytes bool

	// Counters, if non-nil, is filled in with the final size of every
	// block once Generate returns successfully.
	Counters Counters
}

// DefaultOptions returns the default Options: repeating-byte compression
// on, no counters collected.
func DefaultOptions() Options {
	return Options{CompressRepeatingBytes: true}
}
