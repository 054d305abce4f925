// Package layout defines the fixed on-wire record shapes of the emitted
// corpus image — Header, Corpus, Snap, MemoryMapping, MemoryBytes, and
// ArrayDescriptor — along with the magic constant, page size, and
// alignment helpers the traversal engine uses to place them.
package layout

// Magic is the fixed 64-bit constant stamped into every emitted image's
// header, checked by the loader before anything else.
const Magic uint64 = 0x53434f5250555331 // arbitrary, stable across versions

// PageSize is the runner's page size. A main block whose required
// alignment exceeds this cannot be mmapped and is a fatal condition.
const PageSize = 4096
