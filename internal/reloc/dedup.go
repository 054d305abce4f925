package reloc

// Dedup is a content-keyed table mapping a byte payload to a previously
// allocated Ref. Two payloads with equal content always share one Ref,
// regardless of which snapshot first produced them. The map key is
// derived from the payload content (not its identity/address), matching
// the spec's "byte payload identity (by content)" semantics; Go's string
// conversion of a []byte copies, so the original slice need not outlive
// the table the way an externally-owned-pointer key would.
type Dedup struct {
	table map[string]Ref
}

// NewDedup returns an empty dedup table.
func NewDedup() *Dedup {
	return &Dedup{table: make(map[string]Ref)}
}

// Lookup returns the ref previously stored for content, if any. When a
// hit occurs and the snapcorpus.debug build tag is set, the caller-
// supplied contents are re-compared against the ref's own bytes via
// debugAssertEqual, mirroring the original's debug-only equality check on
// dedup hits (skipped in release builds since re-comparing large payloads
// on every hit is the cost that optimization exists to avoid).
func (d *Dedup) Lookup(content []byte) (Ref, bool) {
	ref, ok := d.table[string(content)]
	if ok {
		debugAssertEqual(content, ref)
	}
	return ref, ok
}

// Store records ref as the allocation for content.
func (d *Dedup) Store(content []byte, ref Ref) {
	d.table[string(content)] = ref
}

// Clear empties the table, called between the sizing and emission passes
// alongside ResetSizeAndAlignment on the owning sub-block.
func (d *Dedup) Clear() {
	clear(d.table)
}

// Len reports the number of distinct payloads currently deduped.
func (d *Dedup) Len() int { return len(d.table) }
