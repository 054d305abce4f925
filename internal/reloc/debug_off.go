//go:build !snapcorpus.debug

package reloc

// debugAssertEqual is a no-op in release builds; see debug_on.go.
func debugAssertEqual(content []byte, ref Ref) {}
