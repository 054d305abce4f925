package amd64

import "fmt"

func errWrongSize(kind string, want, got int) error {
	return fmt.Errorf("amd64: %s: want %d bytes, got %d", kind, want, got)
}
