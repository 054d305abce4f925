package loader

import "errors"

// ErrArchMismatch is returned when an image's header names a different
// architecture than the one the caller asked to open it as.
var ErrArchMismatch = errors.New("loader: architecture mismatch")

// ErrLengthMismatch is returned when an image's stored NumBytes disagrees
// with the length of the bytes actually mapped — a truncated or
// concatenated file.
var ErrLengthMismatch = errors.New("loader: length mismatch")

// ErrChecksumMismatch is returned when the recomputed image checksum
// disagrees with the value stored in the header.
var ErrChecksumMismatch = errors.New("loader: checksum mismatch")

// ErrPointerOutOfRange is returned when a relocated pointer falls outside
// the bounds of the mapped image.
var ErrPointerOutOfRange = errors.New("loader: pointer out of range")

// ErrUnterminatedString is returned when a dereferenced string pointer
// runs off the end of the image before a NUL terminator is found.
var ErrUnterminatedString = errors.New("loader: unterminated string")
