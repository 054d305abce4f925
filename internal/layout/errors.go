package layout

import "errors"

// ErrMagicMismatch is returned when a would-be image's header does not
// begin with Magic.
var ErrMagicMismatch = errors.New("layout: magic mismatch")

// ErrTypeSizeMismatch is returned when a header's recorded record type
// sizes don't match the sizes this build of the package actually uses.
var ErrTypeSizeMismatch = errors.New("layout: type size mismatch")

// ErrBufferTooSmall is returned when a buffer is too short to hold a
// record at the offset requested.
var ErrBufferTooSmall = errors.New("layout: buffer too small")
