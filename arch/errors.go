package arch

import "errors"

// ErrUndefinedArch is returned when an operation is asked to dispatch on
// the zero-value architecture id.
var ErrUndefinedArch = errors.New("arch: undefined architecture")

// ErrUnknownArch is returned when an architecture id matches no
// registered specialization.
var ErrUnknownArch = errors.New("arch: unknown architecture")
