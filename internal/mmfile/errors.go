package mmfile

import "errors"

// ErrImageTooSmall is returned when the file being mapped is shorter than
// a corpus header could possibly be, before any header field is ever
// decoded from it.
var ErrImageTooSmall = errors.New("mmfile: file too small to be a corpus image")
