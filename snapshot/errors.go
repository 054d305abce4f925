package snapshot

import "errors"

// ErrEmptyID is returned by SanitizeID when the id has zero length; an
// empty snapshot id cannot be embedded as a useful diagnostic string.
var ErrEmptyID = errors.New("snapshot: empty id")
