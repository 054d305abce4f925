package snapshot

import "golang.org/x/text/encoding/charmap"

// SanitizeID defensively decodes a snapshot id that may have arrived as
// non-UTF-8 bytes (some producers emit legacy Windows-1252 text) into a
// valid Go string, so it can be embedded as a NUL-terminated C-string in
// the emitted image without producing invalid UTF-8 along the way. ASCII
// input, the overwhelmingly common case, is returned unchanged.
func SanitizeID(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyID
	}
	if isASCII(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}
