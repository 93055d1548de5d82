package payload

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrDecode is returned when a payload meant for display is not valid UTF-8.
var ErrDecode = errors.New("payload is not valid utf-8")

// Decode returns b as text. The error wraps ErrDecode and reports the offset of
// the first invalid byte.
func Decode(b []byte) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}

	offset := 0
	for offset < len(b) {
		r, size := utf8.DecodeRune(b[offset:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		offset += size
	}

	return "", fmt.Errorf("%w: invalid byte 0x%02x at offset %d of %d", ErrDecode, b[offset], offset, len(b))
}
