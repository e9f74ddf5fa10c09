package packet

import "errors"

var (
	// ErrShortBuffer reports a buffer smaller than the header or the
	// decoded variant's fixed total size.
	ErrShortBuffer = errors.New("packet: short buffer")
	// ErrWrongVariant reports a variant decode applied to a buffer whose
	// type tag selects a different variant.
	ErrWrongVariant = errors.New("packet: wrong variant")
	// ErrInvalidHex reports hex text with odd length or non-hex digits.
	ErrInvalidHex = errors.New("packet: invalid hex")
)
