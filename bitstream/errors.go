package bitstream

import "errors"

var (
	// ErrTruncated indicates a read operation ran past the end of the
	// available words.
	ErrTruncated = errors.New("bitstream: read past end of word stream")

	// ErrInvalidWordCount indicates a read was given a negative word
	// count, or WriteUintBE was given a zero or negative one.
	ErrInvalidWordCount = errors.New("bitstream: word count must be positive")

	// ErrValueTooLarge indicates a value does not fit in the requested
	// number of 5-bit words.
	ErrValueTooLarge = errors.New("bitstream: value does not fit in word count")

	// ErrNonZeroPadding indicates an unpadded (pad=false) bit conversion
	// was left with a trailing fragment that is a whole input unit or
	// longer, or that has non-zero bits. WriteBytes with pad=false can
	// return it; ReadBytes drops such a fragment instead.
	ErrNonZeroPadding = errors.New("bitstream: non-zero padding in discarded fragment")
)
