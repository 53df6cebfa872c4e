// Package bitstream implements the 5-bit word cursor that the BOLT-11
// invoice codec uses to read and write the bech32 data section.
//
// A Cursor holds a sequence of 5-bit "words" (each stored as a byte with
// value 0-31) and a monotonic position. The same type serves both roles in
// the codec: a reader walking an already-decoded word slice, and a writer
// accumulating words for later bech32 encoding. The 5<->8 bit regrouping
// follows the canonical bech32 convert-bits algorithm (BIP-173); this
// package reimplements it directly rather than depending on a bech32
// library's internals, since the codec needs fine control over padding and
// truncation behavior at each call site.
package bitstream

// Cursor is a linear cursor over a sequence of 5-bit words.
type Cursor struct {
	words []byte
	pos   int
}

// NewReader returns a Cursor that reads from the given 5-bit words,
// starting at position 0. The caller retains ownership of words; NewReader
// does not copy it.
func NewReader(words []byte) *Cursor {
	return &Cursor{words: words}
}

// NewWriter returns an empty Cursor for accumulating written words.
func NewWriter() *Cursor {
	return &Cursor{words: make([]byte, 0, 64)}
}

// Words returns the full backing word slice. For a writer, this is
// everything written so far. For a reader, this is the original input
// regardless of the current read position.
func (c *Cursor) Words() []byte {
	return c.words
}

// Pos returns the current cursor position, in words.
func (c *Cursor) Pos() int {
	return c.pos
}

// Reset rewinds the cursor to position 0 without discarding the backing
// words. Used by the invoice decoder to re-read the data section when
// computing the signature pre-image.
func (c *Cursor) Reset() {
	c.pos = 0
}

// WordsRemaining returns the number of words between the current position
// and the end of the backing slice.
func (c *Cursor) WordsRemaining() int {
	return len(c.words) - c.pos
}

// ReadUintBE consumes wordCount words and folds them most-significant-word
// first into an unsigned integer, advancing the cursor. wordCount == 0
// yields 0 and consumes nothing.
func (c *Cursor) ReadUintBE(wordCount int) (uint64, error) {
	if wordCount < 0 {
		return 0, ErrInvalidWordCount
	}
	if c.WordsRemaining() < wordCount {
		return 0, ErrTruncated
	}
	var v uint64
	for i := 0; i < wordCount; i++ {
		v = (v << 5) | uint64(c.words[c.pos+i])
	}
	c.pos += wordCount
	return v, nil
}

// ReadWords consumes wordCount words verbatim (no bit regrouping) and
// returns a copy. Used to isolate a field's declared-length value section
// before dispatching on its type, and to preserve unknown or malformed
// entries bit-exactly for later re-encoding.
func (c *Cursor) ReadWords(wordCount int) ([]byte, error) {
	if wordCount < 0 {
		return nil, ErrInvalidWordCount
	}
	if c.WordsRemaining() < wordCount {
		return nil, ErrTruncated
	}
	out := make([]byte, wordCount)
	copy(out, c.words[c.pos:c.pos+wordCount])
	c.pos += wordCount
	return out, nil
}

// ReadBytes consumes wordCount words and re-packs them into 8-bit bytes,
// advancing the cursor. When pad is false, any trailing partial-byte
// fragment is discarded (it encodes nothing), whatever its bits. When pad
// is true, the fragment is kept as the high bits of one extra output byte,
// zero-filled below.
func (c *Cursor) ReadBytes(wordCount int, pad bool) ([]byte, error) {
	words, err := c.ReadWords(wordCount)
	if err != nil {
		return nil, err
	}
	out, err := wordsToBytes(words, true)
	if err != nil {
		return nil, err
	}
	if !pad && wordCount*5%8 != 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

// WriteUintBE appends wordCount words, most-significant 5 bits first; the
// low 5 bits of value land in the final word. wordCount must be positive.
func (c *Cursor) WriteUintBE(value uint64, wordCount int) error {
	if wordCount <= 0 {
		return ErrInvalidWordCount
	}
	if wordCount < 64 && value>>(uint(wordCount)*5) != 0 {
		return ErrValueTooLarge
	}
	start := len(c.words)
	c.words = append(c.words, make([]byte, wordCount)...)
	for i := wordCount - 1; i >= 0; i-- {
		c.words[start+i] = byte(value & 0x1f)
		value >>= 5
	}
	c.pos = len(c.words)
	return nil
}

// WriteWords appends words verbatim (no bit regrouping). Used to replay an
// unknown or malformed field's original word content unchanged.
func (c *Cursor) WriteWords(words []byte) error {
	c.words = append(c.words, words...)
	c.pos = len(c.words)
	return nil
}

// WriteBytes appends the 5-bit re-packing of buf. When pad is true, the
// final word is zero-padded on the low bits if the bit length is not a
// multiple of 5.
func (c *Cursor) WriteBytes(buf []byte, pad bool) error {
	words, err := bytesToWords(buf, pad)
	if err != nil {
		return err
	}
	return c.WriteWords(words)
}

// WordCountForBytes returns ceil(len(buf)*8/5), the number of 5-bit words
// needed to hold a byte payload of that length.
func WordCountForBytes(byteLen int) int {
	return (byteLen*8 + 4) / 5
}

// WordCountForUint returns the smallest word count whose 5-bit capacity
// holds value; 0 maps to 0 words (see DESIGN.md for the zero-value
// convention this resolves).
func WordCountForUint(value uint64) int {
	if value == 0 {
		return 0
	}
	n := 0
	for value > 0 {
		value >>= 5
		n++
	}
	return n
}

// bytesToWords re-groups 8-bit bytes into 5-bit words, matching the
// canonical bech32 convert-bits(8,5) transform.
func bytesToWords(data []byte, pad bool) ([]byte, error) {
	return convertBits(data, 8, 5, pad)
}

// wordsToBytes re-groups 5-bit words into 8-bit bytes, matching the
// canonical bech32 convert-bits(5,8) transform.
func wordsToBytes(words []byte, pad bool) ([]byte, error) {
	return convertBits(words, 5, 8, pad)
}

// convertBits re-groups a sequence of fromBits-wide values into toBits-wide
// values, MSB first. This is the standard bech32/BIP-173 bit-conversion
// algorithm: an accumulator is filled fromBits at a time and drained
// toBits at a time.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	acc := uint32(0)
	bits := uint(0)
	ret := []byte{}
	maxOut := uint32(1<<toBits) - 1
	maxAcc := uint32(1<<(fromBits+toBits-1)) - 1

	for _, value := range data {
		if uint32(value)>>fromBits != 0 {
			return nil, ErrValueTooLarge
		}
		acc = ((acc << fromBits) | uint32(value)) & maxAcc
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			ret = append(ret, byte((acc>>bits)&maxOut))
		}
	}

	if pad {
		if bits > 0 {
			ret = append(ret, byte((acc<<(toBits-bits))&maxOut))
		}
	} else if bits >= fromBits || ((acc<<(toBits-bits))&maxOut) != 0 {
		return nil, ErrNonZeroPadding
	}
	return ret, nil
}
