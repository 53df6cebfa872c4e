package bitstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadUintBERoundTrip(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteUintBE(1234567, 7))
	require.NoError(t, w.WriteUintBE(0, 1))
	require.NoError(t, w.WriteUintBE(31, 1))

	r := NewReader(w.Words())
	v, err := r.ReadUintBE(7)
	require.NoError(t, err)
	require.Equal(t, uint64(1234567), v)

	v, err = r.ReadUintBE(1)
	require.NoError(t, err)
	require.Equal(t, uint64(0), v)

	v, err = r.ReadUintBE(1)
	require.NoError(t, err)
	require.Equal(t, uint64(31), v)

	require.Equal(t, 0, r.WordsRemaining())
}

func TestWriteUintBETooLarge(t *testing.T) {
	w := NewWriter()
	err := w.WriteUintBE(32, 1) // needs 6 bits, only 5 available
	require.ErrorIs(t, err, ErrValueTooLarge)
}

func TestWriteUintBEZeroWordCount(t *testing.T) {
	w := NewWriter()
	err := w.WriteUintBE(0, 0)
	require.ErrorIs(t, err, ErrInvalidWordCount)
}

func TestBytesWordsRoundTrip(t *testing.T) {
	// 5 bytes -> 40 bits -> 8 words exactly, no padding needed.
	buf := []byte{0xde, 0xad, 0xbe, 0xef, 0x01}
	w := NewWriter()
	require.NoError(t, w.WriteBytes(buf, true))
	require.Len(t, w.Words(), WordCountForBytes(len(buf)))

	r := NewReader(w.Words())
	out, err := r.ReadBytes(len(w.Words()), false)
	require.NoError(t, err)
	require.Equal(t, buf, out)
}

func TestBytesWordsRoundTripUnalignedLength(t *testing.T) {
	// 3 bytes -> 24 bits -> ceil(24/5) = 5 words, 1 bit of padding.
	buf := []byte{0x01, 0x02, 0x03}
	w := NewWriter()
	require.NoError(t, w.WriteBytes(buf, true))
	require.Equal(t, 5, len(w.Words()))

	r := NewReader(w.Words())
	out, err := r.ReadBytes(5, false)
	require.NoError(t, err)
	require.Equal(t, buf, out)
}

func TestReadBytesPastEndIsTruncated(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	_, err := r.ReadBytes(10, false)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestReadWordsVerbatim(t *testing.T) {
	words := []byte{5, 6, 7, 8}
	r := NewReader(words)
	out, err := r.ReadWords(4)
	require.NoError(t, err)
	require.Equal(t, words, out)
	require.Equal(t, 0, r.WordsRemaining())
}

func TestResetAllowsRereading(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5, 6, 7})
	_, err := r.ReadUintBE(7)
	require.NoError(t, err)
	require.Equal(t, 0, r.WordsRemaining())

	r.Reset()
	require.Equal(t, 7, r.WordsRemaining())
}

func TestWordCountForUint(t *testing.T) {
	require.Equal(t, 0, WordCountForUint(0))
	require.Equal(t, 1, WordCountForUint(31))
	require.Equal(t, 2, WordCountForUint(32))
	require.Equal(t, 1, WordCountForUint(9))
}

// Round-trip law in the byte direction: converting any byte vector to
// words with zero padding and back to bytes without padding reproduces the
// original, since the padding bits added on the way in are dropped on the
// way out.
func TestConvertBitsRoundTripLaw(t *testing.T) {
	inputs := [][]byte{
		{},
		{0x00},
		{0xff},
		{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a},
	}
	for _, in := range inputs {
		words, err := bytesToWords(in, true)
		require.NoError(t, err)
		back, err := wordsToBytes(words, false)
		require.NoError(t, err)
		require.Equal(t, in, back)
	}
}
