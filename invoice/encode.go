package invoice

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/gijswijs/lntools/bitstream"
)

// maxFieldLengthWords is the largest value a 2-word (10-bit) length prefix
// can hold.
const maxFieldLengthWords = (1 << 10) - 1

// Encode serializes inv and signs it with priv, returning the bech32
// string. Field order follows inv.Fields exactly; inv.UnknownFields, if
// any, are replayed verbatim after the typed fields, preserving their
// relative order and raw word content (§4.3, §8).
func Encode(inv *Invoice, priv *btcec.PrivateKey) (string, error) {
	hrp, err := BuildHRP(inv.Network, inv.AmountPico)
	if err != nil {
		return "", err
	}

	cur := bitstream.NewWriter()
	if err := cur.WriteUintBE(inv.Timestamp, 7); err != nil {
		return "", err
	}

	for _, f := range inv.Fields {
		words, err := encodeFieldValue(f)
		if err != nil {
			return "", err
		}
		if err := writeTypedEntry(cur, f.Type(), words); err != nil {
			return "", err
		}
	}
	for _, u := range inv.UnknownFields {
		if err := writeTypedEntry(cur, u.RawType, u.Words); err != nil {
			return "", err
		}
	}

	// Pre-image: the words written so far, re-packed into bytes with
	// padding, prepended with the HRP ASCII bytes (§4.3 step 4).
	bodyCur := bitstream.NewReader(cur.Words())
	bodyBytes, err := bodyCur.ReadBytes(len(cur.Words()), true)
	if err != nil {
		return "", err
	}
	preimage := append([]byte(hrp), bodyBytes...)
	hash := sha256.Sum256(preimage)

	rs, recoveryFlag, err := signRecoverable(priv, hash[:])
	if err != nil {
		return "", err
	}
	if err := cur.WriteBytes(rs[:], true); err != nil {
		return "", err
	}
	if err := cur.WriteUintBE(uint64(recoveryFlag), 1); err != nil {
		return "", err
	}

	return bech32.Encode(hrp, cur.Words())
}

// writeTypedEntry writes one field entry: a 1-word type, a 2-word
// length-in-words, then the value words verbatim.
func writeTypedEntry(cur *bitstream.Cursor, typ FieldType, words []byte) error {
	if len(words) > maxFieldLengthWords {
		return fmt.Errorf("invoice: field value too long (%d words)", len(words))
	}
	if err := cur.WriteUintBE(uint64(typ), 1); err != nil {
		return err
	}
	if err := cur.WriteUintBE(uint64(len(words)), 2); err != nil {
		return err
	}
	return cur.WriteWords(words)
}
