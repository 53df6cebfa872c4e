package invoice

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/gijswijs/lntools/bitstream"
)

// sigWords is the fixed word footprint of the trailing signature: 103
// words for the 64-byte (r, s) pair plus 1 word for the recovery flag
// (520 bits = 512 signature bits + 3 zero padding bits + a 5-bit recovery
// word, §3).
const sigWords = 103 + 1

// Decode parses a bech32-encoded BOLT-11 payment request. It returns
// ErrBadChecksum, ErrMalformedPrefix, ErrUnknownNetwork, ErrInvalidAmount,
// ErrTruncatedPayload, or ErrSignatureInvalid on failure; a decode error
// always discards the partial invoice.
func Decode(s string) (*Invoice, error) {
	hrp, words, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadChecksum, err)
	}

	network, amountPico, err := ParsePrefix(hrp)
	if err != nil {
		return nil, err
	}

	cur := bitstream.NewReader(words)
	if cur.WordsRemaining() < 7+sigWords {
		return nil, fmt.Errorf("%w: stream shorter than timestamp + signature", ErrTruncatedPayload)
	}

	timestamp, err := cur.ReadUintBE(7)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedPayload, err)
	}

	inv := &Invoice{
		Network:    network,
		AmountPico: amountPico,
		Timestamp:  timestamp,
	}

	for cur.WordsRemaining() > sigWords {
		typ, err := cur.ReadUintBE(1)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedPayload, err)
		}
		if FieldType(typ) == fieldTypePadding {
			continue
		}
		if cur.WordsRemaining() < 2 {
			return nil, fmt.Errorf("%w: field length truncated", ErrTruncatedPayload)
		}
		length, err := cur.ReadUintBE(2)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedPayload, err)
		}
		rawWords, err := cur.ReadWords(int(length))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedPayload, err)
		}

		field, ok, err := decodeFieldValue(FieldType(typ), rawWords)
		if err != nil {
			return nil, err
		}
		if !ok {
			inv.UnknownFields = append(inv.UnknownFields, UnknownField{
				RawType: FieldType(typ),
				Words:   rawWords,
			})
			continue
		}
		inv.Fields = append(inv.Fields, field)
	}

	if cur.WordsRemaining() != sigWords {
		return nil, fmt.Errorf("%w: %d words before signature, want %d", ErrTruncatedPayload, cur.WordsRemaining(), sigWords)
	}

	rsBytes, err := cur.ReadBytes(103, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedPayload, err)
	}
	recoveryFlag, err := cur.ReadUintBE(1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedPayload, err)
	}
	if recoveryFlag > 3 {
		return nil, ErrSignatureInvalid
	}

	var rs [64]byte
	copy(rs[:], rsBytes)
	inv.Signature = Signature{RecoveryFlag: byte(recoveryFlag)}
	copy(inv.Signature.R[:], rs[:32])
	copy(inv.Signature.S[:], rs[32:])

	// Pre-image: re-read the data section from the start, padded, and
	// prepend the HRP ASCII bytes (§4.2 step 6).
	bodyWordCount := len(words) - sigWords
	preCur := bitstream.NewReader(words)
	bodyBytes, err := preCur.ReadBytes(bodyWordCount, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedPayload, err)
	}
	preimage := append([]byte(hrp), bodyBytes...)
	inv.HashData = sha256.Sum256(preimage)

	var payeeNode *PayeeNodeField
	for i := range inv.Fields {
		if p, ok := inv.Fields[i].(PayeeNodeField); ok {
			payeeNode = &p
			break
		}
	}
	if payeeNode != nil {
		inv.PubKey = payeeNode.PubKey
		inv.UsedSigRecovery = false
	} else {
		pub, err := recoverPubKey(inv.HashData[:], rs, byte(recoveryFlag))
		if err != nil {
			return nil, err
		}
		copy(inv.PubKey[:], pub.SerializeCompressed())
		inv.UsedSigRecovery = true
	}

	pub, err := pubKeyFromCompressed(inv.PubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	if !verifySignature(pub, inv.HashData[:], rs) {
		return nil, ErrSignatureInvalid
	}

	return inv, nil
}
