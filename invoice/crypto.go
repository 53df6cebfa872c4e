package invoice

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// recoverableHeaderOffset is the fixed offset SignCompact/RecoverCompact
// add on top of the raw recovery ID for a compressed public key (27 base +
// 4 for "compressed"). Lightning public keys are always compressed, so the
// recovery flag round-trips as header-31.
const recoverableHeaderOffset = 27 + 4

// signRecoverable signs hash with priv and returns the 64-byte (r||s)
// signature together with the 0..=3 recovery flag needed to recover priv's
// public key from (hash, r, s) alone.
func signRecoverable(priv *btcec.PrivateKey, hash []byte) (rs [64]byte, recoveryFlag byte, err error) {
	compact := ecdsa.SignCompact(priv, hash, true)
	if len(compact) != 65 {
		return rs, 0, fmt.Errorf("invoice: unexpected compact signature length %d", len(compact))
	}
	recoveryFlag = compact[0] - recoverableHeaderOffset
	copy(rs[:], compact[1:])
	return rs, recoveryFlag, nil
}

// recoverPubKey recovers the signer's compressed public key from a
// signature and the recovery flag produced alongside it.
func recoverPubKey(hash []byte, rs [64]byte, recoveryFlag byte) (*btcec.PublicKey, error) {
	if recoveryFlag > 3 {
		return nil, ErrSignatureInvalid
	}
	compact := make([]byte, 65)
	compact[0] = recoverableHeaderOffset + recoveryFlag
	copy(compact[1:], rs[:])
	pub, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	return pub, nil
}

// pubKeyFromCompressed parses a 33-byte compressed secp256k1 point.
func pubKeyFromCompressed(compressed [33]byte) (*btcec.PublicKey, error) {
	return btcec.ParsePubKey(compressed[:])
}

// verifySignature reports whether rs is a valid ECDSA signature over hash
// by pub.
func verifySignature(pub *btcec.PublicKey, hash []byte, rs [64]byte) bool {
	var rScalar, sScalar btcec.ModNScalar
	if rScalar.SetByteSlice(rs[:32]) {
		return false // overflowed the group order
	}
	if sScalar.SetByteSlice(rs[32:]) {
		return false
	}
	sig := ecdsa.NewSignature(&rScalar, &sScalar)
	return sig.Verify(hash, pub)
}
