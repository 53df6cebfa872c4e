package noise

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// zeroNonce96 is the all-zero 96-bit (12-byte) nonce used for every AEAD
// operation during the handshake acts themselves (§4.5); only the
// post-handshake transport framing and Act 3's inner encryption use a
// non-zero counter.
var zeroNonce96 [12]byte

// mixHash folds data into the rolling hash h, matching the symmetric-state
// update `h := SHA256(h || data)` used throughout §4.5.
func mixHash(h [32]byte, data []byte) [32]byte {
	hasher := sha256.New()
	hasher.Write(h[:])
	hasher.Write(data)
	var out [32]byte
	copy(out[:], hasher.Sum(nil))
	return out
}

// ecdh computes the Noise_XK ECDH primitive: SHA256 of the compressed
// serialization of priv.D * pub, per the BOLT-8 definition. This is not
// plain x-coordinate ECDH -- the extra SHA256 over the compressed point is
// load-bearing and must not be dropped.
func ecdh(priv *btcec.PrivateKey, pub *btcec.PublicKey) [32]byte {
	var point, result secp256k1.JacobianPoint
	pub.AsJacobian(&point)
	secp256k1.ScalarMultNonConst(&priv.Key, &point, &result)
	result.ToAffine()
	shared := secp256k1.NewPublicKey(&result.X, &result.Y)
	return sha256.Sum256(shared.SerializeCompressed())
}

// hkdf64 runs HKDF-SHA256 extract-then-expand with salt and ikm, producing
// 64 bytes split into two 32-byte halves. Every chaining-key derivation in
// §4.5 and every key-rotation step in §4.6 uses this same shape.
func hkdf64(salt, ikm []byte) (first, second [32]byte, err error) {
	r := hkdf.New(sha256.New, ikm, salt, nil)
	var out [64]byte
	if _, err := io.ReadFull(r, out[:]); err != nil {
		return first, second, fmt.Errorf("noise: hkdf: %w", err)
	}
	copy(first[:], out[:32])
	copy(second[:], out[32:])
	return first, second, nil
}

// aeadEncrypt seals plaintext under key with associated data ad, passing
// the given 12-byte nonce (zeroNonce96 or a counterNonce value) to
// ChaCha20-Poly1305 unchanged.
func aeadEncrypt(key [32]byte, nonce [12]byte, ad, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce[:], plaintext, ad), nil
}

// aeadDecrypt opens ciphertext under key; failure is always ErrAeadFailure,
// never a partial result.
func aeadDecrypt(key [32]byte, nonce [12]byte, ad, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, nonce[:], ciphertext, ad)
	if err != nil {
		return nil, ErrAeadFailure
	}
	return pt, nil
}

// counterNonce builds the 12-byte nonce with the given 64-bit counter in
// little-endian at bytes 4..12, per the REDESIGN FLAG in §9 (the full
// 64-bit form; it agrees with the BOLT-8 16-bit-counter text for every
// counter value this implementation ever reaches, since key rotation
// resets the counter well below 2^16).
func counterNonce(counter uint64) [12]byte {
	var n [12]byte
	for i := 0; i < 8; i++ {
		n[4+i] = byte(counter >> (8 * uint(i)))
	}
	return n
}
