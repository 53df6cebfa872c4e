package transport

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// hkdf64 mirrors the handshake package's derivation shape: HKDF-SHA256
// extract-then-expand over (salt, ikm), producing 64 bytes split into two
// 32-byte halves. Key rotation (§4.6) reuses it with ikm set to the key
// being rotated away from.
func hkdf64(salt, ikm []byte) (first, second [32]byte, err error) {
	r := hkdf.New(sha256.New, ikm, salt, nil)
	var out [64]byte
	if _, err := io.ReadFull(r, out[:]); err != nil {
		return first, second, fmt.Errorf("transport: hkdf: %w", err)
	}
	copy(first[:], out[:32])
	copy(second[:], out[32:])
	return first, second, nil
}

func aeadSeal(key [32]byte, nonce [12]byte, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce[:], plaintext, nil), nil
}

func aeadOpen(key [32]byte, nonce [12]byte, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, nonce[:], ciphertext, nil)
	if err != nil {
		return nil, ErrAeadFailure
	}
	return pt, nil
}

// counterNonce builds the 12-byte nonce with the given counter in
// little-endian at bytes 4..12. §9's REDESIGN FLAG applies here exactly as
// it does in package noise: this is the full 64-bit form, which agrees
// with the BOLT-8 16-bit-counter text for every counter value ever reached
// since rotation resets the counter at 1000.
func counterNonce(counter uint64) [12]byte {
	var n [12]byte
	for i := 0; i < 8; i++ {
		n[4+i] = byte(counter >> (8 * uint(i)))
	}
	return n
}
