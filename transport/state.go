// Package transport implements the length-prefixed, AEAD-authenticated
// message framing that runs atop a completed noise handshake, including
// the per-direction nonce counters and periodic key rotation (§4.6).
package transport

import (
	"encoding/binary"

	"github.com/gijswijs/lntools/noise"
)

const rotateInterval = 1000

// State is the live transport-framing state for one connection: the two
// directional traffic keys, their nonce counters, and the retained
// chaining key used for rotation. It is not safe for concurrent use by
// multiple goroutines calling EncryptMessage at once -- the caller
// serializes sends, and likewise serializes decrypt_length before
// decrypt_message per frame (§5).
type State struct {
	sk, rk [32]byte
	sn, rn uint64
	ck     [32]byte
}

// New builds transport state from a completed handshake's keys. Nonces
// always start at zero (§4.5 step 7).
func New(keys *noise.TransportKeys) *State {
	return &State{sk: keys.SendKey, rk: keys.RecvKey, ck: keys.ChainKey}
}

// EncryptMessage seals m into a frame: an 18-byte length ciphertext (the
// 2-byte big-endian length plus its 16-byte tag) followed by the message
// ciphertext, per §4.6. The two AEAD
// operations advance sn independently, each capable of triggering a
// send-side key rotation.
func (s *State) EncryptMessage(m []byte) ([]byte, error) {
	if len(m) > 0xffff {
		return nil, ErrMessageTooLarge
	}
	var lengthField [2]byte
	binary.BigEndian.PutUint16(lengthField[:], uint16(len(m)))

	lc, err := s.sealSend(lengthField[:])
	if err != nil {
		return nil, err
	}
	mc, err := s.sealSend(m)
	if err != nil {
		return nil, err
	}
	return append(lc, mc...), nil
}

// DecryptLength opens the 18-byte length ciphertext produced by the peer's
// EncryptMessage and returns the message length it announces.
func (s *State) DecryptLength(lc []byte) (uint16, error) {
	if len(lc) != 18 {
		return 0, ErrLengthCiphertextSize
	}
	pt, err := s.openRecv(lc)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(pt), nil
}

// DecryptMessage opens a message ciphertext of the length previously
// announced by DecryptLength, plus its 16-byte tag.
func (s *State) DecryptMessage(c []byte) ([]byte, error) {
	return s.openRecv(c)
}

func (s *State) sealSend(pt []byte) ([]byte, error) {
	ct, err := aeadSeal(s.sk, counterNonce(s.sn), pt)
	if err != nil {
		return nil, err
	}
	s.sn++
	if s.sn == rotateInterval {
		if err := s.rotateSend(); err != nil {
			return nil, err
		}
	}
	return ct, nil
}

func (s *State) openRecv(ct []byte) ([]byte, error) {
	pt, err := aeadOpen(s.rk, counterNonce(s.rn), ct)
	if err != nil {
		return nil, err
	}
	s.rn++
	if s.rn == rotateInterval {
		if err := s.rotateRecv(); err != nil {
			return nil, err
		}
	}
	return pt, nil
}

// rotateSend and rotateRecv implement §4.6's key rotation: HKDF(ck,
// current_key) produces (ck', new_key); the corresponding key and ck are
// replaced, and the corresponding nonce counter resets to zero.
func (s *State) rotateSend() error {
	ck, newKey, err := hkdf64(s.ck[:], s.sk[:])
	if err != nil {
		return err
	}
	s.ck = ck
	s.sk = newKey
	s.sn = 0
	return nil
}

func (s *State) rotateRecv() error {
	ck, newKey, err := hkdf64(s.ck[:], s.rk[:])
	if err != nil {
		return err
	}
	s.ck = ck
	s.rk = newKey
	s.rn = 0
	return nil
}
