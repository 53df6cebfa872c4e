// Package noise implements the BOLT-8 transport handshake: a three-act
// Noise_XK_secp256k1_ChaChaPoly_SHA256 mutual handshake that establishes
// the symmetric traffic keys consumed by package transport.
//
// The redesign this package follows splits the original single mutable
// handshake record into one type per lifecycle stage -- Initiator ->
// InitiatorAfterAct1 -> InitiatorAfterAct2 (and the Responder equivalents)
// -- so that calling an act out of order is a compile error rather than a
// runtime footgun. A stage value stays usable after it has produced the
// next stage; the types do not stop a caller from running the same act
// twice. Each stage owns only the fields still alive for the acts ahead of it.
package noise

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
)

const (
	protocolName = "Noise_XK_secp256k1_ChaChaPoly_SHA256"
	prologue     = "lightning"

	act1Size = 50
	act2Size = 50
	act3Size = 66

	versionByte = 0x00
)

// TransportKeys is the result of a completed handshake: the two directional
// traffic keys and the chaining key retained for later key rotation.
// Nonces always start at zero on both sides (§3, §4.5 step 7). This is the
// Ready state; transport is the only package allowed to consume it further.
type TransportKeys struct {
	SendKey  [32]byte
	RecvKey  [32]byte
	ChainKey [32]byte
}

func compress(pub *btcec.PublicKey) [33]byte {
	var out [33]byte
	copy(out[:], pub.SerializeCompressed())
	return out
}

// initSymmetricState runs the initialization shared by both roles:
// h := SHA256(protocol_name); ck := h; h := SHA256(h || prologue);
// h := SHA256(h || pubkeyPrologue). pubkeyPrologue is the remote static
// public key for an initiator and the local static public key for a
// responder (§4.5).
func initSymmetricState(pubkeyPrologue [33]byte) (h, ck [32]byte) {
	h = sha256.Sum256([]byte(protocolName))
	ck = h
	h = mixHash(h, []byte(prologue))
	h = mixHash(h, pubkeyPrologue[:])
	return h, ck
}

// --- Initiator ---

// Initiator is the handshake state before Act 1 has been generated.
type Initiator struct {
	ls *btcec.PrivateKey
	lp [33]byte
	es *btcec.PrivateKey
	ep [33]byte
	rs *btcec.PublicKey
	h  [32]byte
	ck [32]byte
}

// NewInitiator begins an initiator handshake. ls is the local static
// private key, es the local ephemeral private key (caller-supplied entropy
// per §5 -- this package never draws randomness internally), and rs the
// responder's static public key, known to the initiator a priori.
func NewInitiator(ls, es *btcec.PrivateKey, rs *btcec.PublicKey) *Initiator {
	rsBytes := compress(rs)
	h, ck := initSymmetricState(rsBytes)
	return &Initiator{
		ls: ls,
		lp: compress(ls.PubKey()),
		es: es,
		ep: compress(es.PubKey()),
		rs: rs,
		h:  h,
		ck: ck,
	}
}

// GenAct1 produces the 50-byte Act 1 message and the state needed to
// process Act 2.
func (in *Initiator) GenAct1() (msg [act1Size]byte, next *InitiatorAfterAct1, err error) {
	h := mixHash(in.h, in.ep[:])
	ss := ecdh(in.es, in.rs)
	ck, tempK1, err := hkdf64(in.ck[:], ss[:])
	if err != nil {
		return msg, nil, err
	}
	c, err := aeadEncrypt(tempK1, zeroNonce96, h[:], nil)
	if err != nil {
		return msg, nil, err
	}
	h = mixHash(h, c)

	msg[0] = versionByte
	copy(msg[1:34], in.ep[:])
	copy(msg[34:50], c)

	next = &InitiatorAfterAct1{ls: in.ls, lp: in.lp, es: in.es, h: h, ck: ck}
	return msg, next, nil
}

// InitiatorAfterAct1 is the handshake state after Act 1 has been sent,
// before Act 2 has been received.
type InitiatorAfterAct1 struct {
	ls *btcec.PrivateKey
	lp [33]byte
	es *btcec.PrivateKey
	h  [32]byte
	ck [32]byte
}

// ReceiveAct2 processes the responder's 50-byte Act 2 message.
func (a1 *InitiatorAfterAct1) ReceiveAct2(msg []byte) (*InitiatorAfterAct2, error) {
	if len(msg) != act2Size {
		return nil, ErrActReadFailed
	}
	if msg[0] != versionByte {
		return nil, ErrActBadVersion
	}
	reBytes := msg[1:34]
	c := msg[34:50]

	re, err := btcec.ParsePubKey(reBytes)
	if err != nil {
		return nil, ErrActReadFailed
	}

	h := mixHash(a1.h, reBytes)
	ss := ecdh(a1.es, re)
	ck, tempK2, err := hkdf64(a1.ck[:], ss[:])
	if err != nil {
		return nil, err
	}
	if _, err := aeadDecrypt(tempK2, zeroNonce96, h[:], c); err != nil {
		return nil, err
	}
	h = mixHash(h, c)

	return &InitiatorAfterAct2{ls: a1.ls, lp: a1.lp, re: re, h: h, ck: ck, tempK2: tempK2}, nil
}

// InitiatorAfterAct2 is the handshake state after Act 2 has been received,
// before Act 3 has been generated.
type InitiatorAfterAct2 struct {
	ls     *btcec.PrivateKey
	lp     [33]byte
	re     *btcec.PublicKey
	h      [32]byte
	ck     [32]byte
	tempK2 [32]byte
}

// GenAct3 produces the 66-byte Act 3 message and the resulting transport
// keys. Per the initiator's directional convention (§4.5 step 6, §9): the
// first 32 derived bytes are SendKey, the last 32 are RecvKey.
func (a2 *InitiatorAfterAct2) GenAct3() (msg [act3Size]byte, keys *TransportKeys, err error) {
	c, err := aeadEncrypt(a2.tempK2, counterNonce(1), a2.h[:], a2.lp[:])
	if err != nil {
		return msg, nil, err
	}
	h := mixHash(a2.h, c)

	ss := ecdh(a2.ls, a2.re)
	ck, tempK3, err := hkdf64(a2.ck[:], ss[:])
	if err != nil {
		return msg, nil, err
	}
	t, err := aeadEncrypt(tempK3, zeroNonce96, h[:], nil)
	if err != nil {
		return msg, nil, err
	}

	sk, rk, err := hkdf64(ck[:], nil)
	if err != nil {
		return msg, nil, err
	}

	msg[0] = versionByte
	copy(msg[1:50], c)
	copy(msg[50:66], t)

	return msg, &TransportKeys{SendKey: sk, RecvKey: rk, ChainKey: ck}, nil
}

// --- Responder ---

// Responder is the handshake state before Act 1 has been received.
type Responder struct {
	ls *btcec.PrivateKey
	es *btcec.PrivateKey
	ep [33]byte
	h  [32]byte
	ck [32]byte
}

// NewResponder begins a responder handshake. ls is the local static
// private key and es the local ephemeral private key (caller-supplied).
// The responder does not know the initiator's static key a priori; it is
// learned in Act 3.
func NewResponder(ls, es *btcec.PrivateKey) *Responder {
	h, ck := initSymmetricState(compress(ls.PubKey()))
	return &Responder{
		ls: ls,
		es: es,
		ep: compress(es.PubKey()),
		h:  h,
		ck: ck,
	}
}

// ReceiveAct1 processes the initiator's 50-byte Act 1 message.
func (r *Responder) ReceiveAct1(msg []byte) (*ResponderAfterAct1, error) {
	if len(msg) != act1Size {
		return nil, ErrActReadFailed
	}
	if msg[0] != versionByte {
		return nil, ErrActBadVersion
	}
	reBytes := msg[1:34]
	c := msg[34:50]

	re, err := btcec.ParsePubKey(reBytes)
	if err != nil {
		return nil, ErrActReadFailed
	}

	h := mixHash(r.h, reBytes)
	ss := ecdh(r.ls, re)
	ck, tempK1, err := hkdf64(r.ck[:], ss[:])
	if err != nil {
		return nil, err
	}
	if _, err := aeadDecrypt(tempK1, zeroNonce96, h[:], c); err != nil {
		return nil, err
	}
	h = mixHash(h, c)

	return &ResponderAfterAct1{es: r.es, ep: r.ep, re: re, h: h, ck: ck}, nil
}

// ResponderAfterAct1 is the handshake state after Act 1 has been received,
// before Act 2 has been generated.
type ResponderAfterAct1 struct {
	es *btcec.PrivateKey
	ep [33]byte
	re *btcec.PublicKey
	h  [32]byte
	ck [32]byte
}

// GenAct2 produces the 50-byte Act 2 message and the state needed to
// process Act 3.
func (a1 *ResponderAfterAct1) GenAct2() (msg [act2Size]byte, next *ResponderAfterAct2, err error) {
	h := mixHash(a1.h, a1.ep[:])
	ss := ecdh(a1.es, a1.re)
	ck, tempK2, err := hkdf64(a1.ck[:], ss[:])
	if err != nil {
		return msg, nil, err
	}
	c, err := aeadEncrypt(tempK2, zeroNonce96, h[:], nil)
	if err != nil {
		return msg, nil, err
	}
	h = mixHash(h, c)

	msg[0] = versionByte
	copy(msg[1:34], a1.ep[:])
	copy(msg[34:50], c)

	next = &ResponderAfterAct2{es: a1.es, h: h, ck: ck, tempK2: tempK2}
	return msg, next, nil
}

// ResponderAfterAct2 is the handshake state after Act 2 has been sent,
// before Act 3 has been received.
type ResponderAfterAct2 struct {
	es     *btcec.PrivateKey
	h      [32]byte
	ck     [32]byte
	tempK2 [32]byte
}

// ReceiveAct3 processes the initiator's 66-byte Act 3 message and produces
// the resulting transport keys. Per the responder's directional convention
// (§4.5, §9 -- intentionally asymmetric relative to the initiator): the
// first 32 derived bytes are RecvKey, the last 32 are SendKey.
func (a2 *ResponderAfterAct2) ReceiveAct3(msg []byte) (*TransportKeys, error) {
	if len(msg) != act3Size {
		return nil, ErrActReadFailed
	}
	if msg[0] != versionByte {
		return nil, ErrActBadVersion
	}
	c := msg[1:50]
	t := msg[50:66]

	rsBytes, err := aeadDecrypt(a2.tempK2, counterNonce(1), a2.h[:], c)
	if err != nil {
		return nil, err
	}
	rs, err := btcec.ParsePubKey(rsBytes)
	if err != nil {
		return nil, ErrActReadFailed
	}
	h := mixHash(a2.h, c)

	ss := ecdh(a2.es, rs)
	ck, tempK3, err := hkdf64(a2.ck[:], ss[:])
	if err != nil {
		return nil, err
	}
	if _, err := aeadDecrypt(tempK3, zeroNonce96, h[:], t); err != nil {
		return nil, err
	}

	rk, sk, err := hkdf64(ck[:], nil)
	if err != nil {
		return nil, err
	}

	return &TransportKeys{SendKey: sk, RecvKey: rk, ChainKey: ck}, nil
}
