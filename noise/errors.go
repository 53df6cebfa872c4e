package noise

import "errors"

var (
	// ErrActReadFailed indicates a handshake act message had the wrong
	// length, or carried a public key that does not parse.
	ErrActReadFailed = errors.New("noise: handshake act message has wrong length")

	// ErrActBadVersion indicates a handshake act message's leading
	// version byte was not 0x00.
	ErrActBadVersion = errors.New("noise: handshake act version byte not zero")

	// ErrAeadFailure indicates AEAD authentication failed while
	// processing a handshake act. The handshake state must be discarded
	// when this occurs.
	ErrAeadFailure = errors.New("noise: AEAD authentication failed")
)
