package transport

import "errors"

var (
	// ErrAeadFailure indicates AEAD authentication failed while decrypting
	// a frame. The connection must be torn down when this occurs.
	ErrAeadFailure = errors.New("transport: AEAD authentication failed")

	// ErrMessageTooLarge indicates a plaintext message exceeds the 16-bit
	// length prefix's range.
	ErrMessageTooLarge = errors.New("transport: message exceeds 65535 bytes")

	// ErrLengthCiphertextSize indicates decrypt_length was not given
	// exactly 18 bytes (2-byte length + 16-byte tag).
	ErrLengthCiphertextSize = errors.New("transport: length ciphertext must be 18 bytes")
)
