package invoice

import "errors"

var (
	// ErrMalformedPrefix indicates the HRP does not start with "ln", or
	// contains an unexpected character, or has an empty digit run
	// preceding a multiplier letter.
	ErrMalformedPrefix = errors.New("invoice: malformed prefix")

	// ErrUnknownNetwork indicates the network tag is not one of
	// bc/tb/bcrt/sb.
	ErrUnknownNetwork = errors.New("invoice: unknown network")

	// ErrInvalidAmount indicates the amount is present and non-positive,
	// or its multiplier letter is not recognized.
	ErrInvalidAmount = errors.New("invoice: invalid amount")

	// ErrTruncatedPayload indicates the cursor was asked to read past
	// the end of the data section, that fewer than 104 trailing words
	// remained before the signature, or that a route's value length was
	// not a whole number of hops.
	ErrTruncatedPayload = errors.New("invoice: truncated payload")

	// ErrBadChecksum is surfaced from the bech32 layer.
	ErrBadChecksum = errors.New("invoice: bad bech32 checksum")

	// ErrSignatureInvalid indicates ECDSA verification failed, or the
	// decoded recovery flag was outside 0..=3.
	ErrSignatureInvalid = errors.New("invoice: signature invalid")
)
