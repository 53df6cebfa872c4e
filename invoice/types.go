// Package invoice implements the BOLT-11 payment-invoice codec: a
// bech32-framed, typed-field record carrying an amount, timestamp, routing
// hints, descriptions, a fallback on-chain address, and a secp256k1 ECDSA
// signature with recovery flag over the field stream.
//
// The typed/untyped boundary from the wire format is made explicit in the
// type system: Invoice.Fields holds entries the decoder understood,
// Invoice.UnknownFields holds everything else (unrecognized type, or a
// known type whose length or sub-variant was invalid). Re-encoding an
// invoice never has to guess which bucket an entry came from.
package invoice

// FieldType is the 5-bit type tag of a field entry.
type FieldType byte

const (
	FieldTypePaymentHash         FieldType = 1
	FieldTypeRoute               FieldType = 3
	FieldTypeExpiry              FieldType = 6
	FieldTypeFallbackAddress     FieldType = 9
	FieldTypeShortDesc           FieldType = 13
	FieldTypePayeeNode           FieldType = 19
	FieldTypeHashDesc            FieldType = 23
	FieldTypeMinFinalCLTVExpiry  FieldType = 24
	fieldTypePadding             FieldType = 0
)

// Field is a typed field entry. Each concrete type below corresponds to
// exactly one FieldType, enforced at compile time by the Type method.
type Field interface {
	// Type returns the wire type tag for this field.
	Type() FieldType
}

// PaymentHashField carries the 32-byte payment hash (type 1).
type PaymentHashField struct {
	Hash [32]byte
}

func (PaymentHashField) Type() FieldType { return FieldTypePaymentHash }

// RouteHint is one hop of a route field's hint path.
type RouteHint struct {
	PubKey                    [33]byte
	ShortChannelID            uint64
	FeeBaseMsat               uint32
	FeeProportionalMillionths uint32
	CLTVExpiryDelta           uint16
}

// RouteField carries an ordered routing-hint path (type 3).
type RouteField struct {
	Hops []RouteHint
}

func (RouteField) Type() FieldType { return FieldTypeRoute }

// ExpiryField carries the invoice expiry in seconds (type 6). Absent from
// the wire, the default per §6 is 3600; see DefaultExpirySeconds.
type ExpiryField struct {
	Seconds uint64
}

func (ExpiryField) Type() FieldType { return FieldTypeExpiry }

// Recognized fallback_address version tags (§3, §6).
const (
	FallbackVersionSegwit byte = 0
	FallbackVersionP2PKH  byte = 17
	FallbackVersionP2SH   byte = 18
)

// FallbackAddressField carries a version-tagged on-chain fallback address
// (type 9). Only the three version tags above are recognized; the spec's
// Non-goals exclude deeper on-chain address verification than that.
type FallbackAddressField struct {
	Version byte
	Address []byte
}

func (FallbackAddressField) Type() FieldType { return FieldTypeFallbackAddress }

// ShortDescField carries a short UTF-8 description (type 13).
type ShortDescField struct {
	Description string
}

func (ShortDescField) Type() FieldType { return FieldTypeShortDesc }

// PayeeNodeField carries an explicit 33-byte compressed payee pubkey (type
// 19). When present, it is used directly as Invoice.PubKey instead of
// recovering the key from the signature.
type PayeeNodeField struct {
	PubKey [33]byte
}

func (PayeeNodeField) Type() FieldType { return FieldTypePayeeNode }

// HashDescField carries a 32-byte hash of a long-form description (type
// 23).
type HashDescField struct {
	Hash [32]byte
}

func (HashDescField) Type() FieldType { return FieldTypeHashDesc }

// MinFinalCLTVExpiryField carries the minimum final CLTV expiry delta, in
// blocks (type 24). Absent from the wire, the default per §6 is 9; see
// DefaultMinFinalCLTVExpiry.
type MinFinalCLTVExpiryField struct {
	Blocks uint64
}

func (MinFinalCLTVExpiryField) Type() FieldType { return FieldTypeMinFinalCLTVExpiry }

// Defaults applied by callers when the corresponding field is absent;
// Decode never synthesizes these fields itself (§3, §6, §8).
const (
	DefaultExpirySeconds      = 3600
	DefaultMinFinalCLTVExpiry = 9
)

// UnknownField preserves an entry the decoder saw but did not interpret:
// either an unrecognized type tag, or a known type whose declared length
// or sub-variant was invalid. Words holds the raw 5-bit words of the
// field's value section exactly as they appeared on the wire, so
// re-encoding reproduces the original bytes bit-for-bit regardless of
// whether the value happens to convert cleanly to a byte boundary.
type UnknownField struct {
	RawType FieldType
	Words   []byte
}

// Signature is the secp256k1 ECDSA signature over Invoice.HashData, with
// the recovery flag that lets a verifier recover Invoice.PubKey when no
// explicit payee_node field is present.
type Signature struct {
	R            [32]byte
	S            [32]byte
	RecoveryFlag byte
}

// Invoice is a decoded (or to-be-encoded) BOLT-11 payment request.
type Invoice struct {
	// Network is one of "bc", "tb", "bcrt", "sb".
	Network string

	// AmountPico is the requested amount in pico-units (10^-12 of the
	// base asset). Nil means "unspecified"; when non-nil it is always
	// strictly positive.
	AmountPico *uint64

	// Timestamp is seconds since a fixed epoch, as an unsigned 35-bit
	// integer.
	Timestamp uint64

	// Fields holds the typed entries in wire order.
	Fields []Field

	// UnknownFields holds entries the decoder saw but did not
	// interpret, in wire order among themselves.
	UnknownFields []UnknownField

	Signature       Signature
	PubKey          [33]byte
	HashData        [32]byte
	UsedSigRecovery bool
}

// Expiry returns the invoice's expiry in seconds: the value of its
// ExpiryField if present, otherwise DefaultExpirySeconds.
func (inv *Invoice) Expiry() uint64 {
	for _, f := range inv.Fields {
		if e, ok := f.(ExpiryField); ok {
			return e.Seconds
		}
	}
	return DefaultExpirySeconds
}

// MinFinalCLTVExpiry returns the invoice's minimum final CLTV expiry delta
// in blocks: the value of its MinFinalCLTVExpiryField if present, otherwise
// DefaultMinFinalCLTVExpiry.
func (inv *Invoice) MinFinalCLTVExpiry() uint64 {
	for _, f := range inv.Fields {
		if m, ok := f.(MinFinalCLTVExpiryField); ok {
			return m.Blocks
		}
	}
	return DefaultMinFinalCLTVExpiry
}
