package invoice

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/require"

	"github.com/gijswijs/lntools/bitstream"
)

func testPrivKey(t *testing.T) *btcec.PrivateKey {
	t.Helper()
	var seed [32]byte
	seed[31] = 1
	priv, _ := btcec.PrivKeyFromBytes(seed[:])
	return priv
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	priv := testPrivKey(t)

	var hash [32]byte
	hash[0] = 0xaa

	amt := uint64(2_500_000_000)
	inv := &Invoice{
		Network:    "bc",
		AmountPico: &amt,
		Timestamp:  1_600_000_000,
		Fields: []Field{
			PaymentHashField{Hash: hash},
			ExpiryField{Seconds: 7200},
			ShortDescField{Description: "coffee"},
		},
	}

	s, err := Encode(inv, priv)
	require.NoError(t, err)
	require.NotEmpty(t, s)

	got, err := Decode(s)
	require.NoError(t, err)

	require.Equal(t, inv.Network, got.Network)
	require.Equal(t, *inv.AmountPico, *got.AmountPico)
	require.Equal(t, inv.Timestamp, got.Timestamp)
	require.Equal(t, inv.Fields, got.Fields)
	require.Empty(t, got.UnknownFields)

	// §8: recovery was used (no payee_node field present).
	require.True(t, got.UsedSigRecovery)

	pub, err := pubKeyFromCompressed(got.PubKey)
	require.NoError(t, err)
	require.True(t, pub.IsOnCurve())
}

func TestDecodeWithPayeeNodeSkipsRecovery(t *testing.T) {
	priv := testPrivKey(t)
	pub := priv.PubKey()
	var pubBytes [33]byte
	copy(pubBytes[:], pub.SerializeCompressed())

	inv := &Invoice{
		Network:   "tb",
		Timestamp: 42,
		Fields: []Field{
			PayeeNodeField{PubKey: pubBytes},
		},
	}

	s, err := Encode(inv, priv)
	require.NoError(t, err)

	got, err := Decode(s)
	require.NoError(t, err)
	require.False(t, got.UsedSigRecovery)
	require.Equal(t, pubBytes, got.PubKey)
}

func TestDefaultsWhenFieldsAbsent(t *testing.T) {
	inv := &Invoice{Network: "bc", Timestamp: 1}
	require.Equal(t, uint64(DefaultExpirySeconds), inv.Expiry())
	require.Equal(t, uint64(DefaultMinFinalCLTVExpiry), inv.MinFinalCLTVExpiry())
}

func TestUnknownFieldFromBadLength(t *testing.T) {
	// Scenario 3 from §8: a payment_hash field with len=53 instead of 52
	// is routed to UnknownFields instead of being parsed as typed.
	priv := testPrivKey(t)
	inv := &Invoice{Network: "bc", Timestamp: 1}
	s, err := Encode(inv, priv)
	require.NoError(t, err)

	hrp, words, err := bech32.DecodeNoLimit(s)
	require.NoError(t, err)

	// Splice a malformed payment_hash (53 words instead of 52) into the
	// word stream just before the signature tail.
	cur := bitstream.NewReader(words)
	timestamp, err := cur.ReadUintBE(7)
	require.NoError(t, err)
	sigTail, err := cur.ReadWords(cur.WordsRemaining())
	require.NoError(t, err)

	w := bitstream.NewWriter()
	require.NoError(t, w.WriteUintBE(timestamp, 7))
	require.NoError(t, w.WriteUintBE(uint64(FieldTypePaymentHash), 1))
	require.NoError(t, w.WriteUintBE(53, 2))
	require.NoError(t, w.WriteWords(make([]byte, 53)))
	require.NoError(t, w.WriteWords(sigTail))

	// Re-sign over the new body so the spliced invoice still verifies.
	resigned, err := reencodeWithFreshSignature(t, hrp, w.Words(), priv)
	require.NoError(t, err)

	got, err := Decode(resigned)
	require.NoError(t, err)
	require.Empty(t, got.Fields)
	require.Len(t, got.UnknownFields, 1)
	require.Equal(t, FieldTypePaymentHash, got.UnknownFields[0].RawType)
	require.Equal(t, 53, len(got.UnknownFields[0].Words))
}

// reencodeWithFreshSignature re-signs a hand-built word stream (timestamp +
// fields, followed by a placeholder 104-word signature tail that is dropped
// and replaced) so tests can splice malformed field bytes and still produce
// a verifiable invoice.
func reencodeWithFreshSignature(t *testing.T, hrp string, wordsWithDummySig []byte, priv *btcec.PrivateKey) (string, error) {
	t.Helper()
	bodyWords := wordsWithDummySig[:len(wordsWithDummySig)-sigWords]

	bodyCur := bitstream.NewReader(bodyWords)
	bodyBytes, err := bodyCur.ReadBytes(len(bodyWords), true)
	require.NoError(t, err)

	preimage := append([]byte(hrp), bodyBytes...)
	sum := sha256.Sum256(preimage)

	rs, recoveryFlag, err := signRecoverable(priv, sum[:])
	require.NoError(t, err)

	w := bitstream.NewWriter()
	require.NoError(t, w.WriteWords(bodyWords))
	require.NoError(t, w.WriteBytes(rs[:], true))
	require.NoError(t, w.WriteUintBE(uint64(recoveryFlag), 1))

	return bech32.Encode(hrp, w.Words())
}

func TestRouteFieldRoundTrip(t *testing.T) {
	// Scenario 4 from §8: a two-hop route round-trips bit-identically.
	priv := testPrivKey(t)
	var pk1, pk2 [33]byte
	pk1[0] = 0x02
	pk2[0] = 0x03
	for i := 1; i < 33; i++ {
		pk1[i] = byte(i)
		pk2[i] = byte(64 - i)
	}

	route := RouteField{Hops: []RouteHint{
		{PubKey: pk1, ShortChannelID: 12345, FeeBaseMsat: 1000, FeeProportionalMillionths: 10, CLTVExpiryDelta: 144},
		{PubKey: pk2, ShortChannelID: 67890, FeeBaseMsat: 2000, FeeProportionalMillionths: 20, CLTVExpiryDelta: 288},
	}}

	inv := &Invoice{Network: "bc", Timestamp: 5, Fields: []Field{route}}
	s, err := Encode(inv, priv)
	require.NoError(t, err)

	got, err := Decode(s)
	require.NoError(t, err)
	require.Len(t, got.Fields, 1)
	gotRoute, ok := got.Fields[0].(RouteField)
	require.True(t, ok)
	require.Equal(t, route.Hops, gotRoute.Hops)

	// Declared word length must be ceil(2*408/5) = 164 words.
	words, err := encodeFieldValue(route)
	require.NoError(t, err)
	require.Equal(t, 164, len(words))
}

func TestDecodeBadSignatureFails(t *testing.T) {
	// Scenario 1 from §8: minimal timestamp + all-zero signature tail
	// fails verification.
	w := bitstream.NewWriter()
	require.NoError(t, w.WriteUintBE(0, 7))
	require.NoError(t, w.WriteWords(make([]byte, 103)))
	require.NoError(t, w.WriteUintBE(0, 1))

	s, err := bech32.Encode("lnbc", w.Words())
	require.NoError(t, err)

	_, err = Decode(s)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestDecodeTruncatedPayload(t *testing.T) {
	w := bitstream.NewWriter()
	require.NoError(t, w.WriteUintBE(0, 7))
	// Fewer than 104 trailing words.
	require.NoError(t, w.WriteWords(make([]byte, 50)))
	s, err := bech32.Encode("lnbc", w.Words())
	require.NoError(t, err)

	_, err = Decode(s)
	require.ErrorIs(t, err, ErrTruncatedPayload)
}

func TestUnknownFieldTypeSurvivesRoundTrip(t *testing.T) {
	priv := testPrivKey(t)
	inv := &Invoice{
		Network:   "bc",
		Timestamp: 99,
		UnknownFields: []UnknownField{
			{RawType: FieldType(31), Words: []byte{1, 2, 3, 4, 5}},
		},
	}
	s, err := Encode(inv, priv)
	require.NoError(t, err)

	got, err := Decode(s)
	require.NoError(t, err)
	require.Len(t, got.UnknownFields, 1)
	require.Equal(t, FieldType(31), got.UnknownFields[0].RawType)
	require.True(t, bytes.Equal([]byte{1, 2, 3, 4, 5}, got.UnknownFields[0].Words))
}
