package invoice

import (
	"github.com/gijswijs/lntools/bitstream"
)

// routeHopBytes is the packed byte size of one route hop: 33-byte pubkey +
// 8-byte short_channel_id + 4-byte fee_base + 4-byte fee_proportional +
// 2-byte cltv_delta = 51 bytes (408 bits).
const routeHopBytes = 33 + 8 + 4 + 4 + 2

// decodeFieldValue interprets rawWords (the field's declared-length value
// section, already isolated from the stream) according to typ. ok is false
// when typ is unrecognized or the known type's length/sub-variant is
// invalid, in which case the caller stores rawWords into UnknownFields
// instead of field.
func decodeFieldValue(typ FieldType, rawWords []byte) (field Field, ok bool, err error) {
	sub := bitstream.NewReader(rawWords)
	length := len(rawWords)

	switch typ {
	case FieldTypePaymentHash:
		if length != 52 {
			return nil, false, nil
		}
		b, err := sub.ReadBytes(length, false)
		if err != nil {
			return nil, false, err
		}
		var hash [32]byte
		copy(hash[:], b)
		return PaymentHashField{Hash: hash}, true, nil

	case FieldTypeHashDesc:
		if length != 52 {
			return nil, false, nil
		}
		b, err := sub.ReadBytes(length, false)
		if err != nil {
			return nil, false, err
		}
		var hash [32]byte
		copy(hash[:], b)
		return HashDescField{Hash: hash}, true, nil

	case FieldTypePayeeNode:
		if length != 53 {
			return nil, false, nil
		}
		b, err := sub.ReadBytes(length, false)
		if err != nil {
			return nil, false, err
		}
		var pub [33]byte
		copy(pub[:], b)
		return PayeeNodeField{PubKey: pub}, true, nil

	case FieldTypeExpiry:
		v, err := sub.ReadUintBE(length)
		if err != nil {
			return nil, false, err
		}
		return ExpiryField{Seconds: v}, true, nil

	case FieldTypeMinFinalCLTVExpiry:
		v, err := sub.ReadUintBE(length)
		if err != nil {
			return nil, false, err
		}
		return MinFinalCLTVExpiryField{Blocks: v}, true, nil

	case FieldTypeShortDesc:
		b, err := sub.ReadBytes(length, false)
		if err != nil {
			return nil, false, err
		}
		return ShortDescField{Description: string(b)}, true, nil

	case FieldTypeFallbackAddress:
		if length < 1 {
			return nil, false, nil
		}
		version, err := sub.ReadUintBE(1)
		if err != nil {
			return nil, false, err
		}
		addr, err := sub.ReadBytes(length-1, false)
		if err != nil {
			return nil, false, err
		}
		switch byte(version) {
		case FallbackVersionSegwit, FallbackVersionP2PKH, FallbackVersionP2SH:
			return FallbackAddressField{Version: byte(version), Address: addr}, true, nil
		default:
			return nil, false, nil
		}

	case FieldTypeRoute:
		body, err := sub.ReadBytes(length, false)
		if err != nil {
			return nil, false, err
		}
		if len(body)%routeHopBytes != 0 {
			return nil, false, ErrTruncatedPayload
		}
		hops := make([]RouteHint, 0, len(body)/routeHopBytes)
		for off := 0; off < len(body); off += routeHopBytes {
			hop := body[off : off+routeHopBytes]
			var hint RouteHint
			copy(hint.PubKey[:], hop[0:33])
			hint.ShortChannelID = beUint64(hop[33:41])
			hint.FeeBaseMsat = beUint32(hop[41:45])
			hint.FeeProportionalMillionths = beUint32(hop[45:49])
			hint.CLTVExpiryDelta = beUint16(hop[49:51])
			hops = append(hops, hint)
		}
		return RouteField{Hops: hops}, true, nil

	default:
		return nil, false, nil
	}
}

// encodeFieldValue writes field's body (without the type/length prefix)
// onto a fresh writer and returns the words that make up its value
// section, to be prefixed by the caller with the type word and the 2-word
// length-in-words.
func encodeFieldValue(f Field) (words []byte, err error) {
	w := bitstream.NewWriter()
	switch v := f.(type) {
	case PaymentHashField:
		if err := w.WriteBytes(v.Hash[:], true); err != nil {
			return nil, err
		}
	case HashDescField:
		if err := w.WriteBytes(v.Hash[:], true); err != nil {
			return nil, err
		}
	case PayeeNodeField:
		if err := w.WriteBytes(v.PubKey[:], true); err != nil {
			return nil, err
		}
	case ExpiryField:
		n := bitstream.WordCountForUint(v.Seconds)
		if n > 0 {
			if err := w.WriteUintBE(v.Seconds, n); err != nil {
				return nil, err
			}
		}
	case MinFinalCLTVExpiryField:
		n := bitstream.WordCountForUint(v.Blocks)
		if n > 0 {
			if err := w.WriteUintBE(v.Blocks, n); err != nil {
				return nil, err
			}
		}
	case ShortDescField:
		if err := w.WriteBytes([]byte(v.Description), true); err != nil {
			return nil, err
		}
	case FallbackAddressField:
		if err := w.WriteUintBE(uint64(v.Version), 1); err != nil {
			return nil, err
		}
		if err := w.WriteBytes(v.Address, true); err != nil {
			return nil, err
		}
	case RouteField:
		body := make([]byte, 0, len(v.Hops)*routeHopBytes)
		for _, hop := range v.Hops {
			var buf [routeHopBytes]byte
			copy(buf[0:33], hop.PubKey[:])
			putBE(buf[33:41], hop.ShortChannelID)
			putBE32(buf[41:45], hop.FeeBaseMsat)
			putBE32(buf[45:49], hop.FeeProportionalMillionths)
			putBE16(buf[49:51], hop.CLTVExpiryDelta)
			body = append(body, buf[:]...)
		}
		if err := w.WriteBytes(body, true); err != nil {
			return nil, err
		}
	}
	return w.Words(), nil
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = (v << 8) | uint64(c)
	}
	return v
}

func beUint32(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = (v << 8) | uint32(c)
	}
	return v
}

func beUint16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func putBE(b []byte, v uint64) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

func putBE32(b []byte, v uint32) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

func putBE16(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

