package art

import (
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Key is a byte-string key for Tree: a thin []byte wrapper with
// constructors that keep
// lexicographic byte order consistent with numeric/string order, which
// Tree relies on for its iteration guarantee.
//
// Integer encoding policy
// -----------------------
// Every integer constructor produces an 8-byte big-endian representation
// and adds an offset of 1<<63 before encoding, so that lexicographic
// comparison of Keys matches numeric ordering of the original values
// (taking signedness into account) and Keys built from different integer
// widths for the same numeric value compare equal. Unsigned values of
// 1<<63 and above do not fit this shared encoding: they wrap around onto
// the keys of the negative int64 values (FromUint64(1<<63) equals
// FromInt64(math.MinInt64)) and sort below every non-negative value.
type Key []byte

const int64Offset = uint64(1) << 63

// FromBytes returns a copy of b as a Key. A nil b produces an empty
// (zero-length, non-nil) Key.
func FromBytes(b []byte) Key {
	if b == nil {
		return []byte{}
	}
	kb := make([]byte, len(b))
	copy(kb, b)
	return Key(kb)
}

// FromString returns a Key built from s after normalizing it to Unicode
// NFC, so that keys built from strings that differ only by normalization
// form compare equal.
func FromString(s string) Key {
	return FromBytes([]byte(norm.NFC.String(s)))
}

func putOffsetInt64(u uint64) Key {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], u+int64Offset)
	return FromBytes(b[:])
}

// FromInt converts an int to an order-preserving 8-byte Key.
func FromInt(i int) Key { return putOffsetInt64(uint64(int64(i))) }

// FromInt64 converts an int64 to an order-preserving 8-byte Key.
func FromInt64(i int64) Key { return putOffsetInt64(uint64(i)) }

// FromInt32 converts an int32 to an order-preserving 8-byte Key.
func FromInt32(i int32) Key { return putOffsetInt64(uint64(int64(i))) }

// FromInt16 converts an int16 to an order-preserving 8-byte Key.
func FromInt16(i int16) Key { return putOffsetInt64(uint64(int64(i))) }

// FromInt8 converts an int8 to an order-preserving 8-byte Key.
func FromInt8(i int8) Key { return putOffsetInt64(uint64(int64(i))) }

// FromUint converts a uint to an order-preserving 8-byte Key.
func FromUint(u uint) Key { return putOffsetInt64(uint64(u)) }

// FromUint64 converts a uint64 to an order-preserving 8-byte Key.
func FromUint64(u uint64) Key { return putOffsetInt64(u) }

// FromUint32 converts a uint32 to an order-preserving 8-byte Key.
func FromUint32(u uint32) Key { return putOffsetInt64(uint64(u)) }

// FromUint16 converts a uint16 to an order-preserving 8-byte Key.
func FromUint16(u uint16) Key { return putOffsetInt64(uint64(u)) }

// FromUint8 converts a uint8 to an order-preserving 8-byte Key.
func FromUint8(u uint8) Key { return putOffsetInt64(uint64(u)) }

// FromByte is an alias for FromUint8.
func FromByte(b byte) Key { return FromUint8(b) }

// FromRune returns a Key holding the UTF-8 encoding of r.
func FromRune(r rune) Key {
	var buf [4]byte
	n := utf8.EncodeRune(buf[:], r)
	return FromBytes(buf[:n])
}

// Bytes returns a copy of the Key as a byte slice.
func (k Key) Bytes() []byte {
	if k == nil {
		return nil
	}
	b := make([]byte, len(k))
	copy(b, k)
	return b
}

// Clone returns an independent copy of k. Clone returns nil for a nil k.
func (k Key) Clone() Key {
	if k == nil {
		return nil
	}
	return FromBytes(k)
}

// Equal reports whether k and other hold the same bytes.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// LessThan reports whether k sorts strictly before other in the same
// lexicographic order Tree uses for iteration.
func (k Key) LessThan(other Key) bool {
	n := len(k)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if k[i] != other[i] {
			return k[i] < other[i]
		}
	}
	return len(k) < len(other)
}

// IsEmpty reports whether k has zero length.
func (k Key) IsEmpty() bool { return len(k) == 0 }

// String renders the Key as uppercase hex byte tuples, e.g. "[01,AB,00]".
func (k Key) String() string {
	if len(k) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	const hex = "0123456789ABCDEF"
	for i, b := range k {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte(hex[b>>4])
		sb.WriteByte(hex[b&0x0F])
	}
	sb.WriteByte(']')
	return sb.String()
}
