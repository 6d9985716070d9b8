package art

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestFromBytesCopies(t *testing.T) {
	src := []byte{1, 2, 3}
	k := FromBytes(src)
	src[0] = 9
	if bytes.Equal(k.Bytes(), src) {
		t.Fatalf("FromBytes did not copy input: got %v, want original unaffected %v", k.Bytes(), src)
	}
}

func TestFromBytesNilProducesEmpty(t *testing.T) {
	k := FromBytes(nil)
	if !k.IsEmpty() {
		t.Fatalf("FromBytes(nil) expected empty key")
	}
	if got := k.Bytes(); got == nil {
		t.Fatalf("FromBytes(nil) expected empty slice, got nil")
	}
}

func TestFromStringNormalization(t *testing.T) {
	precomposed := "ä"
	decomposed := "ä"
	p := FromString(precomposed)
	d := FromString(decomposed)
	if !bytes.Equal(p.Bytes(), d.Bytes()) {
		t.Fatalf("normalization mismatch: %v vs %v", p.Bytes(), d.Bytes())
	}
}

func TestIntBigEndianLayouts(t *testing.T) {
	const offset = uint64(1) << 63

	v32 := int32(0x01020304)
	k32 := FromInt32(v32)
	if len(k32) != 8 {
		t.Fatalf("FromInt32 should produce 8 bytes, got %d", len(k32))
	}
	got32 := int32(int64(binary.BigEndian.Uint64(k32.Bytes()) - offset))
	if got32 != v32 {
		t.Fatalf("round-trip int32 mismatch: got=%#x want=%#x", got32, v32)
	}

	v64 := int64(0x0102030405060708)
	k64 := FromInt64(v64)
	if len(k64) != 8 {
		t.Fatalf("FromInt64 should produce 8 bytes, got %d", len(k64))
	}
	got64 := int64(binary.BigEndian.Uint64(k64.Bytes()) - offset)
	if got64 != v64 {
		t.Fatalf("round-trip int64 mismatch: got=%#x want=%#x", got64, v64)
	}

	if !FromInt32(5).Equal(FromInt64(5)) {
		t.Fatalf("FromInt32 and FromInt64 should produce identical keys for same value")
	}
}

func TestUintBigEndianLayouts(t *testing.T) {
	const offset = uint64(1) << 63
	u16 := uint16(0xABCD)
	k16 := FromUint16(u16)
	if len(k16) != 8 {
		t.Fatalf("FromUint16 should produce 8 bytes, got %d", len(k16))
	}
	got16 := uint16(binary.BigEndian.Uint64(k16.Bytes()) - offset)
	if got16 != u16 {
		t.Fatalf("round-trip uint16 mismatch: got=%#x want=%#x", got16, u16)
	}

	u64 := uint64(0x0102030405060708)
	k64 := FromUint64(u64)
	if binary.BigEndian.Uint64(k64.Bytes()) != u64+offset {
		t.Fatalf("FromUint64 produced wrong encoding")
	}

	if !FromUint16(0x1234).Equal(FromUint64(0x1234)) {
		t.Fatalf("FromUint16 and FromUint64 should produce identical keys for same value")
	}
}

func TestFromRuneUTF8(t *testing.T) {
	r := '€'
	k := FromRune(r)
	if !bytes.Equal(k.Bytes(), []byte(string(r))) {
		t.Fatalf("FromRune produced wrong UTF-8: %v", k.Bytes())
	}
}

func TestStringFormatting(t *testing.T) {
	k := FromBytes([]byte{0x01, 0xAB, 0x00})
	if k.String() != "[01,AB,00]" {
		t.Fatalf("String() formatted incorrectly: %s", k.String())
	}
}

func TestEqualAndIsEmpty(t *testing.T) {
	a := FromBytes([]byte{1, 2, 3})
	b := FromBytes([]byte{1, 2, 3})
	c := FromBytes([]byte{1, 2})
	if !a.Equal(b) {
		t.Fatalf("Equal expected true for identical contents")
	}
	if a.Equal(c) {
		t.Fatalf("Equal expected false for different contents")
	}
	if !FromBytes(nil).IsEmpty() || !Key(nil).IsEmpty() {
		t.Fatalf("IsEmpty behavior unexpected")
	}
}

func TestCloneCreatesIndependentCopy(t *testing.T) {
	orig := FromBytes([]byte{1, 2, 3})
	clone := orig.Clone()
	if !orig.Equal(clone) {
		t.Fatalf("clone should be equal to original: orig=%v clone=%v", orig.Bytes(), clone.Bytes())
	}
	cloneBytes := clone.Bytes()
	cloneBytes[0] = 9
	if orig.Bytes()[0] == 9 {
		t.Fatalf("modifying clone affected original: orig=%v clone=%v", orig.Bytes(), cloneBytes)
	}

	var nk Key = nil
	if nk.Clone() != nil {
		t.Fatalf("Clone of nil Key expected nil")
	}
}

func TestLessThan(t *testing.T) {
	a := FromBytes([]byte{1, 2, 3})
	b := FromBytes([]byte{1, 2, 4})
	if !a.LessThan(b) {
		t.Fatalf("expected %v < %v", a.Bytes(), b.Bytes())
	}
	if b.LessThan(a) {
		t.Fatalf("expected %v not < %v", b.Bytes(), a.Bytes())
	}

	x := FromBytes([]byte{0x00})
	y := FromBytes([]byte{0xFF})
	if !x.LessThan(y) {
		t.Fatalf("expected %v < %v", x.Bytes(), y.Bytes())
	}

	p := FromBytes([]byte{1, 2})
	q := FromBytes([]byte{1, 2, 0})
	if !p.LessThan(q) {
		t.Fatalf("expected prefix %v < %v", p.Bytes(), q.Bytes())
	}

	if a.LessThan(a) {
		t.Fatalf("expected %v not < itself", a.Bytes())
	}

	var empty Key = nil
	non := FromBytes([]byte{0})
	if !empty.LessThan(non) {
		t.Fatalf("expected empty < non-empty")
	}
	if non.LessThan(empty) {
		t.Fatalf("expected non-empty not < empty")
	}
}

func TestSignedOrderingAcrossWidths(t *testing.T) {
	vals := []int64{-2, -1, 0, 1, 2}
	for i := 0; i < len(vals); i++ {
		for j := 0; j < len(vals); j++ {
			a := FromInt8(int8(vals[i]))
			b := FromInt64(vals[j])
			want := vals[i] < vals[j]
			if a.LessThan(b) != want {
				t.Fatalf("ordering mismatch: %d < %d expected %v", vals[i], vals[j], want)
			}
		}
	}
}

func TestInt64Uint64MixedOrdering(t *testing.T) {
	if !FromInt64(int64(0)).Equal(FromUint64(uint64(0))) {
		t.Fatalf("unsigned and signed int produced different keys for same numeric value")
	}
	if !FromInt64(int64(-1)).LessThan(FromUint64(uint64(0))) {
		t.Fatalf("unsigned and signed int not correctly ordered")
	}
}
