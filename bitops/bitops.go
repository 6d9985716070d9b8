// Package bitops provides the small set of bit-manipulation helpers shared
// by the art and robinhash packages: fixed-capacity presence bitmaps and
// machine-word scanning (find-first-set / find-first-unset). None of it is
// specific to any one engine; it exists so the node-layout and probing
// code in those packages doesn't each reinvent it.
package bitops

import "math/bits"

// Bitmap256 is a compact 256-bit presence map, stored as four 64-bit words
// (word 0 holds bits 0..63). It backs art's node256 child-presence index;
// node48 folds presence into its own byte -> slot indirection table
// instead, since a plain Bitmap256 can't also carry a slot number per bit.
type Bitmap256 [4]uint64

// Get reports whether bit b (0..255) is set.
func (p *Bitmap256) Get(b byte) bool {
	return p[b>>6]&(uint64(1)<<(b&0x3F)) != 0
}

// Set marks bit b (0..255).
func (p *Bitmap256) Set(b byte) {
	p[b>>6] |= uint64(1) << (b & 0x3F)
}

// Clear clears bit b (0..255).
func (p *Bitmap256) Clear(b byte) {
	p[b>>6] &^= uint64(1) << (b & 0x3F)
}

// Count returns the number of set bits.
func (p *Bitmap256) Count() int {
	n := 0
	for i := range p {
		n += bits.OnesCount64(p[i])
	}
	return n
}

// WordBitmap is a growable bitmap over [0, n) bits, stored as a slice of
// machine words. RobinHTable uses one instance per table generation to
// track which buckets are occupied.
type WordBitmap struct {
	words []uint64
	n     int
}

// NewWordBitmap allocates a bitmap capable of indexing n bits, all clear.
func NewWordBitmap(n int) WordBitmap {
	return WordBitmap{words: make([]uint64, (n+63)/64), n: n}
}

// Len returns the number of addressable bits.
func (w *WordBitmap) Len() int { return w.n }

// Get reports whether bit i is set.
func (w *WordBitmap) Get(i int) bool {
	return w.words[i>>6]&(uint64(1)<<uint(i&0x3F)) != 0
}

// Set marks bit i.
func (w *WordBitmap) Set(i int) {
	w.words[i>>6] |= uint64(1) << uint(i&0x3F)
}

// Clear clears bit i.
func (w *WordBitmap) Clear(i int) {
	w.words[i>>6] &^= uint64(1) << uint(i&0x3F)
}

// Count returns the total number of set bits.
func (w *WordBitmap) Count() int {
	c := 0
	for _, word := range w.words {
		c += bits.OnesCount64(word)
	}
	return c
}

// NextSet returns the index of the first set bit at or after i, and false
// if there is none. Used by IterateOccupied to find the start of the next
// occupied run.
func (w *WordBitmap) NextSet(i int) (int, bool) {
	return w.scan(i, true)
}

// NextClear returns the index of the first clear bit at or after i, and
// false if every bit in [i, n) is set (or i >= n).
// Used by IterateOccupied to find the end of the current occupied run.
func (w *WordBitmap) NextClear(i int) (int, bool) {
	return w.scan(i, false)
}

func (w *WordBitmap) scan(i int, wantSet bool) (int, bool) {
	for i < w.n {
		wi := i >> 6
		off := uint(i & 0x3F)
		word := w.words[wi]
		if !wantSet {
			word = ^word
		}
		word &^= (uint64(1) << off) - 1 // mask off bits below off
		if word != 0 {
			pos := wi*64 + bits.TrailingZeros64(word)
			if pos >= w.n {
				return 0, false
			}
			return pos, true
		}
		i = (wi + 1) * 64
	}
	return 0, false
}
