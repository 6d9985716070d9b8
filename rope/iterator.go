package rope

import (
	"unicode/utf8"

	"github.com/arborio/containers/btree"
	"github.com/rivo/uniseg"
)

// CharIterator walks a Rope's grapheme clusters in order. It is
// invalidated by further mutation of the Rope it was created from.
type CharIterator struct {
	cur   *btree.Cursor[chunk]
	buf   []byte
	state int
}

// IterChars returns an iterator over the rope's grapheme clusters.
func (r *Rope) IterChars() *CharIterator {
	return &CharIterator{cur: btree.NewCursor(r.root), state: -1}
}

// Next returns the next grapheme cluster, or ok == false once exhausted. A
// cluster split across a chunk boundary is reassembled by pulling chunks
// ahead as needed, the same forward-only resync uniseg itself recommends
// for text arriving in pieces.
func (it *CharIterator) Next() (string, bool) {
	for len(it.buf) == 0 {
		c, ok := it.cur.Next()
		if !ok {
			return "", false
		}
		it.buf = c.data
	}
	for {
		cluster, rest, _, newState := uniseg.FirstGraphemeCluster(it.buf, it.state)
		if len(rest) > 0 {
			it.buf = rest
			it.state = newState
			return string(cluster), true
		}
		next, ok := it.cur.Next()
		if !ok {
			it.buf = nil
			it.state = -1
			return string(cluster), true
		}
		it.buf = append(append([]byte(nil), cluster...), next.data...)
	}
}

// ScalarIterator walks a Rope's Unicode scalar values in order.
type ScalarIterator struct {
	cur *btree.Cursor[chunk]
	buf []byte
}

// IterScalars returns an iterator over the rope's Unicode scalar values.
// Chunk boundaries are always scalar-aligned, so unlike CharIterator this
// never needs to look ahead across chunks.
func (r *Rope) IterScalars() *ScalarIterator {
	return &ScalarIterator{cur: btree.NewCursor(r.root)}
}

func (it *ScalarIterator) Next() (rune, bool) {
	for len(it.buf) == 0 {
		c, ok := it.cur.Next()
		if !ok {
			return 0, false
		}
		it.buf = c.data
	}
	r, size := utf8.DecodeRune(it.buf)
	it.buf = it.buf[size:]
	return r, true
}

// UTF16Iterator walks a Rope's UTF-16 code units in order.
type UTF16Iterator struct {
	cur   *btree.Cursor[chunk]
	buf   []byte
	units []uint16
}

// IterUTF16 returns an iterator over the rope's UTF-16 code units.
func (r *Rope) IterUTF16() *UTF16Iterator {
	return &UTF16Iterator{cur: btree.NewCursor(r.root)}
}

func (it *UTF16Iterator) Next() (uint16, bool) {
	for len(it.units) == 0 {
		for len(it.buf) == 0 {
			c, ok := it.cur.Next()
			if !ok {
				return 0, false
			}
			it.buf = c.data
		}
		r, size := utf8.DecodeRune(it.buf)
		it.buf = it.buf[size:]
		it.units = utf16Units(r)
	}
	u := it.units[0]
	it.units = it.units[1:]
	return u, true
}
