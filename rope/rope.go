package rope

import (
	"bytes"
	"strings"

	"github.com/arborio/containers/btree"
	"golang.org/x/text/unicode/norm"
)

// Rope is a large mutable text value backed by a copy-on-write B-tree of
// chunks. The zero Rope is not usable; construct with New or FromString.
type Rope struct {
	root *btree.Node[chunk]
}

// New returns an empty Rope.
func New() *Rope {
	return &Rope{root: btree.NewLeaf[chunk]()}
}

// FromString returns a Rope holding s verbatim, with no normalization.
func FromString(s string) *Rope {
	if s == "" {
		return New()
	}
	return &Rope{root: buildFromChunks(ingestChunks([]byte(s)))}
}

// NewNormalized returns a Rope holding s after NFC normalization, the same
// canonicalization art.FromString applies to string keys. Two visually
// identical strings built from different combining-character sequences
// (e.g. precomposed "é" versus "e" + combining acute) become byte-for-byte
// equal ropes, and therefore compare and count graphemes identically.
func NewNormalized(s string) *Rope {
	return FromString(norm.NFC.String(s))
}

// Clone returns an independent Rope sharing the current root until one of
// the two is mutated.
func (r *Rope) Clone() *Rope {
	btree.Retain(r.root)
	return &Rope{root: r.root}
}

func buildFromChunks(cs []chunk) *btree.Node[chunk] {
	if len(cs) == 0 {
		return btree.NewLeaf[chunk]()
	}
	return btree.Build(cs, measureChunk)
}

// LenUTF8 returns the length of the rope's UTF-8 encoding in bytes.
func (r *Rope) LenUTF8() int { return btree.Summarize(r.root, measureChunk).UTF8 }

// LenUTF16 returns the length in UTF-16 code units.
func (r *Rope) LenUTF16() int { return btree.Summarize(r.root, measureChunk).UTF16 }

// LenScalars returns the number of Unicode scalar values.
func (r *Rope) LenScalars() int { return btree.Summarize(r.root, measureChunk).Scalars }

// LenChars returns the number of grapheme clusters.
func (r *Rope) LenChars() int { return btree.Summarize(r.root, measureChunk).Chars }

// String materializes the rope's full contents.
func (r *Rope) String() string {
	var b strings.Builder
	b.Grow(r.LenUTF8())
	btree.Walk(r.root, func(c chunk) bool {
		b.Write(c.data)
		return true
	})
	return b.String()
}

// chunks returns the in-order list of chunks in n's subtree.
func chunks(n *btree.Node[chunk]) []chunk {
	if n.IsLeaf() {
		return append([]chunk(nil), n.Entries()...)
	}
	out := make([]chunk, 0, n.EntryCount())
	for i := 0; i < n.ChildCount(); i++ {
		out = append(out, chunks(n.Child(i))...)
	}
	return out
}

// locateInChunks finds the chunk index and local byte offset for a UTF-8
// byte index idx into the flat chunk list cs. idx == total length returns
// (len(cs), 0).
func locateInChunks(cs []chunk, idx int) (ci, local int) {
	for i, c := range cs {
		if idx <= len(c.data) {
			return i, idx
		}
		idx -= len(c.data)
	}
	return len(cs), 0
}

type splitResult struct {
	right   *btree.Node[chunk]
	summary btree.Summary
}

// insertBytes performs the unique-path copy-on-write descent to the chunk
// containing UTF-8 byte offset idx, merges newBytes into it, and
// re-ingests the result: whether that produces one chunk, a couple, or
// many is left entirely to ingestChunks, rather than branching on the size
// of the insert up front. Splits propagate upward exactly like
// btreeset.insertInto's.
func insertBytes(n *btree.Node[chunk], idx int, newBytes []byte) (*btree.Node[chunk], *splitResult) {
	n = btree.CloneForWrite(n)

	if n.IsLeaf() {
		entries := n.Entries()
		if len(entries) == 0 {
			n.SetEntries(ingestChunks(newBytes))
		} else {
			pos, ci := 0, 0
			for ci < len(entries)-1 && idx > pos+len(entries[ci].data) {
				pos += len(entries[ci].data)
				ci++
			}
			local := idx - pos
			merged := make([]byte, 0, len(entries[ci].data)+len(newBytes))
			merged = append(merged, entries[ci].data[:local]...)
			merged = append(merged, newBytes...)
			merged = append(merged, entries[ci].data[local:]...)

			replaced := make([]chunk, 0, len(entries)+len(ingestChunks(merged)))
			replaced = append(replaced, entries[:ci]...)
			replaced = append(replaced, ingestChunks(merged)...)
			replaced = append(replaced, entries[ci+1:]...)
			n.SetEntries(replaced)
		}
		if n.SlotCount() <= btree.MaxEntries {
			return n, nil
		}
		right := btree.SplitLeaf(n)
		return n, &splitResult{right: right, summary: btree.Summarize(right, measureChunk)}
	}

	last := n.ChildCount() - 1
	childIdx := last
	remaining := idx
	for i := 0; i <= last; i++ {
		v := n.ChildSummary(i).UTF8
		if i == last || remaining <= v {
			childIdx = i
			break
		}
		remaining -= v
	}
	child := n.Child(childIdx)
	newChild, split := insertBytes(child, remaining, newBytes)
	n.SetChild(childIdx, newChild, btree.Summarize(newChild, measureChunk))
	if split == nil {
		return n, nil
	}
	n.InsertChildAt(childIdx+1, split.right, split.summary)
	if n.SlotCount() <= btree.MaxEntries {
		return n, nil
	}
	right := btree.SplitInternal(n)
	return n, &splitResult{right: right, summary: btree.Summarize(right, measureChunk)}
}

// Insert splices text into the rope at UTF-8 byte offset idx.
func (r *Rope) Insert(idx int, text string) {
	if text == "" {
		return
	}
	newRoot, split := insertBytes(r.root, idx, []byte(text))
	if split != nil {
		top := btree.NewInternal[chunk]()
		top.InsertChildAt(0, newRoot, btree.Summarize(newRoot, measureChunk))
		top.InsertChildAt(1, split.right, split.summary)
		newRoot = top
	}
	r.root = newRoot
}

// Append adds text to the end of the rope.
func (r *Rope) Append(text string) {
	r.Insert(r.LenUTF8(), text)
}

// Delete removes the UTF-8 byte range [start, end) from the rope.
func (r *Rope) Delete(start, end int) {
	if start >= end {
		return
	}
	cs := chunks(r.root)
	ci0, lo0 := locateInChunks(cs, start)
	ci1, lo1 := locateInChunks(cs, end)

	var merged []byte
	merged = append(merged, cs[ci0].data[:lo0]...)
	if ci1 < len(cs) {
		merged = append(merged, cs[ci1].data[lo1:]...)
	}

	out := make([]chunk, 0, len(cs))
	out = append(out, cs[:ci0]...)
	out = append(out, ingestChunks(merged)...)
	if ci1 < len(cs) {
		out = append(out, cs[ci1+1:]...)
	}
	r.root = buildFromChunks(out)
}

// Extract returns a fresh Rope holding the UTF-8 byte range [start, end).
func (r *Rope) Extract(start, end int) *Rope {
	if start >= end {
		return New()
	}
	cs := chunks(r.root)
	ci0, lo0 := locateInChunks(cs, start)
	ci1, lo1 := locateInChunks(cs, end)

	var out []chunk
	if ci0 == ci1 {
		out = append(out, analyzeChunk(append([]byte(nil), cs[ci0].data[lo0:lo1]...)))
	} else {
		out = append(out, analyzeChunk(append([]byte(nil), cs[ci0].data[lo0:]...)))
		out = append(out, cs[ci0+1:ci1]...)
		if ci1 < len(cs) {
			out = append(out, analyzeChunk(append([]byte(nil), cs[ci1].data[:lo1]...)))
		}
	}
	return &Rope{root: buildFromChunks(out)}
}

// Compare reports the UTF-8 byte-order comparison of r and other: negative
// if r < other, zero if equal, positive if r > other. It streams both
// ropes chunk by chunk rather than materializing either one.
func (r *Rope) Compare(other *Rope) int {
	a, b := btree.NewCursor(r.root), btree.NewCursor(other.root)
	var abuf, bbuf []byte
	for {
		for len(abuf) == 0 {
			c, ok := a.Next()
			if !ok {
				break
			}
			abuf = c.data
		}
		for len(bbuf) == 0 {
			c, ok := b.Next()
			if !ok {
				break
			}
			bbuf = c.data
		}
		switch {
		case len(abuf) == 0 && len(bbuf) == 0:
			return 0
		case len(abuf) == 0:
			return -1
		case len(bbuf) == 0:
			return 1
		}
		n := len(abuf)
		if len(bbuf) < n {
			n = len(bbuf)
		}
		if c := bytes.Compare(abuf[:n], bbuf[:n]); c != 0 {
			return c
		}
		abuf, bbuf = abuf[n:], bbuf[n:]
	}
}

// convert descends once to translate idx, measured in the from metric,
// into the equivalent offset measured in the to metric.
func (r *Rope) convert(idx int, from, to Metric) int {
	n := r.root
	var accTo int
	for !n.IsLeaf() {
		last := n.ChildCount() - 1
		chosen := last
		for i := 0; i <= last; i++ {
			v := metricValue(n.ChildSummary(i), from)
			if i == last || idx <= v {
				chosen = i
				break
			}
			idx -= v
			accTo += metricValue(n.ChildSummary(i), to)
		}
		n = n.Child(chosen)
	}

	entries := n.Entries()
	last := len(entries) - 1
	if last < 0 {
		return accTo
	}
	for i := 0; i <= last; i++ {
		s := measureChunk(entries[i])
		v := metricValue(s, from)
		if i == last || idx <= v {
			return accTo + chunkConvert(entries[i], idx, from, to)
		}
		idx -= v
		accTo += metricValue(s, to)
	}
	return accTo
}

// UTF8ToScalar, UTF8ToUTF16, UTF8ToChar, ScalarToUTF8, UTF16ToUTF8 and
// CharToUTF8 convert an index from one metric to another. A target index
// that falls strictly inside a multi-byte scalar or grapheme cluster is
// rounded down to that unit's start.
func (r *Rope) UTF8ToScalar(idx int) int { return r.convert(idx, UTF8, Scalar) }
func (r *Rope) UTF8ToUTF16(idx int) int  { return r.convert(idx, UTF8, UTF16) }
func (r *Rope) UTF8ToChar(idx int) int   { return r.convert(idx, UTF8, Char) }
func (r *Rope) ScalarToUTF8(idx int) int { return r.convert(idx, Scalar, UTF8) }
func (r *Rope) UTF16ToUTF8(idx int) int  { return r.convert(idx, UTF16, UTF8) }
func (r *Rope) CharToUTF8(idx int) int   { return r.convert(idx, Char, UTF8) }
