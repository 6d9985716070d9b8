// Package rope implements a large mutable text structure backed by the
// shared btree package: a B-tree whose leaves hold UTF-8 byte chunks
// annotated with running counts in four index metrics (UTF-8 bytes,
// UTF-16 code units, Unicode scalars, grapheme clusters), so offset
// conversion and length queries resolve in O(log n) via cached subtree
// summaries instead of a full scan.
package rope

import (
	"unicode/utf16"

	"github.com/arborio/containers/btree"
	"github.com/rivo/uniseg"
)

// minUTF8 and maxUTF8 bound a chunk's byte length. ingestChunks is the
// only place that produces chunks; it never exceeds maxUTF8, while minUTF8
// only decides when a short trailing chunk is merged into its predecessor,
// so chunks shorter than minUTF8 can still occur (see ingestChunks).
const (
	minUTF8 = 255
	maxUTF8 = 1023
)

// chunk is one leaf entry: a UTF-8 byte buffer plus the running counts a
// Rope needs for index conversion. utf16Count, scalarCount and charCount are
// this chunk's own contribution to the whole rope's length in each metric,
// computed in isolation from its neighbors.
//
// A grapheme cluster may still straddle the boundary between two chunks —
// analyzing a chunk's bytes in isolation can undercount a combining mark
// that belongs to the previous chunk's trailing cluster. CharIterator
// resolves this at read time by pulling the next chunk's bytes into the
// in-progress cluster rather than relying on any per-chunk bookkeeping, so
// charCount need not be exact at a boundary for iteration to produce the
// correct cluster sequence; only the aggregate Chars count is approximate
// across a freshly split boundary until the touching chunk is next
// re-ingested.
type chunk struct {
	data        []byte
	utf16Count  int
	scalarCount int
	charCount   int
}

// measureChunk reports a chunk's contribution to a subtree's Summary.
// btreeset's element measure only ever populates Count; this one leaves
// Count at zero and populates the other three fields plus the UTF-8 byte
// length, since chunk byte length doubles as the "element count" a leaf
// needs for descent here.
func measureChunk(c chunk) btree.Summary {
	return btree.Summary{
		UTF8:    len(c.data),
		UTF16:   c.utf16Count,
		Scalars: c.scalarCount,
		Chars:   c.charCount,
	}
}

// analyzeChunk computes a chunk's counts from scratch by walking its
// grapheme clusters once. Called on any newly formed or modified chunk;
// this is the rope's grapheme resync step, scoped to the chunks an edit
// touched rather than the whole rope.
func analyzeChunk(data []byte) chunk {
	c := chunk{data: data}
	if len(data) == 0 {
		return c
	}

	rest := data
	state := -1
	for len(rest) > 0 {
		var cluster []byte
		cluster, rest, _, state = uniseg.FirstGraphemeCluster(rest, state)
		c.charCount++
		for _, r := range string(cluster) {
			c.scalarCount++
			c.utf16Count += utf16RuneLen(r)
		}
	}
	return c
}

func utf16RuneLen(r rune) int {
	if w := utf16.RuneLen(r); w > 0 {
		return w
	}
	return 1
}
