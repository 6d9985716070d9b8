package rope

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/arborio/containers/btree"
	"github.com/rivo/uniseg"
)

// Metric selects which of a Rope's four index spaces an offset is measured
// in.
type Metric int

const (
	UTF8 Metric = iota
	UTF16
	Scalar
	Char
)

func metricValue(s btree.Summary, m Metric) int {
	switch m {
	case UTF16:
		return s.UTF16
	case Scalar:
		return s.Scalars
	case Char:
		return s.Chars
	default:
		return s.UTF8
	}
}

// ingestChunks splits data (must be valid UTF-8) into a run of chunks
// aligned on scalar boundaries and individually analyzed for grapheme
// counts. Every chunk but the last is cut as close to maxUTF8 as scalar
// alignment allows; the last holds the remainder and may be shorter than
// minUTF8, in which case it is merged into its predecessor only when the
// two fit within maxUTF8 together. No chunk exceeds maxUTF8, but a chunk
// under minUTF8 can remain, and since each edit re-ingests only the bytes
// it touches, such chunks can end up anywhere in a rope. This is the one ingester
// behind every insert, regardless of whether the touched region ends up
// fitting in a single chunk, splitting into a few, or expanding into many:
// an insert is always "recombine the touched bytes, then re-ingest",
// differing only in how many chunks that produces.
func ingestChunks(data []byte) []chunk {
	if len(data) == 0 {
		return nil
	}

	var chunks []chunk
	for len(data) > 0 {
		n := maxUTF8
		if n >= len(data) {
			n = len(data)
		} else {
			for n > 0 && !utf8.RuneStart(data[n]) {
				n--
			}
			if n == 0 {
				// A single rune wider than maxUTF8 cannot happen (UTF-8
				// runes are at most 4 bytes), but guard against a
				// pathological zero split anyway.
				n = len(data)
			}
		}
		chunks = append(chunks, analyzeChunk(data[:n]))
		data = data[n:]
	}

	// A short trailing chunk is merged into its predecessor when the
	// combination still fits, so repeated small appends don't leave a
	// permanent string of undersized chunks.
	if len(chunks) >= 2 {
		last := chunks[len(chunks)-1]
		prev := chunks[len(chunks)-2]
		if len(last.data) < minUTF8 && len(prev.data)+len(last.data) <= maxUTF8 {
			merged := make([]byte, 0, len(prev.data)+len(last.data))
			merged = append(merged, prev.data...)
			merged = append(merged, last.data...)
			chunks = append(chunks[:len(chunks)-2], analyzeChunk(merged))
		}
	}
	return chunks
}

// metricToByteOffset converts a local offset measured in metric m into a
// byte offset within chunk c, by walking the chunk's own decomposition
// (runes for Scalar/UTF16, grapheme clusters for Char).
func metricToByteOffset(c chunk, idx int, m Metric) int {
	switch m {
	case UTF8:
		return idx
	case Scalar:
		data, n := c.data, 0
		for i := 0; i < idx && len(data) > 0; i++ {
			_, size := utf8.DecodeRune(data)
			data = data[size:]
			n += size
		}
		return n
	case Char:
		data, n, state := c.data, 0, -1
		for i := 0; i < idx && len(data) > 0; i++ {
			var cluster []byte
			cluster, data, _, state = uniseg.FirstGraphemeCluster(data, state)
			n += len(cluster)
		}
		return n
	case UTF16:
		data, n, remaining := c.data, 0, idx
		for remaining > 0 && len(data) > 0 {
			r, size := utf8.DecodeRune(data)
			w := utf16RuneLen(r)
			if w > remaining {
				break
			}
			remaining -= w
			data = data[size:]
			n += size
		}
		return n
	}
	return 0
}

// byteOffsetToMetric converts a byte offset within chunk c into the
// equivalent local offset measured in metric m. An offset strictly inside
// a scalar or grapheme cluster is rounded down to that unit's start.
func byteOffsetToMetric(c chunk, byteOff int, m Metric) int {
	for byteOff > 0 && byteOff < len(c.data) && !utf8.RuneStart(c.data[byteOff]) {
		byteOff--
	}
	switch m {
	case UTF8:
		return byteOff
	case Scalar:
		data, n := c.data[:byteOff], 0
		for len(data) > 0 {
			_, size := utf8.DecodeRune(data)
			data = data[size:]
			n++
		}
		return n
	case Char:
		data, n, pos, state := c.data, 0, 0, -1
		for len(data) > 0 {
			var cluster []byte
			cluster, data, _, state = uniseg.FirstGraphemeCluster(data, state)
			if pos+len(cluster) > byteOff {
				break
			}
			pos += len(cluster)
			n++
		}
		return n
	case UTF16:
		data, n := c.data[:byteOff], 0
		for len(data) > 0 {
			r, size := utf8.DecodeRune(data)
			n += utf16RuneLen(r)
			data = data[size:]
		}
		return n
	}
	return 0
}

func chunkConvert(c chunk, idx int, from, to Metric) int {
	if from == to {
		return idx
	}
	return byteOffsetToMetric(c, metricToByteOffset(c, idx, from), to)
}

// utf16Units returns the UTF-16 code units for a single rune, for iterators
// that need to hand them out one at a time.
func utf16Units(r rune) []uint16 {
	return utf16.Encode([]rune{r})
}
