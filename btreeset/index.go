package btreeset

import "github.com/arborio/containers/btree"

// Index is a stable handle into a Set's ordered sequence. It carries the
// identity (version) of the tree it was created against; using it after a
// structural mutation is a checked fatal error.
type Index[T any] struct {
	set     *Set[T]
	version uint64
	leaf    *btree.Node[T]
	pos     int
	rank    int
}

func (ix Index[T]) checkValid() {
	if ix.version != ix.set.version {
		panic("btreeset: index invalidated by a structural mutation")
	}
}

// First returns an Index at the smallest element, or ok == false if s is
// empty.
func (s *Set[T]) First() (Index[T], bool) {
	lf := btree.FirstLeaf(s.root)
	if lf == nil || lf.EntryCount() == 0 {
		return Index[T]{}, false
	}
	return Index[T]{set: s, version: s.version, leaf: lf, pos: 0, rank: 0}, true
}

// Last returns an Index at the largest element, or ok == false if s is
// empty.
func (s *Set[T]) Last() (Index[T], bool) {
	lf := btree.LastLeaf(s.root)
	if lf == nil || lf.EntryCount() == 0 {
		return Index[T]{}, false
	}
	return Index[T]{set: s, version: s.version, leaf: lf, pos: lf.EntryCount() - 1, rank: s.size - 1}, true
}

// Value returns the element ix refers to.
func (ix Index[T]) Value() T {
	ix.checkValid()
	return ix.leaf.Entry(ix.pos)
}

// Rank returns ix's zero-based position in ascending order.
func (ix Index[T]) Rank() int {
	ix.checkValid()
	return ix.rank
}

// Next returns the Index one step forward, or ok == false at the end.
func (ix Index[T]) Next() (Index[T], bool) {
	ix.checkValid()
	if ix.pos+1 < ix.leaf.EntryCount() {
		ix.pos++
		ix.rank++
		return ix, true
	}
	next := ix.leaf.Next()
	if next == nil || next.EntryCount() == 0 {
		return Index[T]{}, false
	}
	ix.leaf = next
	ix.pos = 0
	ix.rank++
	return ix, true
}

// Prev returns the Index one step backward, or ok == false at the start.
func (ix Index[T]) Prev() (Index[T], bool) {
	ix.checkValid()
	if ix.pos > 0 {
		ix.pos--
		ix.rank--
		return ix, true
	}
	prev := ix.leaf.Prev()
	if prev == nil || prev.EntryCount() == 0 {
		return Index[T]{}, false
	}
	ix.leaf = prev
	ix.pos = prev.EntryCount() - 1
	ix.rank--
	return ix, true
}

// Offset returns the Index n steps ahead (or behind, for negative n). It
// walks the leaf chain one step at a time — O(n) rather than the O(log n)
// a top-down rank descent would give.
func (ix Index[T]) Offset(n int) (Index[T], bool) {
	ix.checkValid()
	cur, ok := ix, true
	for ; n > 0 && ok; n-- {
		cur, ok = cur.Next()
	}
	for ; n < 0 && ok; n++ {
		cur, ok = cur.Prev()
	}
	return cur, ok
}

// Distance returns ix.Rank() - other.Rank(), both indices must belong to
// the same tree version.
func (ix Index[T]) Distance(other Index[T]) int {
	ix.checkValid()
	other.checkValid()
	return ix.rank - other.rank
}
