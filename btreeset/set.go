// Package btreeset implements an ordered set backed by the shared btree
// package: a B-tree whose leaves store strictly-ascending sequences of
// the element type, the same generic B-tree shape Rope uses, here
// parameterized over key only. Ordering is supplied by a comparator
// rather than a fixed byte-order convention, generalized to an arbitrary
// element type via Go generics.
package btreeset

import "github.com/arborio/containers/btree"

// Less compares two elements: negative if a < b, zero if equal, positive
// if a > b.
type Less[T any] func(a, b T) int

func measureOne[T any](T) btree.Summary { return btree.Summary{Count: 1} }

// Set is an ordered, duplicate-free collection of T, backed by a
// copy-on-write B-tree. The zero Set is not usable; construct with New.
type Set[T any] struct {
	root    *btree.Node[T]
	size    int
	less    Less[T]
	version uint64
}

// New returns an empty Set ordered by less.
func New[T any](less Less[T]) *Set[T] {
	return &Set[T]{root: btree.NewLeaf[T](), less: less}
}

// Len returns the number of elements.
func (s *Set[T]) Len() int { return s.size }

// Clone returns an independent Set sharing the current root until one of
// the two is mutated.
func (s *Set[T]) Clone() *Set[T] {
	btree.Retain(s.root)
	return &Set[T]{root: s.root, size: s.size, less: s.less}
}

// findChildIndex picks the child of an internal node that may contain x:
// the first child whose largest entry is >= x, or the last child if none
// qualifies. Children have no separator keys of their own in this B+-tree
// shape, so the search inspects each child's rightmost entry directly —
// an O(fan-out) probe per level rather than a stored-separator binary
// search.
func findChildIndex[T any](n *btree.Node[T], x T, less Less[T]) int {
	for i := 0; i < n.ChildCount()-1; i++ {
		if last, ok := btree.LastEntry(n.Child(i)); ok && less(x, last) <= 0 {
			return i
		}
	}
	return n.ChildCount() - 1
}

func findEntryIndex[T any](lf *btree.Node[T], x T, less Less[T]) (idx int, found bool) {
	entries := lf.Entries()
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if less(entries[mid], x) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(entries) && less(entries[lo], x) == 0 {
		return lo, true
	}
	return lo, false
}

// Contains reports whether x is a member of the set.
func (s *Set[T]) Contains(x T) bool {
	n := s.root
	for !n.IsLeaf() {
		n = n.Child(findChildIndex(n, x, s.less))
	}
	_, found := findEntryIndex(n, x, s.less)
	return found
}

type splitResult[T any] struct {
	right   *btree.Node[T]
	summary btree.Summary
}

// insertInto performs the unique-path COW descent, mirroring art's
// insertNode (art/insert.go): clone any node whose refcount says it is
// shared before mutating it, and propagate splits upward.
func insertInto[T any](n *btree.Node[T], x T, less Less[T], overwrite bool, inserted *bool) (*btree.Node[T], *splitResult[T]) {
	n = btree.CloneForWrite(n)

	if n.IsLeaf() {
		idx, found := findEntryIndex(n, x, less)
		if found {
			*inserted = false
			if overwrite {
				n.SetEntries(append(append(append([]T(nil), n.Entries()[:idx]...), x), n.Entries()[idx+1:]...))
			}
			return n, nil
		}
		*inserted = true
		n.InsertEntryAt(idx, x)
		if n.EntryCount() <= btree.MaxEntries {
			return n, nil
		}
		right := btree.SplitLeaf(n)
		return n, &splitResult[T]{right: right, summary: btree.Summarize(right, measureOne[T])}
	}

	idx := findChildIndex(n, x, less)
	child := n.Child(idx)
	newChild, split := insertInto(child, x, less, overwrite, inserted)
	n.SetChild(idx, newChild, btree.Summarize(newChild, measureOne[T]))
	if split == nil {
		return n, nil
	}
	n.InsertChildAt(idx+1, split.right, split.summary)
	if n.ChildCount() <= btree.MaxEntries {
		return n, nil
	}
	right := btree.SplitInternal(n)
	return n, &splitResult[T]{right: right, summary: btree.Summarize(right, measureOne[T])}
}

func (s *Set[T]) insert(x T, overwrite bool) bool {
	var inserted bool
	newRoot, split := insertInto(s.root, x, s.less, overwrite, &inserted)
	if split != nil {
		top := btree.NewInternal[T]()
		top.InsertChildAt(0, newRoot, btree.Summarize(newRoot, measureOne[T]))
		top.InsertChildAt(1, split.right, split.summary)
		newRoot = top
	}
	s.root = newRoot
	if inserted {
		s.size++
		s.version++
	}
	return inserted
}

// Insert adds x if not already present, keeping the existing element on a
// tie. Returns whether a new element was inserted.
func (s *Set[T]) Insert(x T) bool { return s.insert(x, false) }

// Update adds x, overwriting an existing equal element's stored value.
// Returns whether x was newly inserted (false means an existing element
// was overwritten).
func (s *Set[T]) Update(x T) bool { return s.insert(x, true) }

// removeFrom descends to x's leaf, removes it if present, and rebalances
// any underflowing node along the path by borrowing from or merging with
// a sibling (classic B-tree deletion, applied to the B+-tree shape here).
func removeFrom[T any](n *btree.Node[T], x T, less Less[T], removed *bool) *btree.Node[T] {
	n = btree.CloneForWrite(n)

	if n.IsLeaf() {
		idx, found := findEntryIndex(n, x, less)
		if !found {
			return n
		}
		n.RemoveEntryAt(idx)
		*removed = true
		return n
	}

	idx := findChildIndex(n, x, less)
	child := n.Child(idx)
	newChild := removeFrom(child, x, less, removed)
	n.SetChild(idx, newChild, btree.Summarize(newChild, measureOne[T]))
	if !*removed {
		return n
	}
	rebalanceChild(n, idx)
	return n
}

// rebalanceChild fixes up an underflowing child at index idx by borrowing
// a entry from a sibling, or merging with one when borrowing isn't
// possible.
func rebalanceChild[T any](n *btree.Node[T], idx int) {
	child := n.Child(idx)
	if child.SlotCount() >= btree.MinEntries || n.ChildCount() <= 1 {
		return
	}

	if idx > 0 {
		left := n.Child(idx - 1)
		if left.SlotCount() > btree.MinEntries {
			borrowFromLeft(n, idx)
			return
		}
	}
	if idx < n.ChildCount()-1 {
		right := n.Child(idx + 1)
		if right.SlotCount() > btree.MinEntries {
			borrowFromRight(n, idx)
			return
		}
	}

	if idx > 0 {
		mergeChildren(n, idx-1)
	} else {
		mergeChildren(n, idx)
	}
}

func borrowFromLeft[T any](n *btree.Node[T], idx int) {
	left := btree.CloneForWrite(n.Child(idx - 1))
	child := btree.CloneForWrite(n.Child(idx))
	if child.IsLeaf() {
		last := left.RemoveEntryAt(left.EntryCount() - 1)
		child.InsertEntryAt(0, last)
	} else {
		lastIdx := left.ChildCount() - 1
		moved := left.Child(lastIdx)
		movedSummary := left.ChildSummary(lastIdx)
		left.RemoveChildAt(lastIdx)
		child.InsertChildAt(0, moved, movedSummary)
	}
	n.SetChild(idx-1, left, btree.Summarize(left, measureOne[T]))
	n.SetChild(idx, child, btree.Summarize(child, measureOne[T]))
}

func borrowFromRight[T any](n *btree.Node[T], idx int) {
	child := btree.CloneForWrite(n.Child(idx))
	right := btree.CloneForWrite(n.Child(idx + 1))
	if child.IsLeaf() {
		first := right.RemoveEntryAt(0)
		child.InsertEntryAt(child.EntryCount(), first)
	} else {
		moved := right.Child(0)
		movedSummary := right.ChildSummary(0)
		right.RemoveChildAt(0)
		child.InsertChildAt(child.ChildCount(), moved, movedSummary)
	}
	n.SetChild(idx, child, btree.Summarize(child, measureOne[T]))
	n.SetChild(idx+1, right, btree.Summarize(right, measureOne[T]))
}

func mergeChildren[T any](n *btree.Node[T], leftIdx int) {
	left := btree.CloneForWrite(n.Child(leftIdx))
	right := n.Child(leftIdx + 1)
	if left.IsLeaf() {
		btree.MergeLeaves(left, right)
	} else {
		btree.MergeInternals(left, right)
	}
	n.SetChild(leftIdx, left, btree.Summarize(left, measureOne[T]))
	n.RemoveChildAt(leftIdx + 1)
}

// Remove deletes x from the set, reporting whether it was present.
func (s *Set[T]) Remove(x T) bool {
	var removed bool
	s.root = removeFrom(s.root, x, s.less, &removed)
	for !s.root.IsLeaf() && s.root.ChildCount() == 1 {
		s.root = s.root.Child(0)
	}
	if removed {
		s.size--
		s.version++
	}
	return removed
}

// Iter returns an in-order iterator over the set's elements.
func (s *Set[T]) Iter() *btree.Cursor[T] { return btree.NewCursor(s.root) }
