package btree

// FirstLeaf descends the leftmost path from n to its first leaf. Returns
// nil for a nil (empty) subtree.
func FirstLeaf[E any](n *Node[E]) *Node[E] {
	for n != nil && !n.leaf {
		if len(n.children) == 0 {
			return nil
		}
		n = n.children[0]
	}
	return n
}

// LastLeaf descends the rightmost path from n to its last leaf.
func LastLeaf[E any](n *Node[E]) *Node[E] {
	for n != nil && !n.leaf {
		if len(n.children) == 0 {
			return nil
		}
		n = n.children[len(n.children)-1]
	}
	return n
}

// FirstEntry returns the smallest entry in the subtree rooted at n.
func FirstEntry[E any](n *Node[E]) (e E, ok bool) {
	lf := FirstLeaf(n)
	if lf == nil || len(lf.entries) == 0 {
		return e, false
	}
	return lf.entries[0], true
}

// LastEntry returns the largest entry in the subtree rooted at n.
func LastEntry[E any](n *Node[E]) (e E, ok bool) {
	lf := LastLeaf(n)
	if lf == nil || len(lf.entries) == 0 {
		return e, false
	}
	return lf.entries[len(lf.entries)-1], true
}

// Cursor walks a B-tree's entries in order via the leaf chain, a plain
// next-leaf-pointer mechanism that makes ordered range scans O(1) per
// step instead of re-descending from the root.
type Cursor[E any] struct {
	leaf *Node[E]
	idx  int
}

// NewCursor returns a Cursor positioned at the first entry of the subtree
// rooted at root.
func NewCursor[E any](root *Node[E]) *Cursor[E] {
	return &Cursor[E]{leaf: FirstLeaf(root)}
}

// Next returns the next entry in order, or ok == false once exhausted.
func (c *Cursor[E]) Next() (e E, ok bool) {
	for c.leaf != nil {
		if c.idx < len(c.leaf.entries) {
			e = c.leaf.entries[c.idx]
			c.idx++
			return e, true
		}
		c.leaf = c.leaf.next
		c.idx = 0
	}
	return e, false
}

// Walk calls fn for every entry in order, stopping early if fn returns
// false.
func Walk[E any](root *Node[E], fn func(E) bool) {
	for lf := FirstLeaf(root); lf != nil; lf = lf.next {
		for _, e := range lf.entries {
			if !fn(e) {
				return
			}
		}
	}
}
