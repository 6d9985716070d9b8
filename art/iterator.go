package art

import "bytes"

// frame is one level of the explicit path stack an Iterator maintains
// while walking the tree, the standard way to support ordered iteration
// and range scans without recursion.
type frame[V any] struct {
	n            *node[V]
	bytes        []byte
	idx          int
	emittedValue bool
}

// Iterator walks a Tree's entries in lexicographic key order. It is
// invalidated by further mutation of the Tree it
// was created from; using it afterwards has undefined results, same as
// any other path-holding cursor in this library.
type Iterator[V any] struct {
	stack   []*frame[V]
	lowerOK bool
	lower   []byte
	upperOK bool
	upper   []byte
}

// Iter returns an iterator over all entries in key order.
func (t *Tree[V]) Iter() *Iterator[V] {
	it := &Iterator[V]{}
	it.push(t.root)
	return it
}

// IterRange returns an iterator over entries with keys in [start, end).
// Either bound may be nil to leave that side unbounded.
func (t *Tree[V]) IterRange(start, end []byte) *Iterator[V] {
	it := &Iterator[V]{}
	if start != nil {
		it.lowerOK = true
		it.lower = start
	}
	if end != nil {
		it.upperOK = true
		it.upper = end
	}
	it.push(t.root)
	return it
}

func (it *Iterator[V]) push(n *node[V]) {
	if n != nil {
		it.stack = append(it.stack, &frame[V]{n: n})
	}
}

// Next advances the iterator, returning the next (key, value) pair in
// order, or ok == false once exhausted.
func (it *Iterator[V]) Next() (key []byte, value V, ok bool) {
	for {
		key, value, ok = it.nextRaw()
		if !ok {
			return nil, value, false
		}
		if it.lowerOK && bytes.Compare(key, it.lower) < 0 {
			continue
		}
		if it.upperOK && bytes.Compare(key, it.upper) >= 0 {
			// Keys come out in ascending order, so no later key can be
			// below upper; the walk nonetheless continues to the end of
			// the tree, skipping every remaining key here.
			continue
		}
		return key, value, true
	}
}

func (it *Iterator[V]) nextRaw() (key []byte, value V, ok bool) {
	for len(it.stack) > 0 {
		top := it.stack[len(it.stack)-1]

		if top.n.isLeaf() {
			it.stack = it.stack[:len(it.stack)-1]
			lf := top.n.asLeaf()
			return lf.key, lf.value, true
		}

		if !top.emittedValue {
			top.emittedValue = true
			if top.n.valueLeaf != nil {
				lf := top.n.valueLeaf.asLeaf()
				return lf.key, lf.value, true
			}
		}

		if top.bytes == nil {
			top.bytes = childBytes(top.n)
		}
		if top.idx >= len(top.bytes) {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		b := top.bytes[top.idx]
		top.idx++
		it.push(childByByte(top.n, b))
	}
	var zero V
	return nil, zero, false
}
