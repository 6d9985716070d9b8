package art

// Tree is an Adaptive Radix Tree mapping byte-string keys to values of
// type V. The zero Tree is an empty, ready-to-use tree.
//
// Tree behaves as a value type under copy-on-write: Clone returns an
// independent Tree sharing the current node tree until one of the two is
// mutated, at which point the mutated side clones its path from the root.
// A plain Go assignment (`t2 := t1`) copies the struct but does
// not bump the shared root's reference count, so it must not be used to
// create a second logical owner — call Clone instead.
type Tree[V any] struct {
	root *node[V]
	size int
}

// New returns an empty Tree.
func New[V any]() *Tree[V] {
	return &Tree[V]{}
}

// Clone returns an independent Tree sharing the current root node. The
// shared subtree is copy-on-write: neither Tree mutates it until one of
// them performs an Insert or Delete, at which point only that Tree's path
// from the root is cloned.
func (t *Tree[V]) Clone() *Tree[V] {
	t.root.retain()
	return &Tree[V]{root: t.root, size: t.size}
}

// Len returns the number of keys currently stored.
func (t *Tree[V]) Len() int { return t.size }

// Get returns the value stored for key and whether key was present.
func (t *Tree[V]) Get(key []byte) (V, bool) {
	lf, ok := getNode(t.root, key, 0)
	if !ok {
		var zero V
		return zero, false
	}
	return lf.value, true
}

// Insert stores value for key, returning the previous value (if any) and
// whether a previous value existed.
func (t *Tree[V]) Insert(key []byte, value V) (V, bool) {
	var old V
	var replaced bool
	t.root = insertNode(t.root, key, 0, value, &old, &replaced)
	if !replaced {
		t.size++
	}
	return old, replaced
}

// Delete removes key, returning its value (if any) and whether it was
// present.
func (t *Tree[V]) Delete(key []byte) (V, bool) {
	newRoot, old, deleted := deleteNode(t.root, key, 0)
	if deleted {
		t.root = newRoot
		t.size--
	}
	return old, deleted
}

// GetKey is Get for a Key, the documented way to build keys that keep
// lexicographic tree order consistent with numeric or NFC-normalized
// string order; see Key.
func (t *Tree[V]) GetKey(key Key) (V, bool) { return t.Get(key.Bytes()) }

// InsertKey is Insert for a Key.
func (t *Tree[V]) InsertKey(key Key, value V) (V, bool) { return t.Insert(key.Bytes(), value) }

// DeleteKey is Delete for a Key.
func (t *Tree[V]) DeleteKey(key Key) (V, bool) { return t.Delete(key.Bytes()) }

// IterRangeKeys is IterRange for Keys. Either bound may be nil to leave
// that side unbounded, same as IterRange.
func (t *Tree[V]) IterRangeKeys(start, end Key) *Iterator[V] {
	var startBytes, endBytes []byte
	if start != nil {
		startBytes = start.Bytes()
	}
	if end != nil {
		endBytes = end.Bytes()
	}
	return t.IterRange(startBytes, endBytes)
}
