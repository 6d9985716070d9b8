package btreeset

import "github.com/arborio/containers/btree"

func fromSorted[T any](entries []T, less Less[T]) *Set[T] {
	return &Set[T]{root: btree.Build(entries, measureOne[T]), size: len(entries), less: less}
}

// Union returns a fresh Set holding every element of s or other, merging
// both cursors in sorted order: advancing the lesser stream, and on a tie
// advancing both but emitting the value once.
func (s *Set[T]) Union(other *Set[T]) *Set[T] {
	a, b := btree.NewCursor(s.root), btree.NewCursor(other.root)
	av, aok := a.Next()
	bv, bok := b.Next()
	out := make([]T, 0, s.size+other.size)
	for aok && bok {
		switch c := s.less(av, bv); {
		case c < 0:
			out = append(out, av)
			av, aok = a.Next()
		case c > 0:
			out = append(out, bv)
			bv, bok = b.Next()
		default:
			out = append(out, av)
			av, aok = a.Next()
			bv, bok = b.Next()
		}
	}
	for aok {
		out = append(out, av)
		av, aok = a.Next()
	}
	for bok {
		out = append(out, bv)
		bv, bok = b.Next()
	}
	return fromSorted(out, s.less)
}

// Intersection returns a fresh Set holding elements present in both s and
// other.
func (s *Set[T]) Intersection(other *Set[T]) *Set[T] {
	a, b := btree.NewCursor(s.root), btree.NewCursor(other.root)
	av, aok := a.Next()
	bv, bok := b.Next()
	var out []T
	for aok && bok {
		switch c := s.less(av, bv); {
		case c < 0:
			av, aok = a.Next()
		case c > 0:
			bv, bok = b.Next()
		default:
			out = append(out, av)
			av, aok = a.Next()
			bv, bok = b.Next()
		}
	}
	return fromSorted(out, s.less)
}

// Difference returns a fresh Set holding elements of s not present in
// other.
func (s *Set[T]) Difference(other *Set[T]) *Set[T] {
	a, b := btree.NewCursor(s.root), btree.NewCursor(other.root)
	av, aok := a.Next()
	bv, bok := b.Next()
	var out []T
	for aok && bok {
		switch c := s.less(av, bv); {
		case c < 0:
			out = append(out, av)
			av, aok = a.Next()
		case c > 0:
			bv, bok = b.Next()
		default:
			av, aok = a.Next()
			bv, bok = b.Next()
		}
	}
	for aok {
		out = append(out, av)
		av, aok = a.Next()
	}
	return fromSorted(out, s.less)
}

// SymmetricDifference returns a fresh Set holding elements present in
// exactly one of s and other.
func (s *Set[T]) SymmetricDifference(other *Set[T]) *Set[T] {
	a, b := btree.NewCursor(s.root), btree.NewCursor(other.root)
	av, aok := a.Next()
	bv, bok := b.Next()
	var out []T
	for aok && bok {
		switch c := s.less(av, bv); {
		case c < 0:
			out = append(out, av)
			av, aok = a.Next()
		case c > 0:
			out = append(out, bv)
			bv, bok = b.Next()
		default:
			av, aok = a.Next()
			bv, bok = b.Next()
		}
	}
	for aok {
		out = append(out, av)
		av, aok = a.Next()
	}
	for bok {
		out = append(out, bv)
		bv, bok = b.Next()
	}
	return fromSorted(out, s.less)
}

// UnionInto, IntersectionInto, DifferenceInto and
// SymmetricDifferenceInto replace s's contents with the result of the
// matching operation; each builds that result as a fresh Set first and
// then adopts its tree.
func (s *Set[T]) UnionInto(other *Set[T]) {
	r := s.Union(other)
	s.root, s.size, s.version = r.root, r.size, s.version+1
}

func (s *Set[T]) IntersectionInto(other *Set[T]) {
	r := s.Intersection(other)
	s.root, s.size, s.version = r.root, r.size, s.version+1
}

func (s *Set[T]) DifferenceInto(other *Set[T]) {
	r := s.Difference(other)
	s.root, s.size, s.version = r.root, r.size, s.version+1
}

func (s *Set[T]) SymmetricDifferenceInto(other *Set[T]) {
	r := s.SymmetricDifference(other)
	s.root, s.size, s.version = r.root, r.size, s.version+1
}

// IsSubset reports whether every element of s is in other.
func (s *Set[T]) IsSubset(other *Set[T]) bool {
	if s.size > other.size {
		return false
	}
	a, b := btree.NewCursor(s.root), btree.NewCursor(other.root)
	av, aok := a.Next()
	bv, bok := b.Next()
	for aok {
		if !bok {
			return false
		}
		switch c := s.less(av, bv); {
		case c == 0:
			av, aok = a.Next()
			bv, bok = b.Next()
		case c > 0:
			bv, bok = b.Next()
		default:
			return false
		}
	}
	return true
}

// IsSuperset reports whether every element of other is in s.
func (s *Set[T]) IsSuperset(other *Set[T]) bool { return other.IsSubset(s) }

// IsStrictSubset reports whether s is a subset of other and they differ.
func (s *Set[T]) IsStrictSubset(other *Set[T]) bool {
	return s.size < other.size && s.IsSubset(other)
}

// IsStrictSuperset reports whether s is a superset of other and they
// differ.
func (s *Set[T]) IsStrictSuperset(other *Set[T]) bool {
	return s.size > other.size && other.IsSubset(s)
}

// IsDisjoint reports whether s and other share no elements.
func (s *Set[T]) IsDisjoint(other *Set[T]) bool {
	a, b := btree.NewCursor(s.root), btree.NewCursor(other.root)
	av, aok := a.Next()
	bv, bok := b.Next()
	for aok && bok {
		switch c := s.less(av, bv); {
		case c == 0:
			return false
		case c < 0:
			av, aok = a.Next()
		default:
			bv, bok = b.Next()
		}
	}
	return true
}
