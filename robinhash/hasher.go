package robinhash

import (
	"github.com/dolthub/maphash"
)

// Hasher produces the 64-bit hash a Table indexes items by. Swapping in a
// different Hasher changes bucket placement entirely, which is why it is
// supplied once at construction rather than recomputed ad hoc.
type Hasher[T comparable] interface {
	Hash(v T) uint64
}

// defaultHasher wraps dolthub/maphash's generic Hasher, which hashes any
// comparable type via the runtime's own hash-map hashing rather than
// reflecting over struct fields by hand — the natural choice here since
// keys are constrained to comparable.
type defaultHasher[T comparable] struct {
	h maphash.Hasher[T]
}

// NewHasher returns the default Hasher for comparable key type T, seeded
// randomly at construction so hash values are not stable across process
// restarts; callers must not treat them as persistent identifiers.
func NewHasher[T comparable]() Hasher[T] {
	return defaultHasher[T]{h: maphash.NewHasher[T]()}
}

func (d defaultHasher[T]) Hash(v T) uint64 { return d.h.Hash(v) }
