// Package robinhash implements a bitmap-indexed Robin Hood open-addressed
// hash table primitive. A Table indexes 2^scale buckets; it never stores
// the items themselves — those live in a parallel element array owned by
// the wrapping container, which is why every mutating operation here
// takes a callback to move that external payload in lockstep with the
// bucket it tracks: the caller moves the external element payload so the
// hash-table slot and the element-array slot stay in sync.
//
// Node layout follows a compact occupancy bitmap plus a small amount of
// per-bucket metadata, generalized here from a fixed 256-slot field to
// bitops.WordBitmap's growable word-scanned form.
package robinhash

import "github.com/arborio/containers/bitops"

// Bucket is an opaque offset into the table, in [0, Cap()).
type Bucket int

const (
	minScale         = 4
	maxLoadFactorNum = 7
	maxLoadFactorDen = 8
	minLoadFactorNum = 1
	minLoadFactorDen = 8
)

// maxScale bounds the largest scale a Table may grow to, adapting to the
// host's word size rather than hard-coding 56.
func maxScale() uint {
	const wordBits = 32 << (^uint(0) >> 63) // 32 on 32-bit hosts, 64 on 64-bit
	if wordBits-1 < 56 {
		return wordBits - 1
	}
	return 56
}

// maximumUnhashedCount is the largest item count small mode (scale == 0)
// may hold before the table must switch to a hashed bucket array:
// 2^(minScale-1) - 1.
func maximumUnhashedCount() int { return (1 << (minScale - 1)) - 1 }

// Table is a Robin Hood open-addressed bucket index. The zero Table is
// an empty small-mode table (holding up to maximumUnhashedCount items);
// use New to pick an initial scale from an expected capacity.
type Table struct {
	scale        uint // 0 = small mode (linear scan, no hashing)
	scaleFloor   uint // raised by Reserve(persistent=true)
	count        int
	occupied     bitops.WordBitmap
	dist         []int32 // probe length of whatever occupies each bucket
	totalPL      int64
	maxPL        int
}

// New returns a Table sized to hold at least minimumCapacity items without
// needing an immediate grow.
func New(minimumCapacity int) *Table {
	t := &Table{}
	t.Reserve(minimumCapacity, false)
	return t
}

// Len returns the number of occupied buckets.
func (t *Table) Len() int { return t.count }

// Cap returns the current maximum number of items the table can hold
// before its load factor policy requires a grow.
func (t *Table) Cap() int {
	if t.scale == 0 {
		return maximumUnhashedCount()
	}
	return maxCapacityForScale(t.scale)
}

// Scale reports the table's current scale (0 in small mode).
func (t *Table) Scale() uint { return t.scale }

func maxCapacityForScale(scale uint) int {
	buckets := int64(1) << scale
	return int(buckets * maxLoadFactorNum / maxLoadFactorDen)
}

// minScaleFor picks the smallest scale whose bucket count keeps capacity
// at least minimumCapacity under the max load factor:
// ceil(log2(ceil(capacity * 8/7))), bounded below by minScale.
func minScaleFor(capacity int) uint {
	if capacity <= 0 {
		return minScale
	}
	needed := (capacity*maxLoadFactorDen + maxLoadFactorNum - 1) / maxLoadFactorNum
	scale := uint(0)
	for (int64(1) << scale) < int64(needed) {
		scale++
	}
	if scale < minScale {
		scale = minScale
	}
	return scale
}

// Reserve ensures the table can hold at least capacity items without
// growing. If persistent is true, the scale floor is raised so a later
// sequence of removals cannot shrink the table below this reservation.
// Only an empty table is resized in place: when capacity needs a larger
// scale and the table already holds items, Reserve panics (see growTo).
func (t *Table) Reserve(capacity int, persistent bool) {
	if capacity <= maximumUnhashedCount() && !persistent && t.scale == 0 {
		return
	}
	want := minScaleFor(capacity)
	if persistent && want > t.scaleFloor {
		t.scaleFloor = want
	}
	if want > t.scale {
		t.growTo(want)
	}
}

// growTo resizes an empty table to the given scale. It cannot rehash a
// populated table itself: a bucket index and its cached probe length are
// not enough bits to recompute which bucket an occupant would claim at a
// *larger* scale (the extra high bits are simply gone). Growing a
// populated table is therefore always done by building a fresh, bigger
// Table and calling MigrateFrom, which asks the wrapping container for
// each occupant's real hash.
func (t *Table) growTo(scale uint) {
	if t.count != 0 {
		panic("robinhash: growTo called on a populated table; use MigrateFrom")
	}
	t.scale = scale
	t.occupied = bitops.NewWordBitmap(1 << scale)
	t.dist = make([]int32, 1<<scale)
	t.totalPL = 0
	t.maxPL = 0
}

// ideal returns hash's home bucket for the current scale.
func (t *Table) ideal(hash uint64) int {
	return int(hash & ((uint64(1) << t.scale) - 1))
}

// Find looks up an item by hash, using eq to test candidates at each
// occupied bucket it visits.
func (t *Table) Find(hash uint64, eq func(Bucket) bool) (Bucket, bool) {
	if t.scale == 0 {
		for i := 0; i < t.count; i++ {
			if eq(Bucket(i)) {
				return Bucket(i), true
			}
		}
		return 0, false
	}

	bucketCount := 1 << t.scale
	b := t.ideal(hash)
	for steps := 0; steps <= t.maxPL; steps++ {
		idx := (b + steps) % bucketCount
		if !t.occupied.Get(idx) {
			return 0, false
		}
		if eq(Bucket(idx)) {
			return Bucket(idx), true
		}
	}
	return 0, false
}

// InsertNew places a new item with the given hash. scratch is a reserved
// external array slot, outside the table's own [0, Cap()) bucket range,
// where the caller has already written the new item's payload; the
// caller's element array must therefore be sized Cap()+1 with index
// Cap() (equivalently bucketCount, never visited by a probe sequence
// since every probed index is taken mod bucketCount) permanently set
// aside for this purpose. scratch plays the role of the one physical
// "carry" register the classic textbook algorithm keeps in a local
// variable, here represented as an array slot because the table never
// holds payloads of its own. Whenever the walk displaces an existing
// occupant, swap(a, b) is called to exchange the caller's external
// payload between buckets a and b — after the call, whatever a held now
// lives at b and vice versa. The table keeps swapping the scratch slot
// against each probed position until it reaches an empty one, which is
// exactly the Robin Hood rule: the entry with the longer accumulated
// probe length keeps moving forward, and the occupant it bumps continues
// the walk in its place with the probe length it had already accrued.
func (t *Table) InsertNew(hash uint64, scratch Bucket, swap func(a, b Bucket)) Bucket {
	if t.scale == 0 {
		if t.count >= maximumUnhashedCount() {
			panic("robinhash: small-mode table is full; caller must migrate before inserting")
		}
		t.count++
		return scratch
	}
	move := func(to Bucket, _ bool) {
		if to != scratch && swap != nil {
			swap(scratch, to)
		}
	}
	return t.probeAndPlace(hash, move)
}

// probeAndPlace runs the Robin Hood walk for hash, calling move(to,
// firstTouch) once for every bucket the walk displaces an occupant from
// (or settles into directly, if no displacement is needed). The carried
// entry's physical external location never moves during the walk — only
// the table's bookkeeping of WHICH bucket logically holds it does — so
// every call names the same fixed carry slot implicitly; move's closure
// is expected to capture it. firstTouch distinguishes the one call whose
// source is external to the table's own bucket space (a brand-new item,
// or — for MigrateFrom — an item still living in the table being
// migrated from) from every later call, whose source is a bucket t
// itself already wrote on an earlier iteration of this same walk.
func (t *Table) probeAndPlace(hash uint64, move func(to Bucket, firstTouch bool)) Bucket {
	bucketCount := 1 << t.scale
	b := t.ideal(hash)
	pl := 0
	placedAt := Bucket(-1)
	touched := false

	for {
		if !t.occupied.Get(b) {
			move(Bucket(b), !touched)
			t.occupied.Set(b)
			t.dist[b] = int32(pl)
			t.count++
			t.recordProbeLength(pl)
			if placedAt < 0 {
				placedAt = Bucket(b)
			}
			return placedAt
		}

		occupantPL := int(t.dist[b])
		if pl > occupantPL {
			move(Bucket(b), !touched)
			t.dist[b] = int32(pl)
			t.recordProbeLength(pl)
			if placedAt < 0 {
				placedAt = Bucket(b)
			}
			touched = true
			pl = occupantPL
		}

		b = (b + 1) % bucketCount
		pl++

		if pl > bucketCount {
			panic("robinhash: probe chain exceeded table size; table is full or occupancy bitmap is corrupt")
		}
	}
}

// NeedsGrowth reports whether the table has reached its maximum load
// factor and the wrapping container must migrate to a larger Table
// before the next InsertNew (max load factor 7/8).
func (t *Table) NeedsGrowth() bool {
	if t.scale == 0 {
		return t.count >= maximumUnhashedCount()
	}
	return t.count >= t.Cap()
}

// NextScale returns the scale a fresh Table should grow to, clamped to
// the largest scale this host supports.
func (t *Table) NextScale() uint {
	if t.scale == 0 {
		return minScale
	}
	next := t.scale + 1
	if next > maxScale() {
		return maxScale()
	}
	return next
}

// ShouldShrink reports whether the table's load has fallen far enough
// below the minimum load factor that the wrapping container should
// migrate down to a smaller scale. The shrink threshold (1/8) sits well
// below the grow threshold (7/8) so a table sitting near either boundary
// under alternating inserts and deletes doesn't thrash between two
// scales. A persistent Reserve floor (scaleFloor) is never crossed.
func (t *Table) ShouldShrink() bool {
	if t.scale <= minScale || t.scale <= t.scaleFloor {
		return false
	}
	threshold := (int64(1) << t.scale) * minLoadFactorNum / minLoadFactorDen
	return int64(t.count) < threshold
}

// PrevScale returns the scale a fresh Table should shrink to, clamped at
// minScale and at any persistent Reserve floor.
func (t *Table) PrevScale() uint {
	prev := t.scale - 1
	if prev < minScale {
		prev = minScale
	}
	if prev < t.scaleFloor {
		prev = t.scaleFloor
	}
	return prev
}

func (t *Table) recordProbeLength(pl int) {
	t.totalPL += int64(pl)
	if pl > t.maxPL {
		t.maxPL = pl
	}
}

// CreateHole marks at as logically removed without restoring the Robin
// Hood invariant: it decrements the occupied count but leaves the bitmap
// bit set until ResolveHole runs.
func (t *Table) CreateHole(at Bucket) {
	t.count--
}

// ResolveHole performs backward-shift deletion starting at the hole left
// by CreateHole: walk forward, and for each occupied candidate, ask
// regenerateHash for its hash and recompute its ideal bucket; if the hole
// lies in the circular range [ideal, candidate), shift the candidate back
// into the hole (mover moves the external payload the same way) and
// advance the hole to the candidate's old position. Terminate at the
// first bucket that is empty or whose occupant cannot move back, then
// clear the final hole's bit. The table still keeps a cached probe
// length per bucket for Find/MaxProbeLength, and that cache is always
// consistent with what regenerateHash would report, but resolve_hole
// recomputes the ideal bucket independently rather than trusting it, the
// same way insertion always works from a real hash rather than a cached
// one.
func (t *Table) ResolveHole(at Bucket, regenerateHash func(Bucket) uint64, mover func(from, to Bucket)) Bucket {
	if t.scale == 0 {
		// Small mode: compact the linear array by moving the last live
		// item into the vacated slot.
		last := Bucket(t.count)
		if at != last && mover != nil {
			mover(last, at)
		}
		return at
	}

	bucketCount := 1 << t.scale
	hole := int(at)
	t.totalPL -= int64(t.dist[hole]) // the removed item's own probe length
	for steps := 0; ; steps++ {
		if steps > bucketCount {
			panic("robinhash: hole resolution failed to terminate; occupancy bitmap is corrupt")
		}
		next := (hole + 1) % bucketCount
		if !t.occupied.Get(next) {
			break
		}
		ideal := t.ideal(regenerateHash(Bucket(next)))
		if !circularlyBetween(ideal, hole, next, bucketCount) {
			break
		}
		if mover != nil {
			mover(Bucket(next), Bucket(hole))
		}
		t.dist[hole] = t.dist[next] - 1
		t.totalPL-- // the shifted item's probe length just dropped by one
		hole = next
	}
	t.occupied.Clear(hole)
	t.dist[hole] = 0
	// The removed item, or any item inside the shift chain, may have been
	// holding the table's current maxProbeLength; re-derive it from what
	// remains rather than tracking it incrementally.
	t.recomputeMaxProbeLength()
	return Bucket(hole)
}

// circularlyBetween reports whether x lies in the half-open circular
// range [lo, hi) modulo n, correctly handling the range wrapping past the
// end of the bucket array.
func circularlyBetween(lo, x, hi, n int) bool {
	span := ((hi-lo)%n + n) % n
	offset := ((x-lo)%n + n) % n
	return offset < span
}

func (t *Table) recomputeMaxProbeLength() {
	max := 0
	t.IterateOccupied(func(start, end Bucket) {
		for b := start; b < end; b++ {
			if int(t.dist[b]) > max {
				max = int(t.dist[b])
			}
		}
	})
	t.maxPL = max
}

// MigrateFrom rehashes every occupied bucket of old into t, which must
// already be empty and scaled for the combined load (grow by rebuilding,
// never by reinterpreting bucket indices in place — see growTo).
// selectHash returns the hash of whatever item currently occupies a
// bucket of old; the table itself never stores hashes, only probe
// lengths, so it cannot recompute this on its own. scratch is t's own
// reserved carry slot, exactly as InsertNew's — an index in the
// caller's (new, larger) element array outside t's [0, Cap()) bucket
// range, reused across every migrated item since each item's walk fully
// drains the slot before the next one starts.
//
// mover is first called once per migrated item with firstMove true, from
// naming the item's bucket of old and to naming scratch: a one-way copy
// out of the table being migrated away from into the carry slot. Every
// later call for that item passes scratch as from with firstMove false
// and exchanges the two slots of t's own array, exactly like InsertNew's
// swap callback — to may already hold an earlier-migrated item that must
// continue the walk in the displaced item's place.
func (t *Table) MigrateFrom(old *Table, scratch Bucket, selectHash func(Bucket) uint64, mover func(from, to Bucket, firstMove bool)) {
	migrateOne := func(from Bucket) {
		hash := selectHash(from)
		mover(from, scratch, true)
		t.probeAndPlace(hash, func(to Bucket, _ bool) {
			mover(scratch, to, false)
		})
	}
	if old.scale == 0 {
		for i := 0; i < old.count; i++ {
			migrateOne(Bucket(i))
		}
		return
	}
	for b := 0; b < old.occupied.Len(); b++ {
		if old.occupied.Get(b) {
			migrateOne(Bucket(b))
		}
	}
}

// ConsumeAll calls consumer once for every occupied bucket, in bucket
// order, then clears the table.
func (t *Table) ConsumeAll(consumer func(Bucket)) {
	if t.scale == 0 {
		for i := 0; i < t.count; i++ {
			consumer(Bucket(i))
		}
		t.Clear()
		return
	}
	for b := 0; b < t.occupied.Len(); b++ {
		if t.occupied.Get(b) {
			consumer(Bucket(b))
		}
	}
	t.Clear()
}

// Clear empties the table without changing its scale.
func (t *Table) Clear() {
	t.count = 0
	t.totalPL = 0
	t.maxPL = 0
	if t.scale > 0 {
		t.occupied = bitops.NewWordBitmap(1 << t.scale)
		for i := range t.dist {
			t.dist[i] = 0
		}
	}
}

// TotalProbeLength and MaxProbeLength expose the aggregate counters a
// wrapping container needs to judge table health.
func (t *Table) TotalProbeLength() int64 { return t.totalPL }
func (t *Table) MaxProbeLength() int     { return t.maxPL }
