package robinhash

import (
	"testing"

	set3 "github.com/TomTonic/Set3"
)

// payload mirrors the dense external element array a wrapping container
// would keep alongside a Table; hash is recorded per slot purely so test
// helpers (mover callbacks, invariant checks) can look it up by Bucket
// without a real container on hand. Every test array is sized Cap()+1:
// the extra trailing slot is the reserved scratch register InsertNew and
// MigrateFrom expect.
type payload struct {
	hash  uint64
	value int
}

func newScaledTable(scale uint) (*Table, []payload) {
	t := &Table{}
	t.growTo(scale)
	return t, make([]payload, 1<<scale+1)
}

func swapPayload(arr []payload) func(a, b Bucket) {
	return func(a, b Bucket) {
		arr[a], arr[b] = arr[b], arr[a]
	}
}

func TestRobinHoodSwapScenario(t *testing.T) {
	tbl, arr := newScaledTable(4) // scale 4 = 16 buckets
	swap := swapPayload(arr)
	scratch := Bucket(len(arr) - 1)

	for i := 0; i < 5; i++ {
		arr[scratch] = payload{hash: 0, value: i}
		tbl.InsertNew(0, scratch, swap)
	}

	for b := 0; b < 5; b++ {
		if !tbl.occupied.Get(b) {
			t.Fatalf("bucket %d should be occupied", b)
		}
		if got := int(tbl.dist[b]); got != b {
			t.Fatalf("bucket %d probe length = %d, want %d", b, got, b)
		}
	}
	if tbl.occupied.Get(5) {
		t.Fatalf("bucket 5 should not be occupied")
	}
	if tbl.MaxProbeLength() != 4 {
		t.Fatalf("MaxProbeLength() = %d, want 4", tbl.MaxProbeLength())
	}
	if tbl.TotalProbeLength() != 10 {
		t.Fatalf("TotalProbeLength() = %d, want 10", tbl.TotalProbeLength())
	}
}

func TestBackwardShiftDeleteScenario(t *testing.T) {
	tbl, arr := newScaledTable(4)
	swap := swapPayload(arr)
	scratch := Bucket(len(arr) - 1)
	for i := 0; i < 5; i++ {
		arr[scratch] = payload{hash: 0, value: i}
		tbl.InsertNew(0, scratch, swap)
	}

	tbl.CreateHole(1)
	regenerateHash := func(b Bucket) uint64 { return arr[b].hash }
	mover := func(from, to Bucket) { arr[to] = arr[from] }
	finalHole := tbl.ResolveHole(1, regenerateHash, mover)

	if finalHole != 4 {
		t.Fatalf("ResolveHole returned hole at %d, want 4", finalHole)
	}
	wantDist := []int{0, 1, 2, 3}
	for b, want := range wantDist {
		if !tbl.occupied.Get(b) {
			t.Fatalf("bucket %d should remain occupied", b)
		}
		if got := int(tbl.dist[b]); got != want {
			t.Fatalf("bucket %d probe length = %d, want %d", b, got, want)
		}
	}
	if tbl.occupied.Get(4) {
		t.Fatalf("bucket 4 should now be empty")
	}
	if tbl.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", tbl.Len())
	}
	if tbl.TotalProbeLength() != 6 {
		t.Fatalf("TotalProbeLength() = %d, want 6", tbl.TotalProbeLength())
	}
	if tbl.MaxProbeLength() != 3 {
		t.Fatalf("MaxProbeLength() = %d, want 3", tbl.MaxProbeLength())
	}

	// Values 2, 3, 4 should have shifted down into buckets 1, 2, 3 — value
	// 1 (originally at bucket 1) is the one that was removed.
	wantValues := []int{0, 2, 3, 4}
	for b, want := range wantValues {
		if arr[b].value != want {
			t.Fatalf("bucket %d holds value %d, want %d", b, arr[b].value, want)
		}
	}
}

// checkInvariants verifies that no occupied bucket's probe length exceeds
// the table's cached maximum, that probe lengths are non-decreasing along
// each occupied run, and that they sum to the cached total.
func checkInvariants(t *testing.T, tbl *Table) {
	t.Helper()
	prevWasOccupied := false
	prevDist := -1
	var sum int64
	tbl.IterateOccupied(func(start, end Bucket) {
		for b := start; b < end; b++ {
			pl := int(tbl.dist[b])
			sum += int64(pl)
			if pl > tbl.MaxProbeLength() {
				t.Fatalf("bucket %d probe length %d exceeds MaxProbeLength() %d", b, pl, tbl.MaxProbeLength())
			}
			if prevWasOccupied && pl < prevDist {
				t.Fatalf("probe lengths not non-decreasing along occupied run: bucket %d has %d after %d", b, pl, prevDist)
			}
			prevWasOccupied, prevDist = true, pl
		}
		prevWasOccupied = false
	})
	if sum != tbl.TotalProbeLength() {
		t.Fatalf("sum of probe lengths = %d, TotalProbeLength() = %d", sum, tbl.TotalProbeLength())
	}
}

func TestInvariantsHoldAcrossInsertsAndDeletes(t *testing.T) {
	tbl, arr := newScaledTable(4)
	swap := swapPayload(arr)
	scratch := Bucket(len(arr) - 1)

	hashes := []uint64{3, 19, 3, 35, 7, 3, 1, 19, 9, 0}
	for i, h := range hashes {
		if tbl.NeedsGrowth() {
			t.Fatalf("table should not need growth with only %d items at scale 4", i)
		}
		arr[scratch] = payload{hash: h, value: i}
		tbl.InsertNew(h, scratch, swap)
		checkInvariants(t, tbl)
	}

	find := func(h uint64, want int) {
		b, ok := tbl.Find(h, func(b Bucket) bool { return arr[b].hash == h && arr[b].value == want })
		if !ok {
			t.Fatalf("Find(%d) for value %d not found", h, want)
		}
		_ = b
	}
	for i, h := range hashes {
		find(h, i)
	}

	// Remove every other inserted item by bucket position, re-deriving
	// positions from arr after each removal.
	for i := 0; i < len(hashes); i += 2 {
		target := hashes[i]
		b, ok := tbl.Find(target, func(b Bucket) bool { return arr[b].value == i })
		if !ok {
			continue
		}
		tbl.CreateHole(b)
		regenerateHash := func(b Bucket) uint64 { return arr[b].hash }
		mover := func(from, to Bucket) { arr[to] = arr[from] }
		tbl.ResolveHole(b, regenerateHash, mover)
		checkInvariants(t, tbl)
	}
}

func TestSmallModeLinearScan(t *testing.T) {
	tbl := New(0)
	if tbl.Scale() != 0 {
		t.Fatalf("New(0) should start in small mode, got scale %d", tbl.Scale())
	}
	var arr [8]payload
	for i := 0; i < maximumUnhashedCount(); i++ {
		at := Bucket(tbl.Len())
		arr[at] = payload{hash: uint64(i), value: i}
		tbl.InsertNew(uint64(i), at, nil)
	}
	if tbl.Len() != maximumUnhashedCount() {
		t.Fatalf("Len() = %d, want %d", tbl.Len(), maximumUnhashedCount())
	}
	b, ok := tbl.Find(3, func(b Bucket) bool { return arr[b].value == 3 })
	if !ok || arr[b].value != 3 {
		t.Fatalf("Find(3) failed in small mode")
	}
}

func TestMigrateFromGrowsCorrectly(t *testing.T) {
	old, oldArr := newScaledTable(4)
	swap := swapPayload(oldArr)
	oldScratch := Bucket(len(oldArr) - 1)
	const n = 10
	for i := 0; i < n; i++ {
		h := uint64(i * 7)
		oldArr[oldScratch] = payload{hash: h, value: i}
		old.InsertNew(h, oldScratch, swap)
	}

	next := &Table{}
	next.growTo(old.NextScale())
	newArr := make([]payload, 1<<next.Scale()+1)
	newScratch := Bucket(len(newArr) - 1)

	selectHash := func(from Bucket) uint64 { return oldArr[from].hash }
	mover := func(from, to Bucket, firstMove bool) {
		if firstMove {
			newArr[to] = oldArr[from]
		} else {
			newArr[from], newArr[to] = newArr[to], newArr[from]
		}
	}
	next.MigrateFrom(old, newScratch, selectHash, mover)

	if next.Len() != n {
		t.Fatalf("migrated Len() = %d, want %d", next.Len(), n)
	}
	checkInvariants(t, next)
	for i := 0; i < n; i++ {
		h := uint64(i * 7)
		b, ok := next.Find(h, func(b Bucket) bool { return newArr[b].value == i })
		if !ok {
			t.Fatalf("migrated value %d (hash %d) not found", i, h)
		}
		_ = b
	}
}

func TestClearResetsWithoutChangingScale(t *testing.T) {
	tbl, arr := newScaledTable(4)
	swap := swapPayload(arr)
	scratch := Bucket(len(arr) - 1)
	for i := 0; i < 5; i++ {
		arr[scratch] = payload{hash: uint64(i), value: i}
		tbl.InsertNew(uint64(i), scratch, swap)
	}
	tbl.Clear()
	if tbl.Len() != 0 || tbl.TotalProbeLength() != 0 || tbl.MaxProbeLength() != 0 {
		t.Fatalf("Clear() left stale state: len=%d total=%d max=%d", tbl.Len(), tbl.TotalProbeLength(), tbl.MaxProbeLength())
	}
	if tbl.Scale() != 4 {
		t.Fatalf("Clear() changed scale to %d, want 4", tbl.Scale())
	}
}

func TestConsumeAllVisitsEveryOccupiedBucketThenClears(t *testing.T) {
	tbl, arr := newScaledTable(4)
	swap := swapPayload(arr)
	scratch := Bucket(len(arr) - 1)
	for i := 0; i < 5; i++ {
		arr[scratch] = payload{hash: uint64(i), value: i}
		tbl.InsertNew(uint64(i), scratch, swap)
	}
	var visited []int
	tbl.ConsumeAll(func(b Bucket) { visited = append(visited, arr[b].value) })
	if len(visited) != 5 {
		t.Fatalf("ConsumeAll visited %d buckets, want 5", len(visited))
	}
	if tbl.Len() != 0 {
		t.Fatalf("ConsumeAll should clear the table, Len() = %d", tbl.Len())
	}
}

func TestShouldShrinkRespectsPersistentFloor(t *testing.T) {
	tbl := New(0)
	tbl.Reserve(200, true) // persistent reservation
	for tbl.Len() < 1 {
		at := Bucket(tbl.Len())
		tbl.InsertNew(uint64(tbl.Len()), at, nil)
	}
	if tbl.ShouldShrink() {
		t.Fatalf("table should not shrink below its persistent reservation")
	}
}

// TestSoakAgainstSet3 drives a long insert/delete sequence through a Table
// and cross-checks its membership against set3.Set3, an independent
// hash-set implementation, so a bug in Table's own bookkeeping (bitmap,
// probe distance, backward-shift deletion) can't silently agree with
// itself.
func TestSoakAgainstSet3(t *testing.T) {
	tbl, arr := newScaledTable(4)
	swap := swapPayload(arr)
	hasher := NewHasher[int]()
	oracle := set3.Empty[int]()

	find := func(v int) (Bucket, bool) {
		return tbl.Find(hasher.Hash(v), func(b Bucket) bool { return arr[b].value == v })
	}
	insert := func(v int) {
		if tbl.NeedsGrowth() {
			grown := &Table{}
			grown.growTo(tbl.NextScale())
			bigger := make([]payload, 1<<grown.Scale()+1)
			newScratch := Bucket(len(bigger) - 1)
			selectHash := func(from Bucket) uint64 { return arr[from].hash }
			mover := func(from, to Bucket, firstMove bool) {
				if firstMove {
					bigger[to] = arr[from]
				} else {
					bigger[from], bigger[to] = bigger[to], bigger[from]
				}
			}
			grown.MigrateFrom(tbl, newScratch, selectHash, mover)
			tbl, arr = grown, bigger
			swap = swapPayload(arr)
		}
		scratch := Bucket(len(arr) - 1)
		h := hasher.Hash(v)
		arr[scratch] = payload{hash: h, value: v}
		tbl.InsertNew(h, scratch, swap)
		oracle.Add(v)
	}
	remove := func(v int) {
		b, ok := find(v)
		if !ok {
			return
		}
		tbl.CreateHole(b)
		regenerateHash := func(b Bucket) uint64 { return arr[b].hash }
		mover := func(from, to Bucket) { arr[to] = arr[from] }
		tbl.ResolveHole(b, regenerateHash, mover)
		oracle.Remove(v)
	}

	for round := 0; round < 500; round++ {
		v := round % 137
		if oracle.Contains(v) {
			remove(v)
		} else {
			insert(v)
		}
		if tbl.Len() != oracle.Len() {
			t.Fatalf("round %d: Table.Len() = %d, oracle.Len() = %d", round, tbl.Len(), oracle.Len())
		}
		checkInvariants(t, tbl)
	}

	for v := 0; v < 137; v++ {
		_, found := find(v)
		if found != oracle.Contains(v) {
			t.Fatalf("value %d: table has it = %v, oracle has it = %v", v, found, oracle.Contains(v))
		}
	}
}
