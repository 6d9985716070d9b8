package robinhash

// IterateOccupied calls visit once for every maximal contiguous run of
// occupied buckets, as [start, end) half-open ranges in ascending bucket
// order. Callers that need to walk every live element (iteration,
// resizing, snapshotting) do so one run at a time instead of one bucket
// at a time, which lets a dense table with long occupied runs skip
// straight past them using the bitmap's own word-scanning rather than
// testing each bit individually.
func (t *Table) IterateOccupied(visit func(start, end Bucket)) {
	if t.scale == 0 {
		if t.count > 0 {
			visit(0, Bucket(t.count))
		}
		return
	}

	i := 0
	for {
		start, ok := t.occupied.NextSet(i)
		if !ok {
			return
		}
		end, ok := t.occupied.NextClear(start)
		if !ok {
			end = t.occupied.Len()
		}
		visit(Bucket(start), Bucket(end))
		i = end
	}
}
