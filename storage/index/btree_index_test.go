package index

import (
	"testing"

	"github.com/ryogrid/SamehadaBitmapScan/storage/bitmap"
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/column"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	testingpkg "github.com/ryogrid/SamehadaBitmapScan/testing/testing_assert"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

func newTestIndex() (*BTreeIndex, *schema.Schema) {
	columnA := column.NewColumn("a", types.Integer, true)
	columnB := column.NewColumn("b", types.Varchar, false)
	sc := schema.NewSchema([]*column.Column{columnA, columnB})
	return NewBTreeIndex(NewIndexMetadata("a_idx", "test_1", sc, 0)), sc
}

func keyTuple(sc *schema.Schema, a int32) *tuple.Tuple {
	return tuple.NewTupleFromSchema([]types.Value{types.NewInteger(a), types.NewVarchar("x")}, sc)
}

func TestBTreeIndexDuplicatedKeys(t *testing.T) {
	idx, sc := newTestIndex()

	// inserted out of location order
	idx.InsertEntry(keyTuple(sc, 10), page.NewRID(3, 1))
	idx.InsertEntry(keyTuple(sc, 10), page.NewRID(0, 4))
	idx.InsertEntry(keyTuple(sc, 10), page.NewRID(1, 2))
	idx.InsertEntry(keyTuple(sc, 20), page.NewRID(0, 1))
	idx.InsertEntry(keyTuple(sc, 5), page.NewRID(2, 2))
	testingpkg.Equals(t, 5, idx.NEntries())

	found := idx.ScanKey(keyTuple(sc, 10))
	testingpkg.Equals(t, []page.RID{page.NewRID(0, 4), page.NewRID(1, 2), page.NewRID(3, 1)}, found)

	idx.DeleteEntry(keyTuple(sc, 10), page.NewRID(1, 2))
	// not existing entry
	idx.DeleteEntry(keyTuple(sc, 10), page.NewRID(9, 9))
	found = idx.ScanKey(keyTuple(sc, 10))
	testingpkg.Equals(t, []page.RID{page.NewRID(0, 4), page.NewRID(3, 1)}, found)
	testingpkg.Equals(t, 0, len(idx.ScanKey(keyTuple(sc, 11))))
}

func TestBTreeIndexRangeScan(t *testing.T) {
	idx, sc := newTestIndex()
	for i := int32(0); i < 50; i++ {
		idx.InsertEntry(keyTuple(sc, i), page.NewRID(types.BlockNumber(i/10), types.OffsetNumber(i%10+1)))
	}

	start := types.NewInteger(15)
	end := types.NewInteger(24)
	itr := idx.GetRangeScanIterator(&start, &end)
	keys := make([]int32, 0)
	for ok, key, _ := itr.Next(); ok; ok, key, _ = itr.Next() {
		keys = append(keys, key.ToInteger())
	}
	itr.Close()
	testingpkg.Equals(t, 10, len(keys))
	testingpkg.Equals(t, int32(15), keys[0])
	testingpkg.Equals(t, int32(24), keys[9])

	// unbounded on both ends
	itr = idx.GetRangeScanIterator(nil, nil)
	cnt := 0
	for ok, _, _ := itr.Next(); ok; ok, _, _ = itr.Next() {
		cnt++
	}
	itr.Close()
	testingpkg.Equals(t, 50, cnt)

	// entries added while an iterator is open are not seen by it
	itr = idx.GetRangeScanIterator(&start, nil)
	idx.InsertEntry(keyTuple(sc, 100), page.NewRID(9, 1))
	cnt = 0
	for ok, _, _ := itr.Next(); ok; ok, _, _ = itr.Next() {
		cnt++
	}
	itr.Close()
	testingpkg.Equals(t, 35, cnt)
}

func TestBTreeIndexGetBitmap(t *testing.T) {
	idx, sc := newTestIndex()
	for i := int32(0); i < 1000; i++ {
		idx.InsertEntry(keyTuple(sc, i%100), page.NewRID(types.BlockNumber(i/100), types.OffsetNumber(i%100+1)))
	}

	start := types.NewInteger(10)
	end := types.NewInteger(19)
	tbm := bitmap.NewTIDBitmap(1000)
	added := idx.GetBitmap(&start, &end, tbm, false)
	testingpkg.Equals(t, int64(100), added)
	testingpkg.Equals(t, 100, tbm.NEntries())
	testingpkg.Equals(t, 10, tbm.NExactPages())

	it, err := bitmap.Begin(tbm)
	testingpkg.Ok(t, err)
	defer it.End()
	blk := types.BlockNumber(0)
	for res := it.Next(); res != nil; res = it.Next() {
		testingpkg.Equals(t, blk, res.BlockNo)
		testingpkg.Equals(t, 10, res.NTuples())
		testingpkg.Equals(t, types.OffsetNumber(11), res.Offsets[0])
		testingpkg.Assert(t, !res.Recheck, "recheck should not be set")
		blk++
	}
	testingpkg.Equals(t, types.BlockNumber(10), blk)
}

func TestBTreeIndexEqualCursorFeedsStreamBitmap(t *testing.T) {
	idx, sc := newTestIndex()
	for i := int32(0); i < 300; i++ {
		idx.InsertEntry(keyTuple(sc, i%3), page.NewRID(types.BlockNumber(i/30), types.OffsetNumber(i%30+1)))
	}

	key := types.NewInteger(1)
	sb := bitmap.NewStreamBitmap(func() bitmap.RIDCursor { return idx.EqualCursor(key) }, true)
	testingpkg.Assert(t, !sb.IsEmpty(), "stream bitmap should not be empty")

	it, err := bitmap.Begin(sb)
	testingpkg.Ok(t, err)
	defer it.End()
	pages := 0
	tuples := 0
	for res := it.Next(); res != nil; res = it.Next() {
		testingpkg.Equals(t, types.BlockNumber(pages), res.BlockNo)
		testingpkg.Assert(t, res.Recheck, "recheck should be set")
		tuples += res.NTuples()
		pages++
	}
	testingpkg.Equals(t, 10, pages)
	testingpkg.Equals(t, 100, tuples)

	missing := types.NewInteger(7)
	empty := bitmap.NewStreamBitmap(func() bitmap.RIDCursor { return idx.EqualCursor(missing) }, false)
	testingpkg.Assert(t, empty.IsEmpty(), "stream bitmap should be empty")
}
