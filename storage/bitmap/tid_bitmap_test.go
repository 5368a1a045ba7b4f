package bitmap

import (
	"testing"

	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	testingpkg "github.com/ryogrid/SamehadaBitmapScan/testing/testing_assert"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

func rids(pairs ...uint32) []page.RID {
	ret := make([]page.RID, 0)
	for i := 0; i+1 < len(pairs); i += 2 {
		ret = append(ret, page.NewRID(types.BlockNumber(pairs[i]), types.OffsetNumber(pairs[i+1])))
	}
	return ret
}

func collect(t *testing.T, node Node) []*PageResult {
	it, err := Begin(node)
	testingpkg.Ok(t, err)
	defer it.End()
	ret := make([]*PageResult, 0)
	for res := it.Next(); res != nil; res = it.Next() {
		ret = append(ret, res)
	}
	return ret
}

func TestTIDBitmapExactIteration(t *testing.T) {
	tbm := NewTIDBitmap(100)
	tbm.AddTuples(rids(5, 3, 2, 7, 5, 1, 2, 7), false)
	tbm.AddTuples(rids(9, 2), true)

	testingpkg.Equals(t, 4, tbm.NEntries())
	pages := collect(t, tbm)
	testingpkg.Equals(t, 3, len(pages))

	testingpkg.Equals(t, types.BlockNumber(2), pages[0].BlockNo)
	testingpkg.Equals(t, []types.OffsetNumber{7}, pages[0].Offsets)
	testingpkg.Equals(t, types.BlockNumber(5), pages[1].BlockNo)
	testingpkg.Equals(t, []types.OffsetNumber{1, 3}, pages[1].Offsets)
	testingpkg.Equals(t, 2, pages[1].NTuples())
	testingpkg.SimpleAssert(t, !pages[1].Recheck)
	testingpkg.Equals(t, types.BlockNumber(9), pages[2].BlockNo)
	testingpkg.SimpleAssert(t, pages[2].Recheck)
}

func TestTIDBitmapLossyPages(t *testing.T) {
	tbm := NewTIDBitmap(100)
	tbm.AddTuples(rids(1, 1, 1, 2, 4, 1), false)
	tbm.AddPage(1)
	tbm.AddPage(3)
	// adding offsets to a lossy page changes nothing
	tbm.AddTuples(rids(3, 9), false)

	pages := collect(t, tbm)
	testingpkg.Equals(t, 3, len(pages))
	testingpkg.Equals(t, Lossy, pages[0].Kind)
	testingpkg.Equals(t, -1, pages[0].NTuples())
	testingpkg.SimpleAssert(t, pages[0].Recheck)
	testingpkg.Equals(t, types.BlockNumber(3), pages[1].BlockNo)
	testingpkg.Equals(t, Lossy, pages[1].Kind)
	testingpkg.Equals(t, Exact, pages[2].Kind)
	testingpkg.Equals(t, 3, tbm.NEntries())
}

func TestTIDBitmapLossify(t *testing.T) {
	tbm := NewTIDBitmap(8)
	tbm.AddTuples(rids(0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6, 0, 7), false)
	testingpkg.Equals(t, 0, tbm.NLossyPages())

	// 9 entries > 8: lowest blocks turn lossy until at most 4 entries are left
	tbm.AddTuples(rids(1, 1, 1, 2), true)
	testingpkg.Equals(t, 3, tbm.NEntries())
	testingpkg.Equals(t, 1, tbm.NLossyPages())
	testingpkg.Equals(t, 1, tbm.NExactPages())

	pages := collect(t, tbm)
	testingpkg.Equals(t, 2, len(pages))
	testingpkg.Equals(t, Lossy, pages[0].Kind)
	testingpkg.Equals(t, Exact, pages[1].Kind)
	testingpkg.Equals(t, []types.OffsetNumber{1, 2}, pages[1].Offsets)
	testingpkg.SimpleAssert(t, pages[1].Recheck)
}

func TestTIDBitmapIteratorsAreIndependent(t *testing.T) {
	tbm := NewTIDBitmap(100)
	tbm.AddTuples(rids(0, 1, 1, 1, 2, 1), false)

	main, err := Begin(tbm)
	testingpkg.Ok(t, err)
	prefetch, err := Begin(tbm)
	testingpkg.Ok(t, err)

	testingpkg.Equals(t, types.BlockNumber(0), prefetch.Next().BlockNo)
	testingpkg.Equals(t, types.BlockNumber(1), prefetch.Next().BlockNo)
	testingpkg.Equals(t, types.BlockNumber(0), main.Next().BlockNo)
	prefetch.End()
	testingpkg.Equals(t, types.BlockNumber(1), main.Next().BlockNo)
	testingpkg.Equals(t, types.BlockNumber(2), main.Next().BlockNo)
	testingpkg.Equals(t, (*PageResult)(nil), main.Next())
	testingpkg.Equals(t, (*PageResult)(nil), prefetch.Next())
	main.End()
}

func TestTIDBitmapUnionIntersect(t *testing.T) {
	a := NewTIDBitmap(100)
	a.AddTuples(rids(1, 1, 1, 2, 2, 1), false)
	a.AddPage(5)
	b := NewTIDBitmap(100)
	b.AddTuples(rids(1, 2, 1, 3, 5, 4), false)
	b.AddPage(2)

	u := NewTIDBitmap(100)
	u.Union(a)
	u.Union(b)
	pages := collect(t, u)
	testingpkg.Equals(t, 3, len(pages))
	testingpkg.Equals(t, []types.OffsetNumber{1, 2, 3}, pages[0].Offsets)
	testingpkg.Equals(t, Lossy, pages[1].Kind)
	testingpkg.Equals(t, Lossy, pages[2].Kind)

	a.Intersect(b)
	pages = collect(t, a)
	testingpkg.Equals(t, 3, len(pages))
	// exact & exact
	testingpkg.Equals(t, []types.OffsetNumber{2}, pages[0].Offsets)
	testingpkg.SimpleAssert(t, !pages[0].Recheck)
	// exact & lossy keeps offsets with recheck
	testingpkg.Equals(t, types.BlockNumber(2), pages[1].BlockNo)
	testingpkg.Equals(t, []types.OffsetNumber{1}, pages[1].Offsets)
	testingpkg.SimpleAssert(t, pages[1].Recheck)
	// lossy & exact
	testingpkg.Equals(t, types.BlockNumber(5), pages[2].BlockNo)
	testingpkg.Equals(t, Exact, pages[2].Kind)
	testingpkg.Equals(t, []types.OffsetNumber{4}, pages[2].Offsets)
	testingpkg.SimpleAssert(t, pages[2].Recheck)
}

type foreignNode struct{}

func (foreignNode) IsEmpty() bool { return true }

func TestBeginUnrecognizedBitmap(t *testing.T) {
	_, err := Begin(foreignNode{})
	testingpkg.Equals(t, ErrUnrecognizedBitmap, err)
}

func TestStreamBitmap(t *testing.T) {
	src := rids(0, 1, 0, 1, 0, 4, 3, 2, 7, 1, 7, 5)
	sb := NewStreamBitmap(func() RIDCursor { return NewSliceRIDCursor(src) }, true)
	testingpkg.SimpleAssert(t, !sb.IsEmpty())

	first, err := Begin(sb)
	testingpkg.Ok(t, err)
	p := first.Next()
	testingpkg.Equals(t, types.BlockNumber(0), p.BlockNo)
	testingpkg.Equals(t, []types.OffsetNumber{1, 4}, p.Offsets)
	testingpkg.SimpleAssert(t, p.Recheck)

	// a second iterator starts from the beginning
	pages := collect(t, sb)
	testingpkg.Equals(t, 3, len(pages))
	testingpkg.Equals(t, types.BlockNumber(7), pages[2].BlockNo)
	testingpkg.Equals(t, []types.OffsetNumber{1, 5}, pages[2].Offsets)

	testingpkg.Equals(t, types.BlockNumber(3), first.Next().BlockNo)
	first.End()
	testingpkg.Equals(t, (*PageResult)(nil), first.Next())

	empty := NewStreamBitmap(func() RIDCursor { return NewSliceRIDCursor(nil) }, false)
	testingpkg.SimpleAssert(t, empty.IsEmpty())
	testingpkg.Equals(t, 0, len(collect(t, empty)))
}
