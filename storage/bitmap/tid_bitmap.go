package bitmap

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

type exactPage struct {
	offsets *roaring.Bitmap
	recheck bool
}

// TIDBitmap is an in memory set of row locations.
// Pages are kept exact (a set of offsets) until the number of entries goes over
// maxEntries. Then exact pages are turned into lossy ones (page is remembered
// but not the offsets) from the lowest block until half of the bound is used.
// Once iteration begins the bitmap must not be modified.
type TIDBitmap struct {
	exact      map[types.BlockNumber]*exactPage
	lossy      *roaring.Bitmap // block numbers
	nentries   int             // offsets of exact pages + lossy pages
	maxEntries int
	iterating  bool
}

func NewTIDBitmap(maxEntries int) *TIDBitmap {
	if maxEntries <= 0 {
		maxEntries = common.DefaultBitmapMaxEntries
	}
	return &TIDBitmap{
		exact:      make(map[types.BlockNumber]*exactPage),
		lossy:      roaring.New(),
		maxEntries: maxEntries,
	}
}

// AddTuples adds row locations. recheck marks the pages of rids to be rechecked.
func (tbm *TIDBitmap) AddTuples(rids []page.RID, recheck bool) {
	common.SH_Assert(!tbm.iterating, "TIDBitmap: modified while iterating")
	for _, rid := range rids {
		blk := rid.GetBlockNum()
		if tbm.lossy.Contains(uint32(blk)) {
			continue
		}
		ep, ok := tbm.exact[blk]
		if !ok {
			ep = &exactPage{roaring.New(), false}
			tbm.exact[blk] = ep
		}
		if ep.offsets.CheckedAdd(uint32(rid.GetOffset())) {
			tbm.nentries++
		}
		ep.recheck = ep.recheck || recheck
	}
	if tbm.nentries > tbm.maxEntries {
		tbm.lossify()
	}
}

// AddPage adds a whole page as lossy
func (tbm *TIDBitmap) AddPage(blk types.BlockNumber) {
	common.SH_Assert(!tbm.iterating, "TIDBitmap: modified while iterating")
	tbm.markLossy(blk)
	if tbm.nentries > tbm.maxEntries {
		tbm.lossify()
	}
}

func (tbm *TIDBitmap) markLossy(blk types.BlockNumber) {
	if ep, ok := tbm.exact[blk]; ok {
		tbm.nentries -= int(ep.offsets.GetCardinality())
		delete(tbm.exact, blk)
	}
	if tbm.lossy.CheckedAdd(uint32(blk)) {
		tbm.nentries++
	}
}

// lossify converts exact pages to lossy ones until the bitmap uses at most half
// of maxEntries. If that is not reachable the bound is raised so that adding
// rows does not lossify again at once.
func (tbm *TIDBitmap) lossify() {
	blocks := roaring.New()
	for blk := range tbm.exact {
		blocks.Add(uint32(blk))
	}
	it := blocks.Iterator()
	for it.HasNext() && tbm.nentries > tbm.maxEntries/2 {
		tbm.markLossy(types.BlockNumber(it.Next()))
	}
	if tbm.nentries > tbm.maxEntries/2 {
		tbm.maxEntries = tbm.nentries * 2
	}
	common.ShPrintf(common.BITMAP_SCAN_INFO, "TIDBitmap::lossify exact=%d lossy=%d\n", len(tbm.exact), tbm.lossy.GetCardinality())
}

// MarkRecheck forces recheck of every exact page
func (tbm *TIDBitmap) MarkRecheck() {
	for _, ep := range tbm.exact {
		ep.recheck = true
	}
}

// Union adds every entry of other to tbm
func (tbm *TIDBitmap) Union(other *TIDBitmap) {
	common.SH_Assert(!tbm.iterating, "TIDBitmap: modified while iterating")
	it := other.lossy.Iterator()
	for it.HasNext() {
		tbm.markLossy(types.BlockNumber(it.Next()))
	}
	for blk, oep := range other.exact {
		if tbm.lossy.Contains(uint32(blk)) {
			continue
		}
		ep, ok := tbm.exact[blk]
		if !ok {
			ep = &exactPage{roaring.New(), false}
			tbm.exact[blk] = ep
		}
		before := ep.offsets.GetCardinality()
		ep.offsets.Or(oep.offsets)
		tbm.nentries += int(ep.offsets.GetCardinality() - before)
		ep.recheck = ep.recheck || oep.recheck
	}
	if tbm.nentries > tbm.maxEntries {
		tbm.lossify()
	}
}

// Intersect keeps only the entries which other also has.
// An exact page intersected with a lossy page keeps its offsets but needs recheck.
func (tbm *TIDBitmap) Intersect(other *TIDBitmap) {
	common.SH_Assert(!tbm.iterating, "TIDBitmap: modified while iterating")
	for blk, ep := range tbm.exact {
		before := int(ep.offsets.GetCardinality())
		if other.lossy.Contains(uint32(blk)) {
			ep.recheck = true
			continue
		}
		oep, ok := other.exact[blk]
		if !ok {
			tbm.nentries -= before
			delete(tbm.exact, blk)
			continue
		}
		ep.offsets.And(oep.offsets)
		ep.recheck = ep.recheck || oep.recheck
		tbm.nentries -= before - int(ep.offsets.GetCardinality())
		if ep.offsets.IsEmpty() {
			delete(tbm.exact, blk)
		}
	}

	it := tbm.lossy.Clone().Iterator()
	for it.HasNext() {
		blk := it.Next()
		if other.lossy.Contains(blk) {
			continue
		}
		if oep, ok := other.exact[types.BlockNumber(blk)]; ok {
			// lossy page becomes the exact page of other, with recheck
			tbm.lossy.Remove(blk)
			tbm.nentries--
			tbm.exact[types.BlockNumber(blk)] = &exactPage{oep.offsets.Clone(), true}
			tbm.nentries += int(oep.offsets.GetCardinality())
			continue
		}
		tbm.lossy.Remove(blk)
		tbm.nentries--
	}
}

func (tbm *TIDBitmap) IsEmpty() bool {
	return len(tbm.exact) == 0 && tbm.lossy.IsEmpty()
}

// NEntries returns offsets of exact pages plus lossy pages
func (tbm *TIDBitmap) NEntries() int {
	return tbm.nentries
}

func (tbm *TIDBitmap) NExactPages() int {
	return len(tbm.exact)
}

func (tbm *TIDBitmap) NLossyPages() int {
	return int(tbm.lossy.GetCardinality())
}

func (tbm *TIDBitmap) beginIterate() Iterator {
	tbm.iterating = true
	blocks := tbm.lossy.Clone()
	for blk := range tbm.exact {
		blocks.Add(uint32(blk))
	}
	return &tbmIterator{tbm, blocks.ToArray(), 0}
}

type tbmIterator struct {
	tbm    *TIDBitmap
	blocks []uint32 // ascending
	pos    int
}

func (it *tbmIterator) Next() *PageResult {
	if it.tbm == nil || it.pos >= len(it.blocks) {
		return nil
	}
	blk := it.blocks[it.pos]
	it.pos++

	if it.tbm.lossy.Contains(blk) {
		return &PageResult{types.BlockNumber(blk), Lossy, nil, true}
	}
	ep := it.tbm.exact[types.BlockNumber(blk)]
	offs := ep.offsets.ToArray()
	offsets := make([]types.OffsetNumber, len(offs))
	for i, o := range offs {
		offsets[i] = types.OffsetNumber(o)
	}
	return &PageResult{types.BlockNumber(blk), Exact, offsets, ep.recheck}
}

func (it *tbmIterator) End() {
	it.tbm = nil
	it.blocks = nil
}
