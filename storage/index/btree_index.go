package index

import (
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/storage/bitmap"
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	"github.com/ryogrid/SamehadaBitmapScan/types"
	"github.com/tidwall/btree"
)

// locations are collected in chunks of this size before being passed to a bitmap
const bitmapAddBatch = 256

type btreeItem struct {
	key types.Value
	rid page.RID
}

// ordered by key, then by location so duplicated keys can be stored
func btreeItemLess(a, b btreeItem) bool {
	if a.key.Less(b.key) {
		return true
	}
	if b.key.Less(a.key) {
		return false
	}
	return a.rid.Less(b.rid)
}

// BTreeIndex is an in memory ordered index on one column
type BTreeIndex struct {
	tree     *btree.BTreeG[btreeItem]
	metadata *IndexMetadata
}

func NewBTreeIndex(metadata *IndexMetadata) *BTreeIndex {
	return &BTreeIndex{
		tree:     btree.NewBTreeG(btreeItemLess),
		metadata: metadata,
	}
}

func (bi *BTreeIndex) keyOf(key *tuple.Tuple) types.Value {
	return key.GetValue(bi.metadata.GetTupleSchema(), bi.metadata.GetKeyAttr())
}

func (bi *BTreeIndex) InsertEntry(key *tuple.Tuple, rid page.RID) {
	bi.tree.Set(btreeItem{bi.keyOf(key), rid})
}

func (bi *BTreeIndex) DeleteEntry(key *tuple.Tuple, rid page.RID) {
	if _, ok := bi.tree.Delete(btreeItem{bi.keyOf(key), rid}); !ok {
		common.ShPrintf(common.DEBUG_INFO, "BTreeIndex::DeleteEntry: entry not found %v %v\n", bi.keyOf(key), rid)
	}
}

func (bi *BTreeIndex) ScanKey(key *tuple.Tuple) []page.RID {
	keyVal := bi.keyOf(key)
	ret := make([]page.RID, 0)
	bi.tree.Ascend(btreeItem{keyVal, page.RID{}}, func(item btreeItem) bool {
		if !item.key.CompareEquals(keyVal) {
			return false
		}
		ret = append(ret, item.rid)
		return true
	})
	return ret
}

func (bi *BTreeIndex) GetRangeScanIterator(start *types.Value, end *types.Value) IndexRangeScanIterator {
	// iterate over a copy so writers are not blocked while the scan is open
	ret := &btreeRangeScanIterator{iter: bi.tree.Copy().Iter(), end: end, firstCall: true}
	// IterG is a value, position the one held by ret
	if start != nil {
		ret.hasMore = ret.iter.Seek(btreeItem{*start, page.RID{}})
	} else {
		ret.hasMore = ret.iter.First()
	}
	return ret
}

func (bi *BTreeIndex) GetBitmap(start *types.Value, end *types.Value, tbm *bitmap.TIDBitmap, recheck bool) int64 {
	itr := bi.GetRangeScanIterator(start, end)
	defer itr.Close()

	var cnt int64
	batch := make([]page.RID, 0, bitmapAddBatch)
	for {
		ok, _, rid := itr.Next()
		if !ok {
			break
		}
		batch = append(batch, *rid)
		cnt++
		if len(batch) == bitmapAddBatch {
			tbm.AddTuples(batch, recheck)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		tbm.AddTuples(batch, recheck)
	}
	return cnt
}

func (bi *BTreeIndex) EqualCursor(key types.Value) bitmap.RIDCursor {
	itr := bi.GetRangeScanIterator(&key, &key)
	return &equalCursor{itr}
}

func (bi *BTreeIndex) NEntries() int {
	return bi.tree.Len()
}

func (bi *BTreeIndex) GetMetadata() *IndexMetadata { return bi.metadata }

type btreeRangeScanIterator struct {
	iter      btree.IterG[btreeItem]
	end       *types.Value
	firstCall bool
	hasMore   bool
}

func (it *btreeRangeScanIterator) Next() (bool, *types.Value, *page.RID) {
	if it.firstCall {
		it.firstCall = false
	} else if it.hasMore {
		it.hasMore = it.iter.Next()
	}
	if !it.hasMore {
		return false, nil, nil
	}
	item := it.iter.Item()
	if it.end != nil && it.end.Less(item.key) {
		it.hasMore = false
		return false, nil, nil
	}
	return true, &item.key, &item.rid
}

func (it *btreeRangeScanIterator) Close() {
	it.iter.Release()
}

type equalCursor struct {
	itr IndexRangeScanIterator
}

func (c *equalCursor) Next() (page.RID, bool) {
	ok, _, rid := c.itr.Next()
	if !ok {
		return page.RID{}, false
	}
	return *rid, true
}

func (c *equalCursor) Close() {
	c.itr.Close()
}
