// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package access

import (
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/errors"
	"github.com/ryogrid/SamehadaBitmapScan/storage/buffer"
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

const ErrBufferPoolExhausted = errors.Error("could not pin page. buffer pool is exhausted")
const ErrBlockOutOfRange = errors.Error("block number is out of range of relation")
const ErrConcurrentUpdate = errors.Error("tuple was concurrently updated or deleted")

// TableHeap represents a relation. Its pages are addressed by block number
// and linked through NextPageId so the heap can be reopened from the first page.
type TableHeap struct {
	bpm         *buffer.BufferPoolManager
	txnMgr      *TransactionManager
	firstPageId types.PageID
	blocks      []types.PageID // index is BlockNumber
	latch       common.ReaderWriterLatch
}

// NewTableHeap creates an empty relation
func NewTableHeap(bpm *buffer.BufferPoolManager, txnMgr *TransactionManager) *TableHeap {
	return &TableHeap{bpm, txnMgr, types.InvalidPageID, make([]types.PageID, 0), common.NewRWLatch()}
}

// InitTableHeap opens an existing relation which starts at firstPageId
func InitTableHeap(bpm *buffer.BufferPoolManager, txnMgr *TransactionManager, firstPageId types.PageID) (*TableHeap, error) {
	t := NewTableHeap(bpm, txnMgr)
	t.firstPageId = firstPageId
	for pageId := firstPageId; pageId.IsValid(); {
		tp := CastPageAsTablePage(bpm.FetchPage(pageId))
		if tp == nil {
			return nil, ErrBufferPoolExhausted
		}
		t.blocks = append(t.blocks, pageId)
		next := tp.GetNextPageId()
		bpm.UnpinPage(pageId, false)
		pageId = next
	}
	return t, nil
}

func (t *TableHeap) GetFirstPageId() types.PageID {
	t.latch.RLock()
	defer t.latch.RUnlock()
	return t.firstPageId
}

// NBlocks returns the current length of the relation
func (t *TableHeap) NBlocks() types.BlockNumber {
	t.latch.RLock()
	defer t.latch.RUnlock()
	return types.BlockNumber(len(t.blocks))
}

func (t *TableHeap) getPageId(blockNum types.BlockNumber) (types.PageID, bool) {
	t.latch.RLock()
	defer t.latch.RUnlock()
	if blockNum >= types.BlockNumber(len(t.blocks)) {
		return types.InvalidPageID, false
	}
	return t.blocks[blockNum], true
}

// ReadBuffer pins the page of blockNum. Caller must release it with ReleaseBuffer.
func (t *TableHeap) ReadBuffer(blockNum types.BlockNumber) (*TablePage, error) {
	pageId, ok := t.getPageId(blockNum)
	if !ok {
		return nil, ErrBlockOutOfRange
	}
	tp := CastPageAsTablePage(t.bpm.FetchPage(pageId))
	if tp == nil {
		return nil, ErrBufferPoolExhausted
	}
	return tp, nil
}

// ReleaseBuffer drops a pin taken by ReadBuffer
func (t *TableHeap) ReleaseBuffer(tp *TablePage, isDirty bool) {
	if err := t.bpm.UnpinPage(tp.GetPageId(), isDirty); err != nil {
		common.ShPrintf(common.ERROR, "TableHeap::ReleaseBuffer pageId=%d %v\n", tp.GetPageId(), err)
	}
}

// PrefetchBlock is a read-ahead hint. It returns at once.
func (t *TableHeap) PrefetchBlock(blockNum types.BlockNumber) {
	pageId, ok := t.getPageId(blockNum)
	if !ok {
		return
	}
	common.ShPrintf(common.PREFETCH_INFO, "TableHeap::PrefetchBlock block=%d pageId=%d\n", blockNum, pageId)
	t.bpm.PrefetchPage(pageId)
}

// InsertTuple inserts tuple_ as a new version created by txn.
// The last block is tried first and a block is added when it is full.
func (t *TableHeap) InsertTuple(tuple_ *tuple.Tuple, txn *Transaction) (*page.RID, error) {
	if common.EnableDebug {
		common.ShPrintf(common.RDB_OP_FUNC_CALL, "TableHeap::InsertTuple called. txn.txn_id:%v\n", txn.GetTransactionId())
	}
	rid, err := t.insertVersion(tuple_.Data(), txn, 0)
	if err != nil {
		return nil, err
	}
	tuple_.SetRID(rid)
	txn.AddWrite(INSERT)
	return rid, nil
}

func (t *TableHeap) insertVersion(data []byte, txn *Transaction, infomask uint16) (*page.RID, error) {
	if len(data) == 0 {
		return nil, ErrEmptyTuple
	}
	if SizeTupleHeader+uint32(len(data))+sizeLinePointer > common.PageSize-sizeTablePageHeader {
		return nil, ErrNotEnoughSpace
	}

	t.latch.WLock()
	defer t.latch.WUnlock()

	var lastPage *TablePage
	if n := len(t.blocks); n > 0 {
		lastPage = CastPageAsTablePage(t.bpm.FetchPage(t.blocks[n-1]))
		if lastPage == nil {
			return nil, ErrBufferPoolExhausted
		}
		lastPage.WLatch()
		rid, err := t.placeVersion(lastPage, types.BlockNumber(n-1), data, txn, infomask)
		if err == nil {
			lastPage.WUnlatch()
			t.bpm.UnpinPage(lastPage.GetPageId(), true)
			return rid, nil
		}
		if err != ErrNotEnoughSpace {
			lastPage.WUnlatch()
			t.bpm.UnpinPage(lastPage.GetPageId(), false)
			return nil, err
		}
	}

	newPage, blockNum, err := t.extendLocked(lastPage)
	if err != nil {
		return nil, err
	}
	rid, err := t.placeVersion(newPage, blockNum, data, txn, infomask)
	newPage.WUnlatch()
	t.bpm.UnpinPage(newPage.GetPageId(), true)
	return rid, err
}

// Extend appends an empty block to the relation
func (t *TableHeap) Extend() (types.BlockNumber, error) {
	t.latch.WLock()
	defer t.latch.WUnlock()

	var lastPage *TablePage
	if n := len(t.blocks); n > 0 {
		lastPage = CastPageAsTablePage(t.bpm.FetchPage(t.blocks[n-1]))
		if lastPage == nil {
			return types.InvalidBlockNumber, ErrBufferPoolExhausted
		}
		lastPage.WLatch()
	}
	newPage, blockNum, err := t.extendLocked(lastPage)
	if err != nil {
		return types.InvalidBlockNumber, err
	}
	newPage.WUnlatch()
	t.bpm.UnpinPage(newPage.GetPageId(), true)
	return blockNum, nil
}

// extendLocked links a new page after lastPage (nil for an empty relation)
// and returns it pinned and write latched. lastPage is unlatched and unpinned.
// Caller must hold the heap latch.
func (t *TableHeap) extendLocked(lastPage *TablePage) (*TablePage, types.BlockNumber, error) {
	newPage := CastPageAsTablePage(t.bpm.NewPage())
	if newPage == nil {
		if lastPage != nil {
			lastPage.WUnlatch()
			t.bpm.UnpinPage(lastPage.GetPageId(), false)
		}
		return nil, types.InvalidBlockNumber, ErrBufferPoolExhausted
	}
	blockNum := types.BlockNumber(len(t.blocks))
	newPage.WLatch()
	newPage.Init(newPage.GetPageId(), blockNum)
	if lastPage != nil {
		lastPage.SetNextPageId(newPage.GetPageId())
		lastPage.WUnlatch()
		t.bpm.UnpinPage(lastPage.GetPageId(), true)
	} else {
		t.firstPageId = newPage.GetPageId()
	}
	t.blocks = append(t.blocks, newPage.GetPageId())
	common.ShPrintf(common.DEBUG_INFO, "TableHeap: extended to block %d (pageId=%d)\n", blockNum, newPage.GetPageId())
	return newPage, blockNum, nil
}

// placeVersion must be called with tp write latched
func (t *TableHeap) placeVersion(tp *TablePage, blockNum types.BlockNumber, data []byte, txn *Transaction, infomask uint16) (*page.RID, error) {
	hdr := &HeapTupleHeader{txn.GetTransactionId(), types.InvalidTxnID, blockNum, types.InvalidOffsetNumber, infomask}
	off, err := tp.InsertTuple(data, hdr)
	if err != nil {
		return nil, err
	}
	// ctid points to itself until the version is updated
	hdr.CtidOffset = off
	tp.SetTupleHeader(off, hdr)
	rid := page.NewRID(blockNum, off)
	return &rid, nil
}

// lockVersionForWrite checks the version at rid can be deleted or updated by txn
// and returns its header. tp must be write latched.
func (t *TableHeap) lockVersionForWrite(tp *TablePage, rid *page.RID, txn *Transaction) (*HeapTupleHeader, error) {
	if !rid.GetOffset().IsValid() || rid.GetOffset() > tp.GetMaxOffsetNumber() {
		return nil, ErrTupleNotFound
	}
	if !tp.GetLinePointer(rid.GetOffset()).IsNormal() {
		return nil, ErrTupleNotFound
	}
	hdr := tp.GetTupleHeader(rid.GetOffset())
	if !TupleSatisfiesVisibility(hdr, txn.GetSnapshot(), t.txnMgr) {
		return nil, ErrTupleNotFound
	}
	if hdr.Xmax.IsValid() && hdr.Xmax != txn.GetTransactionId() && !t.txnMgr.IsAborted(hdr.Xmax) {
		// deleter is running, or committed after my snapshot
		return nil, ErrConcurrentUpdate
	}
	return hdr, nil
}

// DeleteTuple marks the version at rid deleted by txn
func (t *TableHeap) DeleteTuple(rid *page.RID, txn *Transaction) error {
	if common.EnableDebug {
		common.ShPrintf(common.RDB_OP_FUNC_CALL, "TableHeap::DeleteTuple called. txn.txn_id:%v rid:%v\n", txn.GetTransactionId(), *rid)
	}
	tp, err := t.ReadBuffer(rid.GetBlockNum())
	if err != nil {
		return err
	}
	tp.WLatch()
	hdr, err := t.lockVersionForWrite(tp, rid, txn)
	if err != nil {
		tp.WUnlatch()
		t.ReleaseBuffer(tp, false)
		return err
	}
	hdr.Xmax = txn.GetTransactionId()
	hdr.Infomask &^= HEAP_HOT_UPDATED
	hdr.CtidBlock = rid.GetBlockNum()
	hdr.CtidOffset = rid.GetOffset()
	tp.SetTupleHeader(rid.GetOffset(), hdr)
	tp.SetPrunable(txn.GetTransactionId())
	tp.WUnlatch()
	t.ReleaseBuffer(tp, true)

	txn.AddWrite(DELETE)
	return nil
}

// UpdateTuple creates a new version of the row at rid.
// When allowHot is true and the page of rid has room, the new version is a
// heap only tuple on the same page (HOT update) and no index entry is needed.
// Returned bool is true for a HOT update.
func (t *TableHeap) UpdateTuple(newTuple *tuple.Tuple, rid *page.RID, txn *Transaction, allowHot bool) (*page.RID, bool, error) {
	if common.EnableDebug {
		common.ShPrintf(common.RDB_OP_FUNC_CALL, "TableHeap::UpdateTuple called. txn.txn_id:%v rid:%v hot:%v\n", txn.GetTransactionId(), *rid, allowHot)
	}
	tp, err := t.ReadBuffer(rid.GetBlockNum())
	if err != nil {
		return nil, false, err
	}
	if allowHot && !tp.HasSpaceFor(newTuple.Size()) {
		t.PruneOpt(tp, t.txnMgr.GetOldestXmin())
	}

	tp.WLatch()
	oldHdr, err := t.lockVersionForWrite(tp, rid, txn)
	if err != nil {
		tp.WUnlatch()
		t.ReleaseBuffer(tp, false)
		return nil, false, err
	}

	if allowHot && tp.HasSpaceFor(newTuple.Size()) {
		newRID, err := t.placeVersion(tp, rid.GetBlockNum(), newTuple.Data(), txn, HEAP_ONLY_TUPLE)
		if err != nil {
			tp.WUnlatch()
			t.ReleaseBuffer(tp, false)
			return nil, false, err
		}
		oldHdr.Xmax = txn.GetTransactionId()
		oldHdr.Infomask |= HEAP_HOT_UPDATED
		oldHdr.CtidBlock = newRID.GetBlockNum()
		oldHdr.CtidOffset = newRID.GetOffset()
		tp.SetTupleHeader(rid.GetOffset(), oldHdr)
		tp.SetPrunable(txn.GetTransactionId())
		tp.WUnlatch()
		t.ReleaseBuffer(tp, true)

		newTuple.SetRID(newRID)
		txn.AddWrite(UPDATE)
		return newRID, true, nil
	}

	// the old version is deleted here and the new one goes wherever there is room
	oldHdr.Xmax = txn.GetTransactionId()
	oldHdr.Infomask &^= HEAP_HOT_UPDATED
	tp.SetTupleHeader(rid.GetOffset(), oldHdr)
	tp.SetPrunable(txn.GetTransactionId())
	tp.WUnlatch()
	t.ReleaseBuffer(tp, true)

	newRID, err := t.insertVersion(newTuple.Data(), txn, 0)
	if err != nil {
		return nil, false, err
	}
	newTuple.SetRID(newRID)

	tp, err = t.ReadBuffer(rid.GetBlockNum())
	if err != nil {
		return nil, false, err
	}
	tp.WLatch()
	oldHdr = tp.GetTupleHeader(rid.GetOffset())
	oldHdr.CtidBlock = newRID.GetBlockNum()
	oldHdr.CtidOffset = newRID.GetOffset()
	tp.SetTupleHeader(rid.GetOffset(), oldHdr)
	tp.WUnlatch()
	t.ReleaseBuffer(tp, true)

	txn.AddWrite(UPDATE)
	return newRID, false, nil
}

// FetchTuple returns the member of the HOT chain rooted at rid visible to snapshot
func (t *TableHeap) FetchTuple(rid *page.RID, snapshot *Snapshot) (*tuple.Tuple, error) {
	tp, err := t.ReadBuffer(rid.GetBlockNum())
	if err != nil {
		return nil, err
	}
	defer t.ReleaseBuffer(tp, false)

	tp.RLatch()
	defer tp.RUnlatch()
	off, ok, _ := HotSearchBuffer(tp, rid.GetOffset(), snapshot, t.txnMgr, t.txnMgr.GetOldestXmin())
	if !ok {
		return nil, ErrTupleNotFound
	}
	data := tp.GetTupleData(off)
	found := page.NewRID(rid.GetBlockNum(), off)
	return tuple.NewTuple(&found, uint32(len(data)), data), nil
}

// FetchVersion returns the version at rid itself when snapshot sees it.
// Unlike FetchTuple the HOT chain is not followed.
func (t *TableHeap) FetchVersion(rid *page.RID, snapshot *Snapshot) (*tuple.Tuple, error) {
	tp, err := t.ReadBuffer(rid.GetBlockNum())
	if err != nil {
		return nil, err
	}
	defer t.ReleaseBuffer(tp, false)

	tp.RLatch()
	defer tp.RUnlatch()
	off := rid.GetOffset()
	if !off.IsValid() || off > tp.GetMaxOffsetNumber() || !tp.GetLinePointer(off).IsNormal() {
		return nil, ErrTupleNotFound
	}
	if !TupleSatisfiesVisibility(tp.GetTupleHeader(off), snapshot, t.txnMgr) {
		return nil, ErrTupleNotFound
	}
	data := tp.GetTupleData(off)
	found := *rid
	return tuple.NewTuple(&found, uint32(len(data)), data), nil
}

// Truncate cuts the relation down to nblocks blocks. Pages of removed blocks
// must not be pinned.
func (t *TableHeap) Truncate(nblocks types.BlockNumber) error {
	t.latch.WLock()
	defer t.latch.WUnlock()

	if nblocks >= types.BlockNumber(len(t.blocks)) {
		return nil
	}
	for b := len(t.blocks) - 1; b >= int(nblocks); b-- {
		if err := t.bpm.DeletePage(t.blocks[b]); err != nil {
			return err
		}
		t.blocks = t.blocks[:b]
	}

	if nblocks == 0 {
		t.firstPageId = types.InvalidPageID
		return nil
	}
	last := CastPageAsTablePage(t.bpm.FetchPage(t.blocks[nblocks-1]))
	if last == nil {
		return ErrBufferPoolExhausted
	}
	last.WLatch()
	last.SetNextPageId(types.InvalidPageID)
	last.WUnlatch()
	t.bpm.UnpinPage(last.GetPageId(), true)
	return nil
}

func (t *TableHeap) GetBufferPoolManager() *buffer.BufferPoolManager {
	return t.bpm
}

func (t *TableHeap) GetTransactionManager() *TransactionManager {
	return t.txnMgr
}
