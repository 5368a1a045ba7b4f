// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package access

import (
	"fmt"
	"testing"

	"github.com/ryogrid/SamehadaBitmapScan/storage/buffer"
	"github.com/ryogrid/SamehadaBitmapScan/storage/disk"
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/column"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	testingpkg "github.com/ryogrid/SamehadaBitmapScan/testing/testing_assert"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

func newTestHeap(t *testing.T, poolSize uint32) (*TableHeap, *TransactionManager, *schema.Schema) {
	dm := disk.NewVirtualDiskManagerImpl(t.Name() + ".db")
	t.Cleanup(dm.ShutDown)
	bpm := buffer.NewBufferPoolManager(poolSize, dm)
	txnMgr := NewTransactionManager()

	columnA := column.NewColumn("a", types.Integer, false)
	columnB := column.NewColumn("b", types.Varchar, false)
	sc := schema.NewSchema([]*column.Column{columnA, columnB})
	return NewTableHeap(bpm, txnMgr), txnMgr, sc
}

func newRow(sc *schema.Schema, a int32, b string) *tuple.Tuple {
	return tuple.NewTupleFromSchema([]types.Value{types.NewInteger(a), types.NewVarchar(b)}, sc)
}

func TestTableHeap(t *testing.T) {
	th, txnMgr, sc := newTestHeap(t, 10)

	txn := txnMgr.Begin(REPEATABLE_READ)
	rids := make([]*page.RID, 0)
	// 94 rows of this schema fit on a page
	for i := 0; i < 100; i++ {
		rid, err := th.InsertTuple(newRow(sc, int32(i), fmt.Sprintf("row-%03d", i)), txn)
		testingpkg.Ok(t, err)
		rids = append(rids, rid)
	}
	txnMgr.Commit(txn)
	testingpkg.Equals(t, types.BlockNumber(2), th.NBlocks())
	testingpkg.Equals(t, types.BlockNumber(1), rids[99].GetBlockNum())
	testingpkg.Equals(t, 100, txn.GetWriteCount(INSERT))

	reader := txnMgr.Begin(REPEATABLE_READ)
	for i, rid := range rids {
		tup, err := th.FetchTuple(rid, reader.GetSnapshot())
		testingpkg.Ok(t, err)
		testingpkg.Equals(t, int32(i), tup.GetValue(sc, 0).ToInteger())
		testingpkg.Equals(t, fmt.Sprintf("row-%03d", i), tup.GetValue(sc, 1).ToVarchar())
		testingpkg.Equals(t, *rid, *tup.GetRID())
	}
	txnMgr.Commit(reader)

	// reopen from the first page
	reopened, err := InitTableHeap(th.GetBufferPoolManager(), txnMgr, th.GetFirstPageId())
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, th.NBlocks(), reopened.NBlocks())
}

func TestTableHeapVisibility(t *testing.T) {
	th, txnMgr, sc := newTestHeap(t, 10)

	writer := txnMgr.Begin(REPEATABLE_READ)
	early := txnMgr.Begin(REPEATABLE_READ)
	rid, err := th.InsertTuple(newRow(sc, 1, "a"), writer)
	testingpkg.Ok(t, err)

	// own insert is visible, others do not see uncommitted rows
	_, err = th.FetchTuple(rid, writer.GetSnapshot())
	testingpkg.Ok(t, err)
	_, err = th.FetchTuple(rid, early.GetSnapshot())
	testingpkg.Equals(t, ErrTupleNotFound, err)

	txnMgr.Commit(writer)
	// the snapshot of early was taken while writer was running
	_, err = th.FetchTuple(rid, early.GetSnapshot())
	testingpkg.Equals(t, ErrTupleNotFound, err)
	// READ_COMMITTED txn sees it after refresh
	rc := txnMgr.Begin(READ_COMMITTED)
	_, err = th.FetchTuple(rid, txnMgr.RefreshSnapshot(rc))
	testingpkg.Ok(t, err)

	deleter := txnMgr.Begin(REPEATABLE_READ)
	testingpkg.Ok(t, th.DeleteTuple(rid, deleter))
	// deleting twice by the same txn
	testingpkg.Equals(t, ErrTupleNotFound, th.DeleteTuple(rid, deleter))
	// concurrent writer
	testingpkg.Equals(t, ErrConcurrentUpdate, th.DeleteTuple(rid, rc))
	txnMgr.Commit(deleter)

	// rc still sees the row with its old snapshot
	_, err = th.FetchTuple(rid, rc.GetSnapshot())
	testingpkg.Ok(t, err)
	_, err = th.FetchTuple(rid, txnMgr.RefreshSnapshot(rc))
	testingpkg.Equals(t, ErrTupleNotFound, err)

	txnMgr.Commit(early)
	txnMgr.Commit(rc)
}

func TestTableHeapAbortedDeleteKeepsRow(t *testing.T) {
	th, txnMgr, sc := newTestHeap(t, 10)

	txn := txnMgr.Begin(REPEATABLE_READ)
	rid, err := th.InsertTuple(newRow(sc, 1, "a"), txn)
	testingpkg.Ok(t, err)
	txnMgr.Commit(txn)

	deleter := txnMgr.Begin(REPEATABLE_READ)
	testingpkg.Ok(t, th.DeleteTuple(rid, deleter))
	txnMgr.Abort(deleter)

	reader := txnMgr.Begin(REPEATABLE_READ)
	_, err = th.FetchTuple(rid, reader.GetSnapshot())
	testingpkg.Ok(t, err)
	// the row can be deleted again
	testingpkg.Ok(t, th.DeleteTuple(rid, reader))
	txnMgr.Commit(reader)
}

func TestTableHeapHotUpdateAndPrune(t *testing.T) {
	th, txnMgr, sc := newTestHeap(t, 10)

	txn := txnMgr.Begin(REPEATABLE_READ)
	root, err := th.InsertTuple(newRow(sc, 1, "v1"), txn)
	testingpkg.Ok(t, err)
	txnMgr.Commit(txn)

	old := txnMgr.Begin(REPEATABLE_READ)

	updater := txnMgr.Begin(REPEATABLE_READ)
	newRID, hot, err := th.UpdateTuple(newRow(sc, 1, "v2"), root, updater, true)
	testingpkg.Ok(t, err)
	testingpkg.SimpleAssert(t, hot)
	testingpkg.Equals(t, root.GetBlockNum(), newRID.GetBlockNum())
	testingpkg.SimpleAssert(t, root.GetOffset() != newRID.GetOffset())
	txnMgr.Commit(updater)

	// lookup through the root finds the version of each snapshot
	reader := txnMgr.Begin(REPEATABLE_READ)
	tup, err := th.FetchTuple(root, reader.GetSnapshot())
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, "v2", tup.GetValue(sc, 1).ToVarchar())
	testingpkg.Equals(t, *newRID, *tup.GetRID())
	tup, err = th.FetchTuple(root, old.GetSnapshot())
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, "v1", tup.GetValue(sc, 1).ToVarchar())

	// heap only tuples are not reachable directly
	_, err = th.FetchTuple(newRID, reader.GetSnapshot())
	testingpkg.Equals(t, ErrTupleNotFound, err)

	// old still needs v1
	tp, err := th.ReadBuffer(root.GetBlockNum())
	testingpkg.Ok(t, err)
	testingpkg.SimpleAssert(t, !th.PruneOpt(tp, txnMgr.GetOldestXmin()))
	txnMgr.Commit(old)
	txnMgr.Commit(reader)

	testingpkg.SimpleAssert(t, th.PruneOpt(tp, txnMgr.GetOldestXmin()))
	testingpkg.SimpleAssert(t, tp.GetLinePointer(root.GetOffset()).IsRedirect())
	testingpkg.Equals(t, types.InvalidTxnID, tp.GetPruneXid())
	th.ReleaseBuffer(tp, false)

	after := txnMgr.Begin(REPEATABLE_READ)
	tup, err = th.FetchTuple(root, after.GetSnapshot())
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, "v2", tup.GetValue(sc, 1).ToVarchar())
	txnMgr.Commit(after)
}

func TestTableHeapPruneDeadChainAndPinnedPage(t *testing.T) {
	th, txnMgr, sc := newTestHeap(t, 10)

	txn := txnMgr.Begin(REPEATABLE_READ)
	rid, err := th.InsertTuple(newRow(sc, 1, "gone"), txn)
	testingpkg.Ok(t, err)
	keep, err := th.InsertTuple(newRow(sc, 2, "kept"), txn)
	testingpkg.Ok(t, err)
	txnMgr.Commit(txn)

	deleter := txnMgr.Begin(REPEATABLE_READ)
	testingpkg.Ok(t, th.DeleteTuple(rid, deleter))
	txnMgr.Commit(deleter)

	tp, err := th.ReadBuffer(rid.GetBlockNum())
	testingpkg.Ok(t, err)
	other, err := th.ReadBuffer(rid.GetBlockNum())
	testingpkg.Ok(t, err)
	// somebody else pins the page
	testingpkg.SimpleAssert(t, !th.PruneOpt(tp, txnMgr.GetOldestXmin()))
	th.ReleaseBuffer(other, false)

	freeBefore := tp.getFreeSpaceRemaining()
	testingpkg.SimpleAssert(t, th.PruneOpt(tp, txnMgr.GetOldestXmin()))
	testingpkg.SimpleAssert(t, tp.GetLinePointer(rid.GetOffset()).IsDead())
	testingpkg.SimpleAssert(t, tp.getFreeSpaceRemaining() > freeBefore)
	th.ReleaseBuffer(tp, false)

	reader := txnMgr.Begin(REPEATABLE_READ)
	tup, err := th.FetchTuple(keep, reader.GetSnapshot())
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, "kept", tup.GetValue(sc, 1).ToVarchar())
	_, err = th.FetchTuple(rid, reader.GetSnapshot())
	testingpkg.Equals(t, ErrTupleNotFound, err)
	txnMgr.Commit(reader)
}

func TestTableHeapNonHotUpdate(t *testing.T) {
	th, txnMgr, sc := newTestHeap(t, 10)

	txn := txnMgr.Begin(REPEATABLE_READ)
	rid, err := th.InsertTuple(newRow(sc, 1, "v1"), txn)
	testingpkg.Ok(t, err)
	txnMgr.Commit(txn)

	updater := txnMgr.Begin(REPEATABLE_READ)
	newRID, hot, err := th.UpdateTuple(newRow(sc, 1, "v2"), rid, updater, false)
	testingpkg.Ok(t, err)
	testingpkg.SimpleAssert(t, !hot)
	txnMgr.Commit(updater)

	reader := txnMgr.Begin(REPEATABLE_READ)
	// the old root is gone and the new version has its own root
	_, err = th.FetchTuple(rid, reader.GetSnapshot())
	testingpkg.Equals(t, ErrTupleNotFound, err)
	tup, err := th.FetchTuple(newRID, reader.GetSnapshot())
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, "v2", tup.GetValue(sc, 1).ToVarchar())
	txnMgr.Commit(reader)
}

func TestTableHeapTruncate(t *testing.T) {
	th, txnMgr, sc := newTestHeap(t, 10)

	txn := txnMgr.Begin(REPEATABLE_READ)
	for i := 0; i < 200; i++ {
		_, err := th.InsertTuple(newRow(sc, int32(i), fmt.Sprintf("row-%03d", i)), txn)
		testingpkg.Ok(t, err)
	}
	txnMgr.Commit(txn)
	testingpkg.Equals(t, types.BlockNumber(3), th.NBlocks())

	testingpkg.Ok(t, th.Truncate(1))
	testingpkg.Equals(t, types.BlockNumber(1), th.NBlocks())
	_, err := th.ReadBuffer(1)
	testingpkg.Equals(t, ErrBlockOutOfRange, err)

	reopened, err := InitTableHeap(th.GetBufferPoolManager(), txnMgr, th.GetFirstPageId())
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, types.BlockNumber(1), reopened.NBlocks())
}

func TestHeapScanSequential(t *testing.T) {
	th, txnMgr, sc := newTestHeap(t, 10)

	txn := txnMgr.Begin(REPEATABLE_READ)
	rids := make([]*page.RID, 0)
	for i := 0; i < 150; i++ {
		rid, err := th.InsertTuple(newRow(sc, int32(i), fmt.Sprintf("row-%03d", i)), txn)
		testingpkg.Ok(t, err)
		rids = append(rids, rid)
	}
	txnMgr.Commit(txn)

	deleter := txnMgr.Begin(REPEATABLE_READ)
	for i := 0; i < 150; i += 10 {
		testingpkg.Ok(t, th.DeleteTuple(rids[i], deleter))
	}
	txnMgr.Commit(deleter)

	reader := txnMgr.Begin(REPEATABLE_READ)
	scan := BeginScan(th, 1, reader, reader.GetSnapshot(), nil)
	cnt := 0
	prev := int32(-1)
	for {
		tup, err := scan.GetNext()
		testingpkg.Ok(t, err)
		if tup == nil {
			break
		}
		val := tup.GetValue(sc, 0).ToInteger()
		testingpkg.Assert(t, val > prev, "rows must come out in insertion order")
		testingpkg.Assert(t, val%10 != 0, "deleted row returned")
		prev = val
		cnt++
	}
	testingpkg.Equals(t, 135, cnt)
	testingpkg.Assert(t, !scan.HasPin(), "pin should be released at the end")

	scan.ReScan()
	tup, err := scan.GetNext()
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, int32(1), tup.GetValue(sc, 0).ToInteger())
	scan.EndScan()
	txnMgr.Commit(reader)
}
