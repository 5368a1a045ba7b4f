// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package catalog

import (
	"fmt"
	"testing"

	"github.com/ryogrid/SamehadaBitmapScan/storage/access"
	"github.com/ryogrid/SamehadaBitmapScan/storage/buffer"
	"github.com/ryogrid/SamehadaBitmapScan/storage/disk"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/column"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	testingpkg "github.com/ryogrid/SamehadaBitmapScan/testing/testing_assert"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// test reloading serialized catalog info in db file at lauching system
func TestTableCatalogReload(t *testing.T) {
	dm := disk.NewVirtualDiskManagerImpl(t.Name() + ".db")
	defer dm.ShutDown()
	bpm := buffer.NewBufferPoolManager(uint32(32), dm)
	txnMgr := access.NewTransactionManager()

	txn := txnMgr.Begin(access.REPEATABLE_READ)
	catalogOld, err := BootstrapCatalog(bpm, txnMgr, txn)
	testingpkg.Ok(t, err)

	columnA := column.NewColumn("a", types.Integer, false)
	columnB := column.NewColumn("b", types.Varchar, true)
	schema_ := schema.NewSchema([]*column.Column{columnA, columnB})

	tableMetadata, err := catalogOld.CreateTable("test_1", schema_, txn)
	testingpkg.Ok(t, err)
	_, err = catalogOld.CreateTable("test_1", schema_, txn)
	testingpkg.Equals(t, ErrTableExists, err)

	for i := 0; i < 120; i++ {
		row := tuple.NewTupleFromSchema([]types.Value{types.NewInteger(int32(i)), types.NewVarchar(fmt.Sprintf("v%d", i%7))}, schema_)
		rid, err := tableMetadata.Table().InsertTuple(row, txn)
		testingpkg.Ok(t, err)
		tableMetadata.GetIndex(1).InsertEntry(row, *rid)
	}
	txnMgr.Commit(txn)
	bpm.FlushAllPages()

	// reopen with an empty buffer pool
	bpm2 := buffer.NewBufferPoolManager(uint32(32), dm)
	txn2 := txnMgr.Begin(access.REPEATABLE_READ)
	catalogRecovered, err := GetCatalog(bpm2, txnMgr, txn2)
	testingpkg.Ok(t, err)

	tableMetadataRecovered := catalogRecovered.GetTableByName("test_1")
	testingpkg.Assert(t, tableMetadataRecovered != nil, "test_1 should be reloaded")
	testingpkg.Equals(t, tableMetadata.OID(), tableMetadataRecovered.OID())
	testingpkg.Equals(t, uint32(2), tableMetadataRecovered.Schema().GetColumnCount())
	testingpkg.Equals(t, "b", tableMetadataRecovered.Schema().GetColumn(1).GetColumnName())
	testingpkg.Equals(t, tableMetadata.Table().NBlocks(), tableMetadataRecovered.Table().NBlocks())

	testingpkg.Assert(t, tableMetadataRecovered.GetIndex(0) == nil, "column a has no index")
	idx := tableMetadataRecovered.GetIndex(1)
	testingpkg.Assert(t, idx != nil, "index of column b should be rebuilt")
	testingpkg.Equals(t, "test_1_b_idx", idx.GetMetadata().GetName())
	testingpkg.Equals(t, "test_1", idx.GetMetadata().GetTableName())
	testingpkg.Equals(t, 120, idx.NEntries())
	key := tuple.NewTupleFromSchema([]types.Value{types.NewInteger(0), types.NewVarchar("v3")}, schema_)
	testingpkg.Equals(t, 17, len(idx.ScanKey(key)))

	columnsCatalog := catalogRecovered.GetTableByOID(ColumnsCatalogOID)
	testingpkg.Equals(t, "columns_catalog", columnsCatalog.Name())

	// oid is not reused
	other, err := catalogRecovered.CreateTable("test_2", schema_, txn2)
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, tableMetadata.OID()+1, other.OID())
	txnMgr.Commit(txn2)
}

func TestCatalogOpenClose(t *testing.T) {
	dm := disk.NewVirtualDiskManagerImpl(t.Name() + ".db")
	defer dm.ShutDown()
	bpm := buffer.NewBufferPoolManager(uint32(16), dm)
	txnMgr := access.NewTransactionManager()
	txn := txnMgr.Begin(access.REPEATABLE_READ)
	c, err := BootstrapCatalog(bpm, txnMgr, txn)
	testingpkg.Ok(t, err)

	schema_ := schema.NewSchema([]*column.Column{column.NewColumn("a", types.Integer, true)})
	tm, err := c.CreateTable("t", schema_, txn)
	testingpkg.Ok(t, err)
	txnMgr.Commit(txn)

	rel := c.OpenRelation(tm.OID())
	testingpkg.Equals(t, tm, rel)
	c.OpenRelation(tm.OID())
	testingpkg.Equals(t, int32(2), tm.OpenCount())
	c.CloseRelation(rel)
	c.CloseRelation(rel)
	testingpkg.Equals(t, int32(0), tm.OpenCount())
	testingpkg.Assert(t, c.OpenRelation(999) == nil, "unknown oid")
}
