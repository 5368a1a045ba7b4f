// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package catalog

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/errors"
	"github.com/ryogrid/SamehadaBitmapScan/storage/access"
	"github.com/ryogrid/SamehadaBitmapScan/storage/buffer"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/column"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// TableCatalogPageId indicates the page where the table catalog can be found
// The first page is reserved for the table catalog
const TableCatalogPageId = 0

// ColumnsCatalogPageId indicates the page where the columns catalog can be found
// The second page is reserved for the columns catalog
const ColumnsCatalogPageId = 1

const ColumnsCatalogOID = 0

const ErrTableExists = errors.Error("table already exists")
const ErrTableNotFound = errors.Error("table not found")

// Catalog handles table creation and table lookup.
// Table definitions are stored in two heaps, so they survive a restart.
// Indexes live in memory only and are rebuilt when the catalog is loaded.
type Catalog struct {
	bpm         *buffer.BufferPoolManager
	txnMgr      *access.TransactionManager
	tableIds    *xsync.MapOf[uint32, *TableMetadata]
	tableNames  *xsync.MapOf[string, *TableMetadata]
	nextTableId atomic.Uint32
	tableHeap   *access.TableHeap
}

func newCatalog(bpm *buffer.BufferPoolManager, txnMgr *access.TransactionManager, tableHeap *access.TableHeap) *Catalog {
	return &Catalog{
		bpm:        bpm,
		txnMgr:     txnMgr,
		tableIds:   xsync.NewMapOf[uint32, *TableMetadata](),
		tableNames: xsync.NewMapOf[string, *TableMetadata](),
		tableHeap:  tableHeap,
	}
}

// BootstrapCatalog bootstrap the systems' catalogs on the first database initialization
func BootstrapCatalog(bpm *buffer.BufferPoolManager, txnMgr *access.TransactionManager, txn *access.Transaction) (*Catalog, error) {
	tableCatalog := newCatalog(bpm, txnMgr, access.NewTableHeap(bpm, txnMgr))
	if _, err := tableCatalog.CreateTable("columns_catalog", columnsCatalogSchema, txn); err != nil {
		return nil, err
	}
	return tableCatalog, nil
}

// GetCatalog reads all information about tables and columns from disk and put it on memory
func GetCatalog(bpm *buffer.BufferPoolManager, txnMgr *access.TransactionManager, txn *access.Transaction) (*Catalog, error) {
	tableCatalogHeap, err := access.InitTableHeap(bpm, txnMgr, TableCatalogPageId)
	if err != nil {
		return nil, err
	}
	columnsCatalogHeap, err := access.InitTableHeap(bpm, txnMgr, ColumnsCatalogPageId)
	if err != nil {
		return nil, err
	}
	c := newCatalog(bpm, txnMgr, tableCatalogHeap)

	columnsOf := make(map[int32][]*column.Column)
	err = scanAll(columnsCatalogHeap, txn, func(tup *tuple.Tuple) error {
		tableOid := getField(tup, columnsCatalogSchema, "table_oid").ToInteger()
		columnType := getField(tup, columnsCatalogSchema, "type").ToInteger()
		columnName := getField(tup, columnsCatalogSchema, "name").ToVarchar()
		hasIndex := getField(tup, columnsCatalogSchema, "has_index").ToBoolean()
		columnsOf[tableOid] = append(columnsOf[tableOid], column.NewColumn(columnName, types.TypeID(columnType), hasIndex))
		return nil
	})
	if err != nil {
		return nil, err
	}

	maxOid := uint32(0)
	err = scanAll(tableCatalogHeap, txn, func(tup *tuple.Tuple) error {
		oid := getField(tup, tableCatalogSchema, "oid").ToInteger()
		name := getField(tup, tableCatalogSchema, "name").ToVarchar()
		firstPage := getField(tup, tableCatalogSchema, "first_page").ToInteger()

		heap := columnsCatalogHeap
		if uint32(oid) != ColumnsCatalogOID {
			var err2 error
			if heap, err2 = access.InitTableHeap(bpm, txnMgr, types.PageID(firstPage)); err2 != nil {
				return err2
			}
		}

		tableMetadata := NewTableMetadata(schema.NewSchema(columnsOf[oid]), name, heap, uint32(oid))
		if err := rebuildIndexes(tableMetadata, txn); err != nil {
			return err
		}
		c.tableIds.Store(uint32(oid), tableMetadata)
		c.tableNames.Store(name, tableMetadata)
		if uint32(oid) >= maxOid {
			maxOid = uint32(oid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.nextTableId.Store(maxOid + 1)
	return c, nil
}

func scanAll(heap *access.TableHeap, txn *access.Transaction, fn func(tup *tuple.Tuple) error) error {
	scan := access.BeginScan(heap, 0, txn, txn.GetSnapshot(), nil)
	defer scan.EndScan()
	for {
		tup, err := scan.GetNext()
		if err != nil {
			return err
		}
		if tup == nil {
			return nil
		}
		if err := fn(tup); err != nil {
			return err
		}
	}
}

func rebuildIndexes(tableMetadata *TableMetadata, txn *access.Transaction) error {
	hasIndex := false
	for _, idx := range tableMetadata.Indexes() {
		hasIndex = hasIndex || idx != nil
	}
	if !hasIndex || tableMetadata.Table().NBlocks() == 0 {
		return nil
	}
	return scanAll(tableMetadata.Table(), txn, func(tup *tuple.Tuple) error {
		for _, idx := range tableMetadata.Indexes() {
			if idx != nil {
				idx.InsertEntry(tup, *tup.GetRID())
			}
		}
		return nil
	})
}

func (c *Catalog) GetTableByName(table string) *TableMetadata {
	if table, ok := c.tableNames.Load(table); ok {
		return table
	}
	return nil
}

func (c *Catalog) GetTableByOID(oid uint32) *TableMetadata {
	if table, ok := c.tableIds.Load(oid); ok {
		return table
	}
	return nil
}

// CreateTable creates a new table and return its metadata.
// An index is created for every column which is marked to have one.
func (c *Catalog) CreateTable(name string, schema_ *schema.Schema, txn *access.Transaction) (*TableMetadata, error) {
	if _, ok := c.tableNames.Load(name); ok {
		return nil, ErrTableExists
	}
	oid := c.nextTableId.Add(1) - 1

	tableHeap := access.NewTableHeap(c.bpm, c.txnMgr)
	tableMetadata := NewTableMetadata(schema_, name, tableHeap, oid)

	c.tableIds.Store(oid, tableMetadata)
	c.tableNames.Store(name, tableMetadata)
	if err := c.insertTable(tableMetadata, txn); err != nil {
		return nil, err
	}
	common.ShPrintf(common.DEBUG_INFO, "Catalog::CreateTable name=%s oid=%d\n", name, oid)
	return tableMetadata, nil
}

// The first page of a new table is allocated here so that it can be recorded.
// The table catalog gets its first page before anything else.
func (c *Catalog) insertTable(tableMetadata *TableMetadata, txn *access.Transaction) error {
	if c.tableHeap.NBlocks() == 0 {
		if _, err := c.tableHeap.Extend(); err != nil {
			return err
		}
	}
	if _, err := tableMetadata.table.Extend(); err != nil {
		return err
	}

	if _, err := c.tableHeap.InsertTuple(tableCatalogRow(tableMetadata), txn); err != nil {
		return err
	}

	columnsCatalog := c.GetTableByOID(ColumnsCatalogOID)
	for _, col := range tableMetadata.schema.GetColumns() {
		if _, err := columnsCatalog.Table().InsertTuple(columnsCatalogRow(tableMetadata.oid, col), txn); err != nil {
			return err
		}
	}
	return nil
}

// OpenRelation returns the table of oid and counts it as opened
func (c *Catalog) OpenRelation(oid uint32) *TableMetadata {
	tableMetadata := c.GetTableByOID(oid)
	if tableMetadata != nil {
		tableMetadata.openCount.Add(1)
	}
	return tableMetadata
}

func (c *Catalog) CloseRelation(tableMetadata *TableMetadata) {
	cnt := tableMetadata.openCount.Add(-1)
	common.SH_Assert(cnt >= 0, "Catalog::CloseRelation: relation is not open")
}

func (c *Catalog) GetTransactionManager() *access.TransactionManager {
	return c.txnMgr
}
