package catalog

import (
	"sync/atomic"

	"github.com/ryogrid/SamehadaBitmapScan/storage/access"
	"github.com/ryogrid/SamehadaBitmapScan/storage/index"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
)

type TableMetadata struct {
	schema *schema.Schema
	name   string
	table  *access.TableHeap
	// index of column i is indexes[i]. nil when the column is not indexed
	indexes []index.Index
	oid     uint32
	// number of scans which have the relation open
	openCount atomic.Int32
}

func NewTableMetadata(schema *schema.Schema, name string, table *access.TableHeap, oid uint32) *TableMetadata {
	ret := &TableMetadata{schema: schema, name: name, table: table, oid: oid}
	ret.indexes = make([]index.Index, schema.GetColumnCount())
	for _, colIdx := range schema.GetIndexedColumns() {
		im := index.NewIndexMetadata(name+"_"+schema.GetColumn(colIdx).GetColumnName()+"_idx", name, schema, colIdx)
		ret.indexes[colIdx] = index.NewBTreeIndex(im)
	}
	return ret
}

func (t *TableMetadata) Schema() *schema.Schema {
	return t.schema
}

func (t *TableMetadata) OID() uint32 {
	return t.oid
}

func (t *TableMetadata) Table() *access.TableHeap {
	return t.table
}

func (t *TableMetadata) Name() string {
	return t.name
}

func (t *TableMetadata) GetIndex(colIdx uint32) index.Index {
	if colIdx >= uint32(len(t.indexes)) {
		return nil
	}
	return t.indexes[colIdx]
}

func (t *TableMetadata) Indexes() []index.Index {
	return t.indexes
}

func (t *TableMetadata) OpenCount() int32 {
	return t.openCount.Load()
}
