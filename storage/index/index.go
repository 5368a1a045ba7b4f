package index

import (
	"github.com/ryogrid/SamehadaBitmapScan/storage/bitmap"
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

/**
 * IndexMetadata - Holds metadata of an index object
 *
 * The metadata object maintains the tuple schema and key attribute of an
 * index. Keys are single column values taken from a table row.
 */
type IndexMetadata struct {
	name      string
	tableName string
	// schema of the indexed table
	tupleSchema *schema.Schema
	// column of the table which is used as key
	keyAttr uint32
}

func NewIndexMetadata(indexName string, tableName string, tupleSchema *schema.Schema, keyAttr uint32) *IndexMetadata {
	ret := new(IndexMetadata)
	ret.name = indexName
	ret.tableName = tableName
	ret.tupleSchema = tupleSchema
	ret.keyAttr = keyAttr
	return ret
}

func (im *IndexMetadata) GetName() string                 { return im.name }
func (im *IndexMetadata) GetTableName() string            { return im.tableName }
func (im *IndexMetadata) GetTupleSchema() *schema.Schema { return im.tupleSchema }
func (im *IndexMetadata) GetKeyAttr() uint32             { return im.keyAttr }

// Index is the interface of secondary indexes.
// An index never checks visibility. Entries of dead or invisible versions stay
// until they are deleted, so scans of it produce candidates only.
type Index interface {
	GetMetadata() *IndexMetadata
	InsertEntry(key *tuple.Tuple, rid page.RID)
	DeleteEntry(key *tuple.Tuple, rid page.RID)
	ScanKey(key *tuple.Tuple) []page.RID
	// start and end are inclusive. nil means unbounded.
	GetRangeScanIterator(start *types.Value, end *types.Value) IndexRangeScanIterator
	// GetBitmap adds the locations of entries in [start, end] to tbm and
	// returns how many entries were added
	GetBitmap(start *types.Value, end *types.Value, tbm *bitmap.TIDBitmap, recheck bool) int64
	// EqualCursor returns a cursor over locations of entries equal to key.
	// These come out in location order.
	EqualCursor(key types.Value) bitmap.RIDCursor
	NEntries() int
}
