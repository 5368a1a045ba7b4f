// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package executors

import (
	"github.com/ryogrid/SamehadaBitmapScan/catalog"
	"github.com/ryogrid/SamehadaBitmapScan/storage/bitmap"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
)

type Done bool

// Executor executes a plan
//
// Init initializes this executor.
// This function must be called before Next() is called!
//
// Next produces the next tuple from this executor
type Executor interface {
	Init()
	Next() (*tuple.Tuple, Done, error)
	GetOutputSchema() *schema.Schema
	GetTableMetaData() *catalog.TableMetadata
}

// BitmapExecutor produces a bitmap of row locations instead of rows.
//
// MultiExec builds the whole bitmap. The caller does not own it and must not
// use it after ReScan or End of the executor.
//
// HasParamChanges reports that the scan condition was changed after the last
// MultiExec, so the executor rescans itself on the next MultiExec.
type BitmapExecutor interface {
	Init()
	MultiExec() (bitmap.Node, error)
	ReScan()
	End()
	HasParamChanges() bool
}
