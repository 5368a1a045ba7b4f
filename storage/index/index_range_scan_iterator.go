package index

import (
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

type IndexRangeScanIterator interface {
	// returns false after the last entry
	Next() (bool, *types.Value, *page.RID)
	Close()
}
