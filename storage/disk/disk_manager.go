// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package disk

import (
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// DiskManager moves page images between the buffer pool and backing storage.
// ReadPage may be called from prefetch goroutines concurrently with the
// executor, so implementations must be safe for concurrent use.
type DiskManager interface {
	ReadPage(types.PageID, []byte) error
	WritePage(types.PageID, []byte) error
	AllocatePage() types.PageID
	DeallocatePage(types.PageID)
	// I/O counters, used to observe prefetch effects
	GetNumWrites() uint64
	GetNumReads() uint64
	// bytes of backing storage
	Size() int64
	ShutDown()
	RemoveDBFile()
}
