// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package disk

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/errors"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

const ErrPastEndOfFile = errors.Error("I/O error past end of file")
const ErrIO = errors.Error("I/O error while reading")

// pageSpace is the page id bookkeeping shared by the file and the on memory
// managers. Freed ids are never handed out again.
type pageSpace struct {
	nextPageID atomic.Int32
	freed      mapset.Set[types.PageID]
	numWrites  atomic.Uint64
	numReads   atomic.Uint64
}

func (ps *pageSpace) init(nPages int32) {
	ps.freed = mapset.NewSet[types.PageID]()
	ps.nextPageID.Store(nPages)
}

func (ps *pageSpace) AllocatePage() types.PageID {
	return types.PageID(ps.nextPageID.Add(1) - 1)
}

func (ps *pageSpace) DeallocatePage(pageID types.PageID) {
	ps.freed.Add(pageID)
}

// checkRead validates pageID and counts the read
func (ps *pageSpace) checkRead(pageID types.PageID) error {
	if ps.freed.Contains(pageID) {
		return types.DeallocatedPageErr
	}
	if int32(pageID) >= ps.nextPageID.Load() {
		return ErrPastEndOfFile
	}
	ps.numReads.Add(1)
	return nil
}

func (ps *pageSpace) GetNumWrites() uint64 { return ps.numWrites.Load() }
func (ps *pageSpace) GetNumReads() uint64  { return ps.numReads.Load() }

func pageOffset(pageID types.PageID) int64 {
	return int64(pageID) * int64(common.PageSize)
}

// DiskManagerImpl keeps pages in a single file at pageID * PageSize.
// Reads share the latch so prefetch workers do not serialize on it.
type DiskManagerImpl struct {
	pageSpace
	db       *os.File
	fileName string
	mutex    sync.RWMutex
	size     int64
}

// NewDiskManagerImpl opens (or creates) dbFilename. Pages already in the file
// stay addressable.
func NewDiskManagerImpl(dbFilename string) DiskManager {
	file, err := os.OpenFile(dbFilename, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		log.Fatalf("can't open db file %s: %v", dbFilename, err)
	}
	fileInfo, err := file.Stat()
	if err != nil {
		log.Fatalf("can't stat db file %s: %v", dbFilename, err)
	}
	d := &DiskManagerImpl{db: file, fileName: dbFilename, size: fileInfo.Size()}
	d.init(int32(fileInfo.Size() / common.PageSize))
	return d
}

func (d *DiskManagerImpl) WritePage(pageID types.PageID, pageData []byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	offset := pageOffset(pageID)
	n, err := d.db.WriteAt(pageData, offset)
	if err != nil {
		return err
	}
	if n != common.PageSize {
		panic("short write of page")
	}
	if end := offset + int64(n); end > d.size {
		d.size = end
	}
	d.numWrites.Add(1)
	return nil
}

func (d *DiskManagerImpl) ReadPage(pageID types.PageID, pageData []byte) error {
	if err := d.checkRead(pageID); err != nil {
		return err
	}

	d.mutex.RLock()
	defer d.mutex.RUnlock()
	n, err := d.db.ReadAt(pageData, pageOffset(pageID))
	if err != nil && err != io.EOF {
		return ErrIO
	}
	// allocated but never written
	clear(pageData[n:])
	return nil
}

func (d *DiskManagerImpl) Size() int64 {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.size
}

func (d *DiskManagerImpl) ShutDown() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if err := d.db.Close(); err != nil {
		fmt.Println(err)
		panic("close of db file failed")
	}
}

// RemoveDBFile must be called after ShutDown
func (d *DiskManagerImpl) RemoveDBFile() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if err := os.Remove(d.fileName); err != nil {
		fmt.Println(err)
		panic("file remove failed")
	}
}
