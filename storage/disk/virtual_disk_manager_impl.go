package disk

import (
	"sync"

	"github.com/dsnet/golib/memfile"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// VirtualDiskManagerImpl keeps page images in a memfile, no file is created.
type VirtualDiskManagerImpl struct {
	pageSpace
	db       *memfile.File
	fileName string
	// memfile is not safe for concurrent use
	mutex sync.Mutex
}

func NewVirtualDiskManagerImpl(dbFilename string) DiskManager {
	d := &VirtualDiskManagerImpl{db: memfile.New(make([]byte, 0)), fileName: dbFilename}
	d.init(0)
	return d
}

func (d *VirtualDiskManagerImpl) WritePage(pageID types.PageID, pageData []byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if _, err := d.db.WriteAt(pageData, pageOffset(pageID)); err != nil {
		return err
	}
	d.numWrites.Add(1)
	return nil
}

func (d *VirtualDiskManagerImpl) ReadPage(pageID types.PageID, pageData []byte) error {
	if err := d.checkRead(pageID); err != nil {
		return err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()
	offset := pageOffset(pageID)
	size := int64(len(d.db.Bytes()))
	clear(pageData)
	if offset >= size {
		// allocated but never written
		return nil
	}
	_, err := d.db.ReadAt(pageData[:min(int64(len(pageData)), size-offset)], offset)
	return err
}

func (d *VirtualDiskManagerImpl) Size() int64 {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return int64(len(d.db.Bytes()))
}

func (d *VirtualDiskManagerImpl) ShutDown() {}

func (d *VirtualDiskManagerImpl) RemoveDBFile() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.db.Truncate(0)
}
