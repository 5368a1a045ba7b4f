package disk

import (
	"path/filepath"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/ryogrid/SamehadaBitmapScan/common"
	testingpkg "github.com/ryogrid/SamehadaBitmapScan/testing/testing_assert"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

func testReadWritePage(t *testing.T, dm DiskManager) {
	data := make([]byte, common.PageSize)
	buffer := make([]byte, common.PageSize)

	copy(data, "A test string.")

	for i := 0; i < 6; i++ {
		dm.AllocatePage()
	}

	testingpkg.Ok(t, dm.ReadPage(0, buffer)) // tolerate empty read
	testingpkg.Equals(t, make([]byte, common.PageSize), buffer)
	testingpkg.Ok(t, dm.WritePage(0, data))
	testingpkg.Ok(t, dm.ReadPage(0, buffer))
	testingpkg.Equals(t, data, buffer)

	memset(buffer, 0)
	copy(data, "Another test string.")

	testingpkg.Ok(t, dm.WritePage(5, data))
	testingpkg.Ok(t, dm.ReadPage(5, buffer))
	testingpkg.Equals(t, data, buffer)

	testingpkg.Equals(t, ErrPastEndOfFile, dm.ReadPage(6, buffer))

	dm.DeallocatePage(5)
	testingpkg.Equals(t, types.DeallocatedPageErr, dm.ReadPage(5, buffer))
	testingpkg.Equals(t, uint64(2), dm.GetNumWrites())
}

func TestReadWritePage(t *testing.T) {
	dm := NewDiskManagerImpl(filepath.Join(t.TempDir(), "test.db"))
	defer dm.ShutDown()
	testReadWritePage(t, dm)
}

func TestReadWritePageOnMemory(t *testing.T) {
	dm := NewVirtualDiskManagerImpl("test.db")
	defer dm.ShutDown()
	testReadWritePage(t, dm)
}

func TestConcurrentReads(t *testing.T) {
	dm := NewDiskManagerImpl(filepath.Join(t.TempDir(), "test.db"))
	defer dm.ShutDown()

	const nPages = 16
	for i := 0; i < nPages; i++ {
		pageID := dm.AllocatePage()
		data := make([]byte, common.PageSize)
		data[0] = byte(pageID)
		testingpkg.Ok(t, dm.WritePage(pageID, data))
	}

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			buf := make([]byte, common.PageSize)
			for i := 0; i < nPages; i++ {
				if err := dm.ReadPage(types.PageID(i), buf); err != nil {
					return err
				}
				if buf[0] != byte(i) {
					t.Errorf("page %d has %d", i, buf[0])
				}
			}
			return nil
		})
	}
	testingpkg.Ok(t, g.Wait())
	testingpkg.Equals(t, uint64(4*nPages), dm.GetNumReads())
	testingpkg.Equals(t, int64(nPages*common.PageSize), dm.Size())
}

func memset(buffer []byte, value int) {
	for i := range buffer {
		buffer[i] = byte(value)
	}
}
