package samehada

import (
	"github.com/ryogrid/SamehadaBitmapScan/concurrency"
	"github.com/ryogrid/SamehadaBitmapScan/storage/access"
	"github.com/ryogrid/SamehadaBitmapScan/storage/buffer"
	"github.com/ryogrid/SamehadaBitmapScan/storage/disk"
)

type SamehadaInstance struct {
	disk_manager        disk.DiskManager
	bpm                 *buffer.BufferPoolManager
	transaction_manager *access.TransactionManager
	pred_lock_manager   *concurrency.PredicateLockManager
}

// bpoolSize: usable buffer size in frame(=page) num
// onMemory: pages are kept in memory and no db file is created
func NewSamehadaInstance(dbName string, bpoolSize int, onMemory bool) *SamehadaInstance {
	var disk_manager disk.DiskManager
	if onMemory {
		disk_manager = disk.NewVirtualDiskManagerImpl(dbName + ".db")
	} else {
		disk_manager = disk.NewDiskManagerImpl(dbName + ".db")
	}
	bpm := buffer.NewBufferPoolManager(uint32(bpoolSize), disk_manager)
	transaction_manager := access.NewTransactionManager()
	pred_lock_manager := concurrency.NewPredicateLockManager(transaction_manager)

	return &SamehadaInstance{disk_manager, bpm, transaction_manager, pred_lock_manager}
}

func (si *SamehadaInstance) GetDiskManager() disk.DiskManager {
	return si.disk_manager
}

func (si *SamehadaInstance) GetBufferPoolManager() *buffer.BufferPoolManager {
	return si.bpm
}

func (si *SamehadaInstance) GetTransactionManager() *access.TransactionManager {
	return si.transaction_manager
}

func (si *SamehadaInstance) GetPredicateLockManager() *concurrency.PredicateLockManager {
	return si.pred_lock_manager
}

// functionality is waiting read-ahead, flushing dirty pages and shutdown of DiskManager
func (si *SamehadaInstance) Shutdown(IsRemoveFiles bool) {
	si.bpm.WaitForPrefetches()
	si.bpm.FlushAllPages()
	si.disk_manager.ShutDown()
	if IsRemoveFiles {
		si.disk_manager.RemoveDBFile()
	}
}
