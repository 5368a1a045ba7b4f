// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package buffer

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/errors"
	"github.com/ryogrid/SamehadaBitmapScan/storage/disk"
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	"github.com/ryogrid/SamehadaBitmapScan/types"
	"golang.org/x/sync/semaphore"
)

const ErrPageNotFound = errors.Error("could not find page")
const ErrPagePinned = errors.Error("Pin count greater than 0")
const ErrNoFreeFrame = errors.Error("all frames are pinned")
const errPrefetchRaced = errors.Error("page is already cached")

// BufferPoolManager represents the buffer pool manager
type BufferPoolManager struct {
	diskManager disk.DiskManager
	pages       []*page.Page // index is FrameID
	replacer    *ClockReplacer
	freeList    []FrameID
	pageTable   map[types.PageID]FrameID
	mutex       *sync.Mutex

	// read-ahead
	prefetchWorkers *semaphore.Weighted
	inFlight        mapset.Set[types.PageID]
	prefetchWG      sync.WaitGroup
	stats           BufferPoolStats
}

// BufferPoolStats is counters of the buffer pool. fields are updated atomically.
type BufferPoolStats struct {
	Hits            uint64
	Misses          uint64
	PrefetchIssued  uint64
	PrefetchLoaded  uint64
	PrefetchDropped uint64
}

// FetchPage fetches the requested page from the buffer pool.
// nil is returned when the page is deallocated or every frame is pinned.
func (b *BufferPoolManager) FetchPage(pageID types.PageID) *page.Page {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	// if it is on buffer pool return it
	if frameID, ok := b.pageTable[pageID]; ok {
		pg := b.pages[frameID]
		pg.IncPinCount()
		b.replacer.Pin(frameID)
		atomic.AddUint64(&b.stats.Hits, 1)
		if common.EnableDebug {
			common.ShPrintf(common.DEBUG_INFO, "FetchPage: PageId=%d PinCount=%d\n", pg.GetPageId(), pg.PinCount())
		}
		return pg
	}
	atomic.AddUint64(&b.stats.Misses, 1)

	pg, err := b.loadPage(pageID)
	if err != nil {
		if err != types.DeallocatedPageErr {
			common.ShPrintf(common.WARN, "FetchPage: pageId=%d %v\n", pageID, err)
		}
		return nil
	}
	if common.EnableDebug {
		common.ShPrintf(common.DEBUG_INFO, "FetchPage: PageId=%d PinCount=%d\n", pg.GetPageId(), pg.PinCount())
	}
	return pg
}

// loadPage reads pageID into a free or victim frame. the returned page has pin count 1.
// caller must hold b.mutex.
func (b *BufferPoolManager) loadPage(pageID types.PageID) (*page.Page, error) {
	frameID, isFromFreeList := b.getFrameID()
	if frameID == nil {
		return nil, ErrNoFreeFrame
	}

	data := make([]byte, common.PageSize)
	if err := b.diskManager.ReadPage(pageID, data); err != nil {
		b.returnFrame(*frameID, isFromFreeList)
		return nil, err
	}

	if !isFromFreeList {
		b.evictFrame(*frameID, pageID)
	}

	var pageData [common.PageSize]byte
	copy(pageData[:], data)
	pg := page.New(pageID, false, &pageData)
	b.pageTable[pageID] = *frameID
	b.pages[*frameID] = pg
	return pg, nil
}

// evictFrame writes back the page held by frameID if it is dirty and removes it from the page table
func (b *BufferPoolManager) evictFrame(frameID FrameID, requested types.PageID) {
	currentPage := b.pages[frameID]
	if currentPage == nil {
		return
	}
	common.SH_Assert(currentPage.PinCount() == 0,
		fmt.Sprintf("BPM: pin count of page to be cache out must be zero!!!. pageId:%d PinCount:%d", currentPage.GetPageId(), currentPage.PinCount()))

	if common.EnableDebug && common.ActiveLogKindSetting&common.CACHE_OUT_IN_INFO > 0 {
		fmt.Printf("BPM: Cache out occurs! pageId:%d requested pageId:%d\n", currentPage.GetPageId(), requested)
	}
	if currentPage.IsDirty() && !currentPage.IsDeallocated() {
		data := currentPage.Data()
		b.diskManager.WritePage(currentPage.GetPageId(), data[:])
	}
	delete(b.pageTable, currentPage.GetPageId())
	b.pages[frameID] = nil
}

// returnFrame gives back a frame taken by getFrameID which ended up unused
func (b *BufferPoolManager) returnFrame(frameID FrameID, isFromFreeList bool) {
	if isFromFreeList {
		b.freeList = append(b.freeList, frameID)
	} else {
		// the frame still holds its old page
		b.replacer.Unpin(frameID)
	}
}

// UnpinPage unpins the target page from the buffer pool.
func (b *BufferPoolManager) UnpinPage(pageID types.PageID, isDirty bool) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if frameID, ok := b.pageTable[pageID]; ok {
		pg := b.pages[frameID]
		pg.DecPinCount()
		common.SH_Assert(pg.PinCount() >= 0, fmt.Sprintf("BPM::UnpinPage pin count is negative. pageId:%d", pageID))

		if pg.PinCount() <= 0 {
			b.replacer.Unpin(frameID)
		}

		if isDirty {
			pg.SetIsDirty(true)
		}
		if common.EnableDebug {
			common.ShPrintf(common.DEBUG_INFO, "UnpinPage: PageId=%d PinCount=%d\n", pg.GetPageId(), pg.PinCount())
		}
		return nil
	}

	return ErrPageNotFound
}

// FlushPage Flushes the target page to disk.
func (b *BufferPoolManager) FlushPage(pageID types.PageID) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if frameID, ok := b.pageTable[pageID]; ok {
		pg := b.pages[frameID]
		pg.RLatch()
		data := pg.Data()
		err := b.diskManager.WritePage(pageID, data[:])
		pg.RUnlatch()
		if err != nil {
			return false
		}
		pg.SetIsDirty(false)
		return true
	}

	return false
}

// NewPage allocates a new page in the buffer pool with the disk manager help
func (b *BufferPoolManager) NewPage() *page.Page {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	frameID, isFromFreeList := b.getFrameID()
	if frameID == nil {
		return nil // the buffer is full, it can't find a frame
	}

	if !isFromFreeList {
		b.evictFrame(*frameID, types.InvalidPageID)
	}

	// allocates new page
	pageID := b.diskManager.AllocatePage()
	pg := page.NewEmpty(pageID)
	// not on disk yet, so it must be written at cache out
	pg.SetIsDirty(true)

	b.pageTable[pageID] = *frameID
	b.pages[*frameID] = pg

	if common.EnableDebug {
		common.ShPrintf(common.DEBUG_INFO, "NewPage: returned pageID: %d\n", pageID)
	}
	return pg
}

// DeletePage deletes a page from the buffer pool.
func (b *BufferPoolManager) DeletePage(pageID types.PageID) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	frameID, ok := b.pageTable[pageID]
	if !ok {
		// a read-ahead of the page which is in progress must not install it
		b.inFlight.Remove(pageID)
		b.diskManager.DeallocatePage(pageID)
		return nil
	}

	pg := b.pages[frameID]
	if pg.PinCount() > 0 {
		return ErrPagePinned
	}
	pg.SetIsDeallocated(true)
	delete(b.pageTable, pageID)
	b.pages[frameID] = nil
	b.replacer.Pin(frameID)
	b.diskManager.DeallocatePage(pageID)

	b.freeList = append(b.freeList, frameID)
	return nil
}

// PrefetchPage asks for pageID to be read into the pool in background.
// It never waits for I/O. The hint is dropped when the page is already cached or
// being read, when no worker is available or when no frame can be freed.
// A prefetched page stays unpinned, so it is a candidate of cache out like others.
func (b *BufferPoolManager) PrefetchPage(pageID types.PageID) {
	atomic.AddUint64(&b.stats.PrefetchIssued, 1)

	b.mutex.Lock()
	_, cached := b.pageTable[pageID]
	b.mutex.Unlock()
	if cached || !b.inFlight.Add(pageID) {
		atomic.AddUint64(&b.stats.PrefetchDropped, 1)
		return
	}

	if !b.prefetchWorkers.TryAcquire(1) {
		b.inFlight.Remove(pageID)
		atomic.AddUint64(&b.stats.PrefetchDropped, 1)
		common.ShPrintf(common.PREFETCH_INFO, "PrefetchPage: no worker. pageId=%d\n", pageID)
		return
	}

	b.prefetchWG.Add(1)
	go func() {
		defer b.prefetchWG.Done()
		defer b.prefetchWorkers.Release(1)
		defer b.inFlight.Remove(pageID)

		if err := b.prefetchInto(pageID); err != nil {
			atomic.AddUint64(&b.stats.PrefetchDropped, 1)
			common.ShPrintf(common.PREFETCH_INFO, "PrefetchPage: dropped. pageId=%d %v\n", pageID, err)
			return
		}
		atomic.AddUint64(&b.stats.PrefetchLoaded, 1)
		common.ShPrintf(common.PREFETCH_INFO, "PrefetchPage: loaded. pageId=%d\n", pageID)
	}()
}

// prefetchInto reads pageID into a frame reserved for it. b.mutex is not held
// during the read, so fetches of other pages go on meanwhile.
func (b *BufferPoolManager) prefetchInto(pageID types.PageID) error {
	b.mutex.Lock()
	if _, ok := b.pageTable[pageID]; ok {
		b.mutex.Unlock()
		return errPrefetchRaced
	}
	frameID, isFromFreeList := b.getFrameID()
	if frameID == nil {
		b.mutex.Unlock()
		return ErrNoFreeFrame
	}
	if !isFromFreeList {
		b.evictFrame(*frameID, pageID)
	}
	// the frame is empty and neither in the free list nor a victim candidate
	b.mutex.Unlock()

	data := make([]byte, common.PageSize)
	err := b.diskManager.ReadPage(pageID, data)

	b.mutex.Lock()
	defer b.mutex.Unlock()
	if err == nil {
		if _, ok := b.pageTable[pageID]; ok {
			// a FetchPage read it while we were reading
			err = errPrefetchRaced
		} else if !b.inFlight.Contains(pageID) {
			// deleted while we were reading
			err = types.DeallocatedPageErr
		}
	}
	if err != nil {
		b.freeList = append(b.freeList, *frameID)
		return err
	}

	var pageData [common.PageSize]byte
	copy(pageData[:], data)
	pg := page.New(pageID, false, &pageData)
	// prefetched pages are unpinned
	pg.DecPinCount()
	b.pageTable[pageID] = *frameID
	b.pages[*frameID] = pg
	b.replacer.Unpin(*frameID)
	return nil
}

// WaitForPrefetches blocks until every read-ahead already issued has finished
func (b *BufferPoolManager) WaitForPrefetches() {
	b.prefetchWG.Wait()
}

// IsCached reports whether pageID currently has a frame
func (b *BufferPoolManager) IsCached(pageID types.PageID) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	_, ok := b.pageTable[pageID]
	return ok
}

func (b *BufferPoolManager) GetStats() BufferPoolStats {
	return BufferPoolStats{
		Hits:            atomic.LoadUint64(&b.stats.Hits),
		Misses:          atomic.LoadUint64(&b.stats.Misses),
		PrefetchIssued:  atomic.LoadUint64(&b.stats.PrefetchIssued),
		PrefetchLoaded:  atomic.LoadUint64(&b.stats.PrefetchLoaded),
		PrefetchDropped: atomic.LoadUint64(&b.stats.PrefetchDropped),
	}
}

// FlushAllPages flushes all the pages in the buffer pool to disk.
func (b *BufferPoolManager) FlushAllPages() bool {
	b.mutex.Lock()
	pageIDs := make([]types.PageID, 0)
	for pageID := range b.pageTable {
		if b.pages[b.pageTable[pageID]].IsDirty() {
			pageIDs = append(pageIDs, pageID)
		}
	}
	b.mutex.Unlock()

	for _, pageID := range pageIDs {
		if !b.FlushPage(pageID) {
			return false
		}
	}
	return true
}

func (b *BufferPoolManager) getFrameID() (*FrameID, bool) {
	if len(b.freeList) > 0 {
		frameID, newFreeList := b.freeList[0], b.freeList[1:]
		b.freeList = newFreeList

		return &frameID, true
	}

	return b.replacer.Victim(), false
}

// PinnedPages returns ids of resident pages which are pinned, in id order.
// Prefetched pages are not pinned.
func (b *BufferPoolManager) PinnedPages() []types.PageID {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	ret := make([]types.PageID, 0)
	for pageID, frameID := range b.pageTable {
		if !b.replacer.isContain(frameID) {
			ret = append(ret, pageID)
		}
	}
	slices.Sort(ret)
	return ret
}

// NewBufferPoolManager returns a empty buffer pool manager
func NewBufferPoolManager(poolSize uint32, DiskManager disk.DiskManager) *BufferPoolManager {
	freeList := make([]FrameID, poolSize)
	pages := make([]*page.Page, poolSize)
	for i := uint32(0); i < poolSize; i++ {
		freeList[i] = FrameID(i)
		pages[i] = nil
	}

	replacer := NewClockReplacer(poolSize)
	return &BufferPoolManager{
		diskManager:     DiskManager,
		pages:           pages,
		replacer:        replacer,
		freeList:        freeList,
		pageTable:       make(map[types.PageID]FrameID),
		mutex:           new(sync.Mutex),
		prefetchWorkers: semaphore.NewWeighted(common.MaxPrefetchWorkers),
		inFlight:        mapset.NewSet[types.PageID](),
	}
}
