// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package page

import (
	"sync/atomic"

	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// Page is a buffer pool frame holding the image of one heap page.
// The pin count is touched without the latch, everything else needs it
// or the buffer pool mutex.
type Page struct {
	id      types.PageID
	pins    atomic.Int32
	dirty   bool
	freed   bool // deallocated while resident, never written back
	data    *[common.PageSize]byte
	rwlatch common.ReaderWriterLatch
}

// New returns a frame for id pinned once
func New(id types.PageID, isDirty bool, data *[common.PageSize]byte) *Page {
	p := &Page{id: id, dirty: isDirty, data: data, rwlatch: common.NewRWLatch()}
	p.pins.Store(1)
	return p
}

// NewEmpty returns a zero filled frame pinned once
func NewEmpty(id types.PageID) *Page {
	return New(id, false, &[common.PageSize]byte{})
}

func (p *Page) IncPinCount()         { p.pins.Add(1) }
func (p *Page) DecPinCount()         { p.pins.Add(-1) }
func (p *Page) PinCount() int32      { return p.pins.Load() }
func (p *Page) GetPageId() types.PageID { return p.id }

func (p *Page) Data() *[common.PageSize]byte {
	return p.data
}

func (p *Page) SetIsDirty(isDirty bool) { p.dirty = isDirty }
func (p *Page) IsDirty() bool           { return p.dirty }

func (p *Page) IsDeallocated() bool { return p.freed }
func (p *Page) SetIsDeallocated(isDeallocated bool) {
	p.freed = isDeallocated
}

// Copy writes data into the frame at offset
func (p *Page) Copy(offset uint32, data []byte) {
	copy(p.data[offset:], data)
}

func (p *Page) WLatch() {
	p.trace("WLatch")
	p.rwlatch.WLock()
}

func (p *Page) WUnlatch() {
	p.trace("WUnlatch")
	p.rwlatch.WUnlock()
}

func (p *Page) RLatch() {
	p.trace("RLatch")
	p.rwlatch.RLock()
}

func (p *Page) RUnlatch() {
	p.trace("RUnlatch")
	p.rwlatch.RUnlock()
}

func (p *Page) trace(op string) {
	if common.EnableDebug {
		common.ShPrintf(common.DEBUG_INFO_DETAIL, "%s pageId=%d pins=%d\n", op, p.id, p.PinCount())
	}
}
