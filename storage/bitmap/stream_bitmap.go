package bitmap

import (
	"fmt"

	"github.com/golang-collections/collections/queue"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// number of pages decoded from the source at a time
const streamBatchPages = 16

// RIDCursor yields row locations in ascending (block, offset) order.
// Duplicates are allowed.
type RIDCursor interface {
	Next() (page.RID, bool)
	Close()
}

// StreamBitmap is a bitmap whose pages are produced while it is iterated.
// open is called for every iterator, so each iterator reads its own stream.
type StreamBitmap struct {
	open    func() RIDCursor
	recheck bool
	empty   bool
}

func NewStreamBitmap(open func() RIDCursor, recheck bool) *StreamBitmap {
	sb := &StreamBitmap{open: open, recheck: recheck}
	probe := open()
	_, ok := probe.Next()
	probe.Close()
	sb.empty = !ok
	return sb
}

func (sb *StreamBitmap) IsEmpty() bool {
	return sb.empty
}

func (sb *StreamBitmap) beginIterate() Iterator {
	return &streamIterator{
		cursor:  sb.open(),
		recheck: sb.recheck,
		pending: queue.New(),
		cur:     nil,
	}
}

type streamIterator struct {
	cursor  RIDCursor
	recheck bool
	pending *queue.Queue // of *PageResult
	cur     *PageResult  // page being filled
	lastRID *page.RID
	done    bool
}

func (it *streamIterator) Next() *PageResult {
	if it.pending.Len() == 0 && !it.done {
		it.refill()
	}
	if it.pending.Len() == 0 {
		return nil
	}
	return it.pending.Dequeue().(*PageResult)
}

// refill decodes up to streamBatchPages complete pages into pending
func (it *streamIterator) refill() {
	for it.pending.Len() < streamBatchPages {
		rid, ok := it.cursor.Next()
		if !ok {
			if it.cur != nil {
				it.pending.Enqueue(it.cur)
				it.cur = nil
			}
			it.done = true
			it.cursor.Close()
			return
		}
		if it.lastRID != nil {
			common.SH_Assert(!rid.Less(*it.lastRID), fmt.Sprintf("StreamBitmap: source is not ordered. %v after %v", rid, *it.lastRID))
			if rid == *it.lastRID {
				continue
			}
		}
		r := rid
		it.lastRID = &r

		if it.cur != nil && it.cur.BlockNo != rid.GetBlockNum() {
			it.pending.Enqueue(it.cur)
			it.cur = nil
		}
		if it.cur == nil {
			it.cur = &PageResult{rid.GetBlockNum(), Exact, make([]types.OffsetNumber, 0), it.recheck}
		}
		it.cur.Offsets = append(it.cur.Offsets, rid.GetOffset())
	}
}

func (it *streamIterator) End() {
	if !it.done {
		it.cursor.Close()
		it.done = true
	}
	it.pending = queue.New()
	it.cur = nil
}

// SliceRIDCursor serves rids from a sorted slice
type SliceRIDCursor struct {
	rids []page.RID
	pos  int
}

func NewSliceRIDCursor(rids []page.RID) *SliceRIDCursor {
	return &SliceRIDCursor{rids, 0}
}

func (c *SliceRIDCursor) Next() (page.RID, bool) {
	if c.pos >= len(c.rids) {
		return page.RID{}, false
	}
	c.pos++
	return c.rids[c.pos-1], true
}

func (c *SliceRIDCursor) Close() {}
