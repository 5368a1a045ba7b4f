package access

import (
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// PredicateLocker receives the reads of serializable transactions
type PredicateLocker interface {
	PredicateLockTuple(oid uint32, rid page.RID, txn *Transaction)
	// CheckForSerializableConflictOut is called for every version a reader looked at.
	// visible tells whether the reader saw the version.
	CheckForSerializableConflictOut(visible bool, oid uint32, rid page.RID, hdr *HeapTupleHeader, txn *Transaction) error
}

// HeapScanDesc is a page at a time scan handle of a relation.
// It holds at most one pin, on the current page, and the offsets of the rows
// of that page which are visible to the scan snapshot.
type HeapScanDesc struct {
	heap       *TableHeap
	oid        uint32
	txn        *Transaction
	snapshot   *Snapshot
	predLocker PredicateLocker
	nblocks    types.BlockNumber // length of the relation when the scan (re)started

	cbuf      *TablePage
	cblock    types.BlockNumber
	visTuples []types.OffsetNumber
	cindex    int
	seqDone   bool
}

// BeginScan opens a scan of heap. Blocks appended after this call are not seen
// until ReScan.
func BeginScan(heap *TableHeap, oid uint32, txn *Transaction, snapshot *Snapshot, predLocker PredicateLocker) *HeapScanDesc {
	return &HeapScanDesc{
		heap:       heap,
		oid:        oid,
		txn:        txn,
		snapshot:   snapshot,
		predLocker: predLocker,
		nblocks:    heap.NBlocks(),
		cblock:     types.InvalidBlockNumber,
		visTuples:  make([]types.OffsetNumber, 0),
	}
}

func (s *HeapScanDesc) NBlocks() types.BlockNumber {
	return s.nblocks
}

// VisibleCount returns the number of visible rows of the current page
func (s *HeapScanDesc) VisibleCount() int {
	return len(s.visTuples)
}

// HasPin reports whether the scan holds a pin
func (s *HeapScanDesc) HasPin() bool {
	return s.cbuf != nil
}

// ReleaseAndReadBuffer drops the pin on the current page and pins blockNum.
// The pin is kept when blockNum is the current page.
func (s *HeapScanDesc) ReleaseAndReadBuffer(blockNum types.BlockNumber) error {
	if s.cbuf != nil && s.cblock == blockNum {
		return nil
	}
	s.releaseBuffer()
	tp, err := s.heap.ReadBuffer(blockNum)
	if err != nil {
		return err
	}
	s.cbuf = tp
	s.cblock = blockNum
	return nil
}

func (s *HeapScanDesc) releaseBuffer() {
	if s.cbuf != nil {
		s.heap.ReleaseBuffer(s.cbuf, false)
		s.cbuf = nil
		s.cblock = types.InvalidBlockNumber
	}
}

// NextVisible returns the next visible row of the current page, or nil.
// The returned tuple owns a copy of the row.
func (s *HeapScanDesc) NextVisible() *tuple.Tuple {
	if s.cbuf == nil || s.cindex >= len(s.visTuples) {
		return nil
	}
	off := s.visTuples[s.cindex]
	s.cindex++

	s.cbuf.RLatch()
	data := s.cbuf.GetTupleData(off)
	s.cbuf.RUnlatch()

	rid := page.NewRID(s.cblock, off)
	return tuple.NewTuple(&rid, uint32(len(data)), data)
}

// GetPage makes blockNum current and collects every row of it which is visible
// to the scan snapshot. Used by sequential scans.
func (s *HeapScanDesc) GetPage(blockNum types.BlockNumber) error {
	s.visTuples = s.visTuples[:0]
	s.cindex = 0
	if blockNum >= s.nblocks {
		return nil
	}
	if err := s.ReleaseAndReadBuffer(blockNum); err != nil {
		return err
	}
	tp := s.cbuf
	txnMgr := s.heap.GetTransactionManager()
	s.heap.PruneOpt(tp, txnMgr.GetOldestXmin())

	tp.RLatch()
	defer tp.RUnlatch()
	for off := types.FirstOffsetNumber; off <= tp.GetMaxOffsetNumber(); off++ {
		if !tp.GetLinePointer(off).IsNormal() {
			continue
		}
		valid := TupleSatisfiesVisibility(tp.GetTupleHeader(off), s.snapshot, txnMgr)
		if valid {
			s.visTuples = append(s.visTuples, off)
		}
		if err := s.predicateRead(tp, off, valid); err != nil {
			return err
		}
	}
	return nil
}

// GetNext returns the next visible row in block order, or nil at the end
func (s *HeapScanDesc) GetNext() (*tuple.Tuple, error) {
	for {
		if tup := s.NextVisible(); tup != nil {
			return tup, nil
		}
		next := types.BlockNumber(0)
		if s.cbuf != nil {
			next = s.cblock + 1
		} else if s.seqDone {
			return nil, nil
		}
		if next >= s.nblocks {
			s.releaseBuffer()
			s.seqDone = true
			return nil, nil
		}
		if err := s.GetPage(next); err != nil {
			return nil, err
		}
	}
}

// ReScan forgets the current page and reads the relation length again.
// The next page is pinned again.
func (s *HeapScanDesc) ReScan() {
	s.releaseBuffer()
	s.nblocks = s.heap.NBlocks()
	s.visTuples = s.visTuples[:0]
	s.cindex = 0
	s.seqDone = false
}

// EndScan releases everything the scan holds. It may be called twice.
func (s *HeapScanDesc) EndScan() {
	s.releaseBuffer()
	s.visTuples = nil
	s.cindex = 0
	if common.EnableDebug {
		common.ShPrintf(common.DEBUG_INFO, "HeapScanDesc::EndScan oid=%d\n", s.oid)
	}
}
