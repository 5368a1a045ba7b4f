package access

import (
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/storage/bitmap"
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// BitGetPage makes the page of res current and computes which of its rows are
// visible to the scan snapshot.
// For an exact page each listed offset is resolved through its HOT chain, so the
// visible version is returned even if the index points to an older one.
// For a lossy page every normal line pointer is tested.
// The pin on the page is kept after return. Rows are read by NextVisible.
func (s *HeapScanDesc) BitGetPage(res *bitmap.PageResult) error {
	s.visTuples = s.visTuples[:0]
	s.cindex = 0

	// the relation may have been extended after the scan began
	if res.BlockNo >= s.nblocks {
		return nil
	}

	if err := s.ReleaseAndReadBuffer(res.BlockNo); err != nil {
		return err
	}
	tp := s.cbuf
	txnMgr := s.heap.GetTransactionManager()
	horizon := txnMgr.GetOldestXmin()

	s.heap.PruneOpt(tp, horizon)

	tp.RLatch()
	defer tp.RUnlatch()

	maxOff := tp.GetMaxOffsetNumber()
	if res.Kind == bitmap.Exact {
		for _, off := range res.Offsets {
			found, ok, _ := HotSearchBuffer(tp, off, s.snapshot, txnMgr, horizon)
			if !ok {
				continue
			}
			s.visTuples = append(s.visTuples, found)
			if err := s.predicateRead(tp, found, true); err != nil {
				return err
			}
		}
	} else {
		for off := types.FirstOffsetNumber; off <= maxOff; off++ {
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
	}

	common.ShPrintf(common.BITMAP_SCAN_INFO, "BitGetPage block=%d kind=%v candidates=%d visible=%d\n",
		res.BlockNo, res.Kind, res.NTuples(), len(s.visTuples))
	return nil
}

func (s *HeapScanDesc) predicateRead(tp *TablePage, off types.OffsetNumber, visible bool) error {
	if s.predLocker == nil || s.txn == nil {
		return nil
	}
	rid := page.NewRID(s.cblock, off)
	if visible {
		s.predLocker.PredicateLockTuple(s.oid, rid, s.txn)
	}
	return s.predLocker.CheckForSerializableConflictOut(visible, s.oid, rid, tp.GetTupleHeader(off), s.txn)
}
