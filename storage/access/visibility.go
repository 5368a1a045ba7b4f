package access

import (
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// TupleSatisfiesVisibility reports whether the version described by hdr
// is visible to snapshot.
func TupleSatisfiesVisibility(hdr *HeapTupleHeader, snapshot *Snapshot, txnMgr *TransactionManager) bool {
	if hdr.Xmin == snapshot.CurTxn {
		// inserted by me. visible until I delete it
		return hdr.Xmax != snapshot.CurTxn
	}
	if hdr.Xmin != types.FrozenTxnID {
		if !txnMgr.IsCommitted(hdr.Xmin) || snapshot.XidInProgress(hdr.Xmin) {
			return false
		}
	}

	if !hdr.Xmax.IsValid() {
		return true
	}
	if hdr.Xmax == snapshot.CurTxn {
		return false
	}
	if !txnMgr.IsCommitted(hdr.Xmax) {
		// deleter is running or aborted
		return true
	}
	// deleter committed. I still see the version if the deleter was running for my snapshot
	return snapshot.XidInProgress(hdr.Xmax)
}

type HTSVResult int32

const (
	HEAPTUPLE_DEAD             HTSVResult = iota // dead to everyone
	HEAPTUPLE_LIVE                               // inserted and not deleted
	HEAPTUPLE_RECENTLY_DEAD                      // deleted but some snapshot may still see it
	HEAPTUPLE_INSERT_IN_PROGRESS                 // inserter is running
	HEAPTUPLE_DELETE_IN_PROGRESS                 // deleter is running
)

// TupleSatisfiesVacuum classifies a version for pruning against horizon
func TupleSatisfiesVacuum(hdr *HeapTupleHeader, horizon types.TxnID, txnMgr *TransactionManager) HTSVResult {
	if hdr.Xmin != types.FrozenTxnID {
		switch txnMgr.GetStatus(hdr.Xmin) {
		case TXN_STATUS_ABORTED:
			return HEAPTUPLE_DEAD
		case TXN_STATUS_IN_PROGRESS:
			return HEAPTUPLE_INSERT_IN_PROGRESS
		}
	}

	if !hdr.Xmax.IsValid() {
		return HEAPTUPLE_LIVE
	}
	switch txnMgr.GetStatus(hdr.Xmax) {
	case TXN_STATUS_ABORTED:
		return HEAPTUPLE_LIVE
	case TXN_STATUS_IN_PROGRESS:
		return HEAPTUPLE_DELETE_IN_PROGRESS
	}
	if hdr.Xmax.Precedes(horizon) {
		return HEAPTUPLE_DEAD
	}
	return HEAPTUPLE_RECENTLY_DEAD
}

// HotSearchBuffer walks the HOT chain starting at off on tp and returns the
// offset of the member visible to snapshot. At most one member of a chain is
// visible to a snapshot. allDead is true when every member is dead to everyone.
// Caller must hold a pin and at least a shared latch on tp.
func HotSearchBuffer(tp *TablePage, off types.OffsetNumber, snapshot *Snapshot, txnMgr *TransactionManager, horizon types.TxnID) (found types.OffsetNumber, ok bool, allDead bool) {
	blockNum := tp.GetBlockNum()
	prevXmax := types.InvalidTxnID
	atChainStart := true
	allDead = true
	maxOff := tp.GetMaxOffsetNumber()

	for {
		if !off.IsValid() || off > maxOff {
			break
		}
		lp := tp.GetLinePointer(off)
		if !lp.IsNormal() {
			// a redirect can only be the root
			if lp.IsRedirect() && atChainStart {
				off = types.OffsetNumber(lp.Offset)
				atChainStart = false
				continue
			}
			break
		}

		hdr := tp.GetTupleHeader(off)
		// a heap only tuple must not be reached directly from an index
		if atChainStart && hdr.IsHeapOnly() {
			break
		}
		// the slot was reused by an unrelated tuple
		if prevXmax.IsValid() && hdr.Xmin != prevXmax {
			break
		}

		if TupleSatisfiesVisibility(hdr, snapshot, txnMgr) {
			return off, true, false
		}
		if allDead && TupleSatisfiesVacuum(hdr, horizon, txnMgr) != HEAPTUPLE_DEAD {
			allDead = false
		}

		if !hdr.IsHotUpdated() || hdr.CtidBlock != blockNum {
			break
		}
		off = hdr.CtidOffset
		prevXmax = hdr.Xmax
		atChainStart = false
	}

	return types.InvalidOffsetNumber, false, allDead
}
