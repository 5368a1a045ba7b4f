package access

import (
	pair "github.com/notEpsilon/go-pair"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// pruneState collects the line pointer changes of one prune pass
type pruneState struct {
	redirected []pair.Pair[types.OffsetNumber, types.OffsetNumber] // root -> first surviving member
	nowDead    []types.OffsetNumber
	nowUnused  []types.OffsetNumber
	visited    []bool
}

// PruneOpt removes HOT chain members which are dead to every snapshot when the
// page hint says something may be prunable before horizon.
// tp must be pinned by the caller and not latched. Pruning is skipped when
// someone else also pins the page because tuples may move.
func (t *TableHeap) PruneOpt(tp *TablePage, horizon types.TxnID) bool {
	tp.RLatch()
	pruneXid := tp.GetPruneXid()
	tp.RUnlatch()
	if !pruneXid.IsValid() || !pruneXid.Precedes(horizon) {
		return false
	}
	if tp.PinCount() > 1 {
		return false
	}

	tp.WLatch()
	defer tp.WUnlatch()
	if tp.PinCount() > 1 {
		return false
	}
	ndeleted := t.pagePrune(tp, horizon)
	tp.SetIsDirty(true)
	common.ShPrintf(common.DEBUG_INFO, "TableHeap::PruneOpt block=%d removed=%d\n", tp.GetBlockNum(), ndeleted)
	return true
}

// pagePrune must be called with tp write latched. returns the number of released tuples.
func (t *TableHeap) pagePrune(tp *TablePage, horizon types.TxnID) int {
	maxOff := tp.GetMaxOffsetNumber()
	st := &pruneState{visited: make([]bool, int(maxOff)+1)}

	for root := types.FirstOffsetNumber; root <= maxOff; root++ {
		t.pruneChain(tp, root, horizon, st)
	}

	// heap only tuples not reachable from any root are left by aborted updates
	for off := types.FirstOffsetNumber; off <= maxOff; off++ {
		if st.visited[off] || !tp.GetLinePointer(off).IsNormal() {
			continue
		}
		hdr := tp.GetTupleHeader(off)
		if hdr.IsHeapOnly() && TupleSatisfiesVacuum(hdr, horizon, t.txnMgr) == HEAPTUPLE_DEAD {
			st.nowUnused = append(st.nowUnused, off)
		}
	}

	for _, r := range st.redirected {
		tp.SetLinePointerRedirect(r.First, r.Second)
	}
	for _, off := range st.nowDead {
		tp.SetLinePointerDead(off)
	}
	for _, off := range st.nowUnused {
		tp.SetLinePointerUnused(off)
	}
	tp.RepairFragmentation()
	tp.SetPruneXid(t.nextPruneXid(tp))

	return len(st.redirected) + len(st.nowDead) + len(st.nowUnused)
}

func (t *TableHeap) pruneChain(tp *TablePage, root types.OffsetNumber, horizon types.TxnID, st *pruneState) {
	maxOff := tp.GetMaxOffsetNumber()
	rootLp := tp.GetLinePointer(root)
	start := root
	switch {
	case rootLp.IsRedirect():
		start = types.OffsetNumber(rootLp.Offset)
	case rootLp.IsNormal():
		if tp.GetTupleHeader(root).IsHeapOnly() {
			return
		}
	default:
		return
	}

	chain := make([]types.OffsetNumber, 0)
	prevXmax := types.InvalidTxnID
	for off := start; off.IsValid() && off <= maxOff && !st.visited[off]; {
		lp := tp.GetLinePointer(off)
		if !lp.IsNormal() {
			break
		}
		hdr := tp.GetTupleHeader(off)
		if off != root && !hdr.IsHeapOnly() {
			break
		}
		if prevXmax.IsValid() && hdr.Xmin != prevXmax {
			break
		}
		chain = append(chain, off)
		st.visited[off] = true
		if !hdr.IsHotUpdated() || hdr.CtidBlock != tp.GetBlockNum() {
			break
		}
		prevXmax = hdr.Xmax
		off = hdr.CtidOffset
	}

	if len(chain) == 0 {
		// redirect to nothing
		st.nowDead = append(st.nowDead, root)
		return
	}

	latestDead := -1
scan:
	for i, off := range chain {
		switch TupleSatisfiesVacuum(tp.GetTupleHeader(off), horizon, t.txnMgr) {
		case HEAPTUPLE_DEAD:
			latestDead = i
		case HEAPTUPLE_RECENTLY_DEAD:
		default:
			break scan
		}
	}
	if latestDead < 0 {
		return
	}

	for i := 0; i <= latestDead; i++ {
		if chain[i] != root {
			st.nowUnused = append(st.nowUnused, chain[i])
		}
	}
	if latestDead == len(chain)-1 {
		st.nowDead = append(st.nowDead, root)
	} else {
		st.redirected = append(st.redirected, pair.Pair[types.OffsetNumber, types.OffsetNumber]{First: root, Second: chain[latestDead+1]})
	}
}

// nextPruneXid returns the oldest deleter of remaining versions
func (t *TableHeap) nextPruneXid(tp *TablePage) types.TxnID {
	ret := types.InvalidTxnID
	maxOff := tp.GetMaxOffsetNumber()
	for off := types.FirstOffsetNumber; off <= maxOff; off++ {
		if !tp.GetLinePointer(off).IsNormal() {
			continue
		}
		hdr := tp.GetTupleHeader(off)
		if !hdr.Xmax.IsValid() || t.txnMgr.IsAborted(hdr.Xmax) {
			continue
		}
		if !ret.IsValid() || hdr.Xmax.Precedes(ret) {
			ret = hdr.Xmax
		}
	}
	return ret
}
