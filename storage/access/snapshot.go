package access

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// Snapshot decides which transactions' effects a reader sees.
// A txn is seen when it committed before the snapshot was taken.
type Snapshot struct {
	Xmin   types.TxnID // every txn older than this had finished
	Xmax   types.TxnID // first txn id not yet assigned
	Xip    mapset.Set[types.TxnID]
	CurTxn types.TxnID // owner of the snapshot. its own writes are visible
}

// XidInProgress reports whether xid had not finished when the snapshot was taken
func (s *Snapshot) XidInProgress(xid types.TxnID) bool {
	if !xid.Precedes(s.Xmax) {
		return true
	}
	if xid.Precedes(s.Xmin) {
		return false
	}
	return s.Xip.Contains(xid)
}

// NewSnapshotAny returns a snapshot which treats every committed txn as finished.
// It is used by tests and maintenance paths.
func NewSnapshotAny(cur types.TxnID) *Snapshot {
	return &Snapshot{types.FirstNormalTxnID, types.TxnID(^uint32(0)), mapset.NewSet[types.TxnID](), cur}
}
