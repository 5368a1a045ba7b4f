package concurrency

import (
	"encoding/binary"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/errors"
	"github.com/ryogrid/SamehadaBitmapScan/storage/access"
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	"github.com/ryogrid/SamehadaBitmapScan/types"
	"github.com/spaolacci/murmur3"
)

const ErrSerializationFailure = errors.Error("could not serialize access due to read/write dependencies among transactions")

// PredicateLockTag identifies a locked row version
type PredicateLockTag struct {
	Oid uint32
	RID page.RID
}

type lockPartition struct {
	mutex   sync.Mutex
	holders map[PredicateLockTag]mapset.Set[types.TxnID]
}

/**
 * PredicateLockManager keeps the reads of SERIALIZABLE transactions and finds
 * read/write conflicts among them.
 * A read of a version which was written by a concurrent transaction, or a write
 * of a version which a concurrent transaction has read, makes a rw-conflict
 * edge reader -> writer. When both directions exist between two transactions
 * the one which detects it fails with ErrSerializationFailure.
 * Other isolation levels are not tracked.
 */
type PredicateLockManager struct {
	txnMgr     *access.TransactionManager
	partitions []*lockPartition
	// txn id -> tags held by the txn
	held *xsync.MapOf[types.TxnID, mapset.Set[PredicateLockTag]]
}

func NewPredicateLockManager(txnMgr *access.TransactionManager) *PredicateLockManager {
	partitions := make([]*lockPartition, common.PredicateLockPartitionNum)
	for i := range partitions {
		partitions[i] = &lockPartition{holders: make(map[PredicateLockTag]mapset.Set[types.TxnID])}
	}
	return &PredicateLockManager{
		txnMgr:     txnMgr,
		partitions: partitions,
		held:       xsync.NewMapOf[types.TxnID, mapset.Set[PredicateLockTag]](),
	}
}

func genHashMurMur(tag PredicateLockTag) uint32 {
	buf := make([]byte, 10)
	binary.LittleEndian.PutUint32(buf[0:], tag.Oid)
	binary.LittleEndian.PutUint32(buf[4:], uint32(tag.RID.BlockNum))
	binary.LittleEndian.PutUint16(buf[8:], uint16(tag.RID.Offset))
	h := murmur3.New128()
	h.Write(buf)
	return binary.LittleEndian.Uint32(h.Sum(nil))
}

func (plm *PredicateLockManager) partitionOf(tag PredicateLockTag) *lockPartition {
	return plm.partitions[genHashMurMur(tag)%uint32(len(plm.partitions))]
}

func (plm *PredicateLockManager) PredicateLockTuple(oid uint32, rid page.RID, txn *access.Transaction) {
	if txn == nil || !txn.IsSerializable() {
		return
	}
	tag := PredicateLockTag{oid, rid}
	part := plm.partitionOf(tag)
	part.mutex.Lock()
	holders, ok := part.holders[tag]
	if !ok {
		holders = mapset.NewThreadUnsafeSet[types.TxnID]()
		part.holders[tag] = holders
	}
	holders.Add(txn.GetTransactionId())
	part.mutex.Unlock()

	tags, _ := plm.held.LoadOrCompute(txn.GetTransactionId(), func() mapset.Set[PredicateLockTag] {
		return mapset.NewSet[PredicateLockTag]()
	})
	tags.Add(tag)
}

// CheckForSerializableConflictOut is called by a reader for each version it examined
func (plm *PredicateLockManager) CheckForSerializableConflictOut(visible bool, oid uint32, rid page.RID, hdr *access.HeapTupleHeader, txn *access.Transaction) error {
	if txn == nil || !txn.IsSerializable() {
		return nil
	}

	var writer types.TxnID
	switch access.TupleSatisfiesVacuum(hdr, plm.txnMgr.GetOldestXmin(), plm.txnMgr) {
	case access.HEAPTUPLE_LIVE:
		if visible {
			return nil
		}
		writer = hdr.Xmin
	case access.HEAPTUPLE_RECENTLY_DEAD:
		if !visible {
			return nil
		}
		writer = hdr.Xmax
	case access.HEAPTUPLE_DELETE_IN_PROGRESS:
		writer = hdr.Xmax
	case access.HEAPTUPLE_INSERT_IN_PROGRESS:
		writer = hdr.Xmin
	default:
		return nil
	}

	if writer == txn.GetTransactionId() || writer == types.FrozenTxnID {
		return nil
	}
	// the writer finished before the snapshot was taken, so it is not concurrent
	if !txn.GetSnapshot().XidInProgress(writer) && plm.txnMgr.IsCommitted(writer) {
		return nil
	}
	return plm.addRWConflict(txn, writer, txn.GetTransactionId())
}

// CheckForSerializableConflictIn is called by a writer before it modifies a
// version. Every serializable reader which holds a lock on it gets an edge to
// the writer.
func (plm *PredicateLockManager) CheckForSerializableConflictIn(oid uint32, rid page.RID, txn *access.Transaction) error {
	if txn == nil || !txn.IsSerializable() {
		return nil
	}
	tag := PredicateLockTag{oid, rid}
	part := plm.partitionOf(tag)
	part.mutex.Lock()
	var readers []types.TxnID
	if holders, ok := part.holders[tag]; ok {
		readers = holders.ToSlice()
	}
	part.mutex.Unlock()

	for _, readerId := range readers {
		if readerId == txn.GetTransactionId() {
			continue
		}
		reader, ok := plm.txnMgr.GetTransaction(readerId)
		if !ok {
			continue
		}
		if err := plm.addRWConflict(reader, txn.GetTransactionId(), txn.GetTransactionId()); err != nil {
			return err
		}
	}
	return nil
}

// addRWConflict records reader -> writer. detector is the transaction on
// whose behalf the check runs.
func (plm *PredicateLockManager) addRWConflict(reader *access.Transaction, writer types.TxnID, detector types.TxnID) error {
	reader.AddConflictOut(writer)
	writerTxn, ok := plm.txnMgr.GetTransaction(writer)
	if !ok {
		return nil
	}
	if writerTxn.IsSerializable() && writerTxn.HasConflictOut(reader.GetTransactionId()) {
		common.ShPrintf(common.DEBUG_INFO, "rw-conflict cycle %d <-> %d detected by %d\n",
			reader.GetTransactionId(), writer, detector)
		return ErrSerializationFailure
	}
	return nil
}

// ReleaseTxnLocks drops every lock held by txn
func (plm *PredicateLockManager) ReleaseTxnLocks(txn *access.Transaction) {
	tags, ok := plm.held.LoadAndDelete(txn.GetTransactionId())
	if !ok {
		return
	}
	tags.Each(func(tag PredicateLockTag) bool {
		part := plm.partitionOf(tag)
		part.mutex.Lock()
		if holders, ok := part.holders[tag]; ok {
			holders.Remove(txn.GetTransactionId())
			if holders.Cardinality() == 0 {
				delete(part.holders, tag)
			}
		}
		part.mutex.Unlock()
		return false
	})
}

func (plm *PredicateLockManager) IsTupleLocked(oid uint32, rid page.RID, txnId types.TxnID) bool {
	tag := PredicateLockTag{oid, rid}
	part := plm.partitionOf(tag)
	part.mutex.Lock()
	defer part.mutex.Unlock()
	holders, ok := part.holders[tag]
	return ok && holders.Contains(txnId)
}

func (plm *PredicateLockManager) NLocksHeldBy(txnId types.TxnID) int {
	tags, ok := plm.held.Load(txnId)
	if !ok {
		return 0
	}
	return tags.Cardinality()
}
