package access

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

type TxnStatus int32

const (
	TXN_STATUS_IN_PROGRESS TxnStatus = iota
	TXN_STATUS_COMMITTED
	TXN_STATUS_ABORTED
)

/**
 * TransactionManager keeps track of all the transactions running in the system
 * and remembers the outcome of finished ones for visibility checks.
 */
type TransactionManager struct {
	next_txn_id types.TxnID
	activeTxns  *xsync.MapOf[types.TxnID, *Transaction]
	statusTable *xsync.MapOf[types.TxnID, TxnStatus]
	mutex       *sync.Mutex
}

func NewTransactionManager() *TransactionManager {
	return &TransactionManager{
		types.FirstNormalTxnID,
		xsync.NewMapOf[types.TxnID, *Transaction](),
		xsync.NewMapOf[types.TxnID, TxnStatus](),
		new(sync.Mutex),
	}
}

func (transaction_manager *TransactionManager) Begin(level IsolationLevel) *Transaction {
	transaction_manager.mutex.Lock()
	defer transaction_manager.mutex.Unlock()

	txn := NewTransaction(transaction_manager.next_txn_id, level)
	transaction_manager.next_txn_id++
	transaction_manager.statusTable.Store(txn.GetTransactionId(), TXN_STATUS_IN_PROGRESS)
	txn.setSnapshot(transaction_manager.takeSnapshot(txn.GetTransactionId()))
	transaction_manager.activeTxns.Store(txn.GetTransactionId(), txn)

	if common.EnableDebug {
		common.ShPrintf(common.RDB_OP_FUNC_CALL, "TransactionManager::Begin txn_id:%d\n", txn.GetTransactionId())
	}
	return txn
}

// takeSnapshot must be called with mutex held
func (transaction_manager *TransactionManager) takeSnapshot(cur types.TxnID) *Snapshot {
	xip := mapset.NewSet[types.TxnID]()
	xmin := transaction_manager.next_txn_id
	transaction_manager.activeTxns.Range(func(id types.TxnID, _ *Transaction) bool {
		if id == cur {
			return true
		}
		xip.Add(id)
		if id.Precedes(xmin) {
			xmin = id
		}
		return true
	})
	return &Snapshot{xmin, transaction_manager.next_txn_id, xip, cur}
}

// RefreshSnapshot gives a READ_COMMITTED txn a new snapshot for its next statement.
// Other levels keep the snapshot taken at Begin.
func (transaction_manager *TransactionManager) RefreshSnapshot(txn *Transaction) *Snapshot {
	if txn.GetIsolationLevel() != READ_COMMITTED {
		return txn.GetSnapshot()
	}
	transaction_manager.mutex.Lock()
	defer transaction_manager.mutex.Unlock()
	txn.setSnapshot(transaction_manager.takeSnapshot(txn.GetTransactionId()))
	return txn.GetSnapshot()
}

func (transaction_manager *TransactionManager) Commit(txn *Transaction) {
	transaction_manager.finish(txn, COMMITTED, TXN_STATUS_COMMITTED)
}

// Abort marks the txn aborted. Versions it wrote become invisible to everyone
// and are removed later by pruning, so nothing is undone here.
func (transaction_manager *TransactionManager) Abort(txn *Transaction) {
	transaction_manager.finish(txn, ABORTED, TXN_STATUS_ABORTED)
}

func (transaction_manager *TransactionManager) finish(txn *Transaction, state TransactionState, status TxnStatus) {
	transaction_manager.mutex.Lock()
	defer transaction_manager.mutex.Unlock()

	txn.SetState(state)
	transaction_manager.statusTable.Store(txn.GetTransactionId(), status)
	transaction_manager.activeTxns.Delete(txn.GetTransactionId())
}

// GetStatus returns the status of xid. FrozenTxnID is always committed.
func (transaction_manager *TransactionManager) GetStatus(xid types.TxnID) TxnStatus {
	if xid == types.FrozenTxnID {
		return TXN_STATUS_COMMITTED
	}
	if status, ok := transaction_manager.statusTable.Load(xid); ok {
		return status
	}
	// unknown ids are left by crashed txns
	return TXN_STATUS_ABORTED
}

func (transaction_manager *TransactionManager) IsCommitted(xid types.TxnID) bool {
	return transaction_manager.GetStatus(xid) == TXN_STATUS_COMMITTED
}

func (transaction_manager *TransactionManager) IsAborted(xid types.TxnID) bool {
	return transaction_manager.GetStatus(xid) == TXN_STATUS_ABORTED
}

// GetOldestXmin returns the horizon. A version deleted by a txn committed before it
// is invisible to every running and future snapshot.
func (transaction_manager *TransactionManager) GetOldestXmin() types.TxnID {
	transaction_manager.mutex.Lock()
	defer transaction_manager.mutex.Unlock()

	horizon := transaction_manager.next_txn_id
	transaction_manager.activeTxns.Range(func(id types.TxnID, txn *Transaction) bool {
		if id.Precedes(horizon) {
			horizon = id
		}
		if snap := txn.GetSnapshot(); snap != nil && snap.Xmin.Precedes(horizon) {
			horizon = snap.Xmin
		}
		return true
	})
	return horizon
}

func (transaction_manager *TransactionManager) GetTransaction(xid types.TxnID) (*Transaction, bool) {
	return transaction_manager.activeTxns.Load(xid)
}

func (transaction_manager *TransactionManager) ActiveTxnCount() int {
	return transaction_manager.activeTxns.Size()
}
