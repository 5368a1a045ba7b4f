package access

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

/**
 * Transaction states:
 *
 * RUNNING -> COMMITTED
 *    |
 *    +-----> ABORTED
 *
 **/
type TransactionState int32

const (
	RUNNING TransactionState = iota
	COMMITTED
	ABORTED
)

type IsolationLevel int32

const (
	READ_COMMITTED IsolationLevel = iota
	REPEATABLE_READ
	SERIALIZABLE
)

/**
 * Type of write operation.
 */
type WType int32

const (
	INSERT WType = iota
	DELETE
	UPDATE
)

/**
 * Transaction tracks information related to a transaction.
 */
type Transaction struct {
	state          TransactionState
	txn_id         types.TxnID
	isolationLevel IsolationLevel
	snapshot       *Snapshot
	// number of tuples written, per kind of write
	writeCount map[WType]int
	// rw-antidependencies found by the serializable conflict checks.
	// this txn read a version which txns in the set have overwritten.
	conflictOut mapset.Set[types.TxnID]
	dbgInfo     string
}

func NewTransaction(txn_id types.TxnID, level IsolationLevel) *Transaction {
	return &Transaction{
		RUNNING,
		txn_id,
		level,
		nil,
		make(map[WType]int),
		mapset.NewSet[types.TxnID](),
		"",
	}
}

/** @return the id of this transaction */
func (txn *Transaction) GetTransactionId() types.TxnID { return txn.txn_id }

func (txn *Transaction) GetIsolationLevel() IsolationLevel { return txn.isolationLevel }

func (txn *Transaction) IsSerializable() bool { return txn.isolationLevel == SERIALIZABLE }

/** @return the current state of the transaction */
func (txn *Transaction) GetState() TransactionState { return txn.state }

func (txn *Transaction) SetState(state TransactionState) {
	if common.EnableDebug {
		if state == ABORTED {
			common.ShPrintf(common.RDB_OP_FUNC_CALL, "Transaction::SetState called. txn.txn_id:%d dbgInfo:%s state:ABORTED\n", txn.txn_id, txn.dbgInfo)
		}
	}
	txn.state = state
}

// GetSnapshot returns the snapshot the txn currently reads with
func (txn *Transaction) GetSnapshot() *Snapshot { return txn.snapshot }

func (txn *Transaction) setSnapshot(snapshot *Snapshot) { txn.snapshot = snapshot }

func (txn *Transaction) AddWrite(wtype WType) { txn.writeCount[wtype]++ }

func (txn *Transaction) GetWriteCount(wtype WType) int { return txn.writeCount[wtype] }

func (txn *Transaction) AddConflictOut(writer types.TxnID) { txn.conflictOut.Add(writer) }

func (txn *Transaction) HasConflictOut(writer types.TxnID) bool { return txn.conflictOut.Contains(writer) }

func (txn *Transaction) GetConflictOut() []types.TxnID { return txn.conflictOut.ToSlice() }

func (txn *Transaction) SetDebugInfo(dbgInfo string) { txn.dbgInfo = dbgInfo }
