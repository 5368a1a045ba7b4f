package samehada

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/golang-collections/collections/queue"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/concurrency"
	"github.com/ryogrid/SamehadaBitmapScan/storage/access"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
)

// TxnFunc is the body of a request. It runs in txn, which is committed when
// it returns no error and aborted otherwise.
type TxnFunc func(ctx context.Context, sdb *SamehadaDB, txn *access.Transaction) ([]*tuple.Tuple, error)

type queryRequest struct {
	reqId    uint64
	level    access.IsolationLevel
	fn       TxnFunc
	nretries int
	callerCh chan *ReqResult
}

type ReqResult struct {
	ReqId    uint64
	Result   []*tuple.Tuple
	Err      error
	NRetries int
	req      *queryRequest
}

/**
 * RequestManager runs requests on their own goroutines, at most
 * common.MaxTxnThreadNum at once. A request whose transaction failed with a
 * serialization failure is queued again with a new transaction.
 */
type RequestManager struct {
	sdb               *SamehadaDB
	ctx               context.Context
	nextReqId         uint64
	execQue           *queue.Queue
	queMutex          *sync.Mutex
	curExectingReqNum uint64
	inCh              chan *ReqResult
	isExecutionActive atomic.Bool
}

func NewRequestManager(ctx context.Context, sdb *SamehadaDB) *RequestManager {
	ret := &RequestManager{sdb: sdb, ctx: ctx, execQue: queue.New(), queMutex: new(sync.Mutex), inCh: make(chan *ReqResult, 100)}
	ret.isExecutionActive.Store(true)
	return ret
}

// AppendRequest queues fn. The result is sent to the returned channel.
func (reqManager *RequestManager) AppendRequest(level access.IsolationLevel, fn TxnFunc) <-chan *ReqResult {
	reqManager.queMutex.Lock()
	retCh := make(chan *ReqResult, 1)
	reqManager.execQue.Enqueue(&queryRequest{reqId: reqManager.nextReqId, level: level, fn: fn, callerCh: retCh})
	reqManager.nextReqId++
	reqManager.queMutex.Unlock()

	// wake up execution thread
	reqManager.inCh <- nil

	return retCh
}

func (reqManager *RequestManager) StartTh() {
	go reqManager.Run()
}

func (reqManager *RequestManager) StopTh() {
	reqManager.isExecutionActive.Store(false)
	reqManager.inCh <- nil
}

func (reqManager *RequestManager) executeTxnForTh(qr *queryRequest) {
	sdb := reqManager.sdb
	txn := sdb.BeginTxn(qr.level)
	txn.SetDebugInfo(fmt.Sprintf("req%d retry%d", qr.reqId, qr.nretries))
	result, err := qr.fn(reqManager.ctx, sdb, txn)
	if err != nil || txn.GetState() == access.ABORTED {
		sdb.AbortTxn(txn)
		result = nil
	} else {
		sdb.CommitTxn(txn)
	}
	reqManager.inCh <- &ReqResult{ReqId: qr.reqId, Result: result, Err: err, NRetries: qr.nretries, req: qr}
}

// caller must having lock of queMutex
func (reqManager *RequestManager) executeQuedTxns() {
	for reqManager.execQue.Len() > 0 && reqManager.curExectingReqNum < common.MaxTxnThreadNum {
		qr := reqManager.execQue.Dequeue().(*queryRequest)
		go reqManager.executeTxnForTh(qr)
		reqManager.curExectingReqNum++
	}
}

// caller must having lock of queMutex
func (reqManager *RequestManager) handleAbortedByCCTxn(result *ReqResult) bool {
	if result.req.nretries >= common.MaxSerializationRetry {
		return false
	}
	result.req.nretries++
	common.ShPrintf(common.DEBUG_INFO, "RequestManager: request %d is queued again\n", result.ReqId)
	reqManager.execQue.Enqueue(result.req)
	return true
}

func (reqManager *RequestManager) Run() {
	for {
		recvVal := <-reqManager.inCh
		if recvVal != nil { // receive result
			reqManager.queMutex.Lock()
			reqManager.curExectingReqNum--
			requeued := recvVal.Err == concurrency.ErrSerializationFailure && reqManager.handleAbortedByCCTxn(recvVal)
			reqManager.queMutex.Unlock()
			if !requeued {
				recvVal.req.callerCh <- recvVal
			}
		}

		// check stop signal or new request
		if !reqManager.isExecutionActive.Load() {
			break
		}
		reqManager.queMutex.Lock()
		reqManager.executeQuedTxns()
		reqManager.queMutex.Unlock()
	}
}
