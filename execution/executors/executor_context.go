// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package executors

import (
	"context"
	"sync/atomic"

	"github.com/ryogrid/SamehadaBitmapScan/catalog"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/concurrency"
	"github.com/ryogrid/SamehadaBitmapScan/storage/access"
	"github.com/ryogrid/SamehadaBitmapScan/storage/buffer"
)

/**
 * ExecutorContext stores all the context necessary to run an executor.
 * A query is canceled by canceling ctx or by SetQueryFinishPending.
 */
type ExecutorContext struct {
	ctx                 context.Context
	catalog             *catalog.Catalog
	bpm                 *buffer.BufferPoolManager
	txn                 *access.Transaction
	predLocks           *concurrency.PredicateLockManager
	targetPrefetchPages int
	queryFinishPending  atomic.Bool
}

func NewExecutorContext(ctx context.Context, catalog *catalog.Catalog, bpm *buffer.BufferPoolManager, txn *access.Transaction, predLocks *concurrency.PredicateLockManager) *ExecutorContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ExecutorContext{
		ctx:                 ctx,
		catalog:             catalog,
		bpm:                 bpm,
		txn:                 txn,
		predLocks:           predLocks,
		targetPrefetchPages: common.DefaultTargetPrefetchPages,
	}
}

func (e *ExecutorContext) GetCatalog() *catalog.Catalog {
	return e.catalog
}

func (e *ExecutorContext) GetBufferPoolManager() *buffer.BufferPoolManager {
	return e.bpm
}

func (e *ExecutorContext) GetTransaction() *access.Transaction {
	return e.txn
}

func (e *ExecutorContext) GetPredicateLockManager() *concurrency.PredicateLockManager {
	return e.predLocks
}

// SetTargetPrefetchPages sets the prefetch distance ceiling of bitmap heap scans.
// 0 disables prefetching. Scans which already started keep their value.
func (e *ExecutorContext) SetTargetPrefetchPages(n int) {
	if n < 0 {
		n = 0
	}
	e.targetPrefetchPages = n
}

func (e *ExecutorContext) GetTargetPrefetchPages() int {
	return e.targetPrefetchPages
}

func (e *ExecutorContext) SetQueryFinishPending(pending bool) {
	e.queryFinishPending.Store(pending)
}

// IsCanceled reports whether the running query should stop producing rows
func (e *ExecutorContext) IsCanceled() bool {
	return e.queryFinishPending.Load() || e.ctx.Err() != nil
}
