package executors

import (
	"github.com/ryogrid/SamehadaBitmapScan/catalog"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/execution/expression"
	"github.com/ryogrid/SamehadaBitmapScan/execution/plans"
	"github.com/ryogrid/SamehadaBitmapScan/storage/access"
	"github.com/ryogrid/SamehadaBitmapScan/storage/bitmap"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// BitmapHeapScanStats are counters of one bitmap heap scan. They are not reset by ReScan.
type BitmapHeapScanStats struct {
	HeapFetches          int64 // rows returned by the heap, before recheck and filter
	ExactPages           int64
	LossyPages           int64
	RowsRemovedByRecheck int64
	RowsRemovedByFilter  int64
	PrefetchIssued       int64
	PagesBeyondEnd       int64 // bitmap pages past the end of the relation
}

/**
 * BitmapHeapScanExecutor fetches the rows at the locations of the bitmap built
 * by its child, in block order, one page at a time.
 * The heap scan handle is created on the first Next and dropped as soon as the
 * bitmap is exhausted. While a page is current its pin is held by the handle.
 * Returned rows are copies, so they stay valid after the scan moves on.
 */
type BitmapHeapScanExecutor struct {
	context       *ExecutorContext
	plan          *plans.BitmapHeapScanPlanNode
	child         BitmapExecutor
	tableMetadata *catalog.TableMetadata
	txn           *access.Transaction

	scan     *access.HeapScanDesc
	tbm      bitmap.Node
	tbmIter  bitmap.Iterator
	tbmres   *bitmap.PageResult
	ntuples  int // entries of tbmres not yet consumed. negative for a lossy page
	prefetch *bitmapPrefetcher
	stats    BitmapHeapScanStats
	// the bitmap was consumed to the end. cleared by ReScan
	exhausted bool
	opened    bool
	ended     bool
}

func NewBitmapHeapScanExecutor(context *ExecutorContext, plan *plans.BitmapHeapScanPlanNode, child BitmapExecutor) *BitmapHeapScanExecutor {
	return &BitmapHeapScanExecutor{
		context: context,
		plan:    plan,
		child:   child,
		txn:     context.GetTransaction(),
	}
}

// Init opens the relation first and then the child, because the child reads
// indexes of the relation
func (e *BitmapHeapScanExecutor) Init() {
	if !e.opened {
		e.tableMetadata = e.context.GetCatalog().OpenRelation(e.plan.GetTableOID())
		e.opened = e.tableMetadata != nil
	}
	e.child.Init()
}

func (e *BitmapHeapScanExecutor) initScanDesc() {
	if e.scan != nil {
		return
	}
	var locker access.PredicateLocker
	if plm := e.context.GetPredicateLockManager(); plm != nil {
		locker = plm
	}
	var snapshot *access.Snapshot
	if e.txn != nil {
		snapshot = e.txn.GetSnapshot()
	}
	e.scan = access.BeginScan(e.tableMetadata.Table(), e.tableMetadata.OID(), e.txn, snapshot, locker)
}

func (e *BitmapHeapScanExecutor) freeScanDesc() {
	if e.scan != nil {
		e.scan.EndScan()
		e.scan = nil
	}
}

// the bitmap is owned by the child. only the iterators are released here
func (e *BitmapHeapScanExecutor) freeBitmapState() {
	e.tbm = nil
	e.tbmres = nil
	e.ntuples = 0
	if e.tbmIter != nil {
		e.tbmIter.End()
		e.tbmIter = nil
	}
	if e.prefetch != nil {
		e.stats.PrefetchIssued += e.prefetch.issued
		e.prefetch.end()
		e.prefetch = nil
	}
}

// EagerFree releases the scan handle and the bitmap state. It may be called
// any number of times.
func (e *BitmapHeapScanExecutor) EagerFree() {
	e.freeScanDesc()
	e.freeBitmapState()
}

func (e *BitmapHeapScanExecutor) Next() (*tuple.Tuple, Done, error) {
	if e.tableMetadata == nil {
		return nil, true, catalog.ErrTableNotFound
	}
	for {
		tuple_, err := e.bitmapHeapNext()
		if err != nil {
			return nil, true, err
		}
		if tuple_ == nil {
			return nil, true, nil
		}
		if !e.selects(tuple_, e.plan.GetPredicate()) {
			e.stats.RowsRemovedByFilter++
			continue
		}
		ret := e.projects(tuple_)
		ret.SetRID(tuple_.GetRID())
		return ret, false, nil
	}
}

// bitmapHeapNext returns the next row which passed recheck, or nil at the end
func (e *BitmapHeapScanExecutor) bitmapHeapNext() (*tuple.Tuple, error) {
	if e.exhausted {
		return nil, nil
	}
	if e.tbm == nil {
		node, err := e.child.MultiExec()
		if err != nil {
			return nil, err
		}
		iter, err := bitmap.Begin(node)
		if err != nil {
			return nil, err
		}
		prefetch, err := newBitmapPrefetcher(node, e.context.GetTargetPrefetchPages(), e.tableMetadata.Table())
		if err != nil {
			iter.End()
			return nil, err
		}
		e.tbm = node
		e.tbmIter = iter
		e.prefetch = prefetch
		e.tbmres = nil
		e.ntuples = 0
	}
	e.initScanDesc()

	for {
		if e.tbmres == nil || e.ntuples == 0 {
			if e.context.IsCanceled() {
				return nil, nil
			}
			e.tbmres = e.tbmIter.Next()
			if e.tbmres == nil {
				break
			}
			e.ntuples = e.tbmres.NTuples()
			if err := e.prefetch.consume(e.tbmres.BlockNo); err != nil {
				return nil, err
			}

			// the relation may have been truncated since the bitmap was built
			if e.tbmres.BlockNo >= e.scan.NBlocks() {
				e.stats.PagesBeyondEnd++
				e.ntuples = 0
				continue
			}
			if e.ntuples == 0 {
				continue
			}

			if err := e.scan.BitGetPage(e.tbmres); err != nil {
				return nil, err
			}
			if e.tbmres.IsLossy() {
				e.stats.LossyPages++
			} else {
				e.stats.ExactPages++
			}
			e.prefetch.rampUp()
		} else {
			e.ntuples--
			e.prefetch.bump()
		}

		tuple_ := e.scan.NextVisible()
		if tuple_ == nil {
			// no more visible rows on this page
			e.ntuples = 0
			continue
		}

		e.prefetch.topUp()
		e.stats.HeapFetches++

		if e.tbmres.Recheck && !e.Recheck(tuple_) {
			e.stats.RowsRemovedByRecheck++
			continue
		}
		return tuple_, nil
	}

	common.ShPrintf(common.BITMAP_SCAN_INFO, "BitmapHeapScanExecutor: done oid=%d stats=%+v\n", e.plan.GetTableOID(), e.Stats())
	e.EagerFree()
	e.exhausted = true
	return nil, nil
}

// Recheck tests a row against the original index condition.
// It is false until Init has opened the relation.
func (e *BitmapHeapScanExecutor) Recheck(tuple_ *tuple.Tuple) bool {
	if !e.opened {
		return false
	}
	qual := e.plan.GetBitmapQualOrig()
	return qual == nil || qual.Evaluate(tuple_, e.tableMetadata.Schema()).ToBoolean()
}

// ReScan restarts the scan. The child is rescanned here unless it has
// pending parameter changes, in which case it rescans itself on MultiExec.
func (e *BitmapHeapScanExecutor) ReScan() {
	if e.scan != nil {
		e.scan.ReScan()
	}
	e.freeBitmapState()
	e.exhausted = false
	if !e.child.HasParamChanges() {
		e.child.ReScan()
	}
}

func (e *BitmapHeapScanExecutor) End() {
	if e.ended {
		return
	}
	e.ended = true
	e.child.End()
	e.EagerFree()
	if e.opened {
		e.context.GetCatalog().CloseRelation(e.tableMetadata)
		e.opened = false
	}
}

func (e *BitmapHeapScanExecutor) Stats() BitmapHeapScanStats {
	ret := e.stats
	if e.prefetch != nil {
		ret.PrefetchIssued += e.prefetch.issued
	}
	return ret
}

// PrefetchState reports the read-ahead state. Disabled is returned when no
// bitmap is being iterated.
func (e *BitmapHeapScanExecutor) PrefetchState() (state PrefetchState, lead int, target int) {
	if e.prefetch == nil {
		return PrefetchDisabled, 0, 0
	}
	return e.prefetch.State(), e.prefetch.Lead(), e.prefetch.Target()
}

// HasScanDesc reports whether the heap scan handle is alive
func (e *BitmapHeapScanExecutor) HasScanDesc() bool {
	return e.scan != nil
}

// select evaluates an expression on the tuple
func (e *BitmapHeapScanExecutor) selects(tuple_ *tuple.Tuple, predicate expression.Expression) bool {
	return predicate == nil || predicate.Evaluate(tuple_, e.tableMetadata.Schema()).ToBoolean()
}

// project applies the projection operator defined by the output schema
func (e *BitmapHeapScanExecutor) projects(tuple_ *tuple.Tuple) *tuple.Tuple {
	outputSchema := e.plan.OutputSchema()
	if outputSchema == nil {
		return tuple_
	}

	values := []types.Value{}
	for i := uint32(0); i < outputSchema.GetColumnCount(); i++ {
		colIndex := e.tableMetadata.Schema().GetColIndex(outputSchema.GetColumns()[i].GetColumnName())
		values = append(values, tuple_.GetValue(e.tableMetadata.Schema(), colIndex))
	}

	return tuple.NewTupleFromSchema(values, outputSchema)
}

func (e *BitmapHeapScanExecutor) GetOutputSchema() *schema.Schema {
	return e.plan.OutputSchema()
}

func (e *BitmapHeapScanExecutor) GetTableMetaData() *catalog.TableMetadata {
	return e.tableMetadata
}
