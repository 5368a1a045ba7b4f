package executors

import (
	"github.com/ryogrid/SamehadaBitmapScan/catalog"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/execution/plans"
	"github.com/ryogrid/SamehadaBitmapScan/storage/access"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
)

/**
 * DeleteExecutor deletes the rows its child produces.
 * Index entries are kept. A reader which follows one of them finds the
 * version deleted and skips it by visibility check.
 */
type DeleteExecutor struct {
	context *ExecutorContext
	plan    *plans.DeletePlanNode
	child   Executor
	txn     *access.Transaction
}

func NewDeleteExecutor(context *ExecutorContext, plan *plans.DeletePlanNode, child Executor) Executor {
	return &DeleteExecutor{context, plan, child, context.GetTransaction()}
}

func (e *DeleteExecutor) Init() {
	e.child.Init()
}

// Next deletes one row and returns it
func (e *DeleteExecutor) Next() (*tuple.Tuple, Done, error) {
	t, done, err := e.child.Next()
	if err != nil {
		e.txn.SetState(access.ABORTED)
		return nil, true, err
	}
	if done {
		return nil, true, nil
	}

	rid := t.GetRID()
	tableMetadata := e.child.GetTableMetaData()
	if plm := e.context.GetPredicateLockManager(); plm != nil {
		if err := plm.CheckForSerializableConflictIn(tableMetadata.OID(), *rid, e.txn); err != nil {
			e.txn.SetState(access.ABORTED)
			return nil, true, err
		}
	}
	if err := tableMetadata.Table().DeleteTuple(rid, e.txn); err != nil {
		common.ShPrintf(common.DEBUG_INFO, "DeleteExecutor: delete failed rid=%v %v\n", *rid, err)
		e.txn.SetState(access.ABORTED)
		return nil, true, err
	}
	return t, false, nil
}

func (e *DeleteExecutor) GetOutputSchema() *schema.Schema { return e.plan.OutputSchema() }

func (e *DeleteExecutor) GetTableMetaData() *catalog.TableMetadata { return e.child.GetTableMetaData() }
