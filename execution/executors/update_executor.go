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
 * UpdateExecutor overwrites columns of the rows its child produces.
 * When no indexed column changes, the new version is put on the same page if
 * possible (HOT update) and indexes are not touched. Otherwise every index
 * gets an entry for the new location. Entries of the old location are kept.
 */
type UpdateExecutor struct {
	context *ExecutorContext
	plan    *plans.UpdatePlanNode
	child   Executor
	txn     *access.Transaction
	nhot    int
}

func NewUpdateExecutor(context *ExecutorContext, plan *plans.UpdatePlanNode, child Executor) Executor {
	return &UpdateExecutor{context: context, plan: plan, child: child, txn: context.GetTransaction()}
}

func (e *UpdateExecutor) Init() {
	e.child.Init()
}

// Next updates one row and returns its new version
func (e *UpdateExecutor) Next() (*tuple.Tuple, Done, error) {
	t, done, err := e.child.Next()
	if err != nil {
		e.txn.SetState(access.ABORTED)
		return nil, true, err
	}
	if done {
		return nil, true, nil
	}

	tableMetadata := e.child.GetTableMetaData()
	schema_ := tableMetadata.Schema()
	rid := t.GetRID()

	// the child may project. the whole old row is read again from the heap
	old, err := tableMetadata.Table().FetchVersion(rid, e.txn.GetSnapshot())
	if err != nil {
		e.txn.SetState(access.ABORTED)
		return nil, true, err
	}
	oldValues := old.GetValues(schema_)
	newValues := e.plan.Apply(oldValues)

	indexChanged := false
	for ii, index_ := range tableMetadata.Indexes() {
		if index_ != nil && !oldValues[ii].CompareEquals(newValues[ii]) {
			indexChanged = true
		}
	}

	if plm := e.context.GetPredicateLockManager(); plm != nil {
		if err := plm.CheckForSerializableConflictIn(tableMetadata.OID(), *rid, e.txn); err != nil {
			e.txn.SetState(access.ABORTED)
			return nil, true, err
		}
	}

	newTuple := tuple.NewTupleFromSchema(newValues, schema_)
	newRID, hot, err := tableMetadata.Table().UpdateTuple(newTuple, rid, e.txn, !indexChanged)
	if err != nil {
		e.txn.SetState(access.ABORTED)
		return nil, true, err
	}
	if hot {
		e.nhot++
	} else {
		for _, index_ := range tableMetadata.Indexes() {
			if index_ != nil {
				index_.InsertEntry(newTuple, *newRID)
			}
		}
	}
	common.ShPrintf(common.RDB_OP_FUNC_CALL, "UpdateExecutor: %v -> %v hot:%v\n", *rid, *newRID, hot)

	newTuple.SetRID(newRID)
	return newTuple, false, nil
}

// NHotUpdates returns how many rows were updated without new index entries
func (e *UpdateExecutor) NHotUpdates() int {
	return e.nhot
}

func (e *UpdateExecutor) GetOutputSchema() *schema.Schema {
	return e.plan.OutputSchema()
}

func (e *UpdateExecutor) GetTableMetaData() *catalog.TableMetadata {
	return e.child.GetTableMetaData()
}
