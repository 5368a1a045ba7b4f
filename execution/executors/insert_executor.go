// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package executors

import (
	"github.com/ryogrid/SamehadaBitmapScan/catalog"
	"github.com/ryogrid/SamehadaBitmapScan/execution/plans"
	"github.com/ryogrid/SamehadaBitmapScan/storage/access"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
)

/**
 * InsertExecutor inserts the raw values of its plan and adds an entry to every
 * index of the table for each row.
 */
type InsertExecutor struct {
	context       *ExecutorContext
	plan          *plans.InsertPlanNode
	tableMetadata *catalog.TableMetadata
	txn           *access.Transaction
}

func NewInsertExecutor(context *ExecutorContext, plan *plans.InsertPlanNode) Executor {
	tableMetadata := context.GetCatalog().GetTableByOID(plan.GetTableOID())
	return &InsertExecutor{context, plan, tableMetadata, context.GetTransaction()}
}

func (e *InsertExecutor) Init() {}

// Next inserts all rows at once. It returns no row.
func (e *InsertExecutor) Next() (*tuple.Tuple, Done, error) {
	if e.tableMetadata == nil {
		return nil, true, catalog.ErrTableNotFound
	}
	for _, values := range e.plan.GetRawValues() {
		tuple_ := tuple.NewTupleFromSchema(values, e.tableMetadata.Schema())
		rid, err := e.tableMetadata.Table().InsertTuple(tuple_, e.txn)
		if err != nil {
			e.txn.SetState(access.ABORTED)
			return nil, true, err
		}
		for _, index_ := range e.tableMetadata.Indexes() {
			if index_ != nil {
				index_.InsertEntry(tuple_, *rid)
			}
		}
	}
	return nil, true, nil
}

func (e *InsertExecutor) GetOutputSchema() *schema.Schema {
	return e.plan.OutputSchema()
}

func (e *InsertExecutor) GetTableMetaData() *catalog.TableMetadata {
	return e.tableMetadata
}
