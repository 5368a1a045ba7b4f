// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package executors

import (
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/errors"
	"github.com/ryogrid/SamehadaBitmapScan/execution/plans"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
)

const ErrUnsupportedPlan = errors.Error("plan type is not supported here")

type ExecutionEngine struct {
}

// Execute runs plan to the end and returns every row it produced.
// Scans opened for the plan are ended before return.
func (e *ExecutionEngine) Execute(plan plans.Plan, context *ExecutorContext) ([]*tuple.Tuple, error) {
	if common.EnableDebug {
		common.ShPrintf(common.DEBUG_INFO, "ExecutionEngine::Execute\n%s", plans.PlanTreeString(plan))
	}
	executor, err := e.CreateExecutor(plan, context)
	if err != nil {
		return nil, err
	}
	defer endExecutor(executor)

	executor.Init()

	tuples := make([]*tuple.Tuple, 0)
	for {
		tuple_, done, err := executor.Next()
		if err != nil {
			return tuples, err
		}
		if done {
			break
		}
		if tuple_ != nil {
			tuples = append(tuples, tuple_)
		}
	}

	return tuples, nil
}

func endExecutor(executor Executor) {
	switch ex := executor.(type) {
	case *BitmapHeapScanExecutor:
		ex.End()
	case *DeleteExecutor:
		endExecutor(ex.child)
	case *UpdateExecutor:
		endExecutor(ex.child)
	}
}

func (e *ExecutionEngine) CreateExecutor(plan plans.Plan, context *ExecutorContext) (Executor, error) {
	switch p := plan.(type) {
	case *plans.InsertPlanNode:
		return NewInsertExecutor(context, p), nil
	case *plans.BitmapHeapScanPlanNode:
		child, err := e.createBitmapExecutor(p.GetChildAt(0), context)
		if err != nil {
			return nil, err
		}
		return NewBitmapHeapScanExecutor(context, p, child), nil
	case *plans.DeletePlanNode:
		child, err := e.CreateExecutor(p.GetChildAt(0), context)
		if err != nil {
			return nil, err
		}
		return NewDeleteExecutor(context, p, child), nil
	case *plans.UpdatePlanNode:
		child, err := e.CreateExecutor(p.GetChildAt(0), context)
		if err != nil {
			return nil, err
		}
		return NewUpdateExecutor(context, p, child), nil
	}
	return nil, ErrUnsupportedPlan
}

func (e *ExecutionEngine) createBitmapExecutor(plan plans.Plan, context *ExecutorContext) (BitmapExecutor, error) {
	switch p := plan.(type) {
	case *plans.BitmapIndexScanPlanNode:
		return NewBitmapIndexScanExecutor(context, p), nil
	}
	return nil, ErrUnsupportedPlan
}
