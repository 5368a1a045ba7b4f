package samehada

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/ryogrid/SamehadaBitmapScan/catalog"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/errors"
	"github.com/ryogrid/SamehadaBitmapScan/execution/executors"
	"github.com/ryogrid/SamehadaBitmapScan/execution/expression"
	"github.com/ryogrid/SamehadaBitmapScan/execution/plans"
	"github.com/ryogrid/SamehadaBitmapScan/samehada/samehada_util"
	"github.com/ryogrid/SamehadaBitmapScan/storage/access"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/column"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

const (
	ErrColumnNotIndexed    = errors.Error("column has no index")
	ErrColumnNotFound      = errors.Error("column not found")
	ErrColumnCountMismatch = errors.Error("number of values does not match the number of columns")
)

type SamehadaDB struct {
	shi_                 *SamehadaInstance
	catalog_             *catalog.Catalog
	exec_engine_         *executors.ExecutionEngine
	targetPrefetchPages_ int
}

type ColumnDef struct {
	Name    string
	Type    types.TypeID
	Indexed bool
}

// NewSamehadaDB creates a db stored in dbName.db. Versions written by a
// previous process can't be judged visible, so an existing file is discarded.
func NewSamehadaDB(dbName string, memKBytes int) (*SamehadaDB, error) {
	if samehada_util.FileExists(dbName + ".db") {
		common.ShPrintf(common.WARN, "NewSamehadaDB: %s.db is discarded\n", dbName)
		os.Remove(dbName + ".db")
	}
	return newSamehadaDB(dbName, memKBytes, false)
}

func NewSamehadaDBOnMemory(memKBytes int) (*SamehadaDB, error) {
	return newSamehadaDB("on_memory", memKBytes, true)
}

func newSamehadaDB(dbName string, memKBytes int, onMemory bool) (*SamehadaDB, error) {
	bpoolSize := math.Floor(float64(memKBytes*1024) / float64(common.PageSize))
	shi := NewSamehadaInstance(dbName, int(bpoolSize), onMemory)
	txn := shi.GetTransactionManager().Begin(access.REPEATABLE_READ)

	c, err := catalog.BootstrapCatalog(shi.GetBufferPoolManager(), shi.GetTransactionManager(), txn)
	if err != nil {
		shi.GetTransactionManager().Abort(txn)
		shi.Shutdown(true)
		return nil, err
	}
	shi.GetTransactionManager().Commit(txn)

	return &SamehadaDB{shi, c, &executors.ExecutionEngine{}, common.DefaultTargetPrefetchPages}, nil
}

// SetTargetPrefetchPages sets the read-ahead ceiling of bitmap heap scans
// started after the call. 0 disables read-ahead.
func (sdb *SamehadaDB) SetTargetPrefetchPages(n int) {
	sdb.targetPrefetchPages_ = n
}

func (sdb *SamehadaDB) GetInstance() *SamehadaInstance {
	return sdb.shi_
}

func (sdb *SamehadaDB) CreateTable(name string, defs []ColumnDef) (*catalog.TableMetadata, error) {
	cols := make([]*column.Column, 0, len(defs))
	for _, def := range defs {
		cols = append(cols, column.NewColumn(def.Name, def.Type, def.Indexed))
	}
	txn := sdb.BeginTxn(access.REPEATABLE_READ)
	tm, err := sdb.catalog_.CreateTable(name, schema.NewSchema(cols), txn)
	if err != nil {
		sdb.AbortTxn(txn)
		return nil, err
	}
	sdb.CommitTxn(txn)
	return tm, nil
}

func (sdb *SamehadaDB) BeginTxn(level access.IsolationLevel) *access.Transaction {
	return sdb.shi_.GetTransactionManager().Begin(level)
}

func (sdb *SamehadaDB) CommitTxn(txn *access.Transaction) {
	sdb.shi_.GetTransactionManager().Commit(txn)
	sdb.shi_.GetPredicateLockManager().ReleaseTxnLocks(txn)
}

func (sdb *SamehadaDB) AbortTxn(txn *access.Transaction) {
	sdb.shi_.GetTransactionManager().Abort(txn)
	sdb.shi_.GetPredicateLockManager().ReleaseTxnLocks(txn)
}

// ExecutePlan runs plan in txn. txn is left open. On error its state is ABORTED
// and the caller must abort it.
func (sdb *SamehadaDB) ExecutePlan(ctx context.Context, plan plans.Plan, txn *access.Transaction) ([]*tuple.Tuple, error) {
	context_ := executors.NewExecutorContext(ctx, sdb.catalog_, sdb.shi_.GetBufferPoolManager(), txn, sdb.shi_.GetPredicateLockManager())
	context_.SetTargetPrefetchPages(sdb.targetPrefetchPages_)
	return sdb.exec_engine_.Execute(plan, context_)
}

// executeAutoCommit runs plan in its own transaction
func (sdb *SamehadaDB) executeAutoCommit(ctx context.Context, plan plans.Plan, level access.IsolationLevel) ([]*tuple.Tuple, error) {
	txn := sdb.BeginTxn(level)
	result, err := sdb.ExecutePlan(ctx, plan, txn)
	if err != nil || txn.GetState() == access.ABORTED {
		sdb.AbortTxn(txn)
		return nil, err
	}
	sdb.CommitTxn(txn)
	return result, nil
}

func (sdb *SamehadaDB) getTable(tableName string) (*catalog.TableMetadata, error) {
	tm := sdb.catalog_.GetTableByName(tableName)
	if tm == nil {
		return nil, catalog.ErrTableNotFound
	}
	return tm, nil
}

// RangeScanPlan builds a bitmap heap scan of the rows whose column colName is
// in [start, end]. nil bound means unbounded.
func (sdb *SamehadaDB) RangeScanPlan(tableName string, colName string, start interface{}, end interface{}) (plans.Plan, error) {
	tm, err := sdb.getTable(tableName)
	if err != nil {
		return nil, err
	}
	colIdx := tm.Schema().GetColIndex(colName)
	if colIdx == math.MaxUint32 {
		return nil, ErrColumnNotFound
	}
	if tm.GetIndex(colIdx) == nil {
		return nil, ErrColumnNotIndexed
	}
	colType := tm.Schema().GetColumn(colIdx).GetType()

	var startVal, endVal *types.Value
	var qual expression.Expression
	if start != nil {
		val, err := samehada_util.ToValueOf(start, colType)
		if err != nil {
			return nil, err
		}
		startVal = &val
		qual = expression.NewComparison(expression.NewColumnValue(colIdx, colType),
			expression.NewConstantValue(val, colType), expression.GreaterThanOrEqual, colType)
	}
	if end != nil {
		val, err := samehada_util.ToValueOf(end, colType)
		if err != nil {
			return nil, err
		}
		endVal = &val
		le := expression.NewComparison(expression.NewColumnValue(colIdx, colType),
			expression.NewConstantValue(val, colType), expression.LessThanOrEqual, colType)
		qual = expression.AppendLogicalCondition(qual, expression.AND, le)
	}
	streaming := startVal != nil && endVal != nil && startVal.CompareEquals(*endVal)

	indexPlan := plans.NewBitmapIndexScanPlanNode(tm.OID(), colIdx, startVal, endVal, false, streaming, 0)
	return plans.NewBitmapHeapScanPlanNode(nil, nil, qual, tm.OID(), indexPlan), nil
}

// InsertPlan builds an insert of rows. Values are converted to the column types.
func (sdb *SamehadaDB) InsertPlan(tableName string, rows [][]interface{}) (plans.Plan, error) {
	tm, err := sdb.getTable(tableName)
	if err != nil {
		return nil, err
	}
	schema_ := tm.Schema()
	rawValues := make([][]types.Value, 0, len(rows))
	for _, row := range rows {
		if uint32(len(row)) != schema_.GetColumnCount() {
			return nil, ErrColumnCountMismatch
		}
		vals := make([]types.Value, 0, len(row))
		for i, data := range row {
			val, err := samehada_util.ToValueOf(data, schema_.GetColumn(uint32(i)).GetType())
			if err != nil {
				return nil, err
			}
			vals = append(vals, val)
		}
		rawValues = append(rawValues, vals)
	}
	return plans.NewInsertPlanNode(rawValues, tm.OID()), nil
}

// UpdatePlan builds an update which sets setCol to setVal on the rows whose
// column colName is in [start, end]
func (sdb *SamehadaDB) UpdatePlan(tableName string, colName string, start interface{}, end interface{}, setCol string, setVal interface{}) (plans.Plan, error) {
	scan, err := sdb.RangeScanPlan(tableName, colName, start, end)
	if err != nil {
		return nil, err
	}
	tm := sdb.catalog_.GetTableByName(tableName)
	colIdx := tm.Schema().GetColIndex(setCol)
	if colIdx == math.MaxUint32 {
		return nil, ErrColumnNotFound
	}
	val, err := samehada_util.ToValueOf(setVal, tm.Schema().GetColumn(colIdx).GetType())
	if err != nil {
		return nil, err
	}
	return plans.NewUpdatePlanNode([]types.Value{val}, []int{int(colIdx)}, tm.OID(), scan), nil
}

// DeletePlan builds a delete of the rows whose column colName is in [start, end]
func (sdb *SamehadaDB) DeletePlan(tableName string, colName string, start interface{}, end interface{}) (plans.Plan, error) {
	scan, err := sdb.RangeScanPlan(tableName, colName, start, end)
	if err != nil {
		return nil, err
	}
	return plans.NewDeletePlanNode(sdb.catalog_.GetTableByName(tableName).OID(), scan), nil
}

func (sdb *SamehadaDB) GetTableSchema(tableName string) (*schema.Schema, error) {
	tm, err := sdb.getTable(tableName)
	if err != nil {
		return nil, err
	}
	return tm.Schema(), nil
}

func (sdb *SamehadaDB) Insert(tableName string, rows [][]interface{}) error {
	plan, err := sdb.InsertPlan(tableName, rows)
	if err != nil {
		return err
	}
	_, err = sdb.executeAutoCommit(context.Background(), plan, access.REPEATABLE_READ)
	return err
}

// Select returns the rows whose column colName is in [start, end]
func (sdb *SamehadaDB) Select(tableName string, colName string, start interface{}, end interface{}) ([][]*types.Value, error) {
	plan, err := sdb.RangeScanPlan(tableName, colName, start, end)
	if err != nil {
		return nil, err
	}
	result, err := sdb.executeAutoCommit(context.Background(), plan, access.REPEATABLE_READ)
	if err != nil {
		return nil, err
	}
	return ConvTupleListToValues(sdb.catalog_.GetTableByName(tableName).Schema(), result), nil
}

// Update returns how many rows were updated
func (sdb *SamehadaDB) Update(tableName string, colName string, start interface{}, end interface{}, setCol string, setVal interface{}) (int, error) {
	plan, err := sdb.UpdatePlan(tableName, colName, start, end, setCol, setVal)
	if err != nil {
		return 0, err
	}
	result, err := sdb.executeAutoCommit(context.Background(), plan, access.REPEATABLE_READ)
	return len(result), err
}

// Delete returns how many rows were removed
func (sdb *SamehadaDB) Delete(tableName string, colName string, start interface{}, end interface{}) (int, error) {
	plan, err := sdb.DeletePlan(tableName, colName, start, end)
	if err != nil {
		return 0, err
	}
	result, err := sdb.executeAutoCommit(context.Background(), plan, access.REPEATABLE_READ)
	return len(result), err
}

func (sdb *SamehadaDB) Shutdown() {
	sdb.shi_.Shutdown(true)
}

func ConvTupleListToValues(schema_ *schema.Schema, result []*tuple.Tuple) [][]*types.Value {
	retVals := make([][]*types.Value, 0)
	for _, tuple_ := range result {
		rowVals := make([]*types.Value, 0)
		colNum := int(schema_.GetColumnCount())
		for idx := 0; idx < colNum; idx++ {
			val := tuple_.GetValue(schema_, uint32(idx))
			rowVals = append(rowVals, &val)
		}
		retVals = append(retVals, rowVals)
	}
	return retVals
}

// ConvValuesToInterfaces converts rows for encoders which know nothing about types.Value
func ConvValuesToInterfaces(results [][]*types.Value) [][]interface{} {
	ret := make([][]interface{}, 0, len(results))
	for _, row := range results {
		vals := make([]interface{}, 0, len(row))
		for _, val := range row {
			vals = append(vals, samehada_util.ToInterface(val))
		}
		ret = append(ret, vals)
	}
	return ret
}

func PrintExecuteResults(results [][]*types.Value) {
	fmt.Println("----")
	for _, valList := range results {
		for _, val := range valList {
			fmt.Printf("%s ", val.String())
		}
		fmt.Println("")
	}
}
