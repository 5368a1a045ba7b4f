// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package expression

import (
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// ConstantValue evaluates to the same value for every row
type ConstantValue struct {
	*AbstractExpression
	value types.Value
}

func NewConstantValue(value types.Value, colType types.TypeID) Expression {
	return &ConstantValue{&AbstractExpression{ret_type: colType}, value}
}

func (c *ConstantValue) Evaluate(*tuple.Tuple, *schema.Schema) types.Value { return c.value }
func (c *ConstantValue) GetValue() *types.Value                           { return &c.value }
func (c *ConstantValue) GetType() ExpressionType                          { return EXPRESSION_TYPE_CONSTANT_VALUE }

// ColumnValue reads one column of the row being evaluated. colIndex is
// relative to the schema passed to Evaluate, which is the table schema for
// quals rechecked by the heap scan.
type ColumnValue struct {
	*AbstractExpression
	colIndex uint32
}

func NewColumnValue(colIndex uint32, colType types.TypeID) Expression {
	return &ColumnValue{&AbstractExpression{ret_type: colType}, colIndex}
}

func (c *ColumnValue) Evaluate(row *tuple.Tuple, sc *schema.Schema) types.Value {
	return row.GetValue(sc, c.colIndex)
}

func (c *ColumnValue) GetColIndex() uint32      { return c.colIndex }
func (c *ColumnValue) GetType() ExpressionType { return EXPRESSION_TYPE_COLUMN_VALUE }
