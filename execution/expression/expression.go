// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package expression

import (
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

type ExpressionType int

const (
	EXPRESSION_TYPE_INVALID ExpressionType = iota
	EXPRESSION_TYPE_COMPARISON
	EXPRESSION_TYPE_LOGICAL_OP
	EXPRESSION_TYPE_CONSTANT_VALUE
	EXPRESSION_TYPE_COLUMN_VALUE
)

// Expression is a node of a condition tree evaluated against one row.
// Quals of bitmap scans are built from these.
type Expression interface {
	Evaluate(*tuple.Tuple, *schema.Schema) types.Value
	GetChildAt(uint32) Expression
	GetType() ExpressionType
	GetReturnType() types.TypeID
}
