package expression

import (
	"fmt"

	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

type LogicalOpType int

const (
	AND LogicalOpType = iota
	OR
	NOT
)

func (t LogicalOpType) String() string {
	switch t {
	case AND:
		return "AND"
	case OR:
		return "OR"
	case NOT:
		return "NOT"
	}
	return fmt.Sprintf("LogicalOpType(%d)", int(t))
}

// LogicalOp combines boolean children. NOT uses only the left child.
type LogicalOp struct {
	*AbstractExpression
	logicalOpType LogicalOpType
}

func NewLogicalOp(left Expression, right Expression, logicalOpType LogicalOpType, colType types.TypeID) Expression {
	return &LogicalOp{&AbstractExpression{[2]Expression{left, right}, colType}, logicalOpType}
}

func (c *LogicalOp) Evaluate(row *tuple.Tuple, sc *schema.Schema) types.Value {
	left := c.children[0].Evaluate(row, sc).ToBoolean()
	var ret bool
	switch c.logicalOpType {
	case NOT:
		ret = !left
	case AND:
		// short circuit
		ret = left && c.children[1].Evaluate(row, sc).ToBoolean()
	case OR:
		ret = left || c.children[1].Evaluate(row, sc).ToBoolean()
	default:
		panic("unknown LogicalOpType: " + c.logicalOpType.String())
	}
	return types.NewBoolean(ret)
}

func (c *LogicalOp) GetLogicalOpType() LogicalOpType { return c.logicalOpType }
func (c *LogicalOp) GetType() ExpressionType         { return EXPRESSION_TYPE_LOGICAL_OP }

// AppendLogicalCondition joins addCond to baseConds with opType. baseConds may be nil.
func AppendLogicalCondition(baseConds Expression, opType LogicalOpType, addCond Expression) Expression {
	if baseConds == nil {
		return addCond
	}
	return NewLogicalOp(baseConds, addCond, opType, types.Boolean)
}
