// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package expression

import (
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

type ComparisonType int

const (
	Equal ComparisonType = iota
	NotEqual
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
)

var comparisonSymbols = [...]string{"=", "<>", ">", ">=", "<", "<="}

func (ct ComparisonType) String() string {
	if ct < 0 || int(ct) >= len(comparisonSymbols) {
		return "?"
	}
	return comparisonSymbols[ct]
}

// Comparison compares the values of its two children with the Compare*
// methods of types.Value
type Comparison struct {
	*AbstractExpression
	comparisonType ComparisonType
}

func NewComparison(left Expression, right Expression, comparisonType ComparisonType, colType types.TypeID) Expression {
	return &Comparison{&AbstractExpression{[2]Expression{left, right}, colType}, comparisonType}
}

func (c *Comparison) Evaluate(tuple_ *tuple.Tuple, schema_ *schema.Schema) types.Value {
	if c == nil {
		return types.NewBoolean(false)
	}
	lhs := c.children[0].Evaluate(tuple_, schema_)
	rhs := c.children[1].Evaluate(tuple_, schema_)
	return types.NewBoolean(c.compare(lhs, rhs))
}

func (c *Comparison) compare(lhs types.Value, rhs types.Value) bool {
	switch c.comparisonType {
	case Equal:
		return lhs.CompareEquals(rhs)
	case NotEqual:
		return lhs.CompareNotEquals(rhs)
	case GreaterThan:
		return lhs.CompareGreaterThan(rhs)
	case GreaterThanOrEqual:
		return lhs.CompareGreaterThanOrEqual(rhs)
	case LessThan:
		return lhs.CompareLessThan(rhs)
	case LessThanOrEqual:
		return lhs.CompareLessThanOrEqual(rhs)
	}
	panic("illegal comparisonType is passed!")
}

func (c *Comparison) GetComparisonType() ComparisonType {
	return c.comparisonType
}

func (c *Comparison) GetType() ExpressionType {
	return EXPRESSION_TYPE_COMPARISON
}
