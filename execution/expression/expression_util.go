package expression

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// PrintExpTree returns exp in prefix notation
func PrintExpTree(exp Expression) string {
	switch e := exp.(type) {
	case *Comparison:
		return fmt.Sprintf("(%s %s %s)", e.GetComparisonType(), PrintExpTree(e.GetChildAt(0)), PrintExpTree(e.GetChildAt(1)))
	case *LogicalOp:
		if e.GetLogicalOpType() == NOT {
			return fmt.Sprintf("(NOT %s)", PrintExpTree(e.GetChildAt(0)))
		}
		return fmt.Sprintf("(%s %s %s)", e.GetLogicalOpType(), PrintExpTree(e.GetChildAt(0)), PrintExpTree(e.GetChildAt(1)))
	case *ConstantValue:
		return e.GetValue().String()
	case *ColumnValue:
		return fmt.Sprintf("#%d", e.GetColIndex())
	case nil:
		return "<nil>"
	default:
		panic("illegal type expression object is passed!")
	}
}

// ReferencedColumns returns the column indexes which exp reads
func ReferencedColumns(exp Expression) mapset.Set[uint32] {
	ret := mapset.NewThreadUnsafeSet[uint32]()
	var walk func(e Expression)
	walk = func(e Expression) {
		if e == nil {
			return
		}
		if cv, ok := e.(*ColumnValue); ok {
			ret.Add(cv.GetColIndex())
			return
		}
		for i := uint32(0); i < 2; i++ {
			walk(e.GetChildAt(i))
		}
	}
	walk(exp)
	return ret
}
