package expression

import "github.com/ryogrid/SamehadaBitmapScan/types"

// AbstractExpression holds what every node has: up to two children (order
// matters for comparisons) and the type Evaluate returns.
type AbstractExpression struct {
	children [2]Expression
	ret_type types.TypeID
}

// GetChildAt returns nil for a missing child
func (e *AbstractExpression) GetChildAt(child_idx uint32) Expression {
	if int(child_idx) >= len(e.children) {
		return nil
	}
	return e.children[child_idx]
}

func (e *AbstractExpression) GetReturnType() types.TypeID { return e.ret_type }
