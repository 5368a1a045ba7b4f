package plans

import (
	"fmt"

	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// UpdatePlanNode rewrites the rows produced by its child
type UpdatePlanNode struct {
	*AbstractPlanNode
	targetTable
	values []types.Value
	// nil means values is a complete row
	colIdxs []int
}

// values[i] is written to column colIdxs[i]
func NewUpdatePlanNode(values []types.Value, colIdxs []int, oid uint32, child Plan) Plan {
	return &UpdatePlanNode{&AbstractPlanNode{children: []Plan{child}}, targetTable{oid}, values, colIdxs}
}

func (p *UpdatePlanNode) GetType() PlanType { return Update }

// Apply returns the new version of a row whose current values are old.
// old is not modified.
func (p *UpdatePlanNode) Apply(old []types.Value) []types.Value {
	if p.colIdxs == nil {
		return p.values
	}
	row := append([]types.Value(nil), old...)
	for i, colIdx := range p.colIdxs {
		row[colIdx] = p.values[i]
	}
	return row
}

func (p *UpdatePlanNode) GetDebugStr() string {
	if p.colIdxs == nil {
		return fmt.Sprintf("Update oid=%d whole row", p.tableOID)
	}
	return fmt.Sprintf("Update oid=%d cols=%v", p.tableOID, p.colIdxs)
}
