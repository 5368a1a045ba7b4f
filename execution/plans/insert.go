// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package plans

import (
	"fmt"

	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// InsertPlanNode inserts rows carried by the plan itself. It has no child.
type InsertPlanNode struct {
	*AbstractPlanNode
	targetTable
	rows [][]types.Value
}

func NewInsertPlanNode(rows [][]types.Value, oid uint32) Plan {
	return &InsertPlanNode{&AbstractPlanNode{}, targetTable{oid}, rows}
}

func (p *InsertPlanNode) GetRawValues() [][]types.Value {
	return p.rows
}

func (p *InsertPlanNode) GetType() PlanType { return Insert }

func (p *InsertPlanNode) GetDebugStr() string {
	return fmt.Sprintf("Insert oid=%d rows=%d", p.tableOID, len(p.rows))
}
