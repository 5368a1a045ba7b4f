package plans

import "fmt"

// DeletePlanNode deletes the rows produced by its child
type DeletePlanNode struct {
	*AbstractPlanNode
	targetTable
}

func NewDeletePlanNode(oid uint32, child Plan) Plan {
	return &DeletePlanNode{&AbstractPlanNode{children: []Plan{child}}, targetTable{oid}}
}

func (p *DeletePlanNode) GetType() PlanType { return Delete }

func (p *DeletePlanNode) GetDebugStr() string {
	return fmt.Sprintf("Delete oid=%d", p.tableOID)
}
