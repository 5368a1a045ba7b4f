package plans

import "github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"

type PlanType int

const (
	BitmapHeapScan PlanType = iota
	BitmapIndexScan
	Insert
	Delete
	Update
)

type Plan interface {
	OutputSchema() *schema.Schema
	GetChildAt(childIndex uint32) Plan
	GetChildren() []Plan
	GetType() PlanType
	GetDebugStr() string
}

type AbstractPlanNode struct {
	outputSchema *schema.Schema
	children     []Plan
}

func (p *AbstractPlanNode) OutputSchema() *schema.Schema {
	return p.outputSchema
}

func (p *AbstractPlanNode) GetChildAt(childIndex uint32) Plan {
	if int(childIndex) >= len(p.children) {
		return nil
	}
	return p.children[childIndex]
}

func (p *AbstractPlanNode) GetChildren() []Plan {
	return p.children
}

// targetTable is embedded by plans which modify one table
type targetTable struct {
	tableOID uint32
}

// GetTableOID returns the table the plan writes to
func (t targetTable) GetTableOID() uint32 {
	return t.tableOID
}
