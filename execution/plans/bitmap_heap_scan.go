package plans

import (
	"github.com/ryogrid/SamehadaBitmapScan/execution/expression"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
)

/**
 * BitmapHeapScanPlanNode fetches the rows whose locations are given by the
 * bitmap of its child.
 * bitmapQualOrig is the index condition. It is evaluated again on rows of
 * lossy pages and of entries which need recheck.
 * predicate is a filter applied to every row.
 */
type BitmapHeapScanPlanNode struct {
	*AbstractPlanNode
	predicate      expression.Expression
	bitmapQualOrig expression.Expression
	tableOID       uint32
}

func NewBitmapHeapScanPlanNode(outputSchema *schema.Schema, predicate expression.Expression, bitmapQualOrig expression.Expression, tableOID uint32, child Plan) Plan {
	return &BitmapHeapScanPlanNode{&AbstractPlanNode{outputSchema, []Plan{child}}, predicate, bitmapQualOrig, tableOID}
}

func (p *BitmapHeapScanPlanNode) GetPredicate() expression.Expression {
	return p.predicate
}

func (p *BitmapHeapScanPlanNode) GetBitmapQualOrig() expression.Expression {
	return p.bitmapQualOrig
}

func (p *BitmapHeapScanPlanNode) GetTableOID() uint32 {
	return p.tableOID
}

func (p *BitmapHeapScanPlanNode) GetType() PlanType {
	return BitmapHeapScan
}

func (p *BitmapHeapScanPlanNode) GetDebugStr() string {
	// nil output schema means every column of the table
	outColNames := "[*"
	if p.OutputSchema() != nil {
		outColNames = "["
		for _, col := range p.OutputSchema().GetColumns() {
			outColNames += col.GetColumnName() + ", "
		}
	}
	return "BitmapHeapScanPlanNode " + outColNames + "] recheck:" + expression.PrintExpTree(p.bitmapQualOrig) +
		" filter:" + expression.PrintExpTree(p.predicate)
}
