package plans

import (
	"fmt"

	"github.com/ryogrid/SamehadaBitmapScan/types"
)

/**
 * BitmapIndexScanPlanNode scans a range of the index of a column and
 * produces the locations of matched rows as a bitmap. It does not output rows.
 */
type BitmapIndexScanPlanNode struct {
	*AbstractPlanNode
	tableOID   uint32
	colIdx     uint32 // column idx which has index to be used
	startRange *types.Value
	endRange   *types.Value
	// rows from this bitmap must be rechecked against the original condition
	recheck bool
	// produce a bitmap which reads the index while it is iterated.
	// only used for equality conditions
	streaming  bool
	maxEntries int
}

// startRange and endRange are inclusive. nil means unbounded.
// maxEntries <= 0 means the configured default.
func NewBitmapIndexScanPlanNode(tableOID uint32, colIdx uint32, startRange *types.Value, endRange *types.Value, recheck bool, streaming bool, maxEntries int) Plan {
	return &BitmapIndexScanPlanNode{&AbstractPlanNode{nil, nil}, tableOID, colIdx, startRange, endRange, recheck, streaming, maxEntries}
}

func (p *BitmapIndexScanPlanNode) GetTableOID() uint32 {
	return p.tableOID
}

func (p *BitmapIndexScanPlanNode) GetColIdx() uint32 {
	return p.colIdx
}

func (p *BitmapIndexScanPlanNode) GetStartRange() *types.Value {
	return p.startRange
}

func (p *BitmapIndexScanPlanNode) GetEndRange() *types.Value {
	return p.endRange
}

func (p *BitmapIndexScanPlanNode) IsRecheck() bool {
	return p.recheck
}

func (p *BitmapIndexScanPlanNode) IsStreaming() bool {
	return p.streaming
}

func (p *BitmapIndexScanPlanNode) GetMaxEntries() int {
	return p.maxEntries
}

// IsEquality reports whether the range selects exactly one key
func (p *BitmapIndexScanPlanNode) IsEquality() bool {
	return p.startRange != nil && p.endRange != nil && p.startRange.CompareEquals(*p.endRange)
}

func (p *BitmapIndexScanPlanNode) GetType() PlanType {
	return BitmapIndexScan
}

func (p *BitmapIndexScanPlanNode) GetDebugStr() string {
	return fmt.Sprintf("BitmapIndexScanPlanNode oid:%d col:%d start:%v end:%v recheck:%v streaming:%v",
		p.tableOID, p.colIdx, valueStr(p.startRange), valueStr(p.endRange), p.recheck, p.streaming)
}
