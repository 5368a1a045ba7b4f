package executors

import (
	"github.com/ryogrid/SamehadaBitmapScan/catalog"
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/errors"
	"github.com/ryogrid/SamehadaBitmapScan/execution/plans"
	"github.com/ryogrid/SamehadaBitmapScan/storage/bitmap"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

const ErrNoIndex = errors.Error("column has no index")

/**
 * BitmapIndexScanExecutor collects the locations of rows whose indexed column
 * is in the range of the plan.
 * An equality condition with the streaming flag gives a StreamBitmap which
 * reads the index while it is iterated. Otherwise the whole range is put
 * into a TIDBitmap on MultiExec.
 */
type BitmapIndexScanExecutor struct {
	context       *ExecutorContext
	plan          *plans.BitmapIndexScanPlanNode
	tableMetadata *catalog.TableMetadata
	startRange    *types.Value
	endRange      *types.Value
	paramChanged  bool
	result        bitmap.Node
	nentries      int64
}

func NewBitmapIndexScanExecutor(context *ExecutorContext, plan *plans.BitmapIndexScanPlanNode) *BitmapIndexScanExecutor {
	tableMetadata := context.GetCatalog().GetTableByOID(plan.GetTableOID())
	return &BitmapIndexScanExecutor{
		context:       context,
		plan:          plan,
		tableMetadata: tableMetadata,
		startRange:    plan.GetStartRange(),
		endRange:      plan.GetEndRange(),
	}
}

func (e *BitmapIndexScanExecutor) Init() {}

func (e *BitmapIndexScanExecutor) MultiExec() (bitmap.Node, error) {
	if e.paramChanged {
		e.ReScan()
	}
	if e.result != nil {
		return e.result, nil
	}
	if e.tableMetadata == nil {
		return nil, ErrNoIndex
	}
	index_ := e.tableMetadata.GetIndex(e.plan.GetColIdx())
	if index_ == nil {
		return nil, ErrNoIndex
	}

	if e.plan.IsStreaming() && e.isEquality() {
		key := *e.startRange
		e.result = bitmap.NewStreamBitmap(func() bitmap.RIDCursor { return index_.EqualCursor(key) }, e.plan.IsRecheck())
		common.ShPrintf(common.BITMAP_SCAN_INFO, "BitmapIndexScanExecutor: stream bitmap key=%s\n", key.String())
		return e.result, nil
	}

	maxEntries := e.plan.GetMaxEntries()
	if maxEntries <= 0 {
		maxEntries = common.DefaultBitmapMaxEntries
	}
	tbm := bitmap.NewTIDBitmap(maxEntries)
	e.nentries = index_.GetBitmap(e.startRange, e.endRange, tbm, e.plan.IsRecheck())
	common.ShPrintf(common.BITMAP_SCAN_INFO, "BitmapIndexScanExecutor: entries=%d exact=%d lossy=%d\n",
		e.nentries, tbm.NExactPages(), tbm.NLossyPages())
	e.result = tbm
	return e.result, nil
}

func (e *BitmapIndexScanExecutor) isEquality() bool {
	return e.startRange != nil && e.endRange != nil && e.startRange.CompareEquals(*e.endRange)
}

// SetRange changes the scan condition. It takes effect on the next MultiExec.
func (e *BitmapIndexScanExecutor) SetRange(startRange *types.Value, endRange *types.Value) {
	e.startRange = startRange
	e.endRange = endRange
	e.paramChanged = true
}

func (e *BitmapIndexScanExecutor) HasParamChanges() bool {
	return e.paramChanged
}

func (e *BitmapIndexScanExecutor) ReScan() {
	e.result = nil
	e.nentries = 0
	e.paramChanged = false
}

func (e *BitmapIndexScanExecutor) End() {
	e.result = nil
}

// NEntries returns the number of index entries put into the last TIDBitmap
func (e *BitmapIndexScanExecutor) NEntries() int64 {
	return e.nentries
}
