package plans

import (
	"strings"
	"testing"

	"github.com/ryogrid/SamehadaBitmapScan/execution/expression"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/column"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	testingpkg "github.com/ryogrid/SamehadaBitmapScan/testing/testing_assert"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

func TestUpdatePlanApply(t *testing.T) {
	old := []types.Value{types.NewInteger(1), types.NewVarchar("foo")}

	plan := NewUpdatePlanNode([]types.Value{types.NewVarchar("bar")}, []int{1}, 3, nil).(*UpdatePlanNode)
	row := plan.Apply(old)
	testingpkg.Equals(t, int32(1), row[0].ToInteger())
	testingpkg.Equals(t, "bar", row[1].ToVarchar())
	// source row is untouched
	testingpkg.Equals(t, "foo", old[1].ToVarchar())
	testingpkg.Equals(t, uint32(3), plan.GetTableOID())

	whole := []types.Value{types.NewInteger(2), types.NewVarchar("baz")}
	plan = NewUpdatePlanNode(whole, nil, 3, nil).(*UpdatePlanNode)
	testingpkg.Equals(t, whole, plan.Apply(old))
}

func TestPlanTreeString(t *testing.T) {
	start := types.NewInteger(10)
	end := types.NewInteger(20)
	idxScan := NewBitmapIndexScanPlanNode(7, 0, &start, &end, false, false, 0)
	out := schema.NewSchema([]*column.Column{column.NewColumn("a", types.Integer, true)})
	qual := expression.NewComparison(
		expression.NewColumnValue(0, types.Integer),
		expression.NewConstantValue(start, types.Integer),
		expression.GreaterThanOrEqual, types.Boolean)
	heapScan := NewBitmapHeapScanPlanNode(out, nil, qual, 7, idxScan)
	del := NewDeletePlanNode(7, heapScan)

	lines := strings.Split(strings.TrimRight(PlanTreeString(del), "\n"), "\n")
	testingpkg.Equals(t, 3, len(lines))
	testingpkg.Equals(t, "Delete oid=7", lines[0])
	testingpkg.Assert(t, strings.HasPrefix(lines[1], "  BitmapHeapScanPlanNode [a, ]"), "unexpected line: %s", lines[1])
	testingpkg.Assert(t, strings.Contains(lines[1], "recheck:(>= #0 10)"), "unexpected line: %s", lines[1])
	testingpkg.Assert(t, strings.HasPrefix(lines[2], "    BitmapIndexScanPlanNode oid:7"), "unexpected line: %s", lines[2])
	testingpkg.SimpleAssert(t, idxScan.(*BitmapIndexScanPlanNode).IsEquality() == false)
}

func TestBitmapHeapScanDebugStrWithoutProjection(t *testing.T) {
	idxScan := NewBitmapIndexScanPlanNode(7, 0, nil, nil, false, false, 0)
	heapScan := NewBitmapHeapScanPlanNode(nil, nil, nil, 7, idxScan)

	lines := strings.Split(strings.TrimRight(PlanTreeString(heapScan), "\n"), "\n")
	testingpkg.Equals(t, 2, len(lines))
	testingpkg.Assert(t, strings.HasPrefix(lines[0], "BitmapHeapScanPlanNode [*]"), "unexpected line: %s", lines[0])
}
