package plans

import (
	"strings"

	"github.com/ryogrid/SamehadaBitmapScan/types"
)

func valueStr(v *types.Value) string {
	if v == nil {
		return "-"
	}
	return v.String()
}

// PlanTreeString returns the plan tree. Children are indented under their parent.
func PlanTreeString(plan Plan) string {
	var sb strings.Builder
	var walk func(p Plan, indent int)
	walk = func(p Plan, indent int) {
		sb.WriteString(strings.Repeat(" ", indent))
		sb.WriteString(p.GetDebugStr())
		sb.WriteString("\n")
		for _, child := range p.GetChildren() {
			walk(child, indent+2)
		}
	}
	walk(plan, 0)
	return sb.String()
}
