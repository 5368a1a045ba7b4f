package testing_util

import (
	"github.com/ryogrid/SamehadaBitmapScan/samehada/samehada_util"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/column"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// MakeRow converts go values to a row. It panics on a value ToValue rejects.
func MakeRow(data ...interface{}) []types.Value {
	row := make([]types.Value, 0, len(data))
	for _, d := range data {
		v, err := samehada_util.ToValue(d)
		if err != nil {
			panic(err)
		}
		row = append(row, v)
	}
	return row
}

type ColumnDef struct {
	Name    string
	Kind    types.TypeID
	Indexed bool
}

func MakeSchema(defs []ColumnDef) *schema.Schema {
	cols := make([]*column.Column, 0, len(defs))
	for _, def := range defs {
		cols = append(cols, column.NewColumn(def.Name, def.Kind, def.Indexed))
	}
	return schema.NewSchema(cols)
}
