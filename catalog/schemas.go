package catalog

import (
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/column"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// rows of the table catalog: oid, name, first_page
var tableCatalogSchema = schema.NewSchema([]*column.Column{
	column.NewColumn("oid", types.Integer, false),
	column.NewColumn("name", types.Varchar, false),
	column.NewColumn("first_page", types.Integer, false),
})

// rows of the columns catalog, one per column in declaration order
var columnsCatalogSchema = schema.NewSchema([]*column.Column{
	column.NewColumn("table_oid", types.Integer, false),
	column.NewColumn("type", types.Integer, false),
	column.NewColumn("name", types.Varchar, false),
	column.NewColumn("has_index", types.Boolean, false),
})


func tableCatalogRow(tm *TableMetadata) *tuple.Tuple {
	return tuple.NewTupleFromSchema([]types.Value{
		types.NewInteger(int32(tm.oid)),
		types.NewVarchar(tm.name),
		types.NewInteger(int32(tm.table.GetFirstPageId())),
	}, tableCatalogSchema)
}

func columnsCatalogRow(oid uint32, col *column.Column) *tuple.Tuple {
	return tuple.NewTupleFromSchema([]types.Value{
		types.NewInteger(int32(oid)),
		types.NewInteger(int32(col.GetType())),
		types.NewVarchar(col.GetColumnName()),
		types.NewBoolean(col.HasIndex()),
	}, columnsCatalogSchema)
}

// getField reads column name of a catalog row
func getField(tup *tuple.Tuple, sc *schema.Schema, name string) types.Value {
	return tup.GetValue(sc, sc.GetColIndex(name))
}
