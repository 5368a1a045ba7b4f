// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package schema

import (
	"math"

	"github.com/ryogrid/SamehadaBitmapScan/storage/table/column"
)

// Schema lays out columns in the fixed area of a row in declaration order
type Schema struct {
	columns []*column.Column
	byName  map[string]uint32
	// bytes of the fixed area
	length uint32
	// columns whose payload follows the fixed area
	varlenColumns []uint32
	indexed       []uint32
}

func NewSchema(columns []*column.Column) *Schema {
	s := &Schema{columns: columns, byName: make(map[string]uint32, len(columns))}
	offset := uint32(0)
	for i, col := range columns {
		idx := uint32(i)
		col.SetOffset(offset)
		offset += col.FixedLength()
		if !col.IsInlined() {
			s.varlenColumns = append(s.varlenColumns, idx)
		}
		if col.HasIndex() {
			s.indexed = append(s.indexed, idx)
		}
		// first one wins on duplicated names
		if _, ok := s.byName[col.GetColumnName()]; !ok {
			s.byName[col.GetColumnName()] = idx
		}
	}
	s.length = offset
	return s
}

func (s *Schema) GetColumn(colIndex uint32) *column.Column {
	return s.columns[colIndex]
}

func (s *Schema) GetColumns() []*column.Column {
	return s.columns
}

func (s *Schema) GetColumnCount() uint32 {
	return uint32(len(s.columns))
}

// Length returns the size of the fixed area of a row
func (s *Schema) Length() uint32 {
	return s.length
}

func (s *Schema) GetVarlenColumns() []uint32 {
	return s.varlenColumns
}

// GetIndexedColumns returns indexes of the columns which have HasIndex set
func (s *Schema) GetIndexedColumns() []uint32 {
	return s.indexed
}

// GetColIndex returns math.MaxUint32 when the column does not exist
func (s *Schema) GetColIndex(columnName string) uint32 {
	if idx, ok := s.byName[columnName]; ok {
		return idx
	}
	return math.MaxUint32
}
