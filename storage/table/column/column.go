// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package column

import (
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// size of the offset a Varchar column keeps in the fixed area of a row
const varlenPointerSize = 4

// Column is one attribute of a row. Fixed length values live in the fixed
// area of the row at offset. A Varchar keeps only a pointer there and its
// payload after the fixed area.
type Column struct {
	name     string
	typ      types.TypeID
	size     uint32 // bytes used in the fixed area
	offset   uint32 // set by schema.NewSchema
	hasIndex bool
}

func NewColumn(name string, columnType types.TypeID, hasIndex bool) *Column {
	size := columnType.Size()
	if columnType == types.Varchar {
		size = varlenPointerSize
	}
	return &Column{name: name, typ: columnType, size: size, hasIndex: hasIndex}
}

func (c *Column) IsInlined() bool     { return c.typ != types.Varchar }
func (c *Column) GetType() types.TypeID { return c.typ }
func (c *Column) GetOffset() uint32     { return c.offset }
func (c *Column) SetOffset(offset uint32) {
	c.offset = offset
}

// FixedLength returns the bytes the column takes in the fixed area
func (c *Column) FixedLength() uint32  { return c.size }
func (c *Column) GetColumnName() string { return c.name }

// HasIndex reports whether a secondary index is built on the column
func (c *Column) HasIndex() bool { return c.hasIndex }
