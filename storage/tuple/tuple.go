// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package tuple

import (
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	"github.com/ryogrid/SamehadaBitmapScan/storage/table/schema"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// Tuple is the user data of one row version. The fixed area holds inlined
// values and, for Varchar columns, a uint32 offset of the payload which
// follows the fixed area:
//
//	| fixed area (schema.Length bytes) | varchar payloads |
//
// rid is the location the version was read from, nil for a row not stored yet.
// Tuples returned by scans own data, so they outlive the page pin.
type Tuple struct {
	rid  *page.RID
	size uint32
	data []byte
}

func NewTuple(rid *page.RID, size uint32, data []byte) *Tuple {
	return &Tuple{rid, size, data}
}

// NewTupleFromSchema encodes values, which must follow the column order of sc
func NewTupleFromSchema(values []types.Value, sc *schema.Schema) *Tuple {
	size := sc.Length()
	for _, colIdx := range sc.GetVarlenColumns() {
		size += values[colIdx].Size()
	}
	t := &Tuple{size: size, data: make([]byte, size)}

	varlenOff := sc.Length()
	for i, col := range sc.GetColumns() {
		if col.IsInlined() {
			t.Copy(col.GetOffset(), values[i].Serialize())
			continue
		}
		t.Copy(col.GetOffset(), types.UInt32(varlenOff).Serialize())
		t.Copy(varlenOff, values[i].Serialize())
		varlenOff += values[i].Size()
	}
	return t
}

func (t *Tuple) GetValue(sc *schema.Schema, colIndex uint32) types.Value {
	col := sc.GetColumn(colIndex)
	off := col.GetOffset()
	if !col.IsInlined() {
		off = uint32(types.NewUInt32FromBytes(t.data[off:]))
	}
	return *types.NewValueFromBytes(t.data[off:], col.GetType())
}

// GetValues decodes every column
func (t *Tuple) GetValues(sc *schema.Schema) []types.Value {
	ret := make([]types.Value, sc.GetColumnCount())
	for i := range ret {
		ret[i] = t.GetValue(sc, uint32(i))
	}
	return ret
}

func (t *Tuple) Size() uint32         { return t.size }
func (t *Tuple) Data() []byte         { return t.data }
func (t *Tuple) GetRID() *page.RID    { return t.rid }
func (t *Tuple) SetRID(rid *page.RID) { t.rid = rid }

func (t *Tuple) Copy(offset uint32, data []byte) {
	copy(t.data[offset:], data)
}

func (t *Tuple) GetDeepCopy() *Tuple {
	ret := &Tuple{size: t.size, data: append([]byte(nil), t.data...)}
	if t.rid != nil {
		rid := *t.rid
		ret.rid = &rid
	}
	return ret
}
