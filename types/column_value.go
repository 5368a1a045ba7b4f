// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package types

import (
	"cmp"
	"encoding/binary"
	"math"
	"strconv"
)

// Value is one column value of a row. Only the field matching valueType is
// meaningful. A NULL keeps its type.
type Value struct {
	valueType TypeID
	isNull    bool
	i         int32
	f         float32
	b         bool
	s         string
}

func NewInteger(value int32) Value   { return Value{valueType: Integer, i: value} }
func NewFloat(value float32) Value   { return Value{valueType: Float, f: value} }
func NewBoolean(value bool) Value    { return Value{valueType: Boolean, b: value} }
func NewVarchar(value string) Value  { return Value{valueType: Varchar, s: value} }

// NewNull returns NULL value of the type
func NewNull(valueType TypeID) Value {
	switch valueType {
	case Integer, Float, Varchar, Boolean:
		return Value{valueType: valueType, isNull: true}
	}
	panic("NewNull: unsupported type " + strconv.Itoa(int(valueType)))
}

// On-page format is a NULL flag byte followed by the little endian payload.
// A Varchar payload is a uint16 length and the bytes.

// NewValueFromBytes decodes a value written by Serialize
func NewValueFromBytes(data []byte, valueType TypeID) *Value {
	v := Value{valueType: valueType, isNull: data[0] != 0}
	body := data[1:]
	switch valueType {
	case Integer:
		v.i = int32(binary.LittleEndian.Uint32(body))
	case Float:
		v.f = math.Float32frombits(binary.LittleEndian.Uint32(body))
	case Boolean:
		v.b = body[0] != 0
	case Varchar:
		n := binary.LittleEndian.Uint16(body)
		v.s = string(body[2 : 2+n])
	default:
		panic("NewValueFromBytes: unsupported type " + strconv.Itoa(int(valueType)))
	}
	return &v
}

func (v Value) Serialize() []byte {
	buf := make([]byte, 1, v.Size())
	if v.isNull {
		buf[0] = 1
	}
	switch v.valueType {
	case Integer:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v.i))
	case Float:
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v.f))
	case Boolean:
		b := byte(0)
		if v.b {
			b = 1
		}
		buf = append(buf, b)
	case Varchar:
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(v.s)))
		buf = append(buf, v.s...)
	}
	return buf
}

// Size returns the bytes Serialize produces
func (v Value) Size() uint32 {
	switch v.valueType {
	case Integer, Float, Boolean:
		return v.valueType.Size()
	case Varchar:
		return 1 + 2 + uint32(len(v.s))
	}
	panic("Size: unsupported type " + strconv.Itoa(int(v.valueType)))
}

// compare orders two non NULL values of the same type. false < true.
func (v Value) compare(right Value) int {
	switch v.valueType {
	case Integer:
		return cmp.Compare(v.i, right.i)
	case Float:
		return cmp.Compare(v.f, right.f)
	case Varchar:
		return cmp.Compare(v.s, right.s)
	case Boolean:
		switch {
		case v.b == right.b:
			return 0
		case right.b:
			return -1
		}
		return 1
	}
	panic("compare: unsupported type " + strconv.Itoa(int(v.valueType)))
}

// The Compare* methods follow these NULL rules: two NULLs are equal,
// a NULL and a non NULL are neither equal nor ordered.

func (v Value) CompareEquals(right Value) bool {
	if v.isNull || right.isNull {
		return v.isNull && right.isNull
	}
	return v.compare(right) == 0
}

func (v Value) CompareNotEquals(right Value) bool {
	if v.isNull || right.isNull {
		return v.isNull != right.isNull
	}
	return v.compare(right) != 0
}

// ordered reports whether both sides can be ranged and they are not booleans.
// Booleans only take part in equality.
func (v Value) ordered(right Value) bool {
	return !v.isNull && !right.isNull && v.valueType != Boolean
}

func (v Value) CompareGreaterThan(right Value) bool {
	return v.ordered(right) && v.compare(right) > 0
}

func (v Value) CompareLessThan(right Value) bool {
	return v.ordered(right) && v.compare(right) < 0
}

func (v Value) CompareGreaterThanOrEqual(right Value) bool {
	if v.valueType == Boolean || v.isNull || right.isNull {
		return v.CompareEquals(right)
	}
	return v.compare(right) >= 0
}

func (v Value) CompareLessThanOrEqual(right Value) bool {
	if v.valueType == Boolean || v.isNull || right.isNull {
		return v.CompareEquals(right)
	}
	return v.compare(right) <= 0
}

// Less is a total order used by ordered containers. NULL sorts first.
func (v Value) Less(right Value) bool {
	if v.isNull || right.isNull {
		return v.isNull && !right.isNull
	}
	return v.compare(right) < 0
}

// The To* accessors do not check NULL. A NULL returns the zero value.

func (v Value) ToBoolean() bool   { return v.b }
func (v Value) ToInteger() int32  { return v.i }
func (v Value) ToFloat() float32  { return v.f }
func (v Value) ToVarchar() string { return v.s }

func (v Value) ValueType() TypeID { return v.valueType }
func (v Value) IsNull() bool      { return v.isNull }

func (v Value) String() string {
	if v.isNull {
		return "NULL"
	}
	switch v.valueType {
	case Integer:
		return strconv.Itoa(int(v.i))
	case Float:
		return strconv.FormatFloat(float64(v.f), 'f', -1, 32)
	case Varchar:
		return v.s
	case Boolean:
		return strconv.FormatBool(v.b)
	}
	return "<invalid>"
}
