package samehada_util

import (
	"math"
	"math/rand"
	"os"

	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/errors"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

const ErrUnsupportedValue = errors.Error("go value can't be converted to a column value")

func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// ToValue converts a go value to a column value
func ToValue(data interface{}) (types.Value, error) {
	switch v := data.(type) {
	case int:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return types.Value{}, ErrUnsupportedValue
		}
		return types.NewInteger(int32(v)), nil
	case int32:
		return types.NewInteger(v), nil
	case float32:
		return types.NewFloat(v), nil
	case float64:
		return types.NewFloat(float32(v)), nil
	case string:
		return types.NewVarchar(v), nil
	case bool:
		return types.NewBoolean(v), nil
	case types.Value:
		return v, nil
	case *types.Value:
		return *v, nil
	}
	return types.Value{}, ErrUnsupportedValue
}

// ToValueOf converts a go value to a column value of type typ. Numbers are
// converted between Integer and Float when no precision is lost.
func ToValueOf(data interface{}, typ types.TypeID) (types.Value, error) {
	if f, ok := data.(float64); ok && typ == types.Integer {
		if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
			return types.Value{}, ErrUnsupportedValue
		}
		return types.NewInteger(int32(f)), nil
	}
	val, err := ToValue(data)
	if err != nil {
		return val, err
	}
	switch {
	case val.ValueType() == typ:
		return val, nil
	case typ == types.Integer && val.ValueType() == types.Float:
		f := val.ToFloat()
		if f != float32(int32(f)) {
			return types.Value{}, ErrUnsupportedValue
		}
		return types.NewInteger(int32(f)), nil
	case typ == types.Float && val.ValueType() == types.Integer:
		return types.NewFloat(float32(val.ToInteger())), nil
	}
	return types.Value{}, ErrUnsupportedValue
}

// ToInterface is the reverse of ToValue. NULL becomes nil.
func ToInterface(val *types.Value) interface{} {
	if val == nil || val.IsNull() {
		return nil
	}
	switch val.ValueType() {
	case types.Integer:
		return val.ToInteger()
	case types.Float:
		return val.ToFloat()
	case types.Varchar:
		return val.ToVarchar()
	case types.Boolean:
		return val.ToBoolean()
	}
	return nil
}

func GetPonterOfValue(value types.Value) *types.Value {
	val := value
	return &val
}

// min length is 1
func GetRandomStr(maxLength int32) *string {
	alphabets :=
		"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	len_ := 1
	if maxLength > 1 {
		len_ = 1 + rand.Intn(int(maxLength)-1)
	}

	s := ""
	for j := 0; j < len_; j++ {
		idx := rand.Intn(len(alphabets))
		s = s + alphabets[idx:idx+1]
	}

	return &s
}

func TimeoutPanic() {
	common.RuntimeStack()
	os.Stdout.Sync()
	panic("timeout reached")
}
