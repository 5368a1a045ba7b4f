package types

type TypeID int

const (
	Invalid TypeID = iota
	Boolean
	Integer
	Varchar
	Float
)

// Size returns the fixed area size of a column of the type (1 byte NULL flag included)
func (t TypeID) Size() uint32 {
	switch t {
	case Integer, Float:
		return 1 + 4
	case Boolean:
		return 1 + 1
	}
	return 0
}
