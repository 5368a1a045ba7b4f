package page

import (
	"fmt"

	"github.com/ryogrid/SamehadaBitmapScan/types"
)

// RID is the record identifier: block number of a relation and line pointer offset
type RID struct {
	BlockNum types.BlockNumber
	Offset   types.OffsetNumber
}

func NewRID(blockNum types.BlockNumber, offset types.OffsetNumber) RID {
	return RID{blockNum, offset}
}

// Set sets the recod identifier
func (r *RID) Set(blockNum types.BlockNumber, offset types.OffsetNumber) {
	r.BlockNum = blockNum
	r.Offset = offset
}

func (r *RID) GetBlockNum() types.BlockNumber {
	return r.BlockNum
}

func (r *RID) GetOffset() types.OffsetNumber {
	return r.Offset
}

// Less orders RIDs the way the heap is laid out
func (r RID) Less(other RID) bool {
	if r.BlockNum != other.BlockNum {
		return r.BlockNum < other.BlockNum
	}
	return r.Offset < other.Offset
}

func (r RID) String() string {
	return fmt.Sprintf("(%d,%d)", r.BlockNum, r.Offset)
}
