package types

import "math"

// BlockNumber is the position of a page inside one relation (0 origin).
// A relation maps its block numbers to PageIDs of the buffer pool.
type BlockNumber uint32

const InvalidBlockNumber = BlockNumber(math.MaxUint32)

func (b BlockNumber) IsValid() bool {
	return b != InvalidBlockNumber
}

// OffsetNumber identifies a line pointer (slot) on a heap page. 1 origin.
type OffsetNumber uint16

const (
	InvalidOffsetNumber = OffsetNumber(0)
	FirstOffsetNumber   = OffsetNumber(1)
)

func (o OffsetNumber) IsValid() bool {
	return o != InvalidOffsetNumber
}

// SlotIndex returns the 0 origin index of the line pointer array.
func (o OffsetNumber) SlotIndex() uint32 {
	return uint32(o) - 1
}

func OffsetNumberFromSlotIndex(idx uint32) OffsetNumber {
	return OffsetNumber(idx + 1)
}
