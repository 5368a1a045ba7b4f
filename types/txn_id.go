// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package types

import "encoding/binary"

// TxnID is the type of the transaction identifier
type TxnID uint32

const (
	InvalidTxnID     = TxnID(0)
	FrozenTxnID      = TxnID(2)
	FirstNormalTxnID = TxnID(3)
)

func (id TxnID) IsValid() bool {
	return id != InvalidTxnID
}

func (id TxnID) IsNormal() bool {
	return id >= FirstNormalTxnID
}

// Precedes reports id < other. IDs are never wrapped around in this engine.
func (id TxnID) Precedes(other TxnID) bool {
	return id < other
}

func (id TxnID) Serialize() []byte {
	return UInt32(uint32(id)).Serialize()
}

func NewTxnIDFromBytes(data []byte) TxnID {
	return TxnID(binary.LittleEndian.Uint32(data))
}
