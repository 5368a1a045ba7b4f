package types

import "encoding/binary"

// fixed width fields of page headers and line pointers. all little endian.

type UInt16 uint16
type UInt32 uint32

func (v UInt16) Serialize() []byte {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, uint16(v))
	return buf
}

func NewUInt16FromBytes(data []byte) UInt16 {
	return UInt16(binary.LittleEndian.Uint16(data))
}

func (v UInt32) Serialize() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return buf
}

func NewUInt32FromBytes(data []byte) UInt32 {
	return UInt32(binary.LittleEndian.Uint32(data))
}
