// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package access

import (
	"unsafe"

	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/errors"
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

const sizeTablePageHeader = uint32(24)
const sizeLinePointer = uint32(8)
const offsetPruneXid = uint32(4)
const offsetNextPageId = uint32(8)
const offsetFreeSpace = uint32(12)
const offsetLinePointerCount = uint32(16)
const offsetBlockNum = uint32(20)

const SizeTupleHeader = uint32(16)
const offsetXmin = uint32(0)
const offsetXmax = uint32(4)
const offsetCtidBlock = uint32(8)
const offsetCtidOffset = uint32(12)
const offsetInfomask = uint32(14)

const ErrEmptyTuple = errors.Error("tuple cannot be empty")
const ErrNotEnoughSpace = errors.Error("there is not enough space")
const ErrTupleNotFound = errors.Error("tuple not found")

// LPFlag is the state of a line pointer
type LPFlag uint16

const (
	LP_UNUSED   LPFlag = iota // free to be reused
	LP_NORMAL                 // points to a tuple
	LP_REDIRECT               // HOT chain root whose tuple was pruned. Offset holds the next member
	LP_DEAD                   // storage is released but index entries may still point here
)

// infomask bits
const (
	HEAP_HOT_UPDATED uint16 = 0x0001 // next version is on the same page and not indexed
	HEAP_ONLY_TUPLE  uint16 = 0x0002 // reachable only through a HOT chain
)

type LinePointer struct {
	Offset uint32 // tuple location, or redirect target OffsetNumber
	Len    uint16
	Flags  LPFlag
}

func (lp LinePointer) IsNormal() bool   { return lp.Flags == LP_NORMAL }
func (lp LinePointer) IsRedirect() bool { return lp.Flags == LP_REDIRECT }
func (lp LinePointer) IsDead() bool     { return lp.Flags == LP_DEAD }
func (lp LinePointer) IsUnused() bool   { return lp.Flags == LP_UNUSED }

// HeapTupleHeader is MVCC information stored in front of every tuple
type HeapTupleHeader struct {
	Xmin       types.TxnID
	Xmax       types.TxnID
	CtidBlock  types.BlockNumber // location of the newer version (or self)
	CtidOffset types.OffsetNumber
	Infomask   uint16
}

func (h *HeapTupleHeader) IsHotUpdated() bool { return h.Infomask&HEAP_HOT_UPDATED != 0 }
func (h *HeapTupleHeader) IsHeapOnly() bool   { return h.Infomask&HEAP_ONLY_TUPLE != 0 }

// Slotted page format:
//
//	-------------------------------------------------------------------
//	| HEADER | LINE POINTERS | ... FREE SPACE ... | ... TUPLES ...     |
//	-------------------------------------------------------------------
//	                                              ^
//	                                              free space pointer
//	Header format (size in bytes):
//	-------------------------------------------------------------------------------------------------------
//	| PageId (4)| PruneXid (4)| NextPageId (4)| FreeSpacePointer(4) | LinePointerCount (4) | BlockNum (4) |
//	-------------------------------------------------------------------------------------------------------
//	Line pointer (OffsetNumber 1 is the first):
//	--------------------------------------------------
//	| tuple offset or redirect (4) | len (2) | flags (2) |
//	--------------------------------------------------
//	Tuple:
//	------------------------------------------------------------------------------------
//	| xmin (4) | xmax (4) | ctid block (4) | ctid offset (2) | infomask (2) | row data |
//	------------------------------------------------------------------------------------
type TablePage struct {
	page.Page
}

// CastPageAsTablePage casts the abstract Page struct into TablePage
func CastPageAsTablePage(page *page.Page) *TablePage {
	if page == nil {
		return nil
	}

	return (*TablePage)(unsafe.Pointer(page))
}

func (tp *TablePage) Init(pageId types.PageID, blockNum types.BlockNumber) {
	tp.SetPageId(pageId)
	tp.SetNextPageId(types.InvalidPageID)
	tp.SetPruneXid(types.InvalidTxnID)
	tp.SetLinePointerCount(0)
	tp.SetFreeSpacePointer(common.PageSize)
	tp.SetBlockNum(blockNum)
}

// InsertTuple places data with hdr on the page and returns the line pointer used.
// An unused line pointer is reused when there is one.
func (tp *TablePage) InsertTuple(data []byte, hdr *HeapTupleHeader) (types.OffsetNumber, error) {
	if len(data) == 0 {
		return types.InvalidOffsetNumber, ErrEmptyTuple
	}

	off := tp.findUnusedLinePointer()
	need := SizeTupleHeader + uint32(len(data))
	if off == types.InvalidOffsetNumber {
		need += sizeLinePointer
	}
	if tp.getFreeSpaceRemaining() < need {
		return types.InvalidOffsetNumber, ErrNotEnoughSpace
	}
	if off == types.InvalidOffsetNumber {
		off = types.OffsetNumberFromSlotIndex(tp.GetLinePointerCount())
		tp.SetLinePointerCount(tp.GetLinePointerCount() + 1)
	}

	tupleLen := SizeTupleHeader + uint32(len(data))
	tupleOffset := tp.GetFreeSpacePointer() - tupleLen
	tp.SetFreeSpacePointer(tupleOffset)
	tp.setLinePointer(off, LinePointer{tupleOffset, uint16(tupleLen), LP_NORMAL})
	tp.SetTupleHeader(off, hdr)
	tp.Copy(tupleOffset+SizeTupleHeader, data)

	return off, nil
}

func (tp *TablePage) findUnusedLinePointer() types.OffsetNumber {
	max := tp.GetMaxOffsetNumber()
	for off := types.FirstOffsetNumber; off <= max; off++ {
		if tp.GetLinePointer(off).IsUnused() {
			return off
		}
	}
	return types.InvalidOffsetNumber
}

// HasSpaceFor reports whether a tuple of dataLen bytes can be inserted without pruning
func (tp *TablePage) HasSpaceFor(dataLen uint32) bool {
	need := SizeTupleHeader + dataLen
	if tp.findUnusedLinePointer() == types.InvalidOffsetNumber {
		need += sizeLinePointer
	}
	return tp.getFreeSpaceRemaining() >= need
}

func (tp *TablePage) SetPageId(pageId types.PageID) {
	tp.Copy(0, pageId.Serialize())
}

func (tp *TablePage) SetNextPageId(pageId types.PageID) {
	tp.Copy(offsetNextPageId, pageId.Serialize())
}

func (tp *TablePage) SetFreeSpacePointer(freeSpacePointer uint32) {
	tp.Copy(offsetFreeSpace, types.UInt32(freeSpacePointer).Serialize())
}

func (tp *TablePage) SetLinePointerCount(count uint32) {
	tp.Copy(offsetLinePointerCount, types.UInt32(count).Serialize())
}

func (tp *TablePage) SetBlockNum(blockNum types.BlockNumber) {
	tp.Copy(offsetBlockNum, types.UInt32(blockNum).Serialize())
}

func (tp *TablePage) SetPruneXid(xid types.TxnID) {
	tp.Copy(offsetPruneXid, xid.Serialize())
}

// SetPrunable remembers the oldest xid whose deletion may let pruning free space
func (tp *TablePage) SetPrunable(xid types.TxnID) {
	cur := tp.GetPruneXid()
	if !cur.IsValid() || xid.Precedes(cur) {
		tp.SetPruneXid(xid)
	}
}

func (tp *TablePage) GetNextPageId() types.PageID {
	return types.NewPageIDFromBytes(tp.Data()[offsetNextPageId:])
}

func (tp *TablePage) GetPruneXid() types.TxnID {
	return types.NewTxnIDFromBytes(tp.Data()[offsetPruneXid:])
}

func (tp *TablePage) GetBlockNum() types.BlockNumber {
	return types.BlockNumber(types.NewUInt32FromBytes(tp.Data()[offsetBlockNum:]))
}

func (tp *TablePage) GetLinePointerCount() uint32 {
	return uint32(types.NewUInt32FromBytes(tp.Data()[offsetLinePointerCount:]))
}

// GetMaxOffsetNumber returns the last line pointer in use or InvalidOffsetNumber for an empty page
func (tp *TablePage) GetMaxOffsetNumber() types.OffsetNumber {
	return types.OffsetNumber(tp.GetLinePointerCount())
}

func (tp *TablePage) GetFreeSpacePointer() uint32 {
	return uint32(types.NewUInt32FromBytes(tp.Data()[offsetFreeSpace:]))
}

func (tp *TablePage) getFreeSpaceRemaining() uint32 {
	return tp.GetFreeSpacePointer() - sizeTablePageHeader - sizeLinePointer*tp.GetLinePointerCount()
}

func linePointerPos(off types.OffsetNumber) uint32 {
	return sizeTablePageHeader + sizeLinePointer*off.SlotIndex()
}

func (tp *TablePage) GetLinePointer(off types.OffsetNumber) LinePointer {
	common.SH_Assert(off.IsValid() && off <= tp.GetMaxOffsetNumber(), "TablePage: line pointer out of range")
	pos := linePointerPos(off)
	data := tp.Data()
	return LinePointer{
		uint32(types.NewUInt32FromBytes(data[pos:])),
		uint16(types.NewUInt16FromBytes(data[pos+4:])),
		LPFlag(types.NewUInt16FromBytes(data[pos+6:])),
	}
}

func (tp *TablePage) setLinePointer(off types.OffsetNumber, lp LinePointer) {
	pos := linePointerPos(off)
	tp.Copy(pos, types.UInt32(lp.Offset).Serialize())
	tp.Copy(pos+4, types.UInt16(lp.Len).Serialize())
	tp.Copy(pos+6, types.UInt16(lp.Flags).Serialize())
}

func (tp *TablePage) SetLinePointerRedirect(off types.OffsetNumber, target types.OffsetNumber) {
	tp.setLinePointer(off, LinePointer{uint32(target), 0, LP_REDIRECT})
}

func (tp *TablePage) SetLinePointerDead(off types.OffsetNumber) {
	tp.setLinePointer(off, LinePointer{0, 0, LP_DEAD})
}

func (tp *TablePage) SetLinePointerUnused(off types.OffsetNumber) {
	tp.setLinePointer(off, LinePointer{0, 0, LP_UNUSED})
}

// GetTupleHeader must be called for a LP_NORMAL line pointer only
func (tp *TablePage) GetTupleHeader(off types.OffsetNumber) *HeapTupleHeader {
	lp := tp.GetLinePointer(off)
	common.SH_Assert(lp.IsNormal(), "TablePage::GetTupleHeader line pointer is not normal")
	data := tp.Data()[lp.Offset:]
	return &HeapTupleHeader{
		types.NewTxnIDFromBytes(data[offsetXmin:]),
		types.NewTxnIDFromBytes(data[offsetXmax:]),
		types.BlockNumber(types.NewUInt32FromBytes(data[offsetCtidBlock:])),
		types.OffsetNumber(types.NewUInt16FromBytes(data[offsetCtidOffset:])),
		uint16(types.NewUInt16FromBytes(data[offsetInfomask:])),
	}
}

func (tp *TablePage) SetTupleHeader(off types.OffsetNumber, hdr *HeapTupleHeader) {
	lp := tp.GetLinePointer(off)
	tp.Copy(lp.Offset+offsetXmin, hdr.Xmin.Serialize())
	tp.Copy(lp.Offset+offsetXmax, hdr.Xmax.Serialize())
	tp.Copy(lp.Offset+offsetCtidBlock, types.UInt32(hdr.CtidBlock).Serialize())
	tp.Copy(lp.Offset+offsetCtidOffset, types.UInt16(hdr.CtidOffset).Serialize())
	tp.Copy(lp.Offset+offsetInfomask, types.UInt16(hdr.Infomask).Serialize())
}

// GetTupleData returns a copy of the row data of a LP_NORMAL line pointer
func (tp *TablePage) GetTupleData(off types.OffsetNumber) []byte {
	lp := tp.GetLinePointer(off)
	common.SH_Assert(lp.IsNormal(), "TablePage::GetTupleData line pointer is not normal")
	ret := make([]byte, uint32(lp.Len)-SizeTupleHeader)
	copy(ret, tp.Data()[lp.Offset+SizeTupleHeader:lp.Offset+uint32(lp.Len)])
	return ret
}

// RepairFragmentation moves the storage of LP_NORMAL tuples to the end of the page
// so space released by pruning becomes one contiguous free area.
// Line pointer numbers do not change.
func (tp *TablePage) RepairFragmentation() {
	max := tp.GetMaxOffsetNumber()
	type kept struct {
		off   types.OffsetNumber
		bytes []byte
	}
	tuples := make([]kept, 0, int(max))
	for off := types.FirstOffsetNumber; off <= max; off++ {
		lp := tp.GetLinePointer(off)
		if !lp.IsNormal() {
			continue
		}
		b := make([]byte, lp.Len)
		copy(b, tp.Data()[lp.Offset:lp.Offset+uint32(lp.Len)])
		tuples = append(tuples, kept{off, b})
	}

	// trailing unused line pointers are released too
	for max > 0 && tp.GetLinePointer(max).IsUnused() {
		max--
	}
	tp.SetLinePointerCount(uint32(max))

	freePtr := uint32(common.PageSize)
	for _, t := range tuples {
		freePtr -= uint32(len(t.bytes))
		tp.Copy(freePtr, t.bytes)
		tp.setLinePointer(t.off, LinePointer{freePtr, uint16(len(t.bytes)), LP_NORMAL})
	}
	tp.SetFreeSpacePointer(freePtr)
}
