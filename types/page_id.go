// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package types

import (
	"encoding/binary"

	"github.com/ryogrid/SamehadaBitmapScan/errors"
)

// PageID is the type of the page identifier
type PageID int32

// returned by disk managers for a page which was deallocated
const DeallocatedPageErr = errors.Error("deallocated page id is passed")

// InvalidPageID represents an invalid page GetPageId
const InvalidPageID = PageID(-1)

// IsValid checks if id is valid
func (id PageID) IsValid() bool {
	return id != InvalidPageID && id >= 0
}

func (id PageID) Serialize() []byte {
	return UInt32(uint32(id)).Serialize()
}

func NewPageIDFromBytes(data []byte) PageID {
	return PageID(int32(binary.LittleEndian.Uint32(data)))
}
