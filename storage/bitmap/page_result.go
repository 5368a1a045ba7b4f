package bitmap

import (
	"github.com/ryogrid/SamehadaBitmapScan/errors"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

const ErrUnrecognizedBitmap = errors.Error("unrecognized bitmap type")

type PageKind int32

const (
	// Exact entries list the candidate offsets of the page
	Exact PageKind = iota
	// Lossy entries only tell that some rows of the page may match
	Lossy
)

func (k PageKind) String() string {
	if k == Lossy {
		return "lossy"
	}
	return "exact"
}

// PageResult is one page of a bitmap in iteration order
type PageResult struct {
	BlockNo types.BlockNumber
	Kind    PageKind
	Offsets []types.OffsetNumber // ascending. empty for Lossy
	Recheck bool                 // rows must be tested against the original condition
}

// NTuples returns the number of offsets, or -1 for a lossy page
func (r *PageResult) NTuples() int {
	if r.Kind == Lossy {
		return -1
	}
	return len(r.Offsets)
}

func (r *PageResult) IsLossy() bool {
	return r.Kind == Lossy
}

// Node is a bitmap produced by an index scan
type Node interface {
	// IsEmpty reports whether iteration would return no page
	IsEmpty() bool
}

// Iterator walks the pages of a bitmap in ascending block order.
// Iterators of one bitmap are independent of each other.
type Iterator interface {
	// Next returns nil when the bitmap is exhausted
	Next() *PageResult
	// End releases the iterator. The bitmap itself is not freed.
	End()
}

// Begin opens a new iterator over node
func Begin(node Node) (Iterator, error) {
	switch n := node.(type) {
	case *TIDBitmap:
		return n.beginIterate(), nil
	case *StreamBitmap:
		return n.beginIterate(), nil
	default:
		return nil, ErrUnrecognizedBitmap
	}
}
