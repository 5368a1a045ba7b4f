package page

import (
	"testing"

	"github.com/ryogrid/SamehadaBitmapScan/common"
	testingpkg "github.com/ryogrid/SamehadaBitmapScan/testing/testing_assert"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

func TestPageFrameState(t *testing.T) {
	data := [common.PageSize]byte{}
	p := New(types.PageID(3), false, &data)

	testingpkg.Equals(t, types.PageID(3), p.GetPageId())
	// a new frame is handed out pinned
	testingpkg.Equals(t, int32(1), p.PinCount())
	p.IncPinCount()
	p.DecPinCount()
	p.DecPinCount()
	testingpkg.Equals(t, int32(0), p.PinCount())

	testingpkg.SimpleAssert(t, !p.IsDirty())
	p.SetIsDirty(true)
	testingpkg.SimpleAssert(t, p.IsDirty())
	testingpkg.SimpleAssert(t, !p.IsDeallocated())
	p.SetIsDeallocated(true)
	testingpkg.SimpleAssert(t, p.IsDeallocated())

	// the frame writes through to the buffer it was created with
	p.Copy(100, []byte("abc"))
	testingpkg.Equals(t, []byte("abc"), data[100:103])
	testingpkg.Equals(t, &data, p.Data())
}

func TestEmptyPage(t *testing.T) {
	p := NewEmpty(types.PageID(0))
	testingpkg.Equals(t, int32(1), p.PinCount())
	testingpkg.SimpleAssert(t, !p.IsDirty())
	testingpkg.Equals(t, [common.PageSize]byte{}, *p.Data())
}

func TestPageLatchWithDeadlockDetector(t *testing.T) {
	common.EnableDeadlockDetect = true
	defer func() { common.EnableDeadlockDetect = false }()

	// go-deadlock rejects recursive read locks, so each latch is released first
	p := NewEmpty(types.PageID(1))
	p.RLatch()
	testingpkg.Equals(t, byte(0), p.Data()[0])
	p.RUnlatch()
	p.WLatch()
	p.Copy(0, []byte{1})
	p.WUnlatch()
	testingpkg.Equals(t, byte(1), p.Data()[0])
}
