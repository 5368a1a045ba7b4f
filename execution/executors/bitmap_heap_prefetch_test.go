package executors

import (
	"testing"

	"github.com/ryogrid/SamehadaBitmapScan/storage/bitmap"
	"github.com/ryogrid/SamehadaBitmapScan/storage/page"
	testingpkg "github.com/ryogrid/SamehadaBitmapScan/testing/testing_assert"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

type recordingDest struct {
	blocks []types.BlockNumber
}

func (d *recordingDest) PrefetchBlock(blockNum types.BlockNumber) {
	d.blocks = append(d.blocks, blockNum)
}

func onePerPageBitmap(npages int) *bitmap.TIDBitmap {
	tbm := bitmap.NewTIDBitmap(1024)
	rids := make([]page.RID, 0, npages)
	for b := 0; b < npages; b++ {
		rids = append(rids, page.NewRID(types.BlockNumber(b), 1))
	}
	tbm.AddTuples(rids, false)
	return tbm
}

func TestPrefetchRampSequence(t *testing.T) {
	cases := []struct {
		ceiling int
		targets []int
	}{
		{16, []int{1, 2, 4, 8, 16, 16}},
		{4, []int{1, 2, 4, 4}},
		{3, []int{1, 3, 3}},
		{1, []int{1, 1}},
	}
	for _, c := range cases {
		p := &bitmapPrefetcher{ceiling: c.ceiling}
		for i, want := range c.targets {
			p.rampUp()
			testingpkg.Assert(t, p.target == want, "ceiling %d step %d: target should be %d but was %d", c.ceiling, i, want, p.target)
		}
	}

	p := &bitmapPrefetcher{ceiling: 2}
	p.bump()
	p.bump()
	p.bump()
	testingpkg.Equals(t, 2, p.Target())
}

func TestPrefetchFollowsMainIterator(t *testing.T) {
	tbm := onePerPageBitmap(6)
	dest := &recordingDest{}
	p, err := newBitmapPrefetcher(tbm, 4, dest)
	testingpkg.Ok(t, err)
	defer p.end()
	testingpkg.Equals(t, PrefetchRamping, p.State())

	main, err := bitmap.Begin(tbm)
	testingpkg.Ok(t, err)
	defer main.End()

	targets := make([]int, 0)
	states := make([]PrefetchState, 0)
	for res := main.Next(); res != nil; res = main.Next() {
		testingpkg.Ok(t, p.consume(res.BlockNo))
		p.rampUp()
		p.topUp()
		testingpkg.Assert(t, 0 <= p.Lead() && p.Lead() <= p.Target() && p.Target() <= 4,
			"lead %d target %d out of bounds", p.Lead(), p.Target())
		// hints never point behind the main iterator
		for _, blk := range dest.blocks {
			testingpkg.SimpleAssert(t, blk > 0)
		}
		targets = append(targets, p.Target())
		states = append(states, p.State())
	}

	testingpkg.Equals(t, []int{1, 2, 4, 4, 4, 4}, targets)
	testingpkg.Equals(t, []types.BlockNumber{1, 2, 3, 4, 5}, dest.blocks)
	testingpkg.Equals(t, PrefetchExhausted, states[2])
	testingpkg.Equals(t, 0, p.Lead())
	testingpkg.Equals(t, int64(5), p.issued)
}

func TestPrefetchDisabled(t *testing.T) {
	tbm := onePerPageBitmap(3)
	dest := &recordingDest{}
	p, err := newBitmapPrefetcher(tbm, 0, dest)
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, PrefetchDisabled, p.State())

	testingpkg.Ok(t, p.consume(0))
	p.rampUp()
	p.bump()
	p.topUp()
	testingpkg.Equals(t, 0, len(dest.blocks))
	testingpkg.Equals(t, 0, p.Target())
	p.end()
}

func TestPrefetchDesync(t *testing.T) {
	tbm := onePerPageBitmap(3)
	p, err := newBitmapPrefetcher(tbm, 4, &recordingDest{})
	testingpkg.Ok(t, err)
	defer p.end()

	// the main iterator claims block 2 while the prefetch one is at block 0
	testingpkg.Equals(t, ErrPrefetchDesync, p.consume(2))

	// running past the end is a desync too
	p2, err := newBitmapPrefetcher(tbm, 4, &recordingDest{})
	testingpkg.Ok(t, err)
	defer p2.end()
	testingpkg.Ok(t, p2.consume(0))
	testingpkg.Ok(t, p2.consume(1))
	testingpkg.Ok(t, p2.consume(2))
	testingpkg.Equals(t, ErrPrefetchDesync, p2.consume(3))
}

type foreignBitmap struct{}

func (foreignBitmap) IsEmpty() bool { return false }

func TestPrefetchUnrecognizedBitmap(t *testing.T) {
	_, err := newBitmapPrefetcher(foreignBitmap{}, 4, &recordingDest{})
	testingpkg.Equals(t, bitmap.ErrUnrecognizedBitmap, err)

	// nothing is opened when prefetching is off
	p, err := newBitmapPrefetcher(foreignBitmap{}, 0, &recordingDest{})
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, PrefetchDisabled, p.State())
}
