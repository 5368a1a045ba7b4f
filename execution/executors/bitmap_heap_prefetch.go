package executors

import (
	"github.com/ryogrid/SamehadaBitmapScan/common"
	"github.com/ryogrid/SamehadaBitmapScan/errors"
	"github.com/ryogrid/SamehadaBitmapScan/storage/bitmap"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

const ErrPrefetchDesync = errors.Error("prefetch and main iterators are out of sync")

type PrefetchState int32

const (
	// no read-ahead. the ceiling is 0
	PrefetchDisabled PrefetchState = iota
	// the distance is still growing
	PrefetchRamping
	// the distance reached the ceiling
	PrefetchSteady
	// the prefetch cursor has run off the end of the bitmap
	PrefetchExhausted
)

func (s PrefetchState) String() string {
	switch s {
	case PrefetchDisabled:
		return "disabled"
	case PrefetchRamping:
		return "ramping"
	case PrefetchSteady:
		return "steady"
	default:
		return "exhausted"
	}
}

// blockPrefetcher receives read-ahead hints
type blockPrefetcher interface {
	PrefetchBlock(blockNum types.BlockNumber)
}

/**
 * bitmapPrefetcher runs a second iterator over the same bitmap ahead of the
 * main one and issues read-ahead hints for the pages it passes.
 *
 * pages is how many pages the prefetch iterator is ahead of the main one.
 * target is the distance wanted now. It starts at 0 and grows toward ceiling
 * as the scan goes on, so a scan which stops after a few rows does not pay for
 * read-ahead of pages it never reads.
 * 0 <= pages <= target <= ceiling holds between calls.
 */
type bitmapPrefetcher struct {
	iter    bitmap.Iterator
	pages   int
	target  int
	ceiling int
	dest    blockPrefetcher
	issued  int64
}

// newBitmapPrefetcher opens the prefetch iterator of node. With ceiling <= 0
// no iterator is opened and every method is a no-op.
func newBitmapPrefetcher(node bitmap.Node, ceiling int, dest blockPrefetcher) (*bitmapPrefetcher, error) {
	p := &bitmapPrefetcher{ceiling: ceiling, dest: dest}
	if ceiling <= 0 {
		p.ceiling = 0
		return p, nil
	}
	iter, err := bitmap.Begin(node)
	if err != nil {
		return nil, err
	}
	p.iter = iter
	return p, nil
}

func (p *bitmapPrefetcher) State() PrefetchState {
	switch {
	case p.ceiling == 0:
		return PrefetchDisabled
	case p.iter == nil:
		return PrefetchExhausted
	case p.target >= p.ceiling:
		return PrefetchSteady
	default:
		return PrefetchRamping
	}
}

// consume is called when the main iterator moved to blockNo.
// When the prefetch iterator is not ahead it is moved too and must land on the
// same page.
func (p *bitmapPrefetcher) consume(blockNo types.BlockNumber) error {
	if p.pages > 0 {
		p.pages--
		return nil
	}
	if p.iter == nil {
		return nil
	}
	res := p.iter.Next()
	if res == nil || res.BlockNo != blockNo {
		common.ShPrintf(common.ERROR, "bitmapPrefetcher: main block=%d prefetch=%v\n", blockNo, res)
		return ErrPrefetchDesync
	}
	return nil
}

// rampUp grows the distance after a page transition.
// 0 -> 1, then doubling, and jumping to the ceiling from half of it.
func (p *bitmapPrefetcher) rampUp() {
	switch {
	case p.target >= p.ceiling:
	case p.target >= p.ceiling/2:
		p.target = p.ceiling
	case p.target > 0:
		p.target *= 2
	default:
		p.target++
	}
}

// bump grows the distance by one on an advance inside a page
func (p *bitmapPrefetcher) bump() {
	if p.target < p.ceiling {
		p.target++
	}
}

// topUp moves the prefetch iterator until it is target pages ahead and hints
// every page it passes
func (p *bitmapPrefetcher) topUp() {
	for p.iter != nil && p.pages < p.target {
		res := p.iter.Next()
		if res == nil {
			p.iter.End()
			p.iter = nil
			break
		}
		p.pages++
		p.issued++
		p.dest.PrefetchBlock(res.BlockNo)
	}
}

func (p *bitmapPrefetcher) end() {
	if p.iter != nil {
		p.iter.End()
		p.iter = nil
	}
}

func (p *bitmapPrefetcher) Lead() int {
	return p.pages
}

func (p *bitmapPrefetcher) Target() int {
	return p.target
}
