// this code is from https://github.com/pzhzqt/goostub
// there is license and copyright notice in licenses/goostub dir

package common

import (
	"sync"

	"github.com/sasha-s/go-deadlock"
)

// ReaderWriterLatch guards in-memory structures such as page frames and the
// page list of a table heap. It is never held across a transaction.
type ReaderWriterLatch interface {
	WLock()
	WUnlock()
	RLock()
	RUnlock()
}

type rwMutex interface {
	sync.Locker
	RLock()
	RUnlock()
}

type readerWriterLatch struct {
	mu rwMutex
}

// NewRWLatch returns a latch backed by go-deadlock when EnableDeadlockDetect
// is set. The choice is fixed at creation.
func NewRWLatch() ReaderWriterLatch {
	if EnableDeadlockDetect {
		return &readerWriterLatch{new(deadlock.RWMutex)}
	}
	return &readerWriterLatch{new(sync.RWMutex)}
}

func (l *readerWriterLatch) WLock()   { l.mu.Lock() }
func (l *readerWriterLatch) WUnlock() { l.mu.Unlock() }
func (l *readerWriterLatch) RLock()   { l.mu.RLock() }
func (l *readerWriterLatch) RUnlock() { l.mu.RUnlock() }
