// this code is from https://github.com/pzhzqt/goostub
// there is license and copyright notice in licenses/goostub dir

package common

const EnableDebug bool = false //true

// page latches are backed by go-deadlock when this is true
var EnableDeadlockDetect = false

const (
	// invalid page id
	InvalidPageID = -1
	// invalid transaction id
	InvalidTxnID = 0
	// size of a data page in byte
	PageSize = 4096
	// default of the prefetch distance ceiling (pages) used by bitmap heap scans.
	// 0 disables prefetching.
	DefaultTargetPrefetchPages = 16
	// max number of read-ahead requests which can be in flight at once
	MaxPrefetchWorkers = 8
	// bitmap entries (tuples of exact pages + lossy pages) kept before lossifying
	DefaultBitmapMaxEntries = 64 * 1024
	// max number of transactions the request manager runs at once
	MaxTxnThreadNum = 8
	// times a request is run again after a serialization failure
	MaxSerializationRetry = 16
	// number of partitions of the predicate lock table
	PredicateLockPartitionNum = 16
	ActiveLogKindSetting      = INFO | WARN | ERROR | FATAL //| PREFETCH_INFO | BITMAP_SCAN_INFO | DEBUG_INFO
)

