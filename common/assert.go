package common

import (
	"runtime"

	"github.com/devlights/gomy/output"
)

// SH_Assert panics with msg when condition does not hold. With debug output
// enabled all goroutine stacks are dumped first, which helps when the
// violation is caused by a prefetch worker.
func SH_Assert(condition bool, msg string) {
	if condition {
		return
	}
	if EnableDebug {
		RuntimeStack()
	}
	panic(msg)
}

// RuntimeStack writes stacks of all goroutines to stdout
func RuntimeStack() {
	buf := make([]byte, 1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			buf = buf[:n]
			break
		}
		buf = make([]byte, 2*len(buf))
	}
	output.Stdoutl("=== stack-all   ", string(buf))
}
