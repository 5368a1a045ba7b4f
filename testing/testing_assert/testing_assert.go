// Package testing_assert holds the small assertion helpers used by the tests
// of every package. They are thin wrappers of testify so failures are reported
// with diffs and the caller's line.
package testing_assert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Assert fails the test immediately if the condition is false.
func Assert(tb testing.TB, condition bool, msg string, v ...interface{}) {
	tb.Helper()
	require.Truef(tb, condition, msg, v...)
}

// SimpleAssert fails the test immediately if the condition is false.
func SimpleAssert(tb testing.TB, condition bool) {
	tb.Helper()
	require.True(tb, condition)
}

// Ok fails the test immediately if err is not nil.
func Ok(tb testing.TB, err error) {
	tb.Helper()
	require.NoError(tb, err)
}

// Equals fails the test immediately if exp is not equal to act.
func Equals(tb testing.TB, exp, act interface{}) {
	tb.Helper()
	require.Equal(tb, exp, act)
}

// Check reports a non fatal mismatch and lets the test go on.
func Check(tb testing.TB, exp, act interface{}, msgAndArgs ...interface{}) bool {
	tb.Helper()
	return assert.Equal(tb, exp, act, msgAndArgs...)
}
