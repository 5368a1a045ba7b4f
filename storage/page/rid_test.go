// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package page

import (
	"testing"

	testingpkg "github.com/ryogrid/SamehadaBitmapScan/testing/testing_assert"
	"github.com/ryogrid/SamehadaBitmapScan/types"
)

func TestRID(t *testing.T) {
	rid := RID{}
	rid.Set(types.BlockNumber(0), types.FirstOffsetNumber)
	testingpkg.Equals(t, types.BlockNumber(0), rid.GetBlockNum())
	testingpkg.Equals(t, types.FirstOffsetNumber, rid.GetOffset())
}

func TestRIDOrder(t *testing.T) {
	testingpkg.SimpleAssert(t, NewRID(0, 5).Less(NewRID(1, 1)))
	testingpkg.SimpleAssert(t, NewRID(1, 1).Less(NewRID(1, 2)))
	testingpkg.SimpleAssert(t, !NewRID(1, 2).Less(NewRID(1, 2)))
	testingpkg.Equals(t, "(3,7)", NewRID(3, 7).String())
}
