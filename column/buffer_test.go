package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferCopyOnWriteSharesUntilMutated(t *testing.T) {
	a := NewBuffer(Int64, 3)
	copy(a.MutInt64(), []int64{1, 2, 3})

	b := a.Shallow()
	b.MutInt64()[0] = 99

	assert.Equal(t, int64(1), a.Int64()[0], "mutating the shallow copy must not affect the original")
	assert.Equal(t, int64(99), b.Int64()[0])
}

func TestBufferSetLenGrowsAndTruncates(t *testing.T) {
	b := NewBuffer(Int32, 2)
	copy(b.MutInt32(), []int32{10, 20})

	b.SetLen(4)
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, []int32{10, 20, 0, 0}, b.Int32())

	b.SetLen(1)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, []int32{10}, b.Int32())
}

func TestBufferReservePreservesLenButGrowsCapacity(t *testing.T) {
	b := NewBuffer(Uint8, 2)
	copy(b.MutUint8(), []uint8{5, 6})

	b.Reserve(10)
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []uint8{5, 6}, b.Uint8())

	b.SetLen(10)
	assert.Equal(t, uint8(0), b.Uint8()[9])
}

func TestBufferStringTypeHoldsStrings(t *testing.T) {
	b := NewBuffer(Text, 2)
	b.MutStrings()[0] = "hello"
	b.MutStrings()[1] = "world"
	assert.Equal(t, []string{"hello", "world"}, b.Strings())
}
