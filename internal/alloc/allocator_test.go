package alloc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zzzrg/os-filesystem/internal/alloc"
)

func TestAllocateFirstFit(t *testing.T) {
	a := alloc.New(8)

	first, err := a.Allocate()
	assert.NoError(t, err)
	assert.Equal(t, 0, first)

	second, err := a.Allocate()
	assert.NoError(t, err)
	assert.Equal(t, 1, second)

	a.Release(0)
	third, err := a.Allocate()
	assert.NoError(t, err)
	assert.Equal(t, 0, third, "release should make the lowest index available again")
}

func TestAllocateExhaustion(t *testing.T) {
	a := alloc.New(2)

	_, err := a.Allocate()
	assert.NoError(t, err)
	_, err = a.Allocate()
	assert.NoError(t, err)

	_, err = a.Allocate()
	assert.Error(t, err)
}

func TestReserveRollsBackOnFailure(t *testing.T) {
	a := alloc.New(4)

	_, err := a.Allocate()
	assert.NoError(t, err)

	// Only 3 blocks remain free; asking for 4 must fail and leave the 3
	// blocks it grabbed along the way back in the free pool.
	_, err = a.Reserve(4)
	assert.Error(t, err)
	assert.EqualValues(t, 3, a.FreeCount())
}

func TestReserveSucceeds(t *testing.T) {
	a := alloc.New(4)

	blocks, err := a.Reserve(3)
	assert.NoError(t, err)
	assert.Len(t, blocks, 3)
	assert.ElementsMatch(t, []int{0, 1, 2}, blocks)
	assert.EqualValues(t, 1, a.FreeCount())
}

func TestMarkAllocatedAndIsAllocated(t *testing.T) {
	a := alloc.New(4)
	a.MarkAllocated(2)

	assert.True(t, a.IsAllocated(2))
	assert.False(t, a.IsAllocated(0))
}

func TestNewFromBytesRoundTrips(t *testing.T) {
	a := alloc.New(16)
	a.MarkAllocated(3)
	a.MarkAllocated(7)

	reloaded := alloc.NewFromBytes(16, a.Bytes())
	assert.True(t, reloaded.IsAllocated(3))
	assert.True(t, reloaded.IsAllocated(7))
	assert.False(t, reloaded.IsAllocated(0))
}

func TestReleaseOutOfRangeIsNoop(t *testing.T) {
	a := alloc.New(4)
	assert.NotPanics(t, func() {
		a.Release(-1)
		a.Release(100)
	})
}
