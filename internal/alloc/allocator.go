// Package alloc implements the free-space bitmap allocator used to track
// which blocks on the volume are in use.
package alloc

import (
	"fmt"

	bitmap "github.com/boljen/go-bitmap"

	fserrors "github.com/zzzrg/os-filesystem/errors"
)

// Allocator tracks the allocation state of a fixed number of blocks with a
// bitmap, allocating and releasing in first-fit-by-ascending-index order.
type Allocator struct {
	bits        bitmap.Bitmap
	totalBlocks uint
}

// New creates an Allocator covering totalBlocks blocks, all initially free.
func New(totalBlocks uint) *Allocator {
	return &Allocator{
		bits:        bitmap.New(int(totalBlocks)),
		totalBlocks: totalBlocks,
	}
}

// NewFromBytes wraps raw bitmap bytes read from disk, e.g. during remount.
func NewFromBytes(totalBlocks uint, raw []byte) *Allocator {
	return &Allocator{
		bits:        bitmap.Bitmap(raw),
		totalBlocks: totalBlocks,
	}
}

// Bytes returns the raw bitmap contents, suitable for flushing to disk.
func (a *Allocator) Bytes() []byte {
	return a.bits.Data(false)
}

// MarkAllocated forces a block to the allocated state, used when formatting
// a fresh volume to reserve the fixed metadata regions.
func (a *Allocator) MarkAllocated(block int) {
	a.bits.Set(block, true)
}

// IsAllocated reports whether the given block is currently in use.
func (a *Allocator) IsAllocated(block int) bool {
	return a.bits.Get(block)
}

// Allocate scans for the first free block in ascending index order, marks it
// allocated, and returns its index. It fails with ErrNoSpaceOnDevice if every
// block is in use.
func (a *Allocator) Allocate() (int, error) {
	for i := 0; i < int(a.totalBlocks); i++ {
		if !a.bits.Get(i) {
			a.bits.Set(i, true)
			return i, nil
		}
	}
	return -1, fserrors.ErrNoSpaceOnDevice
}

// Release marks a block free. It is idempotent: releasing an already-free
// block is a no-op.
func (a *Allocator) Release(block int) {
	if block < 0 || block >= int(a.totalBlocks) {
		return
	}
	a.bits.Set(block, false)
}

// Reserve allocates count blocks in one atomic-looking step: if a request for
// the n-th block fails, every block reserved earlier in this call is rolled
// back before the error is returned, so the caller never observes a partially
// satisfied reservation. This closes the partial-allocation defect called out
// in the original implementation.
func (a *Allocator) Reserve(count int) ([]int, error) {
	if count <= 0 {
		return nil, nil
	}

	reserved := make([]int, 0, count)
	for len(reserved) < count {
		block, err := a.Allocate()
		if err != nil {
			for _, b := range reserved {
				a.Release(b)
			}
			return nil, fmt.Errorf("could not reserve %d blocks: %w", count, err)
		}
		reserved = append(reserved, block)
	}
	return reserved, nil
}

// TotalBlocks returns the number of blocks this allocator tracks.
func (a *Allocator) TotalBlocks() uint {
	return a.totalBlocks
}

// FreeCount returns the number of currently-unallocated blocks.
func (a *Allocator) FreeCount() uint {
	free := uint(0)
	for i := 0; i < int(a.totalBlocks); i++ {
		if !a.bits.Get(i) {
			free++
		}
	}
	return free
}
