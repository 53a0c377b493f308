// Package testingutil provides small helpers shared by this module's test
// files: an in-memory backing stream for the block device adapter, so tests
// never touch the real filesystem.
package testingutil

import (
	"github.com/xaionaro-go/bytesextra"

	"github.com/zzzrg/os-filesystem/internal/blockdev"
)

// NewMemoryDevice creates a blockdev.Device backed entirely by memory, sized
// for blockSize*totalBlocks bytes, all zeroed -- equivalent to a freshly
// formatted volume's raw storage before Format runs.
func NewMemoryDevice(blockSize, totalBlocks uint) *blockdev.Device {
	backing := make([]byte, blockSize*totalBlocks)
	stream := bytesextra.NewReadWriteSeeker(backing)
	return blockdev.WrapStream(stream, blockSize, totalBlocks)
}
