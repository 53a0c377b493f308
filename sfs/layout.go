package sfs

import "github.com/zzzrg/os-filesystem/profiles"

// volumeGeometry is the fixed region layout derived from a VolumeLayout: the
// block ranges the superblock, inode table, root directory, and free-space
// bitmap each occupy. Block 0 is always the superblock; the inode table and
// directory follow it back to back, and the bitmap sits near the tail.
type volumeGeometry struct {
	layout profiles.VolumeLayout

	inodeTableStart  uint
	inodeTableBlocks uint

	dirStart  uint
	dirBlocks uint

	dataStart  uint
	dataBlocks uint

	bitmapStart  uint
	bitmapBlocks uint
}

// computeGeometry lays out the fixed regions of a volume for any
// VolumeLayout: one superblock, a packed inode table sized for MaxFiles
// inodes, a packed directory sized for MaxFiles entries, then data blocks,
// with a fixed bitmapRegionBlocks-block bitmap reserved at the tail.
func computeGeometry(layout profiles.VolumeLayout) volumeGeometry {
	inodeTableBlocks := ceilDiv(layout.MaxFiles*inodeSize, layout.BlockSize)
	dirBlocks := ceilDiv(layout.MaxFiles*direntSize, layout.BlockSize)

	inodeTableStart := uint(1)
	dirStart := inodeTableStart + inodeTableBlocks
	dataStart := dirStart + dirBlocks

	// The bitmap region stops one block short of the volume's last block,
	// rather than extending all the way to the end. That last block is not
	// premarked allocated, so the allocator hands it out as a data block
	// once every lower free block is in use.
	bitmapBlocks := uint(bitmapRegionBlocks)
	bitmapStart := layout.TotalBlocks - bitmapBlocks - 1

	dataBlocks := uint(0)
	if bitmapStart > dataStart {
		dataBlocks = bitmapStart - dataStart
	}

	return volumeGeometry{
		layout:           layout,
		inodeTableStart:  inodeTableStart,
		inodeTableBlocks: inodeTableBlocks,
		dirStart:         dirStart,
		dirBlocks:        dirBlocks,
		dataStart:        dataStart,
		dataBlocks:       dataBlocks,
		bitmapStart:      bitmapStart,
		bitmapBlocks:     bitmapBlocks,
	}
}

// reservedBlocks returns the fixed metadata block range [0, dataStart), the
// blocks the allocator must never hand out as data blocks.
func (g volumeGeometry) reservedBlocks() (start, count uint) {
	return 0, g.dataStart
}
