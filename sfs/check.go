package sfs

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Check walks the mounted volume's in-memory tables and reports every
// violation of the core invariants it finds, rather than stopping at the
// first one: duplicate filenames, inodes with no referencing directory
// entry (and vice versa), block pointers claimed by more than one inode,
// out-of-range cursors on open files, and allocation bitmap bits that don't
// match what the inode table actually references. This is a diagnostic the
// original C implementation never offered; nothing here is on the hot path
// of open/read/write/remove.
func (fs *FileSystem) Check() error {
	var result *multierror.Error

	directCount := fs.layout.DirectPointers
	seenNames := make(map[string]int)
	referencedByDir := make(map[int32]bool)

	for i := range fs.directory {
		entry := fs.directory[i]
		if entry.IsFree() {
			continue
		}
		name := entry.NameString()
		if prev, dup := seenNames[name]; dup {
			result = multierror.Append(result, fmt.Errorf(
				"directory entries %d and %d share the name %q", prev, i, name,
			))
		}
		seenNames[name] = i

		if int(entry.InodeIndex) < 0 || int(entry.InodeIndex) >= len(fs.inodes) {
			result = multierror.Append(result, fmt.Errorf(
				"directory entry %d (%q) references out-of-range inode %d",
				i, name, entry.InodeIndex,
			))
			continue
		}
		referencedByDir[entry.InodeIndex] = true

		inode := fs.inodes[entry.InodeIndex]
		if inode.IsFree() {
			result = multierror.Append(result, fmt.Errorf(
				"directory entry %d (%q) references free inode %d", i, name, entry.InodeIndex,
			))
		}
	}

	blockOwner := make(map[int32]string)
	for idx := range fs.inodes {
		inode := fs.inodes[idx]
		if inode.IsFree() {
			continue
		}
		if !referencedByDir[int32(idx)] {
			result = multierror.Append(result, fmt.Errorf(
				"inode %d is in use but no directory entry references it", idx,
			))
		}

		expectedBlocks := ceilDiv(uint(inode.Size), fs.layout.BlockSize)
		for i := uint(0); i < uint(MaxDirectPointers); i++ {
			ptr := inode.Direct[i]
			if i < directCount && i < expectedBlocks {
				if ptr == -1 {
					result = multierror.Append(result, fmt.Errorf(
						"inode %d is missing direct pointer %d for its size", idx, i,
					))
					continue
				}
			} else if ptr != -1 {
				result = multierror.Append(result, fmt.Errorf(
					"inode %d has a stray direct pointer at slot %d", idx, i,
				))
				continue
			}
			if ptr == -1 {
				continue
			}
			if owner, taken := blockOwner[ptr]; taken {
				result = multierror.Append(result, fmt.Errorf(
					"block %d is referenced by both inode %d and %s", ptr, idx, owner,
				))
			}
			blockOwner[ptr] = fmt.Sprintf("inode %d (direct)", idx)
		}

		if expectedBlocks > directCount && inode.Indirect == -1 {
			result = multierror.Append(result, fmt.Errorf(
				"inode %d needs an indirect block for its size but has none", idx,
			))
		}
		if inode.Indirect != -1 {
			if owner, taken := blockOwner[inode.Indirect]; taken {
				result = multierror.Append(result, fmt.Errorf(
					"block %d is referenced by both inode %d and %s", inode.Indirect, idx, owner,
				))
			}
			blockOwner[inode.Indirect] = fmt.Sprintf("inode %d (indirect)", idx)

			scratch, err := fs.loadIndirect(inode)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf(
					"inode %d: could not read indirect block: %w", idx, err,
				))
			} else {
				for j, ptr := range scratch {
					logical := directCount + uint(j)
					if logical < expectedBlocks {
						if ptr == -1 {
							result = multierror.Append(result, fmt.Errorf(
								"inode %d is missing indirect pointer %d for its size", idx, j,
							))
							continue
						}
					} else if ptr != -1 {
						result = multierror.Append(result, fmt.Errorf(
							"inode %d has a stray indirect pointer at slot %d", idx, j,
						))
						continue
					}
					if ptr == -1 {
						continue
					}
					if owner, taken := blockOwner[ptr]; taken {
						result = multierror.Append(result, fmt.Errorf(
							"block %d is referenced by both inode %d and %s", ptr, idx, owner,
						))
					}
					blockOwner[ptr] = fmt.Sprintf("inode %d (indirect data)", idx)
				}
			}
		}
	}

	reservedStart, reservedCount := fs.geometry.reservedBlocks()
	for block := reservedStart; block < reservedStart+reservedCount; block++ {
		if !fs.allocator.IsAllocated(int(block)) {
			result = multierror.Append(result, fmt.Errorf(
				"metadata block %d is not marked allocated in the bitmap", block,
			))
		}
	}
	for block, owner := range blockOwner {
		if !fs.allocator.IsAllocated(int(block)) {
			result = multierror.Append(result, fmt.Errorf(
				"block %d is owned by %s but not marked allocated in the bitmap", block, owner,
			))
		}
	}
	for block := uint(0); block < fs.layout.TotalBlocks; block++ {
		if !fs.allocator.IsAllocated(int(block)) {
			continue
		}
		isMetadata := block >= reservedStart && block < reservedStart+reservedCount
		_, isData := blockOwner[int32(block)]
		isBitmap := block >= fs.geometry.bitmapStart && block < fs.geometry.bitmapStart+fs.geometry.bitmapBlocks
		if !isMetadata && !isData && !isBitmap {
			result = multierror.Append(result, fmt.Errorf(
				"block %d is marked allocated but nothing references it", block,
			))
		}
	}

	for i := range fs.openFiles {
		entry := fs.openFiles[i]
		if entry.IsFree() {
			continue
		}
		if entry.InodeIndex < 0 || entry.InodeIndex >= len(fs.inodes) {
			result = multierror.Append(result, fmt.Errorf(
				"open file %d references out-of-range inode %d", i, entry.InodeIndex,
			))
			continue
		}
		inode := fs.inodes[entry.InodeIndex]
		if inode.IsFree() {
			result = multierror.Append(result, fmt.Errorf(
				"open file %d references free inode %d", i, entry.InodeIndex,
			))
			continue
		}
		if entry.ReadCursor < 0 || entry.ReadCursor > int(inode.Size) {
			result = multierror.Append(result, fmt.Errorf(
				"open file %d has read cursor %d out of range [0, %d]", i, entry.ReadCursor, inode.Size,
			))
		}
		if entry.WriteCursor < 0 || entry.WriteCursor > int(inode.Size) {
			result = multierror.Append(result, fmt.Errorf(
				"open file %d has write cursor %d out of range [0, %d]", i, entry.WriteCursor, inode.Size,
			))
		}
	}

	return result.ErrorOrNil()
}
