package sfs

import (
	fserrors "github.com/zzzrg/os-filesystem/errors"
)

// Remove deletes a file by name: its inode is freed, every data block and
// indirect block it owned is released back to the allocator, and its
// directory slot is freed. The original implementation updated its
// in-memory tables but never flushed the directory back to disk, so a
// "removed" file could reappear after an unmount/remount cycle; this
// version flushes the directory, inode table, and bitmap together so the
// removal is fully persisted.
func (fs *FileSystem) Remove(name string) error {
	if len(name) > MaxNameLength {
		return fserrors.ErrNameTooLong
	}

	dirIndex := -1
	for i := range fs.directory {
		if !fs.directory[i].IsFree() && fs.directory[i].NameString() == name {
			dirIndex = i
			break
		}
	}
	if dirIndex == -1 {
		return fserrors.ErrNotFound
	}

	inodeIndex := fs.directory[dirIndex].InodeIndex
	inode := fs.inodes[inodeIndex]

	directCount := fs.layout.DirectPointers
	currentBlocks := int(ceilDiv(uint(inode.Size), fs.layout.BlockSize))
	zeros := make([]byte, fs.layout.BlockSize)

	if currentBlocks > int(directCount) {
		indirectScratch, err := fs.loadIndirect(inode)
		if err != nil {
			return err
		}
		for i := int(directCount); i < currentBlocks; i++ {
			block := indirectScratch[i-int(directCount)]
			if block != -1 {
				if err := fs.device.WriteBlocks(uint(block), 1, zeros); err != nil {
					return err
				}
				fs.allocator.Release(int(block))
			}
		}
	}
	for i := 0; i < currentBlocks && i < int(directCount); i++ {
		if inode.Direct[i] != -1 {
			if err := fs.device.WriteBlocks(uint(inode.Direct[i]), 1, zeros); err != nil {
				return err
			}
			fs.allocator.Release(int(inode.Direct[i]))
		}
	}
	if inode.Indirect != -1 {
		if err := fs.device.WriteBlocks(uint(inode.Indirect), 1, zeros); err != nil {
			return err
		}
		fs.allocator.Release(int(inode.Indirect))
	}

	fs.inodes[inodeIndex] = freeInode()
	fs.directory[dirIndex] = freeDirectoryEntry()

	if err := fs.flushDirectory(); err != nil {
		return err
	}
	if err := fs.flushInodeTable(); err != nil {
		return err
	}
	if err := fs.flushBitmap(); err != nil {
		return err
	}
	return nil
}
