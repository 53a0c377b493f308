package sfs

import (
	fserrors "github.com/zzzrg/os-filesystem/errors"
)

// Open returns a file descriptor for name, creating the file if it doesn't
// already exist. Opening a file that's already open is idempotent: it
// returns the same descriptor already held for that inode rather than
// minting a second one. Reopening a file that was previously closed (or
// creating it fresh) gets a new descriptor whose write cursor defaults to
// end-of-file for an existing file, or 0 for a brand-new one.
//
// The inode scan and the directory scan each use their own loop variable,
// so a multi-file volume can never end up with a directory entry created at
// the inode's table index instead of its own first free slot.
func (fs *FileSystem) Open(name string) (int, error) {
	if len(name) > MaxNameLength {
		return -1, fserrors.ErrNameTooLong
	}

	dirIndex := -1
	for i := range fs.directory {
		if !fs.directory[i].IsFree() && fs.directory[i].NameString() == name {
			dirIndex = i
			break
		}
	}

	alreadyExisted := dirIndex != -1

	if alreadyExisted {
		existingInode := int(fs.directory[dirIndex].InodeIndex)
		for i := range fs.openFiles {
			if !fs.openFiles[i].IsFree() && fs.openFiles[i].InodeIndex == existingInode {
				return i, nil
			}
		}
	}

	if dirIndex == -1 {
		inodeIndex := -1
		for i := range fs.inodes {
			if fs.inodes[i].IsFree() {
				inodeIndex = i
				break
			}
		}
		if inodeIndex == -1 {
			return -1, fserrors.ErrNoSpaceOnDevice.WithMessage("inode table is full")
		}

		freeDirSlot := -1
		for j := range fs.directory {
			if fs.directory[j].IsFree() {
				freeDirSlot = j
				break
			}
		}
		if freeDirSlot == -1 {
			return -1, fserrors.ErrNoSpaceOnDevice.WithMessage("directory is full")
		}

		inode := freeInode()
		inode.LinkCount = 1
		fs.inodes[inodeIndex] = inode

		entry := DirectoryEntry{InodeIndex: int32(inodeIndex)}
		setName(&entry.Name, name)
		fs.directory[freeDirSlot] = entry

		if err := fs.flushInodeTable(); err != nil {
			return -1, err
		}
		if err := fs.flushDirectory(); err != nil {
			return -1, err
		}

		dirIndex = freeDirSlot
	}

	fdIndex := -1
	for i := range fs.openFiles {
		if fs.openFiles[i].IsFree() {
			fdIndex = i
			break
		}
	}
	if fdIndex == -1 {
		return -1, fserrors.ErrTooManyOpenFiles
	}

	fs.openFiles[fdIndex] = OpenFileEntry{
		InodeIndex:  int(fs.directory[dirIndex].InodeIndex),
		ReadCursor:  0,
		WriteCursor: int(fs.inodes[fs.directory[dirIndex].InodeIndex].Size),
	}
	return fdIndex, nil
}

// Close releases a file descriptor. Closing an already-closed or invalid
// descriptor is reported as an error rather than silently ignored.
func (fs *FileSystem) Close(fd int) error {
	if fd < 0 || fd >= len(fs.openFiles) || fs.openFiles[fd].IsFree() {
		return fserrors.ErrInvalidFileDescriptor
	}
	fs.openFiles[fd] = freeOpenFileEntry()
	return nil
}

// Rseek repositions fd's read cursor to an absolute byte offset. Offsets
// outside [0, size] are rejected.
func (fs *FileSystem) Rseek(fd int, offset int) error {
	if fd < 0 || fd >= len(fs.openFiles) || fs.openFiles[fd].IsFree() {
		return fserrors.ErrInvalidFileDescriptor
	}
	entry := fs.openFiles[fd]
	size := int(fs.inodes[entry.InodeIndex].Size)
	if offset < 0 || offset > size {
		return fserrors.ErrArgumentOutOfRange
	}
	fs.openFiles[fd].ReadCursor = offset
	return nil
}

// Wseek repositions fd's write cursor to an absolute byte offset. Offsets
// outside [0, size] are rejected.
func (fs *FileSystem) Wseek(fd int, offset int) error {
	if fd < 0 || fd >= len(fs.openFiles) || fs.openFiles[fd].IsFree() {
		return fserrors.ErrInvalidFileDescriptor
	}
	entry := fs.openFiles[fd]
	size := int(fs.inodes[entry.InodeIndex].Size)
	if offset < 0 || offset > size {
		return fserrors.ErrArgumentOutOfRange
	}
	fs.openFiles[fd].WriteCursor = offset
	return nil
}
