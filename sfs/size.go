package sfs

import (
	fserrors "github.com/zzzrg/os-filesystem/errors"
)

// GetFileSize returns the current size, in bytes, of the named file.
func (fs *FileSystem) GetFileSize(name string) (int64, error) {
	if len(name) > MaxNameLength {
		return -1, fserrors.ErrNameTooLong
	}

	for i := range fs.directory {
		if !fs.directory[i].IsFree() && fs.directory[i].NameString() == name {
			inodeIndex := fs.directory[i].InodeIndex
			return int64(fs.inodes[inodeIndex].Size), nil
		}
	}
	return -1, fserrors.ErrNotFound
}
