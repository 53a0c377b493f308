package sfs

// GetNextFileName returns the name of the next in-use directory entry at or
// after the cursor left by the previous call, advancing the cursor one past
// it. Once the scan reaches the end of the table without finding another
// in-use entry, it resets the cursor to the start and reports false --
// exactly one "cycle end" signal per lap, not a silent wrap straight into
// the next entry.
//
// The original implementation checked a directory entry's filename pointer
// for nil to decide whether a slot was free, but the in-memory directory
// array is never populated with nil filenames (free slots hold a zeroed
// buffer, not a null entry), so that check never actually filtered
// anything and the original call returned garbage names for free slots.
// This version tests InodeIndex, the field Remove and Open actually use to
// mark a slot free.
func (fs *FileSystem) GetNextFileName() (name string, index int, ok bool) {
	total := len(fs.directory)
	if total == 0 {
		return "", 0, false
	}

	for idx := fs.dirCursor; idx < total; idx++ {
		if !fs.directory[idx].IsFree() {
			fs.dirCursor = idx + 1
			return fs.directory[idx].NameString(), idx, true
		}
	}

	fs.dirCursor = 0
	return "", 0, false
}

// ResetDirectoryCursor rewinds GetNextFileName to the start of the
// directory, the way remounting a volume does.
func (fs *FileSystem) ResetDirectoryCursor() {
	fs.dirCursor = 0
}
