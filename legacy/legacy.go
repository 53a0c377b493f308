// Package legacy reproduces the classic single-global-volume API this file
// system core descends from: a package-level singleton with POSIX-flavored
// functions returning -1/0 sentinel values instead of (value, error) pairs.
// Everything here is a thin wrapper over a *sfs.FileSystem; all the real
// logic lives in the sfs package.
package legacy

import (
	"sync"

	"github.com/zzzrg/os-filesystem/internal/blockdev"
	"github.com/zzzrg/os-filesystem/profiles"
	"github.com/zzzrg/os-filesystem/sfs"
)

var (
	mu      sync.Mutex
	current *sfs.FileSystem
)

// Mksfs formats a fresh volume (fresh=true) or mounts the existing one
// (fresh=false) at the canonical image path, using the classic volume
// layout. It returns 0 on success, -1 on failure.
func Mksfs(fresh bool) int {
	mu.Lock()
	defer mu.Unlock()

	var fs *sfs.FileSystem
	var err error
	if fresh {
		fs, err = sfs.FormatFile(blockdev.DefaultImageName, profiles.Classic)
	} else {
		fs, err = sfs.MountFile(blockdev.DefaultImageName, profiles.Classic)
	}
	if err != nil {
		return -1
	}
	current = fs
	return 0
}

// Open returns a file descriptor for name, creating it if needed. -1 on
// oversize name or a full inode/directory/open-file table.
func Open(name string) int {
	mu.Lock()
	defer mu.Unlock()

	fd, err := current.Open(name)
	if err != nil {
		return -1
	}
	return fd
}

// Close releases a file descriptor. 0 on success, -1 if fd isn't open.
func Close(fd int) int {
	mu.Lock()
	defer mu.Unlock()

	if err := current.Close(fd); err != nil {
		return -1
	}
	return 0
}

// Rseek repositions fd's read cursor. 0 on success, -1 if fd is closed or
// off is out of [0, size].
func Rseek(fd, off int) int {
	mu.Lock()
	defer mu.Unlock()

	if err := current.Rseek(fd, off); err != nil {
		return -1
	}
	return 0
}

// Wseek repositions fd's write cursor. 0 on success, -1 if fd is closed or
// off is out of [0, size].
func Wseek(fd, off int) int {
	mu.Lock()
	defer mu.Unlock()

	if err := current.Wseek(fd, off); err != nil {
		return -1
	}
	return 0
}

// Write writes up to length bytes from buf at fd's write cursor, returning
// the number of bytes actually written, or 0 on a closed fd or allocation
// failure.
func Write(fd int, buf []byte, length int) int {
	mu.Lock()
	defer mu.Unlock()

	n, err := current.Write(fd, buf, length)
	if err != nil {
		return 0
	}
	return n
}

// Read reads up to length bytes from fd's read cursor into buf, returning
// the number of bytes actually read, or 0 on a closed fd, an empty file, or
// a negative length.
func Read(fd int, buf []byte, length int) int {
	mu.Lock()
	defer mu.Unlock()

	if length < 0 {
		return 0
	}
	n, err := current.Read(fd, buf, length)
	if err != nil {
		return 0
	}
	return n
}

// Remove deletes a file by name. 0 on success, -1 if it doesn't exist.
func Remove(name string) int {
	mu.Lock()
	defer mu.Unlock()

	if err := current.Remove(name); err != nil {
		return -1
	}
	return 0
}

// GetNextFileName writes the next in-use filename into out and returns its
// directory index plus one (always >= 1, so it never collides with the 0
// end-of-cycle value). It returns 0, leaving out untouched, once a full
// sweep completes without finding a new entry.
func GetNextFileName(out *string) int {
	mu.Lock()
	defer mu.Unlock()

	name, index, ok := current.GetNextFileName()
	if !ok {
		return 0
	}
	*out = name
	return index + 1
}

// GetFileSize returns a file's size in bytes, or -1 if it doesn't exist.
func GetFileSize(name string) int64 {
	mu.Lock()
	defer mu.Unlock()

	size, err := current.GetFileSize(name)
	if err != nil {
		return -1
	}
	return size
}
