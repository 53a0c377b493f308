package sfs

import (
	"fmt"

	"github.com/zzzrg/os-filesystem/internal/alloc"
	"github.com/zzzrg/os-filesystem/internal/blockdev"
	fserrors "github.com/zzzrg/os-filesystem/errors"
	"github.com/zzzrg/os-filesystem/profiles"
)

// maxOpenFiles bounds the ephemeral open-file descriptor table, independent
// of how many files the volume itself can hold.
const maxOpenFiles = 64

// FileSystem is a mounted volume: the device it's backed by, its geometry,
// and every in-memory table the core operations act on. Unlike the classic
// C API this core is modeled on, none of this is global state -- callers can
// mount as many independent FileSystem values as they like, which is also
// what makes the legacy package's singleton facade possible to build as a
// thin wrapper rather than a rewrite.
type FileSystem struct {
	device   *blockdev.Device
	layout   profiles.VolumeLayout
	geometry volumeGeometry

	inodes     []Inode
	directory  []DirectoryEntry
	openFiles  []OpenFileEntry
	allocator  *alloc.Allocator
	dirCursor  int // next slot GetNextFileName resumes scanning from
}

// Format lays out a brand-new volume on dev according to layout: a
// superblock written with real values, an empty inode table, an empty flat
// directory, and a free-space bitmap with every fixed metadata block
// premarked allocated.
func Format(dev *blockdev.Device, layout profiles.VolumeLayout) (*FileSystem, error) {
	geometry := computeGeometry(layout)
	if geometry.dataBlocks == 0 {
		return nil, fmt.Errorf(
			"sfs: volume layout %q leaves no room for data blocks", layout.Name,
		)
	}

	allocator := alloc.New(layout.TotalBlocks)
	reservedStart, reservedCount := geometry.reservedBlocks()
	for i := reservedStart; i < reservedStart+reservedCount; i++ {
		allocator.MarkAllocated(int(i))
	}
	for i := geometry.bitmapStart; i < geometry.bitmapStart+geometry.bitmapBlocks; i++ {
		allocator.MarkAllocated(int(i))
	}

	inodes := make([]Inode, layout.MaxFiles)
	for i := range inodes {
		inodes[i] = freeInode()
	}

	directory := make([]DirectoryEntry, layout.MaxFiles)
	for i := range directory {
		directory[i] = freeDirectoryEntry()
	}

	openFiles := make([]OpenFileEntry, maxOpenFiles)
	for i := range openFiles {
		openFiles[i] = freeOpenFileEntry()
	}

	fs := &FileSystem{
		device:    dev,
		layout:    layout,
		geometry:  geometry,
		inodes:    inodes,
		directory: directory,
		openFiles: openFiles,
		allocator: allocator,
	}

	if err := fs.flushSuperblock(); err != nil {
		return nil, err
	}
	if err := fs.flushInodeTable(); err != nil {
		return nil, err
	}
	if err := fs.flushDirectory(); err != nil {
		return nil, err
	}
	if err := fs.flushBitmap(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Mount reopens a previously formatted volume, validating the superblock's
// magic number before trusting anything else on disk, so an uninitialized
// or foreign image is refused rather than silently mounted.
func Mount(dev *blockdev.Device, layout profiles.VolumeLayout) (*FileSystem, error) {
	geometry := computeGeometry(layout)

	sbBuf := make([]byte, layout.BlockSize)
	if err := dev.ReadBlocks(0, 1, sbBuf); err != nil {
		return nil, fmt.Errorf("sfs: mount: %w", err)
	}
	sb, err := unmarshalSuperblock(sbBuf)
	if err != nil {
		return nil, fmt.Errorf("sfs: mount: %w", err)
	}
	if sb.Magic != Magic {
		return nil, fserrors.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("superblock magic is 0x%08X, expected 0x%08X", sb.Magic, Magic),
		)
	}

	inodeBuf := make([]byte, geometry.inodeTableBlocks*layout.BlockSize)
	if err := dev.ReadBlocks(geometry.inodeTableStart, geometry.inodeTableBlocks, inodeBuf); err != nil {
		return nil, fmt.Errorf("sfs: mount: reading inode table: %w", err)
	}
	inodes, err := unmarshalInodeTable(inodeBuf, layout.MaxFiles)
	if err != nil {
		return nil, fmt.Errorf("sfs: mount: %w", err)
	}

	dirBuf := make([]byte, geometry.dirBlocks*layout.BlockSize)
	if err := dev.ReadBlocks(geometry.dirStart, geometry.dirBlocks, dirBuf); err != nil {
		return nil, fmt.Errorf("sfs: mount: reading directory: %w", err)
	}
	directory, err := unmarshalDirectory(dirBuf, layout.MaxFiles)
	if err != nil {
		return nil, fmt.Errorf("sfs: mount: %w", err)
	}

	bitmapBuf := make([]byte, geometry.bitmapBlocks*layout.BlockSize)
	if err := dev.ReadBlocks(geometry.bitmapStart, geometry.bitmapBlocks, bitmapBuf); err != nil {
		return nil, fmt.Errorf("sfs: mount: reading bitmap: %w", err)
	}
	allocator := alloc.NewFromBytes(layout.TotalBlocks, bitmapBuf)

	openFiles := make([]OpenFileEntry, maxOpenFiles)
	for i := range openFiles {
		openFiles[i] = freeOpenFileEntry()
	}

	return &FileSystem{
		device:    dev,
		layout:    layout,
		geometry:  geometry,
		inodes:    inodes,
		directory: directory,
		openFiles: openFiles,
		allocator: allocator,
	}, nil
}

// FormatFile creates a fresh volume image file on disk and formats it.
func FormatFile(path string, layout profiles.VolumeLayout) (*FileSystem, error) {
	dev, err := blockdev.InitFresh(path, layout.BlockSize, layout.TotalBlocks)
	if err != nil {
		return nil, err
	}
	return Format(dev, layout)
}

// MountFile reopens an existing volume image file.
func MountFile(path string, layout profiles.VolumeLayout) (*FileSystem, error) {
	dev, err := blockdev.InitExisting(path, layout.BlockSize, layout.TotalBlocks)
	if err != nil {
		return nil, err
	}
	return Mount(dev, layout)
}

// Unmount releases the underlying device. It does not touch any in-memory
// table; every mutating operation has already flushed before returning, so
// there's nothing left to persist here.
func (fs *FileSystem) Unmount() error {
	return fs.device.Close()
}

func (fs *FileSystem) flushSuperblock() error {
	sb := Superblock{
		Magic:            Magic,
		BlockSize:        uint32(fs.layout.BlockSize),
		FSSize:           uint32(fs.layout.TotalBlocks),
		InodeTableBlocks: uint32(fs.geometry.inodeTableBlocks),
		RootDirInode:     0,
	}
	buf, err := marshalSuperblock(sb, fs.layout.BlockSize)
	if err != nil {
		return err
	}
	return fs.device.WriteBlocks(0, 1, buf)
}

func (fs *FileSystem) flushInodeTable() error {
	buf, err := marshalInodeTable(fs.inodes, fs.geometry.inodeTableBlocks, fs.layout.BlockSize)
	if err != nil {
		return err
	}
	return fs.device.WriteBlocks(fs.geometry.inodeTableStart, fs.geometry.inodeTableBlocks, buf)
}

func (fs *FileSystem) flushDirectory() error {
	buf, err := marshalDirectory(fs.directory, fs.geometry.dirBlocks, fs.layout.BlockSize)
	if err != nil {
		return err
	}
	return fs.device.WriteBlocks(fs.geometry.dirStart, fs.geometry.dirBlocks, buf)
}

func (fs *FileSystem) flushBitmap() error {
	raw := fs.allocator.Bytes()
	buf := make([]byte, fs.geometry.bitmapBlocks*fs.layout.BlockSize)
	copy(buf, raw)
	return fs.device.WriteBlocks(fs.geometry.bitmapStart, fs.geometry.bitmapBlocks, buf)
}
