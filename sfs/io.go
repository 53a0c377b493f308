package sfs

import (
	fserrors "github.com/zzzrg/os-filesystem/errors"
)

func (fs *FileSystem) loadIndirect(inode Inode) ([]int32, error) {
	pointersPerIndirect := fs.layout.PointersPerIndirectBlock()
	if inode.Indirect == -1 {
		scratch := make([]int32, pointersPerIndirect)
		for i := range scratch {
			scratch[i] = -1
		}
		return scratch, nil
	}

	raw := make([]byte, fs.layout.BlockSize)
	if err := fs.device.ReadBlocks(uint(inode.Indirect), 1, raw); err != nil {
		return nil, err
	}
	return unmarshalInt32Slice(raw, pointersPerIndirect)
}

func intMin(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func intMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Write appends or overwrites up to length bytes of buf at fd's current
// write cursor, growing the file and allocating new blocks (including an
// indirect block, if needed) as required. Writes past the volume's maximum
// representable file size are clamped rather than rejected outright,
// matching the original clamp-to-MAXFILESIZE behavior.
//
// All blocks a write will need -- new data blocks and, if this is the
// file's first indirect-range write, the indirect block itself -- are
// reserved from the allocator in a single atomic call up front. If the
// volume doesn't have enough free space to satisfy the whole request, the
// reservation is rolled back in full and the file is left exactly as it
// was; no partial allocation is left dangling the way the original
// implementation could leave one on an exhausted volume.
func (fs *FileSystem) Write(fd int, buf []byte, length int) (int, error) {
	if fd < 0 || fd >= len(fs.openFiles) || fs.openFiles[fd].IsFree() {
		return -1, fserrors.ErrInvalidFileDescriptor
	}
	if length < 0 || length > len(buf) {
		return -1, fserrors.ErrInvalidArgument
	}

	entry := fs.openFiles[fd]
	inode := fs.inodes[entry.InodeIndex]

	directCount := fs.layout.DirectPointers
	blockSize := int(fs.layout.BlockSize)
	maxSize := int(fs.layout.MaxFileSize())

	writeCursor := entry.WriteCursor
	if writeCursor >= maxSize {
		return 0, fserrors.ErrFileTooLarge
	}
	if writeCursor+length > maxSize {
		length = maxSize - writeCursor
	}
	if length <= 0 {
		return 0, nil
	}

	startBlock := writeCursor / blockSize
	endBlock := (writeCursor + length - 1) / blockSize
	requiredBlocks := endBlock + 1
	currentBlocks := int(ceilDiv(uint(inode.Size), fs.layout.BlockSize))

	newBlocksNeeded := 0
	if requiredBlocks > currentBlocks {
		newBlocksNeeded = requiredBlocks - currentBlocks
	}
	needIndirectBlock := requiredBlocks > int(directCount) && inode.Indirect == -1

	toReserve := newBlocksNeeded
	if needIndirectBlock {
		toReserve++
	}

	var reserved []int
	if toReserve > 0 {
		var err error
		reserved, err = fs.allocator.Reserve(toReserve)
		if err != nil {
			return -1, fserrors.ErrNoSpaceOnDevice.WrapError(err)
		}
	}

	indirectScratch, err := fs.loadIndirect(inode)
	if err != nil {
		return -1, err
	}

	reservedIdx := 0
	if needIndirectBlock {
		inode.Indirect = int32(reserved[reservedIdx])
		reservedIdx++
	}
	for i := currentBlocks; i < requiredBlocks; i++ {
		inode.SetBlockPointerForIndex(directCount, indirectScratch, uint(i), int32(reserved[reservedIdx]))
		reservedIdx++
	}

	bufOffset := 0
	for i := startBlock; i <= endBlock; i++ {
		blockNum := inode.BlockPointerForIndex(directCount, indirectScratch, uint(i))

		tmp := make([]byte, blockSize)
		if i < currentBlocks {
			if err := fs.device.ReadBlocks(uint(blockNum), 1, tmp); err != nil {
				return -1, err
			}
		}

		blockStartByte := i * blockSize
		blockEndByte := blockStartByte + blockSize
		writeStart := intMax(writeCursor, blockStartByte)
		writeEnd := intMin(writeCursor+length, blockEndByte)
		inBlockOffset := writeStart - blockStartByte
		count := writeEnd - writeStart

		copy(tmp[inBlockOffset:inBlockOffset+count], buf[bufOffset:bufOffset+count])
		if err := fs.device.WriteBlocks(uint(blockNum), 1, tmp); err != nil {
			return -1, err
		}
		bufOffset += count
	}

	if requiredBlocks > int(directCount) {
		indirectBuf, err := marshalInt32Slice(indirectScratch, fs.layout.BlockSize)
		if err != nil {
			return -1, err
		}
		if err := fs.device.WriteBlocks(uint(inode.Indirect), 1, indirectBuf); err != nil {
			return -1, err
		}
	}

	newSize := writeCursor + length
	if newSize > int(inode.Size) {
		inode.Size = int32(newSize)
	}
	fs.inodes[entry.InodeIndex] = inode

	entry.WriteCursor = writeCursor + length
	fs.openFiles[fd] = entry

	if toReserve > 0 {
		if err := fs.flushBitmap(); err != nil {
			return -1, err
		}
	}
	if err := fs.flushInodeTable(); err != nil {
		return -1, err
	}

	return length, nil
}

// Read copies up to length bytes from fd's current read cursor into buf,
// stopping early at end of file. Reading at or past end of file returns
// zero bytes without error.
func (fs *FileSystem) Read(fd int, buf []byte, length int) (int, error) {
	if fd < 0 || fd >= len(fs.openFiles) || fs.openFiles[fd].IsFree() {
		return -1, fserrors.ErrInvalidFileDescriptor
	}
	if length < 0 || length > len(buf) {
		return -1, fserrors.ErrInvalidArgument
	}

	entry := fs.openFiles[fd]
	inode := fs.inodes[entry.InodeIndex]

	readCursor := entry.ReadCursor
	if readCursor >= int(inode.Size) {
		return 0, nil
	}
	if readCursor+length > int(inode.Size) {
		length = int(inode.Size) - readCursor
	}
	if length <= 0 {
		return 0, nil
	}

	directCount := fs.layout.DirectPointers
	blockSize := int(fs.layout.BlockSize)

	startBlock := readCursor / blockSize
	endBlock := (readCursor + length - 1) / blockSize

	indirectScratch, err := fs.loadIndirect(inode)
	if err != nil {
		return -1, err
	}

	bufOffset := 0
	for i := startBlock; i <= endBlock; i++ {
		blockNum := inode.BlockPointerForIndex(directCount, indirectScratch, uint(i))

		tmp := make([]byte, blockSize)
		if err := fs.device.ReadBlocks(uint(blockNum), 1, tmp); err != nil {
			return -1, err
		}

		blockStartByte := i * blockSize
		blockEndByte := blockStartByte + blockSize
		readStart := intMax(readCursor, blockStartByte)
		readEnd := intMin(readCursor+length, blockEndByte)
		inBlockOffset := readStart - blockStartByte
		count := readEnd - readStart

		copy(buf[bufOffset:bufOffset+count], tmp[inBlockOffset:inBlockOffset+count])
		bufOffset += count
	}

	entry.ReadCursor = readCursor + length
	fs.openFiles[fd] = entry

	return length, nil
}
