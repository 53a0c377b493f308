package sfs

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/noxer/bytewriter"
)

// marshalSuperblock serializes a Superblock into exactly BlockSize bytes,
// zero-padded past superblockSize, the same fixed-width-struct-into-a-
// whole-block approach used for every other metadata record below.
func marshalSuperblock(sb Superblock, blockSize uint) ([]byte, error) {
	buf := make([]byte, blockSize)
	writer := bytewriter.New(buf)

	fields := []interface{}{
		sb.Magic, sb.BlockSize, sb.FSSize, sb.InodeTableBlocks, sb.RootDirInode,
	}
	for _, f := range fields {
		if err := binary.Write(writer, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("sfs: marshal superblock: %w", err)
		}
	}
	return buf, nil
}

func unmarshalSuperblock(raw []byte) (Superblock, error) {
	reader := bytes.NewReader(raw)
	var sb Superblock

	fields := []interface{}{
		&sb.Magic, &sb.BlockSize, &sb.FSSize, &sb.InodeTableBlocks, &sb.RootDirInode,
	}
	for _, f := range fields {
		if err := binary.Read(reader, binary.LittleEndian, f); err != nil {
			return Superblock{}, fmt.Errorf("sfs: unmarshal superblock: %w", err)
		}
	}
	return sb, nil
}

// marshalInode serializes one Inode into exactly inodeSize bytes.
func marshalInode(buf []byte, inode Inode) error {
	writer := bytewriter.New(buf)
	return binary.Write(writer, binary.LittleEndian, &inode)
}

func unmarshalInode(raw []byte) (Inode, error) {
	var inode Inode
	reader := bytes.NewReader(raw)
	if err := binary.Read(reader, binary.LittleEndian, &inode); err != nil {
		return Inode{}, fmt.Errorf("sfs: unmarshal inode: %w", err)
	}
	return inode, nil
}

// marshalInodeTable packs count inodes, one after another, into count*
// inodeSize bytes, then zero-pads to fill out totalBlocks*blockSize.
func marshalInodeTable(inodes []Inode, totalBlocks, blockSize uint) ([]byte, error) {
	buf := make([]byte, totalBlocks*blockSize)
	for i, inode := range inodes {
		offset := i * inodeSize
		if err := marshalInode(buf[offset:offset+inodeSize], inode); err != nil {
			return nil, fmt.Errorf("sfs: marshal inode table: inode %d: %w", i, err)
		}
	}
	return buf, nil
}

func unmarshalInodeTable(raw []byte, count uint) ([]Inode, error) {
	inodes := make([]Inode, count)
	for i := uint(0); i < count; i++ {
		offset := i * inodeSize
		inode, err := unmarshalInode(raw[offset : offset+inodeSize])
		if err != nil {
			return nil, fmt.Errorf("sfs: unmarshal inode table: inode %d: %w", i, err)
		}
		inodes[i] = inode
	}
	return inodes, nil
}

// marshalDirectoryEntry serializes one DirectoryEntry into exactly
// direntSize bytes.
func marshalDirectoryEntry(buf []byte, entry DirectoryEntry) error {
	writer := bytewriter.New(buf)
	if err := binary.Write(writer, binary.LittleEndian, entry.InodeIndex); err != nil {
		return err
	}
	_, err := writer.Write(entry.Name[:])
	return err
}

func unmarshalDirectoryEntry(raw []byte) (DirectoryEntry, error) {
	var entry DirectoryEntry
	reader := bytes.NewReader(raw)
	if err := binary.Read(reader, binary.LittleEndian, &entry.InodeIndex); err != nil {
		return DirectoryEntry{}, err
	}
	if _, err := reader.Read(entry.Name[:]); err != nil {
		return DirectoryEntry{}, err
	}
	return entry, nil
}

// marshalDirectory packs count directory entries, zero-padded to fill out
// totalBlocks*blockSize.
func marshalDirectory(entries []DirectoryEntry, totalBlocks, blockSize uint) ([]byte, error) {
	buf := make([]byte, totalBlocks*blockSize)
	for i, entry := range entries {
		offset := i * direntSize
		if err := marshalDirectoryEntry(buf[offset:offset+direntSize], entry); err != nil {
			return nil, fmt.Errorf("sfs: marshal directory: entry %d: %w", i, err)
		}
	}
	return buf, nil
}

func unmarshalDirectory(raw []byte, count uint) ([]DirectoryEntry, error) {
	entries := make([]DirectoryEntry, count)
	for i := uint(0); i < count; i++ {
		offset := i * direntSize
		entry, err := unmarshalDirectoryEntry(raw[offset : offset+direntSize])
		if err != nil {
			return nil, fmt.Errorf("sfs: unmarshal directory: entry %d: %w", i, err)
		}
		entries[i] = entry
	}
	return entries, nil
}

// marshalInt32Slice encodes a slice of int32 block pointers into a raw byte
// slice exactly blockSize bytes long (zero-padded past len(pointers)*4), the
// shape of one indirect block.
func marshalInt32Slice(pointers []int32, blockSize uint) ([]byte, error) {
	buf := make([]byte, blockSize)
	writer := bytewriter.New(buf)
	for i, p := range pointers {
		if err := binary.Write(writer, binary.LittleEndian, p); err != nil {
			return nil, fmt.Errorf("sfs: marshal indirect block: entry %d: %w", i, err)
		}
	}
	return buf, nil
}

func unmarshalInt32Slice(raw []byte, count uint) ([]int32, error) {
	pointers := make([]int32, count)
	reader := bytes.NewReader(raw)
	for i := uint(0); i < count; i++ {
		if err := binary.Read(reader, binary.LittleEndian, &pointers[i]); err != nil {
			return nil, fmt.Errorf("sfs: unmarshal indirect block: entry %d: %w", i, err)
		}
	}
	return pointers, nil
}
