// Package blockdev implements a block device adapter: a thin, fixed-
// block-size wrapper around a backing stream, offering whole-block reads
// and writes plus fresh/existing initialization.
//
// It deliberately knows nothing about superblocks, inodes, or directories --
// those belong to the sfs package. It only ever deals in block numbers and
// byte offsets.
package blockdev

import (
	"fmt"
	"io"
	"os"
)

// DefaultImageName is the canonical on-disk file name for a volume, carried
// over unchanged from the original implementation so existing fixtures and
// harnesses keep working.
const DefaultImageName = "CCdisk.disk"

// Device is a block-addressable view over a backing stream of fixed total
// size. All reads and writes are in whole blocks.
type Device struct {
	stream      io.ReadWriteSeeker
	closer      io.Closer
	blockSize   uint
	totalBlocks uint
}

// InitFresh creates (or truncates) the named file, zero-fills it to
// blockSize*totalBlocks bytes, and returns a Device over it.
func InitFresh(name string, blockSize, totalBlocks uint) (*Device, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("blockdev: can't create %q: %w", name, err)
	}

	zeroed := make([]byte, blockSize*totalBlocks)
	if _, err := f.Write(zeroed); err != nil {
		f.Close()
		return nil, fmt.Errorf("blockdev: can't zero-fill %q: %w", name, err)
	}

	return &Device{
		stream:      f,
		closer:      f,
		blockSize:   blockSize,
		totalBlocks: totalBlocks,
	}, nil
}

// InitExisting reopens an already-formatted volume file.
func InitExisting(name string, blockSize, totalBlocks uint) (*Device, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("blockdev: can't open %q: %w", name, err)
	}

	return &Device{
		stream:      f,
		closer:      f,
		blockSize:   blockSize,
		totalBlocks: totalBlocks,
	}, nil
}

// WrapStream builds a Device over an already-open stream, e.g. an in-memory
// buffer used by tests. The stream is assumed to already be
// blockSize*totalBlocks bytes long.
func WrapStream(stream io.ReadWriteSeeker, blockSize, totalBlocks uint) *Device {
	return &Device{stream: stream, blockSize: blockSize, totalBlocks: totalBlocks}
}

// BlockSize returns the fixed size of one block, in bytes.
func (d *Device) BlockSize() uint {
	return d.blockSize
}

// TotalBlocks returns the total number of blocks on the volume.
func (d *Device) TotalBlocks() uint {
	return d.totalBlocks
}

func (d *Device) checkBounds(start, count uint) error {
	if start >= d.totalBlocks {
		return fmt.Errorf(
			"blockdev: block %d not in range [0, %d)", start, d.totalBlocks,
		)
	}
	if start+count > d.totalBlocks {
		return fmt.Errorf(
			"blockdev: range [%d, %d) extends past end of volume (%d blocks)",
			start, start+count, d.totalBlocks,
		)
	}
	return nil
}

func (d *Device) seekToBlock(start uint) error {
	_, err := d.stream.Seek(int64(start)*int64(d.blockSize), io.SeekStart)
	return err
}

// ReadBlocks fills buf, which must be exactly count*BlockSize() bytes long,
// with the contents of count whole blocks beginning at start.
func (d *Device) ReadBlocks(start, count uint, buf []byte) error {
	if uint(len(buf)) != count*d.blockSize {
		return fmt.Errorf(
			"blockdev: buffer is %d bytes, expected %d", len(buf), count*d.blockSize,
		)
	}
	if err := d.checkBounds(start, count); err != nil {
		return err
	}
	if err := d.seekToBlock(start); err != nil {
		return err
	}

	n, err := io.ReadFull(d.stream, buf)
	if err != nil {
		return fmt.Errorf("blockdev: short read (%d/%d bytes): %w", n, len(buf), err)
	}
	return nil
}

// WriteBlocks writes buf, which must be exactly count*BlockSize() bytes long,
// to count whole blocks beginning at start.
func (d *Device) WriteBlocks(start, count uint, buf []byte) error {
	if uint(len(buf)) != count*d.blockSize {
		return fmt.Errorf(
			"blockdev: buffer is %d bytes, expected %d", len(buf), count*d.blockSize,
		)
	}
	if err := d.checkBounds(start, count); err != nil {
		return err
	}
	if err := d.seekToBlock(start); err != nil {
		return err
	}

	n, err := d.stream.Write(buf)
	if err != nil {
		return fmt.Errorf("blockdev: short write (%d/%d bytes): %w", n, len(buf), err)
	}
	return nil
}

// Close releases the underlying stream, if it's closeable. Devices wrapping
// an in-memory stream (as tests do) have nothing to close.
func (d *Device) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}
