package sfs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzzrg/os-filesystem/internal/testingutil"
	"github.com/zzzrg/os-filesystem/profiles"
	"github.com/zzzrg/os-filesystem/sfs"
)

func tinyLayout(t *testing.T) profiles.VolumeLayout {
	t.Helper()
	layout, err := profiles.Get("tiny")
	require.NoError(t, err)
	return layout
}

func formatTiny(t *testing.T) *sfs.FileSystem {
	t.Helper()
	layout := tinyLayout(t)
	dev := testingutil.NewMemoryDevice(layout.BlockSize, layout.TotalBlocks)
	fs, err := sfs.Format(dev, layout)
	require.NoError(t, err)
	return fs
}

func TestFormatThenMountRoundTrips(t *testing.T) {
	layout := tinyLayout(t)
	dev := testingutil.NewMemoryDevice(layout.BlockSize, layout.TotalBlocks)

	fs, err := sfs.Format(dev, layout)
	require.NoError(t, err)

	fd, err := fs.Open("hello.txt")
	require.NoError(t, err)
	_, err = fs.Write(fd, []byte("hello world"), len("hello world"))
	require.NoError(t, err)
	require.NoError(t, fs.Close(fd))

	remounted, err := sfs.Mount(dev, layout)
	require.NoError(t, err)

	size, err := remounted.GetFileSize("hello.txt")
	require.NoError(t, err)
	assert.EqualValues(t, len("hello world"), size)

	fd2, err := remounted.Open("hello.txt")
	require.NoError(t, err)
	buf := make([]byte, 32)
	n, err := remounted.Read(fd2, buf, len(buf))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(buf[:n]))
}

func TestMountRejectsUnformattedVolume(t *testing.T) {
	layout := tinyLayout(t)
	dev := testingutil.NewMemoryDevice(layout.BlockSize, layout.TotalBlocks)

	_, err := sfs.Mount(dev, layout)
	assert.Error(t, err, "mounting a zeroed image must fail the magic number check")
}

func TestOpenCreatesThenReopensSameFile(t *testing.T) {
	fs := formatTiny(t)

	fd1, err := fs.Open("a.txt")
	require.NoError(t, err)
	_, err = fs.Write(fd1, []byte("first"), 5)
	require.NoError(t, err)
	require.NoError(t, fs.Close(fd1))

	_, err = fs.Open("a.txt")
	require.NoError(t, err)

	size, err := fs.GetFileSize("a.txt")
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)
}

func TestOpenIsIdempotentWhileStillOpen(t *testing.T) {
	fs := formatTiny(t)

	fd1, err := fs.Open("a.txt")
	require.NoError(t, err)
	_, err = fs.Write(fd1, []byte("first"), 5)
	require.NoError(t, err)

	fd2, err := fs.Open("a.txt")
	require.NoError(t, err)
	assert.Equal(t, fd1, fd2, "opening an already-open file returns the same descriptor")
}

func TestReopenAfterCloseStartsAtEndOfFile(t *testing.T) {
	fs := formatTiny(t)

	fd1, err := fs.Open("append.txt")
	require.NoError(t, err)
	_, err = fs.Write(fd1, []byte("first"), 5)
	require.NoError(t, err)
	require.NoError(t, fs.Close(fd1))

	fd2, err := fs.Open("append.txt")
	require.NoError(t, err)
	n, err := fs.Write(fd2, []byte("!!"), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, fs.Rseek(fd2, 0))
	out := make([]byte, 7)
	n, err = fs.Read(fd2, out, len(out))
	require.NoError(t, err)
	assert.Equal(t, "first!!", string(out[:n]), "reopen defaults the write cursor to end of file")
}

func TestOpenRejectsOversizeName(t *testing.T) {
	fs := formatTiny(t)
	_, err := fs.Open("this-name-is-definitely-too-long-for-the-table")
	assert.Error(t, err)
}

func TestWriteReadIdentityAcrossMultipleBlocks(t *testing.T) {
	fs := formatTiny(t)
	layout := tinyLayout(t)

	// Two full blocks plus 17 bytes (three blocks), all within the direct range.
	payload := make([]byte, int(layout.BlockSize)*2+17)
	for i := range payload {
		payload[i] = byte(i % 251)
	}

	fd, err := fs.Open("multi.bin")
	require.NoError(t, err)
	n, err := fs.Write(fd, payload, len(payload))
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	require.NoError(t, fs.Rseek(fd, 0))

	out := make([]byte, len(payload))
	n, err = fs.Read(fd, out, len(out))
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, out)
}

func TestWriteSpansIndirectBlock(t *testing.T) {
	fs := formatTiny(t)
	layout := tinyLayout(t)

	// direct_pointers=4, so anything needing a 5th block must use the
	// indirect block.
	blockSize := int(layout.BlockSize)
	payload := make([]byte, blockSize*6)
	for i := range payload {
		payload[i] = byte((i * 7) % 256)
	}

	fd, err := fs.Open("big.bin")
	require.NoError(t, err)
	n, err := fs.Write(fd, payload, len(payload))
	require.NoError(t, err)
	require.Equal(t, len(payload), n)

	require.NoError(t, fs.Rseek(fd, 0))
	out := make([]byte, len(payload))
	n, err = fs.Read(fd, out, len(out))
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, out)
}

func TestWriteClampsAtMaxFileSize(t *testing.T) {
	fs := formatTiny(t)
	layout := tinyLayout(t)
	maxSize := int(layout.MaxFileSize())

	fd, err := fs.Open("huge.bin")
	require.NoError(t, err)

	payload := make([]byte, maxSize+1000)
	n, err := fs.Write(fd, payload, len(payload))
	require.NoError(t, err)
	assert.Equal(t, maxSize, n, "write must clamp to the volume's max file size")
}

func TestPartialOverwritePreservesSurroundingBytes(t *testing.T) {
	fs := formatTiny(t)

	fd, err := fs.Open("partial.bin")
	require.NoError(t, err)
	original := []byte("0123456789ABCDEF")
	_, err = fs.Write(fd, original, len(original))
	require.NoError(t, err)

	require.NoError(t, fs.Wseek(fd, 4))
	_, err = fs.Write(fd, []byte("XXXX"), 4)
	require.NoError(t, err)

	require.NoError(t, fs.Rseek(fd, 0))
	out := make([]byte, len(original))
	_, err = fs.Read(fd, out, len(out))
	require.NoError(t, err)
	assert.Equal(t, "0123XXXX89ABCDEF", string(out))
}

func TestReadPastEndOfFileReturnsZero(t *testing.T) {
	fs := formatTiny(t)

	fd, err := fs.Open("empty.bin")
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, err := fs.Read(fd, buf, len(buf))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDirectoryNamesAreUnique(t *testing.T) {
	fs := formatTiny(t)

	fd1, err := fs.Open("dup.txt")
	require.NoError(t, err)
	fd2, err := fs.Open("dup.txt")
	require.NoError(t, err)

	assert.NoError(t, fs.Close(fd1))
	assert.Error(t, fs.Close(fd2), "fd2 is the same descriptor as fd1, already closed")
	assert.NoError(t, fs.Check())
}

func TestRemoveIsLeftInverseOfCreate(t *testing.T) {
	fs := formatTiny(t)

	fd, err := fs.Open("temp.txt")
	require.NoError(t, err)
	_, err = fs.Write(fd, []byte("data"), 4)
	require.NoError(t, err)
	require.NoError(t, fs.Close(fd))

	require.NoError(t, fs.Remove("temp.txt"))

	_, err = fs.GetFileSize("temp.txt")
	assert.Error(t, err)

	// Recreating it afterwards must succeed and start from a clean slate.
	fd2, err := fs.Open("temp.txt")
	require.NoError(t, err)
	size, err := fs.GetFileSize("temp.txt")
	require.NoError(t, err)
	assert.EqualValues(t, 0, size)
	assert.NoError(t, fs.Close(fd2))
}

func TestRemoveUnknownFileFails(t *testing.T) {
	fs := formatTiny(t)
	err := fs.Remove("nope.txt")
	assert.Error(t, err)
}

func TestVolumeExhaustionThenReuseAfterRemove(t *testing.T) {
	fs := formatTiny(t)
	layout := tinyLayout(t)

	names := make([]string, 0, layout.MaxFiles)
	for i := 0; i < int(layout.MaxFiles); i++ {
		name := string(rune('a' + i))
		fd, err := fs.Open(name)
		require.NoErrorf(t, err, "could not create file %d of %d", i, layout.MaxFiles)
		require.NoError(t, fs.Close(fd))
		names = append(names, name)
	}

	_, err := fs.Open("one-too-many")
	assert.Error(t, err, "directory/inode table should be full")

	require.NoError(t, fs.Remove(names[0]))

	fd, err := fs.Open("reused-slot")
	assert.NoError(t, err, "removing a file should free its slot for reuse")
	assert.NoError(t, fs.Close(fd))
}

func TestGetNextFileNameCyclesThenWraps(t *testing.T) {
	fs := formatTiny(t)

	created := map[string]bool{"one": true, "two": true, "three": true}
	for name := range created {
		fd, err := fs.Open(name)
		require.NoError(t, err)
		require.NoError(t, fs.Close(fd))
	}

	seen := make(map[string]bool)
	for i := 0; i < len(created); i++ {
		name, _, ok := fs.GetNextFileName()
		require.True(t, ok)
		seen[name] = true
	}
	assert.Equal(t, created, seen)

	_, _, ok := fs.GetNextFileName()
	assert.False(t, ok, "a full lap must report no further entries")
}

func TestSeekRejectsOffsetPastSize(t *testing.T) {
	fs := formatTiny(t)

	fd, err := fs.Open("s.bin")
	require.NoError(t, err)
	_, err = fs.Write(fd, []byte("abcd"), 4)
	require.NoError(t, err)

	assert.Error(t, fs.Rseek(fd, 5))
	assert.NoError(t, fs.Rseek(fd, 4))
}

func TestCheckPassesOnFreshlyFormattedVolume(t *testing.T) {
	fs := formatTiny(t)
	assert.NoError(t, fs.Check())
}

func TestCheckPassesAfterMixedWorkload(t *testing.T) {
	fs := formatTiny(t)
	layout := tinyLayout(t)

	fd1, err := fs.Open("keep.bin")
	require.NoError(t, err)
	payload := make([]byte, int(layout.BlockSize)*5)
	_, err = fs.Write(fd1, payload, len(payload))
	require.NoError(t, err)
	require.NoError(t, fs.Close(fd1))

	fd2, err := fs.Open("gone.bin")
	require.NoError(t, err)
	_, err = fs.Write(fd2, []byte("x"), 1)
	require.NoError(t, err)
	require.NoError(t, fs.Close(fd2))
	require.NoError(t, fs.Remove("gone.bin"))

	assert.NoError(t, fs.Check())
}
