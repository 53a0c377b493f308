package profiles_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zzzrg/os-filesystem/profiles"
)

func TestClassicProfileMatchesCanonicalParameters(t *testing.T) {
	assert.EqualValues(t, 1024, profiles.Classic.BlockSize)
	assert.EqualValues(t, 4000, profiles.Classic.TotalBlocks)
	assert.EqualValues(t, 100, profiles.Classic.MaxFiles)
	assert.EqualValues(t, 12, profiles.Classic.DirectPointers)
}

func TestGetUnknownProfileFails(t *testing.T) {
	_, err := profiles.Get("does-not-exist")
	assert.Error(t, err)
}

func TestGetKnownProfileSucceeds(t *testing.T) {
	layout, err := profiles.Get("tiny")
	assert.NoError(t, err)
	assert.Equal(t, "tiny", layout.Name)
}

func TestNamesIncludesEveryCatalogEntry(t *testing.T) {
	names := profiles.Names()
	assert.Contains(t, names, "classic")
	assert.Contains(t, names, "tiny")
	assert.Contains(t, names, "stress")
}

func TestMaxFileSizeAccountsForIndirectBlock(t *testing.T) {
	layout := profiles.Classic
	expected := uint64(layout.BlockSize) * uint64(layout.DirectPointers+layout.BlockSize/4)
	assert.Equal(t, expected, layout.MaxFileSize())
}
