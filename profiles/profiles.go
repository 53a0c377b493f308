// Package profiles catalogs named volume layouts: a small embedded CSV
// table, parsed once at init time with gocsv, rejecting duplicate profile
// names.
package profiles

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// VolumeLayout gives the four parameters that fix a volume's geometry: block
// size, total block count, maximum number of files, and direct pointer count
// per inode.
type VolumeLayout struct {
	Name           string `csv:"name"`
	BlockSize      uint   `csv:"block_size"`
	TotalBlocks    uint   `csv:"total_blocks"`
	MaxFiles       uint   `csv:"max_files"`
	DirectPointers uint   `csv:"direct_pointers"`
}

// PointersPerIndirectBlock gives the number of block numbers that fit in one
// indirect block, assuming each is stored as a 4-byte integer.
func (v VolumeLayout) PointersPerIndirectBlock() uint {
	return v.BlockSize / 4
}

// MaxFileSize gives the largest file size this layout can represent using
// direct pointers plus a single indirect block.
func (v VolumeLayout) MaxFileSize() uint64 {
	capacityBlocks := uint64(v.DirectPointers) + uint64(v.PointersPerIndirectBlock())
	return uint64(v.BlockSize) * capacityBlocks
}

//go:embed profiles.csv
var rawCSV string

var catalog map[string]VolumeLayout

// Classic is the canonical layout: 1024-byte blocks, 4000 blocks total,
// 100 files, 12 direct pointers.
var Classic VolumeLayout

func init() {
	catalog = make(map[string]VolumeLayout)

	reader := strings.NewReader(rawCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row VolumeLayout) error {
		if _, exists := catalog[row.Name]; exists {
			return fmt.Errorf("duplicate volume profile name %q", row.Name)
		}
		catalog[row.Name] = row
		return nil
	})
	if err != nil && err != io.EOF {
		panic(err)
	}

	var ok bool
	Classic, ok = catalog["classic"]
	if !ok {
		panic("profiles: embedded catalog is missing the \"classic\" profile")
	}
}

// Get looks up a named volume layout. It fails if no profile with that name
// has been registered.
func Get(name string) (VolumeLayout, error) {
	layout, ok := catalog[name]
	if !ok {
		return VolumeLayout{}, fmt.Errorf("no volume profile named %q", name)
	}
	return layout, nil
}

// Names returns every registered profile name.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	return names
}
