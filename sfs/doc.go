// Package sfs implements the core of a single-volume, flat-directory file
// system over a fixed-size block-addressable virtual disk: the free-space
// bitmap, the inode table with direct and single-indirect block pointers,
// the flat root directory, the open file descriptor table, and the
// read/write path that ties them together.
//
// A FileSystem owns every in-memory table as an instance field (there is no
// package-level global state here); see the legacy package for a facade that
// exposes the classic single-global-instance API shape.
package sfs
