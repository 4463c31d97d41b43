// Package hdf5 reads and writes HDF5 files in pure Go. It reads the files
// h5py produces with its default settings and writes files h5py and the
// reference library can open.
package hdf5

import "errors"

// Common errors
var (
	ErrNotHDF5     = errors.New("not an HDF5 file")
	ErrNotFound    = errors.New("object not found")
	ErrNotDataset  = errors.New("object is not a dataset")
	ErrNotGroup    = errors.New("object is not a group")
	ErrUnsupported = errors.New("unsupported feature")
	ErrInvalidPath = errors.New("invalid path")
	ErrClosed      = errors.New("file is closed")
	ErrReadOnly    = errors.New("file is not writable")
	ErrExists      = errors.New("object already exists")
	ErrLinkDepth   = errors.New("maximum link depth exceeded")
	ErrShape       = errors.New("data does not match shape")
)

// MaxLinkDepth is the maximum number of soft links that can be followed
// in a single path resolution.
const MaxLinkDepth = 100
