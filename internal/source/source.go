// Package source reads the three keyed inputs of a packing run: the
// background image directory, the depth store and the segmentation store.
package source

import (
	"fmt"

	"github.com/robert-malhotra/bgpack/hdf5"
)

// Record is one array read from a store, with the attributes that travel
// with it.
type Record struct {
	Array *hdf5.Raw
	Attrs map[string]*hdf5.Attribute
}

// KeyedStore answers membership and lookup by entry identifier.
type KeyedStore interface {
	Exists(id string) bool
	Fetch(id string) (*Record, error)
	Close() error
}

// DecodeError is returned when an image cannot be read or decoded.
type DecodeError struct {
	ID   string
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image %s (%s): %v", e.ID, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
