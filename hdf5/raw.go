package hdf5

import (
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/dtype"
	"github.com/robert-malhotra/bgpack/internal/message"
)

// Datatype describes the element type of a dataset or attribute.
type Datatype = message.Datatype

// Raw is an array in its stored form: shape, element type and
// little-endian element bytes in row-major order.
type Raw struct {
	Shape []uint64
	Type  *Datatype
	Data  []byte
}

// NewRaw encodes a Go value as a Raw array. data is a number, a string or
// a slice of either; shape, when given, reshapes a slice.
func NewRaw(data interface{}, shape ...uint64) (*Raw, error) {
	dt, b, dims, err := encodeValue(data)
	if err != nil {
		return nil, err
	}
	if len(shape) > 0 {
		if dims, err = reshape(dims, shape); err != nil {
			return nil, err
		}
	}
	return &Raw{Shape: dims, Type: dt, Data: b}, nil
}

// NumElements returns the number of elements of the array.
func (r *Raw) NumElements() uint64 {
	n := uint64(1)
	for _, d := range r.Shape {
		n *= d
	}
	return n
}

// encodeValue is dtype.Encode with a copy-free path for byte slices,
// which image arrays use.
func encodeValue(v interface{}) (*message.Datatype, []byte, []uint64, error) {
	if b, ok := v.([]byte); ok {
		return message.NewFixedPoint(1, false), b, []uint64{uint64(len(b))}, nil
	}
	return dtype.Encode(v)
}

func reshape(dims, shape []uint64) ([]uint64, error) {
	have, want := uint64(1), uint64(1)
	for _, d := range dims {
		have *= d
	}
	for _, d := range shape {
		want *= d
	}
	if have != want {
		return nil, fmt.Errorf("%w: cannot reshape %v to %v", ErrShape, dims, shape)
	}
	return append([]uint64(nil), shape...), nil
}
