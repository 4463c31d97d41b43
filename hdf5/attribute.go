package hdf5

import (
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/dtype"
	"github.com/robert-malhotra/bgpack/internal/message"
)

// Attribute represents an HDF5 attribute attached to a dataset or group.
type Attribute struct {
	msg  *message.Attribute
	file *File // for variable-length strings
}

func attrNames(msgs []*message.Attribute) []string {
	names := make([]string, len(msgs))
	for i, m := range msgs {
		names[i] = m.Name
	}
	return names
}

func findAttr(f *File, msgs []*message.Attribute, name string) *Attribute {
	for _, m := range msgs {
		if m.Name == name {
			return &Attribute{msg: m, file: f}
		}
	}
	return nil
}

// Name returns the attribute name.
func (a *Attribute) Name() string {
	return a.msg.Name
}

// Shape returns the dimensions of the attribute value. Scalars have none.
func (a *Attribute) Shape() []uint64 {
	if a.msg.Dataspace.IsScalar() {
		return nil
	}
	return append([]uint64(nil), a.msg.Dataspace.Dimensions...)
}

// NumElements returns the total number of elements.
func (a *Attribute) NumElements() uint64 {
	return a.msg.Dataspace.NumElements()
}

// IsScalar returns true if the attribute is a scalar value.
func (a *Attribute) IsScalar() bool {
	return a.msg.Dataspace.IsScalar()
}

// Datatype returns the element type.
func (a *Attribute) Datatype() *Datatype {
	return a.msg.Datatype
}

// Data returns the stored element bytes.
func (a *Attribute) Data() []byte {
	return a.msg.Data
}

// Strings reads a fixed or variable-length string attribute.
func (a *Attribute) Strings() ([]string, error) {
	strs, err := dtype.Strings(a.msg.Datatype, a.msg.Data, a.file.resolve)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", a.msg.Name, err)
	}
	return strs, nil
}

// AttrValues reads a numeric attribute, converting elements to T.
func AttrValues[T dtype.Number](a *Attribute) ([]T, error) {
	vals, err := dtype.Convert[T](a.msg.Datatype, a.msg.Data)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", a.msg.Name, err)
	}
	return vals, nil
}

// ReadInt64 reads the attribute as int64 values.
func (a *Attribute) ReadInt64() ([]int64, error) { return AttrValues[int64](a) }

// ReadFloat64 reads the attribute as float64 values.
func (a *Attribute) ReadFloat64() ([]float64, error) { return AttrValues[float64](a) }

// Value reads the attribute and returns an auto-typed Go value:
//   - signed integers and enums: int64
//   - unsigned integers: uint64
//   - floating point: float64
//   - strings: string
//
// Scalars return a single value and arrays a slice of it.
func (a *Attribute) Value() (interface{}, error) {
	dt := a.msg.Datatype
	var (
		vals interface{}
		err  error
	)
	switch {
	case dt.IsString():
		vals, err = a.Strings()
	case dt.Class == message.ClassFloatPoint:
		vals, err = a.ReadFloat64()
	case dt.Class == message.ClassFixedPoint && !dt.Signed:
		vals, err = AttrValues[uint64](a)
	case dtype.IsNumeric(dt):
		vals, err = a.ReadInt64()
	default:
		return nil, fmt.Errorf("%w: attribute %q of type %s", ErrUnsupported, a.msg.Name, dt)
	}
	if err != nil {
		return nil, err
	}
	if !a.IsScalar() {
		return vals, nil
	}
	switch v := vals.(type) {
	case []string:
		return first(v)
	case []float64:
		return first(v)
	case []uint64:
		return first(v)
	case []int64:
		return first(v)
	}
	return vals, nil
}

func first[T any](vals []T) (interface{}, error) {
	if len(vals) == 0 {
		return nil, fmt.Errorf("no values in attribute")
	}
	return vals[0], nil
}

// String formats the attribute value for display.
func (a *Attribute) String() string {
	v, err := a.Value()
	if err != nil {
		return fmt.Sprintf("<%s>", a.msg.Datatype)
	}
	return fmt.Sprint(v)
}
