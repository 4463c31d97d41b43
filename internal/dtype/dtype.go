package dtype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"

	"github.com/robert-malhotra/bgpack/internal/message"
)

// ErrUnsupported is returned for conversions between incompatible types.
var ErrUnsupported = errors.New("unsupported conversion")

// Number is the set of Go element types numeric data converts to.
type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint |
		~float32 | ~float64
}

// ByteOrder returns the byte order of a numeric type.
func ByteOrder(dt *message.Datatype) binary.ByteOrder {
	if dt.ByteOrder == message.OrderBE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// IsNumeric reports whether Convert accepts dt.
func IsNumeric(dt *message.Datatype) bool {
	switch dt.Class {
	case message.ClassFixedPoint, message.ClassFloatPoint:
		return true
	case message.ClassEnum:
		return dt.Base != nil && IsNumeric(dt.Base)
	}
	return false
}

// For returns the datatype h5py writes for Go type t, or for its element
// type when t is a slice or array. Strings map to fixed-width types whose
// size depends on the data, so they are not handled here.
func For(t reflect.Type) (*message.Datatype, error) {
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int8:
		return message.NewFixedPoint(1, true), nil
	case reflect.Int16:
		return message.NewFixedPoint(2, true), nil
	case reflect.Int32:
		return message.NewFixedPoint(4, true), nil
	case reflect.Int64, reflect.Int:
		return message.NewFixedPoint(8, true), nil
	case reflect.Uint8:
		return message.NewFixedPoint(1, false), nil
	case reflect.Uint16:
		return message.NewFixedPoint(2, false), nil
	case reflect.Uint32:
		return message.NewFixedPoint(4, false), nil
	case reflect.Uint64, reflect.Uint:
		return message.NewFixedPoint(8, false), nil
	case reflect.Float32:
		return message.NewFloat(4), nil
	case reflect.Float64:
		return message.NewFloat(8), nil
	default:
		return nil, fmt.Errorf("%w: Go type %v", ErrUnsupported, t)
	}
}
