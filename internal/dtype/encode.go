package dtype

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	"github.com/robert-malhotra/bgpack/internal/message"
)

// Encode converts a Go value into its datatype, element bytes and shape.
// Scalars have an empty shape. Supported values are numbers, strings and
// slices of either; strings become NUL-padded ASCII of the longest
// length, at least 1, like numpy's "S" dtype.
func Encode(v any) (*message.Datatype, []byte, []uint64, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, nil, nil, fmt.Errorf("%w: nil value", ErrUnsupported)
	}
	var dims []uint64
	elems := rv
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		dims = []uint64{uint64(rv.Len())}
	} else {
		elems = reflect.Append(reflect.MakeSlice(reflect.SliceOf(rv.Type()), 0, 1), rv)
	}

	if elems.Type().Elem().Kind() == reflect.String {
		strs := make([]string, elems.Len())
		for i := range strs {
			strs[i] = elems.Index(i).String()
		}
		dt, data := FixedStrings(strs)
		return dt, data, dims, nil
	}

	dt, err := For(elems.Type())
	if err != nil {
		return nil, nil, nil, err
	}
	data, err := encodeNumbers(dt, elems)
	if err != nil {
		return nil, nil, nil, err
	}
	return dt, data, dims, nil
}

// FixedStrings encodes strs as NUL-padded fixed-width elements.
func FixedStrings(strs []string) (*message.Datatype, []byte) {
	width := 1
	for _, s := range strs {
		if len(s) > width {
			width = len(s)
		}
	}
	data := make([]byte, width*len(strs))
	for i, s := range strs {
		copy(data[i*width:], s)
	}
	return message.NewFixedString(uint32(width), message.PadNullPad, message.CharsetASCII), data
}

func encodeNumbers(dt *message.Datatype, elems reflect.Value) ([]byte, error) {
	size := int(dt.Size)
	data := make([]byte, size*elems.Len())
	order := binary.LittleEndian
	for i := 0; i < elems.Len(); i++ {
		e := elems.Index(i)
		b := data[i*size:]
		switch e.Kind() {
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
			putUint(b, uint64(e.Int()), size)
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
			putUint(b, e.Uint(), size)
		case reflect.Float32:
			order.PutUint32(b, math.Float32bits(float32(e.Float())))
		case reflect.Float64:
			order.PutUint64(b, math.Float64bits(e.Float()))
		default:
			return nil, fmt.Errorf("%w: cannot encode %v", ErrUnsupported, e.Kind())
		}
	}
	return data, nil
}

func putUint(b []byte, v uint64, size int) {
	for i := 0; i < size; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}
