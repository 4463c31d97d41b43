package dtype

import (
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/heap"
	"github.com/robert-malhotra/bgpack/internal/message"
)

// Resolver fetches the bytes a variable-length element points to.
type Resolver func(ref heap.Ref) ([]byte, error)

// Strings decodes fixed or variable-length string elements. resolve may be
// nil for fixed-width strings.
func Strings(dt *message.Datatype, data []byte, resolve Resolver) ([]string, error) {
	size := int(dt.Size)
	if size == 0 {
		return nil, fmt.Errorf("%w: zero-size string type", ErrUnsupported)
	}
	out := make([]string, len(data)/size)
	switch {
	case dt.Class == message.ClassString:
		for i := range out {
			out[i] = trim(data[i*size:(i+1)*size], dt.StringPadding)
		}
	case dt.Class == message.ClassVarLen && dt.IsVarLenString:
		if resolve == nil {
			return nil, fmt.Errorf("%w: variable-length strings need a resolver", ErrUnsupported)
		}
		offsetSize := size - 8
		for i := range out {
			ref, err := heap.DecodeRef(data[i*size:(i+1)*size], offsetSize)
			if err != nil {
				return nil, err
			}
			b, err := resolve(ref)
			if err != nil {
				return nil, fmt.Errorf("string %d: %w", i, err)
			}
			if int(ref.Length) < len(b) {
				b = b[:ref.Length]
			}
			out[i] = trim(b, message.PadNullTerm)
		}
	default:
		return nil, fmt.Errorf("%w: %s to string", ErrUnsupported, dt)
	}
	return out, nil
}

// trim drops padding: everything from the first NUL, and trailing spaces
// for space-padded strings.
func trim(b []byte, pad message.StringPadding) string {
	end := len(b)
	for i, c := range b {
		if c == 0 {
			end = i
			break
		}
	}
	if pad == message.PadSpacePad {
		for end > 0 && b[end-1] == ' ' {
			end--
		}
	}
	return string(b[:end])
}
