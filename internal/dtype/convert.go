package dtype

import (
	"fmt"
	"math"

	"github.com/robert-malhotra/bgpack/internal/message"
)

// Convert decodes every element of data, a run of numeric elements of type
// dt, into T. Values are converted the way a Go conversion would.
func Convert[T Number](dt *message.Datatype, data []byte) ([]T, error) {
	if dt.Class == message.ClassEnum && dt.Base != nil {
		return Convert[T](dt.Base, data)
	}
	size := int(dt.Size)
	if size == 0 {
		return nil, fmt.Errorf("%w: zero-size type", ErrUnsupported)
	}
	n := len(data) / size
	out := make([]T, n)
	order := ByteOrder(dt)

	switch dt.Class {
	case message.ClassFixedPoint:
		for i := range out {
			b := data[i*size : (i+1)*size]
			var u uint64
			switch size {
			case 1:
				u = uint64(b[0])
			case 2:
				u = uint64(order.Uint16(b))
			case 4:
				u = uint64(order.Uint32(b))
			case 8:
				u = order.Uint64(b)
			default:
				return nil, fmt.Errorf("%w: %d-byte integer", ErrUnsupported, size)
			}
			if dt.Signed {
				// sign-extend from size bytes
				shift := uint(64 - 8*size)
				out[i] = T(int64(u<<shift) >> shift)
			} else {
				out[i] = T(u)
			}
		}
	case message.ClassFloatPoint:
		for i := range out {
			b := data[i*size : (i+1)*size]
			switch size {
			case 4:
				out[i] = T(math.Float32frombits(order.Uint32(b)))
			case 8:
				out[i] = T(math.Float64frombits(order.Uint64(b)))
			default:
				return nil, fmt.Errorf("%w: %d-byte float", ErrUnsupported, size)
			}
		}
	default:
		return nil, fmt.Errorf("%w: %s to number", ErrUnsupported, dt)
	}
	return out, nil
}
