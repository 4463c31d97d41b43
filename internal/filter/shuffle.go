package filter

import (
	"github.com/robert-malhotra/bgpack/internal/message"
)

// Shuffle stores byte k of every element together. Client data holds the
// element size. Trailing bytes that do not fill an element are left as is.
type Shuffle struct {
	size int
}

func NewShuffle(cd []uint32) *Shuffle {
	size := 1
	if len(cd) > 0 && cd[0] > 0 {
		size = int(cd[0])
	}
	return &Shuffle{size: size}
}

func (f *Shuffle) ID() uint16 { return message.FilterShuffle }

func (f *Shuffle) Encode(in []byte) ([]byte, error) {
	n := len(in) / f.size
	if f.size <= 1 || n <= 1 {
		return in, nil
	}
	out := make([]byte, len(in))
	for i := 0; i < n; i++ {
		for k := 0; k < f.size; k++ {
			out[k*n+i] = in[i*f.size+k]
		}
	}
	copy(out[n*f.size:], in[n*f.size:])
	return out, nil
}

func (f *Shuffle) Decode(in []byte) ([]byte, error) {
	n := len(in) / f.size
	if f.size <= 1 || n <= 1 {
		return in, nil
	}
	out := make([]byte, len(in))
	for i := 0; i < n; i++ {
		for k := 0; k < f.size; k++ {
			out[i*f.size+k] = in[k*n+i]
		}
	}
	copy(out[n*f.size:], in[n*f.size:])
	return out, nil
}
