package filter

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/message"
)

// ErrUnsupported is returned for a required filter this package lacks.
var ErrUnsupported = errors.New("unsupported filter")

// Filter transforms one chunk.
type Filter interface {
	ID() uint16
	Encode(in []byte) ([]byte, error)
	Decode(in []byte) ([]byte, error)
}

// registry maps filter IDs to constructors taking the client data values.
var registry = map[uint16]func([]uint32) Filter{
	message.FilterDeflate:    func(cd []uint32) Filter { return NewDeflate(cd) },
	message.FilterShuffle:    func(cd []uint32) Filter { return NewShuffle(cd) },
	message.FilterFletcher32: func([]uint32) Filter { return Fletcher32{} },
}

var names = map[uint16]string{
	message.FilterDeflate:     "deflate",
	message.FilterShuffle:     "shuffle",
	message.FilterFletcher32:  "fletcher32",
	message.FilterSZIP:        "szip",
	message.FilterNBit:        "nbit",
	message.FilterScaleOffset: "scaleoffset",
}

// New returns the filter described by info. An optional filter that is
// not available yields nil.
func New(info message.FilterInfo) (Filter, error) {
	ctor, ok := registry[info.ID]
	if ok {
		return ctor(info.ClientData), nil
	}
	if info.IsOptional() {
		return nil, nil
	}
	if name, known := names[info.ID]; known {
		return nil, fmt.Errorf("%w: %s (id %d)", ErrUnsupported, name, info.ID)
	}
	return nil, fmt.Errorf("%w: id %d", ErrUnsupported, info.ID)
}

// Name returns a readable name for the filter of info.
func Name(info message.FilterInfo) string {
	if name, known := names[info.ID]; known {
		return name
	}
	if info.Name != "" {
		return info.Name
	}
	return fmt.Sprintf("filter %d", info.ID)
}
