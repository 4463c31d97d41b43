package filter

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/robert-malhotra/bgpack/internal/binary"
	"github.com/robert-malhotra/bgpack/internal/message"
)

// ErrChecksum is returned when a chunk fails its fletcher32 check.
var ErrChecksum = errors.New("fletcher32 checksum mismatch")

// Fletcher32 appends a checksum of the chunk to the chunk.
type Fletcher32 struct{}

func (Fletcher32) ID() uint16 { return message.FilterFletcher32 }

func (Fletcher32) Encode(in []byte) ([]byte, error) {
	out := make([]byte, len(in), len(in)+4)
	copy(out, in)
	sum := binary.Fletcher32(in)
	return append(out, byte(sum), byte(sum>>8), byte(sum>>16), byte(sum>>24)), nil
}

// Decode also accepts the byte-swapped checksum written by old library
// releases.
func (Fletcher32) Decode(in []byte) ([]byte, error) {
	if len(in) < 4 {
		return nil, fmt.Errorf("%w: chunk of %d bytes", ErrChecksum, len(in))
	}
	data := in[:len(in)-4]
	stored := binary.DecodeUint(in[len(in)-4:])
	sum := binary.Fletcher32(data)
	if uint32(stored) != sum && uint32(stored) != bits.ReverseBytes32(sum) {
		return nil, fmt.Errorf("%w: stored 0x%08x, computed 0x%08x", ErrChecksum, stored, sum)
	}
	return data, nil
}
