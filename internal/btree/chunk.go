package btree

import (
	"github.com/robert-malhotra/bgpack/internal/binary"
)

// Chunk is one stored chunk of a chunked dataset.
type Chunk struct {
	// Offset is the chunk's first element in dataset coordinates.
	Offset     []uint64
	FilterMask uint32
	Size       uint64
	Address    uint64
}

// Chunks lists the chunks indexed by the tree at address for a dataset
// of the given rank.
func Chunks(r *binary.Reader, address uint64, rank int) ([]Chunk, error) {
	// size(4) mask(4) and rank+1 offsets; the last is the element byte offset.
	keySize := 8 + 8*(rank+1)
	bo := r.ByteOrder()
	var out []Chunk
	err := walk(r, address, nodeChunk, keySize, 0, func(key []byte, addr uint64) error {
		if r.IsUndefinedOffset(addr) {
			return nil
		}
		c := Chunk{
			Size:       uint64(bo.Uint32(key[0:4])),
			FilterMask: bo.Uint32(key[4:8]),
			Address:    addr,
			Offset:     make([]uint64, rank),
		}
		for d := range c.Offset {
			c.Offset[d] = bo.Uint64(key[8+8*d:])
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
