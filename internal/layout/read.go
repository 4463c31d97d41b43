package layout

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
	"github.com/robert-malhotra/bgpack/internal/btree"
	"github.com/robert-malhotra/bgpack/internal/filter"
	"github.com/robert-malhotra/bgpack/internal/message"
)

// ErrUnsupported is returned for layouts or chunk indexes that cannot be read.
var ErrUnsupported = errors.New("unsupported layout")

// Read returns all elements of a dataset with shape dims. Scalars have
// empty dims.
func Read(r *binary.Reader, l *message.DataLayout, dims []uint64, elemSize uint32, fp *message.FilterPipeline) ([]byte, error) {
	total := uint64(elemSize)
	for _, d := range dims {
		total *= d
	}
	switch l.Class {
	case message.LayoutCompact:
		if uint64(len(l.CompactData)) < total {
			return nil, fmt.Errorf("compact data is %d bytes, need %d", len(l.CompactData), total)
		}
		return append([]byte(nil), l.CompactData[:total]...), nil
	case message.LayoutContiguous:
		if total == 0 || r.IsUndefinedOffset(l.Address) {
			return make([]byte, total), nil
		}
		data, err := r.At(int64(l.Address)).ReadBytes(int(total))
		if err != nil {
			return nil, fmt.Errorf("contiguous data at %d: %w", l.Address, err)
		}
		return data, nil
	case message.LayoutChunked:
		return readChunked(r, l, dims, elemSize, fp, total)
	default:
		return nil, fmt.Errorf("%w: class %d", ErrUnsupported, l.Class)
	}
}

func readChunked(r *binary.Reader, l *message.DataLayout, dims []uint64, elemSize uint32, fp *message.FilterPipeline, total uint64) ([]byte, error) {
	if len(l.ChunkDims) != len(dims) {
		return nil, fmt.Errorf("chunk rank %d does not match dataset rank %d", len(l.ChunkDims), len(dims))
	}
	out := make([]byte, total)
	if total == 0 || r.IsUndefinedOffset(l.IndexAddr) {
		return out, nil
	}
	pipeline, err := filter.NewPipeline(fp)
	if err != nil {
		return nil, err
	}
	chunks, err := listChunks(r, l, dims, elemSize)
	if err != nil {
		return nil, err
	}
	g := newGeometry(dims, l.ChunkDims, uint64(elemSize))
	for _, c := range chunks {
		raw, err := r.At(int64(c.Address)).ReadBytes(int(c.Size))
		if err != nil {
			return nil, fmt.Errorf("chunk %v at %d: %w", c.Offset, c.Address, err)
		}
		data, err := pipeline.Decode(raw, c.FilterMask)
		if err != nil {
			return nil, fmt.Errorf("chunk %v: %w", c.Offset, err)
		}
		if uint64(len(data)) < g.chunkBytes {
			return nil, fmt.Errorf("chunk %v decoded to %d bytes, want %d", c.Offset, len(data), g.chunkBytes)
		}
		g.place(out, data, c.Offset)
	}
	return out, nil
}

func listChunks(r *binary.Reader, l *message.DataLayout, dims []uint64, elemSize uint32) ([]btree.Chunk, error) {
	g := newGeometry(dims, l.ChunkDims, uint64(elemSize))
	switch l.IndexType {
	case message.ChunkIndexBTreeV1:
		return btree.Chunks(r, l.IndexAddr, len(dims))
	case message.ChunkIndexSingle:
		size := g.chunkBytes
		if l.FilteredSize > 0 {
			size = l.FilteredSize
		}
		return []btree.Chunk{{
			Offset:     make([]uint64, len(dims)),
			Size:       size,
			FilterMask: l.FilterMask,
			Address:    l.IndexAddr,
		}}, nil
	case message.ChunkIndexImplicit:
		n := g.count()
		chunks := make([]btree.Chunk, n)
		for i := range chunks {
			chunks[i] = btree.Chunk{
				Offset:  g.offset(uint64(i)),
				Size:    g.chunkBytes,
				Address: l.IndexAddr + uint64(i)*g.chunkBytes,
			}
		}
		return chunks, nil
	case message.ChunkIndexFixedArray:
		return readFixedArray(r, l.IndexAddr, g)
	default:
		return nil, fmt.Errorf("%w: chunk index type %d", ErrUnsupported, l.IndexType)
	}
}
