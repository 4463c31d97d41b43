package layout

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/bgpack/internal/alloc"
	"github.com/robert-malhotra/bgpack/internal/binary"
	"github.com/robert-malhotra/bgpack/internal/filter"
	"github.com/robert-malhotra/bgpack/internal/message"
)

// Write stores data, the elements of an array with shape dims, and returns
// the layout message describing where it went. With a non-empty pipeline
// the array becomes a single filtered chunk; scalars, empty arrays and
// unfiltered arrays are contiguous. The returned pipeline is the one the
// dataset header must carry, nil when no filters were applied.
func Write(w io.WriterAt, a *alloc.Allocator, cfg binary.Config, data []byte, dims []uint64, elemSize uint32,
	fp *message.FilterPipeline) (*message.DataLayout, *message.FilterPipeline, error) {
	total := uint64(elemSize)
	for _, d := range dims {
		total *= d
	}
	if uint64(len(data)) != total {
		return nil, nil, fmt.Errorf("have %d bytes for shape %v of %d-byte elements", len(data), dims, elemSize)
	}
	if total == 0 {
		return message.NewContiguousLayout(undefined(cfg), 0), nil, nil
	}
	if len(dims) == 0 || fp == nil || len(fp.Filters) == 0 {
		addr := a.Alloc(total, "raw data")
		if _, err := w.WriteAt(data, int64(addr)); err != nil {
			return nil, nil, err
		}
		return message.NewContiguousLayout(addr, total), nil, nil
	}

	pipeline, err := filter.NewPipeline(fp)
	if err != nil {
		return nil, nil, err
	}
	enc, err := pipeline.Encode(data)
	if err != nil {
		return nil, nil, err
	}
	addr := a.Alloc(uint64(len(enc)), "chunk")
	if _, err := w.WriteAt(enc, int64(addr)); err != nil {
		return nil, nil, err
	}
	return message.NewSingleChunkLayout(dims, elemSize, addr, uint64(len(enc))), fp, nil
}

func undefined(cfg binary.Config) uint64 {
	return binary.NewWriter(cfg).UndefinedOffset()
}
