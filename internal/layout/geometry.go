package layout

// geometry maps chunks of a dataset onto the flat element buffer.
type geometry struct {
	dims       []uint64
	chunk      []uint64
	elem       uint64
	grid       []uint64 // chunks per dimension
	chunkBytes uint64
}

func newGeometry(dims, chunk []uint64, elem uint64) *geometry {
	g := &geometry{dims: dims, chunk: chunk, elem: elem, grid: make([]uint64, len(dims)), chunkBytes: elem}
	for d := range dims {
		g.grid[d] = (dims[d] + chunk[d] - 1) / chunk[d]
		g.chunkBytes *= chunk[d]
	}
	return g
}

// count is the number of chunks covering the dataset.
func (g *geometry) count() uint64 {
	n := uint64(1)
	for _, c := range g.grid {
		n *= c
	}
	return n
}

// offset is the first element of chunk i in row-major chunk order.
func (g *geometry) offset(i uint64) []uint64 {
	off := make([]uint64, len(g.dims))
	for d := len(g.dims) - 1; d >= 0; d-- {
		off[d] = (i % g.grid[d]) * g.chunk[d]
		i /= g.grid[d]
	}
	return off
}

// place copies the part of chunk data starting at offset that lies inside
// the dataset into out.
func (g *geometry) place(out, data []byte, offset []uint64) {
	rank := len(g.dims)
	if rank == 0 {
		copy(out, data)
		return
	}
	for d := range offset {
		if offset[d] >= g.dims[d] {
			return
		}
	}
	// Byte strides of the dataset and the chunk.
	outStride := make([]uint64, rank)
	inStride := make([]uint64, rank)
	outStride[rank-1], inStride[rank-1] = g.elem, g.elem
	for d := rank - 2; d >= 0; d-- {
		outStride[d] = outStride[d+1] * g.dims[d+1]
		inStride[d] = inStride[d+1] * g.chunk[d+1]
	}
	extent := make([]uint64, rank)
	for d := range extent {
		extent[d] = g.chunk[d]
		if offset[d]+extent[d] > g.dims[d] {
			extent[d] = g.dims[d] - offset[d]
		}
	}
	var base uint64
	for d := range offset {
		base += offset[d] * outStride[d]
	}
	row := extent[rank-1] * g.elem

	idx := make([]uint64, rank-1)
	for {
		var o, in uint64
		for d, i := range idx {
			o += i * outStride[d]
			in += i * inStride[d]
		}
		copy(out[base+o:base+o+row], data[in:in+row])

		d := rank - 2
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < extent[d] {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			return
		}
	}
}
