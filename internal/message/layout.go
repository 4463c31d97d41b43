package message

import (
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
)

// LayoutClass is where dataset elements are stored.
type LayoutClass uint8

const (
	LayoutCompact    LayoutClass = 0
	LayoutContiguous LayoutClass = 1
	LayoutChunked    LayoutClass = 2
	LayoutVirtual    LayoutClass = 3
)

// ChunkIndexType is the chunk index of a version 4 chunked layout.
// Version 3 layouts always use a v1 B-tree.
type ChunkIndexType uint8

const (
	ChunkIndexBTreeV1        ChunkIndexType = 0
	ChunkIndexSingle         ChunkIndexType = 1
	ChunkIndexImplicit       ChunkIndexType = 2
	ChunkIndexFixedArray     ChunkIndexType = 3
	ChunkIndexExtensibleArr  ChunkIndexType = 4
	ChunkIndexBTreeV2        ChunkIndexType = 5
	singleIndexWithFilterBit                = 0x02
)

// DataLayout is the data layout message.
type DataLayout struct {
	Version uint8
	Class   LayoutClass

	// Contiguous: Address and Size. Compact: CompactData.
	Address     uint64
	Size        uint64
	CompactData []byte

	// Chunked. ChunkDims excludes the trailing element-size dimension.
	ChunkDims   []uint64
	ElementSize uint32
	IndexType   ChunkIndexType
	IndexAddr   uint64

	// Single chunk index with filters.
	FilteredSize uint64
	FilterMask   uint32
}

func (m *DataLayout) Type() Type { return TypeDataLayout }

// NewSingleChunkLayout describes an array stored as one chunk covering the
// whole dataspace. filteredSize is zero when no filter pipeline applies.
func NewSingleChunkLayout(dims []uint64, elemSize uint32, addr, filteredSize uint64) *DataLayout {
	return &DataLayout{
		Version:      4,
		Class:        LayoutChunked,
		ChunkDims:    append([]uint64(nil), dims...),
		ElementSize:  elemSize,
		IndexType:    ChunkIndexSingle,
		IndexAddr:    addr,
		FilteredSize: filteredSize,
	}
}

// NewContiguousLayout describes size bytes at addr.
func NewContiguousLayout(addr, size uint64) *DataLayout {
	return &DataLayout{Version: 3, Class: LayoutContiguous, Address: addr, Size: size}
}

// Encode writes a version 3 (contiguous, compact) or version 4 (chunked) message.
func (m *DataLayout) Encode(w *binary.Writer) {
	switch m.Class {
	case LayoutCompact:
		w.WriteUint8(3)
		w.WriteUint8(uint8(LayoutCompact))
		w.WriteUint16(uint16(len(m.CompactData)))
		w.WriteBytes(m.CompactData)
	case LayoutContiguous:
		w.WriteUint8(3)
		w.WriteUint8(uint8(LayoutContiguous))
		w.WriteOffset(m.Address)
		w.WriteLength(m.Size)
	case LayoutChunked:
		w.WriteUint8(4)
		w.WriteUint8(uint8(LayoutChunked))
		var flags uint8
		if m.FilteredSize > 0 {
			flags |= singleIndexWithFilterBit
		}
		w.WriteUint8(flags)
		w.WriteUint8(uint8(len(m.ChunkDims) + 1))
		dims := append(append([]uint64(nil), m.ChunkDims...), uint64(m.ElementSize))
		enc := 1
		for _, d := range dims {
			for d>>(8*uint(enc)) != 0 {
				enc++
			}
		}
		w.WriteUint8(uint8(enc))
		for _, d := range dims {
			w.WriteUintN(d, enc)
		}
		w.WriteUint8(uint8(ChunkIndexSingle))
		if flags&singleIndexWithFilterBit != 0 {
			w.WriteLength(m.FilteredSize)
			w.WriteUint32(m.FilterMask)
		}
		w.WriteOffset(m.IndexAddr)
	}
}

func parseDataLayout(r *binary.Reader) (*DataLayout, error) {
	version, err := r.ReadUint8()
	if err != nil {
		return nil, ErrTruncated
	}
	switch version {
	case 1, 2:
		return parseLayoutV1(r, version)
	case 3, 4:
		return parseLayoutV3(r, version)
	default:
		return nil, fmt.Errorf("%w: layout version %d", ErrUnsupported, version)
	}
}

func parseLayoutV1(r *binary.Reader, version uint8) (*DataLayout, error) {
	hdr, err := r.ReadBytes(7)
	if err != nil {
		return nil, ErrTruncated
	}
	rank := int(hdr[0])
	l := &DataLayout{Version: version, Class: LayoutClass(hdr[1])}
	if l.Class != LayoutCompact {
		if l.Address, err = r.ReadOffset(); err != nil {
			return nil, ErrTruncated
		}
	}
	dims := make([]uint64, rank)
	for i := range dims {
		v, err := r.ReadUint32()
		if err != nil {
			return nil, ErrTruncated
		}
		dims[i] = uint64(v)
	}
	switch l.Class {
	case LayoutChunked:
		es, err := r.ReadUint32()
		if err != nil {
			return nil, ErrTruncated
		}
		l.IndexType = ChunkIndexBTreeV1
		l.IndexAddr = l.Address
		l.ChunkDims = dims[:rank-1]
		l.ElementSize = es
	case LayoutCompact:
		n, err := r.ReadUint32()
		if err != nil {
			return nil, ErrTruncated
		}
		if l.CompactData, err = r.ReadBytes(int(n)); err != nil {
			return nil, ErrTruncated
		}
	case LayoutContiguous:
		l.Size = 0 // derived from dataspace and datatype
	}
	return l, nil
}

func parseLayoutV3(r *binary.Reader, version uint8) (*DataLayout, error) {
	class, err := r.ReadUint8()
	if err != nil {
		return nil, ErrTruncated
	}
	l := &DataLayout{Version: version, Class: LayoutClass(class)}

	switch l.Class {
	case LayoutCompact:
		n, err := r.ReadUint16()
		if err != nil {
			return nil, ErrTruncated
		}
		if l.CompactData, err = r.ReadBytes(int(n)); err != nil {
			return nil, ErrTruncated
		}
		return l, nil
	case LayoutContiguous:
		if l.Address, err = r.ReadOffset(); err != nil {
			return nil, ErrTruncated
		}
		if l.Size, err = r.ReadLength(); err != nil {
			return nil, ErrTruncated
		}
		return l, nil
	case LayoutChunked:
		if version == 3 {
			return l, parseChunkedV3(r, l)
		}
		return l, parseChunkedV4(r, l)
	default:
		return nil, fmt.Errorf("%w: layout class %d", ErrUnsupported, class)
	}
}

func parseChunkedV3(r *binary.Reader, l *DataLayout) error {
	rank, err := r.ReadUint8()
	if err != nil || rank < 1 {
		return ErrTruncated
	}
	if l.IndexAddr, err = r.ReadOffset(); err != nil {
		return ErrTruncated
	}
	dims := make([]uint64, rank)
	for i := range dims {
		v, err := r.ReadUint32()
		if err != nil {
			return ErrTruncated
		}
		dims[i] = uint64(v)
	}
	l.IndexType = ChunkIndexBTreeV1
	l.ChunkDims = dims[:rank-1]
	l.ElementSize = uint32(dims[rank-1])
	return nil
}

func parseChunkedV4(r *binary.Reader, l *DataLayout) error {
	hdr, err := r.ReadBytes(3)
	if err != nil {
		return ErrTruncated
	}
	flags, rank, enc := hdr[0], int(hdr[1]), int(hdr[2])
	if rank < 1 || enc < 1 || enc > 8 {
		return fmt.Errorf("%w: chunked layout rank %d width %d", ErrUnsupported, rank, enc)
	}
	dims := make([]uint64, rank)
	for i := range dims {
		if dims[i], err = r.ReadUintN(enc); err != nil {
			return ErrTruncated
		}
	}
	l.ChunkDims = dims[:rank-1]
	l.ElementSize = uint32(dims[rank-1])

	it, err := r.ReadUint8()
	if err != nil {
		return ErrTruncated
	}
	l.IndexType = ChunkIndexType(it)
	switch l.IndexType {
	case ChunkIndexSingle:
		if flags&singleIndexWithFilterBit != 0 {
			if l.FilteredSize, err = r.ReadLength(); err != nil {
				return ErrTruncated
			}
			if l.FilterMask, err = r.ReadUint32(); err != nil {
				return ErrTruncated
			}
		}
	case ChunkIndexImplicit:
	case ChunkIndexFixedArray:
		r.Skip(1) // page bits
	case ChunkIndexExtensibleArr:
		r.Skip(5)
	case ChunkIndexBTreeV2:
		r.Skip(6)
	default:
		return fmt.Errorf("%w: chunk index type %d", ErrUnsupported, it)
	}
	if l.IndexAddr, err = r.ReadOffset(); err != nil {
		return ErrTruncated
	}
	return nil
}
