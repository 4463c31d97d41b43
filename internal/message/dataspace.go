package message

import (
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
)

// DataspaceType distinguishes scalar, simple and null dataspaces.
type DataspaceType uint8

const (
	DataspaceScalar DataspaceType = 0
	DataspaceSimple DataspaceType = 1
	DataspaceNull   DataspaceType = 2
)

// Dataspace is the shape of a dataset or attribute.
type Dataspace struct {
	Version    uint8
	SpaceType  DataspaceType
	Dimensions []uint64
	MaxDims    []uint64
}

func (m *Dataspace) Type() Type { return TypeDataspace }

// NewDataspace returns a simple dataspace of fixed size dims. A nil or
// empty dims is a scalar.
func NewDataspace(dims []uint64) *Dataspace {
	if len(dims) == 0 {
		return &Dataspace{Version: 2, SpaceType: DataspaceScalar}
	}
	return &Dataspace{Version: 2, SpaceType: DataspaceSimple, Dimensions: append([]uint64(nil), dims...)}
}

// NumElements returns the number of elements the dataspace holds.
func (m *Dataspace) NumElements() uint64 {
	switch m.SpaceType {
	case DataspaceScalar:
		return 1
	case DataspaceSimple:
		n := uint64(1)
		for _, d := range m.Dimensions {
			n *= d
		}
		return n
	default:
		return 0
	}
}

func (m *Dataspace) IsScalar() bool { return m.SpaceType == DataspaceScalar }

// Encode writes a version 2 dataspace message.
func (m *Dataspace) Encode(w *binary.Writer) {
	w.WriteUint8(2)
	w.WriteUint8(uint8(len(m.Dimensions)))
	var flags uint8
	if m.MaxDims != nil {
		flags |= 0x01
	}
	w.WriteUint8(flags)
	w.WriteUint8(uint8(m.SpaceType))
	for _, d := range m.Dimensions {
		w.WriteLength(d)
	}
	for _, d := range m.MaxDims {
		w.WriteLength(d)
	}
}

func parseDataspace(r *binary.Reader) (*Dataspace, error) {
	hdr, err := r.ReadBytes(4)
	if err != nil {
		return nil, ErrTruncated
	}
	ds := &Dataspace{Version: hdr[0]}
	rank := int(hdr[1])
	flags := hdr[2]

	switch ds.Version {
	case 1:
		r.Skip(4)
		ds.SpaceType = DataspaceSimple
		if rank == 0 {
			ds.SpaceType = DataspaceScalar
		}
	case 2:
		ds.SpaceType = DataspaceType(hdr[3])
	default:
		return nil, fmt.Errorf("%w: dataspace version %d", ErrUnsupported, ds.Version)
	}
	if ds.SpaceType != DataspaceSimple {
		return ds, nil
	}

	ds.Dimensions = make([]uint64, rank)
	for i := range ds.Dimensions {
		if ds.Dimensions[i], err = r.ReadLength(); err != nil {
			return nil, ErrTruncated
		}
	}
	if flags&0x01 != 0 {
		ds.MaxDims = make([]uint64, rank)
		for i := range ds.MaxDims {
			if ds.MaxDims[i], err = r.ReadLength(); err != nil {
				return nil, ErrTruncated
			}
		}
	}
	return ds, nil
}
