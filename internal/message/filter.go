package message

import (
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
)

// Filter identifiers.
const (
	FilterDeflate     uint16 = 1
	FilterShuffle     uint16 = 2
	FilterFletcher32  uint16 = 3
	FilterSZIP        uint16 = 4
	FilterNBit        uint16 = 5
	FilterScaleOffset uint16 = 6
)

// FilterInfo is one stage of a filter pipeline.
type FilterInfo struct {
	ID         uint16
	Flags      uint16
	Name       string
	ClientData []uint32
}

// IsOptional reports whether the filter may be skipped when unavailable.
func (f *FilterInfo) IsOptional() bool {
	return f.Flags&0x01 != 0
}

// FilterPipeline lists the filters applied, in order, to every chunk.
type FilterPipeline struct {
	Version uint8
	Filters []FilterInfo
}

func (m *FilterPipeline) Type() Type { return TypeFilterPipeline }

// HasFilter reports whether the pipeline contains filter id.
func (m *FilterPipeline) HasFilter(id uint16) bool {
	for _, f := range m.Filters {
		if f.ID == id {
			return true
		}
	}
	return false
}

// Encode writes a version 2 pipeline. Names are only stored for
// non-library filters (id >= 256).
func (m *FilterPipeline) Encode(w *binary.Writer) {
	w.WriteUint8(2)
	w.WriteUint8(uint8(len(m.Filters)))
	for _, f := range m.Filters {
		w.WriteUint16(f.ID)
		name := f.ID >= 256 && f.Name != ""
		if name {
			w.WriteUint16(uint16(len(f.Name) + 1))
		}
		w.WriteUint16(f.Flags)
		w.WriteUint16(uint16(len(f.ClientData)))
		if name {
			w.WriteString(f.Name)
			w.WriteUint8(0)
		}
		for _, v := range f.ClientData {
			w.WriteUint32(v)
		}
	}
}

func parseFilterPipeline(r *binary.Reader) (*FilterPipeline, error) {
	hdr, err := r.ReadBytes(2)
	if err != nil {
		return nil, ErrTruncated
	}
	fp := &FilterPipeline{Version: hdr[0]}
	n := int(hdr[1])
	switch fp.Version {
	case 1:
		r.Skip(6)
	case 2:
	default:
		return nil, fmt.Errorf("%w: filter pipeline version %d", ErrUnsupported, fp.Version)
	}

	for i := 0; i < n; i++ {
		var f FilterInfo
		if f.ID, err = r.ReadUint16(); err != nil {
			return nil, ErrTruncated
		}
		var nameLen uint16
		if fp.Version == 1 || f.ID >= 256 {
			if nameLen, err = r.ReadUint16(); err != nil {
				return nil, ErrTruncated
			}
		}
		if f.Flags, err = r.ReadUint16(); err != nil {
			return nil, ErrTruncated
		}
		nvals, err := r.ReadUint16()
		if err != nil {
			return nil, ErrTruncated
		}
		if nameLen > 0 {
			k := int(nameLen)
			if fp.Version == 1 {
				k = pad8(k)
			}
			raw, err := r.ReadBytes(k)
			if err != nil {
				return nil, ErrTruncated
			}
			if f.Name, _, err = cstring(raw); err != nil {
				f.Name = string(raw)
			}
		}
		f.ClientData = make([]uint32, nvals)
		for j := range f.ClientData {
			if f.ClientData[j], err = r.ReadUint32(); err != nil {
				return nil, ErrTruncated
			}
		}
		if fp.Version == 1 && nvals%2 == 1 {
			r.Skip(4)
		}
		fp.Filters = append(fp.Filters, f)
	}
	return fp, nil
}
