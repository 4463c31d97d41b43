package message

import (
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
)

// Attribute is a small named array stored in an object header.
type Attribute struct {
	Version   uint8
	Name      string
	CharSet   CharacterSet
	Datatype  *Datatype
	Dataspace *Dataspace
	Data      []byte
}

func (m *Attribute) Type() Type { return TypeAttribute }

// NewAttribute builds an attribute message from already-encoded element data.
func NewAttribute(name string, dt *Datatype, ds *Dataspace, data []byte) *Attribute {
	return &Attribute{Version: 3, Name: name, CharSet: CharsetUTF8, Datatype: dt, Dataspace: ds, Data: data}
}

// Encode writes a version 3 attribute message.
func (m *Attribute) Encode(w *binary.Writer) {
	dt := w.Sub()
	m.Datatype.Encode(dt)
	ds := w.Sub()
	m.Dataspace.Encode(ds)

	w.WriteUint8(3)
	w.WriteUint8(0)
	w.WriteUint16(uint16(len(m.Name) + 1))
	w.WriteUint16(uint16(dt.Len()))
	w.WriteUint16(uint16(ds.Len()))
	w.WriteUint8(uint8(m.CharSet))
	w.WriteString(m.Name)
	w.WriteUint8(0)
	w.WriteBytes(dt.Bytes())
	w.WriteBytes(ds.Bytes())
	w.WriteBytes(m.Data)
}

func parseAttribute(r *binary.Reader, data []byte) (*Attribute, error) {
	hdr, err := r.ReadBytes(8)
	if err != nil {
		return nil, ErrTruncated
	}
	attr := &Attribute{Version: hdr[0]}
	nameSize := int(uint16(hdr[2]) | uint16(hdr[3])<<8)
	dtSize := int(uint16(hdr[4]) | uint16(hdr[5])<<8)
	dsSize := int(uint16(hdr[6]) | uint16(hdr[7])<<8)

	align := func(n int) int { return n }
	switch attr.Version {
	case 1:
		align = pad8
	case 2:
		if hdr[1]&0x03 != 0 {
			return nil, fmt.Errorf("%w: shared attribute datatype", ErrUnsupported)
		}
	case 3:
		if hdr[1]&0x03 != 0 {
			return nil, fmt.Errorf("%w: shared attribute datatype", ErrUnsupported)
		}
		cs, err := r.ReadUint8()
		if err != nil {
			return nil, ErrTruncated
		}
		attr.CharSet = CharacterSet(cs)
	default:
		return nil, fmt.Errorf("%w: attribute version %d", ErrUnsupported, attr.Version)
	}

	pos := int(r.Pos())
	field := func(n int) ([]byte, error) {
		if pos+n > len(data) {
			return nil, ErrTruncated
		}
		b := data[pos : pos+n]
		pos += align(n)
		return b, nil
	}

	name, err := field(nameSize)
	if err != nil {
		return nil, err
	}
	if attr.Name, _, err = cstring(name); err != nil {
		attr.Name = string(name)
	}

	dtBytes, err := field(dtSize)
	if err != nil {
		return nil, err
	}
	if attr.Datatype, _, err = parseDatatype(dtBytes); err != nil {
		return nil, fmt.Errorf("attribute %q datatype: %w", attr.Name, err)
	}

	dsBytes, err := field(dsSize)
	if err != nil {
		return nil, err
	}
	if attr.Dataspace, err = parseDataspace(r.Over(dsBytes)); err != nil {
		return nil, fmt.Errorf("attribute %q dataspace: %w", attr.Name, err)
	}

	want := int(attr.Dataspace.NumElements()) * int(attr.Datatype.Size)
	if pos > len(data) || len(data)-pos < want {
		return nil, fmt.Errorf("attribute %q data: %w", attr.Name, ErrTruncated)
	}
	attr.Data = append([]byte(nil), data[pos:pos+want]...)
	return attr, nil
}
