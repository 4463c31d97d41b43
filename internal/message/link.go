package message

import (
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
)

// LinkType distinguishes hard, soft and external links.
type LinkType uint8

const (
	LinkTypeHard     LinkType = 0
	LinkTypeSoft     LinkType = 1
	LinkTypeExternal LinkType = 64
)

// Link names one child of a group.
type Link struct {
	LinkType      LinkType
	Name          string
	ObjectAddress uint64
	SoftValue     string
}

func (m *Link) Type() Type { return TypeLink }

// NewHardLink returns a link to the object header at addr.
func NewHardLink(name string, addr uint64) *Link {
	return &Link{LinkType: LinkTypeHard, Name: name, ObjectAddress: addr}
}

// Encode writes a version 1 link message with a UTF-8 name.
func (m *Link) Encode(w *binary.Writer) {
	width, bits := 1, uint8(0)
	switch n := len(m.Name); {
	case n > 0xffff:
		width, bits = 4, 2
	case n > 0xff:
		width, bits = 2, 1
	}
	flags := bits | 0x10 // charset present
	if m.LinkType != LinkTypeHard {
		flags |= 0x08
	}
	w.WriteUint8(1)
	w.WriteUint8(flags)
	if m.LinkType != LinkTypeHard {
		w.WriteUint8(uint8(m.LinkType))
	}
	w.WriteUint8(uint8(CharsetUTF8))
	w.WriteUintN(uint64(len(m.Name)), width)
	w.WriteString(m.Name)
	switch m.LinkType {
	case LinkTypeHard:
		w.WriteOffset(m.ObjectAddress)
	case LinkTypeSoft:
		w.WriteUint16(uint16(len(m.SoftValue)))
		w.WriteString(m.SoftValue)
	}
}

func parseLink(r *binary.Reader) (*Link, error) {
	hdr, err := r.ReadBytes(2)
	if err != nil {
		return nil, ErrTruncated
	}
	if hdr[0] != 1 {
		return nil, fmt.Errorf("%w: link version %d", ErrUnsupported, hdr[0])
	}
	flags := hdr[1]
	l := &Link{}
	if flags&0x08 != 0 {
		t, err := r.ReadUint8()
		if err != nil {
			return nil, ErrTruncated
		}
		l.LinkType = LinkType(t)
	}
	if flags&0x04 != 0 {
		r.Skip(8) // creation order
	}
	if flags&0x10 != 0 {
		r.Skip(1)
	}
	nameLen, err := r.ReadUintN(1 << (flags & 0x03))
	if err != nil {
		return nil, ErrTruncated
	}
	name, err := r.ReadBytes(int(nameLen))
	if err != nil {
		return nil, ErrTruncated
	}
	l.Name = string(name)

	switch l.LinkType {
	case LinkTypeHard:
		if l.ObjectAddress, err = r.ReadOffset(); err != nil {
			return nil, ErrTruncated
		}
	case LinkTypeSoft:
		n, err := r.ReadUint16()
		if err != nil {
			return nil, ErrTruncated
		}
		v, err := r.ReadBytes(int(n))
		if err != nil {
			return nil, ErrTruncated
		}
		l.SoftValue = string(v)
	}
	return l, nil
}

// LinkInfo marks a group that stores links as messages or in dense storage.
type LinkInfo struct {
	FractalHeapAddress uint64
	NameIndexAddress   uint64
}

func (m *LinkInfo) Type() Type { return TypeLinkInfo }

// NewLinkInfo returns link info for a group with compact (message) storage.
func NewLinkInfo() *LinkInfo {
	return &LinkInfo{FractalHeapAddress: ^uint64(0), NameIndexAddress: ^uint64(0)}
}

// Encode writes a version 0 link info message without creation order.
func (m *LinkInfo) Encode(w *binary.Writer) {
	w.WriteUint8(0)
	w.WriteUint8(0)
	w.WriteUndefinedOffset()
	w.WriteUndefinedOffset()
}

// Dense reports whether links live in a fractal heap rather than in messages.
func (m *LinkInfo) Dense(r *binary.Reader) bool {
	return !r.IsUndefinedOffset(m.FractalHeapAddress)
}

func parseLinkInfo(r *binary.Reader) (*LinkInfo, error) {
	hdr, err := r.ReadBytes(2)
	if err != nil {
		return nil, ErrTruncated
	}
	if hdr[1]&0x01 != 0 {
		r.Skip(8) // maximum creation index
	}
	li := &LinkInfo{}
	if li.FractalHeapAddress, err = r.ReadOffset(); err != nil {
		return nil, ErrTruncated
	}
	if li.NameIndexAddress, err = r.ReadOffset(); err != nil {
		return nil, ErrTruncated
	}
	return li, nil
}

// GroupInfo is the group info message with default storage thresholds.
type GroupInfo struct{}

func (m *GroupInfo) Type() Type { return TypeGroupInfo }

func (m *GroupInfo) Encode(w *binary.Writer) {
	w.WriteUint8(0)
	w.WriteUint8(0)
}
