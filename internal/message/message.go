package message

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
)

// Type is a header message type.
type Type uint16

const (
	TypeNIL                      Type = 0x0000
	TypeDataspace                Type = 0x0001
	TypeLinkInfo                 Type = 0x0002
	TypeDatatype                 Type = 0x0003
	TypeFillValueOld             Type = 0x0004
	TypeFillValue                Type = 0x0005
	TypeLink                     Type = 0x0006
	TypeExternalDataFiles        Type = 0x0007
	TypeDataLayout               Type = 0x0008
	TypeBogus                    Type = 0x0009
	TypeGroupInfo                Type = 0x000A
	TypeFilterPipeline           Type = 0x000B
	TypeAttribute                Type = 0x000C
	TypeObjectComment            Type = 0x000D
	TypeObjectModTime            Type = 0x000E
	TypeSharedMessageTable       Type = 0x000F
	TypeObjectHeaderContinuation Type = 0x0010
	TypeSymbolTable              Type = 0x0011
	TypeObjectModTimeOld         Type = 0x0012
	TypeBTreeKValues             Type = 0x0013
	TypeDriverInfo               Type = 0x0014
	TypeAttributeInfo            Type = 0x0015
	TypeObjectRefCount           Type = 0x0016
)

// FlagShared marks a message stored elsewhere and referenced from the header.
const FlagShared = 0x02

// ErrTruncated is returned when a message body ends before its fields do.
var ErrTruncated = errors.New("message truncated")

// ErrUnsupported is returned for message versions or classes that are not handled.
var ErrUnsupported = errors.New("unsupported message")

// Message is implemented by all header messages.
type Message interface {
	Type() Type
}

// Encoder is implemented by messages that can be written into a header.
type Encoder interface {
	Message
	Encode(w *binary.Writer)
}

// Parse decodes one message body. r supplies address and length sizes.
func Parse(typ Type, data []byte, flags uint8, r *binary.Reader) (Message, error) {
	if flags&FlagShared != 0 {
		// Shared messages point into the shared message heap, which
		// h5py never uses for the types we interpret.
		return &Unknown{typ: typ, data: data}, nil
	}
	mr := r.Over(data)
	var (
		msg Message
		err error
	)
	switch typ {
	case TypeDataspace:
		msg, err = parseDataspace(mr)
	case TypeDatatype:
		msg, _, err = parseDatatype(data)
	case TypeDataLayout:
		msg, err = parseDataLayout(mr)
	case TypeFilterPipeline:
		msg, err = parseFilterPipeline(mr)
	case TypeAttribute:
		msg, err = parseAttribute(mr, data)
	case TypeLink:
		msg, err = parseLink(mr)
	case TypeLinkInfo:
		msg, err = parseLinkInfo(mr)
	case TypeSymbolTable:
		msg, err = parseSymbolTable(mr)
	case TypeObjectHeaderContinuation:
		msg, err = parseContinuation(mr)
	default:
		return &Unknown{typ: typ, data: data}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("message type 0x%04x: %w", uint16(typ), err)
	}
	return msg, nil
}

// Unknown is a message this package does not interpret.
type Unknown struct {
	typ  Type
	data []byte
}

func (m *Unknown) Type() Type   { return m.typ }
func (m *Unknown) Data() []byte { return m.data }

// Continuation points to another block of header messages.
type Continuation struct {
	Offset uint64
	Length uint64
}

func (m *Continuation) Type() Type { return TypeObjectHeaderContinuation }

func (m *Continuation) Encode(w *binary.Writer) {
	w.WriteOffset(m.Offset)
	w.WriteLength(m.Length)
}

func parseContinuation(r *binary.Reader) (*Continuation, error) {
	off, err := r.ReadOffset()
	if err != nil {
		return nil, ErrTruncated
	}
	length, err := r.ReadLength()
	if err != nil {
		return nil, ErrTruncated
	}
	return &Continuation{Offset: off, Length: length}, nil
}

// SymbolTable locates the B-tree and local heap of an old-style group.
type SymbolTable struct {
	BTreeAddress     uint64
	LocalHeapAddress uint64
}

func (m *SymbolTable) Type() Type { return TypeSymbolTable }

func parseSymbolTable(r *binary.Reader) (*SymbolTable, error) {
	bt, err := r.ReadOffset()
	if err != nil {
		return nil, ErrTruncated
	}
	heap, err := r.ReadOffset()
	if err != nil {
		return nil, ErrTruncated
	}
	return &SymbolTable{BTreeAddress: bt, LocalHeapAddress: heap}, nil
}

// FillValue is the version 3 fill value message with no value defined.
// Space is allocated when the data is written.
type FillValue struct{}

func (m *FillValue) Type() Type { return TypeFillValue }

func (m *FillValue) Encode(w *binary.Writer) {
	w.WriteUint8(3)
	// allocation time: late (2); fill write time: if set (2 << 2)
	w.WriteUint8(0x02 | 0x02<<2)
}

// cstring splits a NUL-terminated string off the front of b.
func cstring(b []byte) (string, int, error) {
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), i + 1, nil
		}
	}
	return "", 0, ErrTruncated
}

func pad8(n int) int {
	return (n + 7) &^ 7
}
