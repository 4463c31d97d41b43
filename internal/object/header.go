package object

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
	"github.com/robert-malhotra/bgpack/internal/message"
)

var (
	signatureV2    = []byte("OHDR")
	signatureChunk = []byte("OCHK")
)

var (
	ErrInvalidHeader      = errors.New("invalid object header")
	ErrUnsupportedVersion = errors.New("unsupported object header version")
	ErrChecksum           = errors.New("object header checksum mismatch")
)

// maxContinuations bounds the blocks followed for one header so a corrupt
// continuation cycle cannot loop forever.
const maxContinuations = 1024

// Header is a parsed object header.
type Header struct {
	Version  uint8
	Address  uint64
	Flags    uint8
	RefCount uint32
	Messages []message.Message
}

// Read parses the object header at address, following continuation blocks.
func Read(r *binary.Reader, address uint64) (*Header, error) {
	hr := r.At(int64(address))
	peek, err := hr.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading object header at %d: %w", address, err)
	}
	var h *Header
	switch {
	case string(peek) == string(signatureV2):
		h, err = readV2(r, address)
	case peek[0] == 1:
		h, err = readV1(r, address)
	default:
		return nil, fmt.Errorf("%w at %d", ErrInvalidHeader, address)
	}
	if err != nil {
		return nil, fmt.Errorf("object header at %d: %w", address, err)
	}
	return h, nil
}

// block is a pending run of messages: a continuation target.
type block struct {
	offset, length uint64
}

// Message returns the first message of type typ, or nil.
func (h *Header) Message(typ message.Type) message.Message {
	for _, msg := range h.Messages {
		if msg.Type() == typ {
			return msg
		}
	}
	return nil
}

// All returns every message of type typ in header order.
func (h *Header) All(typ message.Type) []message.Message {
	var out []message.Message
	for _, msg := range h.Messages {
		if msg.Type() == typ {
			out = append(out, msg)
		}
	}
	return out
}

// Dataspace returns the dataspace message, or nil.
func (h *Header) Dataspace() *message.Dataspace {
	m, _ := h.Message(message.TypeDataspace).(*message.Dataspace)
	return m
}

// Datatype returns the datatype message, or nil.
func (h *Header) Datatype() *message.Datatype {
	m, _ := h.Message(message.TypeDatatype).(*message.Datatype)
	return m
}

// DataLayout returns the layout message, or nil.
func (h *Header) DataLayout() *message.DataLayout {
	m, _ := h.Message(message.TypeDataLayout).(*message.DataLayout)
	return m
}

// FilterPipeline returns the filter pipeline message, or nil.
func (h *Header) FilterPipeline() *message.FilterPipeline {
	m, _ := h.Message(message.TypeFilterPipeline).(*message.FilterPipeline)
	return m
}

// SymbolTable returns the symbol table message of an old-style group, or nil.
func (h *Header) SymbolTable() *message.SymbolTable {
	m, _ := h.Message(message.TypeSymbolTable).(*message.SymbolTable)
	return m
}

// LinkInfo returns the link info message of a new-style group, or nil.
func (h *Header) LinkInfo() *message.LinkInfo {
	m, _ := h.Message(message.TypeLinkInfo).(*message.LinkInfo)
	return m
}

// Links returns the link messages of a compact group.
func (h *Header) Links() []*message.Link {
	var out []*message.Link
	for _, msg := range h.Messages {
		if l, ok := msg.(*message.Link); ok {
			out = append(out, l)
		}
	}
	return out
}

// Attributes returns the attribute messages stored in the header.
func (h *Header) Attributes() []*message.Attribute {
	var out []*message.Attribute
	for _, msg := range h.Messages {
		if a, ok := msg.(*message.Attribute); ok {
			out = append(out, a)
		}
	}
	return out
}

// IsGroup reports whether the header describes a group.
func (h *Header) IsGroup() bool {
	return h.SymbolTable() != nil || h.LinkInfo() != nil || len(h.Links()) > 0
}

// IsDataset reports whether the header describes a dataset.
func (h *Header) IsDataset() bool {
	return h.DataLayout() != nil && h.Dataspace() != nil && h.Datatype() != nil
}

func checkContinuations(n int) error {
	if n >= maxContinuations {
		return fmt.Errorf("%w: too many continuation blocks", ErrInvalidHeader)
	}
	return nil
}

// add parses one raw message. Continuations are queued instead of stored.
func (h *Header) add(r *binary.Reader, typ message.Type, data []byte, flags uint8, pending *[]block) error {
	if typ == message.TypeNIL {
		return nil
	}
	msg, err := message.Parse(typ, data, flags, r)
	if err != nil {
		return err
	}
	if c, ok := msg.(*message.Continuation); ok {
		*pending = append(*pending, block{c.Offset, c.Length})
		return nil
	}
	h.Messages = append(h.Messages, msg)
	return nil
}
