package object

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
	"github.com/robert-malhotra/bgpack/internal/message"
)

// MinGroupChunk is the chunk 0 size h5py gives new groups, leaving room for
// links added later by other writers.
const MinGroupChunk = 120

// ErrMessageTooLarge is returned for a message body that does not fit the
// 16-bit size field of a compact header.
var ErrMessageTooLarge = errors.New("header message too large")

// Encode builds a version 2 object header holding msgs in a single chunk,
// padded with a NIL message up to minChunk bytes.
func Encode(cfg binary.Config, msgs []message.Encoder, minChunk int) ([]byte, error) {
	body := binary.NewWriter(cfg)
	for _, m := range msgs {
		mw := body.Sub()
		m.Encode(mw)
		if mw.Len() > 0xffff {
			return nil, fmt.Errorf("%w: type 0x%04x is %d bytes", ErrMessageTooLarge, uint16(m.Type()), mw.Len())
		}
		body.WriteUint8(uint8(m.Type()))
		body.WriteUint16(uint16(mw.Len()))
		body.WriteUint8(0)
		body.WriteBytes(mw.Bytes())
	}
	if gap := minChunk - body.Len(); gap > 0 {
		// A gap too small for a NIL prefix is allowed by readers but h5py
		// always pads with a NIL message, so grow the gap to fit one.
		if gap < 4 {
			gap = 4
		}
		body.WriteUint8(uint8(message.TypeNIL))
		body.WriteUint16(uint16(gap - 4))
		body.WriteUint8(0)
		body.WriteZeros(gap - 4)
	}

	size := body.Len()
	width, bits := 1, uint8(0)
	switch {
	case size > 0xffff:
		width, bits = 4, 2
	case size > 0xff:
		width, bits = 2, 1
	}

	w := binary.NewWriter(cfg)
	w.WriteBytes(signatureV2)
	w.WriteUint8(2)
	w.WriteUint8(bits)
	w.WriteUintN(uint64(size), width)
	w.WriteBytes(body.Bytes())
	w.AppendChecksum()
	return w.Bytes(), nil
}

// GroupMessages returns the messages of a compact new-style group.
func GroupMessages(links []*message.Link, attrs []*message.Attribute) []message.Encoder {
	msgs := make([]message.Encoder, 0, len(links)+len(attrs)+2)
	msgs = append(msgs, message.NewLinkInfo(), &message.GroupInfo{})
	for _, l := range links {
		msgs = append(msgs, l)
	}
	for _, a := range attrs {
		msgs = append(msgs, a)
	}
	return msgs
}

// DatasetMessages returns the messages of a dataset header. pipeline may be nil.
func DatasetMessages(ds *message.Dataspace, dt *message.Datatype, layout *message.DataLayout,
	pipeline *message.FilterPipeline, attrs []*message.Attribute) []message.Encoder {
	msgs := []message.Encoder{ds, dt, &message.FillValue{}, layout}
	if pipeline != nil && len(pipeline.Filters) > 0 {
		msgs = append(msgs, pipeline)
	}
	for _, a := range attrs {
		msgs = append(msgs, a)
	}
	return msgs
}
