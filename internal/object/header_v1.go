package object

import (
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
	"github.com/robert-malhotra/bgpack/internal/message"
)

/*
Version 1 prefix (16 bytes):
  version(1) reserved(1) nmessages(2) refcount(4) size(4) reserved(4)

Version 1 message, 8-byte aligned:
  type(2) size(2) flags(1) reserved(3) body(size)
*/

func readV1(r *binary.Reader, address uint64) (*Header, error) {
	hr := r.At(int64(address))
	prefix, err := hr.ReadBytes(16)
	if err != nil {
		return nil, err
	}
	bo := r.ByteOrder()
	h := &Header{
		Version:  1,
		Address:  address,
		RefCount: bo.Uint32(prefix[4:8]),
	}
	size := uint64(bo.Uint32(prefix[8:12]))

	pending := []block{{address + 16, size}}
	for i := 0; i < len(pending); i++ {
		if err := checkContinuations(i); err != nil {
			return nil, err
		}
		if err := h.readV1Block(r, pending[i], &pending); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Header) readV1Block(r *binary.Reader, b block, pending *[]block) error {
	br := r.At(int64(b.offset))
	end := int64(b.offset + b.length)
	for br.Pos()+8 <= end {
		prefix, err := br.ReadBytes(8)
		if err != nil {
			return err
		}
		bo := r.ByteOrder()
		typ := message.Type(bo.Uint16(prefix[0:2]))
		size := int64(bo.Uint16(prefix[2:4]))
		flags := prefix[4]
		if br.Pos()+size > end {
			return fmt.Errorf("%w: message overruns block", ErrInvalidHeader)
		}
		data, err := br.ReadBytes(int(size))
		if err != nil {
			return err
		}
		if err := h.add(r, typ, data, flags, pending); err != nil {
			return err
		}
		br.Align(8)
	}
	return nil
}
