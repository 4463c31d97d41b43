package object

import (
	"bytes"
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
	"github.com/robert-malhotra/bgpack/internal/message"
)

/*
Version 2 prefix:
  "OHDR" version(1) flags(1) [times(16) if 0x20] [phase change(4) if 0x10]
  chunk0 size(1<<(flags&3))
Chunk 0 is followed by a lookup3 checksum of everything from "OHDR" on.

Continuation blocks: "OCHK" messages... checksum(4).

Version 2 message:
  type(1) size(2) flags(1) [creation order(2) if header flag 0x04] body(size)
*/

const (
	flagCreationOrder = 0x04
	flagPhaseChange   = 0x10
	flagTimes         = 0x20
)

func readV2(r *binary.Reader, address uint64) (*Header, error) {
	hr := r.At(int64(address) + 4)
	hdr, err := hr.ReadBytes(2)
	if err != nil {
		return nil, err
	}
	if hdr[0] != 2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr[0])
	}
	h := &Header{Version: 2, Address: address, Flags: hdr[1], RefCount: 1}
	if h.Flags&flagTimes != 0 {
		hr.Skip(16)
	}
	if h.Flags&flagPhaseChange != 0 {
		hr.Skip(4)
	}
	size, err := hr.ReadUintN(1 << (h.Flags & 0x03))
	if err != nil {
		return nil, err
	}
	start := hr.Pos()

	// Checksum covers the prefix and chunk 0.
	if err := verify(r, int64(address), start-int64(address)+int64(size)); err != nil {
		return nil, err
	}

	var pending []block
	if err := h.readV2Messages(r, start, start+int64(size), &pending); err != nil {
		return nil, err
	}
	for i := 0; i < len(pending); i++ {
		if err := checkContinuations(i); err != nil {
			return nil, err
		}
		b := pending[i]
		sig, err := r.At(int64(b.offset)).ReadBytes(4)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(sig, signatureChunk) {
			return nil, fmt.Errorf("%w: bad continuation signature at %d", ErrInvalidHeader, b.offset)
		}
		if b.length < 8 {
			return nil, fmt.Errorf("%w: continuation block too small", ErrInvalidHeader)
		}
		if err := verify(r, int64(b.offset), int64(b.length)-4); err != nil {
			return nil, err
		}
		if err := h.readV2Messages(r, int64(b.offset)+4, int64(b.offset+b.length)-4, &pending); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// verify checks the lookup3 checksum that follows n bytes at off.
func verify(r *binary.Reader, off, n int64) error {
	br := r.At(off)
	data, err := br.ReadBytes(int(n))
	if err != nil {
		return err
	}
	stored, err := br.ReadUint32()
	if err != nil {
		return err
	}
	if binary.Lookup3Checksum(data) != stored {
		return fmt.Errorf("%w at %d", ErrChecksum, off)
	}
	return nil
}

func (h *Header) readV2Messages(r *binary.Reader, start, end int64, pending *[]block) error {
	prefixLen := int64(4)
	if h.Flags&flagCreationOrder != 0 {
		prefixLen += 2
	}
	br := r.At(start)
	// A tail shorter than a message prefix is a gap, not a message.
	for br.Pos()+prefixLen <= end {
		prefix, err := br.ReadBytes(int(prefixLen))
		if err != nil {
			return err
		}
		typ := message.Type(prefix[0])
		size := int64(r.ByteOrder().Uint16(prefix[1:3]))
		flags := prefix[3]
		if br.Pos()+size > end {
			return fmt.Errorf("%w: message overruns chunk", ErrInvalidHeader)
		}
		data, err := br.ReadBytes(int(size))
		if err != nil {
			return err
		}
		if err := h.add(r, typ, data, flags, pending); err != nil {
			return err
		}
	}
	return nil
}
