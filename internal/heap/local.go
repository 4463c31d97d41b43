package heap

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
)

// ErrInvalidHeap is returned for a heap with a bad signature or version.
var ErrInvalidHeap = errors.New("invalid heap")

// Local is a local heap's data segment.
type Local struct {
	data []byte
}

// ReadLocal reads the local heap at address.
func ReadLocal(r *binary.Reader, address uint64) (*Local, error) {
	hr := r.At(int64(address))
	hdr, err := hr.ReadBytes(8)
	if err != nil {
		return nil, fmt.Errorf("local heap at %d: %w", address, err)
	}
	if string(hdr[:4]) != "HEAP" || hdr[4] != 0 {
		return nil, fmt.Errorf("%w: local heap at %d", ErrInvalidHeap, address)
	}
	size, err := hr.ReadLength()
	if err != nil {
		return nil, err
	}
	if _, err := hr.ReadLength(); err != nil { // free list head
		return nil, err
	}
	dataAddr, err := hr.ReadOffset()
	if err != nil {
		return nil, err
	}
	data, err := r.At(int64(dataAddr)).ReadBytes(int(size))
	if err != nil {
		return nil, fmt.Errorf("local heap data at %d: %w", dataAddr, err)
	}
	return &Local{data: data}, nil
}

// String returns the NUL-terminated string at offset.
func (h *Local) String(offset uint64) (string, error) {
	if offset >= uint64(len(h.data)) {
		return "", fmt.Errorf("%w: offset %d outside %d byte heap", ErrInvalidHeap, offset, len(h.data))
	}
	end := offset
	for end < uint64(len(h.data)) && h.data[end] != 0 {
		end++
	}
	return string(h.data[offset:end]), nil
}
