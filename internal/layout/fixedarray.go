package layout

import (
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
	"github.com/robert-malhotra/bgpack/internal/btree"
)

/*
Fixed array header ("FAHD"):
  version(1) client(1) entry size(1) page bits(1) entries(L) data block(O) checksum(4)
Data block ("FADB"):
  version(1) client(1) header(O) entries... checksum(4)
Client 0 entries are chunk addresses; client 1 entries add the filtered
size and filter mask.
*/

const faClientFiltered = 1

func readFixedArray(r *binary.Reader, address uint64, g *geometry) ([]btree.Chunk, error) {
	hr := r.At(int64(address))
	hdr, err := hr.ReadBytes(8)
	if err != nil {
		return nil, fmt.Errorf("fixed array header at %d: %w", address, err)
	}
	if string(hdr[:4]) != "FAHD" || hdr[4] != 0 {
		return nil, fmt.Errorf("%w: bad fixed array header at %d", ErrUnsupported, address)
	}
	client, entrySize, pageBits := hdr[5], int(hdr[6]), hdr[7]
	n, err := hr.ReadLength()
	if err != nil {
		return nil, err
	}
	block, err := hr.ReadOffset()
	if err != nil {
		return nil, err
	}
	if n > uint64(1)<<pageBits {
		return nil, fmt.Errorf("%w: paged fixed array with %d entries", ErrUnsupported, n)
	}
	if n != g.count() {
		return nil, fmt.Errorf("fixed array has %d entries for %d chunks", n, g.count())
	}
	if r.IsUndefinedOffset(block) {
		return nil, nil
	}

	br := r.At(int64(block))
	sig, err := br.ReadBytes(6)
	if err != nil {
		return nil, err
	}
	if string(sig[:4]) != "FADB" {
		return nil, fmt.Errorf("%w: bad fixed array data block at %d", ErrUnsupported, block)
	}
	br.Skip(int64(r.OffsetSize()))

	sizeBytes := entrySize - r.OffsetSize() - 4
	var chunks []btree.Chunk
	for i := uint64(0); i < n; i++ {
		c := btree.Chunk{Offset: g.offset(i), Size: g.chunkBytes}
		if c.Address, err = br.ReadOffset(); err != nil {
			return nil, err
		}
		if client == faClientFiltered {
			if sizeBytes <= 0 {
				return nil, fmt.Errorf("%w: fixed array entry size %d", ErrUnsupported, entrySize)
			}
			if c.Size, err = br.ReadUintN(sizeBytes); err != nil {
				return nil, err
			}
			if c.FilterMask, err = br.ReadUint32(); err != nil {
				return nil, err
			}
		}
		if !r.IsUndefinedOffset(c.Address) {
			chunks = append(chunks, c)
		}
	}
	return chunks, nil
}
