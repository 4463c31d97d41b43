package btree

import (
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
	"github.com/robert-malhotra/bgpack/internal/heap"
)

// GroupEntry is one member of an old-style group.
type GroupEntry struct {
	Name          string
	ObjectAddress uint64
	Soft          bool
	SoftValue     string
}

const (
	cacheNone = 0
	cacheHard = 1
	cacheSoft = 2
)

// GroupEntries lists the members of the group indexed by the tree at
// address, with names from names.
func GroupEntries(r *binary.Reader, address uint64, names *heap.Local) ([]GroupEntry, error) {
	var out []GroupEntry
	err := walk(r, address, nodeGroup, r.LengthSize(), 0, func(_ []byte, snod uint64) error {
		entries, err := readSymbolNode(r, snod, names)
		if err != nil {
			return err
		}
		out = append(out, entries...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func readSymbolNode(r *binary.Reader, address uint64, names *heap.Local) ([]GroupEntry, error) {
	nr := r.At(int64(address))
	hdr, err := nr.ReadBytes(8)
	if err != nil {
		return nil, fmt.Errorf("symbol node at %d: %w", address, err)
	}
	if string(hdr[:4]) != "SNOD" || hdr[4] != 1 {
		return nil, fmt.Errorf("%w: symbol node at %d", ErrInvalidNode, address)
	}
	count := int(r.ByteOrder().Uint16(hdr[6:8]))

	entries := make([]GroupEntry, 0, count)
	for i := 0; i < count; i++ {
		e, err := ReadSymbolEntry(nr, names)
		if err != nil {
			return nil, fmt.Errorf("symbol node at %d entry %d: %w", address, i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ReadSymbolEntry reads one symbol table entry at r's position and leaves
// r after it. The root group's entry in a version 0 superblock has the same
// layout.
func ReadSymbolEntry(r *binary.Reader, names *heap.Local) (GroupEntry, error) {
	var e GroupEntry
	nameOff, err := r.ReadOffset()
	if err != nil {
		return e, err
	}
	if e.ObjectAddress, err = r.ReadOffset(); err != nil {
		return e, err
	}
	cache, err := r.ReadUint32()
	if err != nil {
		return e, err
	}
	r.Skip(4)
	scratch, err := r.ReadBytes(16)
	if err != nil {
		return e, err
	}
	if names != nil {
		if e.Name, err = names.String(nameOff); err != nil {
			return e, err
		}
	}
	if cache == cacheSoft && names != nil {
		e.Soft = true
		if e.SoftValue, err = names.String(uint64(r.ByteOrder().Uint32(scratch[:4]))); err != nil {
			return e, err
		}
	}
	return e, nil
}
