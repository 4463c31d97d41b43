package heap

import (
	"fmt"
	"sync"

	"github.com/robert-malhotra/bgpack/internal/binary"
)

// Ref locates one variable-length element: Length units of the base type
// stored as object Index of the collection at Collection.
type Ref struct {
	Length     uint32
	Collection uint64
	Index      uint32
}

// RefSize returns the encoded size of a Ref.
func RefSize(offsetSize int) int {
	return 4 + offsetSize + 4
}

// DecodeRef decodes a variable-length element.
func DecodeRef(data []byte, offsetSize int) (Ref, error) {
	if len(data) < RefSize(offsetSize) {
		return Ref{}, fmt.Errorf("%w: variable-length element of %d bytes", ErrInvalidHeap, len(data))
	}
	return Ref{
		Length:     uint32(binary.DecodeUint(data[:4])),
		Collection: binary.DecodeUint(data[4 : 4+offsetSize]),
		Index:      uint32(binary.DecodeUint(data[4+offsetSize : 8+offsetSize])),
	}, nil
}

// Encode appends the element encoding of ref.
func (ref Ref) Encode(w *binary.Writer) {
	w.WriteUint32(ref.Length)
	w.WriteOffset(ref.Collection)
	w.WriteUint32(ref.Index)
}

// Collection is a parsed global heap collection.
type Collection struct {
	objects map[uint32][]byte
}

// ReadCollection reads the global heap collection at address.
func ReadCollection(r *binary.Reader, address uint64) (*Collection, error) {
	hr := r.At(int64(address))
	hdr, err := hr.ReadBytes(8)
	if err != nil {
		return nil, fmt.Errorf("global heap at %d: %w", address, err)
	}
	if string(hdr[:4]) != "GCOL" || hdr[4] != 1 {
		return nil, fmt.Errorf("%w: global heap at %d", ErrInvalidHeap, address)
	}
	size, err := hr.ReadLength()
	if err != nil {
		return nil, err
	}
	end := int64(address + size)
	objHdr := int64(8 + r.LengthSize())

	c := &Collection{objects: make(map[uint32][]byte)}
	for hr.Pos()+objHdr <= end {
		index, err := hr.ReadUint16()
		if err != nil {
			return nil, err
		}
		if index == 0 {
			break // free space runs to the end
		}
		hr.Skip(6) // reference count, reserved
		n, err := hr.ReadLength()
		if err != nil {
			return nil, err
		}
		if hr.Pos()+int64(n) > end {
			return nil, fmt.Errorf("%w: object %d overruns collection", ErrInvalidHeap, index)
		}
		data, err := hr.ReadBytes(int(n))
		if err != nil {
			return nil, err
		}
		c.objects[uint32(index)] = data
		hr.Align(8)
	}
	return c, nil
}

// Object returns the bytes of object index.
func (c *Collection) Object(index uint32) ([]byte, error) {
	data, ok := c.objects[index]
	if !ok {
		return nil, fmt.Errorf("%w: no object %d", ErrInvalidHeap, index)
	}
	return data, nil
}

// Cache reads each collection once. Reads of variable-length strings
// usually hit the same few collections.
type Cache struct {
	r  *binary.Reader
	mu sync.Mutex
	m  map[uint64]*Collection
}

func NewCache(r *binary.Reader) *Cache {
	return &Cache{r: r, m: make(map[uint64]*Collection)}
}

// Resolve returns the bytes ref points to. The empty element has no
// collection and resolves to nil.
func (c *Cache) Resolve(ref Ref) ([]byte, error) {
	if ref.Length == 0 && (ref.Collection == 0 || c.r.IsUndefinedOffset(ref.Collection)) {
		return nil, nil
	}
	c.mu.Lock()
	col, ok := c.m[ref.Collection]
	c.mu.Unlock()
	if !ok {
		var err error
		if col, err = ReadCollection(c.r, ref.Collection); err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.m[ref.Collection] = col
		c.mu.Unlock()
	}
	return col.Object(ref.Index)
}
