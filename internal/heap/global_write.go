package heap

import (
	"github.com/robert-malhotra/bgpack/internal/binary"
)

// MinCollectionSize is the smallest collection the reference library
// creates. Readers that cache collections by size expect at least this.
const MinCollectionSize = 4096

// Builder assembles one global heap collection.
type Builder struct {
	cfg     binary.Config
	objects [][]byte
}

func NewBuilder(cfg binary.Config) *Builder {
	return &Builder{cfg: cfg}
}

// Add stores data as the next object and returns its index.
func (b *Builder) Add(data []byte) uint32 {
	b.objects = append(b.objects, data)
	return uint32(len(b.objects))
}

// Len returns the number of objects added.
func (b *Builder) Len() int {
	return len(b.objects)
}

// Encode returns the collection. Unused space at the end is described by
// a free-space object with index 0.
func (b *Builder) Encode() []byte {
	w := binary.NewWriter(b.cfg)
	w.WriteString("GCOL")
	w.WriteUint8(1)
	w.WriteZeros(3)
	sizePos := w.Len()
	w.WriteLength(0)
	for i, obj := range b.objects {
		w.WriteUint16(uint16(i + 1))
		w.WriteUint16(1) // reference count
		w.WriteZeros(4)
		w.WriteLength(uint64(len(obj)))
		w.WriteBytes(obj)
		w.Align(8)
	}
	objHdr := 8 + b.cfg.LengthSize
	if free := MinCollectionSize - w.Len(); free > 0 {
		if free < objHdr {
			free = objHdr
		}
		w.WriteUint16(0)
		w.WriteUint16(0)
		w.WriteZeros(4)
		w.WriteLength(uint64(free))
		w.WriteZeros(free - objHdr)
	}
	out := w.Bytes()
	size := binary.NewWriter(b.cfg)
	size.WriteLength(uint64(len(out)))
	copy(out[sizePos:], size.Bytes())
	return out
}
