package alloc

import (
	"fmt"
	"sort"
	"sync"
)

// Alignment of every block.
const Alignment = 8

// Block is one allocated range.
type Block struct {
	Addr uint64
	Size uint64
	Tag  string
}

// Stats summarizes allocations by tag.
type Stats struct {
	Blocks  int
	Bytes   uint64
	Largest uint64
	ByTag   map[string]uint64
}

// Allocator is safe for concurrent use.
type Allocator struct {
	mu     sync.Mutex
	base   uint64
	eof    uint64
	blocks []Block
}

// New returns an allocator whose first block starts at or after base.
func New(base uint64) *Allocator {
	return &Allocator{base: base, eof: base}
}

// Alloc reserves size bytes and returns their address. A zero-size block
// gets the current end of file and reserves nothing.
func (a *Allocator) Alloc(size uint64, tag string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if rem := a.eof % Alignment; rem != 0 {
		a.eof += Alignment - rem
	}
	addr := a.eof
	if size == 0 {
		return addr
	}
	a.eof += size
	a.blocks = append(a.blocks, Block{Addr: addr, Size: size, Tag: tag})
	return addr
}

// EOF returns the end of the last block.
func (a *Allocator) EOF() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.eof
}

// Blocks returns a copy of all blocks in allocation order.
func (a *Allocator) Blocks() []Block {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Block(nil), a.blocks...)
}

// Stats returns totals over all blocks.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := Stats{Blocks: len(a.blocks), ByTag: make(map[string]uint64)}
	for _, b := range a.blocks {
		s.Bytes += b.Size
		s.ByTag[b.Tag] += b.Size
		if b.Size > s.Largest {
			s.Largest = b.Size
		}
	}
	return s
}

// Validate checks that blocks lie between the base and EOF and do not overlap.
func (a *Allocator) Validate() error {
	blocks := a.Blocks()
	eof := a.EOF()
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Addr < blocks[j].Addr })
	for i, b := range blocks {
		if b.Addr < a.base || b.Addr+b.Size > eof {
			return fmt.Errorf("block %q at 0x%x size %d outside [0x%x, 0x%x)", b.Tag, b.Addr, b.Size, a.base, eof)
		}
		if i > 0 {
			prev := blocks[i-1]
			if prev.Addr+prev.Size > b.Addr {
				return fmt.Errorf("block %q at 0x%x overlaps %q at 0x%x", b.Tag, b.Addr, prev.Tag, prev.Addr)
			}
		}
	}
	return nil
}
