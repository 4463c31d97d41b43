package hdf5

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/bgpack/internal/binary"
	"github.com/robert-malhotra/bgpack/internal/filter"
	"github.com/robert-malhotra/bgpack/internal/message"
)

// legacyFile assembles the layout h5py writes with default settings:
// a version 0 superblock, version 1 object headers and symbol table groups.
type legacyFile struct {
	buf []byte
}

type legacyEntry struct {
	name string
	addr uint64
	soft string
}

func (f *legacyFile) put(off uint64, b []byte) {
	if n := int(off) + len(b); n > len(f.buf) {
		f.buf = append(f.buf, make([]byte, n-len(f.buf))...)
	}
	copy(f.buf[off:], b)
}

func encodeMsg(m message.Encoder) []byte {
	w := binary.NewWriter(binary.DefaultConfig())
	m.Encode(w)
	return w.Bytes()
}

func v1Msg(typ message.Type, body []byte) []byte {
	w := binary.NewWriter(binary.DefaultConfig())
	w.WriteUint16(uint16(typ))
	w.WriteUint16(uint16((len(body) + 7) &^ 7))
	w.WriteUint8(0)
	w.WriteZeros(3)
	w.WriteBytes(body)
	w.Align(8)
	return w.Bytes()
}

func (f *legacyFile) header(addr uint64, msgs ...[]byte) {
	var body []byte
	for _, m := range msgs {
		body = append(body, m...)
	}
	w := binary.NewWriter(binary.DefaultConfig())
	w.WriteUint8(1)
	w.WriteUint8(0)
	w.WriteUint16(uint16(len(msgs)))
	w.WriteUint32(1)
	w.WriteUint32(uint32(len(body)))
	w.WriteZeros(4)
	w.WriteBytes(body)
	f.put(addr, w.Bytes())
}

// group writes a symbol table group whose header is at addr and whose
// tree, symbol node and heap follow it.
func (f *legacyFile) group(addr uint64, entries []legacyEntry) {
	btreeAddr, snodAddr, heapAddr := addr+0x100, addr+0x200, addr+0x600

	segment := []byte{0}
	offset := func(s string) uint64 {
		off := uint64(len(segment))
		segment = append(segment, s...)
		segment = append(segment, 0)
		return off
	}
	snod := binary.NewWriter(binary.DefaultConfig())
	snod.WriteString("SNOD")
	snod.WriteUint8(1)
	snod.WriteUint8(0)
	snod.WriteUint16(uint16(len(entries)))
	var last uint64
	for _, e := range entries {
		last = offset(e.name)
		snod.WriteOffset(last)
		if e.soft != "" {
			snod.WriteUndefinedOffset()
			snod.WriteUint32(2)
			snod.WriteZeros(4)
			snod.WriteUint32(uint32(offset(e.soft)))
			snod.WriteZeros(12)
			continue
		}
		snod.WriteOffset(e.addr)
		snod.WriteUint32(0)
		snod.WriteZeros(4 + 16)
	}
	for len(segment)%8 != 0 {
		segment = append(segment, 0)
	}
	f.put(snodAddr, snod.Bytes())

	lh := binary.NewWriter(binary.DefaultConfig())
	lh.WriteString("HEAP")
	lh.WriteUint8(0)
	lh.WriteZeros(3)
	lh.WriteLength(uint64(len(segment)))
	lh.WriteUndefinedOffset()
	lh.WriteOffset(heapAddr + 32)
	f.put(heapAddr, lh.Bytes())
	f.put(heapAddr+32, segment)

	tree := binary.NewWriter(binary.DefaultConfig())
	tree.WriteString("TREE")
	tree.WriteUint8(0)
	tree.WriteUint8(0)
	tree.WriteUint16(1)
	tree.WriteUndefinedOffset()
	tree.WriteUndefinedOffset()
	tree.WriteLength(0)
	tree.WriteOffset(snodAddr)
	tree.WriteLength(last)
	f.put(btreeAddr, tree.Bytes())

	st := binary.NewWriter(binary.DefaultConfig())
	st.WriteOffset(btreeAddr)
	st.WriteOffset(heapAddr)
	f.header(addr, v1Msg(message.TypeSymbolTable, st.Bytes()))
}

// dataset writes a contiguous dataset header at addr with its data at addr+0x200.
func (f *legacyFile) dataset(addr uint64, dt *message.Datatype, dims []uint64, data []byte, attrs ...*message.Attribute) {
	msgs := [][]byte{
		v1Msg(message.TypeDataspace, encodeMsg(message.NewDataspace(dims))),
		v1Msg(message.TypeDatatype, encodeMsg(dt)),
		v1Msg(message.TypeDataLayout, encodeMsg(message.NewContiguousLayout(addr+0x200, uint64(len(data))))),
	}
	for _, a := range attrs {
		msgs = append(msgs, v1Msg(message.TypeAttribute, encodeMsg(a)))
	}
	f.header(addr, msgs...)
	f.put(addr+0x200, data)
}

// chunkedDataset writes a version 3 chunked layout at addr. Each chunk is
// deflated and indexed by a single-leaf v1 B-tree at addr+0x100, with the
// chunks following from addr+0x200.
func (f *legacyFile) chunkedDataset(addr uint64, dims, chunk []uint64, data []byte) {
	const level = 4
	rowBytes := uint64(len(data)) / dims[0]
	step := chunk[0] * rowBytes
	btreeAddr, next := addr+0x100, addr+0x200
	rank := len(dims)

	key := func(size uint32, row uint64) []byte {
		w := binary.NewWriter(binary.DefaultConfig())
		w.WriteUint32(size)
		w.WriteUint32(0)
		w.WriteUint64(row)
		for i := 1; i <= rank; i++ {
			w.WriteUint64(0)
		}
		return w.Bytes()
	}
	tree := binary.NewWriter(binary.DefaultConfig())
	tree.WriteString("TREE")
	tree.WriteUint8(1)
	tree.WriteUint8(0)
	tree.WriteUint16(uint16((uint64(len(data)) + step - 1) / step))
	tree.WriteUndefinedOffset()
	tree.WriteUndefinedOffset()
	for row := uint64(0); row < dims[0]; row += chunk[0] {
		start := row * rowBytes
		enc, err := filter.NewDeflate([]uint32{level}).Encode(data[start : start+step])
		if err != nil {
			panic(err)
		}
		tree.WriteBytes(key(uint32(len(enc)), row))
		tree.WriteOffset(next)
		f.put(next, enc)
		next += uint64(len(enc)+7) &^ 7
	}
	tree.WriteBytes(key(0, dims[0]))
	f.put(btreeAddr, tree.Bytes())

	lay := binary.NewWriter(binary.DefaultConfig())
	lay.WriteUint8(3)
	lay.WriteUint8(uint8(message.LayoutChunked))
	lay.WriteUint8(uint8(rank + 1))
	lay.WriteOffset(btreeAddr)
	for _, c := range chunk {
		lay.WriteUint32(uint32(c))
	}
	lay.WriteUint32(1)

	// version 1 pipeline as h5py writes it, padded after odd client data
	fp := binary.NewWriter(binary.DefaultConfig())
	fp.WriteUint8(1)
	fp.WriteUint8(1)
	fp.WriteZeros(6)
	fp.WriteUint16(message.FilterDeflate)
	fp.WriteUint16(0)
	fp.WriteUint16(1)
	fp.WriteUint16(1)
	fp.WriteUint32(level)
	fp.WriteZeros(4)

	f.header(addr,
		v1Msg(message.TypeDataspace, encodeMsg(message.NewDataspace(dims))),
		v1Msg(message.TypeDatatype, encodeMsg(message.NewFixedPoint(1, false))),
		v1Msg(message.TypeDataLayout, lay.Bytes()),
		v1Msg(message.TypeFilterPipeline, fp.Bytes()),
	)
}

func (f *legacyFile) superblock(rootAddr uint64) {
	w := binary.NewWriter(binary.DefaultConfig())
	w.WriteBytes([]byte("\x89HDF\r\n\x1a\n"))
	w.WriteUint8(0)
	w.WriteBytes([]byte{0, 0, 0, 0, 8, 8, 0})
	w.WriteUint16(4)
	w.WriteUint16(16)
	w.WriteUint32(0)
	w.WriteOffset(0)
	w.WriteUndefinedOffset()
	w.WriteOffset(uint64(len(f.buf)))
	w.WriteUndefinedOffset()
	// root symbol table entry, no cache
	w.WriteOffset(0)
	w.WriteOffset(rootAddr)
	w.WriteUint32(0)
	w.WriteZeros(4 + 16)
	f.put(0, w.Bytes())
}

func int64Attr(name string, v int64) *message.Attribute {
	data := make([]byte, 8)
	for i := range data {
		data[i] = byte(uint64(v) >> (8 * i))
	}
	return message.NewAttribute(name, message.NewFixedPoint(8, true), message.NewDataspace(nil), data)
}

// writeLegacyFixture builds:
//
//	/depth        float32 [2 3], attr scale=1000
//	/mask/a.jpg   uint8 [2 2], attrs area=120 label=3
//	/alias        soft link to /depth
//	/tiles        uint8 [4 3] in deflated [2 3] chunks behind a v1 B-tree
func writeLegacyFixture(t *testing.T) string {
	t.Helper()
	f := &legacyFile{}
	depth := make([]byte, 0, 24)
	for _, bits := range []uint32{0x3f800000, 0x40000000, 0x40400000, 0x40800000, 0x40a00000, 0x40c00000} {
		depth = append(depth, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	f.dataset(0x1000, message.NewFloat(4), []uint64{2, 3}, depth, int64Attr("scale", 1000))
	f.dataset(0x2000, message.NewFixedPoint(1, false), []uint64{2, 2}, []byte{1, 0, 2, 2},
		int64Attr("area", 120), int64Attr("label", 3))
	f.group(0x3000, []legacyEntry{{name: "a.jpg", addr: 0x2000}})
	tiles := make([]byte, 12)
	for i := range tiles {
		tiles[i] = byte(i)
	}
	f.chunkedDataset(0x5000, []uint64{4, 3}, []uint64{2, 3}, tiles)
	f.group(0x4000, []legacyEntry{
		{name: "alias", soft: "/depth"},
		{name: "depth", addr: 0x1000},
		{name: "mask", addr: 0x3000},
		{name: "tiles", addr: 0x5000},
	})
	f.superblock(0x4000)

	p := filepath.Join(t.TempDir(), "legacy.h5")
	require.NoError(t, os.WriteFile(p, f.buf, 0o644))
	return p
}
