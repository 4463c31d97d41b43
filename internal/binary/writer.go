package binary

import (
	"encoding/binary"
)

// Writer encodes metadata blocks into memory. Blocks are assembled first
// and then written to the file in one WriteAt, so sizes are always known
// before space is allocated.
type Writer struct {
	buf        []byte
	order      binary.ByteOrder
	offsetSize int
	lengthSize int
}

// NewWriter creates an empty encoder with the given configuration.
func NewWriter(cfg Config) *Writer {
	return &Writer{
		order:      cfg.ByteOrder,
		offsetSize: cfg.OffsetSize,
		lengthSize: cfg.LengthSize,
	}
}

// Sub returns an empty encoder sharing this encoder's configuration.
func (w *Writer) Sub() *Writer {
	return &Writer{order: w.order, offsetSize: w.offsetSize, lengthSize: w.lengthSize}
}

// Bytes returns the encoded bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes encoded so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

// WriteString appends s without a terminator.
func (w *Writer) WriteString(s string) {
	w.buf = append(w.buf, s...)
}

// WriteUint8 appends an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteUint16 appends an unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	w.order.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint32 appends an unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint64 appends an unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	w.order.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUintN appends v using exactly n bytes, little-endian.
func (w *Writer) WriteUintN(v uint64, n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, byte(v>>(8*uint(i))))
	}
}

// WriteOffset appends a file address.
func (w *Writer) WriteOffset(v uint64) {
	w.WriteUintN(v, w.offsetSize)
}

// WriteLength appends a length field.
func (w *Writer) WriteLength(v uint64) {
	w.WriteUintN(v, w.lengthSize)
}

// WriteUndefinedOffset appends the all-ones "undefined address".
func (w *Writer) WriteUndefinedOffset() {
	w.WriteOffset(w.UndefinedOffset())
}

// UndefinedOffset returns the all-ones address for the configured size.
func (w *Writer) UndefinedOffset() uint64 {
	return undefined(w.offsetSize)
}

// WriteZeros appends n zero bytes.
func (w *Writer) WriteZeros(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// Align pads with zeros up to the next multiple of alignment, measured
// from the start of the encoder.
func (w *Writer) Align(alignment int) {
	if alignment <= 1 {
		return
	}
	if rem := len(w.buf) % alignment; rem != 0 {
		w.WriteZeros(alignment - rem)
	}
}

// PutUint32 overwrites four bytes at pos, used to back-patch sizes and checksums.
func (w *Writer) PutUint32(pos int, v uint32) {
	w.order.PutUint32(w.buf[pos:pos+4], v)
}

// AppendChecksum appends the lookup3 checksum of everything encoded so far.
func (w *Writer) AppendChecksum() {
	w.WriteUint32(Lookup3Checksum(w.buf))
}

// OffsetSize returns the configured offset size in bytes.
func (w *Writer) OffsetSize() int {
	return w.offsetSize
}

// LengthSize returns the configured length size in bytes.
func (w *Writer) LengthSize() int {
	return w.lengthSize
}

// ByteOrder returns the configured byte order.
func (w *Writer) ByteOrder() binary.ByteOrder {
	return w.order
}
