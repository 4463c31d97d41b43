package superblock

import (
	"github.com/robert-malhotra/bgpack/internal/binary"
)

// New returns a version 3 superblock for a file we are creating.
func New(cfg binary.Config) *Superblock {
	return &Superblock{
		Version:    3,
		OffsetSize: uint8(cfg.OffsetSize),
		LengthSize: uint8(cfg.LengthSize),
	}
}

// Size returns the encoded size of a version 2/3 superblock.
func Size(cfg binary.Config) int {
	return 12 + 4*cfg.OffsetSize + 4
}

// Encode serializes a version 2/3 superblock, checksum included.
func (sb *Superblock) Encode() []byte {
	w := binary.NewWriter(sb.ReaderConfig())
	w.WriteBytes(Signature)
	w.WriteUint8(sb.Version)
	w.WriteUint8(sb.OffsetSize)
	w.WriteUint8(sb.LengthSize)
	w.WriteUint8(sb.Flags)
	w.WriteOffset(sb.BaseAddress)
	w.WriteUndefinedOffset() // no superblock extension
	w.WriteOffset(sb.EOFAddress)
	w.WriteOffset(sb.RootGroupAddress)
	w.AppendChecksum()
	return w.Bytes()
}
