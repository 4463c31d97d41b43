package superblock

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/bgpack/internal/binary"
)

// Signature is the 8-byte format signature that starts every superblock.
var Signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

// The superblock may follow a user block of 0, 512, 1024, ... bytes.
var searchOffsets = []int64{0, 512, 1024, 2048, 4096, 8192}

var (
	ErrNotHDF5            = errors.New("not an HDF5 file: signature not found")
	ErrUnsupportedVersion = errors.New("unsupported superblock version")
	ErrChecksum           = errors.New("superblock checksum mismatch")
)

// Superblock holds what is needed to locate the root group and size
// addresses for the rest of the file.
type Superblock struct {
	Version    uint8
	OffsetSize uint8
	LengthSize uint8
	Flags      uint8

	BaseAddress uint64
	EOFAddress  uint64

	// RootGroupAddress is the object header of the root group.
	RootGroupAddress uint64

	// Cached symbol table of the root group (v0/v1 scratch pad). Zero
	// when the cache type is not 1.
	RootBTreeAddress uint64
	RootHeapAddress  uint64

	FileOffset int64
}

// Read locates and parses the superblock of r.
func Read(r io.ReaderAt) (*Superblock, error) {
	sig := make([]byte, 9)
	for _, off := range searchOffsets {
		if n, _ := r.ReadAt(sig, off); n < len(sig) {
			break
		}
		if !bytes.Equal(sig[:8], Signature) {
			continue
		}

		br := binary.NewReader(r, binary.DefaultConfig()).At(off + 9)
		var (
			sb  *Superblock
			err error
		)
		switch v := sig[8]; v {
		case 0, 1:
			sb, err = readV0(br, v, r)
		case 2, 3:
			sb, err = readV2(br, v, r, off)
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
		}
		if err != nil {
			return nil, err
		}
		sb.FileOffset = off
		return sb, nil
	}
	return nil, ErrNotHDF5
}

// ReaderConfig returns the binary configuration described by the superblock.
func (sb *Superblock) ReaderConfig() binary.Config {
	cfg := binary.DefaultConfig()
	cfg.OffsetSize = int(sb.OffsetSize)
	cfg.LengthSize = int(sb.LengthSize)
	return cfg
}

func readV0(r *binary.Reader, version uint8, src io.ReaderAt) (*Superblock, error) {
	// free-space version, root entry version, reserved, shared header version
	hdr, err := r.ReadBytes(7)
	if err != nil {
		return nil, fmt.Errorf("reading superblock: %w", err)
	}
	sb := &Superblock{Version: version, OffsetSize: hdr[4], LengthSize: hdr[5]}
	cfg := sb.ReaderConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// group K values (2+2) and consistency flags (4)
	r.Skip(8)
	if version == 1 {
		// indexed storage K and reserved
		r.Skip(4)
	}

	r = binary.NewReader(src, cfg).At(r.Pos())
	if sb.BaseAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}
	r.Skip(int64(cfg.OffsetSize)) // free-space info
	if sb.EOFAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}
	r.Skip(int64(cfg.OffsetSize)) // driver info

	// root group symbol table entry
	r.Skip(int64(cfg.OffsetSize)) // link name offset
	if sb.RootGroupAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}
	cacheType, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	r.Skip(4)
	if cacheType == 1 {
		if sb.RootBTreeAddress, err = r.ReadOffset(); err != nil {
			return nil, err
		}
		if sb.RootHeapAddress, err = r.ReadOffset(); err != nil {
			return nil, err
		}
	}
	return sb, nil
}

func readV2(r *binary.Reader, version uint8, src io.ReaderAt, off int64) (*Superblock, error) {
	hdr, err := r.ReadBytes(3)
	if err != nil {
		return nil, fmt.Errorf("reading superblock: %w", err)
	}
	sb := &Superblock{Version: version, OffsetSize: hdr[0], LengthSize: hdr[1], Flags: hdr[2]}
	cfg := sb.ReaderConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r = binary.NewReader(src, cfg).At(r.Pos())
	if sb.BaseAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}
	r.Skip(int64(cfg.OffsetSize)) // superblock extension
	if sb.EOFAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}
	if sb.RootGroupAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}

	end := r.Pos()
	stored, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	body, err := binary.NewReader(src, cfg).At(off).ReadBytes(int(end - off))
	if err != nil {
		return nil, err
	}
	if binary.Lookup3Checksum(body) != stored {
		return nil, ErrChecksum
	}
	return sb, nil
}
