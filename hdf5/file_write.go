package hdf5

import (
	"fmt"
	"os"

	"github.com/robert-malhotra/bgpack/internal/alloc"
	"github.com/robert-malhotra/bgpack/internal/binary"
	"github.com/robert-malhotra/bgpack/internal/heap"
	"github.com/robert-malhotra/bgpack/internal/message"
	"github.com/robert-malhotra/bgpack/internal/object"
	"github.com/robert-malhotra/bgpack/internal/superblock"
)

// Create creates a new HDF5 file, truncating any existing file at path.
//
// Array data is written as soon as a dataset is created. Group headers and
// the superblock are written by Close, so a file that is never closed is
// not readable.
func Create(path string, opts ...FileOption) (*File, error) {
	o := defaultFileOptions()
	for _, opt := range opts {
		opt(o)
	}
	cfg := binary.DefaultConfig()
	cfg.OffsetSize = o.offsetSize
	cfg.LengthSize = o.lengthSize
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fh, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}

	reader := binary.NewReader(fh, cfg)
	f := &File{
		path:       path,
		file:       fh,
		reader:     reader,
		superblock: superblock.New(cfg),
		heaps:      heap.NewCache(reader),
		writable:   true,
		cfg:        cfg,
		alloc:      alloc.New(uint64(superblock.Size(cfg))),
	}
	f.root = newGroup(f, "/")
	return f, nil
}

// SpaceStats reports the space allocated so far in a file being written.
func (f *File) SpaceStats() alloc.Stats {
	if f.alloc == nil {
		return alloc.Stats{}
	}
	return f.alloc.Stats()
}

func (f *File) closeWritable() error {
	rootAddr, err := f.root.flush()
	if err != nil {
		return fmt.Errorf("writing groups: %w", err)
	}
	if err := f.alloc.Validate(); err != nil {
		return fmt.Errorf("allocation: %w", err)
	}

	f.superblock.RootGroupAddress = rootAddr
	f.superblock.EOFAddress = f.alloc.EOF()
	if _, err := f.file.WriteAt(f.superblock.Encode(), 0); err != nil {
		return fmt.Errorf("writing superblock: %w", err)
	}
	// The reference library rejects files shorter than the end-of-file address.
	if err := f.file.Truncate(int64(f.superblock.EOFAddress)); err != nil {
		return fmt.Errorf("setting file size: %w", err)
	}
	return nil
}

func (f *File) checkWritable() error {
	if f.closed {
		return ErrClosed
	}
	if !f.writable {
		return ErrReadOnly
	}
	return nil
}

// writeBlock allocates space for data and writes it.
func (f *File) writeBlock(data []byte, tag string) (uint64, error) {
	addr := f.alloc.Alloc(uint64(len(data)), tag)
	if _, err := f.file.WriteAt(data, int64(addr)); err != nil {
		return 0, fmt.Errorf("writing %s: %w", tag, err)
	}
	return addr, nil
}

// writeHeader encodes and writes an object header and returns it as a
// reader would see it.
func (f *File) writeHeader(msgs []message.Encoder, minChunk int, tag string) (*object.Header, error) {
	buf, err := object.Encode(f.cfg, msgs, minChunk)
	if err != nil {
		return nil, err
	}
	addr, err := f.writeBlock(buf, tag)
	if err != nil {
		return nil, err
	}
	h := &object.Header{Version: 2, Address: addr, Messages: make([]message.Message, len(msgs))}
	for i, m := range msgs {
		h.Messages[i] = m
	}
	return h, nil
}

// varStrings stores strs in a new global heap collection and returns the
// variable-length string type and element references, as h5py writes str.
func (f *File) varStrings(strs []string) (*message.Datatype, []byte, error) {
	b := heap.NewBuilder(f.cfg)
	idx := make([]uint32, len(strs))
	for i, s := range strs {
		idx[i] = b.Add([]byte(s))
	}
	var addr uint64
	if b.Len() > 0 {
		var err error
		if addr, err = f.writeBlock(b.Encode(), "global heap"); err != nil {
			return nil, nil, err
		}
	}
	w := binary.NewWriter(f.cfg)
	for i, s := range strs {
		heap.Ref{Length: uint32(len(s)), Collection: addr, Index: idx[i]}.Encode(w)
	}
	return message.NewVarLenString(message.CharsetUTF8, f.cfg.OffsetSize), w.Bytes(), nil
}

// newAttribute encodes value as an attribute message. A string becomes a
// scalar variable-length UTF-8 string; other values are encoded as by
// CreateDataset. An *Attribute is copied and a *Raw keeps its shape.
func (f *File) newAttribute(name string, value interface{}) (*message.Attribute, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty attribute name", ErrInvalidPath)
	}
	switch v := value.(type) {
	case *Attribute:
		return f.copyAttribute(name, v)
	case string:
		dt, data, err := f.varStrings([]string{v})
		if err != nil {
			return nil, err
		}
		return message.NewAttribute(name, dt, message.NewDataspace(nil), data), nil
	case *Raw:
		if v == nil || v.Type == nil || !portable(v.Type) {
			return nil, fmt.Errorf("%w: attribute %q", ErrUnsupported, name)
		}
		if want := v.NumElements() * uint64(v.Type.Size); uint64(len(v.Data)) != want {
			return nil, fmt.Errorf("%w: attribute %q has %d bytes, shape %v needs %d", ErrShape, name, len(v.Data), v.Shape, want)
		}
		return message.NewAttribute(name, v.Type, message.NewDataspace(v.Shape), v.Data), nil
	}
	dt, data, dims, err := encodeValue(value)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", name, err)
	}
	return message.NewAttribute(name, dt, message.NewDataspace(dims), data), nil
}

// copyAttribute re-encodes an attribute from any open file. Strings are
// moved into this file's heap; other heap references cannot be carried over.
func (f *File) copyAttribute(name string, a *Attribute) (*message.Attribute, error) {
	ds := *a.msg.Dataspace
	ds.MaxDims = nil
	dt := a.msg.Datatype
	if dt.Class == message.ClassVarLen && dt.IsVarLenString {
		strs, err := a.Strings()
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		vdt, data, err := f.varStrings(strs)
		if err != nil {
			return nil, err
		}
		return message.NewAttribute(name, vdt, &ds, data), nil
	}
	if !portable(dt) {
		return nil, fmt.Errorf("%w: copying attribute %q of type %s", ErrUnsupported, name, dt)
	}
	return message.NewAttribute(name, dt, &ds, a.msg.Data), nil
}

// portable reports whether elements of dt are self-contained, holding no
// addresses into the file they came from.
func portable(dt *message.Datatype) bool {
	switch dt.Class {
	case message.ClassVarLen, message.ClassReference:
		return false
	case message.ClassArray, message.ClassEnum:
		return dt.Base == nil || portable(dt.Base)
	case message.ClassCompound:
		for _, m := range dt.Members {
			if !portable(m.Type) {
				return false
			}
		}
	}
	return true
}
