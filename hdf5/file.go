package hdf5

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/robert-malhotra/bgpack/internal/alloc"
	"github.com/robert-malhotra/bgpack/internal/binary"
	"github.com/robert-malhotra/bgpack/internal/heap"
	"github.com/robert-malhotra/bgpack/internal/object"
	"github.com/robert-malhotra/bgpack/internal/superblock"
)

// File represents an open HDF5 file.
type File struct {
	path       string
	file       *os.File
	reader     *binary.Reader
	superblock *superblock.Superblock
	heaps      *heap.Cache
	root       *Group
	closed     bool

	// Write support fields
	writable bool
	cfg      binary.Config
	alloc    *alloc.Allocator
}

// Open opens an HDF5 file for reading.
func Open(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	sb, err := superblock.Read(fh)
	if err != nil {
		fh.Close()
		if errors.Is(err, superblock.ErrNotHDF5) {
			return nil, fmt.Errorf("%w: %s", ErrNotHDF5, path)
		}
		return nil, fmt.Errorf("reading superblock: %w", err)
	}

	// Addresses are relative to the base address, which moves when the
	// file starts with a user block.
	var src io.ReaderAt = fh
	if sb.BaseAddress != 0 {
		src = io.NewSectionReader(fh, int64(sb.BaseAddress), 1<<62)
	}
	reader := binary.NewReader(src, sb.ReaderConfig())

	f := &File{
		path:       path,
		file:       fh,
		reader:     reader,
		superblock: sb,
		heaps:      heap.NewCache(reader),
	}

	root, err := f.groupAt(sb.RootGroupAddress, "/")
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("opening root group: %w", err)
	}
	f.root = root
	return f, nil
}

// Close releases the file. A file opened with Create is finalized first:
// group headers and the superblock are written.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.writable {
		if err := f.closeWritable(); err != nil {
			f.file.Close()
			return err
		}
	}
	return f.file.Close()
}

// Root returns the root group of the file.
func (f *File) Root() *Group {
	return f.root
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Version returns the superblock version.
func (f *File) Version() int {
	return int(f.superblock.Version)
}

// Writable reports whether the file was created for writing.
func (f *File) Writable() bool {
	return f.writable
}

// OpenGroup opens a group by path.
func (f *File) OpenGroup(path string) (*Group, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenGroup(path)
}

// OpenDataset opens a dataset by path.
func (f *File) OpenDataset(path string) (*Dataset, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenDataset(path)
}

// GetAttr returns an attribute by path.
// Path format: /group/object@attribute_name
//
// Examples:
//   - "/@root_attr" - attribute on root group
//   - "/meta@written" - attribute on group 'meta'
//   - "/seg/a.jpg@label" - attribute on a dataset
func (f *File) GetAttr(path string) (*Attribute, error) {
	if f.closed {
		return nil, ErrClosed
	}
	objectPath, attrName, err := ParseAttrPath(path)
	if err != nil {
		return nil, err
	}
	obj, err := f.root.Object(objectPath)
	if err != nil {
		return nil, fmt.Errorf("opening object %s: %w", objectPath, err)
	}
	var attr *Attribute
	switch o := obj.(type) {
	case *Group:
		attr = o.Attr(attrName)
	case *Dataset:
		attr = o.Attr(attrName)
	}
	if attr == nil {
		return nil, fmt.Errorf("%w: attribute %s", ErrNotFound, path)
	}
	return attr, nil
}

// ReadAttr reads an attribute value by path. It combines GetAttr and
// Attribute.Value.
//
//	val, err := f.ReadAttr("/meta@written")
func (f *File) ReadAttr(path string) (interface{}, error) {
	attr, err := f.GetAttr(path)
	if err != nil {
		return nil, err
	}
	return attr.Value()
}

// objectAt opens the group or dataset whose header is at address.
func (f *File) objectAt(address uint64, path string) (interface{}, error) {
	header, err := object.Read(f.reader, address)
	if err != nil {
		return nil, fmt.Errorf("reading object header of %s: %w", path, err)
	}
	switch {
	case header.IsGroup():
		return &Group{file: f, path: path, header: header}, nil
	case header.IsDataset():
		return newDataset(f, path, header)
	default:
		return nil, fmt.Errorf("%w: %s is neither a group nor a dataset", ErrUnsupported, path)
	}
}

func (f *File) groupAt(address uint64, path string) (*Group, error) {
	obj, err := f.objectAt(address, path)
	if err != nil {
		return nil, err
	}
	g, ok := obj.(*Group)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotGroup, path)
	}
	return g, nil
}

// resolve fetches the bytes behind a variable-length element.
func (f *File) resolve(ref heap.Ref) ([]byte, error) {
	return f.heaps.Resolve(ref)
}
