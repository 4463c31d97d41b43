package hdf5

import (
	"fmt"
	"path"

	"github.com/robert-malhotra/bgpack/internal/dtype"
	"github.com/robert-malhotra/bgpack/internal/filter"
	"github.com/robert-malhotra/bgpack/internal/layout"
	"github.com/robert-malhotra/bgpack/internal/message"
	"github.com/robert-malhotra/bgpack/internal/object"
)

// Dataset represents an HDF5 dataset.
type Dataset struct {
	file      *File
	path      string
	header    *object.Header
	dataspace *message.Dataspace
	datatype  *message.Datatype
	layout    *message.DataLayout
	filters   *message.FilterPipeline
}

func newDataset(f *File, path string, header *object.Header) (*Dataset, error) {
	d := &Dataset{
		file:      f,
		path:      path,
		header:    header,
		dataspace: header.Dataspace(),
		datatype:  header.Datatype(),
		layout:    header.DataLayout(),
		filters:   header.FilterPipeline(),
	}
	switch {
	case d.dataspace == nil:
		return nil, fmt.Errorf("dataset %s missing dataspace message", path)
	case d.datatype == nil:
		return nil, fmt.Errorf("dataset %s missing datatype message", path)
	case d.layout == nil:
		return nil, fmt.Errorf("dataset %s missing layout message", path)
	}
	return d, nil
}

// Name returns the dataset name (last component of path).
func (d *Dataset) Name() string {
	return path.Base(d.path)
}

// Path returns the full path to this dataset.
func (d *Dataset) Path() string {
	return d.path
}

// Shape returns the dimensions of the dataset. Scalars have no dimensions.
func (d *Dataset) Shape() []uint64 {
	if d.dataspace.IsScalar() {
		return nil
	}
	return append([]uint64(nil), d.dataspace.Dimensions...)
}

// Rank returns the number of dimensions.
func (d *Dataset) Rank() int {
	return len(d.dataspace.Dimensions)
}

// NumElements returns the total number of elements.
func (d *Dataset) NumElements() uint64 {
	return d.dataspace.NumElements()
}

// IsScalar returns true if the dataset is a scalar (single value).
func (d *Dataset) IsScalar() bool {
	return d.dataspace.IsScalar()
}

// Datatype returns the element type.
func (d *Dataset) Datatype() *Datatype {
	return d.datatype
}

// Storage describes how the elements are laid out in the file, for
// diagnostics.
func (d *Dataset) Storage() string {
	switch d.layout.Class {
	case message.LayoutCompact:
		return "compact"
	case message.LayoutContiguous:
		return "contiguous"
	case message.LayoutChunked:
		names := map[message.ChunkIndexType]string{
			message.ChunkIndexBTreeV1:       "btree",
			message.ChunkIndexSingle:        "single",
			message.ChunkIndexImplicit:      "implicit",
			message.ChunkIndexFixedArray:    "fixed array",
			message.ChunkIndexExtensibleArr: "extensible array",
			message.ChunkIndexBTreeV2:       "btree v2",
		}
		if d.layout.Version < 4 {
			return fmt.Sprintf("chunked %v (btree)", d.layout.ChunkDims)
		}
		return fmt.Sprintf("chunked %v (%s)", d.layout.ChunkDims, names[d.layout.IndexType])
	default:
		return fmt.Sprintf("layout class %d", d.layout.Class)
	}
}

// Filters returns the names of the filters applied to the data, in order.
func (d *Dataset) Filters() []string {
	if d.filters == nil {
		return nil
	}
	out := make([]string, len(d.filters.Filters))
	for i, info := range d.filters.Filters {
		out[i] = filter.Name(info)
	}
	return out
}

// ReadRaw reads all elements as stored bytes.
func (d *Dataset) ReadRaw() ([]byte, error) {
	if d.file.closed {
		return nil, ErrClosed
	}
	data, err := layout.Read(d.file.reader, d.layout, d.Shape(), d.datatype.Size, d.filters)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.path, err)
	}
	return data, nil
}

// Raw reads the dataset with its shape and type, ready to be written to
// another file with WriteRaw.
func (d *Dataset) Raw() (*Raw, error) {
	data, err := d.ReadRaw()
	if err != nil {
		return nil, err
	}
	return &Raw{Shape: d.Shape(), Type: d.datatype, Data: data}, nil
}

// Read reads a numeric dataset, converting elements to T.
func Read[T dtype.Number](d *Dataset) ([]T, error) {
	data, err := d.ReadRaw()
	if err != nil {
		return nil, err
	}
	vals, err := dtype.Convert[T](d.datatype, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.path, err)
	}
	return vals, nil
}

// ReadFloat64 reads the dataset as float64 values.
func (d *Dataset) ReadFloat64() ([]float64, error) { return Read[float64](d) }

// ReadFloat32 reads the dataset as float32 values.
func (d *Dataset) ReadFloat32() ([]float32, error) { return Read[float32](d) }

// ReadInt64 reads the dataset as int64 values.
func (d *Dataset) ReadInt64() ([]int64, error) { return Read[int64](d) }

// ReadInt32 reads the dataset as int32 values.
func (d *Dataset) ReadInt32() ([]int32, error) { return Read[int32](d) }

// ReadUint8 reads the dataset as uint8 values.
func (d *Dataset) ReadUint8() ([]uint8, error) { return Read[uint8](d) }

// ReadStrings reads a fixed or variable-length string dataset.
func (d *Dataset) ReadStrings() ([]string, error) {
	data, err := d.ReadRaw()
	if err != nil {
		return nil, err
	}
	strs, err := dtype.Strings(d.datatype, data, d.file.resolve)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.path, err)
	}
	return strs, nil
}

// Attrs returns the attribute names for this dataset.
func (d *Dataset) Attrs() []string {
	return attrNames(d.header.Attributes())
}

// Attr returns an attribute by name, or nil if not found.
func (d *Dataset) Attr(name string) *Attribute {
	return findAttr(d.file, d.header.Attributes(), name)
}

// HasAttr returns true if the dataset has an attribute with the given name.
func (d *Dataset) HasAttr(name string) bool {
	return d.Attr(name) != nil
}
