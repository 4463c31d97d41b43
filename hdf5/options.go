package hdf5

import (
	"github.com/robert-malhotra/bgpack/internal/filter"
)

// DefaultCompression is the deflate level h5py uses for compression="gzip".
const DefaultCompression = filter.DefaultLevel

// FileOption configures file creation options.
type FileOption func(*fileOptions)

type fileOptions struct {
	offsetSize int
	lengthSize int
}

func defaultFileOptions() *fileOptions {
	return &fileOptions{
		offsetSize: 8,
		lengthSize: 8,
	}
}

// WithOffsetSize sets the size in bytes for file offsets (2, 4, or 8).
func WithOffsetSize(size int) FileOption {
	return func(o *fileOptions) {
		if size == 2 || size == 4 || size == 8 {
			o.offsetSize = size
		}
	}
}

// WithLengthSize sets the size in bytes for lengths (2, 4, or 8).
func WithLengthSize(size int) FileOption {
	return func(o *fileOptions) {
		if size == 2 || size == 4 || size == 8 {
			o.lengthSize = size
		}
	}
}

// DatasetOption configures dataset creation options.
type DatasetOption func(*datasetOptions)

// attrDef holds an attribute definition for creation. Exactly one of
// value and raw is set.
type attrDef struct {
	name  string
	value interface{}
	raw   *Attribute
}

type datasetOptions struct {
	shape      []uint64
	filters    filter.Options
	attributes []attrDef
}

func defaultDatasetOptions() *datasetOptions {
	return &datasetOptions{
		filters: filter.Options{Deflate: -1},
	}
}

// WithShape stores a flat slice as an array of the given dimensions.
// The product of dims must equal the slice length.
func WithShape(dims ...uint64) DatasetOption {
	return func(o *datasetOptions) {
		o.shape = append([]uint64{}, dims...)
	}
}

// WithCompression enables deflate at the given level (0-9). The whole
// array is stored as one compressed chunk.
func WithCompression(level int) DatasetOption {
	return func(o *datasetOptions) {
		if level >= 0 && level <= 9 {
			o.filters.Deflate = level
		}
	}
}

// WithFilters replaces the filter selection.
func WithFilters(f filter.Options) DatasetOption {
	return func(o *datasetOptions) {
		o.filters = f
	}
}

// WithShuffle enables the shuffle filter (improves compression).
func WithShuffle() DatasetOption {
	return func(o *datasetOptions) {
		o.filters.Shuffle = true
	}
}

// WithFletcher32 enables Fletcher32 checksum validation.
func WithFletcher32() DatasetOption {
	return func(o *datasetOptions) {
		o.filters.Fletcher32 = true
	}
}

// WithAttribute adds an attribute to the dataset.
// The value can be a scalar or slice of: int, int8-64, uint, uint8-64, float32, float64, string.
// Multiple WithAttribute options can be used to add multiple attributes.
func WithAttribute(name string, value interface{}) DatasetOption {
	return func(o *datasetOptions) {
		o.attributes = append(o.attributes, attrDef{name: name, value: value})
	}
}

// WithRawAttribute copies an attribute read from another file, keeping its
// name, type and shape.
func WithRawAttribute(a *Attribute) DatasetOption {
	return func(o *datasetOptions) {
		if a != nil {
			o.attributes = append(o.attributes, attrDef{name: a.Name(), raw: a})
		}
	}
}
