package hdf5

import (
	"fmt"
	"strings"

	"github.com/robert-malhotra/bgpack/internal/layout"
	"github.com/robert-malhotra/bgpack/internal/message"
	"github.com/robert-malhotra/bgpack/internal/object"
)

// CreateDataset writes data as a new dataset and links it as name. data is
// a number, a string or a slice of either; use WithShape for more than one
// dimension. Strings are stored fixed-width, like numpy's "S" dtype.
//
// A name containing "/" creates missing intermediate groups. An existing
// link of the same name is replaced.
func (g *Group) CreateDataset(name string, data interface{}, opts ...DatasetOption) (*Dataset, error) {
	if err := g.file.checkWritable(); err != nil {
		return nil, err
	}
	o := applyDatasetOptions(opts)
	dt, b, dims, err := encodeValue(data)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}
	if o.shape != nil {
		if dims, err = reshape(dims, o.shape); err != nil {
			return nil, err
		}
	}
	return g.createDataset(name, &Raw{Shape: dims, Type: dt, Data: b}, o)
}

// CreateStrings writes strs as a one-dimensional fixed-width byte string
// dataset, null padded to the longest string.
func (g *Group) CreateStrings(name string, strs []string, opts ...DatasetOption) (*Dataset, error) {
	if strs == nil {
		strs = []string{}
	}
	return g.CreateDataset(name, strs, opts...)
}

// WriteRaw writes an array, typically one read with Dataset.Raw from
// another file, as a new dataset.
func (g *Group) WriteRaw(name string, raw *Raw, opts ...DatasetOption) (*Dataset, error) {
	if err := g.file.checkWritable(); err != nil {
		return nil, err
	}
	if raw == nil || raw.Type == nil {
		return nil, fmt.Errorf("dataset %q: no type", name)
	}
	if !portable(raw.Type) {
		return nil, fmt.Errorf("%w: writing dataset %q of type %s", ErrUnsupported, name, raw.Type)
	}
	if want := raw.NumElements() * uint64(raw.Type.Size); uint64(len(raw.Data)) != want {
		return nil, fmt.Errorf("%w: dataset %q has %d bytes, shape %v needs %d", ErrShape, name, len(raw.Data), raw.Shape, want)
	}
	return g.createDataset(name, raw, applyDatasetOptions(opts))
}

func applyDatasetOptions(opts []DatasetOption) *datasetOptions {
	o := defaultDatasetOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (g *Group) createDataset(name string, raw *Raw, o *datasetOptions) (*Dataset, error) {
	parent, base := g, strings.Trim(name, "/")
	if i := strings.LastIndex(base, "/"); i >= 0 {
		var err error
		if parent, err = g.RequireGroup(base[:i]); err != nil {
			return nil, err
		}
		base = base[i+1:]
	}
	if err := checkName(base); err != nil {
		return nil, err
	}

	f := g.file
	dims := raw.Shape
	l, pipeline, err := layout.Write(f.file, f.alloc, f.cfg, raw.Data, dims, raw.Type.Size, o.filters.Message(raw.Type.Size))
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}

	var attrs []*message.Attribute
	for _, def := range o.attributes {
		value := def.value
		if def.raw != nil {
			value = def.raw
		}
		a, err := f.newAttribute(def.name, value)
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", name, err)
		}
		attrs = putAttr(attrs, a)
	}

	msgs := object.DatasetMessages(message.NewDataspace(dims), raw.Type, l, pipeline, attrs)
	h, err := f.writeHeader(msgs, 0, "dataset header")
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}
	parent.link(member{name: base, addr: h.Address})
	return newDataset(f, childPath(parent.path, base), h)
}
