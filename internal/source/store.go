package source

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/robert-malhotra/bgpack/hdf5"
)

// MaskGroup is the group of seg.h5 that holds masks when present.
const MaskGroup = "mask"

// SegAttrs are the per-mask attributes carried into the packed output.
var SegAttrs = []string{"area", "label"}

// h5Store is a keyed store over one group of an HDF5 file.
type h5Store struct {
	file  *hdf5.File
	group *hdf5.Group
}

func openStore(path, group string) (*h5Store, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	g := f.Root()
	if group != "" && g.Has(group) {
		if g, err = g.OpenGroup(group); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "open %s in %s", group, path)
		}
	}
	return &h5Store{file: f, group: g}, nil
}

// Exists is a member index lookup for plain names; names with a slash
// resolve as paths.
func (s *h5Store) Exists(id string) bool {
	if strings.Contains(id, "/") {
		return s.group.Exists(id)
	}
	return s.group.Has(id)
}

func (s *h5Store) fetch(id string, attrs []string) (*Record, error) {
	ds, err := s.group.OpenDataset(id)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", id)
	}
	raw, err := ds.Raw()
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", id)
	}
	rec := &Record{Array: raw}
	for _, name := range attrs {
		if a := ds.Attr(name); a != nil {
			if rec.Attrs == nil {
				rec.Attrs = make(map[string]*hdf5.Attribute, len(attrs))
			}
			rec.Attrs[name] = a
		}
	}
	return rec, nil
}

// Close releases the file.
func (s *h5Store) Close() error {
	return s.file.Close()
}

// Group returns the path of the group keys are looked up in.
func (s *h5Store) Group() string {
	return s.group.Path()
}

// DepthStore reads depth maps keyed at the root of depth.h5.
type DepthStore struct {
	*h5Store
}

// OpenDepthStore opens a depth store.
func OpenDepthStore(path string) (*DepthStore, error) {
	s, err := openStore(path, "")
	if err != nil {
		return nil, err
	}
	return &DepthStore{s}, nil
}

// Fetch reads the depth map of id.
func (s *DepthStore) Fetch(id string) (*Record, error) {
	return s.fetch(id, nil)
}

// SegStore reads segmentation masks from seg.h5, under the mask group if
// the file has one and at the root otherwise.
type SegStore struct {
	*h5Store
}

// OpenSegStore opens a segmentation store.
func OpenSegStore(path string) (*SegStore, error) {
	s, err := openStore(path, MaskGroup)
	if err != nil {
		return nil, err
	}
	return &SegStore{s}, nil
}

// Fetch reads the mask of id with whichever of SegAttrs it carries.
func (s *SegStore) Fetch(id string) (*Record, error) {
	return s.fetch(id, SegAttrs)
}

// Attributes returns the subset of SegAttrs present on the mask of id.
// Absent keys are left out, not defaulted.
func (s *SegStore) Attributes(id string) (map[string]*hdf5.Attribute, error) {
	rec, err := s.fetch(id, SegAttrs)
	if err != nil {
		return nil, err
	}
	if rec.Attrs == nil {
		return map[string]*hdf5.Attribute{}, nil
	}
	return rec.Attrs, nil
}

var (
	_ KeyedStore = (*ImageStore)(nil)
	_ KeyedStore = (*DepthStore)(nil)
	_ KeyedStore = (*SegStore)(nil)
)
