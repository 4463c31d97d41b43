package pack

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/robert-malhotra/bgpack/hdf5"
	"github.com/robert-malhotra/bgpack/internal/names"
	"github.com/robert-malhotra/bgpack/internal/source"
)

// Output group and dataset names.
const (
	GroupImage    = "image"
	GroupDepth    = "depth"
	GroupSeg      = "seg"
	GroupMeta     = "meta"
	OriginalNames = "original_imnames"
)

// ContainerWriter owns the output container for the length of a run.
type ContainerWriter struct {
	path  string
	file  *hdf5.File
	image *hdf5.Group
	depth *hdf5.Group
	seg   *hdf5.Group
	meta  *hdf5.Group
	level int
}

// NewContainerWriter replaces whatever is at path with a new container
// holding the empty image, depth, seg and meta groups.
func NewContainerWriter(path string) (*ContainerWriter, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, &WriteTargetError{Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &WriteTargetError{Path: path, Err: err}
	}
	f, err := hdf5.Create(path)
	if err != nil {
		return nil, &WriteTargetError{Path: path, Err: err}
	}

	w := &ContainerWriter{path: path, file: f, level: hdf5.DefaultCompression}
	root := f.Root()
	for _, g := range []struct {
		name string
		dst  **hdf5.Group
	}{
		{GroupImage, &w.image},
		{GroupDepth, &w.depth},
		{GroupSeg, &w.seg},
		{GroupMeta, &w.meta},
	} {
		if *g.dst, err = root.CreateGroup(g.name); err != nil {
			f.Close()
			return nil, &WriteTargetError{Path: path, Err: err}
		}
	}
	return w, nil
}

// Path returns the container path.
func (w *ContainerWriter) Path() string {
	return w.path
}

// Put writes the three arrays of e under e.ID, compressed. The segmentation
// array carries the recognized attributes its source had. An ID written
// twice keeps the last arrays.
func (w *ContainerWriter) Put(e *Entry) error {
	compress := hdf5.WithCompression(w.level)
	if _, err := w.image.WriteRaw(e.ID, e.Image.Array, compress); err != nil {
		return errors.Wrap(err, GroupImage)
	}
	if _, err := w.depth.WriteRaw(e.ID, e.Depth.Array, compress); err != nil {
		return errors.Wrap(err, GroupDepth)
	}
	opts := []hdf5.DatasetOption{compress}
	for _, name := range source.SegAttrs {
		if a, ok := e.Seg.Attrs[name]; ok {
			opts = append(opts, hdf5.WithRawAttribute(a))
		}
	}
	if _, err := w.seg.WriteRaw(e.ID, e.Seg.Array, opts...); err != nil {
		return errors.Wrap(err, GroupSeg)
	}
	return nil
}

// Finalize writes the run summary and the verbatim name index to meta.
func (w *ContainerWriter) Finalize(s Summary, index names.Index) error {
	if _, err := w.meta.CreateStrings(OriginalNames, index); err != nil {
		return errors.Wrap(err, OriginalNames)
	}
	attrs := []struct {
		name  string
		value interface{}
	}{
		{"missing_depth", int64(s.MissingDepth)},
		{"missing_seg", int64(s.MissingSeg)},
		{"source_bg_dir", s.SourceDir},
		{"total_candidates", int64(s.Total)},
		{"written", int64(s.Written)},
		{"limit_applied", s.LimitApplied()},
	}
	for _, a := range attrs {
		if err := w.meta.SetAttr(a.name, a.value); err != nil {
			return errors.Wrapf(err, "meta attribute %s", a.name)
		}
	}
	return nil
}

// Close writes the group structure and releases the file. It is safe to
// call more than once.
func (w *ContainerWriter) Close() error {
	if w.file == nil {
		return nil
	}
	f := w.file
	w.file = nil
	return errors.Wrapf(f.Close(), "close %s", w.path)
}
