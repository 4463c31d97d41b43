package hdf5

import (
	"errors"
)

// WalkFunc is called for each object during traversal.
// path is the full path to the object.
// obj is either *Group or *Dataset.
// err is any error encountered opening the object.
// Return nil to continue walking, SkipGroup to skip a group's members, or
// any other error to stop.
type WalkFunc func(path string, obj interface{}, err error) error

// SkipGroup returned from a WalkFunc for a group skips its members.
var SkipGroup = errors.New("skip this group")

// Walk traverses all objects (groups and datasets) in the hierarchy starting from g.
// The callback is called for each group and dataset, including the starting group.
//
//	Walk(root, func(path string, obj interface{}, err error) error {
//	    if err != nil {
//	        return err
//	    }
//	    if ds, ok := obj.(*Dataset); ok {
//	        fmt.Println(path, ds.Shape())
//	    }
//	    return nil
//	})
func Walk(g *Group, fn WalkFunc) error {
	err := walkGroup(g, fn)
	if errors.Is(err, SkipGroup) {
		return nil
	}
	return err
}

func walkGroup(g *Group, fn WalkFunc) error {
	if err := fn(g.Path(), g, nil); err != nil {
		return err
	}
	members, err := g.Members()
	if err != nil {
		return fn(g.Path(), g, err)
	}
	for _, name := range members {
		p := childPath(g.Path(), name)
		obj, err := g.Object(name)
		if err != nil {
			if err := fn(p, nil, err); err != nil {
				return err
			}
			continue
		}
		switch o := obj.(type) {
		case *Group:
			if err := walkGroup(o, fn); err != nil && !errors.Is(err, SkipGroup) {
				return err
			}
		default:
			if err := fn(p, o, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// AttrInfo describes one attribute found by WalkAttrs.
type AttrInfo struct {
	// Path is the full attribute path, such as "/seg/a.jpg@label".
	Path       string
	ObjectPath string
	Attr       *Attribute

	// Value is the auto-read value, nil when Err is set.
	Value interface{}
	Err   error
}

// WalkAttrs calls fn for every attribute of every group and dataset in
// the file.
func (f *File) WalkAttrs(fn func(AttrInfo) error) error {
	if f.closed {
		return ErrClosed
	}
	visit := func(objectPath string, names []string, get func(string) *Attribute) error {
		for _, name := range names {
			a := get(name)
			info := AttrInfo{Path: JoinAttrPath(objectPath, name), ObjectPath: objectPath, Attr: a}
			info.Value, info.Err = a.Value()
			if err := fn(info); err != nil {
				return err
			}
		}
		return nil
	}
	return Walk(f.root, func(p string, obj interface{}, err error) error {
		if err != nil {
			return err
		}
		switch o := obj.(type) {
		case *Group:
			return visit(p, o.Attrs(), o.Attr)
		case *Dataset:
			return visit(p, o.Attrs(), o.Attr)
		}
		return nil
	})
}
