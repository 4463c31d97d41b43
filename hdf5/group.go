package hdf5

import (
	"fmt"
	"path"
	"strings"

	"github.com/robert-malhotra/bgpack/internal/btree"
	"github.com/robert-malhotra/bgpack/internal/heap"
	"github.com/robert-malhotra/bgpack/internal/message"
	"github.com/robert-malhotra/bgpack/internal/object"
)

// Group represents an HDF5 group.
type Group struct {
	file   *File
	path   string
	header *object.Header

	// Members are indexed on first use. Groups being written start loaded.
	loaded  bool
	members []member
	index   map[string]int

	// attrs of a group being written
	attrs []*message.Attribute
}

type member struct {
	name   string
	kind   message.LinkType
	addr   uint64
	target string

	// group is set for groups created in this session; its address is
	// only known once it is flushed.
	group *Group
}

// Name returns the last component of the group path.
func (g *Group) Name() string {
	if g.path == "/" {
		return "/"
	}
	return path.Base(g.path)
}

// Path returns the full path to this group.
func (g *Group) Path() string {
	return g.path
}

// File returns the file the group belongs to.
func (g *Group) File() *File {
	return g.file
}

func (g *Group) load() error {
	if g.loaded {
		return nil
	}
	var members []member
	r := g.file.reader
	if st := g.header.SymbolTable(); st != nil {
		names, err := heap.ReadLocal(r, st.LocalHeapAddress)
		if err != nil {
			return fmt.Errorf("group %s: %w", g.path, err)
		}
		entries, err := btree.GroupEntries(r, st.BTreeAddress, names)
		if err != nil {
			return fmt.Errorf("group %s: %w", g.path, err)
		}
		for _, e := range entries {
			m := member{name: e.Name, addr: e.ObjectAddress}
			if e.Soft {
				m.kind, m.target = message.LinkTypeSoft, e.SoftValue
			}
			members = append(members, m)
		}
	} else {
		if li := g.header.LinkInfo(); li != nil && li.Dense(r) {
			return fmt.Errorf("%w: dense link storage in group %s", ErrUnsupported, g.path)
		}
		for _, l := range g.header.Links() {
			members = append(members, member{name: l.Name, kind: l.LinkType, addr: l.ObjectAddress, target: l.SoftValue})
		}
	}

	g.index = make(map[string]int, len(members))
	for i, m := range members {
		g.index[m.name] = i
	}
	g.members = members
	g.loaded = true
	return nil
}

// Members returns the names of the group's links in storage order.
func (g *Group) Members() ([]string, error) {
	if err := g.load(); err != nil {
		return nil, err
	}
	names := make([]string, len(g.members))
	for i, m := range g.members {
		names[i] = m.name
	}
	return names, nil
}

// Len returns the number of links in the group.
func (g *Group) Len() (int, error) {
	if err := g.load(); err != nil {
		return 0, err
	}
	return len(g.members), nil
}

// Has reports whether the group has a link called name. The lookup does not
// open the target object.
func (g *Group) Has(name string) bool {
	if err := g.load(); err != nil {
		return false
	}
	_, ok := g.index[name]
	return ok
}

// Exists reports whether path resolves to an object.
func (g *Group) Exists(p string) bool {
	_, err := g.Object(p)
	return err == nil
}

// OpenGroup opens a group by path, relative to g unless it starts with "/".
func (g *Group) OpenGroup(p string) (*Group, error) {
	obj, err := g.Object(p)
	if err != nil {
		return nil, err
	}
	grp, ok := obj.(*Group)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotGroup, p)
	}
	return grp, nil
}

// OpenDataset opens a dataset by path, relative to g unless it starts with "/".
func (g *Group) OpenDataset(p string) (*Dataset, error) {
	obj, err := g.Object(p)
	if err != nil {
		return nil, err
	}
	ds, ok := obj.(*Dataset)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDataset, p)
	}
	return ds, nil
}

// Object opens the group or dataset at p. The result is a *Group or a *Dataset.
func (g *Group) Object(p string) (interface{}, error) {
	if g.file.closed {
		return nil, ErrClosed
	}
	return g.lookup(p, 0)
}

func (g *Group) lookup(p string, depth int) (interface{}, error) {
	cur := g
	if strings.HasPrefix(p, "/") {
		cur = g.file.root
	}
	parts := SplitPath(p)
	if len(parts) == 0 {
		return cur, nil
	}
	for i, name := range parts {
		obj, err := cur.child(name, depth)
		if err != nil {
			return nil, err
		}
		if i == len(parts)-1 {
			return obj, nil
		}
		next, ok := obj.(*Group)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotGroup, childPath(cur.path, name))
		}
		cur = next
	}
	return cur, nil
}

func (g *Group) child(name string, depth int) (interface{}, error) {
	if err := g.load(); err != nil {
		return nil, err
	}
	i, ok := g.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, childPath(g.path, name))
	}
	m := g.members[i]
	switch {
	case m.group != nil:
		return m.group, nil
	case m.kind == message.LinkTypeSoft:
		if depth >= MaxLinkDepth {
			return nil, fmt.Errorf("%w: %s", ErrLinkDepth, childPath(g.path, name))
		}
		return g.lookup(m.target, depth+1)
	case m.kind != message.LinkTypeHard:
		return nil, fmt.Errorf("%w: link %s of type %d", ErrUnsupported, childPath(g.path, name), m.kind)
	}
	return g.file.objectAt(m.addr, childPath(g.path, name))
}

// Attrs returns the attribute names of the group.
func (g *Group) Attrs() []string {
	return attrNames(g.attrMessages())
}

// Attr returns an attribute by name, or nil if not found.
func (g *Group) Attr(name string) *Attribute {
	return findAttr(g.file, g.attrMessages(), name)
}

// HasAttr returns true if the group has an attribute with the given name.
func (g *Group) HasAttr(name string) bool {
	return g.Attr(name) != nil
}

func (g *Group) attrMessages() []*message.Attribute {
	if g.header == nil || g.file.writable {
		return g.attrs
	}
	return g.header.Attributes()
}
