package hdf5

import (
	"fmt"
	"strings"

	"github.com/robert-malhotra/bgpack/internal/message"
	"github.com/robert-malhotra/bgpack/internal/object"
)

func newGroup(f *File, path string) *Group {
	return &Group{file: f, path: path, loaded: true, index: make(map[string]int)}
}

// CreateGroup creates a new subgroup with the given name.
func (g *Group) CreateGroup(name string) (*Group, error) {
	if err := g.file.checkWritable(); err != nil {
		return nil, err
	}
	if err := checkName(name); err != nil {
		return nil, err
	}
	if _, ok := g.index[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrExists, childPath(g.path, name))
	}
	child := newGroup(g.file, childPath(g.path, name))
	g.link(member{name: name, group: child})
	return child, nil
}

// RequireGroup returns the group at p, relative to g, creating it and any
// missing intermediate groups.
func (g *Group) RequireGroup(p string) (*Group, error) {
	if err := g.file.checkWritable(); err != nil {
		return nil, err
	}
	cur := g
	if strings.HasPrefix(p, "/") {
		cur = g.file.root
	}
	for _, name := range SplitPath(p) {
		i, ok := cur.index[name]
		if !ok {
			next, err := cur.CreateGroup(name)
			if err != nil {
				return nil, err
			}
			cur = next
			continue
		}
		if cur.members[i].group == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotGroup, childPath(cur.path, name))
		}
		cur = cur.members[i].group
	}
	return cur, nil
}

// SetAttr sets an attribute on the group, replacing any attribute of the
// same name. Strings are stored as variable-length UTF-8, the way h5py
// stores str; numbers and slices as in CreateDataset.
func (g *Group) SetAttr(name string, value interface{}) error {
	if err := g.file.checkWritable(); err != nil {
		return err
	}
	a, err := g.file.newAttribute(name, value)
	if err != nil {
		return err
	}
	g.attrs = putAttr(g.attrs, a)
	return nil
}

// link adds m, replacing an existing link of the same name in place.
func (g *Group) link(m member) {
	if i, ok := g.index[m.name]; ok {
		g.members[i] = m
		return
	}
	g.index[m.name] = len(g.members)
	g.members = append(g.members, m)
}

// flush writes the headers of g and its subgroups, children first, and
// returns the address of g's header.
func (g *Group) flush() (uint64, error) {
	links := make([]*message.Link, len(g.members))
	for i := range g.members {
		m := &g.members[i]
		if m.group != nil {
			addr, err := m.group.flush()
			if err != nil {
				return 0, err
			}
			m.addr = addr
		}
		links[i] = message.NewHardLink(m.name, m.addr)
	}
	h, err := g.file.writeHeader(object.GroupMessages(links, g.attrs), object.MinGroupChunk, "group header")
	if err != nil {
		return 0, fmt.Errorf("group %s: %w", g.path, err)
	}
	g.header = h
	return h.Address, nil
}

// putAttr replaces the attribute named like a, or appends it.
func putAttr(attrs []*message.Attribute, a *message.Attribute) []*message.Attribute {
	for i, old := range attrs {
		if old.Name == a.Name {
			attrs[i] = a
			return attrs
		}
	}
	return append(attrs, a)
}
