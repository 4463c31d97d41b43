package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/robert-malhotra/bgpack/hdf5"
)

type inspectCommand struct {
	app *app

	MaxDepth int  `long:"max-depth" default:"20" description:"Do not descend below this depth"`
	NoAttrs  bool `long:"no-attrs" description:"Do not print attribute values"`
	Args     struct {
		File string `positional-arg-name:"file" required:"yes"`
	} `positional-args:"yes"`
}

func (c *inspectCommand) Execute(args []string) error {
	if err := c.app.init(); err != nil {
		return err
	}
	return inspect(c.app.stdout, c.Args.File, c.MaxDepth, !c.NoAttrs)
}

// inspect prints the object tree of the file at path.
func inspect(w io.Writer, path string, maxDepth int, attrs bool) error {
	f, err := hdf5.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	fmt.Fprintf(w, "=== %s ===\n", path)
	fmt.Fprintf(w, "superblock version: %d\n", f.Version())

	return hdf5.Walk(f.Root(), func(p string, obj interface{}, err error) error {
		depth := len(hdf5.SplitPath(p))
		indent := strings.Repeat("  ", depth)
		if err != nil {
			fmt.Fprintf(w, "%s%s: ERROR %v\n", indent, p, err)
			return nil
		}
		switch o := obj.(type) {
		case *hdf5.Group:
			n, _ := o.Len()
			fmt.Fprintf(w, "%s%s (group, %d members)\n", indent, p, n)
			if attrs {
				printAttrs(w, indent, o.Attrs(), o.Attr)
			}
			if depth >= maxDepth {
				fmt.Fprintf(w, "%s  [max depth reached]\n", indent)
				return hdf5.SkipGroup
			}
		case *hdf5.Dataset:
			line := fmt.Sprintf("%s%s (dataset %s %v, %s", indent, p, o.Datatype(), o.Shape(), o.Storage())
			if fs := o.Filters(); len(fs) > 0 {
				line += ", " + strings.Join(fs, "+")
			}
			fmt.Fprintln(w, line+")")
			if attrs {
				printAttrs(w, indent, o.Attrs(), o.Attr)
			}
		}
		return nil
	})
}

func printAttrs(w io.Writer, indent string, names []string, get func(string) *hdf5.Attribute) {
	for _, name := range names {
		v, err := get(name).Value()
		if err != nil {
			fmt.Fprintf(w, "%s  @%s: ERROR %v\n", indent, name, err)
			continue
		}
		fmt.Fprintf(w, "%s  @%s = %v\n", indent, name, v)
	}
}
