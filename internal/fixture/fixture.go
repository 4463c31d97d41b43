// Package fixture builds small dataset roots on disk for tests: a name
// index, a bg_img directory and the depth and segmentation stores.
package fixture

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/bgpack/hdf5"
)

// Sample describes which sources hold an entry.
type Sample struct {
	Name    string
	Image   bool
	Corrupt bool // image file present but undecodable
	Depth   bool
	Seg     bool
	Attrs   map[string]int64 // set on the mask
	W, H    int              // default 4 x 3
}

func (s Sample) size() (int, int) {
	if s.W == 0 || s.H == 0 {
		return 4, 3
	}
	return s.W, s.H
}

// Options changes the layout of the generated stores.
type Options struct {
	FlatSeg   bool // masks at the root of seg.h5 instead of under mask
	NoIndex   bool
	NoDepth   bool
	NoSeg     bool
	TextIndex bool // newline-separated name index instead of a pickle
}

// Build writes a dataset root under a temporary directory and returns it.
func Build(t testing.TB, index []string, samples []Sample, opts Options) string {
	t.Helper()
	root := t.TempDir()
	imgDir := filepath.Join(root, "bg_img")
	require.NoError(t, os.MkdirAll(imgDir, 0o755))

	if !opts.NoIndex {
		data := Pickle(index)
		if opts.TextIndex {
			data = []byte(joinLines(index))
		}
		require.NoError(t, os.WriteFile(filepath.Join(root, "imnames.cp"), data, 0o644))
	}

	for _, s := range samples {
		p := filepath.Join(imgDir, s.Name)
		switch {
		case s.Corrupt:
			require.NoError(t, os.WriteFile(p, []byte("\xff\xd8\xff not really a jpeg"), 0o644))
		case s.Image:
			var buf bytes.Buffer
			require.NoError(t, png.Encode(&buf, Image(s)))
			require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))
		}
	}

	if !opts.NoDepth {
		f, err := hdf5.Create(filepath.Join(root, "depth.h5"))
		require.NoError(t, err)
		for _, s := range samples {
			if !s.Depth {
				continue
			}
			w, h := s.size()
			_, err := f.Root().CreateDataset(s.Name, Depth(s), hdf5.WithShape(uint64(h), uint64(w)))
			require.NoError(t, err)
		}
		require.NoError(t, f.Close())
	}

	if !opts.NoSeg {
		f, err := hdf5.Create(filepath.Join(root, "seg.h5"))
		require.NoError(t, err)
		g := f.Root()
		if !opts.FlatSeg {
			g, err = g.CreateGroup("mask")
			require.NoError(t, err)
		}
		for _, s := range samples {
			if !s.Seg {
				continue
			}
			w, h := s.size()
			dopts := []hdf5.DatasetOption{hdf5.WithShape(uint64(h), uint64(w))}
			for _, k := range []string{"area", "label"} {
				if v, ok := s.Attrs[k]; ok {
					dopts = append(dopts, hdf5.WithAttribute(k, v))
				}
			}
			_, err := g.CreateDataset(s.Name, Seg(s), dopts...)
			require.NoError(t, err)
		}
		require.NoError(t, f.Close())
	}
	return root
}

// Image is the picture stored for s.
func Image(s Sample) image.Image {
	w, h := s.size()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: uint8(len(s.Name)), A: 255})
		}
	}
	return img
}

// RGB is Image(s) as height x width x 3 bytes.
func RGB(s Sample) []byte {
	w, h := s.size()
	out := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out = append(out, uint8(x*16), uint8(y*16), uint8(len(s.Name)))
		}
	}
	return out
}

// Depth is the depth map stored for s.
func Depth(s Sample) []float32 {
	w, h := s.size()
	out := make([]float32, w*h)
	for i := range out {
		out[i] = float32(i) + 0.5
	}
	return out
}

// Seg is the mask stored for s.
func Seg(s Sample) []uint8 {
	w, h := s.size()
	out := make([]uint8, w*h)
	for i := range out {
		out[i] = uint8(i % 3)
	}
	return out
}

// Pickle encodes names as a protocol 2 pickle of a list of str.
func Pickle(names []string) []byte {
	var b bytes.Buffer
	b.Write([]byte{0x80, 0x02, ']'})
	if len(names) > 0 {
		b.WriteByte('(')
		for _, n := range names {
			b.WriteByte('X')
			var l [4]byte
			binary.LittleEndian.PutUint32(l[:], uint32(len(n)))
			b.Write(l[:])
			b.WriteString(n)
		}
		b.WriteByte('e')
	}
	b.WriteByte('.')
	return b.Bytes()
}

func joinLines(names []string) string {
	var b bytes.Buffer
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	return b.String()
}
