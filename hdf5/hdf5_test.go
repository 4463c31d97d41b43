package hdf5

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func TestOpenNotHDF5(t *testing.T) {
	p := tempPath(t, "plain.txt")
	require.NoError(t, os.WriteFile(p, []byte("This is not an HDF5 file"), 0o644))

	_, err := Open(p)
	assert.ErrorIs(t, err, ErrNotHDF5)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(tempPath(t, "missing.h5"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLegacyLayout(t *testing.T) {
	f, err := Open(writeLegacyFixture(t))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 0, f.Version())
	members, err := f.Root().Members()
	require.NoError(t, err)
	assert.Equal(t, []string{"alias", "depth", "mask", "tiles"}, members)
	assert.True(t, f.Root().Has("depth"))
	assert.False(t, f.Root().Has("seg"))

	depth, err := f.OpenDataset("/depth")
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3}, depth.Shape())
	vals, err := depth.ReadFloat32()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, vals)

	scale, err := f.ReadAttr("/depth@scale")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), scale)

	alias, err := f.OpenDataset("alias")
	require.NoError(t, err)
	assert.Equal(t, "/depth", alias.Path())

	mask, err := f.OpenGroup("mask")
	require.NoError(t, err)
	assert.True(t, mask.Has("a.jpg"))
	seg, err := mask.OpenDataset("a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "/mask/a.jpg", seg.Path())
	assert.Equal(t, []string{"area", "label"}, seg.Attrs())
	px, err := seg.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 0, 2, 2}, px)
}

func TestReadLegacyChunked(t *testing.T) {
	f, err := Open(writeLegacyFixture(t))
	require.NoError(t, err)
	defer f.Close()

	tiles, err := f.OpenDataset("/tiles")
	require.NoError(t, err)
	assert.Equal(t, "chunked [2 3] (btree)", tiles.Storage())
	assert.Equal(t, []string{"deflate"}, tiles.Filters())

	raw, err := tiles.Raw()
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 3}, raw.Shape)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, raw.Data)
}

func TestLookupErrors(t *testing.T) {
	f, err := Open(writeLegacyFixture(t))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.OpenDataset("/nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.OpenGroup("/depth")
	assert.ErrorIs(t, err, ErrNotGroup)
	_, err = f.OpenDataset("/mask")
	assert.ErrorIs(t, err, ErrNotDataset)
	_, err = f.OpenDataset("/depth/x")
	assert.ErrorIs(t, err, ErrNotGroup)
	assert.False(t, f.Root().Exists("/mask/b.jpg"))
	assert.True(t, f.Root().Exists("/mask/a.jpg"))

	_, err = f.GetAttr("/depth@missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.Root().CreateGroup("x")
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.ErrorIs(t, f.Root().SetAttr("x", 1), ErrReadOnly)

	require.NoError(t, f.Close())
	_, err = f.OpenGroup("/mask")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCreateRoundTrip(t *testing.T) {
	p := tempPath(t, "out.h5")
	f, err := Create(p)
	require.NoError(t, err)

	image, err := f.Root().CreateGroup("image")
	require.NoError(t, err)
	pixels := make([]byte, 4*5*3)
	for i := range pixels {
		pixels[i] = byte(i % 7)
	}
	_, err = image.CreateDataset("a.jpg", pixels, WithShape(4, 5, 3), WithCompression(DefaultCompression))
	require.NoError(t, err)

	depth, err := f.Root().CreateGroup("depth")
	require.NoError(t, err)
	_, err = depth.CreateDataset("a.jpg", []float32{0.5, 1.5, 2.5, 3.5}, WithShape(2, 2),
		WithCompression(4), WithShuffle(), WithFletcher32())
	require.NoError(t, err)

	meta, err := f.Root().CreateGroup("meta")
	require.NoError(t, err)
	_, err = meta.CreateStrings("original_imnames", []string{"a.jpg", "bb.jpg", "a.jpg"})
	require.NoError(t, err)
	require.NoError(t, meta.SetAttr("written", int64(1)))
	require.NoError(t, meta.SetAttr("limit_applied", int64(-1)))
	require.NoError(t, meta.SetAttr("source_bg_dir", "/data/bg_img"))
	require.NoError(t, meta.SetAttr("written", int64(2)))
	require.NoError(t, f.Close())

	f, err = Open(p)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 3, f.Version())

	members, err := f.Root().Members()
	require.NoError(t, err)
	assert.Equal(t, []string{"image", "depth", "meta"}, members)

	img, err := f.OpenDataset("/image/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 5, 3}, img.Shape())
	assert.Equal(t, []string{"deflate"}, img.Filters())
	assert.Contains(t, img.Storage(), "single")
	got, err := img.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, pixels, got)

	d, err := f.OpenDataset("/depth/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"shuffle", "deflate", "fletcher32"}, d.Filters())
	dv, err := Read[float64](d)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.5, 2.5, 3.5}, dv)

	names, err := f.OpenDataset("/meta/original_imnames")
	require.NoError(t, err)
	assert.Equal(t, "|S6", names.Datatype().String())
	strs, err := names.ReadStrings()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "bb.jpg", "a.jpg"}, strs)

	g, err := f.OpenGroup("meta")
	require.NoError(t, err)
	assert.Equal(t, []string{"written", "limit_applied", "source_bg_dir"}, g.Attrs())
	v, err := f.ReadAttr("/meta@written")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
	v, err = f.ReadAttr("/meta@limit_applied")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), v)
	v, err = f.ReadAttr("/meta@source_bg_dir")
	require.NoError(t, err)
	assert.Equal(t, "/data/bg_img", v)
	assert.Equal(t, "str", g.Attr("source_bg_dir").Datatype().String())
}

func TestReplaceKeepsPosition(t *testing.T) {
	p := tempPath(t, "dup.h5")
	f, err := Create(p)
	require.NoError(t, err)
	_, err = f.Root().CreateDataset("a", []int32{1})
	require.NoError(t, err)
	_, err = f.Root().CreateDataset("b", []int32{2})
	require.NoError(t, err)
	_, err = f.Root().CreateDataset("a", []int32{3, 4})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = Open(p)
	require.NoError(t, err)
	defer f.Close()
	members, err := f.Root().Members()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, members)
	a, err := f.OpenDataset("a")
	require.NoError(t, err)
	vals, err := a.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 4}, vals)
}

func TestNestedNamesCreateGroups(t *testing.T) {
	p := tempPath(t, "nested.h5")
	f, err := Create(p)
	require.NoError(t, err)
	_, err = f.Root().CreateDataset("seg/sub/x.png", []uint16{7})
	require.NoError(t, err)
	_, err = f.Root().CreateGroup("seg")
	assert.ErrorIs(t, err, ErrExists)
	_, err = f.Root().RequireGroup("seg/sub/x.png")
	assert.ErrorIs(t, err, ErrNotGroup)
	_, err = f.Root().CreateDataset("", []uint16{7})
	assert.ErrorIs(t, err, ErrInvalidPath)

	// readable before Close
	ds, err := f.OpenDataset("/seg/sub/x.png")
	require.NoError(t, err)
	vals, err := Read[uint16](ds)
	require.NoError(t, err)
	assert.Equal(t, []uint16{7}, vals)
	require.NoError(t, f.Close())

	f, err = Open(p)
	require.NoError(t, err)
	defer f.Close()
	assert.True(t, f.Root().Exists("/seg/sub/x.png"))
}

func TestCopyBetweenFiles(t *testing.T) {
	src, err := Open(writeLegacyFixture(t))
	require.NoError(t, err)
	defer src.Close()
	seg, err := src.OpenDataset("/mask/a.jpg")
	require.NoError(t, err)
	raw, err := seg.Raw()
	require.NoError(t, err)

	p := tempPath(t, "copy.h5")
	dst, err := Create(p)
	require.NoError(t, err)
	g, err := dst.Root().CreateGroup("seg")
	require.NoError(t, err)
	_, err = g.WriteRaw("a.jpg", raw, WithCompression(DefaultCompression),
		WithRawAttribute(seg.Attr("area")), WithRawAttribute(seg.Attr("label")), WithRawAttribute(nil))
	require.NoError(t, err)
	_, err = g.WriteRaw("short", &Raw{Shape: []uint64{3}, Type: raw.Type, Data: []byte{1}})
	assert.ErrorIs(t, err, ErrShape)
	require.NoError(t, dst.Close())

	out, err := Open(p)
	require.NoError(t, err)
	defer out.Close()
	copied, err := out.OpenDataset("/seg/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 2}, copied.Shape())
	px, err := copied.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 0, 2, 2}, px)
	area, err := copied.Attr("area").Value()
	require.NoError(t, err)
	assert.Equal(t, int64(120), area)
	label, err := out.ReadAttr("/seg/a.jpg@label")
	require.NoError(t, err)
	assert.Equal(t, int64(3), label)
}

func TestCopyStringAttribute(t *testing.T) {
	first := tempPath(t, "first.h5")
	f, err := Create(first)
	require.NoError(t, err)
	_, err = f.Root().CreateDataset("x", []int8{-1, 1}, WithAttribute("note", "héllo"), WithAttribute("n", []float64{1, 2}))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = Open(first)
	require.NoError(t, err)
	defer f.Close()
	x, err := f.OpenDataset("x")
	require.NoError(t, err)

	second := tempPath(t, "second.h5")
	g, err := Create(second)
	require.NoError(t, err)
	require.NoError(t, g.Root().SetAttr("note", x.Attr("note")))
	require.NoError(t, g.Root().SetAttr("n", x.Attr("n")))
	require.NoError(t, g.Close())

	g, err = Open(second)
	require.NoError(t, err)
	defer g.Close()
	v, err := g.ReadAttr("/@note")
	require.NoError(t, err)
	assert.Equal(t, "héllo", v)
	v, err = g.ReadAttr("/@n")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, v)
}

func TestEmptyAndScalarDatasets(t *testing.T) {
	p := tempPath(t, "empty.h5")
	f, err := Create(p, WithOffsetSize(4), WithLengthSize(4))
	require.NoError(t, err)
	_, err = f.Root().CreateStrings("none", nil, WithCompression(4))
	require.NoError(t, err)
	_, err = f.Root().CreateDataset("pi", 3.25, WithCompression(4))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = Open(p)
	require.NoError(t, err)
	defer f.Close()
	none, err := f.OpenDataset("none")
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, none.Shape())
	strs, err := none.ReadStrings()
	require.NoError(t, err)
	assert.Empty(t, strs)

	pi, err := f.OpenDataset("pi")
	require.NoError(t, err)
	assert.True(t, pi.IsScalar())
	assert.Equal(t, "contiguous", pi.Storage())
	vals, err := pi.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, []float64{3.25}, vals)
}

func TestManyLinks(t *testing.T) {
	p := tempPath(t, "many.h5")
	f, err := Create(p)
	require.NoError(t, err)
	g, err := f.Root().CreateGroup("image")
	require.NoError(t, err)
	for i := 0; i < 600; i++ {
		_, err := g.CreateDataset(fmt.Sprintf("%c%c.jpg", 'a'+i%26, 'a'+i/26), []uint8{uint8(i)})
		require.NoError(t, err)
	}
	stats := f.SpaceStats()
	assert.Positive(t, stats.Blocks)
	require.NoError(t, f.Close())

	f, err = Open(p)
	require.NoError(t, err)
	defer f.Close()
	g, err = f.OpenGroup("image")
	require.NoError(t, err)
	n, err := g.Len()
	require.NoError(t, err)
	assert.Equal(t, 600, n)
	assert.True(t, g.Has("zw.jpg"))
}

func TestRawAttribute(t *testing.T) {
	p := tempPath(t, "rawattr.h5")
	f, err := Create(p)
	require.NoError(t, err)
	box, err := NewRaw([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, 2, 4, 2)
	require.NoError(t, err)
	_, err = f.Root().CreateDataset("img", []uint8{0}, WithAttribute("wordBB", box))
	require.NoError(t, err)
	_, err = f.Root().CreateDataset("bad", []uint8{0}, WithAttribute("x", &Raw{Shape: []uint64{3}, Type: box.Type, Data: box.Data[:4]}))
	assert.ErrorIs(t, err, ErrShape)
	require.NoError(t, f.Close())

	f, err = Open(p)
	require.NoError(t, err)
	defer f.Close()
	ds, err := f.OpenDataset("img")
	require.NoError(t, err)
	a := ds.Attr("wordBB")
	require.NotNil(t, a)
	assert.Equal(t, []uint64{2, 4, 2}, a.Shape())
	vals, err := a.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, 16.0, vals[15])
}
