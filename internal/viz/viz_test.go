package viz

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/bgpack/hdf5"
)

// rect returns the 2x4 corner coordinates of an axis-aligned box.
func rect(x0, y0, x1, y1 float64) ([4]float64, [4]float64) {
	return [4]float64{x0, x1, x1, x0}, [4]float64{y0, y0, y1, y1}
}

// bb packs boxes into a 2x4xN array.
func bb(t *testing.T, boxes ...[2][4]float64) *hdf5.Raw {
	n := len(boxes)
	v := make([]float64, 2*4*n)
	for i, b := range boxes {
		for j := 0; j < 4; j++ {
			v[j*n+i] = b[0][j]
			v[4*n+j*n+i] = b[1][j]
		}
	}
	raw, err := hdf5.NewRaw(v, 2, 4, uint64(n))
	require.NoError(t, err)
	return raw
}

func box(x0, y0, x1, y1 float64) [2][4]float64 {
	xs, ys := rect(x0, y0, x1, y1)
	return [2][4]float64{xs, ys}
}

func writeDB(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "SynthText.h5")
	f, err := hdf5.Create(p)
	require.NoError(t, err)
	data, err := f.Root().CreateGroup(DataGroup)
	require.NoError(t, err)

	const w, h = 40, 30
	pix := make([]uint8, w*h*3)
	for i := range pix {
		pix[i] = 200
	}
	_, err = data.CreateDataset("b_0", pix, hdf5.WithShape(h, w, 3),
		hdf5.WithAttribute("charBB", bb(t, box(2, 2, 8, 10), box(9, 2, 15, 10))),
		hdf5.WithAttribute("wordBB", bb(t, box(1, 1, 16, 11))),
		hdf5.WithAttribute("lineBB", bb(t, box(0, 15, 39, 25))),
		hdf5.WithAttribute("txt", []string{"hi", "there"}),
	)
	require.NoError(t, err)

	single, err := hdf5.NewRaw([]float64{5, 20, 20, 5, 5, 5, 20, 20}, 2, 4)
	require.NoError(t, err)
	_, err = data.CreateDataset("a_0", pix, hdf5.WithShape(h, w, 3),
		hdf5.WithAttribute("charBB", single),
		hdf5.WithAttribute("wordBB", single),
		hdf5.WithAttribute("txt", "x"),
	)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return p
}

func at(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestReadSample(t *testing.T) {
	f, err := hdf5.Open(writeDB(t))
	require.NoError(t, err)
	defer f.Close()
	data, err := f.OpenGroup(DataGroup)
	require.NoError(t, err)

	s, err := ReadSample(data, "b_0")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), s.Image.Bounds())
	require.Len(t, s.Chars, 2)
	assert.Equal(t, Box{{X: 9, Y: 2}, {X: 15, Y: 2}, {X: 15, Y: 10}, {X: 9, Y: 10}}, s.Chars[1])
	require.Len(t, s.Words, 1)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, []string{"hi", "there"}, s.Text)

	s, err = ReadSample(data, "a_0")
	require.NoError(t, err)
	require.Len(t, s.Chars, 1)
	assert.Equal(t, Box{{X: 5, Y: 5}, {X: 20, Y: 5}, {X: 20, Y: 20}, {X: 5, Y: 20}}, s.Chars[0])
	assert.Nil(t, s.Lines)
	assert.Equal(t, []string{"x"}, s.Text)
}

func TestDraw(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	s := &Sample{
		Image: img,
		Words: []Box{{{X: 5, Y: 5}, {X: 30, Y: 5}, {X: 30, Y: 20}, {X: 5, Y: 20}}},
		Lines: []Box{{{X: 0, Y: 24}, {X: 39, Y: 24}, {X: 39, Y: 28}, {X: 0, Y: 28}}},
	}

	c := Draw(s, false)
	assert.Equal(t, image.Rect(0, 0, 40, 30+header), c.Bounds())
	got := at(c.Image(), 17, 5+header)
	assert.Greater(t, got.G, got.R)
	assert.Greater(t, got.G, got.B)
	assert.Equal(t, at(c.Image(), 17, 26+header), color.RGBA{255, 255, 255, 255}, "no lines unless line-only")

	c = Draw(s, true)
	got = at(c.Image(), 17, 24+header)
	assert.Greater(t, got.B, got.R)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, at(c.Image(), 17, 5+header), "no words in line-only mode")
}

func TestRender(t *testing.T) {
	db := writeDB(t)
	out := filepath.Join(t.TempDir(), "visualized")
	logger, hook := test.NewNullLogger()

	files, err := Render(Options{DB: db, Out: out}, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(out, "a_0_visualization.png"),
		filepath.Join(out, "b_0_visualization.png"),
	}, files)
	assert.Equal(t, "total number of images: 2", hook.Entries[0].Message)
	assert.Equal(t, 2, hook.Entries[2].Data["chars"])

	fh, err := os.Open(files[1])
	require.NoError(t, err)
	defer fh.Close()
	img, err := png.Decode(fh)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30+header), img.Bounds())

	_, err = Render(Options{DB: filepath.Join(t.TempDir(), "none.h5"), Out: out}, logger)
	assert.Error(t, err)
}
