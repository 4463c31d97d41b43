// Package viz renders the text bounding boxes stored with each synthesized
// image onto the image and saves the result as PNG.
package viz

import (
	"image"
	"image/color"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/bgpack/hdf5"
	"github.com/robert-malhotra/bgpack/internal/plot"
)

// DataGroup holds one dataset per synthesized image.
const DataGroup = "data"

const header = 20

var (
	charColor = plot.WithAlpha(color.RGBA{255, 0, 0, 255}, 0.5)
	wordColor = color.RGBA{0, 128, 0, 255}
	lineColor = plot.WithAlpha(color.RGBA{0, 0, 255, 255}, 0.9)

	vertexColors = [4]color.Color{
		color.RGBA{255, 0, 0, 255},
		color.RGBA{0, 128, 0, 255},
		color.RGBA{0, 0, 255, 255},
		color.RGBA{0, 0, 0, 255},
	}
)

// Box is a quadrilateral given by its four vertices.
type Box [4]plot.Point

// Sample is one image with its annotations.
type Sample struct {
	Key   string
	Image image.Image
	Chars []Box
	Words []Box
	Lines []Box // nil when the image has no line boxes
	Text  []string
}

// Options configure a render run.
type Options struct {
	DB       string
	Out      string
	LineOnly bool
}

// Render draws every image of the data group in key order and returns the
// files written.
func Render(opts Options, logger logrus.FieldLogger) ([]string, error) {
	f, err := hdf5.Open(opts.DB)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", opts.DB)
	}
	defer f.Close()
	data, err := f.OpenGroup(DataGroup)
	if err != nil {
		return nil, err
	}
	keys, err := data.Members()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	logger.WithField("action", "viz").Infof("total number of images: %d", len(keys))

	var written []string
	for _, k := range keys {
		s, err := ReadSample(data, k)
		if err != nil {
			return written, errors.Wrapf(err, "read %s", k)
		}
		out := filepath.Join(opts.Out, k+"_visualization.png")
		if err := Draw(s, opts.LineOnly).SavePNG(out); err != nil {
			return written, err
		}
		written = append(written, out)

		log := logger.WithField("action", "viz").WithField("image", k).
			WithField("text", strings.Join(s.Text, " ")).
			WithField("saved_to", out)
		if !opts.LineOnly {
			log = log.WithField("chars", len(s.Chars)).WithField("words", len(s.Words))
		} else if s.Lines != nil {
			log = log.WithField("lines", len(s.Lines))
		}
		log.Info("rendered")
	}
	logger.WithField("action", "viz").Infof("Visualization images saved to: %s", opts.Out)
	return written, nil
}

// ReadSample loads the image and annotations stored under key.
func ReadSample(data *hdf5.Group, key string) (*Sample, error) {
	ds, err := data.OpenDataset(key)
	if err != nil {
		return nil, err
	}
	img, err := readImage(ds)
	if err != nil {
		return nil, err
	}
	s := &Sample{Key: key, Image: img}
	if s.Chars, err = boxes(ds.Attr("charBB")); err != nil {
		return nil, errors.Wrap(err, "charBB")
	}
	if s.Words, err = boxes(ds.Attr("wordBB")); err != nil {
		return nil, errors.Wrap(err, "wordBB")
	}
	if a := ds.Attr("lineBB"); a != nil {
		if s.Lines, err = boxes(a); err != nil {
			return nil, errors.Wrap(err, "lineBB")
		}
		if s.Lines == nil {
			s.Lines = []Box{}
		}
	}
	if a := ds.Attr("txt"); a != nil {
		if s.Text, err = a.Strings(); err != nil {
			return nil, errors.Wrap(err, "txt")
		}
	}
	return s, nil
}

func readImage(ds *hdf5.Dataset) (image.Image, error) {
	shape := ds.Shape()
	pix, err := ds.ReadUint8()
	if err != nil {
		return nil, err
	}
	switch {
	case len(shape) == 3 && shape[2] == 3:
		h, w := int(shape[0]), int(shape[1])
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for i := 0; i < w*h; i++ {
			copy(img.Pix[i*4:], pix[i*3:i*3+3])
			img.Pix[i*4+3] = 255
		}
		return img, nil
	case len(shape) == 2:
		img := image.NewGray(image.Rect(0, 0, int(shape[1]), int(shape[0])))
		copy(img.Pix, pix)
		return img, nil
	}
	return nil, errors.Errorf("image of shape %v is neither HxWx3 nor HxW", shape)
}

// boxes reads a 2x4xN (or 2x4 for a single box) coordinate array.
func boxes(a *hdf5.Attribute) ([]Box, error) {
	if a == nil {
		return nil, nil
	}
	shape := a.Shape()
	n := 1
	switch {
	case len(shape) == 3 && shape[0] == 2 && shape[1] == 4:
		n = int(shape[2])
	case len(shape) == 2 && shape[0] == 2 && shape[1] == 4:
	default:
		return nil, errors.Errorf("shape %v, want 2x4xN", shape)
	}
	v, err := a.ReadFloat64()
	if err != nil {
		return nil, err
	}
	out := make([]Box, n)
	for i := range out {
		for j := 0; j < 4; j++ {
			out[i][j] = plot.Point{X: v[j*n+i], Y: v[4*n+j*n+i]}
		}
	}
	return out, nil
}

// Draw renders s with a title band above the image. Character boxes are
// red and word boxes green with their vertices marked; in line-only mode
// only the line boxes are drawn, in blue.
func Draw(s *Sample, lineOnly bool) *plot.Canvas {
	b := s.Image.Bounds()
	c := plot.New(b.Dx(), b.Dy()+header, color.White)
	c.Paste(s.Image, image.Pt(0, header))

	shift := func(bb Box) []plot.Point {
		pts := make([]plot.Point, 4)
		for i, p := range bb {
			pts[i] = plot.Point{X: p.X, Y: p.Y + header}
		}
		return pts
	}

	title := "Red: char, Green: word"
	if lineOnly {
		title = "Blue: line"
		for _, bb := range s.Lines {
			c.Polygon(shift(bb), 2, lineColor)
		}
	} else {
		for _, bb := range s.Chars {
			c.Polygon(shift(bb), 1, charColor)
		}
		for _, bb := range s.Words {
			pts := shift(bb)
			c.Polygon(pts, 1, wordColor)
			for j, p := range pts {
				c.Dot(p, 2.5, vertexColors[j])
			}
		}
	}
	c.Text(plot.Point{X: 4, Y: 14}, title, color.Black)
	return c
}
