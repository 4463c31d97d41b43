// Package plot draws lines, boxes, markers and labels onto an RGBA image
// and saves it as PNG.
package plot

import (
	"bufio"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Point is a position in pixels, y pointing down.
type Point struct {
	X, Y float64
}

// Canvas is an image being drawn on.
type Canvas struct {
	img *image.RGBA
}

// New returns a w x h canvas filled with bg.
func New(w, h int, bg color.Color) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)
	return &Canvas{img: img}
}

// FromImage returns a canvas holding a copy of src.
func FromImage(src image.Image) *Canvas {
	b := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(img, img.Bounds(), src, b.Min, xdraw.Src)
	return &Canvas{img: img}
}

// Paste draws src with its top-left corner at at.
func (c *Canvas) Paste(src image.Image, at image.Point) {
	b := src.Bounds()
	xdraw.Draw(c.img, b.Sub(b.Min).Add(at), src, b.Min, xdraw.Src)
}

// Image returns the drawing.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Bounds returns the canvas rectangle.
func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

func (c *Canvas) fill(pts []Point, col color.Color) {
	if len(pts) < 3 {
		return
	}
	b := c.img.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		r.LineTo(float32(p.X), float32(p.Y))
	}
	r.ClosePath()
	r.Draw(c.img, b, image.NewUniform(col), image.Point{})
}

// Line strokes a segment of the given width.
func (c *Canvas) Line(a, b Point, width float64, col color.Color) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		c.Dot(a, width/2, col)
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	c.fill([]Point{
		{a.X + nx, a.Y + ny},
		{b.X + nx, b.Y + ny},
		{b.X - nx, b.Y - ny},
		{a.X - nx, a.Y - ny},
	}, col)
}

// Polyline strokes consecutive segments through pts.
func (c *Canvas) Polyline(pts []Point, width float64, col color.Color) {
	for i := 1; i < len(pts); i++ {
		c.Line(pts[i-1], pts[i], width, col)
	}
}

// Polygon strokes the closed outline through pts.
func (c *Canvas) Polygon(pts []Point, width float64, col color.Color) {
	if len(pts) < 2 {
		return
	}
	c.Polyline(pts, width, col)
	c.Line(pts[len(pts)-1], pts[0], width, col)
}

// Dot fills a circle.
func (c *Canvas) Dot(p Point, radius float64, col color.Color) {
	if radius <= 0 {
		return
	}
	const n = 16
	pts := make([]Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / n
		pts[i] = Point{p.X + radius*math.Cos(a), p.Y + radius*math.Sin(a)}
	}
	c.fill(pts, col)
}

// Text writes s with its baseline starting at p.
func (c *Canvas) Text(p Point, s string, col color.Color) {
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(p.X), int(p.Y)),
	}
	d.DrawString(s)
}

// TextWidth returns the advance of s in pixels.
func TextWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

// SavePNG writes the canvas to path, creating its directory.
func (c *Canvas) SavePNG(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create plot directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create plot")
	}
	w := bufio.NewWriter(f)
	if err := png.Encode(w, c.img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

// WithAlpha returns col with its alpha scaled by a in [0, 1].
func WithAlpha(col color.Color, a float64) color.Color {
	n := color.NRGBAModel.Convert(col).(color.NRGBA)
	n.A = uint8(math.Round(float64(n.A) * a))
	return n
}
