package fontmodel

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/robert-malhotra/bgpack/internal/plot"
)

var (
	measuredColor = color.RGBA{31, 119, 180, 255}
	fitColor      = color.RGBA{255, 127, 14, 255}
)

// PlotName is the file name of the diagnostic plot of m.
func PlotName(m Model) string {
	dir := filepath.Base(filepath.Dir(m.Path))
	stem := strings.TrimSuffix(filepath.Base(m.Path), filepath.Ext(m.Path))
	return fmt.Sprintf("%s__%s__%s__%d.png", safe(m.Name), safe(dir), safe(stem), m.Index)
}

func safe(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, s)
}

// Plot draws the measured heights and the fitted line against size.
func Plot(m Model, sizes []float64) *plot.Canvas {
	const (
		w, h   = 500, 300
		left   = 50
		right  = 15
		top    = 25
		bottom = 35
	)
	c := plot.New(w, h, color.White)
	fit := make([]float64, len(sizes))
	for i, y := range sizes {
		fit[i] = m.Predict(y)
	}
	xmin, xmax := bounds(sizes)
	ymin, ymax := bounds(append(append([]float64(nil), m.Heights...), fit...))
	if ymax == ymin {
		ymax = ymin + 1
	}
	if xmax == xmin {
		xmax = xmin + 1
	}
	at := func(x, y float64) plot.Point {
		return plot.Point{
			X: left + (x-xmin)/(xmax-xmin)*(w-left-right),
			Y: h - bottom - (y-ymin)/(ymax-ymin)*(h-top-bottom),
		}
	}

	axis := color.Gray{Y: 80}
	c.Line(at(xmin, ymin), at(xmax, ymin), 1, axis)
	c.Line(at(xmin, ymin), at(xmin, ymax), 1, axis)

	line := func(vals []float64, col color.Color) {
		pts := make([]plot.Point, len(sizes))
		for i, y := range sizes {
			pts[i] = at(y, vals[i])
		}
		c.Polyline(pts, 1.5, col)
	}
	line(m.Heights, measuredColor)
	line(fit, fitColor)

	c.Text(plot.Point{X: left, Y: 16}, m.Name, color.Black)
	c.Text(plot.Point{X: w/2 - 40, Y: h - 8}, "point size y", axis)
	c.Text(plot.Point{X: 4, Y: top + 10}, fmt.Sprintf("%.0f", ymax), axis)
	c.Text(plot.Point{X: 4, Y: h - bottom}, fmt.Sprintf("%.0f", ymin), axis)
	c.Line(plot.Point{X: left + 10, Y: top + 12}, plot.Point{X: left + 30, Y: top + 12}, 2, measuredColor)
	c.Text(plot.Point{X: left + 35, Y: top + 16}, "measured h(y)", color.Black)
	c.Line(plot.Point{X: left + 10, Y: top + 28}, plot.Point{X: left + 30, Y: top + 28}, 2, fitColor)
	c.Text(plot.Point{X: left + 35, Y: top + 32}, "linear fit", color.Black)
	return c
}

func bounds(vals []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if len(vals) == 0 {
		return 0, 1
	}
	return lo, hi
}
