// Package fontmodel fits, for every font, a linear model of rendered glyph
// height against point size: h = A*size + B.
package fontmodel

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/mat"
)

// Point sizes the model is fitted over.
const (
	MinSize = 8
	MaxSize = 199
)

// Model is the fit for one font.
type Model struct {
	Name    string
	Path    string
	Index   int // position in the list of discovered fonts
	A, B    float64
	Heights []float64 // measured at Sizes()
}

// Predict returns the modelled glyph height at size.
func (m Model) Predict(size float64) float64 {
	return m.A*size + m.B
}

// Sizes returns MinSize..MaxSize.
func Sizes() []float64 {
	ys := make([]float64, 0, MaxSize-MinSize+1)
	for y := MinSize; y <= MaxSize; y++ {
		ys = append(ys, float64(y))
	}
	return ys
}

// Discover returns the font files under dir in lexical order.
func Discover(dir string) ([]string, error) {
	matches, err := doublestar.Glob(filepath.Join(dir, "**", "*.{ttf,otf,TTF,OTF}"))
	if err != nil {
		return nil, errors.Wrapf(err, "search fonts in %s", dir)
	}
	sort.Strings(matches)
	return matches, nil
}

// Measure loads the font at path and returns its family name and glyph
// height (ascent plus descent, in pixels at 72 dpi) at each size.
func Measure(path string, sizes []float64) (string, []float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return "", nil, errors.Wrap(err, "parse font")
	}
	var buf sfnt.Buffer
	name, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil || name == "" {
		name = filepath.Base(path)
	}
	heights := make([]float64, len(sizes))
	for i, y := range sizes {
		m, err := f.Metrics(&buf, fixed.Int26_6(y*64), font.HintingNone)
		if err != nil {
			return "", nil, errors.Wrapf(err, "metrics at %v", y)
		}
		heights[i] = float64(m.Ascent+m.Descent) / 64
	}
	return name, heights, nil
}

// Fit solves heights = a*sizes + b in the least-squares sense.
func Fit(sizes, heights []float64) (a, b float64, err error) {
	if len(sizes) != len(heights) {
		return 0, 0, errors.Errorf("%d sizes but %d heights", len(sizes), len(heights))
	}
	if len(sizes) < 2 {
		return 0, 0, errors.New("need at least two points")
	}
	design := mat.NewDense(len(sizes), 2, nil)
	for i, y := range sizes {
		design.Set(i, 0, y)
		design.Set(i, 1, 1)
	}
	var x mat.VecDense
	if err := x.SolveVec(design, mat.NewVecDense(len(heights), append([]float64(nil), heights...))); err != nil {
		return 0, 0, errors.Wrap(err, "least squares")
	}
	return x.AtVec(0), x.AtVec(1), nil
}

// FitAll measures and fits every font in paths. Fonts that fail to load
// are logged and left out.
func FitAll(paths []string, logger logrus.FieldLogger) []Model {
	sizes := Sizes()
	models := make([]Model, 0, len(paths))
	for i, p := range paths {
		log := logger.WithField("action", "fontmodel_fit").WithField("font", p)
		name, heights, err := Measure(p, sizes)
		if err != nil {
			log.WithError(err).Warn("skipping font (failed to load)")
			continue
		}
		a, b, err := Fit(sizes, heights)
		if err != nil {
			log.WithError(err).Warn("skipping font (fit failed)")
			continue
		}
		log.WithField("name", name).Infof("Processing: %s", name)
		models = append(models, Model{Name: name, Path: p, Index: i, A: a, B: b, Heights: heights})
	}
	return models
}
