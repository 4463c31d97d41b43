package source

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/robert-malhotra/bgpack/hdf5"
)

// ImageDir is the directory of background images inside a dataset root.
const ImageDir = "bg_img"

var formats = []string{"bmp", "gif", "jpeg", "png", "tiff", "webp"}

// Formats lists the image encodings Fetch can decode.
func Formats() []string {
	out := append([]string(nil), formats...)
	sort.Strings(out)
	return out
}

// ImageStore reads images from a directory by file name.
type ImageStore struct {
	dir string
}

// NewImageStore returns a store over dir. The directory is not read until
// the first lookup.
func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

// Path returns the file that holds id.
func (s *ImageStore) Path(id string) string {
	return filepath.Join(s.dir, id)
}

// Exists reports whether a regular file named id is in the directory.
func (s *ImageStore) Exists(id string) bool {
	fi, err := os.Stat(s.Path(id))
	return err == nil && fi.Mode().IsRegular()
}

// Fetch decodes the image into a height x width x 3 uint8 array in RGB
// order. Alpha is dropped without compositing. Any failure, including a
// missing file, is a *DecodeError.
func (s *ImageStore) Fetch(id string) (*Record, error) {
	p := s.Path(id)
	f, err := os.Open(p)
	if err != nil {
		return nil, &DecodeError{ID: id, Path: p, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{ID: id, Path: p, Err: err}
	}
	raw, err := toRGB(img)
	if err != nil {
		return nil, &DecodeError{ID: id, Path: p, Err: err}
	}
	return &Record{Array: raw}, nil
}

// Close is a no-op; files are opened per fetch.
func (s *ImageStore) Close() error {
	return nil
}

func toRGB(img image.Image) (*hdf5.Raw, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, errors.New("empty image")
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		xdraw.Draw(nrgba, nrgba.Rect, img, b.Min, xdraw.Src)
	}
	pix := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			pix = append(pix, row[x], row[x+1], row[x+2])
		}
	}
	return hdf5.NewRaw(pix, uint64(h), uint64(w), 3)
}
