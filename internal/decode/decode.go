// Package decode loads overlay images from disk or memory into RGBA buffers.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	// Registered raster formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupported is wrapped by DecodeError when the data is not an image
// format the decoder knows.
var ErrUnsupported = errors.New("unsupported image format")

// DecodeError reports a file that could not be turned into pixels.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.Path, e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

// Decoder converts image files into RGBA buffers with zero-based bounds.
type Decoder struct {
	// SVGWidth is the raster width for vector images. Zero uses the
	// document's own viewBox size.
	SVGWidth int
	// MaxDimension downscales anything larger on either side. Zero keeps
	// the decoded size.
	MaxDimension int
}

// Decode reads and decodes the file at path.
func (d Decoder) Decode(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return d.DecodeBytes(path, data)
}

// DecodeFS decodes name from fsys, used for embedded overlays.
func (d Decoder) DecodeFS(fsys fs.FS, name string) (*image.RGBA, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, &DecodeError{Path: name, Err: err}
	}
	return d.DecodeBytes(name, data)
}

// DecodeBytes decodes data. name is used for error messages and as a hint
// for vector content.
func (d Decoder) DecodeBytes(name string, data []byte) (*image.RGBA, error) {
	img, err := d.decode(name, data)
	if err != nil {
		return nil, &DecodeError{Path: name, Err: err}
	}
	return d.limit(img), nil
}

func (d Decoder) decode(name string, data []byte) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	kind, _ := filetype.Match(data)
	var (
		img image.Image
		err error
	)
	switch {
	case strings.EqualFold(filepath.Ext(name), ".tga"):
		// TGA has no magic number, so only the extension identifies it.
		img, err = tga.Decode(bytes.NewReader(data))
	case kind == filetype.Unknown && isSVG(name, data):
		return rasterizeSVG(data, d.SVGWidth)
	case kind == filetype.Unknown:
		return nil, ErrUnsupported
	case !filetype.IsImage(data):
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind.MIME.Value)
	default:
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	rgba := clone.AsRGBA(img)
	rgba.Rect = rgba.Rect.Sub(rgba.Rect.Min)
	return rgba, nil
}

func isSVG(name string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(name), ".svg") {
		return true
	}
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// limit scales img down so neither side exceeds MaxDimension.
func (d Decoder) limit(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	if d.MaxDimension <= 0 || max(b.Dx(), b.Dy()) <= d.MaxDimension {
		return img
	}
	f := float64(d.MaxDimension) / float64(max(b.Dx(), b.Dy()))
	w := max(1, int(math.Round(float64(b.Dx())*f)))
	h := max(1, int(math.Round(float64(b.Dy())*f)))
	return transform.Resize(img, w, h, transform.Lanczos)
}
