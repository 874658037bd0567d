// Package render turns an overlay entry into a positioned screen bitmap and
// composites the visible entries onto a canvas.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/orthybt/orthy/internal/overlay"
)

// Frame is a rendered entry ready to be blitted.
type Frame struct {
	// Image has zero-based bounds.
	Image *image.RGBA
	// Origin is the canvas position of Image's top-left corner.
	Origin image.Point
}

// Render runs the fixed pipeline: transparency, flips, scale, rotation and
// finally anchoring the result's centre on the transform offset. It does
// not modify src.
func Render(src *image.RGBA, t overlay.Transform) Frame {
	if src == nil || src.Bounds().Empty() {
		return Frame{}
	}
	img := Fade(src, t.Transparency)
	if t.FlipH {
		img = transform.FlipH(img)
	}
	if t.FlipV {
		img = transform.FlipV(img)
	}
	img = Scale(img, t.Scale)

	// The pivot is tracked in canvas space; bring it into the frame of the
	// scaled image, whose centre sits at the offset.
	c := halfSize(img.Bounds())
	pivot := c
	if t.HasPivot {
		pivot = r2.Sub(t.Pivot, r2.Sub(t.Offset, c))
	}
	img = Rotate(img, t.Angle, pivot)

	return Frame{Image: img, Origin: anchor(img.Bounds(), t.Offset)}
}

// Fade multiplies every premultiplied channel by level, so alpha becomes
// round(alpha*level). Level 1 returns an unshared copy of src.
func Fade(src *image.RGBA, level float64) *image.RGBA {
	if level >= 1 {
		return zeroBased(clone.AsRGBA(src))
	}
	if level < 0 {
		level = 0
	}
	mul := func(v uint8) uint8 { return uint8(math.Round(float64(v) * level)) }
	return zeroBased(adjust.Apply(clone.AsRGBA(src), func(c color.RGBA) color.RGBA {
		return color.RGBA{R: mul(c.R), G: mul(c.G), B: mul(c.B), A: mul(c.A)}
	}))
}

// Scale resizes img by s with a Lanczos filter to round(w*s) x round(h*s).
func Scale(img *image.RGBA, s float64) *image.RGBA {
	b := img.Bounds()
	w := max(1, int(math.Round(float64(b.Dx())*s)))
	h := max(1, int(math.Round(float64(b.Dy())*s)))
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return transform.Resize(img, w, h, transform.Lanczos)
}

// Rotate turns img clockwise by deg degrees about pivot, given in image
// coordinates. The output canvas is grown symmetrically around the image
// centre so nothing is cropped and the pivot keeps its offset from the
// centre.
func Rotate(img *image.RGBA, deg float64, pivot r2.Vec) *image.RGBA {
	if math.Mod(deg, 360) == 0 {
		return img
	}
	b := img.Bounds()
	c := halfSize(b)
	rad := deg * math.Pi / 180

	var ext r2.Vec
	for _, corner := range []r2.Vec{
		{X: 0, Y: 0},
		{X: float64(b.Dx()), Y: 0},
		{X: 0, Y: float64(b.Dy())},
		{X: float64(b.Dx()), Y: float64(b.Dy())},
	} {
		d := r2.Sub(r2.Rotate(corner, rad, pivot), c)
		ext.X = math.Max(ext.X, math.Abs(d.X))
		ext.Y = math.Max(ext.Y, math.Abs(d.Y))
	}
	w := max(1, int(math.Ceil(2*ext.X-1e-9)))
	h := max(1, int(math.Ceil(2*ext.Y-1e-9)))
	half := r2.Vec{X: float64(w) / 2, Y: float64(h) / 2}

	// y grows downwards, so this matrix turns clockwise on screen.
	sin, cos := math.Sincos(rad)
	shift := r2.Add(r2.Sub(pivot, c), half)
	rp := r2.Rotate(pivot, rad, r2.Vec{})
	m := f64.Aff3{
		cos, -sin, shift.X - rp.X,
		sin, cos, shift.Y - rp.Y,
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Transform(dst, m, img, b, xdraw.Src, nil)
	return dst
}

func halfSize(b image.Rectangle) r2.Vec {
	return r2.Vec{X: float64(b.Dx()) / 2, Y: float64(b.Dy()) / 2}
}

func anchor(b image.Rectangle, offset r2.Vec) image.Point {
	return image.Pt(
		int(math.Round(offset.X-float64(b.Dx())/2)),
		int(math.Round(offset.Y-float64(b.Dy())/2)),
	)
}

func zeroBased(img *image.RGBA) *image.RGBA {
	img.Rect = img.Rect.Sub(img.Rect.Min)
	return img
}
