package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/orthybt/orthy/internal/overlay"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func reddish(c color.RGBA) bool { return c.R > 200 && c.B < 60 }

// halves returns a w x h image whose left half is red and right half blue.
func halves(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(img, image.Rect(0, 0, w/2, h), red)
	fill(img, image.Rect(w/2, 0, w, h), blue)
	return img
}

func TestRenderIdentityAnchorsCentre(t *testing.T) {
	src := halves(800, 600)
	tr := overlay.NewTransform(r2.Vec{X: 512, Y: 384}, 1)
	f := Render(src, tr)
	require.NotNil(t, f.Image)
	assert.Equal(t, image.Rect(0, 0, 800, 600), f.Image.Bounds())
	assert.Equal(t, image.Pt(112, 84), f.Origin)
	assert.Equal(t, red, f.Image.RGBAAt(10, 10))
	assert.NotSame(t, src, f.Image)
}

func TestRenderDoesNotTouchSource(t *testing.T) {
	src := halves(20, 10)
	before := append([]uint8(nil), src.Pix...)
	tr := overlay.NewTransform(r2.Vec{X: 50, Y: 50}, 0.5)
	tr.FlipH = true
	tr.SetScale(2)
	tr.Rotate(30)
	Render(src, tr)
	assert.Equal(t, before, src.Pix)
}

func TestFadeRoundsAlpha(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 101, G: 0, B: 0, A: 101})
	out := Fade(src, 0.5)
	assert.Equal(t, color.RGBA{R: 51, A: 51}, out.RGBAAt(0, 0))
}

func TestFlipHorizontal(t *testing.T) {
	tr := overlay.NewTransform(r2.Vec{X: 10, Y: 5}, 1)
	tr.FlipH = true
	f := Render(halves(20, 10), tr)
	assert.Equal(t, blue, f.Image.RGBAAt(2, 5))
	assert.Equal(t, red, f.Image.RGBAAt(17, 5))
}

func TestScaleRoundsDimensions(t *testing.T) {
	tr := overlay.NewTransform(r2.Vec{X: 100, Y: 100}, 1)
	tr.SetScale(1.05)
	f := Render(halves(33, 17), tr)
	assert.Equal(t, image.Pt(35, 18), f.Image.Bounds().Size())

	tr.SetScale(overlay.MinScale)
	f = Render(halves(4, 4), tr)
	assert.Equal(t, image.Pt(1, 1), f.Image.Bounds().Size())
}

func TestRotateClockwiseExpandsCanvas(t *testing.T) {
	tr := overlay.NewTransform(r2.Vec{X: 100, Y: 100}, 1)
	tr.Rotate(90)
	f := Render(halves(40, 20), tr)
	require.Equal(t, image.Pt(20, 40), f.Image.Bounds().Size())
	// The left half ends up on top after a clockwise quarter turn.
	assert.True(t, reddish(f.Image.RGBAAt(10, 5)))
	assert.False(t, reddish(f.Image.RGBAAt(10, 35)))
	assert.Equal(t, image.Pt(90, 80), f.Origin)
}

func TestRotateAboutPivotKeepsPivotOnScreen(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 600))
	fill(src, src.Bounds(), blue)
	// Canvas point (300,300) lies at (188,216) in the source.
	fill(src, image.Rect(186, 214, 190, 218), red)

	tr := overlay.NewTransform(r2.Vec{X: 512, Y: 384}, 1)
	tr.SetPivot(r2.Vec{X: 300, Y: 300})
	tr.Rotate(180)
	f := Render(src, tr)

	for _, p := range []image.Point{{300, 300}, {299, 299}} {
		local := p.Sub(f.Origin)
		assert.True(t, reddish(f.Image.RGBAAt(local.X, local.Y)), "pixel %v", p)
	}
}

func TestRotateRoundTripAboutPivotAtScale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 150))
	fill(src, src.Bounds(), blue)
	// At scale 2 centred on (512,384), canvas point (400,300) is source (44,33).
	fill(src, image.Rect(42, 31, 46, 35), red)
	pivot := image.Pt(400, 300)

	pivotRed := func(f Frame) bool {
		local := pivot.Sub(f.Origin)
		if !local.In(f.Image.Bounds()) {
			return false
		}
		return reddish(f.Image.RGBAAt(local.X, local.Y))
	}

	for _, base := range []float64{0, 30} {
		for _, d := range []float64{15, 45, 90, 137.5, 270} {
			tr := overlay.NewTransform(r2.Vec{X: 512, Y: 384}, 1)
			tr.SetScale(2)
			tr.SetPivot(r2.Vec{X: float64(pivot.X), Y: float64(pivot.Y)})
			tr.SetAngle(base)
			start := Render(src, tr)
			require.True(t, pivotRed(start), "base %v", base)

			tr.Rotate(d)
			turned := Render(src, tr)
			assert.True(t, pivotRed(turned), "base %v +%v", base, d)

			tr.Rotate(-d)
			assert.InDelta(t, base, tr.Angle, 1e-9)
			back := Render(src, tr)
			assert.InDelta(t, start.Origin.X, back.Origin.X, 1, "base %v d %v", base, d)
			assert.InDelta(t, start.Origin.Y, back.Origin.Y, 1, "base %v d %v", base, d)
			assert.InDelta(t, start.Image.Bounds().Dx(), back.Image.Bounds().Dx(), 1)
			assert.InDelta(t, start.Image.Bounds().Dy(), back.Image.Bounds().Dy(), 1)
			assert.True(t, pivotRed(back), "base %v round trip %v", base, d)
		}
	}
}

func TestRotateWithoutPivotKeepsCentre(t *testing.T) {
	tr := overlay.NewTransform(r2.Vec{X: 200, Y: 150}, 1)
	tr.Rotate(45)
	f := Render(halves(60, 60), tr)
	b := f.Image.Bounds()
	centre := f.Origin.Add(image.Pt(b.Dx()/2, b.Dy()/2))
	assert.InDelta(t, 200, centre.X, 1)
	assert.InDelta(t, 150, centre.Y, 1)
}

func TestRenderEmptySource(t *testing.T) {
	f := Render(nil, overlay.NewTransform(r2.Vec{}, 1))
	assert.Nil(t, f.Image)
}
