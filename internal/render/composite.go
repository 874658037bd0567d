package render

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/orthybt/orthy/internal/overlay"
)

// Canvas is the surface entries are composited onto.
type Canvas interface {
	Size() image.Point
	Clear()
	Blit(img image.Image, at image.Point)
}

// RGBACanvas is a Canvas backed by an in-memory image. The zero colour is
// fully transparent.
type RGBACanvas struct {
	Image      *image.RGBA
	Background color.Color
}

// NewRGBACanvas allocates a w x h canvas.
func NewRGBACanvas(w, h int) *RGBACanvas {
	return &RGBACanvas{Image: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (c *RGBACanvas) Size() image.Point { return c.Image.Bounds().Size() }

func (c *RGBACanvas) Clear() {
	bg := c.Background
	if bg == nil {
		bg = color.Transparent
	}
	xdraw.Draw(c.Image, c.Image.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)
}

func (c *RGBACanvas) Blit(img image.Image, at image.Point) {
	b := img.Bounds()
	xdraw.Draw(c.Image, b.Sub(b.Min).Add(at), img, b.Min, xdraw.Over)
}

// Cache keeps the last frame per entry so unchanged entries are not run
// through the pipeline again on every redraw.
type Cache struct {
	frames map[*overlay.Entry]cached
}

type cached struct {
	t     overlay.Transform
	frame Frame
}

// Frame returns the rendered frame for e, reusing the cached one when the
// transform has not changed.
func (c *Cache) Frame(e *overlay.Entry) Frame {
	if c.frames == nil {
		c.frames = make(map[*overlay.Entry]cached)
	}
	if f, ok := c.frames[e]; ok && f.t == e.Transform {
		return f.frame
	}
	f := Render(e.Source, e.Transform)
	c.frames[e] = cached{t: e.Transform, frame: f}
	return f
}

// Prune drops frames for entries not in keep.
func (c *Cache) Prune(keep []*overlay.Entry) {
	live := make(map[*overlay.Entry]bool, len(keep))
	for _, e := range keep {
		live[e] = true
	}
	for e := range c.frames {
		if !live[e] {
			delete(c.frames, e)
		}
	}
}

// Composite clears dst and draws every visible entry of set in insertion
// order. A nil cache renders every entry afresh.
func Composite(dst Canvas, set *overlay.Set, cache *Cache) {
	dst.Clear()
	visible := set.Visible()
	for _, e := range visible {
		var f Frame
		if cache != nil {
			f = cache.Frame(e)
		} else {
			f = Render(e.Source, e.Transform)
		}
		if f.Image != nil {
			dst.Blit(f.Image, f.Origin)
		}
	}
	if cache != nil {
		cache.Prune(visible)
	}
}

// PivotColor marks the rotation point.
var PivotColor = color.RGBA{R: 255, A: 255}

// DrawPivot paints a small filled dot at the active entry's pivot.
func DrawPivot(dst *image.RGBA, e *overlay.Entry, radius float64) {
	if e == nil || !e.Transform.HasPivot || !e.Visible {
		return
	}
	p := e.Transform.Pivot
	r := int(math.Ceil(radius))
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if float64(x*x+y*y) > radius*radius {
				continue
			}
			pt := image.Pt(int(math.Round(p.X))+x, int(math.Round(p.Y))+y)
			if pt.In(dst.Bounds()) {
				dst.SetRGBA(pt.X, pt.Y, PivotColor)
			}
		}
	}
}
