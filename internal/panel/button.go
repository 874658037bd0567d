package panel

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/orthybt/orthy/internal/control"
	"github.com/orthybt/orthy/internal/theme"
)

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
	StateActive
	numStates
)

// Button is a labelled push button. When On is set the button is a toggle
// and is drawn in the active colour while On reports true.
type Button struct {
	Label  string
	Action control.Action
	On     func(c *control.Controller) bool
	// Wide buttons take a whole row.
	Wide bool

	rect image.Rectangle
}

func (b *Button) Draw(dst *image.RGBA, th *theme.Theme, state ButtonState) {
	bg := th.ButtonBackground
	switch state {
	case StateHover:
		bg = th.ButtonBackgroundHover
	case StatePressed:
		bg = th.ButtonBackgroundPress
	case StateActive:
		bg = th.ButtonActive
	}
	draw.Draw(dst, b.rect, &image.Uniform{bg}, image.Point{}, draw.Src)
	drawRect(dst, b.rect, th.ButtonBorder)

	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.ButtonText), Face: face}
	w := d.MeasureString(b.Label).Ceil()
	x := b.rect.Min.X + (b.rect.Dx()-w)/2
	if x < b.rect.Min.X+2 {
		x = b.rect.Min.X + 2
	}
	d.Dot = fixed.P(x, b.rect.Min.Y+(b.rect.Dy()+face.Ascent-face.Descent)/2)
	d.DrawString(b.Label)
}

func (b *Button) Rect() image.Rectangle { return b.rect }

func (b *Button) SetRect(r image.Rectangle) { b.rect = r }

// Active reports whether a toggle button is currently on.
func (b *Button) Active(c *control.Controller) bool {
	return b.On != nil && c != nil && b.On(c)
}

// CacheButton wraps a Button and caches its rendered states. The cache is
// dropped when the button moves or the theme changes.
type CacheButton struct {
	*Button
	theme *theme.Theme
	cache [numStates]*image.RGBA
}

func (cb *CacheButton) Draw(dst *image.RGBA, th *theme.Theme, state ButtonState) {
	if th != cb.theme {
		cb.theme = th
		cb.cache = [numStates]*image.RGBA{}
	}
	r := cb.Button.Rect()
	if cb.cache[state] == nil {
		img := image.NewRGBA(r)
		cb.Button.Draw(img, th, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, r, cb.cache[state], r.Min, draw.Src)
}

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [numStates]*image.RGBA{}
	}
}

func drawRect(dst *image.RGBA, r image.Rectangle, col color.Color) {
	u := &image.Uniform{col}
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}
