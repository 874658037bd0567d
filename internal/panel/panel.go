// Package panel draws the control panel window and maps clicks on it to
// controller actions.
package panel

import (
	"image"
	"image/draw"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/orthybt/orthy/internal/control"
	"github.com/orthybt/orthy/internal/theme"
)

const (
	DefaultWidth = 240
	rowHeight    = 24
	pad          = 4
	lineHeight   = 15
	statusLines  = 9
)

var (
	faceOnce    sync.Once
	messageFace font.Face
)

// loadMessageFace returns the face used for flash messages. It falls back
// to the bitmap face if the embedded font cannot be parsed.
func loadMessageFace() font.Face {
	faceOnce.Do(func() {
		messageFace = basicfont.Face7x13
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: 14, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return
		}
		messageFace = face
	})
	return messageFace
}

// DefaultButtons returns the stock button set followed by one toggle per
// reference overlay.
func DefaultButtons(refs []control.Reference) []*Button {
	active := func(fn func(c *control.Controller) bool) func(c *control.Controller) bool {
		return func(c *control.Controller) bool {
			return c.Set().Active() != nil && fn(c)
		}
	}
	buttons := []*Button{
		{Label: "Load Image", Wide: true, Action: func(c *control.Controller) { c.OpenImage() }},
		{Label: "Toggle Transp", Wide: true, Action: func(c *control.Controller) { c.ToggleTransparency() },
			On: active(func(c *control.Controller) bool { return c.Set().Active().Transform.Transparency < 1 })},
		{Label: "Flip Horizontal", Action: func(c *control.Controller) { c.FlipHorizontal() },
			On: active(func(c *control.Controller) bool { return c.Set().Active().Transform.FlipH })},
		{Label: "Flip Vertical", Action: func(c *control.Controller) { c.FlipVertical() },
			On: active(func(c *control.Controller) bool { return c.Set().Active().Transform.FlipV })},
		{Label: "Set Rot Pt", Wide: true, Action: func(c *control.Controller) { c.TogglePivotMode() },
			On: func(c *control.Controller) bool { return c.Mode() == control.PivotPicking }},
		{Label: "Zoom In", Action: func(c *control.Controller) { c.ZoomIn() }},
		{Label: "Zoom Out", Action: func(c *control.Controller) { c.ZoomOut() }},
		{Label: "Fine Zoom In", Action: func(c *control.Controller) { c.FineZoomIn() }},
		{Label: "Fine Zoom Out", Action: func(c *control.Controller) { c.FineZoomOut() }},
		{Label: "Rotate CW", Action: func(c *control.Controller) { c.RotateBy(c.Settings().RotateStep) }},
		{Label: "Rotate CCW", Action: func(c *control.Controller) { c.RotateBy(-c.Settings().RotateStep) }},
		{Label: "Undo Move", Action: func(c *control.Controller) { c.Undo() }},
		{Label: "Redo Move", Action: func(c *control.Controller) { c.Redo() }},
		{Label: "Next Image", Action: func(c *control.Controller) { c.CycleActive() }},
		{Label: "Delete Image", Action: func(c *control.Controller) { c.DeleteActive() }},
		{Label: "Control Mode", Wide: true, Action: func(c *control.Controller) { c.ToggleControlMode() },
			On: func(c *control.Controller) bool { return c.ControlMode() }},
	}
	for _, ref := range refs {
		name := ref.Name
		buttons = append(buttons, &Button{
			Label:  name,
			Action: func(c *control.Controller) { _ = c.ToggleReference(name) },
			On:     func(c *control.Controller) bool { return c.ReferenceVisible(name) },
		})
	}
	return append(buttons, &Button{
		Label: "Overlay Window", Wide: true, Action: func(c *control.Controller) { c.ToggleWindow() },
		On: func(c *control.Controller) bool { return c.WindowVisible() },
	})
}

// Panel is the control panel: a two column grid of buttons above a status
// area describing the active overlay.
type Panel struct {
	theme   *theme.Theme
	buttons []*CacheButton
	size    image.Point

	hover   int
	pressed int

	message      string
	messageUntil time.Time
	now          func() time.Time
}

// New lays buttons out for DefaultWidth.
func New(th *theme.Theme, buttons []*Button) *Panel {
	if th == nil {
		th = theme.Default()
	}
	p := &Panel{theme: th, hover: -1, pressed: -1, now: time.Now}
	for _, b := range buttons {
		p.buttons = append(p.buttons, &CacheButton{Button: b})
	}
	p.Layout(DefaultWidth)
	return p
}

// SetTheme switches colours; cached button images are redrawn lazily.
func (p *Panel) SetTheme(th *theme.Theme) {
	if th != nil {
		p.theme = th
	}
}

func (p *Panel) Theme() *theme.Theme { return p.theme }

// Layout places the buttons for the given width and returns the size the
// panel needs.
func (p *Panel) Layout(width int) image.Point {
	if width < 2*rowHeight {
		width = 2 * rowHeight
	}
	colW := (width - 3*pad) / 2
	y := pad
	col := 0
	for _, b := range p.buttons {
		if b.Wide && col == 1 {
			y += rowHeight + pad
			col = 0
		}
		switch {
		case b.Wide:
			b.SetRect(image.Rect(pad, y, width-pad, y+rowHeight))
			y += rowHeight + pad
		case col == 0:
			b.SetRect(image.Rect(pad, y, pad+colW, y+rowHeight))
			col = 1
		default:
			b.SetRect(image.Rect(2*pad+colW, y, width-pad, y+rowHeight))
			y += rowHeight + pad
			col = 0
		}
	}
	if col == 1 {
		y += rowHeight + pad
	}
	p.size = image.Pt(width, y+statusLines*lineHeight+2*pad)
	return p.size
}

func (p *Panel) Size() image.Point { return p.size }

// statusTop is the first pixel row below the buttons.
func (p *Panel) statusTop() int {
	return p.size.Y - statusLines*lineHeight - 2*pad
}

// ButtonAt returns the index of the button under pt, or -1.
func (p *Panel) ButtonAt(pt image.Point) int {
	for i, b := range p.buttons {
		if pt.In(b.Rect()) {
			return i
		}
	}
	return -1
}

// Hover tracks the pointer and reports whether a redraw is needed.
func (p *Panel) Hover(pt image.Point) bool {
	i := p.ButtonAt(pt)
	if i == p.hover {
		return false
	}
	p.hover = i
	return true
}

// Press arms the button under pt.
func (p *Panel) Press(pt image.Point) bool {
	p.pressed = p.ButtonAt(pt)
	return p.pressed >= 0
}

// Release returns the action of the armed button if the pointer is still
// over it.
func (p *Panel) Release(pt image.Point) control.Action {
	i := p.pressed
	p.pressed = -1
	if i < 0 || p.ButtonAt(pt) != i {
		return nil
	}
	return p.buttons[i].Action
}

// Flash shows msg in the status area for d.
func (p *Panel) Flash(msg string, d time.Duration) {
	p.message = msg
	p.messageUntil = p.now().Add(d)
}

// Draw paints the panel for the controller's current state.
func (p *Panel) Draw(dst *image.RGBA, c *control.Controller) {
	th := p.theme
	draw.Draw(dst, dst.Bounds(), &image.Uniform{th.Background}, image.Point{}, draw.Src)

	for i, b := range p.buttons {
		state := StateDefault
		switch {
		case i == p.pressed:
			state = StatePressed
		case b.Active(c):
			state = StateActive
		case i == p.hover:
			state = StateHover
		}
		b.Draw(dst, th, state)
	}

	y := p.statusTop() + pad
	text := &font.Drawer{Dst: dst, Src: image.NewUniform(th.StatusText), Face: basicfont.Face7x13}
	status := "No active image"
	if c != nil {
		status = c.Describe()
	}
	for _, line := range strings.Split(status, "\n") {
		y += lineHeight
		text.Dot = fixed.P(pad+2, y)
		text.DrawString(line)
	}

	if p.message != "" && p.now().Before(p.messageUntil) {
		msg := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: loadMessageFace()}
		msg.Dot = fixed.P(pad+2, p.size.Y-pad-2)
		msg.DrawString(p.message)
	}
}
