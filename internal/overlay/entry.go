package overlay

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Entry is one loaded overlay image and its transform.
type Entry struct {
	Name string
	// Source is decoded once and never written to afterwards.
	Source  *image.RGBA
	Visible bool
	// Reference marks one of the built-in template overlays.
	Reference bool

	Transform Transform
	History   History
}

// Mutate applies fn to the transform. When record is set and the transform
// changed, the prior state is pushed onto the history.
func (e *Entry) Mutate(record bool, fn func(*Transform)) bool {
	before := e.Transform
	fn(&e.Transform)
	if e.Transform == before {
		return false
	}
	if record {
		e.History.Push(before)
	}
	return true
}

// Record pushes prev if it differs from the current transform. It is used
// for gestures that mutate over many events but undo as one step.
func (e *Entry) Record(prev Transform) bool {
	if prev == e.Transform {
		return false
	}
	e.History.Push(prev)
	return true
}

func (e *Entry) Undo() bool {
	t, ok := e.History.Undo(e.Transform)
	if ok {
		e.Transform = t
	}
	return ok
}

func (e *Entry) Redo() bool {
	t, ok := e.History.Redo(e.Transform)
	if ok {
		e.Transform = t
	}
	return ok
}

// Reset puts the transform back to defaults around center and clears history.
func (e *Entry) Reset(center r2.Vec) {
	e.Transform.Reset(center)
	e.History.Clear()
}

// Size is the source size after scaling, before rotation.
func (e *Entry) Size() image.Point {
	if e.Source == nil {
		return image.Point{}
	}
	b := e.Source.Bounds()
	return image.Pt(
		max(1, int(math.Round(float64(b.Dx())*e.Transform.Scale))),
		max(1, int(math.Round(float64(b.Dy())*e.Transform.Scale))),
	)
}

// Bounds is the unrotated scaled rectangle centred on the offset.
func (e *Entry) Bounds() image.Rectangle {
	sz := e.Size()
	x := int(math.Round(e.Transform.Offset.X - float64(sz.X)/2))
	y := int(math.Round(e.Transform.Offset.Y - float64(sz.Y)/2))
	return image.Rect(x, y, x+sz.X, y+sz.Y)
}

// Describe returns a short human readable property listing.
func (e *Entry) Describe() string {
	t := e.Transform
	pivot := "none"
	if t.HasPivot {
		pivot = fmt.Sprintf("(%.0f, %.0f)", t.Pivot.X, t.Pivot.Y)
	}
	return fmt.Sprintf("Name: %s\nScale: %.2f\nAngle: %.1f\nVisible: %v\nFlipped horizontally: %v\nFlipped vertically: %v\nTransparency: %.2f\nPivot: %s",
		e.Name, t.Scale, t.Angle, e.Visible, t.FlipH, t.FlipV, t.Transparency, pivot)
}
