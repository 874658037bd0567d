package overlay

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Scale limits applied after every zoom mutation.
const (
	MinScale = 0.1
	MaxScale = 10.0
)

// MinTransparency is the lowest opacity an entry can be set to.
const MinTransparency = 0.01

// Transform is the per-entry placement state fed to the render pipeline.
//
// Scale always equals 2^ScaleLog and Angle stays within [0, 360). The
// zero value is not useful; use NewTransform.
type Transform struct {
	Scale    float64
	ScaleLog float64
	Angle    float64

	FlipH bool
	FlipV bool

	// Offset is the canvas point the rendered frame is centred on.
	Offset r2.Vec

	// Pivot is the canvas point rotation happens about when HasPivot is set.
	Pivot    r2.Vec
	HasPivot bool

	Transparency float64
}

// NewTransform returns a transform centred on center with unit scale.
func NewTransform(center r2.Vec, transparency float64) Transform {
	t := Transform{Scale: 1, Offset: center, Transparency: 1}
	t.SetTransparency(transparency)
	return t
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// SetScale clamps s into [MinScale, MaxScale] and resynchronises ScaleLog.
func (t *Transform) SetScale(s float64) {
	if !finite(s) {
		return
	}
	t.Scale = clamp(s, MinScale, MaxScale)
	t.ScaleLog = math.Log2(t.Scale)
}

// SetScaleLog sets the logarithmic zoom; the result is clamped the same way
// SetScale clamps, so ScaleLog may end up different from v.
func (t *Transform) SetScaleLog(v float64) {
	if !finite(v) {
		return
	}
	t.SetScale(math.Exp2(v))
}

// AdjustScaleLog adds d to ScaleLog.
func (t *Transform) AdjustScaleLog(d float64) { t.SetScaleLog(t.ScaleLog + d) }

// AdjustScale adds d to the linear scale factor.
func (t *Transform) AdjustScale(d float64) { t.SetScale(t.Scale + d) }

// SetAngle stores a mod 360, so negative angles wrap around.
func (t *Transform) SetAngle(a float64) {
	if !finite(a) {
		return
	}
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 || a == 0 {
		a = 0
	}
	t.Angle = a
}

// Rotate turns the entry clockwise by d degrees.
func (t *Transform) Rotate(d float64) { t.SetAngle(t.Angle + d) }

// Nudge moves the offset by (dx, dy).
func (t *Transform) Nudge(dx, dy float64) {
	if !finite(dx) || !finite(dy) {
		return
	}
	t.Offset = r2.Add(t.Offset, r2.Vec{X: dx, Y: dy})
}

// MoveTo places the frame centre at p.
func (t *Transform) MoveTo(p r2.Vec) {
	if !finite(p.X) || !finite(p.Y) {
		return
	}
	t.Offset = p
}

// SetPivot pins rotation to the canvas point p.
func (t *Transform) SetPivot(p r2.Vec) {
	if !finite(p.X) || !finite(p.Y) {
		return
	}
	t.Pivot = p
	t.HasPivot = true
}

func (t *Transform) ClearPivot() {
	t.Pivot = r2.Vec{}
	t.HasPivot = false
}

// SetTransparency clamps v into [MinTransparency, 1].
func (t *Transform) SetTransparency(v float64) {
	if !finite(v) {
		return
	}
	t.Transparency = clamp(v, MinTransparency, 1)
}

// ToggleTransparency flips between low and fully opaque. Anything at or
// below low goes to 1.0, everything else goes to low.
func (t *Transform) ToggleTransparency(low float64) {
	if t.Transparency <= low {
		t.SetTransparency(1)
		return
	}
	t.SetTransparency(low)
}

// Reset restores the defaults used for a freshly loaded entry, centred on
// center and fully opaque.
func (t *Transform) Reset(center r2.Vec) {
	*t = NewTransform(center, 1)
}
