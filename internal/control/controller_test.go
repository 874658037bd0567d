package control

import (
	"bytes"
	"errors"
	"image"
	"io/fs"
	"log/slog"
	"math"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/orthybt/orthy/internal/dialog"
	"github.com/orthybt/orthy/internal/overlay"
)

type fakeDecoder struct {
	size  image.Point
	fail  error
	paths []string
}

func (d *fakeDecoder) Decode(path string) (*image.RGBA, error) {
	d.paths = append(d.paths, path)
	if d.fail != nil {
		return nil, d.fail
	}
	return image.NewRGBA(image.Rect(0, 0, d.size.X, d.size.Y)), nil
}

func (d *fakeDecoder) DecodeFS(fsys fs.FS, name string) (*image.RGBA, error) {
	if _, err := fs.Stat(fsys, name); err != nil {
		return nil, err
	}
	return d.Decode(name)
}

func (d *fakeDecoder) DecodeBytes(name string, data []byte) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, errors.New("empty")
	}
	return d.Decode(name)
}

type fakeDialogs struct {
	file     string
	fileErr  error
	name     string
	warnings []string
	errors   []string
}

func (f *fakeDialogs) OpenFile(string) (string, error) { return f.file, f.fileErr }

func (f *fakeDialogs) AskString(_, _, def string) (string, error) {
	if f.name == "" {
		return def, nil
	}
	return f.name, nil
}

func (f *fakeDialogs) Warn(_, msg string)  { f.warnings = append(f.warnings, msg) }
func (f *fakeDialogs) Error(_, msg string) { f.errors = append(f.errors, msg) }

type harness struct {
	c       *Controller
	dec     *fakeDecoder
	dlg     *fakeDialogs
	redraws int
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{dec: &fakeDecoder{size: image.Pt(800, 600)}, dlg: &fakeDialogs{}}
	assets := fstest.MapFS{
		"overlays/ruler.svg":  {Data: []byte("<svg/>")},
		"overlays/normal.svg": {Data: []byte("<svg/>")},
	}
	base := []Option{
		WithDecoder(h.dec),
		WithDialogs(h.dlg),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		WithCanvasSize(1024, 768),
		WithRedraw(func() { h.redraws++ }),
		WithReferences(assets, []Reference{
			{Name: "Ruler", File: "overlays/ruler.svg"},
			{Name: "Normal", File: "overlays/normal.svg"},
		}),
	}
	h.c = New(overlay.NewSet(overlay.Options{}), append(base, opts...)...)
	return h
}

func (h *harness) load(t *testing.T, name string) *overlay.Entry {
	t.Helper()
	e, err := h.c.LoadImage(name, image.NewRGBA(image.Rect(0, 0, 800, 600)))
	require.NoError(t, err)
	return e
}

func TestLoadZoomResetScenario(t *testing.T) {
	h := newHarness(t)
	e := h.load(t, "A")
	assert.Equal(t, r2.Vec{X: 512, Y: 384}, e.Transform.Offset)
	assert.Equal(t, 1.0, e.Transform.Scale)

	h.c.ZoomIn()
	assert.InDelta(t, 1.05, e.Transform.Scale, 1e-12)
	assert.InDelta(t, math.Log2(1.05), e.Transform.ScaleLog, 1e-12)
	assert.True(t, h.c.CanUndo())

	e.Transform.SetPivot(r2.Vec{X: 1, Y: 2})
	h.c.SecondaryClick(image.Pt(0, 0))
	assert.Equal(t, 1.0, e.Transform.Scale)
	assert.Equal(t, 0.0, e.Transform.ScaleLog)
	assert.Equal(t, 0.0, e.Transform.Angle)
	assert.False(t, e.Transform.HasPivot)
	assert.False(t, h.c.CanUndo())
	assert.False(t, h.c.CanRedo())
}

func TestDragPansIncrementally(t *testing.T) {
	h := newHarness(t)
	e := h.load(t, "A")

	h.c.PointerDown(image.Pt(100, 100), 0)
	assert.Equal(t, Dragging, h.c.Mode())
	h.c.PointerMove(image.Pt(110, 105), 0)
	h.c.PointerMove(image.Pt(120, 110), 0)
	assert.Equal(t, r2.Vec{X: 532, Y: 394}, e.Transform.Offset)
	h.c.PointerUp(image.Pt(120, 110), 0)
	assert.Equal(t, Idle, h.c.Mode())

	// One undo step for the whole drag.
	require.True(t, h.c.Undo())
	assert.Equal(t, r2.Vec{X: 512, Y: 384}, e.Transform.Offset)
	assert.False(t, h.c.CanUndo())
}

func TestDragWithModifierRotates(t *testing.T) {
	h := newHarness(t)
	e := h.load(t, "A")

	h.c.PointerDown(image.Pt(100, 100), ModCtrl)
	h.c.PointerMove(image.Pt(120, 140), ModCtrl)
	h.c.PointerUp(image.Pt(120, 140), ModCtrl)
	assert.InDelta(t, 2.0, e.Transform.Angle, 1e-9)
	assert.Equal(t, r2.Vec{X: 512, Y: 384}, e.Transform.Offset)

	h.c.PointerDown(image.Pt(100, 100), ModCtrl)
	h.c.PointerMove(image.Pt(75, 100), ModCtrl)
	assert.InDelta(t, 359.5, e.Transform.Angle, 1e-9)
}

func TestMoveWithoutDragIsIgnored(t *testing.T) {
	h := newHarness(t)
	e := h.load(t, "A")
	h.c.PointerMove(image.Pt(50, 50), 0)
	h.c.PointerUp(image.Pt(60, 60), 0)
	assert.Equal(t, r2.Vec{X: 512, Y: 384}, e.Transform.Offset)
}

func TestPivotPicking(t *testing.T) {
	h := newHarness(t)
	e := h.load(t, "A")

	h.c.TogglePivotMode()
	require.Equal(t, PivotPicking, h.c.Mode())
	h.c.PointerDown(image.Pt(300, 300), 0)
	assert.Equal(t, Idle, h.c.Mode())
	assert.True(t, e.Transform.HasPivot)
	assert.Equal(t, r2.Vec{X: 300, Y: 300}, e.Transform.Pivot)
	assert.Equal(t, r2.Vec{X: 512, Y: 384}, e.Transform.Offset, "pivot click does not drag")

	h.c.TogglePivotMode()
	h.c.CancelPivot()
	assert.Equal(t, Idle, h.c.Mode())
	assert.False(t, e.Transform.HasPivot)
}

func TestPivotModeNeedsActiveEntry(t *testing.T) {
	h := newHarness(t)
	h.c.TogglePivotMode()
	assert.Equal(t, Idle, h.c.Mode())
	assert.Len(t, h.dlg.warnings, 1)
}

func TestSecondaryClickLeavesPivotMode(t *testing.T) {
	h := newHarness(t)
	h.load(t, "A")
	h.c.TogglePivotMode()
	h.c.SecondaryClick(image.Pt(1, 1))
	assert.Equal(t, Idle, h.c.Mode())
}

func TestWheelZoomIsLogarithmic(t *testing.T) {
	h := newHarness(t)
	e := h.load(t, "A")
	h.c.Wheel(NormalizeWheel(240, false))
	assert.InDelta(t, 0.1, e.Transform.ScaleLog, 1e-12)
	h.c.Wheel(NormalizeWheel(-3, true))
	assert.InDelta(t, 0.05, e.Transform.ScaleLog, 1e-12)
	assert.InDelta(t, math.Exp2(0.05), e.Transform.Scale, 1e-12)

	for i := 0; i < 200; i++ {
		h.c.Wheel(1)
	}
	assert.Equal(t, overlay.MaxScale, e.Transform.Scale)
}

func TestUndoRedoAndRedoInvalidation(t *testing.T) {
	h := newHarness(t)
	e := h.load(t, "A")
	h.c.ZoomIn()
	h.c.ZoomIn()
	require.True(t, h.c.Undo())
	assert.InDelta(t, 1.05, e.Transform.Scale, 1e-12)
	assert.True(t, h.c.CanRedo())
	require.True(t, h.c.Redo())
	assert.InDelta(t, 1.10, e.Transform.Scale, 1e-12)

	require.True(t, h.c.Undo())
	h.c.FlipHorizontal()
	assert.False(t, h.c.CanRedo())
	assert.False(t, h.c.Redo())
}

func TestScaleOnlyUndoPolicy(t *testing.T) {
	h := newHarness(t)
	h.c.set.SetOptions(overlay.Options{Undo: overlay.UndoScale})
	e := h.load(t, "A")
	h.c.RotateBy(10)
	h.c.ZoomOut()
	h.c.Nudge(3, 0)
	require.True(t, h.c.Undo())
	assert.Equal(t, 1.0, e.Transform.Scale)
	assert.Equal(t, 10.0, e.Transform.Angle)
	assert.Equal(t, 515.0, e.Transform.Offset.X)
	assert.False(t, h.c.CanUndo())
}

func TestOperationsWithoutActiveAreNoOps(t *testing.T) {
	h := newHarness(t)
	h.c.Nudge(3, 3)
	h.c.RotateBy(1)
	h.c.Wheel(1)
	h.c.ToggleTransparency()
	h.c.SecondaryClick(image.Pt(0, 0))
	h.c.PointerDown(image.Pt(0, 0), 0)
	assert.Equal(t, Idle, h.c.Mode())
	assert.False(t, h.c.Undo())
	assert.False(t, h.c.CanUndo())
	assert.Equal(t, 0, h.redraws)

	h.c.ZoomIn()
	h.c.FlipVertical()
	h.c.DeleteActive()
	assert.Len(t, h.dlg.warnings, 3)
}

func TestToggleTransparency(t *testing.T) {
	h := newHarness(t)
	h.load(t, "A")
	h.c.ToggleTransparency()
	v, ok := h.c.TransparencyLevel("A")
	require.True(t, ok)
	assert.Equal(t, 0.2, v)
	h.c.ToggleTransparency()
	v, _ = h.c.TransparencyLevel("A")
	assert.Equal(t, 1.0, v)

	_, ok = h.c.TransparencyLevel("missing")
	assert.False(t, ok)
}

func TestRedrawOnlyOnChange(t *testing.T) {
	h := newHarness(t)
	h.load(t, "A")
	before := h.redraws
	h.c.RotateBy(0)
	assert.Equal(t, before, h.redraws)
	h.c.RotateBy(1)
	assert.Equal(t, before+1, h.redraws)
}

func TestClickSelectActivatesTopmostHit(t *testing.T) {
	s := DefaultSettings()
	s.ClickSelect = true
	h := newHarness(t, WithSettings(s))
	a := h.load(t, "A")
	a.Transform.MoveTo(r2.Vec{X: 100, Y: 100})
	h.dec.size = image.Pt(10, 10)
	_, err := h.c.LoadFile("/imgs/B.png", "")
	require.NoError(t, err)
	assert.Equal(t, "B", h.c.ActiveName())

	h.c.PointerDown(image.Pt(100, 100), 0)
	assert.Equal(t, "A", h.c.ActiveName())
	h.c.PointerMove(image.Pt(101, 100), 0)
	assert.Equal(t, 101.0, a.Transform.Offset.X)
}

func TestOpenImage(t *testing.T) {
	h := newHarness(t)
	h.dlg.file = "/scans/molar.png"
	h.c.OpenImage()
	assert.Equal(t, "molar", h.c.ActiveName())

	h.dlg.name = "molar"
	h.c.OpenImage()
	assert.Equal(t, "molar_1", h.c.ActiveName())

	h.dlg.fileErr = dialog.ErrCanceled
	h.c.OpenImage()
	assert.Empty(t, h.dlg.errors)

	h.dlg.fileErr = nil
	h.dec.fail = errors.New("bad data")
	h.c.OpenImage()
	require.Len(t, h.dlg.errors, 1)
	assert.Contains(t, h.dlg.errors[0], "bad data")
}

func TestPasteClipboard(t *testing.T) {
	h := newHarness(t)
	h.c.PasteClipboard()
	require.Len(t, h.dlg.warnings, 1, "no clipboard configured")

	var data []byte
	var readErr error
	h = newHarness(t, WithClipboard(func() ([]byte, error) { return data, readErr }))
	readErr = errors.New("empty clipboard")
	h.c.PasteClipboard()
	require.Len(t, h.dlg.warnings, 1)
	assert.Equal(t, 0, h.c.Set().Len())

	readErr = nil
	data = []byte{1}
	h.c.PasteClipboard()
	assert.Equal(t, "pasted", h.c.ActiveName())
	h.dlg.name = "scan"
	h.c.PasteClipboard()
	assert.Equal(t, "scan", h.c.ActiveName())

	data = nil
	h.c.PasteClipboard()
	require.Len(t, h.dlg.errors, 1)
	assert.Equal(t, 2, h.c.Set().Len())
}

func TestDeleteFallsBackAndEndsControlMode(t *testing.T) {
	h := newHarness(t)
	h.load(t, "A")
	h.load(t, "B")
	h.c.ToggleControlMode()
	require.True(t, h.c.ControlMode())

	require.NoError(t, h.c.Delete("B"))
	assert.Equal(t, "A", h.c.ActiveName())
	assert.True(t, h.c.ControlMode())

	h.c.DeleteActive()
	assert.Equal(t, "", h.c.ActiveName())
	assert.False(t, h.c.ControlMode())

	var nf *overlay.NotFoundError
	assert.True(t, errors.As(h.c.Delete("A"), &nf))
}

func TestSelectAndCycle(t *testing.T) {
	h := newHarness(t)
	h.load(t, "A")
	h.load(t, "B")
	var nf *overlay.NotFoundError
	assert.True(t, errors.As(h.c.SelectActive("C"), &nf))
	h.c.CycleActive()
	assert.Equal(t, "A", h.c.ActiveName())
	require.NoError(t, h.c.ToggleVisible("A"))
	assert.False(t, h.c.IsVisible("A"))
}

func TestDescribe(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "No active image", h.c.Describe())
	h.load(t, "A")
	assert.Contains(t, h.c.Describe(), "Name: A")
}
