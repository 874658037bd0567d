package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/orthybt/orthy/internal/overlay"
)

func solid(w, h int, c image.Image) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c.At(0, 0))
		}
	}
	return img
}

func TestCompositeDrawsInInsertionOrder(t *testing.T) {
	set := overlay.NewSet(overlay.Options{})
	mid := r2.Vec{X: 10, Y: 10}
	_, err := set.Load("under", solid(10, 10, image.NewUniform(red)), mid)
	require.NoError(t, err)
	_, err = set.Load("over", solid(4, 4, image.NewUniform(blue)), mid)
	require.NoError(t, err)

	canvas := NewRGBACanvas(20, 20)
	Composite(canvas, set, nil)
	assert.Equal(t, blue, canvas.Image.RGBAAt(10, 10))
	assert.Equal(t, red, canvas.Image.RGBAAt(6, 6))
	assert.Equal(t, uint8(0), canvas.Image.RGBAAt(1, 1).A)

	require.NoError(t, set.SetVisible("over", false))
	Composite(canvas, set, nil)
	assert.Equal(t, red, canvas.Image.RGBAAt(10, 10))
}

func TestCacheReusesUntilTransformChanges(t *testing.T) {
	set := overlay.NewSet(overlay.Options{})
	e, err := set.Load("a", solid(8, 8, image.NewUniform(red)), r2.Vec{X: 4, Y: 4})
	require.NoError(t, err)

	var c Cache
	first := c.Frame(e)
	assert.Same(t, first.Image, c.Frame(e).Image)

	e.Transform.Nudge(1, 0)
	moved := c.Frame(e)
	assert.NotSame(t, first.Image, moved.Image)
	assert.Equal(t, first.Origin.Add(image.Pt(1, 0)), moved.Origin)

	c.Prune(nil)
	assert.Empty(t, c.frames)
}

func TestDrawPivot(t *testing.T) {
	set := overlay.NewSet(overlay.Options{})
	e, _ := set.Load("a", solid(2, 2, image.NewUniform(blue)), r2.Vec{X: 5, Y: 5})
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))

	DrawPivot(dst, e, 1.5)
	assert.Equal(t, uint8(0), dst.RGBAAt(3, 3).A, "no pivot set")

	e.Transform.SetPivot(r2.Vec{X: 3, Y: 3})
	DrawPivot(dst, e, 1.5)
	assert.Equal(t, PivotColor, dst.RGBAAt(3, 3))
	assert.Equal(t, PivotColor, dst.RGBAAt(4, 3))
	assert.Equal(t, uint8(0), dst.RGBAAt(5, 5).A)
}
