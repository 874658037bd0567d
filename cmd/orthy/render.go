package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/orthybt/orthy/internal/control"
	"github.com/orthybt/orthy/internal/decode"
	"github.com/orthybt/orthy/internal/overlay"
	"github.com/orthybt/orthy/internal/render"
	"github.com/orthybt/orthy/internal/theme"
)

// renderCmd runs images through the transform pipeline without a window
// and writes the composite as PNG, or WebP when the output ends in .webp.
// Transform flags apply to the last image; earlier images are drawn
// centred and untransformed underneath.
type renderCmd struct {
	*root
	fs *flag.FlagSet

	output       string
	canvas       string
	offset       string
	pivot        string
	background   string
	scale        float64
	angle        float64
	transparency float64
	flipH        bool
	flipV        bool
	marker       bool
	inputs       []string
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	c := &renderCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "o", "", "output file (.png or .webp), - for PNG on stdout")
	fs.StringVar(&c.canvas, "canvas", "", "canvas size as WxH (default: first image size)")
	fs.StringVar(&c.offset, "offset", "", "centre of the last image as X,Y (default: canvas centre)")
	fs.StringVar(&c.pivot, "pivot", "", "rotation pivot in canvas coordinates as X,Y (default: image centre)")
	fs.StringVar(&c.background, "background", "", "canvas colour as #RRGGBB[AA] (default: transparent)")
	fs.Float64Var(&c.scale, "scale", 1, "scale factor")
	fs.Float64Var(&c.angle, "angle", 0, "rotation in degrees, clockwise")
	fs.Float64Var(&c.transparency, "transparency", 1, "opacity between 0.01 and 1")
	fs.BoolVar(&c.flipH, "flip-h", false, "mirror left to right")
	fs.BoolVar(&c.flipV, "flip-v", false, "mirror top to bottom")
	fs.BoolVar(&c.marker, "pivot-marker", false, "draw the pivot as a red dot")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	c.inputs = fs.Args()
	if len(c.inputs) == 0 || c.output == "" {
		return nil, &UsageError{of: c}
	}
	if c.canvas != "" {
		if _, err := parseSize(c.canvas); err != nil {
			return nil, err
		}
	}
	for _, p := range []string{c.offset, c.pivot} {
		if p == "" {
			continue
		}
		if _, _, err := parsePoint(p); err != nil {
			return nil, err
		}
	}
	if c.background != "" {
		if _, err := theme.ParseColor(c.background); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *renderCmd) decoder() decode.Decoder {
	if c.root == nil || c.root.config == nil {
		return decode.Decoder{}
	}
	return decode.Decoder{SVGWidth: c.root.config.SVGWidth, MaxDimension: c.root.config.MaxDimension}
}

// compose builds the overlay set and renders it.
func (c *renderCmd) compose() (*image.RGBA, error) {
	dec := c.decoder()
	imgs := make([]*image.RGBA, 0, len(c.inputs))
	for _, in := range c.inputs {
		img, err := dec.Decode(in)
		if err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}

	size := imgs[0].Bounds().Size()
	if c.canvas != "" {
		size, _ = parseSize(c.canvas)
	}
	center := r2.Vec{X: float64(size.X) / 2, Y: float64(size.Y) / 2}

	set := overlay.NewSet(overlay.Options{Duplicates: overlay.DuplicateSuffix})
	var last *overlay.Entry
	for i, img := range imgs {
		e, err := set.Load(control.DefaultName(c.inputs[i]), img, center)
		if err != nil {
			return nil, err
		}
		last = e
	}

	t := &last.Transform
	if c.offset != "" {
		x, y, _ := parsePoint(c.offset)
		t.MoveTo(r2.Vec{X: x, Y: y})
	}
	if c.pivot != "" {
		x, y, _ := parsePoint(c.pivot)
		t.SetPivot(r2.Vec{X: x, Y: y})
	}
	t.SetScale(c.scale)
	t.SetAngle(c.angle)
	t.SetTransparency(c.transparency)
	t.FlipH = c.flipH
	t.FlipV = c.flipV

	canvas := render.NewRGBACanvas(size.X, size.Y)
	if c.background != "" {
		bg, _ := theme.ParseColor(c.background)
		canvas.Background = bg
	}
	render.Composite(canvas, set, nil)
	if c.marker {
		render.DrawPivot(canvas.Image, last, control.DefaultSettings().PivotRadius)
	}
	if c.root != nil && c.root.log != nil {
		c.root.log.Info("rendered", "entries", set.Len(), "size", size, "transform", last.Describe())
	}
	return canvas.Image, nil
}

func encode(w io.Writer, name string, img image.Image) error {
	if strings.EqualFold(filepath.Ext(name), ".webp") {
		return nativewebp.Encode(w, img, nil)
	}
	return png.Encode(w, img)
}

func (c *renderCmd) Run() error {
	img, err := c.compose()
	if err != nil {
		return err
	}
	if c.output == "-" {
		var w io.Writer = os.Stdout
		if c.root != nil && c.root.stdout != nil {
			w = c.root.stdout
		}
		return png.Encode(w, img)
	}
	f, err := os.Create(c.output)
	if err != nil {
		return fmt.Errorf("create %s: %w", c.output, err)
	}
	if err := encode(f, c.output, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", c.output, err)
	}
	return f.Close()
}
