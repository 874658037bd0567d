package main

import (
	"flag"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/orthybt/orthy/assets"
	"github.com/orthybt/orthy/internal/appstate"
	"github.com/orthybt/orthy/internal/dialog"
	"github.com/orthybt/orthy/internal/notify"
	"github.com/orthybt/orthy/internal/overlay"
)

type runCmd struct {
	*root
	fs         *flag.FlagSet
	canvas     string
	noHotkeys  bool
	undo       string
	duplicates string
	images     []string
}

func (c *runCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRunCmd(args []string, r *root) (*runCmd, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	c := &runCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.canvas, "canvas", "", "overlay size as WxH (default: primary monitor)")
	fs.BoolVar(&c.noHotkeys, "no-hotkeys", false, "do not grab global hotkeys")
	fs.StringVar(&c.undo, "undo", "", "undo policy: full or scale (overrides config)")
	fs.StringVar(&c.duplicates, "duplicates", "", "duplicate name policy: suffix or reject (overrides config)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.canvas != "" {
		if _, err := parseSize(c.canvas); err != nil {
			return nil, err
		}
	}
	if c.undo != "" {
		if _, err := overlay.ParseUndoPolicy(c.undo); err != nil {
			return nil, err
		}
	}
	if c.duplicates != "" {
		if _, err := overlay.ParseDuplicatePolicy(c.duplicates); err != nil {
			return nil, err
		}
	}
	c.images = fs.Args()
	return c, nil
}

func (c *runCmd) Run() error {
	cfg := c.root.config
	if c.undo != "" {
		cfg.Undo = c.undo
	}
	if c.duplicates != "" {
		cfg.Duplicates = c.duplicates
	}
	n := c.root.notifier
	if n == nil {
		n = notify.New(notify.LoadPreferences())
	}
	opts := []appstate.Option{
		appstate.WithConfig(cfg, c.root.configPath),
		appstate.WithImages(c.images...),
		appstate.WithHotkeys(!c.noHotkeys),
		appstate.WithLogger(c.root.log),
		appstate.WithNotifier(n),
		appstate.WithDialogs(dialog.NewZenity(n, c.root.log)),
		appstate.WithReferences(assets.References),
	}
	if c.canvas != "" {
		sz, _ := parseSize(c.canvas)
		opts = append(opts, appstate.WithCanvasSize(sz.X, sz.Y))
	}
	appstate.New(opts...).Run()
	return nil
}

// parseSize reads "WxH".
func parseSize(s string) (image.Point, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return image.Point{}, fmt.Errorf("invalid size %q: want WxH", s)
	}
	x, errW := strconv.Atoi(w)
	y, errH := strconv.Atoi(h)
	if errW != nil || errH != nil || x <= 0 || y <= 0 {
		return image.Point{}, fmt.Errorf("invalid size %q: want positive WxH", s)
	}
	return image.Pt(x, y), nil
}

// parsePoint reads "X,Y".
func parsePoint(s string) (float64, float64, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid point %q: want X,Y", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return 0, 0, fmt.Errorf("invalid point %q: want X,Y", s)
	}
	return x, y, nil
}
