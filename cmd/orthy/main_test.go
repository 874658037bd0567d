package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config lookup at an empty home so tests see defaults.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("ORTHY_CONFIG", "")
	t.Setenv("ORTHY_THEME", "")
	original := configPathOverride
	configPathOverride = ""
	t.Cleanup(func() { configPathOverride = original })
	return dir
}

func writePNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestRenderWritesComposite(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "tooth.png")
	out := filepath.Join(dir, "out.png")
	writePNG(t, in, 4, 4, color.RGBA{R: 255, A: 255})

	var stdout, stderr bytes.Buffer
	r := newRoot(&stdout, &stderr)
	require.NoError(t, r.Run([]string{"-q", "render", "-o", out, "-canvas", "8x8", in}))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(8, 8), img.Bounds().Size())

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "corner outside the image stays transparent")
	red, _, _, a := img.At(3, 3).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	assert.Equal(t, uint32(0xffff), red)
}

func TestRenderWebP(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "a.png")
	out := filepath.Join(dir, "a.webp")
	writePNG(t, in, 3, 3, color.RGBA{B: 255, A: 255})

	var stdout, stderr bytes.Buffer
	require.NoError(t, newRoot(&stdout, &stderr).Run([]string{"-q", "render", "-o", out, in}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WEBP", string(data[8:12]))
}

func TestRenderOffsetAndBackground(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "a.png")
	writePNG(t, in, 2, 2, color.RGBA{G: 255, A: 255})

	var stdout, stderr bytes.Buffer
	r := newRoot(&stdout, &stderr)
	require.NoError(t, r.Run([]string{"-q", "render", "-o", "-", "-canvas", "10x10",
		"-offset", "1,1", "-background", "#0000FF", in}))

	img, err := png.Decode(&stdout)
	require.NoError(t, err)
	_, g, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), g, "image anchored at round(offset - size/2)")
	_, _, b, _ := img.At(9, 9).RGBA()
	assert.Equal(t, uint32(0xffff), b, "background fills the rest")
}

func TestParseRenderCmdRequiresInputAndOutput(t *testing.T) {
	_, err := parseRenderCmd([]string{"-o", "x.png"}, &root{program: "orthy"})
	var uerr *UsageError
	require.True(t, errors.As(err, &uerr))
	assert.Contains(t, uerr.Error(), "render -o")

	_, err = parseRenderCmd([]string{"img.png"}, &root{program: "orthy"})
	assert.True(t, errors.As(err, &uerr))

	_, err = parseRenderCmd([]string{"-o", "x.png", "-canvas", "10", "img.png"}, &root{program: "orthy"})
	assert.ErrorContains(t, err, "invalid size")

	_, err = parseRenderCmd([]string{"-o", "x.png", "-pivot", "1;2", "img.png"}, &root{program: "orthy"})
	assert.ErrorContains(t, err, "invalid point")

	_, err = parseRenderCmd([]string{"-o", "x.png", "-background", "blue", "img.png"}, &root{program: "orthy"})
	assert.Error(t, err)
}

func TestUnknownCommandIsUsageError(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	err := newRoot(&stdout, &stderr).Run([]string{"frobnicate"})
	var uerr *UsageError
	require.True(t, errors.As(err, &uerr))
	assert.Contains(t, uerr.Error(), "Commands:")

	err = newRoot(&stdout, &stderr).Run(nil)
	assert.True(t, errors.As(err, &uerr))
}

func TestConfigPrintAndSave(t *testing.T) {
	dir := isolate(t)
	var stdout, stderr bytes.Buffer
	require.NoError(t, newRoot(&stdout, &stderr).Run([]string{"-theme", "dark", "config", "print"}))
	assert.Contains(t, stdout.String(), "nudge_step = ")
	assert.Contains(t, stdout.String(), "theme = dark")

	out := filepath.Join(dir, "nested", "saved.rc")
	stdout.Reset()
	require.NoError(t, newRoot(&stdout, &stderr).Run([]string{"config", "-o", out, "save"}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[notify]")

	stdout.Reset()
	require.NoError(t, newRoot(&stdout, &stderr).Run([]string{"-config", out, "config", "path"}))
	assert.Equal(t, out+"\n", stdout.String())

	err = newRoot(&stdout, &stderr).Run([]string{"config", "burn"})
	assert.ErrorContains(t, err, "unknown config command")
}

func TestVersion(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	require.NoError(t, newRoot(&stdout, &stderr).Run([]string{"version"}))
	assert.Contains(t, stdout.String(), "orthy version "+version)
}

func TestParseSizeAndPoint(t *testing.T) {
	sz, err := parseSize("1920x1080")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(1920, 1080), sz)
	for _, bad := range []string{"", "10", "0x5", "ax5", "-3x4"} {
		_, err := parseSize(bad)
		assert.Error(t, err, bad)
	}

	x, y, err := parsePoint(" 12.5, -3 ")
	require.NoError(t, err)
	assert.Equal(t, 12.5, x)
	assert.Equal(t, -3.0, y)
	_, _, err = parsePoint("12")
	assert.Error(t, err)
}

func TestLevelFromFlags(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, levelFromFlags(true, true, true))
	assert.Equal(t, slog.LevelInfo, levelFromFlags(false, true, true))
	assert.Equal(t, slog.LevelError, levelFromFlags(false, false, true))
	assert.Equal(t, slog.LevelWarn, levelFromFlags(false, false, false))
}

func TestThemeFlagBeatsEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ORTHY_THEME", "light")
	var stdout, stderr bytes.Buffer
	r := newRoot(&stdout, &stderr)
	require.NoError(t, r.Run([]string{"config", "print"}))
	assert.Equal(t, "light", r.config.Theme)

	r = newRoot(&stdout, &stderr)
	require.NoError(t, r.Run([]string{"-theme", "dark", "config", "print"}))
	assert.Equal(t, "dark", r.config.Theme)
}
