package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIgnoresUnknownAndMatchesCase(t *testing.T) {
	th, err := Parse(strings.NewReader("Name: Mine\nbuttonactive: #102030\nNoSuchField: #FFFFFF\n"))
	require.NoError(t, err)
	assert.Equal(t, "Mine", th.Name)
	assert.Equal(t, color.RGBA{0x10, 0x20, 0x30, 0xFF}, th.ButtonActive)
	assert.Equal(t, Default().Background, th.Background)
}

func TestParseRejectsBadColour(t *testing.T) {
	_, err := Parse(strings.NewReader("Background: red\n"))
	assert.Error(t, err)
}

func TestParseColorWithAlpha(t *testing.T) {
	c, err := ParseColor("#11223344")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x11, 0x22, 0x33, 0x44}, c)
	c, err = ParseColor("#1a3")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x11, 0xaa, 0x33, 0xff}, c)
	for _, bad := range []string{"123456", "#12345", "#zzzzzz", ""} {
		_, err = ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoaderOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.theme"), []byte("Name: Mine\n"), 0o644))
	inline := Default()
	inline.Name = "Inline"
	l := &Loader{ConfigDir: dir, SystemDir: filepath.Join(dir, "missing"), Inline: map[string]*Theme{"dark": inline}}

	th, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, "Default", th.Name)

	th, err = l.Load("dark")
	require.NoError(t, err)
	assert.Equal(t, "Inline", th.Name, "config sections win over embedded")

	th, err = l.Load("Light")
	require.NoError(t, err)
	assert.Equal(t, "Light", th.Name)

	th, err = l.Load("mine")
	require.NoError(t, err)
	assert.Equal(t, "Mine", th.Name)

	th, err = l.Load(filepath.Join(dir, "mine.theme"))
	require.NoError(t, err)
	assert.Equal(t, "Mine", th.Name)

	_, err = l.Load("nope")
	assert.Error(t, err)
}
