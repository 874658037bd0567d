package assets

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orthybt/orthy/internal/decode"
)

func TestReferencesDecode(t *testing.T) {
	d := decode.Decoder{}
	seen := map[string]bool{}
	for _, ref := range References {
		assert.False(t, seen[ref.Name], "duplicate reference %s", ref.Name)
		seen[ref.Name] = true

		img, err := d.DecodeFS(FS, ref.File)
		require.NoError(t, err, ref.File)
		assert.False(t, img.Bounds().Empty(), ref.File)
		assert.Equal(t, 0, img.Bounds().Min.X)

		opaque := false
		for i := 3; i < len(img.Pix); i += 4 {
			if img.Pix[i] != 0 {
				opaque = true
				break
			}
		}
		assert.True(t, opaque, "%s rasterized to nothing", ref.File)
	}
}

func TestEveryEmbeddedFileIsListed(t *testing.T) {
	files, err := fs.Glob(FS, "overlays/*.svg")
	require.NoError(t, err)
	listed := map[string]bool{}
	for _, ref := range References {
		listed[ref.File] = true
	}
	for _, f := range files {
		assert.True(t, listed[f], f)
	}
	assert.Len(t, files, len(References))
}
