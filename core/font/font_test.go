package font

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/swiftglyph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/fixed"
)

func TestFallbackFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.fonts")
	defer teardown()
	//
	f := FallbackFont()
	require.NotNil(t, f)
	assert.Equal(t, "Go Sans", f.Fontname)
	assert.Same(t, f, FallbackFont())
}

func TestPackagedFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.fonts")
	defer teardown()
	//
	names := PackagedFonts()
	assert.Contains(t, names, "Go-Mono.ttf")
	for _, name := range names {
		f, err := PackagedFont(name)
		if assert.NoError(t, err, name) {
			t.Logf("packaged font %s is named %q", name, f.Fontname)
			assert.NotEmpty(t, f.Fontname)
		}
	}
	_, err := PackagedFont("Comic-Sans.ttf")
	assert.Equal(t, core.EFONTLOAD, core.Code(err))
}

func TestLoadMissingFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.fonts")
	defer teardown()
	//
	_, err := LoadOpenTypeFont("/does/not/exist.ttf")
	assert.Equal(t, core.EFONTLOAD, core.Code(err))
	_, err = ParseOpenTypeFont([]byte("definitely not a font"))
	assert.Equal(t, core.EFONTLOAD, core.Code(err))
}

func TestFaceNeedsPixelSize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.fonts")
	defer teardown()
	//
	face := NewFace(FallbackFont())
	_, err := face.RenderGlyph('A')
	assert.Error(t, err)
	_, err = face.LineHeight()
	assert.Error(t, err)
	assert.Equal(t, core.EINVALIDCONFIG, core.Code(face.SetPixelSize(0)))
}

func TestRenderGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.fonts")
	defer teardown()
	//
	face := NewFace(FallbackFont())
	require.NoError(t, face.SetPixelSize(49))
	assert.Equal(t, 49, face.PixelSize())
	lh, err := face.LineHeight()
	require.NoError(t, err)
	assert.Greater(t, lh, fixed.I(49), "line height includes line gap and descent")
	//
	g, err := face.RenderGlyph('H')
	require.NoError(t, err)
	assert.NotZero(t, g.Index)
	assert.Equal(t, 'H', g.Code)
	assert.Greater(t, g.Metrics.Width, fixed.Int26_6(0))
	assert.Greater(t, g.Metrics.BearingY, fixed.Int26_6(0), "H sits on the baseline")
	assert.Greater(t, g.Metrics.Advance, g.Metrics.Width)
	b := g.Bitmap.Bounds()
	assert.InDelta(t, g.Metrics.Width.Ceil(), b.Dx(), 1)
	assert.Greater(t, b.Dy(), 20)
	assert.Less(t, b.Dy(), 49)
	var covered int
	for _, a := range g.Bitmap.Pix {
		if a > 0 {
			covered++
		}
	}
	assert.Greater(t, covered, 0)
	//
	// the bitmap must not alias the face's internal mask
	pix := append([]uint8(nil), g.Bitmap.Pix...)
	_, err = face.RenderGlyph('W')
	require.NoError(t, err)
	assert.Equal(t, pix, g.Bitmap.Pix)
}

func TestRenderSpace(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.fonts")
	defer teardown()
	//
	face := NewFace(FallbackFont())
	require.NoError(t, face.SetPixelSize(20))
	g, err := face.RenderGlyph(' ')
	require.NoError(t, err)
	assert.True(t, g.Bitmap.Bounds().Empty())
	assert.Equal(t, fixed.Int26_6(0), g.Metrics.Width)
	assert.Greater(t, g.Metrics.Advance, fixed.Int26_6(0))
}

func TestKerningDoesNotFail(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.fonts")
	defer teardown()
	//
	face := NewFace(FallbackFont())
	require.NoError(t, face.SetPixelSize(32))
	a, _ := face.GlyphIndex('A')
	v, _ := face.GlyphIndex('V')
	k, err := face.Kerning(a, v)
	require.NoError(t, err)
	assert.Equal(t, fixed.Int26_6(0), k.Y)
	t.Logf("kerning A-V = %v", k.X)
}
