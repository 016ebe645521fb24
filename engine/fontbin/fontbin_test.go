package fontbin

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/core/blob"
	"github.com/npillmayer/swiftglyph/core/font"
	"github.com/npillmayer/swiftglyph/engine/atlas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallAtlas(t *testing.T) *atlas.Atlas {
	l, err := atlas.NewLayout(atlas.GlyphCount, 512, 1)
	require.NoError(t, err)
	glyphs := make([]atlas.GlyphRecord, 4)
	for i := range glyphs {
		glyphs[i] = atlas.GlyphRecord{
			GlyphID:      font.GlyphIndex(10 + i),
			Code:         'A' + rune(i),
			CellOrigin:   l.CellOrigin(33 + i),
			BitmapSize:   image.Pt(20+i, 30),
			Bearing:      atlas.Vec2{X: 0.01, Y: 0.5},
			Advance:      atlas.Vec2{X: 0.4 + float32(i)/100},
			XYLowerLeft:  atlas.Vec2{X: 0.01, Y: -0.1},
			XYUpperRight: atlas.Vec2{X: 0.3, Y: 0.6},
			UVLowerLeft:  atlas.Vec2{X: 0.1, Y: 0.9},
			UVUpperRight: atlas.Vec2{X: 0.2, Y: 0.8},
			Clipped:      i == 3,
		}
	}
	kt := atlas.NewKerningTable([]atlas.KerningPair{
		{First: 10, Second: 11, Delta: atlas.Vec2{X: -0.05}},
		{First: 12, Second: 10, Delta: atlas.Vec2{X: 0.02}},
		{First: 10, Second: 13, Delta: atlas.Vec2{X: -0.01}},
	})
	return &atlas.Atlas{
		FontName:     "Small Sans",
		Layout:       l,
		VerticalFlip: true,
		Glyphs:       glyphs,
		Kerning:      kt,
	}
}

func TestRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	a := smallAtlas(t)
	buf, err := Encode(a, "SmallSans.raw")
	require.NoError(t, err)
	h, err := blob.Inspect(buf)
	require.NoError(t, err)
	assert.Equal(t, PointerFields(a), h.SlotCount)
	//
	f, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, "Small Sans", f.Name())
	assert.Equal(t, "SmallSans.raw", f.TextureFile())
	assert.Equal(t, 512, f.TextureWidth())
	assert.Equal(t, 1, f.Padding())
	assert.Equal(t, 10, f.Columns())
	assert.True(t, f.VerticalFlip())
	require.Equal(t, len(a.Glyphs), f.GlyphCount())
	for i, g := range a.Glyphs {
		if diff := cmp.Diff(g, f.Glyph(i)); diff != "" {
			t.Errorf("glyph #%d differs (-want +got):\n%s", i, diff)
		}
	}
	pairs := make([]atlas.KerningPair, f.KerningCount())
	for i := range pairs {
		pairs[i] = f.KerningPair(i)
	}
	if diff := cmp.Diff(a.Kerning.Pairs(), pairs); diff != "" {
		t.Errorf("kerning differs (-want +got):\n%s", diff)
	}
	d, ok := f.Kerning(12, 10)
	assert.True(t, ok)
	assert.Equal(t, float32(0.02), d.X)
	_, ok = f.Kerning(10, 12)
	assert.False(t, ok)
	//
	g, ok := f.GlyphByCode('C')
	require.True(t, ok)
	assert.Equal(t, font.GlyphIndex(12), g.GlyphID)
	_, ok = f.GlyphByCode('Z')
	assert.False(t, ok)
}

func TestKerningRuns(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	buf, err := Encode(smallAtlas(t), "x")
	require.NoError(t, err)
	f, err := Decode(buf)
	require.NoError(t, err)
	run := f.KerningRun(0)
	require.Len(t, run, 2)
	assert.Equal(t, font.GlyphIndex(11), run[0].Second)
	assert.Equal(t, font.GlyphIndex(13), run[1].Second)
	assert.Empty(t, f.KerningRun(1))
	run = f.KerningRun(2)
	require.Len(t, run, 1)
	assert.Equal(t, font.GlyphIndex(10), run[0].Second)
	assert.Empty(t, f.KerningRun(3))
}

func TestEmptyKerning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	a := smallAtlas(t)
	a.Kerning = atlas.NewKerningTable(nil)
	buf, err := Encode(a, "")
	require.NoError(t, err)
	f, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, 0, f.KerningCount())
	assert.Equal(t, "", f.TextureFile())
	assert.Empty(t, f.KerningRun(0))
}

func TestDoubleDecode(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	buf, err := Encode(smallAtlas(t), "x")
	require.NoError(t, err)
	_, err = Decode(buf)
	require.NoError(t, err)
	_, err = Decode(buf)
	assert.True(t, errors.Is(err, blob.ErrDoubleDecode))
	assert.Equal(t, core.EBLOBFORMAT, core.Code(err))
}

func TestCorruptedBlob(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	buf, err := Encode(smallAtlas(t), "x")
	require.NoError(t, err)
	buf[0] = 'X'
	_, err = Decode(buf)
	assert.True(t, errors.Is(err, blob.ErrTag))
	assert.Equal(t, core.EBLOBFORMAT, core.Code(err))
}

func TestNotAFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	b := blob.NewBuilder(16)
	b.Alloc(16, blob.WordSize)
	buf, err := b.Bytes()
	require.NoError(t, err)
	_, err = Decode(buf)
	assert.True(t, errors.Is(err, ErrSchema))
	assert.Equal(t, core.EBLOBFORMAT, core.Code(err))
	//
	b = blob.NewBuilder(fontSize)
	root := b.Alloc(fontSize, blob.WordSize)
	b.PutU32(root+fGlyphCount, 1000)
	buf, err = b.Bytes()
	require.NoError(t, err)
	_, err = Decode(buf)
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestGoSansBlob(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	face := font.NewFace(font.FallbackFont())
	a, err := atlas.Build(face, atlas.Options{TextureWidth: 256, Padding: 2})
	require.NoError(t, err)
	require.Len(t, a.Glyphs, atlas.GlyphCount)
	assert.Equal(t, 99, PointerFields(a))
	//
	path := filepath.Join(t.TempDir(), "GoSans.sgb")
	require.NoError(t, WriteFile(path, a, "GoSans.raw"))
	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	h, err := blob.Inspect(buf)
	require.NoError(t, err)
	assert.Equal(t, 99, h.SlotCount)
	assert.False(t, h.Decoded)
	//
	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, atlas.GlyphCount, f.GlyphCount())
	assert.Equal(t, a.Kerning.Len(), f.KerningCount())
	g, ok := f.GlyphByCode('g')
	require.True(t, ok)
	want, _ := a.Glyph('g')
	assert.Equal(t, want, g)
	for i := 0; i < f.GlyphCount(); i++ {
		for _, p := range f.KerningRun(i) {
			assert.Equal(t, f.Glyph(i).GlyphID, p.First)
		}
	}
	released, err := f.Release()
	require.NoError(t, err)
	assert.Equal(t, len(buf), len(released))
}

func TestLoadMissingBlob(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	_, err := Load(filepath.Join(t.TempDir(), "none.sgb"))
	assert.Error(t, err)
}
