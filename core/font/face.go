package font

import (
	"errors"
	"image"

	"github.com/npillmayer/swiftglyph/core"
	"golang.org/x/image/draw"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// GlyphIndex is a glyph's index within its font.
type GlyphIndex uint16

// GlyphMetrics are the unhinted metrics of a glyph at a face's pixel size,
// in 26.6 fixed point pixels. BearingY is the distance from the baseline up
// to the top of the glyph's bounding box.
type GlyphMetrics struct {
	Width    fixed.Int26_6
	Height   fixed.Int26_6
	BearingX fixed.Int26_6
	BearingY fixed.Int26_6
	Advance  fixed.Int26_6
}

// Glyph is a rendered glyph. Bitmap holds the coverage of the glyph's
// pixel-aligned bounding box, with its origin at (0,0). Glyphs without an
// outline, e.g. space, have an empty bitmap.
type Glyph struct {
	Index   GlyphIndex
	Code    rune
	Bitmap  *image.Alpha
	Metrics GlyphMetrics
}

// Face is a scalable font set up for rasterization at a given pixel size.
// A Face is not safe for concurrent use.
type Face struct {
	font *ScalableFont
	px   int
	ppem fixed.Int26_6
	face xfont.Face
	buf  sfnt.Buffer
}

// NewFace creates a rasterization face for a font. Clients have to set a
// pixel size before rendering glyphs.
func NewFace(sf *ScalableFont) *Face {
	return &Face{font: sf}
}

// LoadFace loads a font file and creates a face for it.
func LoadFace(path string) (*Face, error) {
	sf, err := LoadOpenTypeFont(path)
	if err != nil {
		return nil, err
	}
	return NewFace(sf), nil
}

// Name returns the full name of the face's font.
func (f *Face) Name() string {
	return f.font.Fontname
}

// Font returns the scalable font this face has been created for.
func (f *Face) Font() *ScalableFont {
	return f.font
}

// PixelSize returns the current pixel size of the face, or 0 if it has not
// been set yet.
func (f *Face) PixelSize() int {
	return f.px
}

// SetPixelSize prepares the face for rendering glyphs with an em size of px
// pixels.
func (f *Face) SetPixelSize(px int) error {
	if px <= 0 {
		return core.Error(core.EINVALIDCONFIG, "pixel size must be positive, is %d", px)
	}
	face, err := opentype.NewFace(f.font.SFNT, &opentype.FaceOptions{
		Size:    float64(px),
		DPI:     72, // 1 pt = 1 px
		Hinting: xfont.HintingNone,
	})
	if err != nil {
		return core.WrapError(err, core.EFONTLOAD, "cannot scale font %s to %d px", f.Name(), px)
	}
	if f.face != nil {
		f.face.Close()
	}
	f.face, f.px, f.ppem = face, px, fixed.I(px)
	tracer().Debugf("face %s set to %d px", f.Name(), px)
	return nil
}

var errNoSize = errors.New("pixel size of face not set")

// LineHeight returns the recommended distance between baselines.
func (f *Face) LineHeight() (fixed.Int26_6, error) {
	if f.face == nil {
		return 0, core.WrapError(errNoSize, core.EINTERNAL, "face %s has no pixel size", f.Name())
	}
	m, err := f.font.SFNT.Metrics(&f.buf, f.ppem, xfont.HintingNone)
	if err != nil {
		return 0, core.WrapError(err, core.EFONTLOAD, "cannot read metrics of %s", f.Name())
	}
	return m.Height, nil
}

// GlyphIndex returns the index of the glyph for rune r. Runes not covered
// by the font map to glyph 0.
func (f *Face) GlyphIndex(r rune) (GlyphIndex, error) {
	x, err := f.font.SFNT.GlyphIndex(&f.buf, r)
	if err != nil {
		return 0, core.WrapError(err, core.EFONTLOAD, "cannot map %q in %s", r, f.Name())
	}
	return GlyphIndex(x), nil
}

// RenderGlyph rasterizes the glyph for rune r and returns a copy of its
// coverage bitmap together with its metrics.
func (f *Face) RenderGlyph(r rune) (Glyph, error) {
	g := Glyph{Code: r}
	if f.face == nil {
		return g, core.WrapError(errNoSize, core.EINTERNAL, "face %s has no pixel size", f.Name())
	}
	x, err := f.GlyphIndex(r)
	if err != nil {
		return g, err
	}
	g.Index = x
	bounds, adv, err := f.font.SFNT.GlyphBounds(&f.buf, sfnt.GlyphIndex(x), f.ppem, xfont.HintingNone)
	if err != nil {
		return g, core.WrapError(err, core.EFONTLOAD, "no bounds for glyph %q in %s", r, f.Name())
	}
	g.Metrics = GlyphMetrics{
		Width:    bounds.Max.X - bounds.Min.X,
		Height:   bounds.Max.Y - bounds.Min.Y,
		BearingX: bounds.Min.X,
		BearingY: -bounds.Min.Y, // sfnt's y axis points down
		Advance:  adv,
	}
	dr, mask, maskp, _, _ := f.face.Glyph(fixed.Point26_6{}, r)
	g.Bitmap = image.NewAlpha(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	if mask != nil && !dr.Empty() {
		// the face re-uses its mask with every call
		draw.Draw(g.Bitmap, g.Bitmap.Bounds(), mask, maskp, draw.Src)
	}
	return g, nil
}

// Kerning returns the unhinted kerning between two glyphs. Pairs without a
// kerning entry yield (0,0). Only horizontal kerning is supported by the
// underlying font tables, dy is always 0.
func (f *Face) Kerning(a, b GlyphIndex) (fixed.Point26_6, error) {
	if f.face == nil {
		return fixed.Point26_6{}, core.WrapError(errNoSize, core.EINTERNAL, "face %s has no pixel size", f.Name())
	}
	k, err := f.font.SFNT.Kern(&f.buf, sfnt.GlyphIndex(a), sfnt.GlyphIndex(b), f.ppem, xfont.HintingNone)
	if errors.Is(err, sfnt.ErrNotFound) {
		return fixed.Point26_6{}, nil
	} else if err != nil {
		return fixed.Point26_6{}, core.WrapError(err, core.EFONTLOAD, "cannot read kerning of %s", f.Name())
	}
	return fixed.Point26_6{X: k}, nil
}
