package atlas

import (
	"image"
	"math"

	"github.com/npillmayer/swiftglyph/core"
)

// The glyph range of an atlas: printable ASCII.
const (
	FirstCode  rune = 32
	LastCode   rune = 126
	GlyphCount      = int(LastCode - FirstCode + 1)
)

// MaxPadding is the largest padding around a glyph, in texels.
const MaxPadding = 10

// Layout is a square grid of square cells on a texture.
type Layout struct {
	GlyphCount   int
	TextureWidth int // texture is TextureWidth × TextureWidth texels
	Columns      int // cells per row, and number of rows
	CellWidth    int // in texels
	Padding      int // empty texels around a glyph, on every side
}

// NewLayout computes the grid for a number of glyphs on a texture.
// textureWidth must be a power of two, padding in [0, MaxPadding], and the
// resulting cells must leave a positive glyph size inside their padding.
// Violations are reported with code core.EINVALIDCONFIG.
func NewLayout(glyphCount, textureWidth, padding int) (Layout, error) {
	l := Layout{GlyphCount: glyphCount, TextureWidth: textureWidth, Padding: padding}
	if glyphCount <= 0 {
		return l, core.InvalidConfig("glyph count", "must be positive, is %d", glyphCount)
	}
	if !IsPowerOfTwo(textureWidth) {
		return l, core.InvalidConfig("width", "%d is not a power of two", textureWidth)
	}
	if padding < 0 || padding > MaxPadding {
		return l, core.InvalidConfig("padding", "%d not in [0,%d]", padding, MaxPadding)
	}
	l.Columns = int(math.Ceil(math.Sqrt(float64(glyphCount))))
	l.CellWidth = textureWidth / l.Columns
	if l.PixelSize() <= 0 {
		return l, core.InvalidConfig("padding", "%d leaves no room for glyphs in cells of %d texels",
			padding, l.CellWidth)
	}
	if glyphCount > l.Columns*l.Columns {
		return l, core.InvalidConfig("glyph count", "%d glyphs do not fit %d×%d cells",
			glyphCount, l.Columns, l.Columns)
	}
	tracer().Debugf("layout: %d glyphs on %d² texels, %d columns, cell width %d",
		glyphCount, textureWidth, l.Columns, l.CellWidth)
	return l, nil
}

// IsPowerOfTwo is true for 1, 2, 4, 8, …
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// PixelSize is the size glyphs are rasterized at: the cell width minus the
// padding on both sides.
func (l Layout) PixelSize() int {
	return l.CellWidth - 2*l.Padding
}

// CellOrigin returns the top left texel of cell i, in raster order.
func (l Layout) CellOrigin(i int) image.Point {
	col, row := i%l.Columns, i/l.Columns
	return image.Pt(col*l.CellWidth, row*l.CellWidth)
}

// Cell returns the texels of cell i.
func (l Layout) Cell(i int) image.Rectangle {
	o := l.CellOrigin(i)
	return image.Rect(o.X, o.Y, o.X+l.CellWidth, o.Y+l.CellWidth)
}

// Interior returns the texels of cell i available to a glyph bitmap, i.e.
// the cell without its padding.
func (l Layout) Interior(i int) image.Rectangle {
	return l.Cell(i).Inset(l.Padding)
}

// PaddingFraction is the padding relative to the cell width.
func (l Layout) PaddingFraction() float64 {
	return float64(l.Padding) / float64(l.CellWidth)
}
