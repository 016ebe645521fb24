package atlas

import (
	"fmt"
	"image"

	"github.com/npillmayer/swiftglyph/core/font"
)

// Vec2 is a 2D vector in normalized (render or texture) space.
type Vec2 struct {
	X, Y float32
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%g,%g)", v.X, v.Y)
}

// IsZero is true if both components are exactly zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// GlyphRecord is the placement information for one glyph.
//
// Render-space values are in units of the font's line height. The XY quad
// and the UV quad include the glyph's padding on every side.
type GlyphRecord struct {
	GlyphID      font.GlyphIndex
	Code         rune
	CellOrigin   image.Point // top left texel of the glyph's cell
	BitmapSize   image.Point // texels actually occupied by the glyph bitmap
	Bearing      Vec2
	Advance      Vec2
	XYLowerLeft  Vec2
	XYUpperRight Vec2
	UVLowerLeft  Vec2
	UVUpperRight Vec2
	Clipped      bool // bitmap has been clipped to its cell
}

// KerningPair is a positional adjustment between two glyphs, in units of the
// line height.
type KerningPair struct {
	First  font.GlyphIndex
	Second font.GlyphIndex
	Delta  Vec2
}

// GlyphPair is the key of a kerning entry.
type GlyphPair struct {
	First, Second font.GlyphIndex
}
