package atlas

import (
	"image"

	"github.com/npillmayer/swiftglyph/core/font"
	"golang.org/x/image/math/fixed"
)

// Normalizer converts rasterizer metrics into line-height relative quads and
// cell positions into texture coordinates.
//
// With VerticalFlip set, v grows downwards, as do pixel rows. Otherwise
// texture coordinates follow the upward convention v' = 1 − v.
type Normalizer struct {
	Layout       Layout
	LineHeight   fixed.Int26_6
	VerticalFlip bool
}

func f26(x fixed.Int26_6) float64 {
	return float64(x) / 64
}

// v maps a downward texture coordinate to the configured convention.
func (n Normalizer) v(y float64) float64 {
	if n.VerticalFlip {
		return y
	}
	return 1 - y
}

// Record computes the glyph record for a glyph whose bitmap of size bmsize
// has been placed into the cell at origin.
func (n Normalizer) Record(index font.GlyphIndex, code rune, m font.GlyphMetrics,
	origin, bmsize image.Point) GlyphRecord {
	//
	lh := f26(n.LineHeight)
	pf := n.Layout.PaddingFraction()
	r := GlyphRecord{
		GlyphID:    index,
		Code:       code,
		CellOrigin: origin,
		BitmapSize: bmsize,
	}
	r.Bearing = vec(f26(m.BearingX)/lh-pf, f26(m.BearingY)/lh-pf)
	r.Advance = vec(f26(m.Advance)/lh, 0)
	llx := f26(m.BearingX)/lh - pf
	lly := f26(m.BearingY-m.Height)/lh - pf
	r.XYLowerLeft = vec(llx, lly)
	r.XYUpperRight = vec(llx+f26(m.Width)/lh+2*pf, lly+f26(m.Height)/lh+2*pf)
	//
	tw := float64(n.Layout.TextureWidth)
	p2 := float64(2 * n.Layout.Padding)
	left := float64(origin.X) / tw
	right := (float64(origin.X+bmsize.X) + p2) / tw
	top := float64(origin.Y) / tw
	bottom := (float64(origin.Y+bmsize.Y) + p2) / tw
	r.UVLowerLeft = vec(left, n.v(bottom))
	r.UVUpperRight = vec(right, n.v(top))
	return r
}

func vec(x, y float64) Vec2 {
	return Vec2{X: float32(x), Y: float32(y)}
}
