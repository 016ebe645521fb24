package atlas

import (
	"fmt"
	"image"
	"strings"

	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/core/font"
	"golang.org/x/image/draw"
)

// OverflowPolicy decides what happens to a glyph bitmap larger than the
// interior of its cell.
type OverflowPolicy int

const (
	// OverflowClip copies the part of the bitmap which fits and reports the
	// overflow with the build result.
	OverflowClip OverflowPolicy = iota
	// OverflowReject fails the build.
	OverflowReject
)

// ParseOverflowPolicy reads "clip" or "reject".
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clip", "":
		return OverflowClip, nil
	case "reject":
		return OverflowReject, nil
	}
	return OverflowClip, core.InvalidConfig("overflow", "unknown policy %q, use clip or reject", s)
}

func (p OverflowPolicy) String() string {
	if p == OverflowReject {
		return "reject"
	}
	return "clip"
}

// GlyphOverflow reports a glyph bitmap exceeding the interior of its cell.
type GlyphOverflow struct {
	Code  rune
	Size  image.Point // size of the rendered bitmap
	Limit int         // edge length of the cell interior
}

func (o GlyphOverflow) Error() string {
	return fmt.Sprintf("glyph %q is %d×%d texels, cell interior is %d×%d",
		o.Code, o.Size.X, o.Size.Y, o.Limit, o.Limit)
}

// rendered is a packed glyph before normalization.
type rendered struct {
	index   font.GlyphIndex
	code    rune
	metrics font.GlyphMetrics
	origin  image.Point
	size    image.Point // bitmap size after clipping
	clipped bool
}

// place copies a glyph bitmap into the interior of cell i of texture.
// Nothing outside of the interior is ever written. It returns the size of the
// copied area and, if the bitmap did not fit, the overflow condition.
func place(texture *image.Alpha, l Layout, i int, g font.Glyph) (image.Point, *GlyphOverflow) {
	interior := l.Interior(i)
	size := g.Bitmap.Bounds().Size()
	var overflow *GlyphOverflow
	if size.X > interior.Dx() || size.Y > interior.Dy() {
		overflow = &GlyphOverflow{Code: g.Code, Size: size, Limit: interior.Dx()}
		if size.X > interior.Dx() {
			size.X = interior.Dx()
		}
		if size.Y > interior.Dy() {
			size.Y = interior.Dy()
		}
	}
	dst := image.Rectangle{Min: interior.Min, Max: interior.Min.Add(size)}
	draw.Draw(texture, dst, g.Bitmap, g.Bitmap.Bounds().Min, draw.Src)
	return size, overflow
}
