package fontbin

import (
	"os"
	"sort"

	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/core/blob"
	"github.com/npillmayer/swiftglyph/core/font"
	"github.com/npillmayer/swiftglyph/engine/atlas"
)

// Record sizes and field positions.
const (
	fontSize    = 56
	glyphSize   = 88
	kerningSize = 16

	fTextureWidth = 0
	fGlyphCount   = 4
	fKerningCount = 8
	fFlags        = 12
	fPadding      = 16
	fColumns      = 20
	fName         = 24
	fTextureFile  = 32
	fGlyphs       = 40
	fKerning      = 48

	gID        = 0
	gCode      = 4
	gCellX     = 8
	gCellY     = 12
	gBitmapW   = 16
	gBitmapH   = 20
	gBearing   = 24
	gAdvance   = 32
	gXYLL      = 40
	gXYUR      = 48
	gUVLL      = 56
	gUVUR      = 64
	gKernCount = 72
	gFlags     = 76
	gKernRun   = 80

	kFirst  = 0
	kSecond = 4
	kDelta  = 8
)

// flags
const (
	flagVerticalFlip = 1
	flagClipped      = 1
)

// PointerFields returns the number of pointer fields of the blob for an atlas.
func PointerFields(a *atlas.Atlas) int {
	return 4 + len(a.Glyphs)
}

// Encode lays out an atlas as a relocatable blob. textureFile is the name of
// the texture file a runtime loader should use with this font.
func Encode(a *atlas.Atlas, textureFile string) ([]byte, error) {
	pairs := a.Kerning.Pairs()
	b := blob.NewBuilder(fontSize + len(a.Glyphs)*glyphSize + len(pairs)*kerningSize + 256)
	root := b.Alloc(fontSize, blob.WordSize)
	b.PutU32(root+fTextureWidth, uint32(a.Layout.TextureWidth))
	b.PutU32(root+fGlyphCount, uint32(len(a.Glyphs)))
	b.PutU32(root+fKerningCount, uint32(len(pairs)))
	if a.VerticalFlip {
		b.PutU32(root+fFlags, flagVerticalFlip)
	}
	b.PutU32(root+fPadding, uint32(a.Layout.Padding))
	b.PutU32(root+fColumns, uint32(a.Layout.Columns))
	glyphs := b.Alloc(len(a.Glyphs)*glyphSize, blob.WordSize)
	kerning := b.Alloc(len(pairs)*kerningSize, blob.WordSize)
	for i, p := range pairs {
		at := kerning + blob.Ref(i*kerningSize)
		b.PutU32(at+kFirst, uint32(p.First))
		b.PutU32(at+kSecond, uint32(p.Second))
		putVec(b, at+kDelta, p.Delta)
	}
	name := b.PutString(a.FontName)
	texfile := b.PutString(textureFile)
	for _, ptr := range []struct{ at, target blob.Ref }{
		{root + fName, name},
		{root + fTextureFile, texfile},
		{root + fGlyphs, glyphs},
		{root + fKerning, kerning},
	} {
		if err := b.Pointer(ptr.at, ptr.target); err != nil {
			return nil, err
		}
	}
	for i, g := range a.Glyphs {
		at := glyphs + blob.Ref(i*glyphSize)
		b.PutU32(at+gID, uint32(g.GlyphID))
		b.PutU32(at+gCode, uint32(g.Code))
		b.PutI32(at+gCellX, int32(g.CellOrigin.X))
		b.PutI32(at+gCellY, int32(g.CellOrigin.Y))
		b.PutU32(at+gBitmapW, uint32(g.BitmapSize.X))
		b.PutU32(at+gBitmapH, uint32(g.BitmapSize.Y))
		putVec(b, at+gBearing, g.Bearing)
		putVec(b, at+gAdvance, g.Advance)
		putVec(b, at+gXYLL, g.XYLowerLeft)
		putVec(b, at+gXYUR, g.XYUpperRight)
		putVec(b, at+gUVLL, g.UVLowerLeft)
		putVec(b, at+gUVUR, g.UVUpperRight)
		if g.Clipped {
			b.PutU32(at+gFlags, flagClipped)
		}
		start, count := run(pairs, g.GlyphID)
		b.PutU32(at+gKernCount, uint32(count))
		if err := b.Pointer(at+gKernRun, kerning+blob.Ref(start*kerningSize)); err != nil {
			return nil, err
		}
	}
	buf, err := b.Bytes()
	if err != nil {
		return nil, err
	}
	tracer().Infof("font %s: blob of %d bytes, %d glyphs, %d kerning pairs, %d slots",
		a.FontName, len(buf), len(a.Glyphs), len(pairs), b.Slots())
	return buf, nil
}

// run finds the kerning pairs with first glyph g. pairs are sorted by first
// glyph. Glyphs without kerning get an empty run at position 0.
func run(pairs []atlas.KerningPair, g font.GlyphIndex) (start, count int) {
	start = sort.Search(len(pairs), func(i int) bool { return pairs[i].First >= g })
	end := start
	for end < len(pairs) && pairs[end].First == g {
		end++
	}
	if end == start {
		return 0, 0
	}
	return start, end - start
}

func putVec(b *blob.Builder, at blob.Ref, v atlas.Vec2) {
	b.PutF32(at, v.X)
	b.PutF32(at+4, v.Y)
}

// WriteFile encodes an atlas and writes the blob to a file.
func WriteFile(path string, a *atlas.Atlas, textureFile string) error {
	buf, err := Encode(a, textureFile)
	if err != nil {
		return err
	}
	if err = os.WriteFile(path, buf, 0644); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot write font blob %s", path)
	}
	return nil
}
