package fontbin

import (
	"encoding/binary"
	"errors"
	"image"
	"math"
	"os"

	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/core/blob"
	"github.com/npillmayer/swiftglyph/core/font"
	"github.com/npillmayer/swiftglyph/engine/atlas"
)

// ErrSchema is reported for blobs which are structurally sound, but do not
// contain a font record. It is wrapped with code core.EBLOBFORMAT.
var ErrSchema = errors.New("blob does not hold a valid font record")

func schemaError(format string, v ...interface{}) error {
	return core.WrapError(ErrSchema, core.EBLOBFORMAT, format, v...)
}

// Font is a read-only view on a decoded font blob.
type Font struct {
	view         *blob.View
	name         string
	textureFile  string
	textureWidth int
	padding      int
	columns      int
	flags        uint32
	glyphs       blob.Ref
	glyphCount   int
	kerning      blob.Ref
	kerningCount int
	index        map[atlas.GlyphPair]int
}

// Decode decodes a font blob in place. Ownership of buf passes to the
// returned font. All errors carry code core.EBLOBFORMAT; a blob which fails
// to decode leaves buf untouched, a blob which decodes but fails the schema
// check does not.
func Decode(buf []byte) (*Font, error) {
	v, err := blob.Decode(buf)
	if err != nil {
		return nil, err
	}
	f := &Font{view: v}
	if err = f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads and decodes a font blob file.
func Load(path string) (*Font, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font blob %s", path)
	}
	f, err := Decode(buf)
	if err != nil {
		return nil, core.WrapError(err, core.EBLOBFORMAT, "%s: %s", path, core.UserMessage(err))
	}
	return f, nil
}

// load checks the schema and caches the root record.
func (f *Font) load() error {
	root, err := f.view.Bytes(f.view.Root(), fontSize)
	if err != nil {
		return schemaError("payload too small for a font record")
	}
	f.textureWidth = int(u32(root, fTextureWidth))
	f.glyphCount = int(u32(root, fGlyphCount))
	f.kerningCount = int(u32(root, fKerningCount))
	f.flags = u32(root, fFlags)
	f.padding = int(u32(root, fPadding))
	f.columns = int(u32(root, fColumns))
	if f.view.SlotCount() != 4+f.glyphCount {
		return schemaError("%d pointer slots for %d glyphs", f.view.SlotCount(), f.glyphCount)
	}
	if f.name, err = f.stringAt(fName); err != nil {
		return err
	}
	if f.textureFile, err = f.stringAt(fTextureFile); err != nil {
		return err
	}
	if f.glyphs, err = f.table(fGlyphs, f.glyphCount, glyphSize); err != nil {
		return err
	}
	if f.kerning, err = f.table(fKerning, f.kerningCount, kerningSize); err != nil {
		return err
	}
	kend := f.kerning + blob.Ref(f.kerningCount*kerningSize)
	for i := 0; i < f.glyphCount; i++ {
		at := f.glyphs + blob.Ref(i*glyphSize)
		start, err := f.view.Pointer(at + gKernRun)
		if err != nil {
			return schemaError("glyph #%d has no kerning run", i)
		}
		n, _ := f.view.U32(at + gKernCount)
		if n > 0 && (start < f.kerning || start+blob.Ref(int(n)*kerningSize) > kend) {
			return schemaError("kerning run of glyph #%d outside of kerning table", i)
		}
	}
	f.index = make(map[atlas.GlyphPair]int, f.kerningCount)
	for i := 0; i < f.kerningCount; i++ {
		p := f.KerningPair(i)
		f.index[atlas.GlyphPair{First: p.First, Second: p.Second}] = i
	}
	tracer().Debugf("font blob %s: %d glyphs, %d kerning pairs, texture %s",
		f.name, f.glyphCount, f.kerningCount, f.textureFile)
	return nil
}

func (f *Font) stringAt(field blob.Ref) (string, error) {
	at, err := f.view.Pointer(f.view.Root() + field)
	if err != nil {
		return "", schemaError("string field at %d: %s", field, core.UserMessage(err))
	}
	s, err := f.view.CString(at)
	if err != nil {
		return "", schemaError("string field at %d: %s", field, core.UserMessage(err))
	}
	return s, nil
}

func (f *Font) table(field blob.Ref, count, size int) (blob.Ref, error) {
	at, err := f.view.Pointer(f.view.Root() + field)
	if err != nil {
		return 0, schemaError("table field at %d: %s", field, core.UserMessage(err))
	}
	if count > f.view.Len()/size {
		return 0, schemaError("table of %d records exceeds payload", count)
	}
	if _, err = f.view.Bytes(at, count*size); err != nil {
		return 0, schemaError("table of %d records at %d exceeds payload", count, at)
	}
	return at, nil
}

// Name returns the name of the font the atlas has been built from.
func (f *Font) Name() string {
	return f.name
}

// TextureFile returns the name of the texture file for this font.
func (f *Font) TextureFile() string {
	return f.textureFile
}

// TextureWidth returns the width (and height) of the atlas texture.
func (f *Font) TextureWidth() int {
	return f.textureWidth
}

// Padding returns the padding around glyphs in texels.
func (f *Font) Padding() int {
	return f.padding
}

// Columns returns the number of cells per row of the atlas.
func (f *Font) Columns() int {
	return f.columns
}

// VerticalFlip is true if texture coordinates grow downwards.
func (f *Font) VerticalFlip() bool {
	return f.flags&flagVerticalFlip != 0
}

// GlyphCount returns the number of glyph records.
func (f *Font) GlyphCount() int {
	return f.glyphCount
}

// KerningCount returns the number of kerning pairs.
func (f *Font) KerningCount() int {
	return f.kerningCount
}

// SlotCount returns the number of pointer slots of the underlying blob.
func (f *Font) SlotCount() int {
	return f.view.SlotCount()
}

// Glyph returns glyph record i, 0 ≤ i < GlyphCount.
func (f *Font) Glyph(i int) atlas.GlyphRecord {
	b := f.record(f.glyphs+blob.Ref(i*glyphSize), glyphSize)
	return atlas.GlyphRecord{
		GlyphID:      font.GlyphIndex(u32(b, gID)),
		Code:         rune(u32(b, gCode)),
		CellOrigin:   image.Pt(int(int32(u32(b, gCellX))), int(int32(u32(b, gCellY)))),
		BitmapSize:   image.Pt(int(u32(b, gBitmapW)), int(u32(b, gBitmapH))),
		Bearing:      vec(b, gBearing),
		Advance:      vec(b, gAdvance),
		XYLowerLeft:  vec(b, gXYLL),
		XYUpperRight: vec(b, gXYUR),
		UVLowerLeft:  vec(b, gUVLL),
		UVUpperRight: vec(b, gUVUR),
		Clipped:      u32(b, gFlags)&flagClipped != 0,
	}
}

// GlyphByCode returns the glyph record for rune r.
func (f *Font) GlyphByCode(r rune) (atlas.GlyphRecord, bool) {
	if f.glyphCount == 0 {
		return atlas.GlyphRecord{}, false
	}
	first := f.Glyph(0).Code
	if i := int(r - first); i >= 0 && i < f.glyphCount {
		if g := f.Glyph(i); g.Code == r {
			return g, true
		}
	}
	for i := 0; i < f.glyphCount; i++ { // codes are not contiguous
		if g := f.Glyph(i); g.Code == r {
			return g, true
		}
	}
	return atlas.GlyphRecord{}, false
}

// KerningPair returns kerning pair i, 0 ≤ i < KerningCount.
func (f *Font) KerningPair(i int) atlas.KerningPair {
	b := f.record(f.kerning+blob.Ref(i*kerningSize), kerningSize)
	return atlas.KerningPair{
		First:  font.GlyphIndex(u32(b, kFirst)),
		Second: font.GlyphIndex(u32(b, kSecond)),
		Delta:  vec(b, kDelta),
	}
}

// Kerning looks up the kerning between two glyphs.
func (f *Font) Kerning(first, second font.GlyphIndex) (atlas.Vec2, bool) {
	i, ok := f.index[atlas.GlyphPair{First: first, Second: second}]
	if !ok {
		return atlas.Vec2{}, false
	}
	return f.KerningPair(i).Delta, true
}

// KerningRun returns the kerning pairs with glyph record i as first glyph,
// following the glyph's kerning pointer.
func (f *Font) KerningRun(i int) []atlas.KerningPair {
	at := f.glyphs + blob.Ref(i*glyphSize)
	n, _ := f.view.U32(at + gKernCount)
	start, _ := f.view.Pointer(at + gKernRun)
	first := int(start-f.kerning) / kerningSize
	run := make([]atlas.KerningPair, n)
	for j := range run {
		run[j] = f.KerningPair(first + j)
	}
	return run
}

// Release invalidates the font and hands back its buffer.
func (f *Font) Release() ([]byte, error) {
	f.index = nil
	return f.view.Release()
}

// record returns the bytes of a record whose extent has been checked by load.
func (f *Font) record(at blob.Ref, size int) []byte {
	b, err := f.view.Bytes(at, size)
	if err != nil {
		panic(err) // released view or index out of range
	}
	return b
}

func u32(b []byte, at int) uint32 {
	return binary.LittleEndian.Uint32(b[at:])
}

func vec(b []byte, at int) atlas.Vec2 {
	return atlas.Vec2{
		X: math.Float32frombits(u32(b, at)),
		Y: math.Float32frombits(u32(b, at+4)),
	}
}
