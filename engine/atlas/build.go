package atlas

import (
	"image"

	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/core/font"
	"golang.org/x/image/math/fixed"
)

// Face is the rasterizer capability an atlas build consumes. *font.Face
// implements it.
type Face interface {
	Kerner
	Name() string
	SetPixelSize(px int) error
	LineHeight() (fixed.Int26_6, error)
	RenderGlyph(r rune) (font.Glyph, error)
}

var _ Face = (*font.Face)(nil)

// Options are the parameters of an atlas build.
type Options struct {
	TextureWidth int
	Padding      int
	VerticalFlip bool
	Overflow     OverflowPolicy
}

// DefaultOptions returns a 512×512 texture with padding 1, upward texture
// coordinates and clipping of oversized glyphs.
func DefaultOptions() Options {
	return Options{TextureWidth: 512, Padding: 1}
}

// Atlas is the result of a build.
type Atlas struct {
	FontName     string
	Layout       Layout
	VerticalFlip bool
	LineHeight   fixed.Int26_6 // at the layout's pixel size
	Texture      *image.Alpha  // glyph coverage, TextureWidth × TextureWidth
	Glyphs       []GlyphRecord // one per rune in [FirstCode, LastCode], in order
	Kerning      *KerningTable
	Overflows    []GlyphOverflow // glyphs clipped to their cells
}

// Glyph returns the record for rune r, if r is in the atlas' range.
func (a *Atlas) Glyph(r rune) (GlyphRecord, bool) {
	if r < FirstCode || r > LastCode || int(r-FirstCode) >= len(a.Glyphs) {
		return GlyphRecord{}, false
	}
	return a.Glyphs[r-FirstCode], true
}

// BuildContext carries the state of one atlas build through its stages.
// It owns the face for the duration of the build.
type BuildContext struct {
	face     Face
	opts     Options
	layout   Layout
	norm     Normalizer
	rendered []rendered
	atlas    *Atlas
}

// NewBuildContext validates the options, computes the layout and sets up the
// face for the layout's pixel size.
func NewBuildContext(face Face, opts Options) (*BuildContext, error) {
	layout, err := NewLayout(GlyphCount, opts.TextureWidth, opts.Padding)
	if err != nil {
		return nil, err
	}
	if err = face.SetPixelSize(layout.PixelSize()); err != nil {
		return nil, err
	}
	lh, err := face.LineHeight()
	if err != nil {
		return nil, err
	}
	if lh <= 0 {
		return nil, core.Error(core.EFONTLOAD, "font %s has no usable line height", face.Name())
	}
	ctx := &BuildContext{
		face:   face,
		opts:   opts,
		layout: layout,
		norm:   Normalizer{Layout: layout, LineHeight: lh, VerticalFlip: opts.VerticalFlip},
		atlas: &Atlas{
			FontName:     face.Name(),
			Layout:       layout,
			VerticalFlip: opts.VerticalFlip,
			LineHeight:   lh,
			Texture:      image.NewAlpha(image.Rect(0, 0, opts.TextureWidth, opts.TextureWidth)),
		},
	}
	return ctx, nil
}

// Layout returns the layout of the atlas under construction.
func (ctx *BuildContext) Layout() Layout {
	return ctx.layout
}

// Pack rasterizes all glyphs and copies them into their cells.
func (ctx *BuildContext) Pack() error {
	ctx.rendered = ctx.rendered[:0]
	for i := 0; i < GlyphCount; i++ {
		r := FirstCode + rune(i)
		g, err := ctx.face.RenderGlyph(r)
		if err != nil {
			return err
		}
		size, overflow := place(ctx.atlas.Texture, ctx.layout, i, g)
		if overflow != nil {
			if ctx.opts.Overflow == OverflowReject {
				return core.WrapError(*overflow, core.EGLYPHOVERFLOW, "%s: %v", ctx.face.Name(), overflow)
			}
			tracer().Errorf("%s: %v, clipped", ctx.face.Name(), overflow)
			ctx.atlas.Overflows = append(ctx.atlas.Overflows, *overflow)
		}
		ctx.rendered = append(ctx.rendered, rendered{
			index:   g.Index,
			code:    r,
			metrics: g.Metrics,
			origin:  ctx.layout.CellOrigin(i),
			size:    size,
			clipped: overflow != nil,
		})
	}
	tracer().Infof("packed %d glyphs of %s at %d px", len(ctx.rendered), ctx.face.Name(),
		ctx.layout.PixelSize())
	return nil
}

// Normalize computes the glyph records of all packed glyphs.
func (ctx *BuildContext) Normalize() error {
	if len(ctx.rendered) != GlyphCount {
		return core.Error(core.EINTERNAL, "normalize called before pack")
	}
	ctx.atlas.Glyphs = make([]GlyphRecord, len(ctx.rendered))
	for i, g := range ctx.rendered {
		rec := ctx.norm.Record(g.index, g.code, g.metrics, g.origin, g.size)
		rec.Clipped = g.clipped
		ctx.atlas.Glyphs[i] = rec
	}
	return nil
}

// Kern builds the kerning table of all packed glyphs.
func (ctx *BuildContext) Kern() error {
	if len(ctx.rendered) != GlyphCount {
		return core.Error(core.EINTERNAL, "kern called before pack")
	}
	glyphs := make([]font.GlyphIndex, len(ctx.rendered))
	for i, g := range ctx.rendered {
		glyphs[i] = g.index
	}
	kt, err := BuildKerningTable(ctx.face, glyphs, ctx.norm.LineHeight)
	if err != nil {
		return err
	}
	ctx.atlas.Kerning = kt
	return nil
}

// Atlas returns the atlas built so far.
func (ctx *BuildContext) Atlas() *Atlas {
	return ctx.atlas
}

// Build compiles an atlas for a face, running all stages.
func Build(face Face, opts Options) (*Atlas, error) {
	ctx, err := NewBuildContext(face, opts)
	if err != nil {
		return nil, err
	}
	for _, stage := range []func() error{ctx.Pack, ctx.Normalize, ctx.Kern} {
		if err = stage(); err != nil {
			return nil, err
		}
	}
	return ctx.Atlas(), nil
}
