package export

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/engine/atlas"
	"golang.org/x/text/unicode/runenames"
)

// Format is a metrics text format.
type Format int

// Supported formats.
const (
	YAML Format = iota
	Lua
	JSON
)

var formatNames = [...]string{"yaml", "lua", "json"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// Extension returns the file name extension for f, including the dot.
func (f Format) Extension() string {
	return "." + f.String()
}

// ParseFormat maps a format name to a Format. The empty string selects YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "yaml", "yml":
		return YAML, nil
	case "lua":
		return Lua, nil
	case "json":
		return JSON, nil
	}
	return YAML, core.InvalidConfig("metrics", "unknown metrics format %q", s)
}

// glyphEntry is the exported form of a glyph record.
type glyphEntry struct {
	name         string
	Index        int        `json:"index"`
	CharCode     int        `json:"char_code"`
	CellOrigin   [2]int     `json:"cell_origin"`
	BitmapSize   [2]int     `json:"bitmap_size"`
	Bearing      [2]float32 `json:"bearing"`
	Advance      [2]float32 `json:"advance"`
	XYLowerLeft  [2]float32 `json:"xy_lower_left"`
	XYUpperRight [2]float32 `json:"xy_upper_right"`
	UVLowerLeft  [2]float32 `json:"uv_lower_left"`
	UVUpperRight [2]float32 `json:"uv_upper_right"`
}

// kerningEntry is the exported form of a kerning pair.
type kerningEntry struct {
	First  int        `json:"first_index"`
	Second int        `json:"second_index"`
	Delta  [2]float32 `json:"delta"`
}

// field is a key with one or more values, already formatted.
type field struct {
	key    string
	values []string
}

func (e glyphEntry) fields() []field {
	return []field{
		{"index", ints(e.Index)},
		{"char_code", ints(e.CharCode)},
		{"cell_origin", ints(e.CellOrigin[:]...)},
		{"bitmap_size", ints(e.BitmapSize[:]...)},
		{"bearing", floats(e.Bearing)},
		{"advance", floats(e.Advance)},
		{"xy_lower_left", floats(e.XYLowerLeft)},
		{"xy_upper_right", floats(e.XYUpperRight)},
		{"uv_lower_left", floats(e.UVLowerLeft)},
		{"uv_upper_right", floats(e.UVUpperRight)},
	}
}

func (e kerningEntry) fields() []field {
	return []field{
		{"first_index", ints(e.First)},
		{"second_index", ints(e.Second)},
		{"delta", floats(e.Delta)},
	}
}

// emitter renders the document in one concrete syntax. The walker calls
// header first, then glyphs(n) followed by n calls of glyph, then
// kernings(n) followed by n calls of kerning, and finally flush.
type emitter interface {
	header(fontName string, textureWidth int)
	glyphs(n int)
	glyph(e glyphEntry)
	kernings(n int)
	kerning(e kerningEntry)
	flush() error
}

func newEmitter(w io.Writer, f Format) (emitter, error) {
	switch f {
	case YAML:
		return newYAMLEmitter(w), nil
	case Lua:
		return newLuaEmitter(w), nil
	case JSON:
		return newJSONEmitter(w), nil
	}
	return nil, core.Error(core.EINVALIDCONFIG, "unknown metrics format %v", f)
}

// Write exports the metrics of an atlas to w.
func Write(w io.Writer, a *atlas.Atlas, f Format) error {
	em, err := newEmitter(w, f)
	if err != nil {
		return err
	}
	walk(a, em)
	if err = em.flush(); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot write %v metrics", f)
	}
	return nil
}

// WriteFile exports the metrics of an atlas to a file.
func WriteFile(path string, a *atlas.Atlas, f Format) error {
	out, err := os.Create(path)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot create metrics file %s", path)
	}
	if err = Write(out, a, f); err != nil {
		out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot write metrics file %s", path)
	}
	tracer().Infof("wrote %v metrics of %s to %s", f, a.FontName, path)
	return nil
}

// walk feeds the document of an atlas to an emitter.
func walk(a *atlas.Atlas, em emitter) {
	em.header(a.FontName, a.Layout.TextureWidth)
	em.glyphs(len(a.Glyphs))
	for _, g := range a.Glyphs {
		em.glyph(glyphEntry{
			name:         glyphName(g.Code),
			Index:        int(g.GlyphID),
			CharCode:     int(g.Code),
			CellOrigin:   [2]int{g.CellOrigin.X, g.CellOrigin.Y},
			BitmapSize:   [2]int{g.BitmapSize.X, g.BitmapSize.Y},
			Bearing:      pair(g.Bearing),
			Advance:      pair(g.Advance),
			XYLowerLeft:  pair(g.XYLowerLeft),
			XYUpperRight: pair(g.XYUpperRight),
			UVLowerLeft:  pair(g.UVLowerLeft),
			UVUpperRight: pair(g.UVUpperRight),
		})
	}
	var pairs []atlas.KerningPair
	if a.Kerning != nil {
		pairs = a.Kerning.Pairs()
	}
	em.kernings(len(pairs))
	for _, p := range pairs {
		if p.Delta.IsZero() {
			continue
		}
		em.kerning(kerningEntry{
			First:  int(p.First),
			Second: int(p.Second),
			Delta:  pair(p.Delta),
		})
	}
}

// glyphName returns a comment text for a character, e.g.
// "U+0041 LATIN CAPITAL LETTER A".
func glyphName(r rune) string {
	name := runenames.Name(r)
	if name == "" {
		return fmt.Sprintf("U+%04X", r)
	}
	return fmt.Sprintf("U+%04X %s", r, name)
}

func pair(v atlas.Vec2) [2]float32 {
	return [2]float32{v.X, v.Y}
}

func ints(v ...int) []string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = strconv.Itoa(n)
	}
	return s
}

func floats(v [2]float32) []string {
	return []string{formatFloat(v[0]), formatFloat(v[1])}
}

// formatFloat prints the shortest representation of f which reads back as
// the same float32. Integral values keep a decimal point.
func formatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}
