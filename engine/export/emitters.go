package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// --- YAML ------------------------------------------------------------------

// yamlEmitter builds a YAML node tree, which keeps key order and comments.
type yamlEmitter struct {
	w    io.Writer
	doc  *yaml.Node
	root *yaml.Node
	list *yaml.Node
}

func newYAMLEmitter(w io.Writer) *yamlEmitter {
	root := &yaml.Node{Kind: yaml.MappingNode}
	return &yamlEmitter{
		w:    w,
		doc:  &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}},
		root: root,
	}
}

func yamlScalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}

func (y *yamlEmitter) header(fontName string, textureWidth int) {
	y.doc.HeadComment = "Font metrics for " + fontName
	y.root.Content = append(y.root.Content, yamlScalar("texture_width"),
		yamlScalar(ints(textureWidth)[0]))
}

func (y *yamlEmitter) section(key string) {
	y.list = &yaml.Node{Kind: yaml.SequenceNode}
	y.root.Content = append(y.root.Content, yamlScalar(key), y.list)
}

func (y *yamlEmitter) entry(comment string, fields []field) {
	m := &yaml.Node{Kind: yaml.MappingNode, HeadComment: comment}
	for _, f := range fields {
		var v *yaml.Node
		if len(f.values) == 1 {
			v = yamlScalar(f.values[0])
		} else {
			v = &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
			for _, s := range f.values {
				v.Content = append(v.Content, yamlScalar(s))
			}
		}
		m.Content = append(m.Content, yamlScalar(f.key), v)
	}
	y.list.Content = append(y.list.Content, m)
}

func (y *yamlEmitter) glyphs(n int)           { y.section("glyph_metrics") }
func (y *yamlEmitter) glyph(e glyphEntry)     { y.entry(e.name, e.fields()) }
func (y *yamlEmitter) kernings(n int)         { y.section("kerning") }
func (y *yamlEmitter) kerning(e kerningEntry) { y.entry("", e.fields()) }

func (y *yamlEmitter) flush() error {
	for _, n := range y.root.Content {
		if n.Kind == yaml.SequenceNode && len(n.Content) == 0 {
			n.Style = yaml.FlowStyle // []
		}
	}
	enc := yaml.NewEncoder(y.w)
	enc.SetIndent(2)
	if err := enc.Encode(y.doc); err != nil {
		return err
	}
	return enc.Close()
}

// --- Lua -------------------------------------------------------------------

// luaEmitter writes a Lua chunk returning a table.
type luaEmitter struct {
	w *bufio.Writer
}

func newLuaEmitter(w io.Writer) *luaEmitter {
	return &luaEmitter{w: bufio.NewWriter(w)}
}

func luaValue(values []string) string {
	if len(values) == 1 {
		return values[0]
	}
	return "{ " + strings.Join(values, ", ") + " }"
}

func (l *luaEmitter) header(fontName string, textureWidth int) {
	fmt.Fprintf(l.w, "-- Font metrics for %s\nreturn {\n  texture_width = %d,\n", fontName, textureWidth)
}

func (l *luaEmitter) glyphs(n int) {
	l.w.WriteString("  glyph_metrics = {\n")
}

func (l *luaEmitter) glyph(e glyphEntry) {
	fmt.Fprintf(l.w, "    { -- %s\n", e.name)
	for _, f := range e.fields() {
		fmt.Fprintf(l.w, "      %s = %s,\n", f.key, luaValue(f.values))
	}
	l.w.WriteString("    },\n")
}

func (l *luaEmitter) kernings(n int) {
	l.w.WriteString("  },\n  kerning = {\n")
}

func (l *luaEmitter) kerning(e kerningEntry) {
	fs := e.fields()
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.key + " = " + luaValue(f.values)
	}
	fmt.Fprintf(l.w, "    { %s },\n", strings.Join(parts, ", "))
}

func (l *luaEmitter) flush() error {
	l.w.WriteString("  },\n}\n")
	return l.w.Flush() // bufio.Writer keeps the first error
}

// --- JSON ------------------------------------------------------------------

type jsonDocument struct {
	Font         string         `json:"font"`
	TextureWidth int            `json:"texture_width"`
	GlyphMetrics []glyphEntry   `json:"glyph_metrics"`
	Kerning      []kerningEntry `json:"kerning"`
}

// jsonEmitter collects the document and encodes it in one go. JSON has no
// comments, so glyph names are dropped.
type jsonEmitter struct {
	w   io.Writer
	doc jsonDocument
}

func newJSONEmitter(w io.Writer) *jsonEmitter {
	return &jsonEmitter{w: w}
}

func (j *jsonEmitter) header(fontName string, textureWidth int) {
	j.doc.Font = fontName
	j.doc.TextureWidth = textureWidth
}

func (j *jsonEmitter) glyphs(n int)           { j.doc.GlyphMetrics = make([]glyphEntry, 0, n) }
func (j *jsonEmitter) glyph(e glyphEntry)     { j.doc.GlyphMetrics = append(j.doc.GlyphMetrics, e) }
func (j *jsonEmitter) kernings(n int)         { j.doc.Kerning = make([]kerningEntry, 0, n) }
func (j *jsonEmitter) kerning(e kerningEntry) { j.doc.Kerning = append(j.doc.Kerning, e) }

func (j *jsonEmitter) flush() error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(j.doc)
}
