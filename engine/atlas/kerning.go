package atlas

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/swiftglyph/core/font"
	"golang.org/x/image/math/fixed"
)

// KerningTable is a sparse table of kerning pairs. Pairs are ordered by
// first, then second glyph. Lookup is hashed.
type KerningTable struct {
	pairs []KerningPair
	index map[GlyphPair]int
}

func comparePairs(a, b interface{}) int {
	p, q := a.(GlyphPair), b.(GlyphPair)
	switch {
	case p.First < q.First:
		return -1
	case p.First > q.First:
		return 1
	case p.Second < q.Second:
		return -1
	case p.Second > q.Second:
		return 1
	}
	return 0
}

// kerningCollector accumulates kerning pairs in order, dropping zero vectors
// and repeated pairs.
type kerningCollector struct {
	pairs *treemap.Map
}

func newKerningCollector() *kerningCollector {
	return &kerningCollector{pairs: treemap.NewWith(comparePairs)}
}

// seen is true if the pair has been offered before.
func (kc *kerningCollector) seen(first, second font.GlyphIndex) bool {
	_, found := kc.pairs.Get(GlyphPair{first, second})
	return found
}

// add records a pair. Zero vectors are remembered as seen, but will not
// make it into the table.
func (kc *kerningCollector) add(first, second font.GlyphIndex, delta Vec2) {
	key := GlyphPair{first, second}
	if _, found := kc.pairs.Get(key); found {
		return
	}
	kc.pairs.Put(key, delta)
}

func (kc *kerningCollector) table() *KerningTable {
	kt := &KerningTable{index: make(map[GlyphPair]int)}
	it := kc.pairs.Iterator()
	for it.Next() {
		key, delta := it.Key().(GlyphPair), it.Value().(Vec2)
		if delta.IsZero() {
			continue
		}
		kt.index[key] = len(kt.pairs)
		kt.pairs = append(kt.pairs, KerningPair{First: key.First, Second: key.Second, Delta: delta})
	}
	return kt
}

// NewKerningTable creates a table from a list of pairs. Pairs with a zero
// delta are dropped; of repeated pairs the first one wins.
func NewKerningTable(pairs []KerningPair) *KerningTable {
	kc := newKerningCollector()
	for _, p := range pairs {
		kc.add(p.First, p.Second, p.Delta)
	}
	return kc.table()
}

// Len returns the number of kerning pairs.
func (kt *KerningTable) Len() int {
	return len(kt.pairs)
}

// Pairs returns the kerning pairs, ordered by first and second glyph.
// Clients must not modify the returned slice.
func (kt *KerningTable) Pairs() []KerningPair {
	return kt.pairs
}

// Lookup returns the kerning between two glyphs. Pairs without kerning
// yield false.
func (kt *KerningTable) Lookup(first, second font.GlyphIndex) (Vec2, bool) {
	i, ok := kt.index[GlyphPair{first, second}]
	if !ok {
		return Vec2{}, false
	}
	return kt.pairs[i].Delta, true
}

// Kerner is the kerning capability of a rasterizer.
type Kerner interface {
	Kerning(a, b font.GlyphIndex) (fixed.Point26_6, error)
}

// BuildKerningTable queries the kerning of every ordered pair of glyphs and
// normalizes it by the line height. Glyphs appearing more than once (several
// runes may map to the same glyph) are queried once per pair.
func BuildKerningTable(k Kerner, glyphs []font.GlyphIndex, lineHeight fixed.Int26_6) (*KerningTable, error) {
	lh := f26(lineHeight)
	kc := newKerningCollector()
	queries := 0
	for _, a := range glyphs {
		for _, b := range glyphs {
			if kc.seen(a, b) {
				continue
			}
			d, err := k.Kerning(a, b)
			if err != nil {
				return nil, err
			}
			queries++
			kc.add(a, b, vec(f26(d.X)/lh, f26(d.Y)/lh))
		}
	}
	kt := kc.table()
	tracer().Infof("kerning: %d pairs queried, %d with non-zero kerning", queries, kt.Len())
	return kt, nil
}
