/*
Package fontbin stores compiled atlases in the relocatable blob format of
package blob, and reads them back as a typed, read-only view.

The payload starts with a font record, followed by the glyph table, the
kerning table and the strings:

	font     texture width, glyph count, kerning count, flags, padding,
	         columns, → name, → texture file, → glyphs, → kerning
	glyph    glyph id, code, cell origin, bitmap size, bearing, advance,
	         xy quad, uv quad, kerning count, flags, → kerning run
	kerning  first, second, dx, dy

Arrows denote pointer fields. Each glyph points to the run of kerning pairs
which have the glyph as their first glyph; kerning pairs are sorted by first
and second glyph. Every pointer field is always set, so a blob for an atlas
with n glyphs has exactly 4+n pointer slots.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fontbin

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'swiftglyph.blob'
func tracer() tracing.Trace {
	return tracing.Select("swiftglyph.blob")
}
