/*
Package atlas compiles the printable ASCII glyphs of a font into a texture
atlas, together with normalized placement metrics and a kerning table.

The build runs in stages, all of them operating on a BuildContext which owns
the rasterizer face and accumulates the results:

	pack       each glyph is rasterized at the layout's pixel size and copied
	           into its cell of a square grid
	normalize  26.6 font metrics become line-height relative quads, and cell
	           positions become texture coordinates
	kern       every ordered glyph pair is queried for kerning; non-zero pairs
	           make up a sparse kerning table

Build runs all stages in order. The resulting Atlas is immutable and is the
input for text exports (package export), the binary runtime format (package
fontbin) and the texture backend.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package atlas

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'swiftglyph.atlas'
func tracer() tracing.Trace {
	return tracing.Select("swiftglyph.atlas")
}
