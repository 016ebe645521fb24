/*
Package export writes the metrics of a compiled atlas as text, for runtimes
which do not read font blobs.

Three formats are supported: YAML, Lua and JSON. All of them carry the same
document, produced by a single walk over the atlas: the texture width, one
entry per glyph and one entry per kerning pair. Glyph entries are annotated
with the Unicode name of their character, where the format has comments.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package export

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'swiftglyph.export'
func tracer() tracing.Trace {
	return tracing.Select("swiftglyph.export")
}
