/*
Package fontregistry manages a registry for loaded fonts.

Fonts are stored under a normalized name, derived from the font's name, style
and weight. Clients resolving the same font more than once will thus parse it
only once.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fontregistry

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'swiftglyph.fonts'
func tracer() tracing.Trace {
	return tracing.Select("swiftglyph.fonts")
}
