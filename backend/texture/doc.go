/*
Package texture turns the coverage texture of an atlas into image files.

The atlas texture is stored as white texels, with the glyph coverage in the
alpha channel. Three output formats are supported:

	raw   intensity/alpha pairs, one mip level per power of two from the
	      texture width down to 1, largest level first
	tga   uncompressed 32-bit Targa image of the full-size texture
	png   PNG image of the full-size texture

Mip levels are computed by a Scaler. DrawScaler resamples in-process,
MagickScaler hands the work to ImageMagick's convert.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package texture

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'swiftglyph.texture'
func tracer() tracing.Trace {
	return tracing.Select("swiftglyph.texture")
}
