/*
Package font is for loading fonts and rasterizing their glyphs.

We will stick to the following nomenclature:

* A "scalable font" is a font file's content, i.e. a variant of a typeface
with a certain weight, slant, etc.  An example is "Go Sans regular".

* A "face" is a scalable font prepared for rasterization at a certain pixel
size. Faces render glyph bitmaps, report glyph metrics in 26.6 fixed point
units and answer kerning queries.

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

Faces never apply hinting: metrics and kerning are "unfitted", as required
for scalable texture atlases.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package font

import (
	"os"
	"sort"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/swiftglyph/core"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'swiftglyph.fonts'
func tracer() tracing.Trace {
	return tracing.Select("swiftglyph.fonts")
}

// ScalableFont is a parsed font file.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // the font's container
}

// LoadOpenTypeFont loads and parses a TrueType or OpenType font file.
// Errors are reported with code core.EFONTLOAD.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EFONTLOAD, "cannot open font file %s", fontfile)
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, core.WrapError(err, core.EFONTLOAD, "cannot parse font file %s", fontfile)
	}
	f.Filepath = fontfile
	tracer().Debugf("loaded font %q from %s", f.Fontname, fontfile)
	return f, nil
}

// ParseOpenTypeFont parses font data, e.g. from an embedded font.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, core.WrapError(err, core.EFONTLOAD, "cannot parse font data")
	}
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	return
}

// --- Fallback font ---------------------------------------------------------

// FallbackFont returns a font to be used if everything else failes. It is
// always present. Currently we use Go Sans.
func FallbackFont() *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackFont = loadFallbackFont()
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

// fallbackFont is a font that is used if everything else failes.
// Currently we use Go Sans.
var fallbackFont *ScalableFont

func loadFallbackFont() *ScalableFont {
	var err error
	gofont := &ScalableFont{
		Fontname: "Go Sans",
		Filepath: "internal",
		Binary:   goregular.TTF,
	}
	gofont.SFNT, err = sfnt.Parse(gofont.Binary)
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	return gofont
}

// --- Packaged fonts --------------------------------------------------------

// packaged are the Go fonts, keyed by their file names.
var packaged = map[string][]byte{
	"Go-Regular.ttf":     goregular.TTF,
	"Go-Bold.ttf":        gobold.TTF,
	"Go-Italic.ttf":      goitalic.TTF,
	"Go-Bold-Italic.ttf": gobolditalic.TTF,
	"Go-Medium.ttf":      gomedium.TTF,
	"Go-Mono.ttf":        gomono.TTF,
	"Go-Mono-Bold.ttf":   gomonobold.TTF,
	"Go-Smallcaps.ttf":   gosmallcaps.TTF,
}

// PackagedFonts lists the file names of the fonts compiled into the binary.
func PackagedFonts() []string {
	names := make([]string, 0, len(packaged))
	for name := range packaged {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PackagedFont parses one of the fonts compiled into the binary.
// name is one of the names returned by PackagedFonts.
func PackagedFont(name string) (*ScalableFont, error) {
	data, ok := packaged[name]
	if !ok {
		return nil, core.Error(core.EFONTLOAD, "no packaged font named %s", name)
	}
	f, err := ParseOpenTypeFont(data)
	if err != nil {
		return nil, err
	}
	f.Filepath = name
	return f, nil
}
