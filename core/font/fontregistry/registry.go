package fontregistry

import (
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/core/font"
	xfont "golang.org/x/image/font"
)

// Registry is a type for holding information about loaded fonts.
type Registry struct {
	sync.Mutex
	fonts map[string]*font.ScalableFont
}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is an application-wide singleton to hold information about
// loaded fonts. Libraries should prefer registries owned by their clients.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalFontRegistry = NewRegistry()
	})
	return globalFontRegistry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fonts: make(map[string]*font.ScalableFont)}
}

// StoreFont pushes a font into the registry if it isn't contained yet.
//
// The font will be stored using the normalized font name as a key. If this
// key is already associated with a font, that font will not be overridden.
func (fr *Registry) StoreFont(normalizedName string, f *font.ScalableFont) {
	if f == nil {
		tracer().Errorf("registry cannot store null font")
		return
	}
	fr.Lock()
	defer fr.Unlock()
	if _, ok := fr.fonts[normalizedName]; !ok {
		tracer().Debugf("registry stores font %s as %s", f.Fontname, normalizedName)
		fr.fonts[normalizedName] = f
	}
}

// Font returns the font stored under key normalizedName.
//
// If no such font has been stored, Font returns the fallback font together
// with an error of code core.EMISSING.
func (fr *Registry) Font(normalizedName string) (*font.ScalableFont, error) {
	fr.Lock()
	defer fr.Unlock()
	if f, ok := fr.fonts[normalizedName]; ok {
		tracer().Debugf("registry found font %s", normalizedName)
		return f, nil
	}
	tracer().Infof("registry does not contain font %s", normalizedName)
	return font.FallbackFont(), core.Error(core.EMISSING, "font %s not found in registry", normalizedName)
}

// Contains is true if a font is stored under key normalizedName.
func (fr *Registry) Contains(normalizedName string) bool {
	fr.Lock()
	defer fr.Unlock()
	_, ok := fr.fonts[normalizedName]
	return ok
}

// Names returns the keys of all stored fonts, sorted.
func (fr *Registry) Names() []string {
	fr.Lock()
	defer fr.Unlock()
	names := make([]string, 0, len(fr.fonts))
	for k := range fr.fonts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// NormalizeFontname creates a registry key from a font name, a style and
// a weight.
func NormalizeFontname(fname string, style xfont.Style, weight xfont.Weight) string {
	fname = strings.TrimSpace(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		fname = fname[:dot]
	}
	fname = strings.ToLower(fname)
	switch style {
	case xfont.StyleItalic, xfont.StyleOblique:
		fname += "-italic"
	}
	switch weight {
	case xfont.WeightLight, xfont.WeightExtraLight:
		fname += "-light"
	case xfont.WeightBold, xfont.WeightExtraBold, xfont.WeightSemiBold:
		fname += "-bold"
	}
	return fname
}

// GuessStyleAndWeight guesses a font's style and weight from the font's file
// name, e.g. "OpenSans-LightItalic.ttf".
func GuessStyleAndWeight(fontfilename string) (xfont.Style, xfont.Weight) {
	fontfilename = path.Base(fontfilename)
	return classify(strings.TrimSuffix(fontfilename, path.Ext(fontfilename)))
}
