package fontregistry

import (
	"regexp"
	"strings"

	xfont "golang.org/x/image/font"
)

// Descriptor describes a font file available on the system, as listed by
// fontconfig.
type Descriptor struct {
	Family   string
	Path     string
	Variants []string // style names, e.g. "Bold Italic"
}

// MatchConfidence is a type for expressing the confidence level of font matching.
type MatchConfidence int

// Confidence levels
const (
	NoConfidence      MatchConfidence = 0
	LowConfidence     MatchConfidence = 2
	HighConfidence    MatchConfidence = 3
	PerfectConfidence MatchConfidence = 4
)

// weightNames maps name fragments to weights. Compound names come first.
var weightNames = []struct {
	fragment string
	weight   xfont.Weight
}{
	{"extralight", xfont.WeightExtraLight},
	{"xlight", xfont.WeightExtraLight},
	{"thin", xfont.WeightThin},
	{"light", xfont.WeightLight},
	{"semibold", xfont.WeightSemiBold},
	{"demibold", xfont.WeightSemiBold},
	{"extrabold", xfont.WeightExtraBold},
	{"xbold", xfont.WeightExtraBold},
	{"black", xfont.WeightBlack},
	{"heavy", xfont.WeightBlack},
	{"bold", xfont.WeightBold},
	{"medium", xfont.WeightMedium},
}

// classify derives style and weight from a font or variant name.
func classify(name string) (xfont.Style, xfont.Weight) {
	name = strings.ToLower(name)
	style := xfont.StyleNormal
	if strings.Contains(name, "italic") {
		style = xfont.StyleItalic
	} else if strings.Contains(name, "oblique") {
		style = xfont.StyleOblique
	}
	for _, w := range weightNames {
		if strings.Contains(name, w.fragment) {
			return style, w.weight
		}
	}
	return style, xfont.WeightNormal
}

// ClosestMatch scans a list of font desriptors and returns the closest match
// for a font name pattern, a style and a weight. The pattern has to occur in
// the family name, ignoring case.
// If no variant matches, returns `NoConfidence`.
func ClosestMatch(fdescs []Descriptor, pattern string, style xfont.Style,
	weight xfont.Weight) (match Descriptor, variant string, confidence MatchConfidence) {
	//
	r := regexp.MustCompile(regexp.QuoteMeta(strings.ToLower(pattern)))
	for _, fdesc := range fdescs {
		if !r.MatchString(strings.ToLower(fdesc.Family)) {
			continue
		}
		for _, v := range fdesc.Variants {
			vs, vw := classify(v)
			c := (styleConfidence(vs, style) + weightConfidence(vw, weight)) / 2
			if c > confidence {
				match, variant, confidence = fdesc, v, c
			}
		}
	}
	tracer().Debugf("closest match for %q: %q/%q (%d)", pattern, match.Family, variant, confidence)
	return
}

func styleConfidence(have, want xfont.Style) MatchConfidence {
	switch {
	case have == want:
		return PerfectConfidence
	case have != xfont.StyleNormal && want != xfont.StyleNormal:
		return HighConfidence // italic for oblique or vice versa
	}
	return NoConfidence
}

// weightConfidence decreases with the number of steps between two weights.
func weightConfidence(have, want xfont.Weight) MatchConfidence {
	d := int(have) - int(want)
	if d < 0 {
		d = -d
	}
	if d >= int(PerfectConfidence) {
		return NoConfidence
	}
	return PerfectConfidence - MatchConfidence(d)
}
