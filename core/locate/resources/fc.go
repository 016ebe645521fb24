package resources

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"github.com/npillmayer/swiftglyph/core/font/fontregistry"
	"github.com/npillmayer/swiftglyph/core/sysexec"
)

// findFontConfigFont searches for a locally installed font using the
// fontconfig system (https://www.freedesktop.org/wiki/Software/fontconfig/).
// The resolver's FontConfig has to point to the 'fc-list' binary.
//
// We call the binary instead of using the C library because of possible version
// issues. The output of fc-list is read once per resolver. If no font matches,
// findFontConfigFont returns an empty descriptor.
func (r *Resolver) findFontConfigFont(ctx context.Context, pattern string) (fontregistry.Descriptor, error) {
	list, err := r.fontConfigList(ctx)
	if err != nil {
		return fontregistry.Descriptor{}, err
	}
	style, weight := fontregistry.GuessStyleAndWeight(pattern)
	desc, variant, confidence := fontregistry.ClosestMatch(list, pattern, style, weight)
	tracer().Debugf("closest fontconfig match confidence for %s|%s = %d", desc.Family, variant, confidence)
	if confidence > fontregistry.LowConfidence {
		return desc, nil
	}
	return fontregistry.Descriptor{}, nil
}

func (r *Resolver) fontConfigList(ctx context.Context) ([]fontregistry.Descriptor, error) {
	r.fcMutex.Lock()
	defer r.fcMutex.Unlock()
	if r.fcList != nil {
		return r.fcList, nil
	}
	fcpath, err := sysexec.LookPath(r.FontConfig)
	if err != nil {
		return nil, err
	}
	runner := r.Runner
	if runner == nil {
		runner = sysexec.ExecRunner{}
	}
	res, err := sysexec.RunChecked(ctx, runner, fcpath)
	if err != nil {
		return nil, err
	}
	r.fcList = parseFontConfigList(res.Stdout)
	tracer().Infof("loaded fontconfig list of %d fonts", len(r.fcList))
	return r.fcList, nil
}

// parseFontConfigList reads the default output format of fc-list:
//
//	/usr/share/fonts/TTF/DejaVuSans-Bold.ttf: DejaVu Sans:style=Bold
//
// Font collections (.ttc) are skipped.
func parseFontConfigList(out []byte) []fontregistry.Descriptor {
	descs := []fontregistry.Descriptor{}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	ttc := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 3 {
			continue
		}
		fontpath := strings.TrimSpace(fields[0])
		if strings.HasSuffix(strings.ToLower(fontpath), ".ttc") {
			ttc++
			continue
		}
		family := strings.TrimSpace(strings.Split(fields[1], ",")[0])
		family = strings.TrimPrefix(family, ".")
		style := strings.TrimPrefix(strings.TrimSpace(fields[2]), "style=")
		style = strings.Split(style, ",")[0]
		descs = append(descs, fontregistry.Descriptor{
			Family:   family,
			Path:     fontpath,
			Variants: []string{variantOf(style)},
		})
	}
	if ttc > 0 {
		tracer().Infof("skipping %d platform fonts: TTC not supported", ttc)
	}
	return descs
}

// variantOf maps a fontconfig style to a variant name known to the
// registry's matcher.
func variantOf(style string) string {
	s := strings.ToLower(style)
	switch {
	case strings.Contains(s, "italic"), strings.Contains(s, "oblique"):
		return "italic"
	case strings.Contains(s, "light"), strings.Contains(s, "thin"):
		return "light"
	case strings.Contains(s, "bold"), strings.Contains(s, "black"), strings.Contains(s, "heavy"):
		return "bold"
	}
	return "regular"
}
