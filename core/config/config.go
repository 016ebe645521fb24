package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/swiftglyph/backend/texture"
	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/engine/atlas"
	"github.com/npillmayer/swiftglyph/engine/export"
	"gopkg.in/yaml.v3"
)

// AppKey is the application tag used to locate configuration files.
const AppKey = "swiftglyph"

// Configuration keys
const (
	KeyWidth    = "width"
	KeyPadding  = "padding"
	KeyFlip     = "flip"
	KeyMetrics  = "metrics"
	KeyTexture  = "texture"
	KeyOverflow = "overflow"
	KeyScaler   = "scaler"
	KeyMagick   = "magick"
	KeyOutDir   = "outdir"
	KeyBlob     = "blob"
	KeyDebug    = "debug"
	KeyFonts    = "fontconfig"
	KeyTracing  = "tracing.adapter"
)

// Scaler names
const (
	ScalerDraw   = "draw"
	ScalerMagick = "magick"
)

// Defaults returns the built-in configuration.
func Defaults() testconfig.Conf {
	return testconfig.Conf{
		KeyWidth:     "512",
		KeyPadding:   "1",
		KeyFlip:      "false",
		KeyMetrics:   "yaml",
		KeyTexture:   "raw",
		KeyOverflow:  "clip",
		KeyScaler:    ScalerDraw,
		KeyMagick:    "convert",
		KeyOutDir:    ".",
		KeyBlob:      "true",
		KeyDebug:     "false",
		KeyFonts:     "",
		KeyTracing:   "go",
		"trace.root": "Error",
	}
}

// Locate searches for a configuration file at the platform's configuration
// locations. It returns the empty string if there is none.
func Locate() string {
	found := schuko.LocateConfig(AppKey, "", []string{"yaml", "yml"})
	if len(found) == 0 {
		return ""
	}
	return found[0]
}

// Load reads a YAML configuration file. Nested mappings are flattened to
// dot-separated keys, values are kept as strings.
func Load(path string) (testconfig.Conf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALIDCONFIG, "cannot read configuration %s", path)
	}
	return Parse(data)
}

// Parse reads configuration from YAML data.
func Parse(data []byte) (testconfig.Conf, error) {
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, core.WrapError(err, core.EINVALIDCONFIG, "malformed configuration: %v", err)
	}
	conf := testconfig.Conf{}
	if err := flatten(conf, "", tree); err != nil {
		return nil, err
	}
	return conf, nil
}

func flatten(conf testconfig.Conf, prefix string, tree map[string]interface{}) error {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch x := v.(type) {
		case map[string]interface{}:
			if err := flatten(conf, key, x); err != nil {
				return err
			}
		case []interface{}, map[interface{}]interface{}:
			return core.InvalidConfig(key, "structured values are not supported")
		case nil:
			conf[key] = ""
		default:
			conf[key] = fmt.Sprint(x)
		}
	}
	return nil
}

// Merge copies all entries of the overlays into conf, later overlays
// winning, and returns conf.
func Merge(conf testconfig.Conf, overlays ...testconfig.Conf) testconfig.Conf {
	for _, o := range overlays {
		for k, v := range o {
			conf[k] = v
		}
	}
	return conf
}

// Options are the validated settings of an atlas build.
type Options struct {
	Atlas   atlas.Options
	Metrics export.Format
	Texture texture.Format
	Scaler  string // ScalerDraw or ScalerMagick
	Magick  string // convert binary
	OutDir  string
	Fonts   string // fc-list binary, empty to skip fontconfig
	Blob    bool
	Debug   bool
}

// FromConfiguration validates a configuration and extracts the build
// options. Keys missing from conf take their default values.
func FromConfiguration(conf schuko.Configuration) (Options, error) {
	opts := Options{}
	get := func(key string) string {
		if conf.IsSet(key) {
			return strings.TrimSpace(conf.GetString(key))
		}
		return Defaults().GetString(key)
	}
	var err error
	if opts.Atlas.TextureWidth, err = integer(KeyWidth, get(KeyWidth)); err != nil {
		return opts, err
	}
	if opts.Atlas.Padding, err = integer(KeyPadding, get(KeyPadding)); err != nil {
		return opts, err
	}
	if _, err = atlas.NewLayout(atlas.GlyphCount, opts.Atlas.TextureWidth, opts.Atlas.Padding); err != nil {
		return opts, err
	}
	if opts.Atlas.VerticalFlip, err = boolean(KeyFlip, get(KeyFlip)); err != nil {
		return opts, err
	}
	if opts.Atlas.Overflow, err = atlas.ParseOverflowPolicy(get(KeyOverflow)); err != nil {
		return opts, err
	}
	if opts.Metrics, err = export.ParseFormat(get(KeyMetrics)); err != nil {
		return opts, err
	}
	if opts.Texture, err = texture.ParseFormat(get(KeyTexture)); err != nil {
		return opts, err
	}
	switch opts.Scaler = strings.ToLower(get(KeyScaler)); opts.Scaler {
	case ScalerDraw, ScalerMagick:
	default:
		return opts, core.InvalidConfig(KeyScaler, "unknown scaler %q, use %s or %s",
			opts.Scaler, ScalerDraw, ScalerMagick)
	}
	opts.Magick = get(KeyMagick)
	if opts.Scaler == ScalerMagick && opts.Magick == "" {
		return opts, core.InvalidConfig(KeyMagick, "magick scaler needs the path of convert")
	}
	if opts.OutDir = get(KeyOutDir); opts.OutDir == "" {
		opts.OutDir = "."
	}
	opts.Fonts = get(KeyFonts)
	if opts.Blob, err = boolean(KeyBlob, get(KeyBlob)); err != nil {
		return opts, err
	}
	if opts.Debug, err = boolean(KeyDebug, get(KeyDebug)); err != nil {
		return opts, err
	}
	tracer().Debugf("build options: %+v", opts)
	return opts, nil
}

func integer(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, core.InvalidConfig(key, "%q is not an integer", value)
	}
	return n, nil
}

func boolean(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, core.InvalidConfig(key, "%q is not a boolean", value)
	}
	return b, nil
}

// Keys returns the keys of a configuration in sorted order.
func Keys(conf testconfig.Conf) []string {
	keys := make([]string, 0, len(conf))
	for k := range conf {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
