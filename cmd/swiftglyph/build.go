package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/swiftglyph/backend/texture"
	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/core/config"
	"github.com/npillmayer/swiftglyph/core/font"
	"github.com/npillmayer/swiftglyph/core/font/fontregistry"
	"github.com/npillmayer/swiftglyph/core/locate/resources"
	"github.com/npillmayer/swiftglyph/core/sysexec"
	"github.com/npillmayer/swiftglyph/engine/atlas"
	"github.com/npillmayer/swiftglyph/engine/export"
	"github.com/npillmayer/swiftglyph/engine/fontbin"
	"github.com/pterm/pterm"
)

// buildFlags creates the flag set of the build command. Flags carry the
// names of configuration keys.
func buildFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.String("config", "", "Configuration file (default: search for swiftglyph.yaml)")
	fs.String("trace", "", "Trace level [Debug|Info|Error]")
	fs.Int(config.KeyWidth, 512, "Texture width, a power of two")
	fs.Int(config.KeyPadding, 1, "Padding around each cell, in texels")
	fs.Bool(config.KeyFlip, false, "Texture v coordinates grow downwards")
	fs.String(config.KeyMetrics, "yaml", "Metrics format [yaml|lua|json]")
	fs.String(config.KeyTexture, "raw", "Texture format [raw|tga|png]")
	fs.String(config.KeyOverflow, "clip", "Oversized glyphs [clip|reject]")
	fs.String(config.KeyScaler, config.ScalerDraw, "Mip level scaler [draw|magick]")
	fs.String(config.KeyMagick, "convert", "ImageMagick convert binary")
	fs.String(config.KeyFonts, "", "fontconfig fc-list binary for font lookup")
	fs.String(config.KeyOutDir, ".", "Output directory")
	fs.Bool(config.KeyBlob, true, "Write a font blob")
	fs.Bool(config.KeyDebug, false, "Keep the full-size texture as TGA")
	return fs
}

// flagSettings collects the flags set on the command line as configuration
// entries.
func flagSettings(fs *flag.FlagSet) testconfig.Conf {
	conf := testconfig.Conf{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "config":
		case "trace":
			for _, key := range tracerKeys {
				conf["trace."+key] = f.Value.String()
			}
		default:
			conf[f.Name] = f.Value.String()
		}
	})
	return conf
}

func buildCommand(ctx context.Context, args []string) error {
	fs := buildFlags()
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return err
		}
		return core.WrapError(err, core.EINVALIDCONFIG, "%v", err)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return core.Error(core.EMISSING, "build needs exactly one font")
	}
	conf, err := loadConfiguration(fs.Lookup("config").Value.String(), flagSettings(fs))
	if err != nil {
		return err
	}
	if err = setupTracing(conf); err != nil {
		return err
	}
	opts, err := config.FromConfiguration(conf)
	if err != nil {
		return err
	}
	return build(ctx, fs.Arg(0), opts)
}

// outputs are the files a build writes.
type outputs struct {
	metrics, blob, texture, debug string
}

func outputNames(fontfile string, opts config.Options) outputs {
	stem := strings.TrimSuffix(filepath.Base(fontfile), filepath.Ext(fontfile))
	out := func(ext string) string {
		return filepath.Join(opts.OutDir, stem+ext)
	}
	return outputs{
		metrics: out(opts.Metrics.Extension()),
		blob:    out(".sgb"),
		texture: out(opts.Texture.Extension()),
		debug:   out("-full.tga"),
	}
}

// build runs the atlas build for a font. Metrics and blob are written even
// if the texture export fails.
func build(ctx context.Context, fontname string, opts config.Options) error {
	resolver := resources.NewResolver(fontregistry.GlobalRegistry())
	resolver.FontConfig = opts.Fonts
	sf, err := resolver.ResolveFont(fontname).FontContext(ctx)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("building atlas for %s", sf.Fontname)
	a, err := atlas.Build(font.NewFace(sf), opts.Atlas)
	if err != nil {
		return err
	}
	for _, o := range a.Overflows {
		pterm.Warning.Printfln("clipped: %v", o)
	}
	if err = os.MkdirAll(opts.OutDir, 0755); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot create output directory %s", opts.OutDir)
	}
	out := outputNames(sf.Filepath, opts)
	if err = export.WriteFile(out.metrics, a, opts.Metrics); err != nil {
		return err
	}
	pterm.Info.Printfln("metrics written to %s", out.metrics)
	if opts.Blob {
		if err = fontbin.WriteFile(out.blob, a, filepath.Base(out.texture)); err != nil {
			return err
		}
		pterm.Info.Printfln("font blob written to %s", out.blob)
	}
	img := texture.FromAtlas(a.Texture)
	if opts.Debug {
		if err = texture.WriteTGAFile(out.debug, img); err != nil {
			return err
		}
		pterm.Info.Printfln("full-size texture kept as %s", out.debug)
	}
	if err = texture.WriteFile(ctx, out.texture, img, opts.Texture, scaler(opts)); err != nil {
		if core.Is(err, core.EEXTERNALTOOL) {
			pterm.Warning.Printfln("no texture written, %s is kept", out.metrics)
		}
		return err
	}
	pterm.Info.Printfln("texture written to %s", out.texture)
	return nil
}

func scaler(opts config.Options) texture.Scaler {
	if opts.Scaler == config.ScalerMagick {
		return texture.MagickScaler{Runner: sysexec.ExecRunner{}, Convert: opts.Magick}
	}
	return texture.DrawScaler{}
}
