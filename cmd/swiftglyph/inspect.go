package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"github.com/npillmayer/swiftglyph/backend/texture"
	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/core/blob"
	"github.com/npillmayer/swiftglyph/engine/fontbin"
	"github.com/pterm/pterm"
	"golang.org/x/text/unicode/runenames"
)

// inspectCommand decodes font blobs and prints their content. A broken
// blob is reported and skipped; the first error is returned after all blobs
// have been inspected.
func inspectCommand(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	glyphs := fs.Bool("glyphs", false, "List the glyphs of each blob")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return err
		}
		return core.WrapError(err, core.EINVALID, "%v", err)
	}
	if fs.NArg() == 0 {
		return core.Error(core.EMISSING, "inspect needs at least one font blob")
	}
	var first error
	for _, path := range fs.Args() {
		if err := inspect(path, *glyphs); err != nil {
			pterm.Error.Printfln("%s: %s", path, core.UserMessage(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func inspect(path string, listGlyphs bool) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return core.WrapError(err, core.EMISSING, "cannot read font blob")
	}
	h, err := blob.Inspect(buf)
	if err != nil {
		return err
	}
	f, err := fontbin.Decode(buf)
	if err != nil {
		return err
	}
	tex, texErr := checkTexture(filepath.Dir(path), f)
	data := pterm.TableData{
		{"blob", path},
		{"version", strconv.Itoa(h.Version)},
		{"word size", strconv.Itoa(h.WordSize)},
		{"pointer slots", strconv.Itoa(h.SlotCount)},
		{"font", f.Name()},
		{"texture", tex},
		{"texture width", strconv.Itoa(f.TextureWidth())},
		{"padding", strconv.Itoa(f.Padding())},
		{"columns", strconv.Itoa(f.Columns())},
		{"vertical flip", strconv.FormatBool(f.VerticalFlip())},
		{"glyphs", strconv.Itoa(f.GlyphCount())},
		{"kerning pairs", strconv.Itoa(f.KerningCount())},
	}
	if err = pterm.DefaultTable.WithData(data).Render(); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot print table")
	}
	if listGlyphs {
		printGlyphs(f)
	}
	return texErr
}

func printGlyphs(f *fontbin.Font) {
	data := pterm.TableData{{"code", "name", "index", "advance", "kerning"}}
	for i := 0; i < f.GlyphCount(); i++ {
		g := f.Glyph(i)
		data = append(data, []string{
			fmt.Sprintf("U+%04X", g.Code),
			runenames.Name(g.Code),
			strconv.Itoa(int(g.GlyphID)),
			g.Advance.String(),
			strconv.Itoa(len(f.KerningRun(i))),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		tracer().Errorf("cannot print glyph table: %v", err)
	}
}

// checkTexture verifies that the texture file named in a font blob matches
// the blob's texture width. A missing texture file is not an error.
func checkTexture(dir string, f *fontbin.Font) (string, error) {
	if f.TextureFile() == "" {
		return "(none)", nil
	}
	path := filepath.Join(dir, f.TextureFile())
	fi, err := os.Stat(path)
	if err != nil {
		return f.TextureFile() + " (not found)", nil
	}
	width := f.TextureWidth()
	switch filepath.Ext(path) {
	case texture.Raw.Extension():
		if want := texture.MipChainSize(width); fi.Size() != int64(want) {
			return f.TextureFile() + " (bad size)", core.Error(core.EINVALID,
				"mip chain %s has %d bytes, expected %d", path, fi.Size(), want)
		}
	case texture.TGA.Extension():
		img, err := texture.ReadTGAFile(path)
		if err != nil {
			return f.TextureFile() + " (unreadable)", err
		}
		if img.Bounds().Dx() != width || img.Bounds().Dy() != width {
			return f.TextureFile() + " (bad size)", core.Error(core.EINVALID,
				"texture %s is %v, expected %d×%d", path, img.Bounds().Size(), width, width)
		}
	case texture.PNG.Extension():
		pf, err := os.Open(path)
		if err != nil {
			return f.TextureFile() + " (unreadable)", core.WrapError(err, core.EMISSING, "cannot open %s", path)
		}
		defer pf.Close()
		cfg, err := png.DecodeConfig(pf)
		if err != nil {
			return f.TextureFile() + " (unreadable)", core.WrapError(err, core.EINVALID, "cannot read %s", path)
		}
		if cfg.Width != width || cfg.Height != width {
			return f.TextureFile() + " (bad size)", core.Error(core.EINVALID,
				"texture %s is %d×%d, expected %d×%d", path, cfg.Width, cfg.Height, width, width)
		}
	}
	return f.TextureFile() + " (ok)", nil
}
