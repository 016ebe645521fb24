package resources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/core/font"
	"github.com/npillmayer/swiftglyph/core/font/fontregistry"
	"github.com/npillmayer/swiftglyph/core/sysexec"
)

// NotFound returns an application error for a font which cannot be resolved.
func NotFound(name string) error {
	e := fmt.Errorf("resource missing: %v", name)
	return core.WrapError(e, core.EFONTLOAD, "font not found: %s", name)
}

// Resolver resolves font names to fonts, caching them in a registry.
type Resolver struct {
	Registry   *fontregistry.Registry
	FontConfig string         // path of fc-list, empty to skip fontconfig
	Runner     sysexec.Runner // runs fc-list, ExecRunner if nil
	fcMutex    sync.Mutex
	fcList     []fontregistry.Descriptor
}

// NewResolver creates a resolver storing fonts in registry reg. If reg is
// nil, the resolver gets a registry of its own.
func NewResolver(reg *fontregistry.Registry) *Resolver {
	if reg == nil {
		reg = fontregistry.NewRegistry()
	}
	return &Resolver{Registry: reg}
}

var defaultResolver = sync.OnceValue(func() *Resolver {
	return NewResolver(fontregistry.GlobalRegistry())
})

// ResolveFont resolves a font with the application-wide registry.
func ResolveFont(name string) FontPromise {
	return defaultResolver().ResolveFont(name)
}

// --- Promise ---------------------------------------------------------------

type fontPlusErr struct {
	font *font.ScalableFont
	err  error
}

// FontPromise is the result of an asynchronous font resolution.
type FontPromise interface {
	Font() (*font.ScalableFont, error)                           // wait for the font
	FontContext(ctx context.Context) (*font.ScalableFont, error) // wait, unless ctx is done
}

type fontLoader struct {
	await func(ctx context.Context) (*font.ScalableFont, error)
}

func (loader fontLoader) Font() (*font.ScalableFont, error) {
	return loader.await(context.Background())
}

func (loader fontLoader) FontContext(ctx context.Context) (*font.ScalableFont, error) {
	return loader.await(ctx)
}

// ResolveFont starts resolving a font name. name may be the path of a font
// file, the file name of a packaged Go font (with or without extension),
// or the name of a system font.
//
// Fonts which cannot be found are reported with code core.EFONTLOAD.
func (r *Resolver) ResolveFont(name string) FontPromise {
	ch := make(chan fontPlusErr, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func(ch chan<- fontPlusErr) {
		defer cancel()
		f, err := r.resolve(ctx, name)
		ch <- fontPlusErr{font: f, err: err}
		close(ch)
	}(ch)
	return fontLoader{
		await: func(waitCtx context.Context) (*font.ScalableFont, error) {
			select {
			case <-waitCtx.Done():
				cancel()
				return nil, waitCtx.Err()
			case res := <-ch:
				return res.font, res.err
			}
		},
	}
}

func (r *Resolver) resolve(ctx context.Context, name string) (*font.ScalableFont, error) {
	key := registryKey(name)
	if r.Registry.Contains(key) {
		return r.Registry.Font(key)
	}
	f, err := r.locate(ctx, name)
	if err != nil {
		return nil, err
	}
	r.Registry.StoreFont(key, f)
	return r.Registry.Font(key)
}

func (r *Resolver) locate(ctx context.Context, name string) (*font.ScalableFont, error) {
	if fi, err := os.Stat(name); err == nil && fi.Mode().IsRegular() {
		tracer().Debugf("%s is a font file", name)
		return font.LoadOpenTypeFont(name)
	}
	for _, p := range font.PackagedFonts() {
		if registryKey(p) == registryKey(name) {
			tracer().Debugf("found font as packaged font %s", p)
			return font.PackagedFont(p)
		}
	}
	if fpath, err := findfont.Find(name); err == nil && fpath != "" {
		tracer().Debugf("%s is a system font at %s", name, fpath)
		return font.LoadOpenTypeFont(fpath)
	}
	if r.FontConfig != "" {
		desc, err := r.findFontConfigFont(ctx, name)
		if err != nil {
			return nil, err
		}
		if desc.Path != "" {
			tracer().Debugf("fontconfig knows %s at %s", name, desc.Path)
			return font.LoadOpenTypeFont(desc.Path)
		}
	}
	return nil, NotFound(name)
}

func registryKey(name string) string {
	style, weight := fontregistry.GuessStyleAndWeight(name)
	return fontregistry.NormalizeFontname(filepath.Base(name), style, weight)
}
