/*
Command swiftglyph builds glyph atlases for real-time text rendering.

	swiftglyph build [flags] <font>
	swiftglyph inspect <blob> ...

build rasterizes the printable ASCII characters of a font into a square
texture and writes the texture, a metrics file and a font blob. <font> may be
a font file, the name of a packaged Go font (e.g. Go-Mono) or the name of an
installed font. Settings are read from a swiftglyph.yaml configuration file,
if present, and from flags, which take precedence.

inspect decodes font blobs and prints what they contain.

The exit code is 0 on success, otherwise the code of the first fatal error.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/logrusadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/core/config"
	"github.com/pterm/pterm"
)

// tracer traces with key 'swiftglyph.cli'
func tracer() tracing.Trace {
	return tracing.Select("swiftglyph.cli")
}

// tracerKeys are the tracers the -trace flag sets the level of.
var tracerKeys = []string{
	"swiftglyph.cli",
	"swiftglyph.atlas",
	"swiftglyph.blob",
	"swiftglyph.fonts",
	"swiftglyph.export",
	"swiftglyph.texture",
	"swiftglyph.exec",
	"swiftglyph.config",
	"swiftglyph.resources",
}

func main() {
	initDisplay()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// run executes a sub-command and returns the process exit code.
func run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		usage()
		return core.EMISSING
	}
	var err error
	switch args[0] {
	case "build":
		err = buildCommand(ctx, args[1:])
	case "inspect":
		err = inspectCommand(args[1:])
	case "help", "-h", "-help", "--help":
		usage()
		return 0
	default:
		usage()
		err = core.Error(core.EINVALID, "unknown command %q", args[0])
	}
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	pterm.Error.Println(core.UserMessage(err))
	return core.Code(err)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: swiftglyph build [flags] <font>")
	fmt.Fprintln(os.Stderr, "       swiftglyph inspect <blob> ...")
}

// setupTracing installs the trace adapters and sets trace levels from conf.
func setupTracing(conf testconfig.Conf) error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	tracing.RegisterTraceAdapter("logrus", logrusadapter.GetAdapter(), false)
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return core.WrapError(err, core.EINVALIDCONFIG, "cannot configure tracing")
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}

// loadConfiguration layers the defaults, a configuration file and the
// settings from flags. If path is empty, a configuration file is searched
// for at the usual places.
func loadConfiguration(path string, flags testconfig.Conf) (testconfig.Conf, error) {
	conf := config.Defaults()
	if path == "" {
		path = config.Locate()
	}
	if path != "" {
		file, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		config.Merge(conf, file)
	}
	return config.Merge(conf, flags), nil
}
