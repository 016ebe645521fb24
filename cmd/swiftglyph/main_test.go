package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/swiftglyph/backend/texture"
	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/core/config"
	"github.com/npillmayer/swiftglyph/engine/fontbin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	path := filepath.Join(t.TempDir(), "swiftglyph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	return path
}

func TestBuildAndInspect(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.cli")
	defer teardown()
	//
	dir := t.TempDir()
	cfg := writeConfig(t, "width: 256\npadding: 2\nmetrics: lua\n")
	code := run(context.Background(), []string{"build", "-config", cfg, "-outdir", dir,
		"-metrics", "json", "Go-Mono"})
	require.Equal(t, 0, code)
	for _, name := range []string{"Go-Mono.json", "Go-Mono.sgb", "Go-Mono.raw"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.NoFileExists(t, filepath.Join(dir, "Go-Mono.lua"))
	fi, err := os.Stat(filepath.Join(dir, "Go-Mono.raw"))
	require.NoError(t, err)
	assert.Equal(t, int64(texture.MipChainSize(256)), fi.Size())
	f, err := fontbin.Load(filepath.Join(dir, "Go-Mono.sgb"))
	require.NoError(t, err)
	assert.Equal(t, 256, f.TextureWidth())
	assert.Equal(t, 2, f.Padding())
	assert.Equal(t, "Go-Mono.raw", f.TextureFile())
	//
	code = run(context.Background(), []string{"inspect", "-glyphs", filepath.Join(dir, "Go-Mono.sgb")})
	assert.Equal(t, 0, code)
}

func TestBuildDebugTexture(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.cli")
	defer teardown()
	//
	dir := t.TempDir()
	code := run(context.Background(), []string{"build", "-config", writeConfig(t, ""),
		"-outdir", dir, "-width", "128", "-texture", "png", "-blob=false", "-debug", "Go-Regular"})
	require.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(dir, "Go-Regular.png"))
	assert.FileExists(t, filepath.Join(dir, "Go-Regular.yaml"))
	assert.NoFileExists(t, filepath.Join(dir, "Go-Regular.sgb"))
	img, err := texture.ReadTGAFile(filepath.Join(dir, "Go-Regular-full.tga"))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestBuildInvalidConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.cli")
	defer teardown()
	//
	dir := filepath.Join(t.TempDir(), "out")
	cfg := writeConfig(t, "")
	code := run(context.Background(), []string{"build", "-config", cfg, "-outdir", dir, "-width", "384", "Go-Mono"})
	assert.Equal(t, core.EINVALIDCONFIG, code)
	code = run(context.Background(), []string{"build", "-config", cfg, "-outdir", dir, "-padding", "11", "Go-Mono"})
	assert.Equal(t, core.EINVALIDCONFIG, code)
	code = run(context.Background(), []string{"build", "-config", cfg, "-outdir", dir, "-texture", "dds", "Go-Mono"})
	assert.Equal(t, core.EINVALIDCONFIG, code)
	assert.NoDirExists(t, dir)
}

func TestBuildExternalToolFailure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.cli")
	defer teardown()
	//
	dir := t.TempDir()
	code := run(context.Background(), []string{"build", "-config", writeConfig(t, ""), "-outdir", dir,
		"-width", "128", "-scaler", "magick", "-magick", filepath.Join(dir, "no-convert"), "Go-Mono"})
	assert.Equal(t, core.EEXTERNALTOOL, code)
	assert.FileExists(t, filepath.Join(dir, "Go-Mono.yaml"))
	assert.FileExists(t, filepath.Join(dir, "Go-Mono.sgb"))
	assert.NoFileExists(t, filepath.Join(dir, "Go-Mono.raw"))
}

func TestBuildUnknownFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.cli")
	defer teardown()
	//
	code := run(context.Background(), []string{"build", "-config", writeConfig(t, ""),
		"-outdir", t.TempDir(), "No Such Font 4711"})
	assert.Equal(t, core.EFONTLOAD, code)
}

func TestInspectBadBlob(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.cli")
	defer teardown()
	//
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.sgb")
	require.NoError(t, os.WriteFile(bad, []byte("not a blob at all, really not"), 0644))
	code := run(context.Background(), []string{"inspect", bad, filepath.Join(dir, "missing.sgb")})
	assert.Equal(t, core.EBLOBFORMAT, code)
	code = run(context.Background(), []string{"inspect"})
	assert.Equal(t, core.EMISSING, code)
}

func TestCommands(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.cli")
	defer teardown()
	//
	assert.Equal(t, core.EMISSING, run(context.Background(), nil))
	assert.Equal(t, core.EINVALID, run(context.Background(), []string{"frobnicate"}))
	assert.Equal(t, 0, run(context.Background(), []string{"help"}))
	assert.Equal(t, core.EMISSING, run(context.Background(), []string{"build"}))
}

func TestFlagSettings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.cli")
	defer teardown()
	//
	fs := buildFlags()
	require.NoError(t, fs.Parse([]string{"-width", "256", "-flip", "-config", "x.yaml", "-trace", "Debug", "Go-Mono"}))
	conf := flagSettings(fs)
	assert.Equal(t, "256", conf[config.KeyWidth])
	assert.Equal(t, "true", conf[config.KeyFlip])
	assert.Equal(t, "Debug", conf["trace.swiftglyph.atlas"])
	_, ok := conf[config.KeyPadding]
	assert.False(t, ok, "unset flags must not override the configuration file")
	_, ok = conf["config"]
	assert.False(t, ok)
	assert.Len(t, conf, 2+len(tracerKeys))
}
