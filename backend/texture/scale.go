package texture

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/core/sysexec"
	"golang.org/x/image/draw"
)

// FromAtlas creates the texture image of an atlas: white texels, with the
// glyph coverage as alpha.
func FromAtlas(coverage *image.Alpha) *image.NRGBA {
	b := coverage.Bounds()
	img := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		src := coverage.Pix[coverage.PixOffset(b.Min.X, y):]
		dst := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			dst[4*x+0], dst[4*x+1], dst[4*x+2] = 0xff, 0xff, 0xff
			dst[4*x+3] = src[x]
		}
	}
	return img
}

// Scaler resamples a square texture to size × size texels.
type Scaler interface {
	Scale(ctx context.Context, img *image.NRGBA, size int) (*image.NRGBA, error)
}

// DrawScaler resamples in-process. The zero value uses bi-linear
// interpolation.
type DrawScaler struct {
	Interpolator draw.Interpolator
}

// Scale is part of interface Scaler.
func (s DrawScaler) Scale(ctx context.Context, img *image.NRGBA, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, core.Error(core.EINVALID, "cannot scale texture to size %d", size)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	if img.Bounds().Size() == dst.Bounds().Size() {
		draw.Copy(dst, image.Point{}, img, img.Bounds(), draw.Src, nil)
		return dst, nil
	}
	ip := s.Interpolator
	if ip == nil {
		ip = draw.BiLinear
	}
	ip.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}

// MagickScaler resamples by calling ImageMagick's convert with option
// -scale, exchanging images as TGA files in a temporary directory.
type MagickScaler struct {
	Runner  sysexec.Runner
	Convert string // path of the convert binary
	TempDir string // parent of temporary directories, os.TempDir if empty
}

// Scale is part of interface Scaler. Failures of convert are reported with
// code core.EEXTERNALTOOL.
func (s MagickScaler) Scale(ctx context.Context, img *image.NRGBA, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, core.Error(core.EINVALID, "cannot scale texture to size %d", size)
	}
	convert, err := sysexec.LookPath(s.Convert)
	if err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp(s.TempDir, "swiftglyph-")
	if err != nil {
		return nil, core.WrapError(err, core.EEXTERNALTOOL, "cannot create temporary directory")
	}
	defer os.RemoveAll(dir)
	in, out := filepath.Join(dir, "level.tga"), filepath.Join(dir, "scaled.tga")
	if err = WriteTGAFile(in, img); err != nil {
		return nil, err
	}
	runner := s.Runner
	if runner == nil {
		runner = sysexec.ExecRunner{}
	}
	geometry := strconv.Itoa(size) + "x" + strconv.Itoa(size) + "!"
	if _, err = sysexec.RunChecked(ctx, runner, convert, in, "-scale", geometry, out); err != nil {
		return nil, err
	}
	scaled, err := ReadTGAFile(out)
	if err != nil {
		return nil, core.WrapError(err, core.EEXTERNALTOOL, "convert produced an unreadable image")
	}
	if scaled.Bounds().Dx() != size || scaled.Bounds().Dy() != size {
		return nil, core.Error(core.EEXTERNALTOOL, "convert produced image of %v, expected %d×%d",
			scaled.Bounds().Size(), size, size)
	}
	return scaled, nil
}

// WriteTGAFile writes img to a Targa file.
func WriteTGAFile(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot create %s", path)
	}
	if err = EncodeTGA(f, img); err != nil {
		f.Close()
		return core.WrapError(err, core.EINVALID, "cannot write %s", path)
	}
	return f.Close()
}

// ReadTGAFile reads a Targa file.
func ReadTGAFile(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot open %s", path)
	}
	defer f.Close()
	return DecodeTGA(f)
}
