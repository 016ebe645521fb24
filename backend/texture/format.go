package texture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/npillmayer/swiftglyph/core"
)

// Format is a texture file format.
type Format int

// Supported formats.
const (
	Raw Format = iota // mip chain of intensity/alpha pairs
	TGA
	PNG
)

var formatNames = [...]string{"raw", "tga", "png"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// Extension returns the file name extension for f, including the dot.
func (f Format) Extension() string {
	return "." + f.String()
}

// ParseFormat maps a format name to a Format. The empty string selects Raw.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "raw":
		return Raw, nil
	case "tga":
		return TGA, nil
	case "png":
		return PNG, nil
	}
	return Raw, core.InvalidConfig("texture", "unknown texture format %q", s)
}

// Convert writes img to w in format f. s is used for the mip levels of raw
// textures only.
func Convert(ctx context.Context, w io.Writer, img *image.NRGBA, f Format, s Scaler) error {
	switch f {
	case Raw:
		return WriteMipChain(ctx, w, img, s)
	case TGA:
		return EncodeTGA(w, img)
	case PNG:
		return png.Encode(w, img)
	}
	return core.Error(core.EINVALIDCONFIG, "unknown texture format %v", f)
}

// WriteFile converts img and writes it to a file. On failure no partial
// file is left behind.
func WriteFile(ctx context.Context, path string, img *image.NRGBA, f Format, s Scaler) error {
	out, err := os.Create(path)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot create texture file %s", path)
	}
	err = Convert(ctx, out, img, f, s)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		if app := core.AppError(nil); errors.As(err, &app) {
			return err
		}
		return core.WrapError(err, core.EINVALID, "cannot write texture file %s", path)
	}
	tracer().Infof("wrote %v texture to %s", f, path)
	return nil
}
