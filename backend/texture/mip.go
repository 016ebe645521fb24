package texture

import (
	"bufio"
	"context"
	"image"
	"io"
	"sort"

	"github.com/npillmayer/swiftglyph/core"
	"github.com/npillmayer/swiftglyph/engine/atlas"
)

// MipChainSize returns the byte size of a raw mip chain for a texture of
// the given width.
func MipChainSize(width int) int {
	n := 0
	for w := width; w >= 1; w /= 2 {
		n += 2 * w * w
	}
	return n
}

// WriteMipChain writes the raw intensity/alpha mip chain of img to w,
// largest level first. Levels below the full size are computed by s.
func WriteMipChain(ctx context.Context, w io.Writer, img *image.NRGBA, s Scaler) error {
	width := img.Bounds().Dx()
	if width != img.Bounds().Dy() || !atlas.IsPowerOfTwo(width) {
		return core.Error(core.EINVALID, "mip chain needs a square power-of-two texture, have %v",
			img.Bounds().Size())
	}
	bw := bufio.NewWriter(w)
	for size := width; size >= 1; size /= 2 {
		level := img
		if size < width {
			var err error
			if level, err = s.Scale(ctx, img, size); err != nil {
				return err
			}
		}
		writeIA(bw, level)
		tracer().Debugf("mip level %d×%d", size, size)
	}
	return bw.Flush()
}

// writeIA writes full intensity and the alpha of each texel.
func writeIA(w *bufio.Writer, img *image.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			w.WriteByte(0xff)
			w.WriteByte(row[4*x+3])
		}
	}
}

// MipChain is a raw mip chain split into its levels.
type MipChain struct {
	levels map[int][]byte // size → intensity/alpha pairs
}

// ReadMipChain splits a raw mip chain for a texture of the given width.
// It fails if data does not have exactly the size of such a chain.
func ReadMipChain(data []byte, width int) (*MipChain, error) {
	if !atlas.IsPowerOfTwo(width) {
		return nil, core.Error(core.EINVALID, "mip chain width %d is not a power of two", width)
	}
	if len(data) != MipChainSize(width) {
		return nil, core.Error(core.EINVALID, "mip chain for width %d has %d bytes, expected %d",
			width, len(data), MipChainSize(width))
	}
	mc := &MipChain{levels: make(map[int][]byte)}
	for size, at := width, 0; size >= 1; size /= 2 {
		n := 2 * size * size
		mc.levels[size] = data[at : at+n]
		at += n
	}
	return mc, nil
}

// Sizes returns the level sizes of the chain, largest first.
func (mc *MipChain) Sizes() []int {
	sizes := make([]int, 0, len(mc.levels))
	for s := range mc.levels {
		sizes = append(sizes, s)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	return sizes
}

// Level returns the intensity/alpha pairs of the level of a given size.
func (mc *MipChain) Level(size int) ([]byte, bool) {
	l, ok := mc.levels[size]
	return l, ok
}

// Alpha returns the level of a given size as an alpha image.
func (mc *MipChain) Alpha(size int) (*image.Alpha, bool) {
	l, ok := mc.levels[size]
	if !ok {
		return nil, false
	}
	img := image.NewAlpha(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = l[2*i+1]
	}
	return img, true
}
