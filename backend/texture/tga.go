package texture

import (
	"bufio"
	"encoding/binary"
	"errors"
	"image"
	"io"

	"github.com/npillmayer/swiftglyph/core"
)

// ErrTGA is wrapped by all errors reading Targa images.
var ErrTGA = errors.New("unsupported or malformed TGA image")

const tgaHeaderSize = 18

// Targa image types
const (
	tgaTrueColor = 2
	tgaGrayscale = 3
)

// image descriptor bit for top-left origin
const tgaTopLeft = 0x20

// EncodeTGA writes img as an uncompressed 32-bit BGRA Targa image with
// top-left origin.
func EncodeTGA(w io.Writer, img *image.NRGBA) error {
	b := img.Bounds()
	if b.Dx() > 0xffff || b.Dy() > 0xffff {
		return core.Error(core.EINVALID, "image of %v too large for TGA", b.Size())
	}
	var h [tgaHeaderSize]byte
	h[2] = tgaTrueColor
	binary.LittleEndian.PutUint16(h[12:], uint16(b.Dx()))
	binary.LittleEndian.PutUint16(h[14:], uint16(b.Dy()))
	h[16] = 32
	h[17] = tgaTopLeft | 8
	bw := bufio.NewWriter(w)
	bw.Write(h[:])
	row := make([]byte, 4*b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			row[4*x+0] = src[4*x+2]
			row[4*x+1] = src[4*x+1]
			row[4*x+2] = src[4*x+0]
			row[4*x+3] = src[4*x+3]
		}
		bw.Write(row)
	}
	return bw.Flush()
}

// DecodeTGA reads an uncompressed Targa image. True-color images of 24 or
// 32 bits and grayscale images of 8 or 16 bits are supported, with either
// origin.
func DecodeTGA(r io.Reader) (*image.NRGBA, error) {
	var h [tgaHeaderSize]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return nil, tgaError("cannot read header: %v", err)
	}
	if h[1] != 0 {
		return nil, tgaError("color-mapped images are not supported")
	}
	typ, depth := h[2], int(h[16])
	switch {
	case typ == tgaTrueColor && (depth == 24 || depth == 32):
	case typ == tgaGrayscale && (depth == 8 || depth == 16):
	default:
		return nil, tgaError("image type %d with %d bits per pixel is not supported", typ, depth)
	}
	width := int(binary.LittleEndian.Uint16(h[12:]))
	height := int(binary.LittleEndian.Uint16(h[14:]))
	topLeft := h[17]&tgaTopLeft != 0
	if _, err := io.CopyN(io.Discard, r, int64(h[0])); err != nil { // image id
		return nil, tgaError("cannot skip image id: %v", err)
	}
	n := depth / 8
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	row := make([]byte, n*width)
	for i := 0; i < height; i++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return nil, tgaError("truncated image data: %v", err)
		}
		y := height - 1 - i
		if topLeft {
			y = i
		}
		dst := img.Pix[img.PixOffset(0, y):]
		for x := 0; x < width; x++ {
			p, q := row[n*x:n*x+n], dst[4*x:4*x+4]
			switch n {
			case 1:
				q[0], q[1], q[2], q[3] = p[0], p[0], p[0], 0xff
			case 2:
				q[0], q[1], q[2], q[3] = p[0], p[0], p[0], p[1]
			case 3:
				q[0], q[1], q[2], q[3] = p[2], p[1], p[0], 0xff
			case 4:
				q[0], q[1], q[2], q[3] = p[2], p[1], p[0], p[3]
			}
		}
	}
	return img, nil
}

func tgaError(format string, v ...interface{}) error {
	return core.WrapError(ErrTGA, core.EINVALID, format, v...)
}
