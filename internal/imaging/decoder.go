package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// MaxPixels is the largest image, in pixels, that Decode accepts.
// Dimensions are read from the header before any pixel data is decoded.
const MaxPixels = 40_000_000

// Decoder decodes one container format.
type Decoder interface {
	// DecodeConfig returns the image dimensions without decoding pixels.
	DecodeConfig(data []byte) (image.Config, error)

	// Decode decodes the full image.
	Decode(data []byte) (image.Image, error)
}

// registry maps each supported format to its decoder. It is never modified
// after initialization.
var registry = map[Format]Decoder{
	FormatJPEG: jpegDecoder{},
	FormatPNG:  pngDecoder{},
}

// Decode decodes data of format f into a PixelBuffer.
//
// FormatUnknown fails with ErrUnsupportedFormat without attempting a decode.
// Codec errors are reported as ErrUnsupportedFormat; a codec panic is
// reported as ErrDecodePanic.
func Decode(data []byte, f Format) (*PixelBuffer, error) {
	return decodeWith(registry, data, f)
}

func decodeWith(decoders map[Format]Decoder, data []byte, f Format) (buf *PixelBuffer, err error) {
	d, ok := decoders[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}

	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: %s: %v", ErrDecodePanic, f, r)
		}
	}()

	cfg, err := d.DecodeConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, err.Error())
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrUnsupportedFormat, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels",
			ErrUnsupportedFormat, cfg.Width, cfg.Height, MaxPixels)
	}

	img, err := d.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, err.Error())
	}

	nrgba := toNRGBA(img)
	if o, ok := d.(orienter); ok {
		nrgba = orient(nrgba, o.Orientation(data))
	}
	return fromNRGBA(nrgba), nil
}

// toNRGBA converts any image to non-premultiplied RGBA8 anchored at (0,0).
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	return dst
}

type jpegDecoder struct{}

func (jpegDecoder) DecodeConfig(data []byte) (image.Config, error) {
	return jpeg.DecodeConfig(bytes.NewReader(data))
}

func (jpegDecoder) Decode(data []byte) (image.Image, error) {
	return jpeg.Decode(bytes.NewReader(data))
}

func (jpegDecoder) Orientation(data []byte) int {
	return exifOrientation(data)
}

type pngDecoder struct{}

func (pngDecoder) DecodeConfig(data []byte) (image.Config, error) {
	return png.DecodeConfig(bytes.NewReader(data))
}

func (pngDecoder) Decode(data []byte) (image.Image, error) {
	return png.Decode(bytes.NewReader(data))
}
