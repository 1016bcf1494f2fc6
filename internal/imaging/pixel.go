package imaging

import (
	"fmt"
	"image"
)

// PixelBuffer is a decoded image as tightly packed, non-premultiplied RGBA8
// pixels in row-major order.
//
// A valid buffer satisfies len(Data) == Width*Height*4.
type PixelBuffer struct {
	Data   []byte
	Width  int
	Height int
}

// Validate checks the buffer invariant.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidBuffer, b.Width, b.Height)
	}
	if want := b.Width * b.Height * 4; len(b.Data) != want {
		return fmt.Errorf("%w: %d bytes for %dx%d, want %d",
			ErrInvalidBuffer, len(b.Data), b.Width, b.Height, want)
	}
	return nil
}

// Image returns an image.NRGBA view of the buffer. The pixels are shared,
// not copied. Callers must Validate the buffer first.
func (b *PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Data,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// fromNRGBA packs img into a PixelBuffer, copying rows when the stride is
// not tight.
func fromNRGBA(img *image.NRGBA) *PixelBuffer {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	rowLen := w * 4
	if img.Stride == rowLen && len(img.Pix) == rowLen*h {
		return &PixelBuffer{Data: img.Pix, Width: w, Height: h}
	}
	data := make([]byte, rowLen*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(data[y*rowLen:(y+1)*rowLen], img.Pix[off:off+rowLen])
	}
	return &PixelBuffer{Data: data, Width: w, Height: h}
}
