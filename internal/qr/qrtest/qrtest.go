// Package qrtest generates QR image fixtures for tests.
package qrtest

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Size is the edge length, in pixels, of generated symbols.
const Size = 256

// Symbol returns a QR symbol encoding text as an image.
func Symbol(tb testing.TB, text string) image.Image {
	tb.Helper()

	m, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, Size, Size, nil)
	if err != nil {
		tb.Fatalf("failed to encode QR symbol: %v", err)
	}

	img := image.NewGray(image.Rect(0, 0, m.GetWidth(), m.GetHeight()))
	for y := 0; y < m.GetHeight(); y++ {
		for x := 0; x < m.GetWidth(); x++ {
			if m.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 0xFF})
			}
		}
	}
	return img
}

// PNG returns a PNG file holding a QR symbol that encodes text.
func PNG(tb testing.TB, text string) []byte {
	tb.Helper()
	return EncodePNG(tb, Symbol(tb, text))
}

// JPEG returns a JPEG file holding a QR symbol that encodes text.
func JPEG(tb testing.TB, text string) []byte {
	tb.Helper()
	return EncodeJPEG(tb, Symbol(tb, text))
}

// InvertedPNG returns a PNG file with a light-on-dark QR symbol.
func InvertedPNG(tb testing.TB, text string) []byte {
	tb.Helper()

	src := Symbol(tb, text)
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(src.At(x, y)).(color.Gray)
			dst.SetGray(x, y, color.Gray{Y: 255 - g.Y})
		}
	}
	return EncodePNG(tb, dst)
}

// BlankPNG returns a well-formed white PNG without any symbol.
func BlankPNG(tb testing.TB, w, h int) []byte {
	tb.Helper()

	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return EncodePNG(tb, img)
}

// EncodePNG encodes img as PNG.
func EncodePNG(tb testing.TB, img image.Image) []byte {
	tb.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		tb.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

// EncodeJPEG encodes img as JPEG at quality 95.
func EncodeJPEG(tb testing.TB, img image.Image) []byte {
	tb.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		tb.Fatalf("jpeg encode failed: %v", err)
	}
	return buf.Bytes()
}
