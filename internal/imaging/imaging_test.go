package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// TestSniff tests magic number classification.
func TestSniff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"jpeg prefix", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, FormatJPEG},
		{"png prefix", []byte("\x89PNG\r\n\x1a\n"), FormatPNG},
		{"png with only three bytes", []byte{0x89, 0x50, 0x4E}, FormatPNG},
		{"gif is unknown", []byte("GIF89a"), FormatUnknown},
		{"html is unknown", []byte("<html>"), FormatUnknown},
		{"two bytes of jpeg prefix", []byte{0xFF, 0xD8}, FormatUnknown},
		{"empty input", nil, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Sniff(tt.data); got != tt.want {
				t.Errorf("Sniff() = %s, expected %s", got, tt.want)
			}
		})
	}
}

// TestDecode tests decoding of supported and unsupported inputs.
func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("png decodes to rgba8", func(t *testing.T) {
		t.Parallel()

		src := newMarkedImage(30, 20)
		buf, err := Decode(encodePNG(t, src), FormatPNG)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertValid(t, buf, 30, 20)

		got := buf.Image().NRGBAAt(0, 0)
		if got != (color.NRGBA{R: 255, A: 255}) {
			t.Errorf("expected red marker at origin, got %v", got)
		}
	})

	t.Run("jpeg decodes to rgba8", func(t *testing.T) {
		t.Parallel()

		buf, err := Decode(encodeJPEG(t, newMarkedImage(64, 48)), FormatJPEG)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertValid(t, buf, 64, 48)
	})

	t.Run("grayscale png is converted", func(t *testing.T) {
		t.Parallel()

		gray := image.NewGray(image.Rect(0, 0, 7, 5))
		gray.SetGray(3, 2, color.Gray{Y: 200})
		buf, err := Decode(encodePNG(t, gray), FormatPNG)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertValid(t, buf, 7, 5)
		if got := buf.Image().NRGBAAt(3, 2); got != (color.NRGBA{R: 200, G: 200, B: 200, A: 255}) {
			t.Errorf("unexpected pixel %v", got)
		}
	})

	t.Run("unknown format is rejected without decoding", func(t *testing.T) {
		t.Parallel()

		_, err := Decode([]byte("GIF89a"), FormatUnknown)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("truncated png is unsupported", func(t *testing.T) {
		t.Parallel()

		data := encodePNG(t, newMarkedImage(10, 10))
		_, err := Decode(data[:len(data)/2], FormatPNG)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("jpeg magic with garbage is unsupported", func(t *testing.T) {
		t.Parallel()

		_, err := Decode([]byte{0xFF, 0xD8, 0xFF, 0x00, 0x01, 0x02}, FormatJPEG)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("oversized dimensions are rejected before decoding pixels", func(t *testing.T) {
		t.Parallel()

		_, err := Decode(pngHeader(10000, 10000), FormatPNG)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})
}

type panickingDecoder struct{}

func (panickingDecoder) DecodeConfig([]byte) (image.Config, error) {
	return image.Config{Width: 1, Height: 1}, nil
}

func (panickingDecoder) Decode([]byte) (image.Image, error) {
	panic("corrupt huffman table")
}

// TestDecodePanic tests that a crashing codec is contained.
func TestDecodePanic(t *testing.T) {
	t.Parallel()

	decoders := map[Format]Decoder{FormatPNG: panickingDecoder{}}
	buf, err := decodeWith(decoders, []byte("\x89PNG"), FormatPNG)
	if !errors.Is(err, ErrDecodePanic) {
		t.Errorf("expected ErrDecodePanic, got %v", err)
	}
	if buf != nil {
		t.Error("expected nil buffer after a panic")
	}
}

// TestPixelBufferValidate tests the buffer invariant.
func TestPixelBufferValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		buf     *PixelBuffer
		wantErr bool
	}{
		{"valid buffer", &PixelBuffer{Data: make([]byte, 2*3*4), Width: 2, Height: 3}, false},
		{"short data", &PixelBuffer{Data: make([]byte, 23), Width: 2, Height: 3}, true},
		{"long data", &PixelBuffer{Data: make([]byte, 25), Width: 2, Height: 3}, true},
		{"zero width", &PixelBuffer{Width: 0, Height: 3}, true},
		{"nil buffer", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.buf.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidBuffer) {
				t.Errorf("expected ErrInvalidBuffer, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// TestOrient tests the EXIF orientation transforms on a 3x2 image whose
// top-left pixel is red.
func TestOrient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		orientation int
		w, h        int
		markerX     int
		markerY     int
	}{
		{1, 3, 2, 0, 0},
		{2, 3, 2, 2, 0},
		{3, 3, 2, 2, 1},
		{4, 3, 2, 0, 1},
		{5, 2, 3, 0, 0},
		{6, 2, 3, 1, 0},
		{7, 2, 3, 1, 2},
		{8, 2, 3, 0, 2},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("orientation %d", tt.orientation), func(t *testing.T) {
			t.Parallel()

			dst := orient(newMarkedImage(3, 2), tt.orientation)
			if dst.Rect.Dx() != tt.w || dst.Rect.Dy() != tt.h {
				t.Fatalf("expected %dx%d, got %dx%d", tt.w, tt.h, dst.Rect.Dx(), dst.Rect.Dy())
			}
			if got := dst.NRGBAAt(tt.markerX, tt.markerY); got.R != 255 || got.G != 0 {
				t.Errorf("expected marker at (%d,%d), got %v", tt.markerX, tt.markerY, got)
			}
		})
	}
}

// TestDecodeEXIFRotated tests that a JPEG with orientation 6 is decoded upright.
func TestDecodeEXIFRotated(t *testing.T) {
	t.Parallel()

	data := withEXIFOrientation(encodeJPEG(t, newMarkedImage(40, 20)), 6)
	if got := exifOrientation(data); got != 6 {
		t.Fatalf("expected orientation 6, got %d", got)
	}

	buf, err := Decode(data, FormatJPEG)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertValid(t, buf, 20, 40)
}

// TestEXIFOrientationMissing tests that images without EXIF are left alone.
func TestEXIFOrientationMissing(t *testing.T) {
	t.Parallel()

	if got := exifOrientation(encodeJPEG(t, newMarkedImage(8, 8))); got != 1 {
		t.Errorf("expected orientation 1, got %d", got)
	}
	if got := exifOrientation([]byte("not an image")); got != 1 {
		t.Errorf("expected orientation 1, got %d", got)
	}
}

func assertValid(t *testing.T, buf *PixelBuffer, w, h int) {
	t.Helper()

	if err := buf.Validate(); err != nil {
		t.Fatalf("invalid buffer: %v", err)
	}
	if buf.Width != w || buf.Height != h {
		t.Errorf("expected %dx%d, got %dx%d", w, h, buf.Width, buf.Height)
	}
	if len(buf.Data) != w*h*4 {
		t.Errorf("expected %d bytes, got %d", w*h*4, len(buf.Data))
	}
}

// newMarkedImage returns a white image with a red pixel at the origin.
func newMarkedImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("jpeg encode failed: %v", err)
	}
	return buf.Bytes()
}

// pngHeader returns a PNG signature and IHDR chunk declaring w x h with no
// image data.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

// withEXIFOrientation inserts a minimal big-endian EXIF APP1 segment holding
// only the Orientation tag right after the JPEG SOI marker.
func withEXIFOrientation(jpg []byte, orientation uint16) []byte {
	var tiff bytes.Buffer
	tiff.WriteString("MM\x00\x2a")
	_ = binary.Write(&tiff, binary.BigEndian, uint32(8))      // IFD0 offset
	_ = binary.Write(&tiff, binary.BigEndian, uint16(1))      // entry count
	_ = binary.Write(&tiff, binary.BigEndian, uint16(0x0112)) // Orientation
	_ = binary.Write(&tiff, binary.BigEndian, uint16(3))      // SHORT
	_ = binary.Write(&tiff, binary.BigEndian, uint32(1))      // count
	_ = binary.Write(&tiff, binary.BigEndian, orientation)
	_ = binary.Write(&tiff, binary.BigEndian, uint16(0)) // padding
	_ = binary.Write(&tiff, binary.BigEndian, uint32(0)) // next IFD

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	var out bytes.Buffer
	out.Write(jpg[:2])
	out.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(jpg[2:])
	return out.Bytes()
}

// TestFormatText tests the text form used in reports and storage.
func TestFormatText(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{FormatUnknown, FormatJPEG, FormatPNG} {
		text, err := f.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText failed: %v", err)
		}
		var got Format
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText failed: %v", err)
		}
		if got != f {
			t.Errorf("expected %s, got %s", f, got)
		}
	}
	if ParseFormat("gif") != FormatUnknown {
		t.Error("expected gif to be unknown")
	}
}
