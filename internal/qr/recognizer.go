package qr

import (
	"errors"
	"fmt"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/nao1215/qrreader/internal/imaging"
)

// ErrContractViolation is returned when the recognizer is handed a buffer
// that breaks the PixelBuffer invariant, or the bitmap could not be built.
var ErrContractViolation = errors.New("recognizer contract violation")

// Result is the outcome of one recognition attempt.
type Result struct {
	// Text is the decoded payload. It is empty when Found is false.
	Text string

	// Found reports whether a symbol was located and decoded.
	Found bool
}

// Recognizer finds and decodes a QR symbol in a pixel buffer.
// Implementations must be deterministic for a given buffer.
type Recognizer interface {
	Recognize(buf *imaging.PixelBuffer) (Result, error)
}

// ZXing is a Recognizer backed by gozxing's QR reader.
// The zero value is ready to use and safe for concurrent use.
type ZXing struct {
	// NoInvert disables the second pass on inverted luminance that finds
	// light-on-dark symbols.
	NoInvert bool
}

var _ Recognizer = ZXing{}

// NewZXing returns a ZXing recognizer with inverted-symbol detection enabled.
func NewZXing() ZXing {
	return ZXing{}
}

// Recognize implements Recognizer.
func (z ZXing) Recognize(buf *imaging.PixelBuffer) (Result, error) {
	if err := buf.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrContractViolation, err)
	}

	src := gozxing.NewLuminanceSourceFromImage(buf.Image())

	text, found, err := decode(src)
	if err != nil {
		return Result{}, err
	}
	if found || z.NoInvert {
		return Result{Text: text, Found: found}, nil
	}

	text, found, err = decode(src.Invert())
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Found: found}, nil
}

// decode runs one reader pass. Any reader error means no symbol was found.
func decode(src gozxing.LuminanceSource) (string, bool, error) {
	bmp, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(src))
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrContractViolation, err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	res, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", false, nil
	}
	return res.GetText(), true, nil
}
