// Package qr locates and decodes a QR symbol in a decoded image.
//
// Symbol recognition itself is delegated to gozxing, a Go port of ZXing.
// This package only adapts an imaging.PixelBuffer to the library's bitmap
// type and reports the result as a Result value. Not finding a symbol is a
// normal result, not an error.
package qr
