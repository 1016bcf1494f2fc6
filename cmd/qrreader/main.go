// Package main provides the entry point for the qrreader CLI.
//
// qrreader downloads an image from a URL and decodes the QR code in it.
// It runs either as an HTTP service or as a one-shot command.
//
// Usage:
//
//	qrreader serve
//	qrreader read <image-url>...
//
// See --help for all available options.
package main

func main() {
	Execute()
}
