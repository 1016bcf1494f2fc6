// Package outcome defines the error taxonomy of qrreader and the mapping
// from a pipeline's terminal state to the payload returned to callers.
//
// # Taxonomy
//
// Every failure of a read is reported as one of a fixed set of kinds, each
// with a stable numeric code:
//
//	Exception          0     something went wrong
//	Unavailable        1001  the resource could not be downloaded
//	UnsupportedFormat  1002  the bytes are not a decodable JPEG or PNG
//	SizeExceeded       1003  the resource is larger than the configured limit
//	ParseError         2001  the image decoded but holds no readable QR code
//
// The table is constructed at compile time and never mutated. Catalog returns
// a copy for documentation endpoints.
//
// # Mapping
//
// Map and HTTPStatus are pure functions. The HTTP layer calls them to build
// the JSON body and status code; nothing in this package performs I/O.
package outcome
