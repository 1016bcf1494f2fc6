package outcome

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies a failure class of a read.
type Kind int

const (
	// KindException covers every failure not classified below: decoder
	// crashes, an abandoned request, internal contract violations.
	KindException Kind = iota

	// KindUnavailable means the resource could not be retrieved: transport
	// error, non-2xx status, blocked destination or fetch timeout.
	KindUnavailable

	// KindUnsupportedFormat means the bytes are not a recognized or
	// decodable image container.
	KindUnsupportedFormat

	// KindSizeExceeded means the declared or actual size is over the limit.
	KindSizeExceeded

	// KindParseError means the image decoded but no QR symbol was found.
	KindParseError
)

// Entry is one row of the error catalog.
type Entry struct {
	Kind        Kind   `json:"-"`
	Name        string `json:"name"`
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// catalog is indexed by Kind. It is an array rather than a map so that it
// cannot be modified through any exported accessor.
var catalog = [...]Entry{
	KindException: {
		Kind:        KindException,
		Name:        "Exception",
		Code:        0,
		Description: "something went wrong",
	},
	KindUnavailable: {
		Kind:        KindUnavailable,
		Name:        "Unavailable",
		Code:        1001,
		Description: "unable to download an file from given URL",
	},
	KindUnsupportedFormat: {
		Kind:        KindUnsupportedFormat,
		Name:        "UnsupportedFormat",
		Code:        1002,
		Description: "unsupported image format or not an image",
	},
	KindSizeExceeded: {
		Kind:        KindSizeExceeded,
		Name:        "SizeExceeded",
		Code:        1003,
		Description: "image file size exceeds the allowed limit",
	},
	KindParseError: {
		Kind:        KindParseError,
		Name:        "ParseError",
		Code:        2001,
		Description: "failed to read QR code",
	},
}

// entry returns the catalog row for k. Unknown kinds fall back to Exception.
func (k Kind) entry() Entry {
	if k < 0 || int(k) >= len(catalog) {
		return catalog[KindException]
	}
	return catalog[k]
}

// String returns the kind name, e.g. "SizeExceeded".
func (k Kind) String() string {
	return k.entry().Name
}

// Code returns the stable numeric error code of the kind.
func (k Kind) Code() int {
	return k.entry().Code
}

// Description returns the human-readable description of the kind.
// An empty description falls back to the kind name.
func (k Kind) Description() string {
	e := k.entry()
	if e.Description == "" {
		return e.Name
	}
	return e.Description
}

// Catalog returns every taxonomy entry ordered by code.
// The returned slice is a copy; callers may modify it freely.
func Catalog() []Entry {
	entries := make([]Entry, len(catalog))
	copy(entries, catalog[:])
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Code < entries[j].Code
	})
	return entries
}

// Descriptions returns the catalog as a map from the decimal code to its
// description, the payload of the errors endpoint. An entry without a
// description falls back to the kind name.
func Descriptions() map[string]string {
	m := make(map[string]string, len(catalog))
	for _, e := range catalog {
		desc := e.Description
		if desc == "" {
			desc = e.Name
		}
		m[strconv.Itoa(e.Code)] = desc
	}
	return m
}

// KindFromCode returns the kind registered under code.
// The second return value is false if no kind uses that code.
func KindFromCode(code int) (Kind, bool) {
	for _, e := range catalog {
		if e.Code == code {
			return e.Kind, true
		}
	}
	return KindException, false
}

// Error is a stage failure already classified into a Kind.
// Pipeline steps return it so that no raw internal error reaches the mapper.
type Error struct {
	Kind Kind
	Err  error
}

// Wrap classifies err as kind. A nil err still yields a non-nil *Error.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind carried by err. Errors that were never classified
// are reported as KindException; a nil error has no kind and also yields
// KindException, so callers must check for nil first.
func KindOf(err error) Kind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindException
}
