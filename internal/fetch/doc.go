// Package fetch retrieves a remote resource under a size and time budget.
//
// A Fetcher performs exactly one GET per call and never retries. The body is
// read through a hard cap so that a server which lies about (or omits) its
// Content-Length cannot make the process buffer more than MaxBytes+1 bytes.
//
// Failures are reported as one of two sentinels, ErrUnavailable and
// ErrSizeExceeded, matched with errors.Is. Destinations on private, loopback
// or link-local networks are refused with ErrBlockedAddress, which also
// matches ErrUnavailable, unless the Fetcher was built with
// WithAllowPrivateNetworks.
//
// Connections can be routed through a SOCKS5 proxy (for example a local Tor
// daemon) with WithProxy.
package fetch
