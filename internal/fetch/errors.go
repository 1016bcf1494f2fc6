package fetch

import "errors"

// Fetch errors.
var (
	// ErrUnavailable is returned when the resource could not be retrieved:
	// invalid URL or scheme, transport failure, non-2xx status or timeout.
	ErrUnavailable = errors.New("resource unavailable")

	// ErrSizeExceeded is returned when the declared or actual size of the
	// resource is larger than the configured maximum.
	ErrSizeExceeded = errors.New("resource size exceeds the allowed limit")

	// ErrBlockedAddress is returned when the destination resolves to a
	// private, loopback or link-local address. It is always wrapped
	// together with ErrUnavailable.
	ErrBlockedAddress = errors.New("destination address is not allowed")

	// ErrInvalidProxyAddress is returned when the SOCKS5 proxy address is
	// not in host:port format.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrInvalidConstraints is returned by Constraints.Validate.
	ErrInvalidConstraints = errors.New("invalid fetch constraints")
)
