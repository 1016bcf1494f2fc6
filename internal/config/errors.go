package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and Config.ValidateRead()
// so callers can use errors.Is() while still printing a readable message.
var (
	// ErrNoTarget is returned when the read command is given no URL.
	ErrNoTarget = errors.New("no target specified: provide at least one image URL")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid request timeout: must be positive")

	// ErrInvalidProcessTimeout is returned when the process timeout is shorter
	// than the request timeout.
	ErrInvalidProcessTimeout = errors.New("invalid process timeout: must be at least the request timeout")

	// ErrInvalidConcurrency is returned when the batch concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxImageBytes is returned when the image size limit is not positive.
	ErrInvalidMaxImageBytes = errors.New("invalid max image bytes: must be positive")

	// ErrInvalidRateLimit is returned when the rate limit or burst is negative,
	// or when a positive rate is configured with a zero burst.
	ErrInvalidRateLimit = errors.New("invalid rate limit: rate and burst must be non-negative, burst positive when rate is set")

	// ErrEmptyListenAddress is returned when the server listen address is empty.
	ErrEmptyListenAddress = errors.New("invalid listen address: must not be empty")
)
