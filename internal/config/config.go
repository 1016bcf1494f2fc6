package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/qrreader/internal/fetch"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "qrreader"

	// DefaultListenAddress is where `qrreader serve` listens.
	DefaultListenAddress = ":8080"

	// DefaultMaxImageBytes is the largest image that will be downloaded.
	// Responses above 1 MiB are rejected with SizeExceeded.
	DefaultMaxImageBytes = 1 << 20

	// DefaultRequestTimeout bounds the single GET of an image, from dial to
	// the last body byte.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultProcessTimeout bounds a whole read: fetch, decode and
	// recognition. It is longer than DefaultRequestTimeout so a slow
	// download is reported by the fetch step instead of abandoning the run.
	DefaultProcessTimeout = 20 * time.Second

	// DefaultConcurrency is the number of URLs read at once by `qrreader read`.
	DefaultConcurrency = 4

	// DefaultRateLimit is the steady number of requests per second the
	// server accepts. Zero disables rate limiting.
	DefaultRateLimit = 10

	// DefaultRateBurst is the token bucket size.
	DefaultRateBurst = 20

	// AuthTokenEnv is the environment variable holding the bearer token.
	AuthTokenEnv = "QRREADER_AUTH_TOKEN" //nolint:gosec // variable name, not a credential
)

// Config holds all configuration options for qrreader.
// It is populated from defaults, the config file, the environment and CLI
// flags, then passed through the application instead of global state.
type Config struct {
	// ListenAddress is the host:port the HTTP service binds to.
	ListenAddress string

	// AuthToken is the bearer token required on POST / and GET /history.
	// Authentication is disabled when it is empty.
	AuthToken string

	// RateLimit is the number of requests per second accepted by the server.
	// Zero disables the limiter.
	RateLimit float64

	// RateBurst is the maximum burst above RateLimit.
	RateBurst int

	// LogJSON switches the server log output to JSON.
	LogJSON bool

	// MaxImageBytes is the largest image body that will be read.
	MaxImageBytes int64

	// RequestTimeout bounds a single image download.
	RequestTimeout time.Duration

	// ProcessTimeout bounds a whole read, including decoding and recognition.
	ProcessTimeout time.Duration

	// UserAgent is the User-Agent header sent with image requests.
	UserAgent string

	// ProxyAddress routes downloads through a SOCKS5 proxy ("host:port"),
	// for example a local Tor daemon. Empty means direct connections.
	ProxyAddress string

	// AllowPrivateNetworks lets the fetcher reach loopback and private
	// addresses. Only enable it when every caller is trusted.
	AllowPrivateNetworks bool

	// Concurrency is the number of URLs read at once by the CLI.
	Concurrency int

	// HistoryEnabled stores every read in the SQLite history database.
	HistoryEnabled bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/qrreader on Linux).
	DBDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// ConfigFilePath is an explicit configuration file path.
	// If empty, FindConfigFile searches the usual locations.
	ConfigFilePath string

	// JSONReport selects JSON output for CLI reports.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output for CLI reports.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for CLI reports.
	// When empty, reports are written to stdout.
	ReportFile string

	// Targets is the list of image URLs given to `qrreader read`.
	Targets []string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ListenAddress:  DefaultListenAddress,
		RateLimit:      DefaultRateLimit,
		RateBurst:      DefaultRateBurst,
		MaxImageBytes:  DefaultMaxImageBytes,
		RequestTimeout: DefaultRequestTimeout,
		ProcessTimeout: DefaultProcessTimeout,
		UserAgent:      fetch.DefaultUserAgent,
		Concurrency:    DefaultConcurrency,
		HistoryEnabled: true,
		DBDir:          XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for qrreader.
// On Linux: ~/.local/share/qrreader
// On macOS: ~/Library/Application Support/qrreader
// On Windows: %LOCALAPPDATA%\qrreader
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for qrreader.
// On Linux: ~/.config/qrreader
// On macOS: ~/Library/Application Support/qrreader
// On Windows: %APPDATA%\qrreader
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// FetchConstraints returns the download budget derived from the configuration.
func (c *Config) FetchConstraints() fetch.Constraints {
	return fetch.Constraints{
		MaxBytes: c.MaxImageBytes,
		Timeout:  c.RequestTimeout,
	}
}

// Validate checks the options shared by every command.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.MaxImageBytes <= 0 {
		return ErrInvalidMaxImageBytes
	}

	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	// A process deadline shorter than the download budget would turn every
	// slow download into an abandoned run.
	if c.ProcessTimeout < c.RequestTimeout {
		return ErrInvalidProcessTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.RateLimit < 0 || c.RateBurst < 0 || (c.RateLimit > 0 && c.RateBurst == 0) {
		return ErrInvalidRateLimit
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// ValidateServe checks the options used by `qrreader serve`.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ListenAddress == "" {
		return ErrEmptyListenAddress
	}
	return nil
}

// ValidateRead checks the options used by `qrreader read`.
func (c *Config) ValidateRead() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return c.Validate()
}
