package fetch

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/crypto/sha3"
	"golang.org/x/net/proxy"
)

// DefaultUserAgent is sent when no User-Agent is configured.
const DefaultUserAgent = "qrreader"

// maxRedirects is the number of redirects followed before giving up.
const maxRedirects = 5

// Resource is a fetched resource. Body is owned by the caller.
type Resource struct {
	// URL is the URL that was requested.
	URL string

	// StatusCode is the final HTTP status code.
	StatusCode int

	// ContentType is the Content-Type header as sent by the server.
	// It is informational only; the format is determined from the bytes.
	ContentType string

	// DeclaredLength is the Content-Length header, or -1 if absent.
	DeclaredLength int64

	// Body holds at most MaxBytes bytes.
	Body []byte
}

// Digest returns the hex encoded SHA3-256 digest of the body.
func (r *Resource) Digest() string {
	sum := sha3.Sum256(r.Body)
	return hex.EncodeToString(sum[:])
}

// Fetcher retrieves remote resources under a Constraints budget.
// A Fetcher is safe for concurrent use.
type Fetcher struct {
	constraints  Constraints
	client       *http.Client
	logger       *slog.Logger
	userAgent    string
	proxyAddress string
	allowPrivate bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger used for the per-fetch log line.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithProxy routes every connection through the SOCKS5 proxy at address
// ("host:port"). An empty address means direct connections.
func WithProxy(address string) Option {
	return func(f *Fetcher) {
		f.proxyAddress = address
	}
}

// WithAllowPrivateNetworks disables the private address guard.
// Only meant for trusted deployments and tests.
func WithAllowPrivateNetworks(allow bool) Option {
	return func(f *Fetcher) {
		f.allowPrivate = allow
	}
}

// New creates a Fetcher. It returns an error if the constraints are invalid
// or the proxy address is malformed; it does not contact the proxy.
func New(c Constraints, opts ...Option) (*Fetcher, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	f := &Fetcher{
		constraints: c,
		userAgent:   DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}

	transport, err := f.newTransport()
	if err != nil {
		return nil, err
	}

	f.client = &http.Client{
		Transport: transport,
		Timeout:   c.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return f.checkURL(req.URL)
		},
	}
	return f, nil
}

// newTransport builds the HTTP transport, either direct with a dial-time
// address check or through the configured SOCKS5 proxy.
func (f *Fetcher) newTransport() (*http.Transport, error) {
	base := &net.Dialer{Timeout: f.constraints.Timeout}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	if f.proxyAddress == "" {
		if !f.allowPrivate {
			base.Control = guardDial
		}
		transport.DialContext = base.DialContext
		return transport, nil
	}

	if !isValidProxyAddress(f.proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}
	// Tor's SOCKS port does not require authentication.
	dialer, err := proxy.SOCKS5("tcp", f.proxyAddress, nil, base)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}

// Fetch performs a single GET of rawURL.
//
// The returned error matches ErrUnavailable or ErrSizeExceeded.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Resource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := f.checkURL(u); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.constraints.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	f.logger.Info("fetch request response", "url", rawURL, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if resp.ContentLength > f.constraints.MaxBytes {
		return nil, fmt.Errorf("%w: declared %d bytes, limit %d",
			ErrSizeExceeded, resp.ContentLength, f.constraints.MaxBytes)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.constraints.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrUnavailable, err)
	}
	if int64(len(body)) > f.constraints.MaxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrSizeExceeded, f.constraints.MaxBytes)
	}

	return &Resource{
		URL:            rawURL,
		StatusCode:     resp.StatusCode,
		ContentType:    resp.Header.Get("Content-Type"),
		DeclaredLength: resp.ContentLength,
		Body:           body,
	}, nil
}

// checkURL rejects non-HTTP schemes, empty hosts and, unless private
// networks are allowed, literal private IP hosts. Hostnames are checked
// again at dial time for direct connections; through a proxy the name is
// resolved remotely and only literal addresses can be checked.
func (f *Fetcher) checkURL(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrUnavailable, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: URL has no host", ErrUnavailable)
	}
	if f.allowPrivate {
		return nil
	}
	if addr, err := netip.ParseAddr(host); err == nil && isBlockedAddr(addr) {
		return fmt.Errorf("%w: %w: %s", ErrUnavailable, ErrBlockedAddress, host)
	}
	return nil
}

// guardDial is a net.Dialer Control function. It runs after DNS resolution,
// so address is always a literal IP and port.
func guardDial(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	if isBlockedAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ap.Addr())
	}
	return nil
}

// isBlockedAddr reports whether addr is loopback, private, link-local,
// unspecified or in the shared address space (100.64.0.0/10).
func isBlockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
		return true
	}
	return sharedAddressSpace.Contains(addr)
}

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// isValidProxyAddress checks that address is host:port with a port in
// 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
