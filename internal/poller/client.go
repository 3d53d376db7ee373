package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

const defaultRequestTimeout = 10 * time.Second

// connection pooling limits; status pages are few, so these stay small
const (
	defaultMaxIdleConns        = 20
	defaultMaxIdleConnsPerHost = 2
	defaultMaxConnsPerHost     = 4
	defaultIdleConnTimeout     = 60 * time.Second
)

// Classified fetch errors. Every error returned by [Client.Fetch] matches
// exactly one of these via errors.Is.
var (
	// ErrConnectionFailure means no transport connection could be established.
	ErrConnectionFailure = errors.New("connection failure")

	// ErrTimeout means the request exceeded its deadline.
	ErrTimeout = errors.New("timeout")

	// ErrInvalidURL means the URL is malformed, lacks a scheme or host,
	// or names a host that does not exist.
	ErrInvalidURL = errors.New("invalid url")

	// ErrNoContent means the server answered, but not with a successful
	// HTML response. Callers treat it as an extraction failure.
	ErrNoContent = errors.New("no usable content")
)

// FetchError describes a failed [Client.Fetch] call.
//
// Kind is one of the package sentinels; Err is the underlying cause and may
// be nil when the classification itself is the whole story.
type FetchError struct {
	URL  string
	Kind error
	Err  error
}

func (e *FetchError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrInvalidURL):
		if e.Err != nil {
			return fmt.Sprintf("invalid url %q: %v", e.URL, e.Err)
		}
		return fmt.Sprintf("invalid url %q", e.URL)
	case errors.Is(e.Kind, ErrTimeout):
		return fmt.Sprintf("request to %s timed out", e.URL)
	case errors.Is(e.Kind, ErrConnectionFailure):
		return fmt.Sprintf("could not connect to %s", e.URL)
	case e.Err != nil:
		return fmt.Sprintf("%v at %s: %v", e.Kind, e.URL, e.Err)
	default:
		return fmt.Sprintf("%v at %s", e.Kind, e.URL)
	}
}

// Unwrap exposes both the classification and the cause to errors.Is/As.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Client is an HTTP client wrapper for fetching status pages.
//
// Client uses per-request timeouts via context rather than a global timeout.
// Response bodies are limited to 1MB. No retries are performed; retry policy
// belongs to whoever drives the polling loop.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a new fetching [Client] with the given per-request
// timeout. A non-positive timeout selects the 10 second default.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		timeout: timeout,
	}
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Fetch performs a GET request and returns the body of a successful HTML
// response.
//
// Any failure is returned as a *[FetchError] classified as
// [ErrInvalidURL], [ErrTimeout], [ErrConnectionFailure] or [ErrNoContent].
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, &FetchError{URL: rawURL, Kind: ErrInvalidURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: ErrInvalidURL, Err: err}
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind, cause := classify(err)
		return nil, &FetchError{URL: rawURL, Kind: kind, Err: cause}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: rawURL, Kind: ErrNoContent, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if !isHTML(resp.Header.Get("Content-Type")) {
		return nil, &FetchError{URL: rawURL, Kind: ErrNoContent, Err: fmt.Errorf("content type %q", resp.Header.Get("Content-Type"))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		kind, cause := classify(err)
		return nil, &FetchError{URL: rawURL, Kind: kind, Err: cause}
	}

	return body, nil
}

// Close closes all idle connections in the client's connection pool.
// Safe to call multiple times and on a nil client.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// validateURL rejects URLs that cannot be requested at all.
func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme == "" {
		return errors.New("missing scheme")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// classify maps a transport error onto one of the package sentinels and
// returns the most specific cause worth reporting.
func classify(err error) (kind error, cause error) {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout, err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout, err
	}

	// a host that does not resolve makes the URL itself unusable
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return ErrInvalidURL, dnsErr
	}

	return ErrConnectionFailure, err
}

// isHTML reports whether a Content-Type header names an HTML document.
func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
