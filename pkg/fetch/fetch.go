// Package fetch retrieves raw documentation pages over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
)

// Error reports a failed page fetch. StatusCode is zero for transport-level
// failures (DNS, connect, timeout).
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options configures a Fetcher. Zero values fall back to working defaults.
type Options struct {
	Timeout     time.Duration
	UserAgent   string
	MaxBodySize int64
	// Attempts is the number of tries per page; 1 means a single attempt.
	Attempts      int
	RetryInterval time.Duration
}

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxBodySize = 10 << 20
	defaultUserAgent   = "support-matrix/1.0"
)

// Fetcher fetches documentation pages with timeouts, a size cap and an
// optional constant-interval retry policy.
type Fetcher struct {
	client *http.Client
	opts   Options
}

// New builds a Fetcher from opts.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = defaultMaxBodySize
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 5 * time.Second
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: opts.Timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		opts: opts,
	}
}

// Fetch retrieves the page at url and returns its body. Client errors (4xx)
// fail immediately; transport errors and server errors (5xx) are retried up
// to the configured number of attempts. The returned error is always a
// *fetch.Error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	// WithMaxRetries(bo, 0) means unlimited in cenkalti/backoff, so the
	// attempt budget is tracked here and a single attempt skips the
	// backoff machinery entirely.
	if f.opts.Attempts == 1 {
		return f.fetchOnce(ctx, url)
	}

	var body []byte
	remaining := f.opts.Attempts

	operation := func() error {
		var err error
		body, err = f.fetchOnce(ctx, url)
		if err == nil {
			return nil
		}
		remaining--
		var ferr *Error
		if errors.As(err, &ferr) && ferr.StatusCode >= 400 && ferr.StatusCode < 500 {
			return backoff.Permanent(err)
		}
		if remaining <= 0 {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.WithContext(backoff.NewConstantBackOff(f.opts.RetryInterval), ctx)
	err := backoff.Retry(operation, bo)
	if err == nil {
		return body, nil
	}
	// Context cancellation mid-wait surfaces as a bare ctx error.
	var ferr *Error
	if !errors.As(err, &ferr) {
		err = &Error{URL: url, Err: err}
	}
	return nil, err
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodySize+1))
	if err != nil {
		return nil, &Error{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > f.opts.MaxBodySize {
		return nil, &Error{URL: url, Err: fmt.Errorf("content exceeds %d bytes", f.opts.MaxBodySize)}
	}
	return body, nil
}
