package fetch

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog"
)

const (
	DefaultRetries = 2
	DefaultDelay   = 100 * time.Millisecond
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// Temporary reports whether the request is worth retrying. Other client
// errors, such as a missing post, fail at once.
func (e *StatusError) Temporary() bool {
	switch e.Code {
	case http.StatusRequestTimeout, http.StatusConflict, http.StatusTooEarly,
		http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Fetcher retrieves a page body as text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher issues GET requests, retrying a fixed number of times with a
// fixed delay between attempts.
type HTTPFetcher struct {
	client    *http.Client
	retries   int
	delay     time.Duration
	userAgent string
}

type Option func(*HTTPFetcher)

func WithClient(c *http.Client) Option {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithRetries sets the number of attempts made after the first one fails.
func WithRetries(n int) Option {
	return func(f *HTTPFetcher) {
		if n >= 0 {
			f.retries = n
		}
	}
}

func WithDelay(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d >= 0 {
			f.delay = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) { f.userAgent = ua }
}

func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:  http.DefaultClient,
		retries: DefaultRetries,
		delay:   DefaultDelay,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			klog.V(3).Infof("retry %d/%d for %s after %v", attempt, f.retries, url, f.delay)
			t := time.NewTimer(f.delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return "", errors.Wrapf(ctx.Err(), "gave up on %s", url)
			case <-t.C:
			}
		}

		body, err := f.get(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		klog.V(2).Infof("fetch attempt %d for %s failed: %v", attempt+1, url, err)
		if se, ok := errors.Cause(err).(*StatusError); ok && !se.Temporary() {
			return "", err
		}
	}

	klog.Warningf("giving up on %s after %d attempts", url, f.retries+1)
	return "", lastErr
}

func (f *HTTPFetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrapf(err, "invalid url %s", url)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "failed to retrieve %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode, URL: url}
	}

	b, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read body of %s", url)
	}
	return string(b), nil
}
