// Package scheduler executes the GET requests a catalog source issues. It
// owns the policy a source must not care about: global headers, cookies,
// rate limiting, retries and timeouts.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const maxBodySize = 10 << 20

type Request struct {
	Method string
	URL    string
	Header http.Header
}

type Options struct {
	Timeout    time.Duration
	UserAgent  string
	Cookie     string
	CookieFile string
	// Headers are added to every request that does not set them itself.
	Headers http.Header

	RateLimit float64 // requests per second, <= 0 disables limiting
	RateBurst int
	Attempts  int
	Backoff   time.Duration

	CloudflareBypass bool
	Transport        http.RoundTripper
	Logger           debugLogger
}

// FetchError reports a request that did not produce a usable response.
// Status is zero when the failure happened below HTTP.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type Scheduler struct {
	client   *http.Client
	limiter  *rate.Limiter
	attempts int
	backoff  time.Duration
	log      debugLogger
}

func New(opts Options) *Scheduler {
	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(1, opts.RateBurst))
	}

	s := &Scheduler{
		client: newHTTPClient(clientOptions{
			timeout:          opts.Timeout,
			userAgent:        opts.UserAgent,
			cookie:           opts.Cookie,
			cookieFile:       opts.CookieFile,
			headers:          opts.Headers,
			transport:        opts.Transport,
			cloudflareBypass: opts.CloudflareBypass,
			log:              opts.Logger,
		}),
		limiter:  limiter,
		attempts: attempts,
		backoff:  opts.Backoff,
		log:      opts.Logger,
	}

	if s.log != nil {
		s.log.Debugf("scheduler initialized (timeout=%s, rate=%.2f/s, attempts=%d)\n",
			opts.Timeout, opts.RateLimit, attempts)
	}

	return s
}

// Client exposes the configured HTTP client so image downloads share the
// same headers and cookies.
func (s *Scheduler) Client() *http.Client {
	return s.client
}

// Schedule runs req and returns the response body. Transport errors and 5xx
// responses are retried; any other non-2xx status fails immediately.
func (s *Scheduler) Schedule(ctx context.Context, req Request) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= s.attempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: req.URL, Err: err}
		}

		body, retry, err := s.do(ctx, req)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || attempt == s.attempts {
			break
		}

		if s.log != nil {
			s.log.Debugf("attempt %d/%d for %s failed: %v\n", attempt, s.attempts, req.URL, err)
		}

		select {
		case <-ctx.Done():
			return nil, &FetchError{URL: req.URL, Err: ctx.Err()}
		case <-time.After(s.backoff * time.Duration(attempt)):
		}
	}

	return nil, lastErr
}

func (s *Scheduler) do(ctx context.Context, r Request) ([]byte, bool, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL, nil)
	if err != nil {
		return nil, false, &FetchError{URL: r.URL, Err: err}
	}
	for k, vs := range r.Header {
		req.Header[k] = append([]string(nil), vs...)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, &FetchError{URL: r.URL, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode >= 500, &FetchError{URL: r.URL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, true, &FetchError{URL: r.URL, Err: err}
	}

	return body, false, nil
}
