package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/gocolly/colly/v2"
)

// Fetcher retrieves the raw markup of one page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// CollyFetcher issues a single GET per call through a fresh colly collector.
// It keeps no cookies and shares no connections between calls.
type CollyFetcher struct {
	timeout     time.Duration
	userAgent   string
	maxBodySize int
	transport   http.RoundTripper
}

// NewFetcher builds a fetcher from the timeout, user agent and body limit in cfg.
func NewFetcher(cfg *config.Config) *CollyFetcher {
	return &CollyFetcher{
		timeout:     cfg.Timeout,
		userAgent:   cfg.UserAgent,
		maxBodySize: cfg.MaxBodySize,
	}
}

// SetTransport replaces the HTTP transport, which is how tests inject mocks.
func (f *CollyFetcher) SetTransport(transport http.RoundTripper) {
	f.transport = transport
}

// Fetch returns the body of a 2xx response or a *FetchError.
func (f *CollyFetcher) Fetch(ctx context.Context, target string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return "", &FetchError{URL: target, Err: classifyError(err, 0)}
	}

	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return "", &FetchError{URL: target, Err: ErrTimeout{Err: context.DeadlineExceeded}}
	}

	collector := f.newCollector(timeout)

	var (
		body     []byte
		status   int
		callback error
	)
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			status = r.StatusCode
		}
		callback = err
	})

	err := collector.Visit(target)
	if err == nil {
		err = callback
	}
	if err != nil {
		return "", &FetchError{URL: target, StatusCode: status, Err: classifyError(err, status)}
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return "", &FetchError{URL: target, StatusCode: status, Err: classifyError(nil, status)}
	}
	return string(body), nil
}

func (f *CollyFetcher) newCollector(timeout time.Duration) *colly.Collector {
	collector := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(f.maxBodySize),
	)
	collector.SetRequestTimeout(timeout)
	collector.IgnoreRobotsTxt = true
	// Non-2xx responses still reach OnResponse; Fetch classifies them.
	collector.ParseHTTPErrorResponse = true

	transport := f.transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: timeout,
			}).DialContext,
			DisableKeepAlives:   true,
			TLSHandshakeTimeout: timeout,
		}
	}
	collector.WithTransport(transport)
	return collector
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrConnection{Err: err}
	}

	if statusCode != 0 && (statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices) {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		default:
			return ErrHTTPStatus{StatusCode: statusCode, Err: wrapped}
		}
	}

	if err == nil {
		return nil
	}
	return err
}
