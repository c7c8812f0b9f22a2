// Package portal implements the judiciary search portal interface: the
// disclaimer session handshake, the search-query enumeration, and the crawl
// dispatcher that drives queries to completion.
package portal

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// Response is the result of one portal request.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// OK reports whether the request completed with a success status.
func (r Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// ClientConfig controls collector behavior.
type ClientConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// Client issues portal requests using the Colly collector. Each request
// clones the base collector, so a Client is safe for concurrent use.
type Client struct {
	cfg  ClientConfig
	base *colly.Collector
}

// NewClient builds a Client.
func NewClient(cfg ClientConfig) *Client {
	c := colly.NewCollector(colly.Async(false))
	c.WithTransport(newHTTPTransport())
	return &Client{cfg: cfg, base: c}
}

// Get fetches a URL, carrying the given headers.
func (c *Client) Get(ctx context.Context, url string, headers http.Header) (Response, error) {
	return c.run(ctx, headers, func(collector *colly.Collector) error {
		return collector.Visit(url)
	})
}

// PostForm submits a form, carrying the given headers.
func (c *Client) PostForm(ctx context.Context, url string, form map[string]string, headers http.Header) (Response, error) {
	return c.run(ctx, headers, func(collector *colly.Collector) error {
		return collector.Post(url, form)
	})
}

func (c *Client) run(ctx context.Context, headers http.Header, visit func(*colly.Collector) error) (Response, error) {
	collector := c.base.Clone()
	if c.cfg.UserAgent != "" {
		collector.UserAgent = c.cfg.UserAgent
	}
	// The portal is a session-gated form, not a site to be politely walked:
	// the same search endpoint is hit for every query, and robots rules do
	// not apply to form submissions.
	collector.IgnoreRobotsTxt = true
	collector.AllowURLRevisit = true
	timeout := c.cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	var (
		result   Response
		fetchErr error
	)

	collector.OnRequest(func(r *colly.Request) {
		for key, values := range headers {
			for _, v := range values {
				r.Headers.Set(key, v)
			}
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		result = responseFrom(r)
	})
	collector.OnError(func(r *colly.Response, err error) {
		// Status errors still carry a response; the caller's retry policy
		// deals with those. Only transport failures surface as errors.
		if r != nil && r.StatusCode != 0 {
			result = responseFrom(r)
			return
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- visit(collector)
	}()

	select {
	case <-ctx.Done():
		return Response{}, fmt.Errorf("portal request canceled: %w", ctx.Err())
	case err := <-done:
		if fetchErr != nil {
			return Response{}, fmt.Errorf("portal request failed: %w", fetchErr)
		}
		if result.StatusCode == 0 {
			if err != nil {
				return Response{}, fmt.Errorf("portal request failed: %w", err)
			}
			return Response{}, fmt.Errorf("portal request produced no response")
		}
		return result, nil
	}
}

func responseFrom(r *colly.Response) Response {
	headers := http.Header{}
	if r.Headers != nil {
		headers = r.Headers.Clone()
	}
	return Response{
		StatusCode: r.StatusCode,
		Headers:    headers,
		Body:       append([]byte(nil), r.Body...),
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
