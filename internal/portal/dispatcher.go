package portal

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/opencourts/casesearch/internal/metrics"
	"github.com/opencourts/casesearch/internal/store"
)

// Dispatcher drives search queries to completion: it submits the form,
// extracts result and pagination links, deduplicates against the raw store,
// and persists detail pages. Many detail fetches are kept in flight at once,
// bounded by a global cap; ordering across queries or documents is not
// guaranteed. The only per-case contract is that the existence check and the
// raw write cannot both win for the same case identifier.
type Dispatcher struct {
	client   *Client
	sessions *Manager
	raw      store.RawStore
	retry    RetryPolicy
	logger   *zap.Logger
	baseURL  string
	inflight chan struct{}
	pending  atomic.Int64
}

// NewDispatcher builds a Dispatcher. maxInFlight bounds concurrent detail
// fetches across all queries.
func NewDispatcher(
	client *Client,
	sessions *Manager,
	raw store.RawStore,
	retry RetryPolicy,
	baseURL string,
	maxInFlight int,
	logger *zap.Logger,
) *Dispatcher {
	metrics.Init()
	if maxInFlight <= 0 {
		maxInFlight = 16
	}
	return &Dispatcher{
		client:   client,
		sessions: sessions,
		raw:      raw,
		retry:    retry,
		logger:   logger,
		baseURL:  baseURL,
		inflight: make(chan struct{}, maxInFlight),
	}
}

// RunQuery submits one search query and persists every new case document it
// leads to, including those behind pagination links on the first results
// page. Every step is idempotent and safe to retry.
func (d *Dispatcher) RunQuery(ctx context.Context, q Query) error {
	body, err := d.submitSearch(ctx, q)
	if err != nil {
		return fmt.Errorf("search %s: %w", q, err)
	}
	metrics.ObserveSearch()
	if err := d.processResults(ctx, q, body, false); err != nil {
		return fmt.Errorf("results for %s: %w", q, err)
	}
	return nil
}

// submitSearch posts the search form, re-issuing the identical request per
// the retry policy on non-success responses. Each retry re-reads the session
// token, refreshing it when the remote keeps rejecting the current one.
func (d *Dispatcher) submitSearch(ctx context.Context, q Query) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		token := d.sessions.Token()
		resp, err := d.client.PostForm(ctx, d.baseURL+SearchPath, q.FormValues(), token.Header())
		if err == nil && resp.OK() {
			return resp.Body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !d.retry.ShouldRetry(attempt) {
			if err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("status %d after %d attempts", resp.StatusCode, attempt+1)
		}
		metrics.ObserveSearchRetry()
		d.logger.Warn("Search submission failed; retrying",
			zap.String("query", q.String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if err == nil && !resp.OK() {
			if _, rerr := d.sessions.Refresh(ctx, token); rerr != nil {
				d.logger.Warn("Session refresh failed", zap.Error(rerr))
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d.retry.Backoff(attempt)):
		}
	}
}

// processResults extracts detail links from one results page, schedules
// fetches for cases not yet stored, and, from the original page only,
// expands pagination links. Pages reached via pagination are marked as
// sub-pages so they never expand pagination themselves.
func (d *Dispatcher) processResults(ctx context.Context, q Query, body []byte, subPage bool) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse results page: %w", err)
	}

	caseLinks := extractHrefs(doc, "table.results a[href]")

	var wg sync.WaitGroup
	defer wg.Wait()

	for _, href := range caseLinks {
		// Column-sorting links point back at the results page.
		if strings.Contains(href, "inquiry-results") {
			continue
		}
		caseID, err := ExtractCaseID(href)
		if err != nil {
			d.logger.Error("Unparseable detail link", zap.String("href", href), zap.Error(err))
			continue
		}
		exists, err := d.raw.Has(ctx, caseID)
		if err != nil {
			return err
		}
		if exists {
			metrics.ObserveCaseSkipped()
			d.logger.Info("Skipped stored case",
				zap.String("case_id", caseID),
				zap.Int64("pending", d.pending.Load()),
			)
			continue
		}

		detailURL, err := d.resolve(href)
		if err != nil {
			d.logger.Error("Unresolvable detail link", zap.String("href", href), zap.Error(err))
			continue
		}

		wg.Add(1)
		d.pending.Add(1)
		d.inflight <- struct{}{}
		go func() {
			defer func() {
				<-d.inflight
				d.pending.Add(-1)
				wg.Done()
			}()
			d.fetchCase(ctx, caseID, detailURL)
		}()
	}

	if !subPage && len(caseLinks) > 0 {
		for _, href := range dedupe(extractHrefs(doc, "span.pagelinks a[href]")) {
			pageURL, err := d.resolve(href)
			if err != nil {
				d.logger.Error("Unresolvable pagination link", zap.String("href", href), zap.Error(err))
				continue
			}
			pageBody, err := d.fetchWithRetry(ctx, pageURL)
			if err != nil {
				return fmt.Errorf("pagination fetch: %w", err)
			}
			if err := d.processResults(ctx, q, pageBody, true); err != nil {
				return err
			}
		}
	}

	return nil
}

// fetchCase retrieves one detail page and persists it. Non-success fetches
// are re-enqueued per the retry policy.
func (d *Dispatcher) fetchCase(ctx context.Context, caseID, detailURL string) {
	body, err := d.fetchWithRetry(ctx, detailURL)
	if err != nil {
		d.logger.Error("Detail fetch failed", zap.String("case_id", caseID), zap.Error(err))
		return
	}
	doc := store.RawDocument{
		CaseID:    caseID,
		Content:   body,
		FetchedAt: time.Now().UTC(),
	}
	if err := d.raw.Put(ctx, doc); err != nil {
		d.logger.Error("Raw write failed", zap.String("case_id", caseID), zap.Error(err))
		return
	}
	metrics.ObserveCaseFetched()
	d.logger.Info("Saved case",
		zap.String("case_id", caseID),
		zap.Int64("pending", d.pending.Load()),
	)
}

func (d *Dispatcher) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		token := d.sessions.Token()
		resp, err := d.client.Get(ctx, url, token.Header())
		if err == nil && resp.OK() {
			return resp.Body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !d.retry.ShouldRetry(attempt) {
			if err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("status %d after %d attempts", resp.StatusCode, attempt+1)
		}
		metrics.ObserveFetchRetry()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d.retry.Backoff(attempt)):
		}
	}
}

func (d *Dispatcher) resolve(href string) (string, error) {
	base, err := url.Parse(d.baseURL + SearchPath)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// ExtractCaseID derives the case identifier from a detail-page link: the
// value of the first query parameter.
func ExtractCaseID(href string) (string, error) {
	first := strings.SplitN(href, "&", 2)[0]
	parts := strings.SplitN(first, "=", 2)
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("no case identifier in %q", href)
	}
	return parts[1], nil
}

func extractHrefs(doc *goquery.Document, selector string) []string {
	var hrefs []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

func dedupe(hrefs []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, h := range hrefs {
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	return out
}
