// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	searchesTotal      prometheus.Counter
	searchRetries      prometheus.Counter
	fetchRetries       prometheus.Counter
	casesFetched       prometheus.Counter
	casesSkipped       prometheus.Counter
	documentsParsed    prometheus.Counter
	documentsDeleted   *prometheus.CounterVec
	rowsInserted       *prometheus.CounterVec
	ingestFailures     prometheus.Counter
	queriesOutstanding prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		searchesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_searches_total",
			Help: "Search form submissions that returned a success status.",
		})
		searchRetries = promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_search_retries_total",
			Help: "Search form submissions re-issued after a non-success response.",
		})
		fetchRetries = promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_fetch_retries_total",
			Help: "Detail-page fetches re-issued after a non-success response.",
		})
		casesFetched = promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_cases_fetched_total",
			Help: "Raw case documents fetched and persisted.",
		})
		casesSkipped = promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_cases_skipped_total",
			Help: "Detail-page fetches suppressed because the case was already stored.",
		})
		documentsParsed = promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_documents_parsed_total",
			Help: "Raw documents parsed and written to the canonical schema.",
		})
		documentsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_documents_deleted_total",
			Help: "Raw documents deleted during ingestion, labeled by reason.",
		}, []string{"reason"})
		rowsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_rows_inserted_total",
			Help: "Canonical rows inserted, labeled by table.",
		}, []string{"table"})
		ingestFailures = promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_ingest_failures_total",
			Help: "Documents whose canonical writes failed for a non-conflict reason.",
		})
		queriesOutstanding = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "harvester_queries_outstanding",
			Help: "Search queries enumerated but not yet driven to completion.",
		})
	})
}

// Handler returns an http.Handler exposing the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSearch counts one successful search submission.
func ObserveSearch() { searchesTotal.Inc() }

// ObserveSearchRetry counts one re-issued search submission.
func ObserveSearchRetry() { searchRetries.Inc() }

// ObserveFetchRetry counts one re-issued detail fetch.
func ObserveFetchRetry() { fetchRetries.Inc() }

// ObserveCaseFetched counts one persisted raw document.
func ObserveCaseFetched() { casesFetched.Inc() }

// ObserveCaseSkipped counts one dedup-suppressed fetch.
func ObserveCaseSkipped() { casesSkipped.Inc() }

// ObserveDocumentParsed counts one fully ingested document.
func ObserveDocumentParsed() { documentsParsed.Inc() }

// ObserveDocumentDeleted counts one raw document deletion.
func ObserveDocumentDeleted(reason string) { documentsDeleted.WithLabelValues(reason).Inc() }

// ObserveRowsInserted counts canonical rows written to a table.
func ObserveRowsInserted(table string, n int) {
	rowsInserted.WithLabelValues(table).Add(float64(n))
}

// ObserveIngestFailure counts one non-conflict write failure.
func ObserveIngestFailure() { ingestFailures.Inc() }

// SetQueriesOutstanding records the remaining query count.
func SetQueriesOutstanding(n int) { queriesOutstanding.Set(float64(n)) }
