package cmd

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opencourts/casesearch/internal/api"
	"github.com/opencourts/casesearch/internal/config"
	"github.com/opencourts/casesearch/internal/metrics"
	"github.com/opencourts/casesearch/internal/portal"
	"github.com/opencourts/casesearch/internal/store"
)

const dateLayout = "2006/01/02"

// newCrawlCmd creates the 'crawl' subcommand: enumerate the search space
// over a date range and persist every new case document.
func newCrawlCmd() *cobra.Command {
	var startDate, endDate string

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawls the portal over a filing-date range",
		Long: `Enumerates every search query over the inclusive date range
(company flag, surname initial, case category, court system) and fetches the
detail page of every case not already in the raw store.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd, startDate, endDate)
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "range start, YYYY/MM/DD (defaults to crawler.start_date)")
	cmd.Flags().StringVar(&endDate, "end", "", "range end, YYYY/MM/DD (defaults to crawler.end_date)")
	return cmd
}

func runCrawl(cmd *cobra.Command, startDate, endDate string) error {
	ctx := cmd.Context()
	a, err := resolveApp(ctx)
	if err != nil {
		return err
	}

	if startDate == "" {
		startDate = a.cfg.Crawler.StartDate
	}
	if endDate == "" {
		endDate = a.cfg.Crawler.EndDate
	}
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return fmt.Errorf("parse start date: %w", err)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return fmt.Errorf("parse end date: %w", err)
	}

	pool, err := store.Connect(ctx, a.cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if a.cfg.Server.Enabled {
		srv := api.New(a.cfg.Server.Port, a.logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	client := portal.NewClient(portal.ClientConfig{
		UserAgent: a.cfg.Portal.UserAgent,
		Timeout:   a.cfg.PortalTimeout(),
	})
	sessions := portal.NewManager(client, a.cfg.Portal.BaseURL, a.logger)

	// No session, no run. Restarting on session failure is the operator's
	// call, not ours.
	if _, err := sessions.Acquire(ctx); err != nil {
		return fmt.Errorf("acquire portal session: %w", err)
	}

	dispatcher := portal.NewDispatcher(
		client,
		sessions,
		store.New(pool),
		retryPolicy(a.cfg),
		a.cfg.Portal.BaseURL,
		a.cfg.Crawler.MaxInFlight,
		a.logger,
	)

	total := portal.Count(start, end)
	remaining := atomic.Int64{}
	remaining.Store(int64(total))
	a.logger.Info("Starting crawl",
		zap.String("start", startDate),
		zap.String("end", endDate),
		zap.Int("queries", total),
	)

	queries := make(chan portal.Query)
	go func() {
		defer close(queries)
		for q := range portal.Enumerate(start, end) {
			select {
			case queries <- q:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < a.cfg.Crawler.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q := range queries {
				if err := dispatcher.RunQuery(ctx, q); err != nil {
					a.logger.Error("Query failed", zap.String("query", q.String()), zap.Error(err))
				}
				left := remaining.Add(-1)
				metrics.SetQueriesOutstanding(int(left))
				a.logger.Info("Query done",
					zap.String("query", q.String()),
					zap.Int64("remaining", left),
				)
			}
		}()
	}
	wg.Wait()

	a.logger.Info("Crawl finished")
	return ctx.Err()
}

// retryPolicy builds the configured retry strategy. The historical default
// retries failed portal requests indefinitely.
func retryPolicy(cfg config.Config) portal.RetryPolicy {
	if cfg.Crawler.RetryPolicy == "exponential" || cfg.Crawler.MaxRetries > 0 {
		return portal.NewExponentialPolicy(cfg.Crawler.MaxRetries)
	}
	return portal.UnboundedPolicy{Delay: cfg.RetryDelay()}
}
