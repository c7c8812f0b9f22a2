// Package ingest drains the backlog of unparsed raw documents: parse,
// normalize, and write canonical rows under concurrent workers.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/opencourts/casesearch/internal/metrics"
	"github.com/opencourts/casesearch/internal/normalize"
	"github.com/opencourts/casesearch/internal/store"
)

// Backlog is the store behavior the pipeline needs: work selection, raw
// deletion, and transactional canonical writes.
type Backlog interface {
	SelectUnparsed(ctx context.Context, limit, offset int) ([]store.RawDocument, error)
	Delete(ctx context.Context, caseID string) error
	InsertCase(ctx context.Context, pc *normalize.ParsedCase) error
}

// StoreFactory hands each worker its own exclusive store (one database
// connection held for the whole partition scan) plus a release function.
type StoreFactory func(ctx context.Context) (Backlog, func(), error)

// Pipeline partitions the unparsed backlog across concurrent workers.
type Pipeline struct {
	stores StoreFactory
	logger *zap.Logger
}

// New builds a Pipeline.
func New(stores StoreFactory, logger *zap.Logger) *Pipeline {
	metrics.Init()
	return &Pipeline{stores: stores, logger: logger}
}

// Run processes the backlog with partitionCount workers, each scanning one
// disjoint offset window of at most batchLimit documents. Workers commit per
// document; the store's uniqueness constraints are the only cross-worker
// coordination. Per-document failures are collected, not fatal.
func (p *Pipeline) Run(ctx context.Context, partitionCount, batchLimit int) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for i := 0; i < partitionCount; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			if err := p.runPartition(ctx, worker, batchLimit); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (p *Pipeline) runPartition(ctx context.Context, worker, batchLimit int) error {
	backlog, release, err := p.stores(ctx)
	if err != nil {
		return fmt.Errorf("worker %d: acquire store: %w", worker, err)
	}
	defer release()

	docs, err := backlog.SelectUnparsed(ctx, batchLimit, batchLimit*worker)
	if err != nil {
		return fmt.Errorf("worker %d: %w", worker, err)
	}

	logger := p.logger.With(zap.Int("worker", worker))
	var docErrs []error
	for i, doc := range docs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Info("Processing case",
			zap.String("case_id", doc.CaseID),
			zap.Int("remaining", len(docs)-i),
		)
		if err := p.processDocument(ctx, backlog, logger, doc); err != nil {
			// Fatal for this document only; the rest of the partition
			// proceeds.
			metrics.ObserveIngestFailure()
			logger.Error("Case ingestion failed",
				zap.String("case_id", doc.CaseID),
				zap.Error(err),
			)
			docErrs = append(docErrs, fmt.Errorf("case %s: %w", doc.CaseID, err))
		}
	}
	return errors.Join(docErrs...)
}

func (p *Pipeline) processDocument(ctx context.Context, backlog Backlog, logger *zap.Logger, doc store.RawDocument) error {
	pc, err := normalize.Parse(doc.Content)
	if err != nil {
		return err
	}

	if pc.CaseID() == "" {
		// No case identifier means the document is garbage; drop it so it
		// stops showing up as backlog.
		if err := backlog.Delete(ctx, doc.CaseID); err != nil {
			return err
		}
		metrics.ObserveDocumentDeleted("nonsense")
		logger.Info("Deleted contentless document", zap.String("case_id", doc.CaseID))
		return nil
	}

	if err := backlog.InsertCase(ctx, pc); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Some other path already ingested this case.
			if derr := backlog.Delete(ctx, doc.CaseID); derr != nil {
				return derr
			}
			metrics.ObserveDocumentDeleted("duplicate")
			logger.Info("Deleted duplicate document", zap.String("case_id", doc.CaseID))
			return nil
		}
		return err
	}

	metrics.ObserveDocumentParsed()
	for table, records := range pc.Tables {
		if len(records) > 0 {
			metrics.ObserveRowsInserted(table, len(records))
			logger.Info("Inserted rows",
				zap.String("case_id", pc.CaseID()),
				zap.String("table", table),
				zap.Int("rows", len(records)),
			)
		}
	}
	return nil
}
