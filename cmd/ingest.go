package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opencourts/casesearch/internal/api"
	"github.com/opencourts/casesearch/internal/ingest"
	"github.com/opencourts/casesearch/internal/store"
)

// newIngestCmd creates the 'ingest' subcommand: parse the backlog of raw
// documents and write canonical rows.
func newIngestCmd() *cobra.Command {
	var partitions, batchLimit int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Parses stored raw documents into the canonical schema",
		Long: `Selects raw documents that have no cases row yet, partitions
them across concurrent workers, and writes parsed records table by table,
cases first.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd, partitions, batchLimit)
		},
	}

	cmd.Flags().IntVar(&partitions, "partitions", 0, "worker count (defaults to ingest.partitions)")
	cmd.Flags().IntVar(&batchLimit, "limit", 0, "documents per worker (defaults to ingest.batch_limit)")
	return cmd
}

func runIngest(cmd *cobra.Command, partitions, batchLimit int) error {
	ctx := cmd.Context()
	a, err := resolveApp(ctx)
	if err != nil {
		return err
	}

	if partitions <= 0 {
		partitions = a.cfg.Ingest.Partitions
	}
	if batchLimit <= 0 {
		batchLimit = a.cfg.Ingest.BatchLimit
	}

	// Every worker holds one connection for its whole partition scan.
	dbCfg := a.cfg.DB
	if dbCfg.MaxConns < int32(partitions) {
		dbCfg.MaxConns = int32(partitions)
	}
	pool, err := store.Connect(ctx, dbCfg)
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

	factory := func(ctx context.Context) (ingest.Backlog, func(), error) {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			return nil, nil, err
		}
		return store.New(conn), conn.Release, nil
	}

	a.logger.Info("Starting ingest",
		zap.Int("partitions", partitions),
		zap.Int("batch_limit", batchLimit),
	)

	pipeline := ingest.New(factory, a.logger)
	if err := pipeline.Run(ctx, partitions, batchLimit); err != nil {
		return err
	}

	a.logger.Info("Ingest finished")
	return nil
}
