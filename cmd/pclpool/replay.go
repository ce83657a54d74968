package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"concentratedLiquidity/internal/config"
	"concentratedLiquidity/internal/ledger"
	"concentratedLiquidity/internal/pool"
	"concentratedLiquidity/internal/replay"
	"concentratedLiquidity/internal/storage"
	"concentratedLiquidity/internal/storage/postgres"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Pool.InitTime == "" {
		return fmt.Errorf("init-time is required")
	}

	genesis, err := genesisState(cfg.Pool, cfg.Factory)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres first: a retried batch must not append JSONL lines twice.
	var sinks storage.Multi
	var snapshots replay.SnapshotSink
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		sinks = append(sinks, store)
		snapshots = &snapshotWriter{store: store, pool: genesis.Config.Pair.Contract}
	}
	sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))

	runner := replay.NewRunner(replay.RunConfig{
		Input:             cfg.In,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
		FactoryOwner:      cfg.Factory.Owner,
		Fee:               feeInfo(cfg.Factory),
	}, genesis, sinks, snapshots, logger)

	logger.Info("replay start",
		zap.String("pool", genesis.Config.Pair.Contract),
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	return runner.Run(ctx)
}

// snapshotWriter stores the pool after each replayed batch.
type snapshotWriter struct {
	store *postgres.Store
	pool  string
}

func (w *snapshotWriter) SaveSnapshot(ctx context.Context, seq uint64, st pool.State, balances ledger.Balances) error {
	digest, err := st.Digest()
	if err != nil {
		return err
	}
	return w.store.SaveSnapshot(ctx, postgres.Snapshot{
		Pool:     w.pool,
		Sequence: seq,
		Digest:   digest,
		State:    st,
		Balances: balances,
	})
}
