package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"time"

	"go.uber.org/zap"

	"concentratedLiquidity/internal/chain"
	"concentratedLiquidity/internal/config"
	"concentratedLiquidity/internal/ledger"
	"concentratedLiquidity/internal/pool"
	"concentratedLiquidity/internal/replay"
	"concentratedLiquidity/internal/storage/postgres"
)

// savedPool is a pool as left by the last replay.
type savedPool struct {
	Sequence uint64
	Digest   string
	State    pool.State
	Balances ledger.Balances
}

// loadSavedPool reads the pool from Postgres when a DSN is configured, otherwise from the checkpoint file.
func loadSavedPool(ctx context.Context, cfg config.QueryConfig) (savedPool, error) {
	var saved savedPool
	if cfg.PGDSN != "" {
		if cfg.Pool.Contract == "" {
			return savedPool{}, fmt.Errorf("pool-contract is required to read snapshots")
		}
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return savedPool{}, fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		snap, ok, err := store.LoadSnapshot(ctx, cfg.Pool.Contract)
		if err != nil {
			return savedPool{}, fmt.Errorf("load snapshot: %w", err)
		}
		if !ok {
			return savedPool{}, fmt.Errorf("no snapshot stored for pool %s", cfg.Pool.Contract)
		}
		saved = savedPool{Sequence: snap.Sequence, Digest: snap.Digest, State: snap.State, Balances: snap.Balances}
	} else {
		cp, ok, err := replay.LoadCheckpoint(cfg.State)
		if err != nil {
			return savedPool{}, err
		}
		if !ok {
			return savedPool{}, fmt.Errorf("no checkpoint at %s", cfg.State)
		}
		saved = savedPool{Sequence: cp.LastSequence, Digest: cp.Digest, State: cp.State, Balances: cp.Balances}
	}

	if saved.State.Observations == nil {
		return savedPool{}, fmt.Errorf("saved pool state is empty")
	}
	if cfg.Pool.Contract != "" && saved.State.Config.Pair.Contract != cfg.Pool.Contract {
		return savedPool{}, fmt.Errorf("saved pool is %s, not %s", saved.State.Config.Pair.Contract, cfg.Pool.Contract)
	}
	return saved, nil
}

// queryInputs resolves the balances and the time a query runs with.
// Balances come from the saved ledger unless an RPC URL is configured.
func queryInputs(ctx context.Context, cfg config.QueryConfig, saved savedPool, logger *zap.Logger) (pool.Snapshot, pool.Env, error) {
	at, err := config.ParseTimestamp(cfg.At)
	if err != nil {
		return pool.Snapshot{}, pool.Env{}, fmt.Errorf("parse at: %w", err)
	}

	if cfg.RPCURL == "" {
		if at == 0 {
			at = uint64(time.Now().Unix())
		}
		snap := ledger.Restore(saved.State.Config.Pair, saved.Balances).Snapshot()
		return snap, pool.Env{Time: at}, nil
	}

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return pool.Snapshot{}, pool.Env{}, fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	chainID, err := client.GetChainID(ctx)
	if err != nil {
		return pool.Snapshot{}, pool.Env{}, fmt.Errorf("chain id: %w", err)
	}
	number := cfg.Block
	if number == 0 {
		// pin latest so balances and timestamp come from the same block
		if number, err = client.LatestBlockNumber(ctx); err != nil {
			return pool.Snapshot{}, pool.Env{}, fmt.Errorf("latest block: %w", err)
		}
	}
	block := new(big.Int).SetUint64(number)
	logger.Debug("reading pool balances", zap.String("chain_id", chainID.String()), zap.Uint64("block", number))
	snap, err := client.PoolSnapshot(ctx, saved.State.Config.Pair, block)
	if err != nil {
		return pool.Snapshot{}, pool.Env{}, fmt.Errorf("read pool balances: %w", err)
	}
	if at == 0 {
		if at, err = client.BlockTimestamp(ctx, block); err != nil {
			return pool.Snapshot{}, pool.Env{}, fmt.Errorf("block timestamp: %w", err)
		}
	}
	return snap, pool.Env{Time: at}, nil
}

func loadQueryContext(ctx context.Context, cfg config.QueryConfig, logger *zap.Logger) (savedPool, pool.Snapshot, pool.Env, error) {
	saved, err := loadSavedPool(ctx, cfg)
	if err != nil {
		return savedPool{}, pool.Snapshot{}, pool.Env{}, err
	}
	snap, env, err := queryInputs(ctx, cfg, saved, logger)
	if err != nil {
		return savedPool{}, pool.Snapshot{}, pool.Env{}, err
	}

	logger.Info("pool loaded",
		zap.String("pool", saved.State.Config.Pair.Contract),
		zap.Uint64("sequence", saved.Sequence),
		zap.String("digest", saved.Digest),
		zap.Uint64("time", env.Time),
		zap.Bool("live_balances", cfg.RPCURL != ""),
	)
	return saved, snap, env, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
