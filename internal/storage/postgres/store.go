package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"concentratedLiquidity/internal/ledger"
	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/pool"
)

//go:embed schema.sql
var schemaSQL string

// Store provides Postgres persistence for operation records, pool snapshots and metrics.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pgPool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pgPool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// PutRecordBatch inserts operation records. Records already stored are left untouched,
// which makes replays after a crash idempotent.
func (s *Store) PutRecordBatch(ctx context.Context, records []model.OperationRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		attributes, err := json.Marshal(nonNil(r.Attributes))
		if err != nil {
			return fmt.Errorf("marshal attributes %d: %w", r.Sequence, err)
		}
		transfers, err := json.Marshal(nonNil(r.Transfers))
		if err != nil {
			return fmt.Errorf("marshal transfers %d: %w", r.Sequence, err)
		}
		processedAt, err := time.Parse(time.RFC3339Nano, r.ProcessedAt)
		if err != nil {
			processedAt = time.Now().UTC()
		}
		batch.Queue(`
			INSERT INTO pool_operations (
				pool, sequence, action, sender, ts, attributes, transfers, state_digest, error, processed_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (pool, sequence) DO NOTHING
		`,
			r.Pool,
			int64(r.Sequence),
			r.Action,
			r.Sender,
			int64(r.Timestamp),
			attributes,
			transfers,
			r.StateDigest,
			r.Error,
			processedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Snapshot is the persisted state of one pool after a given operation.
type Snapshot struct {
	Pool     string
	Sequence uint64
	Digest   string
	State    pool.State
	Balances ledger.Balances
}

// SaveSnapshot upserts the latest snapshot of a pool.
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	state, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	balances, err := json.Marshal(snap.Balances)
	if err != nil {
		return fmt.Errorf("marshal balances: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO pool_snapshots (pool, sequence, digest, state, balances, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (pool) DO UPDATE
		SET sequence = EXCLUDED.sequence,
			digest = EXCLUDED.digest,
			state = EXCLUDED.state,
			balances = EXCLUDED.balances,
			updated_at = now()
		WHERE pool_snapshots.sequence <= EXCLUDED.sequence
	`, snap.Pool, int64(snap.Sequence), snap.Digest, state, balances)
	return err
}

// LoadSnapshot returns the latest snapshot of a pool.
func (s *Store) LoadSnapshot(ctx context.Context, poolName string) (Snapshot, bool, error) {
	var (
		seq      int64
		digest   string
		state    []byte
		balances []byte
	)
	row := s.pool.QueryRow(ctx, `SELECT sequence, digest, state, balances FROM pool_snapshots WHERE pool=$1`, poolName)
	if err := row.Scan(&seq, &digest, &state, &balances); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}

	snap := Snapshot{Pool: poolName, Sequence: uint64(seq), Digest: digest}
	if err := json.Unmarshal(state, &snap.State); err != nil {
		return Snapshot{}, false, fmt.Errorf("parse state: %w", err)
	}
	if err := json.Unmarshal(balances, &snap.Balances); err != nil {
		return Snapshot{}, false, fmt.Errorf("parse balances: %w", err)
	}
	return snap, true, nil
}

// UpsertWindowMetrics inserts or updates window metrics.
func (s *Store) UpsertWindowMetrics(ctx context.Context, metrics []model.PoolWindowMetrics) error {
	if len(metrics) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range metrics {
		batch.Queue(`
			INSERT INTO pool_window_metrics (
				pool, window_size_seconds, window_start_ts, window_end_ts,
				swap_count, provide_count, withdraw_count, volume0, volume1, fee0, fee1,
				maker_fee0, maker_fee1, share_fee0, share_fee1, avg_price, last_digest, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,now(),now())
			ON CONFLICT (pool, window_size_seconds, window_start_ts)
			DO UPDATE SET
				window_end_ts = EXCLUDED.window_end_ts,
				swap_count = EXCLUDED.swap_count,
				provide_count = EXCLUDED.provide_count,
				withdraw_count = EXCLUDED.withdraw_count,
				volume0 = EXCLUDED.volume0,
				volume1 = EXCLUDED.volume1,
				fee0 = EXCLUDED.fee0,
				fee1 = EXCLUDED.fee1,
				maker_fee0 = EXCLUDED.maker_fee0,
				maker_fee1 = EXCLUDED.maker_fee1,
				share_fee0 = EXCLUDED.share_fee0,
				share_fee1 = EXCLUDED.share_fee1,
				avg_price = EXCLUDED.avg_price,
				last_digest = EXCLUDED.last_digest,
				updated_at = now()
		`,
			m.Pool,
			m.WindowSizeSecs,
			m.WindowStart,
			m.WindowEnd,
			int64(m.SwapCount),
			int64(m.ProvideCount),
			int64(m.WithdrawCount),
			m.Volume0,
			m.Volume1,
			m.Fee0,
			m.Fee1,
			m.MakerFee0,
			m.MakerFee1,
			m.ShareFee0,
			m.ShareFee1,
			m.AvgPrice,
			m.LastDigest,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range metrics {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the last processed position stored under name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var last int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed FROM runner_state WHERE name=$1`, name)
	if err := row.Scan(&last); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(last), true, nil
}

// SaveState upserts the last processed position for name.
func (s *Store) SaveState(ctx context.Context, name string, last uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO runner_state (name, last_processed, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed = EXCLUDED.last_processed, updated_at = now()
	`, name, int64(last))
	return err
}
