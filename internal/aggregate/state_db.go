package aggregate

import (
	"context"
	"fmt"
)

// PositionStore is the part of the Postgres store that keeps named runner positions.
type PositionStore interface {
	LoadState(ctx context.Context, name string) (uint64, bool, error)
	SaveState(ctx context.Context, name string, last uint64) error
}

// DBStateStore stores state in the runner_state table.
type DBStateStore struct {
	Store PositionStore
	Name  string
}

// StateName is the runner_state key of an aggregation over a pool and window size.
func StateName(pool string, windowSeconds uint64) string {
	return fmt.Sprintf("aggregate:%s:%d", pool, windowSeconds)
}

func (s *DBStateStore) Load(ctx context.Context) (uint64, bool, error) {
	if s == nil || s.Store == nil {
		return 0, false, nil
	}
	return s.Store.LoadState(ctx, s.Name)
}

func (s *DBStateStore) Save(ctx context.Context, sequence uint64) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveState(ctx, s.Name, sequence)
}
