package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/pool"
	"concentratedLiquidity/internal/storage"
)

// MetricsSink receives finished windows.
type MetricsSink interface {
	UpsertWindowMetrics(ctx context.Context, metrics []model.PoolWindowMetrics) error
}

// Config controls aggregation behavior.
type Config struct {
	Pair          pool.PairInfo
	WindowSeconds uint64
	BatchSize     int
	// RecomputeFrom restarts aggregation at this operation sequence, ignoring saved state.
	RecomputeFrom uint64
	StateStore    StateStore
}

// Aggregator folds operation records of one pool into window metrics.
type Aggregator struct {
	cfg    Config
	sink   MetricsSink
	logger *zap.Logger
	acc    *Accumulator
	// done is the highest sequence read so far.
	done uint64
}

func NewAggregator(cfg Config, sink MetricsSink, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{cfg: cfg, sink: sink, logger: logger}
}

// Run executes aggregation over an operation records JSONL file.
func (a *Aggregator) Run(ctx context.Context, inputPath string) error {
	if a.sink == nil {
		return fmt.Errorf("metrics sink is nil")
	}
	if a.cfg.WindowSeconds == 0 {
		return fmt.Errorf("window seconds must be > 0")
	}
	if a.cfg.BatchSize <= 0 {
		a.cfg.BatchSize = 1000
	}

	after, err := a.loadStartSequence(ctx)
	if err != nil {
		return err
	}
	a.done = after

	batch := make([]model.PoolWindowMetrics, 0, a.cfg.BatchSize)
	var total, aggregated, skipped, rejected, failed int

	err = storage.ReadRecords(inputPath, func(record model.OperationRecord) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		total++

		if record.Pool != a.cfg.Pair.Contract || record.Sequence <= after {
			skipped++
			return nil
		}
		if record.Sequence > a.done {
			a.done = record.Sequence
		}
		if record.Failed() {
			rejected++
			return nil
		}

		start := windowStart(record.Timestamp, a.cfg.WindowSeconds)
		if a.acc != nil && a.acc.WindowStart != start {
			batch = append(batch, a.flushAccumulator(a.acc))
			a.acc = nil
		}
		if a.acc == nil {
			a.acc = NewAccumulator(record, start, start+a.cfg.WindowSeconds)
		}

		if err := a.acc.AddRecord(a.cfg.Pair, record); err != nil {
			failed++
			a.logger.Warn("aggregate record", zap.Error(err), zap.Uint64("sequence", record.Sequence), zap.String("action", record.Action))
			return nil
		}
		aggregated++

		if len(batch) >= a.cfg.BatchSize {
			if err := a.sink.UpsertWindowMetrics(ctx, batch); err != nil {
				return fmt.Errorf("store metrics: %w", err)
			}
			batch = batch[:0]
			if err := a.saveState(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if a.acc != nil {
		batch = append(batch, a.flushAccumulator(a.acc))
	}
	if len(batch) > 0 {
		if err := a.sink.UpsertWindowMetrics(ctx, batch); err != nil {
			return fmt.Errorf("store metrics: %w", err)
		}
	}
	// The last window may still grow; keep it open for the next run.
	if err := a.saveState(ctx); err != nil {
		return err
	}

	a.logger.Info("aggregate complete",
		zap.Int("total", total),
		zap.Int("aggregated", aggregated),
		zap.Int("skipped", skipped),
		zap.Int("rejected", rejected),
		zap.Int("failed", failed),
	)
	return nil
}

func (a *Aggregator) loadStartSequence(ctx context.Context) (uint64, error) {
	if a.cfg.RecomputeFrom > 0 {
		return a.cfg.RecomputeFrom - 1, nil
	}
	if a.cfg.StateStore == nil {
		return 0, nil
	}
	last, ok, err := a.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return last, nil
}

func (a *Aggregator) saveState(ctx context.Context) error {
	if a.cfg.StateStore == nil {
		return nil
	}
	safe := a.done
	if a.acc != nil {
		safe = a.acc.FirstSequence - 1
	}
	return a.cfg.StateStore.Save(ctx, safe)
}

func (a *Aggregator) flushAccumulator(acc *Accumulator) model.PoolWindowMetrics {
	prec := a.cfg.Pair.Precisions
	return model.PoolWindowMetrics{
		Pool:           acc.Pool,
		WindowSizeSecs: int64(a.cfg.WindowSeconds),
		WindowStart:    time.Unix(int64(acc.WindowStart), 0).UTC(),
		WindowEnd:      time.Unix(int64(acc.WindowEnd), 0).UTC(),
		SwapCount:      acc.SwapCount,
		ProvideCount:   acc.ProvideCount,
		WithdrawCount:  acc.WithdrawCount,
		Volume0:        formatTokenAmount(acc.Volume[0], prec[0]),
		Volume1:        formatTokenAmount(acc.Volume[1], prec[1]),
		Fee0:           formatTokenAmount(acc.Fee[0], prec[0]),
		Fee1:           formatTokenAmount(acc.Fee[1], prec[1]),
		MakerFee0:      formatTokenAmount(acc.MakerFee[0], prec[0]),
		MakerFee1:      formatTokenAmount(acc.MakerFee[1], prec[1]),
		ShareFee0:      formatTokenAmount(acc.ShareFee[0], prec[0]),
		ShareFee1:      formatTokenAmount(acc.ShareFee[1], prec[1]),
		AvgPrice:       averagePrice(acc.Volume[0], acc.Volume[1], prec[0], prec[1]),
		LastDigest:     acc.LastDigest,
	}
}

func windowStart(ts uint64, windowSec uint64) uint64 {
	return ts - (ts % windowSec)
}
