package replay

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"concentratedLiquidity/internal/ledger"
	"concentratedLiquidity/internal/message"
	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/pool"
	"concentratedLiquidity/internal/storage"
)

// RunConfig holds runtime settings for a replay.
type RunConfig struct {
	Input             string
	BatchSize         uint64
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	FactoryOwner      string
	Fee               pool.FeeInfo
}

// SnapshotSink receives the pool after every stored batch.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, seq uint64, st pool.State, balances ledger.Balances) error
}

// Runner applies an operation log to a pool and writes one record per operation.
type Runner struct {
	cfg        RunConfig
	engine     *pool.Engine
	storage    storage.Storage
	snapshots  SnapshotSink
	logger     *zap.Logger
	retry      retryPolicy
	checkpoint *CheckpointStore

	state  pool.State
	ledger *ledger.Ledger
}

// NewRunner builds a Runner starting from genesis unless a checkpoint says otherwise.
// snapshots may be nil.
func NewRunner(cfg RunConfig, genesis pool.State, sink storage.Storage, snapshots SnapshotSink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		engine:     pool.NewEngine(logger),
		storage:    sink,
		snapshots:  snapshots,
		logger:     logger,
		retry:      newRetryPolicy(cfg.MaxRetries, cfg.RetryBackoff, logger),
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
		state:      genesis,
		ledger:     ledger.New(genesis.Config.Pair),
	}
}

// State returns the pool as of the last applied operation.
func (r *Runner) State() pool.State {
	return r.state
}

// Balances returns the ledger as of the last applied operation.
func (r *Runner) Balances() ledger.Balances {
	return r.ledger.Balances()
}

// Run executes the replay loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if r.state.Observations == nil {
		return fmt.Errorf("genesis pool state is empty")
	}

	from := uint64(1)
	cp, ok, err := r.checkpoint.Load()
	if err != nil {
		return err
	}
	if ok {
		r.state = cp.State
		r.ledger = ledger.Restore(cp.State.Config.Pair, cp.Balances)
		from = cp.LastSequence + 1
		r.logger.Info("resume from checkpoint", zap.Uint64("last_sequence", cp.LastSequence), zap.String("digest", cp.Digest))
	}

	lines, err := readOperationLog(r.cfg.Input)
	if err != nil {
		return err
	}
	to := uint64(len(lines))
	if from > to {
		r.logger.Info("nothing to replay", zap.Uint64("from", from), zap.Uint64("operations", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	poolName := r.state.Config.Pair.Contract
	for _, seqRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		records := make([]model.OperationRecord, 0, seqRange.To-seqRange.From+1)
		var rejected int
		for seq := seqRange.From; seq <= seqRange.To; seq++ {
			o := r.apply(seq, lines[seq-1])
			if o.err != nil {
				rejected++
			}
			records = append(records, buildRecord(seq, poolName, o, time.Now()))
		}

		if err := r.retry.do(ctx, "store records", func(ctx context.Context) error {
			return r.storage.PutRecordBatch(ctx, records)
		}); err != nil {
			return fmt.Errorf("store records: %w", err)
		}

		balances := r.ledger.Balances()
		if r.snapshots != nil {
			if err := r.retry.do(ctx, "store snapshot", func(ctx context.Context) error {
				return r.snapshots.SaveSnapshot(ctx, seqRange.To, r.state, balances)
			}); err != nil {
				return fmt.Errorf("store snapshot: %w", err)
			}
		}

		if err := r.checkpoint.Save(seqRange.To, r.state, balances); err != nil {
			return err
		}

		r.logger.Info("batch complete",
			zap.Uint64("from", seqRange.From),
			zap.Uint64("to", seqRange.To),
			zap.Int("records", len(records)),
			zap.Int("rejected", rejected),
		)
	}

	digest, err := r.state.Digest()
	if err != nil {
		return err
	}
	r.logger.Info("replay complete", zap.Uint64("last_sequence", to), zap.String("digest", digest))
	return nil
}

// apply decodes and executes one operation. A rejected operation leaves pool and ledger untouched.
func (r *Runner) apply(seq uint64, line []byte) outcome {
	op, err := message.Decode(line, r.cfg.FactoryOwner)
	if err != nil {
		r.logger.Warn("decode operation", zap.Uint64("sequence", seq), zap.Error(err))
		return outcome{err: err}
	}
	o := outcome{action: op.Action, sender: op.Sender, timestamp: op.Timestamp}

	env := pool.Env{Time: op.Timestamp}
	snap := r.ledger.Snapshot()
	settlement := ledger.Settlement{Sender: op.Sender}

	var next pool.State
	switch {
	case op.Provide != nil:
		next, o.result, err = r.engine.ProvideLiquidity(r.state, env, snap, *op.Provide)
		settlement.Incoming = op.Provide.Assets
	case op.Withdraw != nil:
		next, o.result, err = r.engine.WithdrawLiquidity(r.state, env, snap, *op.Withdraw)
		settlement.ShareIn = op.Withdraw.Amount
	case op.Swap != nil:
		next, o.result, err = r.engine.Swap(r.state, env, snap, r.cfg.Fee, *op.Swap)
		settlement.Incoming = []model.Asset{op.Swap.OfferAsset}
	case op.Update != nil:
		next, o.result, err = r.engine.UpdateParams(r.state, env, *op.Update)
	default:
		err = fmt.Errorf("%w: no message for %q", message.ErrInvalidOperation, op.Action)
	}
	if err == nil {
		o.digest, err = next.Digest()
	}
	if err == nil {
		settlement.Result = o.result
		err = r.ledger.Commit(settlement)
	}
	if err != nil {
		r.logger.Debug("operation rejected", zap.Uint64("sequence", seq), zap.String("action", op.Action), zap.Error(err))
		o.err = err
		return o
	}

	r.state = next
	return o
}

func readOperationLog(path string) ([][]byte, error) {
	var lines [][]byte
	err := storage.ScanLines(path, func(_ uint64, line []byte) error {
		lines = append(lines, append([]byte(nil), line...))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}
