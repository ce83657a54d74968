package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"concentratedLiquidity/internal/ledger"
	"concentratedLiquidity/internal/pool"
)

// Checkpoint is the pool after the last fully stored batch.
type Checkpoint struct {
	LastSequence uint64          `json:"last_sequence"`
	Digest       string          `json:"digest"`
	State        pool.State      `json:"state"`
	Balances     ledger.Balances `json:"balances"`
	UpdatedAt    string          `json:"updated_at"`
}

// CheckpointStore persists checkpoints to disk.
type CheckpointStore struct {
	path    string
	enabled bool
}

func NewCheckpointStore(path string, enabled bool) *CheckpointStore {
	return &CheckpointStore{path: path, enabled: enabled && path != ""}
}

// LoadCheckpoint reads a checkpoint file regardless of whether checkpointing is enabled.
func LoadCheckpoint(path string) (Checkpoint, bool, error) {
	return NewCheckpointStore(path, true).Load()
}

func (c *CheckpointStore) Load() (Checkpoint, bool, error) {
	if !c.enabled {
		return Checkpoint{}, false, nil
	}

	stat, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf("stat checkpoint: %w", err)
	}
	if stat.IsDir() {
		return Checkpoint{}, false, fmt.Errorf("checkpoint path is a directory")
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("parse checkpoint: %w", err)
	}
	if cp.State.Observations == nil {
		return Checkpoint{}, false, fmt.Errorf("checkpoint has no pool state")
	}
	return cp, true, nil
}

func (c *CheckpointStore) Save(seq uint64, st pool.State, balances ledger.Balances) error {
	if !c.enabled {
		return nil
	}

	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	digest, err := st.Digest()
	if err != nil {
		return fmt.Errorf("digest state: %w", err)
	}
	data, err := json.MarshalIndent(Checkpoint{
		LastSequence: seq,
		Digest:       digest,
		State:        st,
		Balances:     balances,
		UpdatedAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}
