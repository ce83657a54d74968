package replay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"concentratedLiquidity/internal/ledger"
	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/pcl"
	"concentratedLiquidity/internal/pool"
)

const t0 = uint64(1_700_000_000)

type memoryStorage struct {
	failures int
	records  []model.OperationRecord
}

func (m *memoryStorage) PutRecordBatch(_ context.Context, records []model.OperationRecord) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("storage unavailable")
	}
	m.records = append(m.records, records...)
	return nil
}

type memorySnapshots struct {
	last uint64
}

func (m *memorySnapshots) SaveSnapshot(_ context.Context, seq uint64, _ pool.State, _ ledger.Balances) error {
	m.last = seq
	return nil
}

func genesis(t *testing.T) pool.State {
	t.Helper()
	st, err := pool.Instantiate(pool.InstantiateParams{
		AssetInfos:     []model.AssetInfo{model.NativeAsset("uusd"), model.NativeAsset("uluna")},
		Precisions:     []uint8{6, 6},
		Contract:       "pool-contract",
		LiquidityToken: "0x00000000000000000000000000000000000000a1",
		Amp:            num.MustDecimal("40"),
		Gamma:          num.MustDecimal("0.000145"),
		Params: pcl.PoolParams{
			MidFee:               num.MustDecimal("0.0026"),
			OutFee:               num.MustDecimal("0.0045"),
			FeeGamma:             num.MustDecimal("0.00023"),
			RepegProfitThreshold: num.MustDecimal("0.000002"),
			MinPriceScaleDelta:   num.MustDecimal("0.000146"),
			MaHalfTime:           600,
		},
		PriceScale: num.MustDecimal("1"),
	}, t0)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return st
}

func provideOp(sender string, ts uint64, amount string) string {
	return fmt.Sprintf(`{"action":"provide_liquidity","sender":%q,"timestamp":%d,"msg":{"assets":[`+
		`{"info":{"kind":"native","id":"uusd"},"amount":%q},{"info":{"kind":"native","id":"uluna"},"amount":%q}]}}`,
		sender, ts, amount, amount)
}

func swapOp(sender string, ts uint64, amount string) string {
	return fmt.Sprintf(`{"action":"swap","sender":%q,"timestamp":%d,"msg":{"offer_asset":{"info":{"kind":"native","id":"uusd"},"amount":%q}}}`,
		sender, ts, amount)
}

func withdrawOp(sender string, ts uint64, amount string) string {
	return fmt.Sprintf(`{"action":"withdraw_liquidity","sender":%q,"timestamp":%d,"msg":{"amount":%q}}`, sender, ts, amount)
}

func writeOps(t *testing.T, path string, ops ...string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(ops, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write ops: %v", err)
	}
}

func runConfig(dir string) RunConfig {
	return RunConfig{
		Input:             filepath.Join(dir, "ops.jsonl"),
		BatchSize:         2,
		CheckpointPath:    filepath.Join(dir, "checkpoint.json"),
		CheckpointEnabled: true,
		MaxRetries:        2,
		RetryBackoff:      time.Millisecond,
		FactoryOwner:      "factory",
		Fee:               pool.FeeInfo{FeeAddress: "maker", MakerFeeBps: 3333},
	}
}

func TestRunnerAppliesOperations(t *testing.T) {
	dir := t.TempDir()
	cfg := runConfig(dir)
	writeOps(t, cfg.Input,
		provideOp("alice", t0, "1000000000000"),
		swapOp("bob", t0+10, "1000000"),
		withdrawOp("bob", t0+20, "1000"),
		`{"action":"migrate","sender":"bob","timestamp":1,"msg":{}}`,
		withdrawOp("alice", t0+30, "1000"),
	)

	sink := &memoryStorage{failures: 1}
	snapshots := &memorySnapshots{}
	runner := NewRunner(cfg, genesis(t), sink, snapshots, nil)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sink.records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(sink.records))
	}
	for i, record := range sink.records {
		if record.Sequence != uint64(i+1) || record.Pool != "pool-contract" {
			t.Fatalf("unexpected record header: %+v", record)
		}
	}
	if sink.records[0].Failed() || sink.records[0].StateDigest == "" {
		t.Fatalf("provide should succeed: %+v", sink.records[0])
	}
	if sink.records[1].Failed() {
		t.Fatalf("swap should succeed: %s", sink.records[1].Error)
	}
	if !sink.records[2].Failed() || !strings.Contains(sink.records[2].Error, "insufficient balance") {
		t.Fatalf("withdraw without share should fail: %+v", sink.records[2])
	}
	if !sink.records[3].Failed() || sink.records[3].Action != "" {
		t.Fatalf("undecodable operation should fail: %+v", sink.records[3])
	}
	if sink.records[4].Failed() {
		t.Fatalf("withdraw should succeed: %s", sink.records[4].Error)
	}
	if snapshots.last != 5 {
		t.Fatalf("snapshot not saved for last batch: %d", snapshots.last)
	}

	bal := runner.Balances()
	if got := bal.Holders["alice"].String(); got != "999999998000" {
		t.Fatalf("unexpected alice share: %s", got)
	}
	if got := bal.Holders["pool-contract"].String(); got != "1000" {
		t.Fatalf("unexpected locked share: %s", got)
	}
	if got := bal.TotalShare.String(); got != "999999999000" {
		t.Fatalf("unexpected total share: %s", got)
	}
	var paidMaker bool
	for _, tr := range sink.records[1].Transfers {
		if tr.Recipient == "maker" && !tr.Asset.Amount.IsZero() {
			paidMaker = true
		}
	}
	if !paidMaker {
		t.Fatalf("swap should pay the maker fee: %+v", sink.records[1].Transfers)
	}

	cp, ok, err := LoadCheckpoint(cfg.CheckpointPath)
	if err != nil || !ok {
		t.Fatalf("load checkpoint: %v %v", ok, err)
	}
	digest, err := runner.State().Digest()
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if cp.LastSequence != 5 || cp.Digest != digest {
		t.Fatalf("unexpected checkpoint: seq %d digest %s", cp.LastSequence, cp.Digest)
	}
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	dir := t.TempDir()
	cfg := runConfig(dir)
	ops := []string{
		provideOp("alice", t0, "1000000000000"),
		swapOp("bob", t0+10, "1000000"),
		withdrawOp("alice", t0+30, "1000"),
	}
	writeOps(t, cfg.Input, ops...)

	if err := NewRunner(cfg, genesis(t), &memoryStorage{}, nil, nil).Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	idle := &memoryStorage{}
	if err := NewRunner(cfg, genesis(t), idle, nil, nil).Run(context.Background()); err != nil {
		t.Fatalf("idle run: %v", err)
	}
	if len(idle.records) != 0 {
		t.Fatalf("nothing new should be replayed, got %d records", len(idle.records))
	}

	ops = append(ops,
		`{"action":"update_params","sender":"factory","timestamp":1700000100,"msg":{"update":{"mid_fee":"0.003"}}}`,
		swapOp("carol", t0+200, "5000000"),
	)
	writeOps(t, cfg.Input, ops...)

	resumedSink := &memoryStorage{}
	resumed := NewRunner(cfg, genesis(t), resumedSink, nil, nil)
	if err := resumed.Run(context.Background()); err != nil {
		t.Fatalf("resumed run: %v", err)
	}
	if len(resumedSink.records) != 2 || resumedSink.records[0].Sequence != 4 {
		t.Fatalf("unexpected resumed records: %+v", resumedSink.records)
	}
	for _, record := range resumedSink.records {
		if record.Failed() {
			t.Fatalf("operation %d failed: %s", record.Sequence, record.Error)
		}
	}
	if got := resumed.State().Config.Params.MidFee; !got.Equal(num.MustDecimal("0.003")) {
		t.Fatalf("update not applied: %s", got)
	}

	fullCfg := cfg
	fullCfg.CheckpointEnabled = false
	full := NewRunner(fullCfg, genesis(t), &memoryStorage{}, nil, nil)
	if err := full.Run(context.Background()); err != nil {
		t.Fatalf("full run: %v", err)
	}

	resumedDigest, err := resumed.State().Digest()
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	fullDigest, err := full.State().Digest()
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if resumedDigest != fullDigest {
		t.Fatalf("resumed replay diverged: %s != %s", resumedDigest, fullDigest)
	}
}

func TestRunnerFailsWhenStorageStaysDown(t *testing.T) {
	dir := t.TempDir()
	cfg := runConfig(dir)
	writeOps(t, cfg.Input, provideOp("alice", t0, "1000000000000"))

	sink := &memoryStorage{failures: 10}
	err := NewRunner(cfg, genesis(t), sink, nil, nil).Run(context.Background())
	if err == nil {
		t.Fatalf("expected storage error")
	}
	if _, ok, _ := LoadCheckpoint(cfg.CheckpointPath); ok {
		t.Fatalf("checkpoint must not advance past unstored records")
	}
}
