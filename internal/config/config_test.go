package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadReplayDefaults(t *testing.T) {
	cfg, err := LoadReplay("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Pool.Amp != "40" || cfg.Pool.Gamma != "0.000145" || cfg.Pool.MaHalfTime != 600 {
		t.Fatalf("unexpected pool defaults: %+v", cfg.Pool)
	}
	if cfg.Pool.ObservationCapacity != 3000 || cfg.Pool.PriceScale != "1" {
		t.Fatalf("unexpected pool defaults: %+v", cfg.Pool)
	}
	if cfg.BatchSize != 500 || !cfg.CheckpointEnabled || cfg.RetryBackoff != 500*time.Millisecond {
		t.Fatalf("unexpected replay defaults: %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
}

func TestLoadReplayMergesSources(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "pcl.yaml")
	content := []byte(`
pool-assets:
  - native:uusd
  - token:0x00000000000000000000000000000000000000b2
pool-precisions: [6, 18]
pool-contract: pool-1
mid-fee: "0.001"
maker-fee-bps: 3333
batch-size: 50
`)
	if err := os.WriteFile(cfgFile, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PCL_MID_FEE", "0.002")
	t.Setenv("PCL_FACTORY_OWNER", "owner-from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Uint64("batch-size", 500, "")
	flags.String("out", "./data/records.jsonl", "")
	if err := flags.Parse([]string{"--batch-size", "7"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadReplay(cfgFile, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	wantAssets := []string{"native:uusd", "token:0x00000000000000000000000000000000000000b2"}
	if !reflect.DeepEqual(cfg.Pool.Assets, wantAssets) {
		t.Fatalf("assets mismatch: %v", cfg.Pool.Assets)
	}
	if !reflect.DeepEqual(cfg.Pool.Precisions, []string{"6", "18"}) {
		t.Fatalf("precisions mismatch: %v", cfg.Pool.Precisions)
	}
	if cfg.Pool.MidFee != "0.002" {
		t.Fatalf("env should override file: %s", cfg.Pool.MidFee)
	}
	if cfg.Factory.Owner != "owner-from-env" || cfg.Factory.MakerFeeBps != 3333 {
		t.Fatalf("unexpected factory config: %+v", cfg.Factory)
	}
	if cfg.BatchSize != 7 {
		t.Fatalf("flag should override file: %d", cfg.BatchSize)
	}
	if cfg.Out != "./data/records.jsonl" {
		t.Fatalf("unexpected out: %s", cfg.Out)
	}
}

func TestLoadReplayMissingFile(t *testing.T) {
	if _, err := LoadReplay(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestSplitAndClean(t *testing.T) {
	got := splitAndClean(" native:uusd , ,native:uluna")
	want := []string{"native:uusd", "native:uluna"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("split mismatch: %v", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{in: "", want: 0},
		{in: "1700000000", want: 1_700_000_000},
		{in: "2023-11-14T22:13:20Z", want: 1_700_000_000},
		{in: "yesterday", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("%q: got %d, want %d", tt.in, got, tt.want)
		}
	}
}
