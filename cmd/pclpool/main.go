package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "pclpool",
		Short:        "Concentrated liquidity pool engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply an operation log to the pool",
		RunE:  runReplay,
	}

	addPoolFlags(replayCmd.Flags())
	addFactoryFlags(replayCmd.Flags())
	replayCmd.Flags().String("in", "", "input operations JSONL")
	replayCmd.Flags().String("out", "./data/records.jsonl", "output operation records JSONL")
	replayCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	replayCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	replayCmd.Flags().Uint64("batch-size", 500, "operations per batch")
	replayCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for records and snapshots")
	replayCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	replayCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a swap against the saved pool state",
		RunE:  runSimulate,
	}

	addPoolFlags(simulateCmd.Flags())
	addFactoryFlags(simulateCmd.Flags())
	addQueryFlags(simulateCmd.Flags())
	simulateCmd.Flags().String("offer", "", "offer asset (native:<denom> or token:<address>)")
	simulateCmd.Flags().String("ask", "", "optional ask asset")
	simulateCmd.Flags().String("amount", "", "offer amount, or ask amount with --reverse")
	simulateCmd.Flags().Bool("reverse", false, "compute the offer needed for the given ask amount")

	root.AddCommand(simulateCmd)

	twapCmd := &cobra.Command{
		Use:   "twap",
		Short: "Query cumulative and observed prices",
		RunE:  runTwap,
	}

	addPoolFlags(twapCmd.Flags())
	addFactoryFlags(twapCmd.Flags())
	addQueryFlags(twapCmd.Flags())
	twapCmd.Flags().Uint64("seconds-ago", 0, "also return the average price over this many seconds")

	root.AddCommand(twapCmd)

	aggregateCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate operation records into window metrics",
		RunE:  runAggregate,
	}

	addPoolFlags(aggregateCmd.Flags())
	aggregateCmd.Flags().String("in", "./data/records.jsonl", "input operation records JSONL")
	aggregateCmd.Flags().String("window", "5m", "aggregation window (e.g. 1m, 5m, 1h)")
	aggregateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	aggregateCmd.Flags().Int("batch-size", 1000, "batch size for DB writes")
	aggregateCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	aggregateCmd.Flags().Uint64("recompute-from", 0, "recompute from this operation sequence")
	aggregateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(aggregateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPoolFlags(fs *pflag.FlagSet) {
	fs.StringSlice("pool-assets", nil, "pool assets in order (native:<denom> or token:<address>)")
	fs.StringSlice("pool-precisions", nil, "asset decimals in pool order")
	fs.String("pool-contract", "", "pool contract address")
	fs.String("pool-lp-token", "", "liquidity token address")
	fs.String("pool-owner", "", "pool owner, defaults to the factory owner")
	fs.String("amp", "40", "amplification")
	fs.String("gamma", "0.000145", "gamma")
	fs.String("mid-fee", "0.0026", "fee for a balanced pool")
	fs.String("out-fee", "0.0045", "fee for an imbalanced pool")
	fs.String("fee-gamma", "0.00023", "fee curve steepness")
	fs.String("repeg-profit-threshold", "0.000002", "profit required before repegging")
	fs.String("min-price-scale-delta", "0.000146", "minimum price scale move")
	fs.Uint64("ma-half-time", 600, "price oracle half time in seconds")
	fs.String("price-scale", "1", "initial price scale")
	fs.Int("observation-capacity", 3000, "TWAP observation ring size")
	fs.Uint16("fee-share-bps", 0, "share of swap fees diverted to fee-share-address")
	fs.String("fee-share-address", "", "fee share recipient")
	fs.String("init-time", "", "pool creation time (unix seconds or RFC3339)")
}

func addFactoryFlags(fs *pflag.FlagSet) {
	fs.String("factory-owner", "", "factory owner, allowed to update params")
	fs.String("fee-address", "", "maker fee recipient")
	fs.Uint16("maker-fee-bps", 0, "maker fee share of the swap fee")
}

func addQueryFlags(fs *pflag.FlagSet) {
	fs.String("state", "./data/checkpoint.json", "replay checkpoint to read the pool from")
	fs.String("pg-dsn", "", "read the latest pool snapshot from Postgres instead")
	fs.String("rpc", "", "optional EVM RPC URL for live balances")
	fs.Uint64("block", 0, "block to read balances at, 0 means latest")
	fs.String("at", "", "query time (unix seconds or RFC3339)")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
