package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"concentratedLiquidity/internal/config"
	"concentratedLiquidity/internal/observation"
	"concentratedLiquidity/internal/pool"
)

type twapOutput struct {
	Time       uint64                        `json:"time"`
	Config     pool.ConfigResponse           `json:"config"`
	Cumulative pool.CumulativePricesResponse `json:"cumulative"`
	SecondsAgo uint64                        `json:"seconds_ago,omitempty"`
	Observed   *observation.Prices           `json:"observed,omitempty"`
}

func runTwap(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuery(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	saved, snap, env, err := loadQueryContext(ctx, cfg, logger)
	if err != nil {
		return err
	}

	out, err := twap(saved.State, env, snap, cfg.SecondsAgo)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func twap(st pool.State, env pool.Env, snap pool.Snapshot, secondsAgo uint64) (twapOutput, error) {
	out := twapOutput{Time: env.Time, SecondsAgo: secondsAgo}

	var err error
	if out.Config, err = pool.QueryConfig(st, env); err != nil {
		return twapOutput{}, err
	}
	if out.Cumulative, err = pool.QueryCumulativePrices(st, env, snap); err != nil {
		return twapOutput{}, err
	}
	if secondsAgo > 0 {
		observed, err := pool.QueryObserve(st, env, secondsAgo)
		if err != nil {
			return twapOutput{}, err
		}
		out.Observed = &observed
	}
	return out, nil
}
