package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"concentratedLiquidity/internal/config"
	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/pool"
)

type simulateOutput struct {
	Pool       pool.PoolResponse               `json:"pool"`
	D          num.Decimal                     `json:"d"`
	Simulation *pool.SimulationResponse        `json:"simulation,omitempty"`
	Reverse    *pool.ReverseSimulationResponse `json:"reverse_simulation,omitempty"`
}

func runSimulate(cmd *cobra.Command, _ []string) error {
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

	out, err := simulate(saved.State, env, snap, feeInfo(cfg.Factory), cfg)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func simulate(st pool.State, env pool.Env, snap pool.Snapshot, fee pool.FeeInfo, cfg config.QueryConfig) (simulateOutput, error) {
	amount, err := num.UintFromString(cfg.Amount)
	if err != nil {
		return simulateOutput{}, fmt.Errorf("invalid amount %q: %w", cfg.Amount, err)
	}
	offer, err := optionalAsset(cfg.Offer)
	if err != nil {
		return simulateOutput{}, err
	}
	ask, err := optionalAsset(cfg.Ask)
	if err != nil {
		return simulateOutput{}, err
	}

	out := simulateOutput{Pool: pool.QueryPool(st, snap)}
	if out.D, err = pool.QueryComputeD(st, env, snap); err != nil {
		return simulateOutput{}, err
	}

	if cfg.Reverse {
		if ask == nil {
			return simulateOutput{}, fmt.Errorf("ask asset is required for a reverse simulation")
		}
		resp, err := pool.QueryReverseSimulation(st, env, snap, model.Asset{Info: *ask, Amount: amount}, offer)
		if err != nil {
			return simulateOutput{}, err
		}
		out.Reverse = &resp
		return out, nil
	}

	if offer == nil {
		return simulateOutput{}, fmt.Errorf("offer asset is required")
	}
	resp, err := pool.QuerySimulation(st, env, snap, fee, model.Asset{Info: *offer, Amount: amount}, ask)
	if err != nil {
		return simulateOutput{}, err
	}
	out.Simulation = &resp
	return out, nil
}

func optionalAsset(raw string) (*model.AssetInfo, error) {
	if raw == "" {
		return nil, nil
	}
	info, err := model.ParseAssetInfo(raw)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
