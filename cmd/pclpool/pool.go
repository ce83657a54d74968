package main

import (
	"fmt"
	"strconv"

	"concentratedLiquidity/internal/config"
	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/pcl"
	"concentratedLiquidity/internal/pool"
)

// instantiateParams converts the configured pool into engine creation parameters.
func instantiateParams(cfg config.PoolConfig, factory config.FactoryConfig) (pool.InstantiateParams, error) {
	if len(cfg.Assets) != 2 || len(cfg.Precisions) != 2 {
		return pool.InstantiateParams{}, fmt.Errorf("pool needs exactly two assets and two precisions, got %d and %d", len(cfg.Assets), len(cfg.Precisions))
	}

	p := pool.InstantiateParams{
		Contract:            cfg.Contract,
		LiquidityToken:      cfg.LiquidityToken,
		Owner:               cfg.Owner,
		ObservationCapacity: cfg.ObservationCapacity,
	}
	if p.Owner == "" {
		p.Owner = factory.Owner
	}

	for i, raw := range cfg.Assets {
		info, err := model.ParseAssetInfo(raw)
		if err != nil {
			return pool.InstantiateParams{}, err
		}
		precision, err := strconv.ParseUint(cfg.Precisions[i], 10, 8)
		if err != nil {
			return pool.InstantiateParams{}, fmt.Errorf("invalid precision %q: %w", cfg.Precisions[i], err)
		}
		p.AssetInfos = append(p.AssetInfos, info)
		p.Precisions = append(p.Precisions, uint8(precision))
	}

	decimals := []struct {
		name  string
		value string
		dst   *num.Decimal
	}{
		{"amp", cfg.Amp, &p.Amp},
		{"gamma", cfg.Gamma, &p.Gamma},
		{"mid-fee", cfg.MidFee, &p.Params.MidFee},
		{"out-fee", cfg.OutFee, &p.Params.OutFee},
		{"fee-gamma", cfg.FeeGamma, &p.Params.FeeGamma},
		{"repeg-profit-threshold", cfg.RepegProfitThreshold, &p.Params.RepegProfitThreshold},
		{"min-price-scale-delta", cfg.MinPriceScaleDelta, &p.Params.MinPriceScaleDelta},
		{"price-scale", cfg.PriceScale, &p.PriceScale},
	}
	for _, d := range decimals {
		v, err := num.DecimalFromString(d.value)
		if err != nil {
			return pool.InstantiateParams{}, fmt.Errorf("invalid %s %q: %w", d.name, d.value, err)
		}
		*d.dst = v
	}
	p.Params.MaHalfTime = cfg.MaHalfTime

	if cfg.FeeShareBps != 0 || cfg.FeeShareAddress != "" {
		p.FeeShare = &pcl.FeeShareConfig{Bps: cfg.FeeShareBps, Recipient: cfg.FeeShareAddress}
	}
	return p, nil
}

// genesisState creates the empty pool the configuration describes.
func genesisState(cfg config.PoolConfig, factory config.FactoryConfig) (pool.State, error) {
	params, err := instantiateParams(cfg, factory)
	if err != nil {
		return pool.State{}, err
	}
	initTime, err := config.ParseTimestamp(cfg.InitTime)
	if err != nil {
		return pool.State{}, fmt.Errorf("parse init-time: %w", err)
	}
	st, err := pool.Instantiate(params, initTime)
	if err != nil {
		return pool.State{}, fmt.Errorf("instantiate pool: %w", err)
	}
	return st, nil
}

func feeInfo(factory config.FactoryConfig) pool.FeeInfo {
	return pool.FeeInfo{FeeAddress: factory.FeeAddress, MakerFeeBps: factory.MakerFeeBps}
}
