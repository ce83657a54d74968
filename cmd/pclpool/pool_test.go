package main

import (
	"testing"

	"concentratedLiquidity/internal/config"
	"concentratedLiquidity/internal/model"
)

func testPoolConfig() config.PoolConfig {
	return config.PoolConfig{
		Assets:               []string{"native:uusd", "native:uluna"},
		Precisions:           []string{"6", "6"},
		Contract:             "pool-contract",
		LiquidityToken:       "0x00000000000000000000000000000000000000a1",
		Amp:                  "40",
		Gamma:                "0.000145",
		MidFee:               "0.0026",
		OutFee:               "0.0045",
		FeeGamma:             "0.00023",
		RepegProfitThreshold: "0.000002",
		MinPriceScaleDelta:   "0.000146",
		MaHalfTime:           600,
		PriceScale:           "1",
		ObservationCapacity:  100,
		InitTime:             "1700000000",
	}
}

func TestGenesisState(t *testing.T) {
	st, err := genesisState(testPoolConfig(), config.FactoryConfig{Owner: "factory"})
	if err != nil {
		t.Fatalf("genesis: %v", err)
	}
	pair := st.Config.Pair
	if !pair.AssetInfos[0].Equal(model.NativeAsset("uusd")) || !pair.AssetInfos[1].Equal(model.NativeAsset("uluna")) {
		t.Fatalf("unexpected assets: %+v", pair.AssetInfos)
	}
	if pair.Precisions != [2]uint8{6, 6} || pair.Contract != "pool-contract" {
		t.Fatalf("unexpected pair: %+v", pair)
	}
	if st.Config.Owner != "factory" {
		t.Fatalf("owner should default to the factory owner: %q", st.Config.Owner)
	}
	if st.Config.FeeShare != nil {
		t.Fatalf("fee share should be disabled")
	}
}

func TestGenesisStateRejectsBadConfig(t *testing.T) {
	tests := map[string]func(*config.PoolConfig){
		"one asset":        func(c *config.PoolConfig) { c.Assets = c.Assets[:1] },
		"bad asset":        func(c *config.PoolConfig) { c.Assets[1] = "uluna" },
		"same asset":       func(c *config.PoolConfig) { c.Assets[1] = "native:uusd" },
		"bad precision":    func(c *config.PoolConfig) { c.Precisions[0] = "300" },
		"bad fee":          func(c *config.PoolConfig) { c.MidFee = "cheap" },
		"zero price scale": func(c *config.PoolConfig) { c.PriceScale = "0" },
		"bad init time":    func(c *config.PoolConfig) { c.InitTime = "soon" },
		"fee share bounds": func(c *config.PoolConfig) { c.FeeShareBps = 5000; c.FeeShareAddress = "dao" },
	}
	for name, mutate := range tests {
		cfg := testPoolConfig()
		cfg.Assets = append([]string(nil), cfg.Assets...)
		cfg.Precisions = append([]string(nil), cfg.Precisions...)
		mutate(&cfg)
		if _, err := genesisState(cfg, config.FactoryConfig{}); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestFeeInfo(t *testing.T) {
	fee := feeInfo(config.FactoryConfig{FeeAddress: "maker", MakerFeeBps: 3333})
	if fee.FeeAddress != "maker" || fee.MakerFeeBps != 3333 {
		t.Fatalf("unexpected fee info: %+v", fee)
	}
}
