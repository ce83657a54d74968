package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// PoolConfig holds the instantiation parameters of the pool. Numbers are kept as decimal strings.
type PoolConfig struct {
	// Assets are "native:<denom>" or "token:<address>" entries in pool order.
	Assets               []string
	Precisions           []string
	Contract             string
	LiquidityToken       string
	Owner                string
	Amp                  string
	Gamma                string
	MidFee               string
	OutFee               string
	FeeGamma             string
	RepegProfitThreshold string
	MinPriceScaleDelta   string
	MaHalfTime           uint64
	PriceScale           string
	ObservationCapacity  int
	FeeShareBps          uint16
	FeeShareAddress      string
	InitTime             string
}

// FactoryConfig holds what the pool factory provides to its pools.
type FactoryConfig struct {
	Owner       string
	FeeAddress  string
	MakerFeeBps uint16
}

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	Pool              PoolConfig
	Factory           FactoryConfig
	In                string
	Out               string
	Checkpoint        string
	CheckpointEnabled bool
	BatchSize         uint64
	PGDSN             string
	MaxRetries        int
	RetryBackoff      time.Duration
	LogLevel          string
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"out":                "./data/records.jsonl",
		"checkpoint":         "./data/checkpoint.json",
		"checkpoint-enabled": true,
		"batch-size":         uint64(500),
		"max-retries":        5,
		"retry-backoff":      500 * time.Millisecond,
	})
	if err != nil {
		return ReplayConfig{}, err
	}

	return ReplayConfig{
		Pool:              loadPool(v),
		Factory:           loadFactory(v),
		In:                v.GetString("in"),
		Out:               v.GetString("out"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		BatchSize:         v.GetUint64("batch-size"),
		PGDSN:             v.GetString("pg-dsn"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		LogLevel:          v.GetString("log-level"),
	}, nil
}

// QueryConfig holds configuration for the read-only commands (simulate, twap).
type QueryConfig struct {
	Pool    PoolConfig
	Factory FactoryConfig
	// State is a replay checkpoint file. When PGDSN is set the latest stored snapshot is used instead.
	State  string
	PGDSN  string
	RPCURL string
	Block  uint64
	At     string

	Offer   string
	Ask     string
	Amount  string
	Reverse bool

	SecondsAgo uint64
	LogLevel   string
}

// LoadQuery merges config file, environment variables, and flags into QueryConfig.
func LoadQuery(cfgFile string, flags *pflag.FlagSet) (QueryConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"state": "./data/checkpoint.json",
	})
	if err != nil {
		return QueryConfig{}, err
	}

	return QueryConfig{
		Pool:       loadPool(v),
		Factory:    loadFactory(v),
		State:      v.GetString("state"),
		PGDSN:      v.GetString("pg-dsn"),
		RPCURL:     v.GetString("rpc"),
		Block:      v.GetUint64("block"),
		At:         v.GetString("at"),
		Offer:      v.GetString("offer"),
		Ask:        v.GetString("ask"),
		Amount:     v.GetString("amount"),
		Reverse:    v.GetBool("reverse"),
		SecondsAgo: v.GetUint64("seconds-ago"),
		LogLevel:   v.GetString("log-level"),
	}, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("PCL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	setPoolDefaults(v)
	v.SetDefault("log-level", "info")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func setPoolDefaults(v *viper.Viper) {
	v.SetDefault("amp", "40")
	v.SetDefault("gamma", "0.000145")
	v.SetDefault("mid-fee", "0.0026")
	v.SetDefault("out-fee", "0.0045")
	v.SetDefault("fee-gamma", "0.00023")
	v.SetDefault("repeg-profit-threshold", "0.000002")
	v.SetDefault("min-price-scale-delta", "0.000146")
	v.SetDefault("ma-half-time", uint64(600))
	v.SetDefault("price-scale", "1")
	v.SetDefault("observation-capacity", 3000)
}

func loadPool(v *viper.Viper) PoolConfig {
	return PoolConfig{
		Assets:               getStringSlice(v, "pool-assets"),
		Precisions:           getStringSlice(v, "pool-precisions"),
		Contract:             v.GetString("pool-contract"),
		LiquidityToken:       v.GetString("pool-lp-token"),
		Owner:                v.GetString("pool-owner"),
		Amp:                  v.GetString("amp"),
		Gamma:                v.GetString("gamma"),
		MidFee:               v.GetString("mid-fee"),
		OutFee:               v.GetString("out-fee"),
		FeeGamma:             v.GetString("fee-gamma"),
		RepegProfitThreshold: v.GetString("repeg-profit-threshold"),
		MinPriceScaleDelta:   v.GetString("min-price-scale-delta"),
		MaHalfTime:           v.GetUint64("ma-half-time"),
		PriceScale:           v.GetString("price-scale"),
		ObservationCapacity:  v.GetInt("observation-capacity"),
		FeeShareBps:          v.GetUint16("fee-share-bps"),
		FeeShareAddress:      v.GetString("fee-share-address"),
		InitTime:             v.GetString("init-time"),
	}
}

func loadFactory(v *viper.Viper) FactoryConfig {
	return FactoryConfig{
		Owner:       v.GetString("factory-owner"),
		FeeAddress:  v.GetString("fee-address"),
		MakerFeeBps: v.GetUint16("maker-fee-bps"),
	}
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	return cleanStrings(strings.Split(input, ","))
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
