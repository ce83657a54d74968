package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/pcl"
	"concentratedLiquidity/internal/pool"
)

var ErrPrecisionMismatch = errors.New("on-chain decimals differ from pool precision")

// Client wraps go-ethereum RPC and reads the balances a pool operation needs.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client

	mu       sync.RWMutex
	decimals map[common.Address]uint8
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		decimals:  make(map[common.Address]uint8),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// GetChainID returns the chain ID.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	return c.ethClient.ChainID(ctx)
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// BlockTimestamp returns the timestamp of a block, or of the latest one when number is nil.
func (c *Client) BlockTimestamp(ctx context.Context, number *big.Int) (uint64, error) {
	header, err := c.ethClient.HeaderByNumber(ctx, number)
	if err != nil {
		return 0, err
	}
	return header.Time, nil
}

// NativeBalance returns the native coin balance of owner.
func (c *Client) NativeBalance(ctx context.Context, owner common.Address, block *big.Int) (num.Uint, error) {
	balance, err := c.ethClient.BalanceAt(ctx, owner, block)
	if err != nil {
		return num.Uint{}, fmt.Errorf("balance of %s: %w", owner.Hex(), err)
	}
	return amountFromBig(balance)
}

// TokenBalance returns the ERC20 balance of owner.
func (c *Client) TokenBalance(ctx context.Context, token, owner common.Address, block *big.Int) (num.Uint, error) {
	resp, err := c.call(ctx, token, block, "balanceOf", owner)
	if err != nil {
		return num.Uint{}, err
	}
	return unpackAmount("balanceOf", resp)
}

// TotalSupply returns the ERC20 total supply.
func (c *Client) TotalSupply(ctx context.Context, token common.Address, block *big.Int) (num.Uint, error) {
	resp, err := c.call(ctx, token, block, "totalSupply")
	if err != nil {
		return num.Uint{}, err
	}
	return unpackAmount("totalSupply", resp)
}

// Decimals returns the ERC20 decimals, using an in-memory cache.
func (c *Client) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	c.mu.RLock()
	decimals, ok := c.decimals[token]
	c.mu.RUnlock()
	if ok {
		return decimals, nil
	}

	resp, err := c.call(ctx, token, nil, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, err = unpackDecimals(resp)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.decimals[token] = decimals
	c.mu.Unlock()
	return decimals, nil
}

// PoolSnapshot reads the pool reserves and the share supply at block (latest when nil).
// The pool contract and the liquidity token must be EVM addresses.
func (c *Client) PoolSnapshot(ctx context.Context, pair pool.PairInfo, block *big.Int) (pool.Snapshot, error) {
	if !common.IsHexAddress(pair.Contract) {
		return pool.Snapshot{}, fmt.Errorf("pool contract is not an address: %s", pair.Contract)
	}
	if !common.IsHexAddress(pair.LiquidityToken) {
		return pool.Snapshot{}, fmt.Errorf("liquidity token is not an address: %s", pair.LiquidityToken)
	}
	owner := common.HexToAddress(pair.Contract)

	var snap pool.Snapshot
	for i, info := range pair.AssetInfos {
		balance, err := c.assetBalance(ctx, info, pair.Precisions[i], owner, block)
		if err != nil {
			return pool.Snapshot{}, err
		}
		snap.Pools[i] = balance
	}

	lp := common.HexToAddress(pair.LiquidityToken)
	if err := c.checkDecimals(ctx, lp, pcl.LPTokenPrecision); err != nil {
		return pool.Snapshot{}, err
	}
	total, err := c.TotalSupply(ctx, lp, block)
	if err != nil {
		return pool.Snapshot{}, err
	}
	snap.TotalShare = total
	return snap, nil
}

func (c *Client) assetBalance(ctx context.Context, info model.AssetInfo, precision uint8, owner common.Address, block *big.Int) (num.Uint, error) {
	if info.Kind == model.AssetNative {
		return c.NativeBalance(ctx, owner, block)
	}
	if !common.IsHexAddress(info.ID) {
		return num.Uint{}, fmt.Errorf("invalid token address: %s", info.ID)
	}
	token := common.HexToAddress(info.ID)
	if err := c.checkDecimals(ctx, token, precision); err != nil {
		return num.Uint{}, err
	}
	return c.TokenBalance(ctx, token, owner, block)
}

func (c *Client) checkDecimals(ctx context.Context, token common.Address, precision uint8) error {
	decimals, err := c.Decimals(ctx, token)
	if err != nil {
		return err
	}
	if decimals != precision {
		return fmt.Errorf("%w: %s has %d, expected %d", ErrPrecisionMismatch, token.Hex(), decimals, precision)
	}
	return nil
}

func (c *Client) call(ctx context.Context, to common.Address, block *big.Int, method string, args ...interface{}) ([]byte, error) {
	parsed, err := erc20ABIInstance()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := c.ethClient.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, block)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, to.Hex(), err)
	}
	return resp, nil
}
