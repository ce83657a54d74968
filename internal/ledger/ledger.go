package ledger

import (
	"errors"
	"fmt"
	"sync"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/pool"
)

var (
	ErrUnknownAsset      = errors.New("asset is not held by the pool")
	ErrInsufficientFunds = errors.New("insufficient balance")
)

// Balances is the serialisable content of a Ledger.
type Balances struct {
	Pools      [2]num.Uint         `json:"pools"`
	TotalShare num.Uint            `json:"total_share"`
	Holders    map[string]num.Uint `json:"holders"`
}

// Ledger keeps the pool reserves and share balances the way a host chain would,
// so operations can be replayed without one.
type Ledger struct {
	pair pool.PairInfo

	mu  sync.RWMutex
	bal Balances
}

func New(pair pool.PairInfo) *Ledger {
	return &Ledger{pair: pair, bal: Balances{Holders: make(map[string]num.Uint)}}
}

// Restore builds a Ledger from previously saved balances.
func Restore(pair pool.PairInfo, b Balances) *Ledger {
	l := New(pair)
	l.bal.Pools = b.Pools
	l.bal.TotalShare = b.TotalShare
	for holder, amount := range b.Holders {
		l.bal.Holders[holder] = amount
	}
	return l
}

// Balances returns a copy of the current balances.
func (l *Ledger) Balances() Balances {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bal.clone()
}

// Snapshot returns the balances an operation sees before its own funds arrive.
func (l *Ledger) Snapshot() pool.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return pool.Snapshot{Pools: l.bal.Pools, TotalShare: l.bal.TotalShare}
}

// Settlement describes the host side of one successful operation.
type Settlement struct {
	// Incoming are funds the sender attached to the operation.
	Incoming []model.Asset
	// ShareIn is the share amount the sender hands back to the pool for burning.
	ShareIn num.Uint
	Sender  string
	Result  pool.Result
}

// Commit applies s. Either every balance change lands or none does.
func (l *Ledger) Commit(s Settlement) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.bal.clone()
	for _, asset := range s.Incoming {
		i, err := l.indexOf(asset.Info)
		if err != nil {
			return err
		}
		if next.Pools[i], err = next.Pools[i].Add(asset.Amount); err != nil {
			return fmt.Errorf("credit %s: %w", asset, err)
		}
	}
	if !s.ShareIn.IsZero() {
		held := next.Holders[s.Sender]
		if held.LT(s.ShareIn) {
			return fmt.Errorf("%w: %s holds %s share, needs %s", ErrInsufficientFunds, s.Sender, held, s.ShareIn)
		}
		next.setHolder(s.Sender, held.SaturatingSub(s.ShareIn))
	}

	for _, tr := range s.Result.Transfers {
		if err := next.apply(l, tr); err != nil {
			return err
		}
	}

	l.bal = next
	return nil
}

func (b *Balances) apply(l *Ledger, tr model.Transfer) error {
	var err error
	switch tr.Kind {
	case model.TransferSend:
		i, ierr := l.indexOf(tr.Asset.Info)
		if ierr != nil {
			return ierr
		}
		if b.Pools[i].LT(tr.Asset.Amount) {
			return fmt.Errorf("%w: pool holds %s, sends %s", ErrInsufficientFunds, b.Pools[i], tr.Asset)
		}
		b.Pools[i] = b.Pools[i].SaturatingSub(tr.Asset.Amount)
	case model.TransferMint:
		if b.TotalShare, err = b.TotalShare.Add(tr.Asset.Amount); err != nil {
			return fmt.Errorf("mint share: %w", err)
		}
		held, err := b.Holders[tr.Recipient].Add(tr.Asset.Amount)
		if err != nil {
			return fmt.Errorf("mint share: %w", err)
		}
		b.setHolder(tr.Recipient, held)
	case model.TransferBurn:
		if b.TotalShare.LT(tr.Asset.Amount) {
			return fmt.Errorf("%w: burn %s of %s total share", ErrInsufficientFunds, tr.Asset.Amount, b.TotalShare)
		}
		b.TotalShare = b.TotalShare.SaturatingSub(tr.Asset.Amount)
	default:
		return fmt.Errorf("unknown transfer kind %q", tr.Kind)
	}
	return nil
}

func (b *Balances) setHolder(holder string, amount num.Uint) {
	if amount.IsZero() {
		delete(b.Holders, holder)
		return
	}
	b.Holders[holder] = amount
}

func (b Balances) clone() Balances {
	out := Balances{Pools: b.Pools, TotalShare: b.TotalShare, Holders: make(map[string]num.Uint, len(b.Holders))}
	for holder, amount := range b.Holders {
		out.Holders[holder] = amount
	}
	return out
}

func (l *Ledger) indexOf(info model.AssetInfo) (int, error) {
	for i, candidate := range l.pair.AssetInfos {
		if candidate.Equal(info) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownAsset, info)
}
