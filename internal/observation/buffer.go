package observation

import (
	"github.com/pkg/errors"

	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/pcl"
)

// DefaultCapacity is the number of observations kept per pool unless configured otherwise.
const DefaultCapacity = 3000

var (
	ErrInvalidCapacity   = errors.New("observation buffer capacity must be positive")
	ErrOutOfOrder        = errors.New("observation timestamp is older than the newest observation")
	ErrObservationTooOld = errors.New("requested time is older than the oldest observation")
)

// Observation is one slot of the ring. Prices are in effect from Timestamp until the next observation.
type Observation struct {
	Timestamp uint64 `json:"timestamp"`
	// BasePrice is quote per base, QuotePrice is base per quote.
	BasePrice  num.Decimal `json:"base_price"`
	QuotePrice num.Decimal `json:"quote_price"`
	// Cumulative values are price·seconds summed up to Timestamp.
	CumulativeBase  num.Decimal `json:"cumulative_base"`
	CumulativeQuote num.Decimal `json:"cumulative_quote"`
}

// Buffer is a fixed-capacity ring of observations. Once full, every write replaces the oldest slot.
type Buffer struct {
	Capacity int           `json:"capacity"`
	Next     int           `json:"next"`
	Slots    []Observation `json:"slots"`
}

// Prices is a pair of base and quote prices, either spot or averaged.
type Prices struct {
	Base  num.Decimal `json:"base"`
	Quote num.Decimal `json:"quote"`
}

func New(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Buffer{Capacity: capacity, Slots: make([]Observation, 0, min(capacity, 64))}, nil
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}
	out := *b
	out.Slots = append([]Observation(nil), b.Slots...)
	return &out
}

func (b *Buffer) Len() int {
	return len(b.Slots)
}

// at returns the k-th newest observation (0 is the newest).
func (b *Buffer) at(k int) Observation {
	idx := ((b.Next-1-k)%b.Capacity + b.Capacity) % b.Capacity
	return b.Slots[idx]
}

// Newest returns the most recent observation.
func (b *Buffer) Newest() (Observation, bool) {
	if len(b.Slots) == 0 {
		return Observation{}, false
	}
	return b.at(0), true
}

// Oldest returns the oldest observation still stored.
func (b *Buffer) Oldest() (Observation, bool) {
	if len(b.Slots) == 0 {
		return Observation{}, false
	}
	return b.at(len(b.Slots) - 1), true
}

func (b *Buffer) push(o Observation) {
	if len(b.Slots) < b.Capacity {
		b.Slots = append(b.Slots, o)
	} else {
		b.Slots[b.Next] = o
	}
	b.Next = (b.Next + 1) % b.Capacity
}

// Record stores the prices implied by base and quote amounts at ts. Dust amounts are ignored and
// reported with recorded=false. A second record within the same second replaces the newest prices.
func (b *Buffer) Record(ts uint64, base, quote num.Decimal) (recorded bool, err error) {
	if base.LT(pcl.MinTradeSize) || quote.LT(pcl.MinTradeSize) {
		return false, nil
	}

	var c num.Calc
	basePrice := c.Div(quote, base)
	quotePrice := c.Div(base, quote)
	if err := c.Err(); err != nil {
		return false, errors.Wrap(err, "observation prices")
	}

	newest, ok := b.Newest()
	switch {
	case !ok:
		b.push(Observation{Timestamp: ts, BasePrice: basePrice, QuotePrice: quotePrice})
	case ts < newest.Timestamp:
		return false, errors.Wrapf(ErrOutOfOrder, "got %d, newest %d", ts, newest.Timestamp)
	case ts == newest.Timestamp:
		idx := (b.Next - 1 + b.Capacity) % b.Capacity
		b.Slots[idx].BasePrice = basePrice
		b.Slots[idx].QuotePrice = quotePrice
	default:
		cum, err := newest.extrapolate(ts)
		if err != nil {
			return false, err
		}
		b.push(Observation{
			Timestamp:       ts,
			BasePrice:       basePrice,
			QuotePrice:      quotePrice,
			CumulativeBase:  cum.Base,
			CumulativeQuote: cum.Quote,
		})
	}
	return true, nil
}

func (o Observation) extrapolate(ts uint64) (Prices, error) {
	if ts <= o.Timestamp {
		return Prices{Base: o.CumulativeBase, Quote: o.CumulativeQuote}, nil
	}
	dt := ts - o.Timestamp
	var c num.Calc
	cum := Prices{
		Base:  c.Add(o.CumulativeBase, c.MulUint64(o.BasePrice, dt)),
		Quote: c.Add(o.CumulativeQuote, c.MulUint64(o.QuotePrice, dt)),
	}
	if err := c.Err(); err != nil {
		return Prices{}, errors.Wrap(err, "cumulative price")
	}
	return cum, nil
}

// CumulativePricesAt returns the cumulative prices extrapolated to now. An empty buffer yields zeros.
func (b *Buffer) CumulativePricesAt(now uint64) (Prices, error) {
	newest, ok := b.Newest()
	if !ok {
		return Prices{}, nil
	}
	return newest.extrapolate(now)
}

// Observe returns the time-weighted average prices over the last secondsAgo seconds before now.
// secondsAgo == 0 returns the newest spot prices.
func (b *Buffer) Observe(now, secondsAgo uint64) (Prices, error) {
	newest, ok := b.Newest()
	if !ok {
		return Prices{}, errors.Wrap(ErrObservationTooOld, "no observations")
	}
	if secondsAgo == 0 {
		return Prices{Base: newest.BasePrice, Quote: newest.QuotePrice}, nil
	}
	if secondsAgo > now {
		return Prices{}, errors.Wrapf(ErrObservationTooOld, "%d seconds before %d", secondsAgo, now)
	}
	target := now - secondsAgo

	end, err := newest.extrapolate(now)
	if err != nil {
		return Prices{}, err
	}

	for k := 0; k < len(b.Slots); k++ {
		obs := b.at(k)
		if obs.Timestamp > target {
			continue
		}
		start, err := obs.extrapolate(target)
		if err != nil {
			return Prices{}, err
		}
		var c num.Calc
		avg := Prices{
			Base:  c.DivUint64(c.Sub(end.Base, start.Base), secondsAgo),
			Quote: c.DivUint64(c.Sub(end.Quote, start.Quote), secondsAgo),
		}
		if err := c.Err(); err != nil {
			return Prices{}, errors.Wrap(err, "observe")
		}
		return avg, nil
	}

	oldest, _ := b.Oldest()
	return Prices{}, errors.Wrapf(ErrObservationTooOld, "target %d, oldest %d", target, oldest.Timestamp)
}
