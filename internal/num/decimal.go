package num

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// DecimalPlaces is the number of fractional digits carried by Decimal.
const DecimalPlaces = 18

var (
	decimalFractional = uint256.NewInt(1_000_000_000_000_000_000)
	decimalSqrtScale  = uint256.NewInt(1_000_000_000)
)

// Decimal is an unsigned fixed-point number with 18 fractional digits backed by a 256-bit integer.
// Arithmetic never wraps: every operation that can leave the representable range returns an error.
type Decimal struct {
	v uint256.Int
}

// DecimalZero returns 0.
func DecimalZero() Decimal {
	return Decimal{}
}

// DecimalOne returns 1.
func DecimalOne() Decimal {
	return Decimal{v: *decimalFractional}
}

// NewDecimal returns the integer n as a Decimal.
func NewDecimal(n uint64) Decimal {
	var d Decimal
	d.v.Mul(uint256.NewInt(n), decimalFractional)
	return d
}

// DecimalFromRaw builds a Decimal from its raw representation (value * 1e18).
func DecimalFromRaw(raw *uint256.Int) Decimal {
	var d Decimal
	if raw != nil {
		d.v.Set(raw)
	}
	return d
}

// DecimalFromRatio returns numerator / denominator rounded down.
func DecimalFromRatio(numerator, denominator uint64) (Decimal, error) {
	if denominator == 0 {
		return Decimal{}, ErrDivisionByZero
	}
	var d Decimal
	if _, overflow := d.v.MulDivOverflow(uint256.NewInt(numerator), decimalFractional, uint256.NewInt(denominator)); overflow {
		return Decimal{}, ErrOverflow
	}
	return d, nil
}

// DecimalFromString parses a non-negative decimal string. Digits beyond the 18th fractional place are truncated.
func DecimalFromString(s string) (Decimal, error) {
	parsed, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Decimal{}, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	if parsed.Sign() < 0 {
		return Decimal{}, fmt.Errorf("parse decimal %q: negative value", s)
	}
	raw := parsed.Shift(DecimalPlaces).Truncate(0).BigInt()
	v, overflow := uint256.FromBig(raw)
	if overflow {
		return Decimal{}, ErrOverflow
	}
	return Decimal{v: *v}, nil
}

// MustDecimal parses s and panics on failure. Intended for constants.
func MustDecimal(s string) Decimal {
	d, err := DecimalFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Raw returns a copy of the underlying scaled integer.
func (d Decimal) Raw() *uint256.Int {
	return new(uint256.Int).Set(&d.v)
}

func (d Decimal) Add(o Decimal) (Decimal, error) {
	var r Decimal
	if _, overflow := r.v.AddOverflow(&d.v, &o.v); overflow {
		return Decimal{}, ErrOverflow
	}
	return r, nil
}

func (d Decimal) Sub(o Decimal) (Decimal, error) {
	var r Decimal
	if _, underflow := r.v.SubOverflow(&d.v, &o.v); underflow {
		return Decimal{}, ErrOverflow
	}
	return r, nil
}

// SaturatingSub returns d - o, or zero when o > d.
func (d Decimal) SaturatingSub(o Decimal) Decimal {
	if d.v.Lt(&o.v) {
		return Decimal{}
	}
	var r Decimal
	r.v.Sub(&d.v, &o.v)
	return r
}

// Diff returns |d - o|.
func (d Decimal) Diff(o Decimal) Decimal {
	var r Decimal
	if d.v.Lt(&o.v) {
		r.v.Sub(&o.v, &d.v)
	} else {
		r.v.Sub(&d.v, &o.v)
	}
	return r
}

// Mul returns d * o rounded down. The intermediate product is 512 bits wide.
func (d Decimal) Mul(o Decimal) (Decimal, error) {
	var r Decimal
	if _, overflow := r.v.MulDivOverflow(&d.v, &o.v, decimalFractional); overflow {
		return Decimal{}, ErrOverflow
	}
	return r, nil
}

// Div returns d / o rounded down.
func (d Decimal) Div(o Decimal) (Decimal, error) {
	if o.v.IsZero() {
		return Decimal{}, ErrDivisionByZero
	}
	var r Decimal
	if _, overflow := r.v.MulDivOverflow(&d.v, decimalFractional, &o.v); overflow {
		return Decimal{}, ErrOverflow
	}
	return r, nil
}

// MulUint64 multiplies by an integer without losing fractional precision.
func (d Decimal) MulUint64(n uint64) (Decimal, error) {
	var r Decimal
	if _, overflow := r.v.MulOverflow(&d.v, uint256.NewInt(n)); overflow {
		return Decimal{}, ErrOverflow
	}
	return r, nil
}

// DivUint64 divides by an integer, rounding down.
func (d Decimal) DivUint64(n uint64) (Decimal, error) {
	if n == 0 {
		return Decimal{}, ErrDivisionByZero
	}
	var r Decimal
	r.v.Div(&d.v, uint256.NewInt(n))
	return r, nil
}

// Pow raises d to an integer power by repeated squaring.
func (d Decimal) Pow(exp uint32) (Decimal, error) {
	result := DecimalOne()
	base := d
	var err error
	for exp > 0 {
		if exp&1 == 1 {
			if result, err = result.Mul(base); err != nil {
				return Decimal{}, err
			}
		}
		exp >>= 1
		if exp > 0 {
			if base, err = base.Mul(base); err != nil {
				return Decimal{}, err
			}
		}
	}
	return result, nil
}

// Sqrt returns the square root rounded down. Values too large to rescale before the root lose the last nine digits.
func (d Decimal) Sqrt() Decimal {
	var scaled uint256.Int
	if _, overflow := scaled.MulOverflow(&d.v, decimalFractional); !overflow {
		var r Decimal
		r.v.Sqrt(&scaled)
		return r
	}
	var r Decimal
	r.v.Sqrt(&d.v)
	r.v.Mul(&r.v, decimalSqrtScale)
	return r
}

// IntPart returns the integer part when it fits into 64 bits.
func (d Decimal) IntPart() (uint64, bool) {
	var q uint256.Int
	q.Div(&d.v, decimalFractional)
	if !q.IsUint64() {
		return 0, false
	}
	return q.Uint64(), true
}

// Frac returns the fractional part.
func (d Decimal) Frac() Decimal {
	var r Decimal
	r.v.Mod(&d.v, decimalFractional)
	return r
}

func (d Decimal) Cmp(o Decimal) int {
	return d.v.Cmp(&o.v)
}

func (d Decimal) Equal(o Decimal) bool {
	return d.v.Eq(&o.v)
}

func (d Decimal) LT(o Decimal) bool {
	return d.v.Lt(&o.v)
}

func (d Decimal) LTE(o Decimal) bool {
	return !d.v.Gt(&o.v)
}

func (d Decimal) GT(o Decimal) bool {
	return d.v.Gt(&o.v)
}

func (d Decimal) GTE(o Decimal) bool {
	return !d.v.Lt(&o.v)
}

func (d Decimal) IsZero() bool {
	return d.v.IsZero()
}

// Min returns the smaller of a and b.
func Min(a, b Decimal) Decimal {
	if a.LT(b) {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Decimal) Decimal {
	if a.GT(b) {
		return a
	}
	return b
}

// String renders the exact value without trailing zeros.
func (d Decimal) String() string {
	return decimal.NewFromBigInt(d.v.ToBig(), -DecimalPlaces).String()
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Decimal) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)
	parsed, err := DecimalFromString(text)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
