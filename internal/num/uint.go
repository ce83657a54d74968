package num

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// amountBits bounds token amounts the same way on-chain 128-bit balances are bounded.
const amountBits = 128

// Uint is a token amount at the token's native precision.
type Uint struct {
	v uint256.Int
}

// NewUint returns n as a Uint.
func NewUint(n uint64) Uint {
	var u Uint
	u.v.SetUint64(n)
	return u
}

// UintFromString parses a base-10 integer amount.
func UintFromString(s string) (Uint, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return Uint{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if v.BitLen() > amountBits {
		return Uint{}, ErrOverflow
	}
	return Uint{v: *v}, nil
}

// MustUint parses s and panics on failure. Intended for tests and constants.
func MustUint(s string) Uint {
	u, err := UintFromString(s)
	if err != nil {
		panic(err)
	}
	return u
}

func (u Uint) Add(o Uint) (Uint, error) {
	var r Uint
	r.v.Add(&u.v, &o.v)
	if r.v.BitLen() > amountBits {
		return Uint{}, ErrOverflow
	}
	return r, nil
}

func (u Uint) Sub(o Uint) (Uint, error) {
	if u.v.Lt(&o.v) {
		return Uint{}, ErrOverflow
	}
	var r Uint
	r.v.Sub(&u.v, &o.v)
	return r, nil
}

// SaturatingSub returns u - o, or zero when o > u.
func (u Uint) SaturatingSub(o Uint) Uint {
	if u.v.Lt(&o.v) {
		return Uint{}
	}
	var r Uint
	r.v.Sub(&u.v, &o.v)
	return r
}

// MulDiv returns u * numerator / denominator rounded down.
func (u Uint) MulDiv(numerator, denominator Uint) (Uint, error) {
	if denominator.v.IsZero() {
		return Uint{}, ErrDivisionByZero
	}
	var r Uint
	if _, overflow := r.v.MulDivOverflow(&u.v, &numerator.v, &denominator.v); overflow || r.v.BitLen() > amountBits {
		return Uint{}, ErrOverflow
	}
	return r, nil
}

// ToDecimal converts an amount with the given number of decimals into an 18-digit Decimal.
func (u Uint) ToDecimal(precision uint8) (Decimal, error) {
	var d Decimal
	switch {
	case precision <= DecimalPlaces:
		scale := pow10(DecimalPlaces - precision)
		if _, overflow := d.v.MulOverflow(&u.v, scale); overflow {
			return Decimal{}, ErrConversionOverflow
		}
	default:
		d.v.Div(&u.v, pow10(precision-DecimalPlaces))
	}
	return d, nil
}

// ToUint converts a Decimal into an amount with the given number of decimals, rounding down.
func (d Decimal) ToUint(precision uint8) (Uint, error) {
	var u Uint
	switch {
	case precision <= DecimalPlaces:
		u.v.Div(&d.v, pow10(DecimalPlaces-precision))
	default:
		if _, overflow := u.v.MulOverflow(&d.v, pow10(precision-DecimalPlaces)); overflow {
			return Uint{}, ErrConversionOverflow
		}
	}
	if u.v.BitLen() > amountBits {
		return Uint{}, ErrConversionOverflow
	}
	return u, nil
}

func pow10(exp uint8) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(exp)))
}

// Uint64 returns the amount when it fits into 64 bits.
func (u Uint) Uint64() (uint64, bool) {
	return u.v.Uint64(), u.v.IsUint64()
}

func (u Uint) Cmp(o Uint) int {
	return u.v.Cmp(&o.v)
}

func (u Uint) Equal(o Uint) bool {
	return u.v.Eq(&o.v)
}

func (u Uint) LT(o Uint) bool {
	return u.v.Lt(&o.v)
}

func (u Uint) GT(o Uint) bool {
	return u.v.Gt(&o.v)
}

func (u Uint) IsZero() bool {
	return u.v.IsZero()
}

func (u Uint) String() string {
	return u.v.Dec()
}

func (u Uint) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *Uint) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)
	parsed, err := UintFromString(text)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
