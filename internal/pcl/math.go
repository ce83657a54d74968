package pcl

import (
	"github.com/pkg/errors"

	"concentratedLiquidity/internal/num"
)

// The invariant for two internal balances x0, x1 (x1 already multiplied by price_scale):
//
//	K·D·(x0+x1) + x0·x1 = K·D² + D²/4
//	K0 = 4·x0·x1/D²,  K = amp·K0·(gamma/(gamma+1-K0))²
//
// Both solvers keep a bracket around the root and take Newton steps while they stay inside it.
// A step that leaves the bracket, and every step after newtonIters, bisects instead.

type invariantTerms struct {
	k  num.Decimal // K
	k0 num.Decimal // K0, capped at 1
	g  num.Decimal // gamma + 1 - K0
}

func invariantK(c *num.Calc, ag AmpGamma, p, d num.Decimal) invariantTerms {
	k0 := c.Div(c.MulUint64(p, 4), c.Mul(d, d))
	k0 = num.Min(k0, num.DecimalOne())
	g := c.Sub(c.Add(ag.Gamma, num.DecimalOne()), k0)
	r := c.Div(ag.Gamma, g)
	k := c.Mul(c.Mul(ag.Amp, k0), c.Mul(r, r))
	return invariantTerms{k: k, k0: k0, g: g}
}

func tolerance(scale num.Decimal) num.Decimal {
	tol, _ := scale.DivUint64(solverTolRel)
	return num.Max(tol, solverTolFloor)
}

func midpoint(lo, hi num.Decimal) num.Decimal {
	half, _ := hi.Sub(lo)
	half, _ = half.DivUint64(2)
	mid, _ := lo.Add(half)
	return mid
}

// newtonStep returns x - f/df where f = fpos - fneg and df = dpos - dneg.
// ok is false when the derivative vanishes or the step would go negative.
func newtonStep(x, fpos, fneg, dpos, dneg num.Decimal) (num.Decimal, bool) {
	if dpos.Equal(dneg) {
		return num.Decimal{}, false
	}
	step, err := fpos.Diff(fneg).Div(dpos.Diff(dneg))
	if err != nil {
		return num.Decimal{}, false
	}
	// Same signs move x down, opposite signs move it up.
	down := fpos.GT(fneg) == dpos.GT(dneg)
	if down {
		next, err := x.Sub(step)
		return next, err == nil
	}
	next, err := x.Add(step)
	return next, err == nil
}

// CalcD computes the invariant D for internal balances xs.
func CalcD(xs [2]num.Decimal, ag AmpGamma) (num.Decimal, error) {
	return calcD(xs, ag, MaxIter)
}

func calcD(xs [2]num.Decimal, ag AmpGamma, maxIter int) (num.Decimal, error) {
	if xs[0].IsZero() || xs[1].IsZero() {
		return num.Decimal{}, errors.Wrap(ErrInvalidZeroAmount, "compute D")
	}

	var c num.Calc
	s := c.Add(xs[0], xs[1])
	p := c.Mul(xs[0], xs[1])
	if err := c.Err(); err != nil {
		return num.Decimal{}, errors.Wrap(err, "compute D")
	}

	// F(2·sqrt(P)) >= 0 and F(S) <= 0.
	lo := num.Min(c.MulUint64(p.Sqrt(), 2), s)
	hi := s
	tol := tolerance(s)
	d := hi

	for i := 0; i < maxIter; i++ {
		if hi.Diff(lo).LTE(tol) {
			return midpoint(lo, hi), nil
		}

		t := invariantK(&c, ag, p, d)
		kd := c.Mul(t.k, d)
		fpos := c.Add(c.Mul(kd, s.SaturatingSub(d)), p)
		fneg := c.DivUint64(c.Mul(d, d), 4)

		// dF/dD = (K·S + Q·D) - (Q·S + 2·K·D + D/2), Q = 2·K·(gamma+1+K0)/(gamma+1-K0)
		q := c.Div(c.MulUint64(c.Mul(t.k, c.Sum(ag.Gamma, num.DecimalOne(), t.k0)), 2), t.g)
		dpos := c.Add(c.Mul(t.k, s), c.Mul(q, d))
		dneg := c.Sum(c.Mul(q, s), c.MulUint64(kd, 2), c.DivUint64(d, 2))
		if err := c.Err(); err != nil {
			return num.Decimal{}, errors.Wrap(err, "compute D")
		}

		if fpos.Equal(fneg) {
			return d, nil
		}
		if fpos.GT(fneg) {
			lo = d
		} else {
			hi = d
		}

		next, ok := newtonStep(d, fpos, fneg, dpos, dneg)
		if i >= newtonIters || !ok || next.LTE(lo) || next.GTE(hi) {
			next = midpoint(lo, hi)
		} else if next.Diff(d).LTE(tol) {
			return next, nil
		}
		d = next
	}

	return num.Decimal{}, errors.Wrapf(ErrDidNotConverge, "compute D for %s, %s", xs[0], xs[1])
}

// CalcY returns the internal balance of asset j that keeps the invariant at d, given the other balance.
func CalcY(xs [2]num.Decimal, d num.Decimal, ag AmpGamma, j int) (num.Decimal, error) {
	return calcY(xs, d, ag, j, MaxIter)
}

func calcY(xs [2]num.Decimal, d num.Decimal, ag AmpGamma, j int, maxIter int) (num.Decimal, error) {
	x := xs[1-j]
	if x.IsZero() || d.IsZero() {
		return num.Decimal{}, errors.Wrap(ErrInvalidZeroAmount, "compute y")
	}

	var c num.Calc
	dd := c.Mul(d, d)
	// F(y) is increasing on [D-x, D²/(4x)]: F <= 0 at the constant-sum end, F >= 0 at the constant-product end.
	lo := d.SaturatingSub(x)
	hi := c.Div(dd, c.MulUint64(x, 4))
	if err := c.Err(); err != nil {
		return num.Decimal{}, errors.Wrap(err, "compute y")
	}
	lo = num.Min(lo, hi)
	tol := tolerance(d)
	y := hi

	for i := 0; i < maxIter; i++ {
		if hi.Diff(lo).LTE(tol) {
			return midpoint(lo, hi), nil
		}
		if y.IsZero() {
			y = midpoint(lo, hi)
			continue
		}

		s := c.Add(x, y)
		p := c.Mul(x, y)
		t := invariantK(&c, ag, p, d)
		kd := c.Mul(t.k, d)
		sd := s.SaturatingSub(d)
		fpos := c.Add(c.Mul(kd, sd), p)
		fneg := c.DivUint64(dd, 4)

		// dF/dy = K_y·D·(S-D) + K·D + x, K_y = K·(gamma+1+K0)/((gamma+1-K0)·y)
		ky := c.Div(c.Div(c.Mul(t.k, c.Sum(ag.Gamma, num.DecimalOne(), t.k0)), t.g), y)
		dpos := c.Sum(c.Mul(c.Mul(ky, d), sd), kd, x)
		if err := c.Err(); err != nil {
			return num.Decimal{}, errors.Wrap(err, "compute y")
		}

		if fpos.Equal(fneg) {
			return y, nil
		}
		if fpos.GT(fneg) {
			hi = y
		} else {
			lo = y
		}

		next, ok := newtonStep(y, fpos, fneg, dpos, num.Decimal{})
		if i >= newtonIters || !ok || next.LTE(lo) || next.GTE(hi) {
			next = midpoint(lo, hi)
		} else if next.Diff(y).LTE(tol) {
			return next, nil
		}
		y = next
	}

	return num.Decimal{}, errors.Wrapf(ErrDidNotConverge, "compute y for D %s", d)
}

// XCP is the value of the pool measured as the geometric mean of the balanced position at price_scale.
func XCP(d, priceScale num.Decimal) (num.Decimal, error) {
	var c num.Calc
	xcp := c.Div(c.DivUint64(d, 2), priceScale.Sqrt())
	return xcp, c.Err()
}

// HalfPow computes 0.5^p for a fractional exponent.
func HalfPow(p num.Decimal) (num.Decimal, error) {
	n, ok := p.IntPart()
	if !ok || n >= 64 {
		return num.Decimal{}, nil
	}
	intPow, err := num.DecimalOne().DivUint64(1 << n)
	if err != nil {
		return num.Decimal{}, err
	}
	frac := p.Frac()
	if frac.IsZero() {
		return intPow, nil
	}

	// (1 - 1/2)^frac as a binomial series; every term after the first is subtracted.
	var c num.Calc
	sum := num.DecimalOne()
	term := num.DecimalOne()
	for k := uint64(1); k < MaxIter; k++ {
		term = c.DivUint64(c.Mul(term, frac.Diff(num.NewDecimal(k-1))), 2*k)
		sum = c.Sub(sum, term)
		if err := c.Err(); err != nil {
			return num.Decimal{}, errors.Wrap(err, "half pow")
		}
		if term.LT(halfPowTol) {
			return intPow.Mul(sum)
		}
	}
	return num.Decimal{}, errors.Wrap(ErrDidNotConverge, "half pow")
}
