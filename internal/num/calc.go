package num

// Calc evaluates a chain of Decimal operations and keeps the first error.
// Once an error is recorded every further operation returns zero.
//
//	var c num.Calc
//	k0 := c.Div(c.Mul(four, p), c.Mul(d, d))
//	if err := c.Err(); err != nil { ... }
type Calc struct {
	err error
}

// Err returns the first error encountered.
func (c *Calc) Err() error {
	return c.err
}

func (c *Calc) do(fn func() (Decimal, error)) Decimal {
	if c.err != nil {
		return Decimal{}
	}
	r, err := fn()
	if err != nil {
		c.err = err
		return Decimal{}
	}
	return r
}

func (c *Calc) Add(a, b Decimal) Decimal {
	return c.do(func() (Decimal, error) { return a.Add(b) })
}

func (c *Calc) Sub(a, b Decimal) Decimal {
	return c.do(func() (Decimal, error) { return a.Sub(b) })
}

func (c *Calc) Mul(a, b Decimal) Decimal {
	return c.do(func() (Decimal, error) { return a.Mul(b) })
}

func (c *Calc) Div(a, b Decimal) Decimal {
	return c.do(func() (Decimal, error) { return a.Div(b) })
}

func (c *Calc) MulUint64(a Decimal, n uint64) Decimal {
	return c.do(func() (Decimal, error) { return a.MulUint64(n) })
}

func (c *Calc) DivUint64(a Decimal, n uint64) Decimal {
	return c.do(func() (Decimal, error) { return a.DivUint64(n) })
}

func (c *Calc) Pow(a Decimal, exp uint32) Decimal {
	return c.do(func() (Decimal, error) { return a.Pow(exp) })
}

// Sum adds all values.
func (c *Calc) Sum(values ...Decimal) Decimal {
	total := DecimalZero()
	for _, v := range values {
		total = c.Add(total, v)
	}
	return total
}
