package num

import "errors"

var (
	// ErrOverflow reports a result outside the representable range, including negative results of unsigned subtraction.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrDivisionByZero reports a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrConversionOverflow reports a value that does not fit the target type after a precision change.
	ErrConversionOverflow = errors.New("conversion overflow")
)
