package calc

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFunction is reported for a call to a name missing from the function table.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrArithmetic is reported when the substituted text is not valid arithmetic.
	ErrArithmetic = errors.New("invalid arithmetic")
	// ErrNonNumeric is reported when arithmetic succeeds but yields NaN.
	ErrNonNumeric = errors.New("non-numeric result")
)

// EvalError carries the expression that failed.
type EvalError struct {
	Expr string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate %q: %v", e.Expr, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}
