package jsonbq

import (
	"errors"
	"fmt"
)

// InvalidOperatorError reports a comparison token recognized by neither
// the numeric nor the temporal alias table.
type InvalidOperatorError struct {
	Token string
}

func (e *InvalidOperatorError) Error() string {
	return fmt.Sprintf("invalid comparison operator: %q", e.Token)
}

// IsInvalidOperator reports whether err wraps an InvalidOperatorError.
func IsInvalidOperator(err error) bool {
	var invalid *InvalidOperatorError
	return errors.As(err, &invalid)
}
