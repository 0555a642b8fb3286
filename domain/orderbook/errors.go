package orderbook

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOrder     = errors.New("unknown order")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrDuplicateOrderID = errors.New("duplicate order id")
	ErrInvalidOrderID   = errors.New("invalid order id")
	ErrInvalidSide      = errors.New("invalid side")
)

func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}
