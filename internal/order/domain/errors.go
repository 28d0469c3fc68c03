package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not_found")
	ErrInvalidID            = errors.New("invalid_id")
	ErrEmptyItems           = errors.New("empty_items")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidProduct       = errors.New("invalid_product")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrInvalidTransition    = errors.New("invalid_transition")
)

// TransitionError rejects a status change. The order is left untouched.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ItemError points at the offending entry of a checkout request.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("items[%d]: %s", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }
