package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not_found")
	ErrInvalidID             = errors.New("invalid_id")
	ErrInvalidOrder          = errors.New("invalid_order")
	ErrInvalidStatus         = errors.New("invalid_status")
	ErrInvalidTrackingNumber = errors.New("invalid_tracking_number")
	ErrInvalidPackageCount   = errors.New("invalid_package_count")
	ErrInvalidDescription    = errors.New("invalid_description")
	ErrDuplicateDelivery     = errors.New("duplicate_delivery")
	ErrDuplicateTracking     = errors.New("duplicate_tracking_number")
	ErrInvalidTransition     = errors.New("invalid_transition")
)

// TransitionError rejects a status change under strict transitions.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move delivery from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
