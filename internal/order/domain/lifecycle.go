package domain

// CheckConfirm allows confirmation of pending orders only.
func CheckConfirm(current Status) error {
	if current != StatusPending {
		return &TransitionError{From: current, To: StatusConfirmed}
	}
	return nil
}

func CheckCancel(current Status) error {
	if !current.Cancellable() {
		return &TransitionError{From: current, To: StatusCancelled}
	}
	return nil
}

// CheckStatusUpdate validates a staff status change. Any enumerated status
// may be set, except that terminal orders stay put and cancellation keeps
// its pending/confirmed precondition.
func CheckStatusUpdate(current, target Status) error {
	if !target.Valid() {
		return ErrInvalidStatus
	}
	if current == target {
		return nil
	}
	if current.Terminal() {
		return &TransitionError{From: current, To: target}
	}
	if target == StatusCancelled {
		return CheckCancel(current)
	}
	return nil
}
