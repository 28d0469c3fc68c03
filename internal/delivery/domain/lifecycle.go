package domain

var strictTransitions = map[Status][]Status{
	StatusPending:   {StatusInTransit, StatusFailed},
	StatusInTransit: {StatusDelivered, StatusFailed, StatusReturned},
	StatusFailed:    {StatusInTransit, StatusReturned},
}

// CheckTransition validates a status change. Without strict, staff may set
// any status at any time; with strict, only the carrier flow is allowed and
// delivered and returned are final. Setting the current status is a no-op.
func CheckTransition(from, to Status, strict bool) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	if !strict || from == to {
		return nil
	}
	for _, next := range strictTransitions[from] {
		if next == to {
			return nil
		}
	}
	return &TransitionError{From: from, To: to}
}
