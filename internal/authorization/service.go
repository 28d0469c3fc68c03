package authorization

import (
	"context"
	"errors"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)

// Actor is the user an admin request runs as.
type Actor struct {
	UserID string
	Role   string
}

type Service interface {
	// Authorize returns ErrForbidden unless the actor's role grants action on object.
	Authorize(ctx context.Context, actor Actor, object, action string) error
}
