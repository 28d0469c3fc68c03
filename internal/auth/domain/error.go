package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserNotFound       = errors.New("not_found")
	ErrUserExists         = errors.New("user_exists")
	ErrInvalidUsername    = errors.New("invalid_username")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrWeakPassword       = errors.New("weak_password")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidID          = errors.New("invalid_id")
	ErrLastAdmin          = errors.New("last_active_admin")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrSessionExpired     = errors.New("session_expired")
	ErrSessionRevoked     = errors.New("session_revoked")
)
