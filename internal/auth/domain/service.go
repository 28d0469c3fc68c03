package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/vitrine/pkg/db/pagination"
)

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	// Authenticate resolves a cookie token to its live session and user.
	Authenticate(ctx context.Context, rawToken string) (*Principal, error)
	// EnsureAdmin creates the bootstrap admin when no user has that username.
	EnsureAdmin(ctx context.Context, req CreateUserRequest) (*UserResponse, bool, error)

	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	GetUser(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page pagination.Pagination) (*ListUserResponse, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
}

type LoginRequest struct {
	Login     string `json:"username"`
	Password  string `json:"password"`
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

type LoginResult struct {
	User      UserResponse
	RawToken  string
	ExpiresAt time.Time
}

// Principal is the authenticated caller of an admin request.
type Principal struct {
	SessionID int64
	User      UserResponse
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserRequest changes only the fields that are set. Changing the
// password or deactivating the user revokes their sessions.
type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       *string    `json:"email"`
	Role        Role       `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ListUserResponse struct {
	pagination.PageInfo
	Users []UserResponse `json:"results"`
}
