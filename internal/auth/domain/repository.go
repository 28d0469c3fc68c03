package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, user *User) error
	Save(ctx context.Context, db *gorm.DB, user *User) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*User, error)
	// FindByLogin matches the username or the email, case-insensitively.
	FindByLogin(ctx context.Context, db *gorm.DB, login string) (*User, error)
	List(ctx context.Context, db *gorm.DB, offset, limit int) ([]User, int64, error)
	CountActiveAdmins(ctx context.Context, db *gorm.DB) (int64, error)
	TouchLogin(ctx context.Context, db *gorm.DB, id int64, at time.Time) error
	SetPasswordHash(ctx context.Context, db *gorm.DB, id int64, hash string) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, db *gorm.DB, session *Session) error
	GetSessionByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*Session, error)
	UpdateLastSeen(ctx context.Context, db *gorm.DB, sessionID int64, lastSeen time.Time) error
	RevokeSession(ctx context.Context, db *gorm.DB, sessionID int64, revokedAt time.Time) error
	RevokeUserSessions(ctx context.Context, db *gorm.DB, userID int64, revokedAt time.Time) error
}
