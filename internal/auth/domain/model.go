// Package domain contains the admin user and session types.
package domain

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// User is a back-office account. Storefront customers never log in.
type User struct {
	ID           int64      `gorm:"primaryKey"`
	Username     string     `gorm:"type:varchar(150);not null;uniqueIndex:ux_users_username"`
	Email        *string    `gorm:"type:varchar(254);uniqueIndex:ux_users_email"`
	PasswordHash string     `gorm:"column:password_hash;type:text;not null"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'staff'"`
	IsActive     bool       `gorm:"column:is_active;not null"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

func (User) TableName() string { return "users" }

// Session is a persisted login. Only the SHA-256 of the cookie token is stored.
type Session struct {
	ID               int64      `gorm:"primaryKey"`
	UserID           int64      `gorm:"column:user_id;not null;index"`
	User             *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	SessionTokenHash string     `gorm:"column:session_token_hash;type:varchar(64);not null;uniqueIndex:ux_sessions_token"`
	UserAgent        string     `gorm:"column:user_agent;type:text"`
	IPAddress        string     `gorm:"column:ip_address;type:varchar(64)"`
	ExpiresAt        time.Time  `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time `gorm:"column:revoked_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;not null"`
	LastSeenAt       time.Time  `gorm:"column:last_seen_at;not null"`
}

func (Session) TableName() string { return "sessions" }
