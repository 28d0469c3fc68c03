package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/vitrine/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct{}

func New() (domain.Repository, domain.SessionRepository) {
	r := &repo{}
	return r, r
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Save(user).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.User{}, id).Error
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	return r.findUser(db.WithContext(ctx), "id = ?", id)
}

func (r *repo) FindByLogin(ctx context.Context, db *gorm.DB, login string) (*domain.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	return r.findUser(db.WithContext(ctx), "LOWER(username) = ? OR LOWER(email) = ?", login, login)
}

func (r *repo) findUser(stmt *gorm.DB, query string, args ...any) (*domain.User, error) {
	var user domain.User
	err := stmt.Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.User, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.User{})

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []domain.User
	err := stmt.Order("username ASC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *repo) CountActiveAdmins(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("role = ? AND is_active = ?", domain.RoleAdmin, true).
		Count(&count).Error
	return count, err
}

func (r *repo) TouchLogin(ctx context.Context, db *gorm.DB, id int64, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *repo) SetPasswordHash(ctx context.Context, db *gorm.DB, id int64, hash string) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

func (r *repo) CreateSession(ctx context.Context, db *gorm.DB, session *domain.Session) error {
	return db.WithContext(ctx).Omit("User").Create(session).Error
}

func (r *repo) GetSessionByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*domain.Session, error) {
	var session domain.Session
	err := db.WithContext(ctx).
		Preload("User").
		Where("session_token_hash = ?", tokenHash).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repo) UpdateLastSeen(ctx context.Context, db *gorm.DB, sessionID int64, lastSeen time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", sessionID).
		Update("last_seen_at", lastSeen).Error
}

func (r *repo) RevokeSession(ctx context.Context, db *gorm.DB, sessionID int64, revokedAt time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ? AND revoked_at IS NULL", sessionID).
		Update("revoked_at", revokedAt).Error
}

func (r *repo) RevokeUserSessions(ctx context.Context, db *gorm.DB, userID int64, revokedAt time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", revokedAt).Error
}
