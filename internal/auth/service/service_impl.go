package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vitrine/internal/auth/domain"
	"github.com/smallbiznis/vitrine/internal/auth/password"
	"github.com/smallbiznis/vitrine/internal/clock"
	"github.com/smallbiznis/vitrine/internal/config"
	"github.com/smallbiznis/vitrine/pkg/db"
	"github.com/smallbiznis/vitrine/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionTokenBytes = 32
	defaultSessionTTL = 7 * 24 * time.Hour
	// lastSeenResolution limits last_seen_at writes to one per session per minute.
	lastSeenResolution = time.Minute

	minPasswordLength = 8
	maxUsernameLength = 150
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Cfg         config.Config
	Repo        domain.Repository
	SessionRepo domain.SessionRepository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	sessionTTL  time.Duration
	repo        domain.Repository
	sessionRepo domain.SessionRepository
}

func New(p Params) domain.Service {
	ttl := p.Cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("auth.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		sessionTTL:  ttl,
		repo:        p.Repo,
		sessionRepo: p.SessionRepo,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByLogin(ctx, s.db, login)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive || !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	rehashed := ""
	if password.NeedsRehash(user.PasswordHash) {
		if rehashed, err = password.Hash(req.Password); err != nil {
			return nil, err
		}
	}

	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &domain.Session{
		ID:               s.genID.Generate().Int64(),
		UserID:           user.ID,
		SessionTokenHash: hashToken(rawToken),
		UserAgent:        strings.TrimSpace(req.UserAgent),
		IPAddress:        strings.TrimSpace(req.IPAddress),
		ExpiresAt:        now.Add(s.sessionTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.sessionRepo.CreateSession(ctx, tx, session); err != nil {
			return err
		}
		if rehashed != "" {
			if err := s.repo.SetPasswordHash(ctx, tx, user.ID, rehashed); err != nil {
				return err
			}
		}
		return s.repo.TouchLogin(ctx, tx, user.ID, now)
	})
	if err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	s.log.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return &domain.LoginResult{
		User:      toUserResponse(user),
		RawToken:  rawToken,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	session, err := s.lookupSession(ctx, rawToken)
	if err != nil {
		return err
	}
	return s.sessionRepo.RevokeSession(ctx, s.db, session.ID, s.clock.Now())
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Principal, error) {
	session, err := s.lookupSession(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if !now.Before(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}
	if session.User == nil || !session.User.IsActive {
		return nil, domain.ErrInvalidSession
	}

	if now.Sub(session.LastSeenAt) >= lastSeenResolution {
		if err := s.sessionRepo.UpdateLastSeen(ctx, s.db, session.ID, now); err != nil {
			return nil, err
		}
	}
	return &domain.Principal{
		SessionID: session.ID,
		User:      toUserResponse(session.User),
	}, nil
}

func (s *Service) lookupSession(ctx context.Context, rawToken string) (*domain.Session, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, domain.ErrInvalidSession
	}
	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrInvalidSession
	}
	return session, nil
}

func (s *Service) EnsureAdmin(ctx context.Context, req domain.CreateUserRequest) (*domain.UserResponse, bool, error) {
	existing, err := s.repo.FindByLogin(ctx, s.db, req.Username)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		resp := toUserResponse(existing)
		return &resp, false, nil
	}
	req.Role = string(domain.RoleAdmin)
	created, err := s.CreateUser(ctx, req)
	if err != nil {
		return nil, false, err
	}
	s.log.Info("bootstrap admin created", zap.String("username", created.Username))
	return created, true, nil
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.UserResponse, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}
	role := domain.RoleStaff
	if raw := strings.TrimSpace(req.Role); raw != "" {
		role = domain.Role(strings.ToLower(raw))
		if !role.Valid() {
			return nil, domain.ErrInvalidRole
		}
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           s.genID.Generate().Int64(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureUnique(ctx, tx, user, username); err != nil {
			return err
		}
		if email != nil {
			if err := s.ensureUnique(ctx, tx, user, *email); err != nil {
				return err
			}
		}
		if err := s.repo.Create(ctx, tx, user); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrUserExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ensureUnique rejects a login already used by another user as username or email.
func (s *Service) ensureUnique(ctx context.Context, tx *gorm.DB, self *domain.User, login string) error {
	other, err := s.repo.FindByLogin(ctx, tx, login)
	if err != nil {
		return err
	}
	if other != nil && other.ID != self.ID {
		return domain.ErrUserExists
	}
	return nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*domain.UserResponse, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) ListUsers(ctx context.Context, page pagination.Pagination) (*domain.ListUserResponse, error) {
	users, total, err := s.repo.List(ctx, s.db, page.Offset(), page.Limit())
	if err != nil {
		return nil, err
	}
	results := make([]domain.UserResponse, 0, len(users))
	for i := range users {
		results = append(results, toUserResponse(&users[i]))
	}
	return &domain.ListUserResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Users:    results,
	}, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.UserResponse, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var user *domain.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err = s.repo.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		wasAdmin := user.Role == domain.RoleAdmin && user.IsActive
		revoke := false

		if req.Email != nil {
			email, err := normalizeEmail(*req.Email)
			if err != nil {
				return err
			}
			if email != nil {
				if err := s.ensureUnique(ctx, tx, user, *email); err != nil {
					return err
				}
			}
			user.Email = email
		}
		if req.Role != nil {
			role := domain.Role(strings.ToLower(strings.TrimSpace(*req.Role)))
			if !role.Valid() {
				return domain.ErrInvalidRole
			}
			user.Role = role
		}
		if req.IsActive != nil {
			revoke = revoke || (user.IsActive && !*req.IsActive)
			user.IsActive = *req.IsActive
		}
		if req.Password != nil {
			if len(*req.Password) < minPasswordLength {
				return domain.ErrWeakPassword
			}
			hashed, err := password.Hash(*req.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = hashed
			revoke = true
		}

		if wasAdmin && (user.Role != domain.RoleAdmin || !user.IsActive) {
			if err := s.keepOneAdmin(ctx, tx); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		user.UpdatedAt = now
		if err := s.repo.Save(ctx, tx, user); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrUserExists
			}
			return err
		}
		if revoke {
			return s.sessionRepo.RevokeUserSessions(ctx, tx, user.ID, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	userID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.repo.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		if user.Role == domain.RoleAdmin && user.IsActive {
			if err := s.keepOneAdmin(ctx, tx); err != nil {
				return err
			}
		}
		return s.repo.Delete(ctx, tx, userID)
	})
}

// keepOneAdmin fails when the caller is about to remove the only active admin.
func (s *Service) keepOneAdmin(ctx context.Context, tx *gorm.DB) error {
	admins, err := s.repo.CountActiveAdmins(ctx, tx)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return domain.ErrLastAdmin
	}
	return nil
}

func toUserResponse(u *domain.User) domain.UserResponse {
	return domain.UserResponse{
		ID:          strconv.FormatInt(u.ID, 10),
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func normalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if username == "" || len([]rune(username)) > maxUsernameLength {
		return "", domain.ErrInvalidUsername
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("@.+-_", r):
		default:
			return "", domain.ErrInvalidUsername
		}
	}
	return username, nil
}

func normalizeEmail(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return nil, domain.ErrInvalidEmail
	}
	email := strings.ToLower(addr.Address)
	return &email, nil
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
