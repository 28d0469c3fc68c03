package auth

import (
	"context"

	"github.com/smallbiznis/vitrine/internal/auth/domain"
	"github.com/smallbiznis/vitrine/internal/auth/repository"
	"github.com/smallbiznis/vitrine/internal/auth/service"
	"github.com/smallbiznis/vitrine/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)

// Bootstrap makes sure the configured admin account exists. Without a
// configured password nothing is created.
func Bootstrap(lc fx.Lifecycle, cfg config.Config, svc domain.Service, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
				log.Warn("admin bootstrap skipped: admin username or password not configured")
				return nil
			}
			_, _, err := svc.EnsureAdmin(ctx, domain.CreateUserRequest{
				Username: cfg.AdminUsername,
				Email:    cfg.AdminEmail,
				Password: cfg.AdminPassword,
			})
			return err
		},
	})
}
