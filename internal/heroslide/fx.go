package heroslide

import (
	"github.com/smallbiznis/vitrine/internal/heroslide/domain"
	"github.com/smallbiznis/vitrine/internal/heroslide/service"
	"github.com/smallbiznis/vitrine/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("heroslide.service",
	fx.Provide(repository.ProvideStore[domain.HeroSlide]),
	fx.Provide(service.New),
)
