package taxonomy

import (
	"github.com/smallbiznis/vitrine/internal/taxonomy/repository"
	"github.com/smallbiznis/vitrine/internal/taxonomy/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taxonomy.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(service.NewResolver),
)
