package catalogimport

import (
	"github.com/smallbiznis/vitrine/internal/catalogimport/repository"
	"github.com/smallbiznis/vitrine/internal/catalogimport/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalogimport.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
