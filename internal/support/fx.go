package support

import (
	"github.com/smallbiznis/crm/internal/support/repository"
	"github.com/smallbiznis/crm/internal/support/service"
	"go.uber.org/fx"
)

var Module = fx.Module("support.service",
	fx.Provide(repository.ProvideCases),
	fx.Provide(repository.ProvideSolutions),
	fx.Provide(service.NewCaseService),
	fx.Provide(service.NewSolutionService),
)
