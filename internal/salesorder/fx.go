package salesorder

import (
	"github.com/smallbiznis/crm/internal/salesorder/repository"
	"github.com/smallbiznis/crm/internal/salesorder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("salesorder.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
