package amc

import (
	"github.com/smallbiznis/crm/internal/amc/repository"
	"github.com/smallbiznis/crm/internal/amc/service"
	"go.uber.org/fx"
)

var Module = fx.Module("amc.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
