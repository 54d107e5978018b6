package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/cache"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/migration"
	"github.com/smallbiznis/crm/internal/numbering"
	"github.com/smallbiznis/crm/internal/observability"
	"github.com/smallbiznis/crm/internal/providers"
	"github.com/smallbiznis/crm/internal/ratelimit"
	"github.com/smallbiznis/crm/internal/server"
	"github.com/smallbiznis/crm/internal/usagemetrics"
	"github.com/smallbiznis/crm/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		cache.Module,
		ratelimit.Module,
		providers.Module,
		numbering.Module,

		// Schema and background workers
		migration.Module,
		usagemetrics.Module,

		// HTTP API and the domain services behind it
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
