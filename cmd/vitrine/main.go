package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vitrine/internal/auth"
	"github.com/smallbiznis/vitrine/internal/clock"
	"github.com/smallbiznis/vitrine/internal/config"
	"github.com/smallbiznis/vitrine/internal/migration"
	"github.com/smallbiznis/vitrine/internal/observability"
	"github.com/smallbiznis/vitrine/internal/server"
	"github.com/smallbiznis/vitrine/pkg/db"
	"go.uber.org/fx"
)

// snowflakeNode identifies the API process; the import CLI uses its own node.
const snowflakeNode = 1

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP surface and every domain module behind it
		server.Module,

		fx.Invoke(auth.Bootstrap),
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(snowflakeNode)
}
