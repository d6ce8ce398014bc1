package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/opendrive/drivevalue/internal/clock"
	"github.com/opendrive/drivevalue/internal/config"
	"github.com/opendrive/drivevalue/internal/migration"
	"github.com/opendrive/drivevalue/internal/observability"
	"github.com/opendrive/drivevalue/internal/scheduler"
	"github.com/opendrive/drivevalue/internal/server"
	"github.com/opendrive/drivevalue/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func newSnowflakeNode() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
