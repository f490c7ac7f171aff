//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"farmstand/internal/auth"
	"farmstand/internal/config"
	"farmstand/internal/dbmysql"
	"farmstand/internal/farm"
	"farmstand/internal/message"
	"farmstand/internal/relay"
	"farmstand/internal/server"
	"farmstand/internal/user"
)

// InitializeApplication builds the full object graph. Wire generates
// the real body in wire_gen.go.
func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		config.Load,
		dbmysql.NewMySQL,
		ProvideMongo,
		ProvideAvatarStorage,

		auth.NewSessionRepository,
		user.NewRepository,
		farm.NewRepository,
		message.NewRepository,

		auth.NewTokenCodec,
		auth.NewService,
		auth.NewMiddleware,
		auth.NewHandler,

		relay.NewHub,
		ProvideNotifier,
		message.NewService,
		message.NewHandler,
		user.NewHandler,
		relay.NewHandler,

		server.NewRouter,
		wire.Struct(new(Application), "Config", "DB", "Mongo", "Hub", "Auth", "Router"),
	)
	return &Application{}, nil, nil
}
