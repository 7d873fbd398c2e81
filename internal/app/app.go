package app

import (
	"go.uber.org/fx"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/kafka"
	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/source"
	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/web"
)

func Wire() *fx.App {
	return fx.New(
		fx.Provide(
			conf.NewEnv,
			conf.NewLogger,
			conf.NewStatsd,
			conf.NewConfigurationManager,
			source.NewFactory,
			source.NewBuilder,
			kafka.NewProbe,
			kafka.NewRecords,
			kafka.NewService,
			web.NewMiddleware,
			web.NewWebServer,
		),
		fx.Invoke(
			web.NewConnectionHandler,
			web.NewCheckHandler,
			web.NewRecordsHandler,
		),
	)
}
