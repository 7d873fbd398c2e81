package web

import (
	"context"
	"net/http"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
)

type Server struct {
	logger       *zap.SugaredLogger
	statsdClient statsd.ClientInterface
	e            *echo.Echo
}

func NewWebServer(lc fx.Lifecycle, env *conf.Env,
	logger *zap.SugaredLogger,
	mw *Middleware,
	statsd statsd.ClientInterface) (*Server, *echo.Echo) {
	port := env.Port
	e := echo.New()
	e.HideBanner = true

	e.Use(mw.funcs()...)

	l := logger.Named("web")
	s := &Server{
		logger:       l,
		statsdClient: statsd,
		e:            e,
	}
	e.GET("/health", health)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			l.Infof("Starting Http server on :%s", port)
			go func() {
				_ = e.Start(":" + port)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.Shutdown(ctx)
		},
	})

	return s, e
}

func (w *Server) Shutdown(ctx context.Context) error {
	return w.e.Shutdown(ctx)
}

func health(c echo.Context) error {
	return c.String(http.StatusOK, "UP")
}
