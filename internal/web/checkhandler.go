package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/goburrow/cache"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/kafka"
	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/source"
)

type checkHandler struct {
	logger  *zap.SugaredLogger
	env     *conf.Env
	mngr    *conf.ConfigurationManager
	builder *source.Builder
	probe   *kafka.Probe
	statsd  statsd.ClientInterface
	// brokers answer checks slowly, recent results are served from cache
	results cache.Cache
}

func NewCheckHandler(lc fx.Lifecycle, e *echo.Echo, logger *zap.SugaredLogger, mw *Middleware,
	env *conf.Env, mngr *conf.ConfigurationManager, builder *source.Builder,
	service *kafka.Service, statsdClient statsd.ClientInterface) {
	log := logger.Named("web")

	handler := &checkHandler{
		logger:  log,
		env:     env,
		mngr:    mngr,
		builder: builder,
		probe:   service.Probe,
		statsd:  statsdClient,
		results: cache.New(cache.WithExpireAfterWrite(30 * time.Second)),
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			e.POST("/connections/:connection/check", handler.check, mw.authorizer(log, "source:r"))
			return nil
		},
	})
}

func (handler *checkHandler) check(c echo.Context) error {
	name, _ := url.QueryUnescape(c.Param("connection"))

	connection := handler.mngr.Connection(name)
	if connection == nil {
		return c.NoContent(http.StatusNotFound)
	}

	if cached, ok := handler.results.GetIfPresent(name); ok {
		return c.JSON(http.StatusOK, cached)
	}

	tags := []string{
		fmt.Sprintf("application:%s", handler.env.ServiceName),
		fmt.Sprintf("connection:%s", name),
	}
	_ = handler.statsd.Incr("kafka.check", tags, 1)

	result := handler.runCheck(c.Request().Context(), connection)
	handler.results.Put(name, result)
	return c.JSON(http.StatusOK, result)
}

func (handler *checkHandler) runCheck(ctx context.Context, connection *conf.ConnectionConfig) *kafka.CheckResult {
	client, err := handler.builder.ConstructOnly(connection.Source)
	if err != nil {
		handler.logger.Warnf("Check failed for connection %s: %v", connection.Name, err)
		return &kafka.CheckResult{Status: kafka.CheckFailed, Message: err.Error()}
	}
	_ = client.Close()

	return handler.probe.Check(ctx, connection.Source)
}
