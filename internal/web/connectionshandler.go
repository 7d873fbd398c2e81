package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/coder"
	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
)

type ConnectionSummary struct {
	Name             string `json:"name"`
	SubscriptionType string `json:"subscriptionType"`
}

type connectionHandler struct {
	logger *zap.SugaredLogger
	mngr   *conf.ConfigurationManager
}

func NewConnectionHandler(lc fx.Lifecycle, e *echo.Echo, logger *zap.SugaredLogger, mw *Middleware, mngr *conf.ConfigurationManager) {
	log := logger.Named("web")

	handler := &connectionHandler{
		logger: log,
		mngr:   mngr,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			e.GET("/connections", handler.listConnections, mw.authorizer(log, "source:r"))
			e.POST("/connections", handler.registerConnections, mw.authorizer(log, "source:w"))
			return nil
		},
	})
}

func (handler *connectionHandler) listConnections(c echo.Context) error {
	connections := make([]ConnectionSummary, 0)
	for _, v := range handler.mngr.Connections() {
		summary := ConnectionSummary{Name: v.Name}
		if v.Source != nil && v.Source.Subscription != nil {
			summary.SubscriptionType = v.Source.Subscription.SubscriptionType
		}
		connections = append(connections, summary)
	}

	return c.JSON(http.StatusOK, connections)
}

func (handler *connectionHandler) registerConnections(c echo.Context) error {
	registered := 0
	err := coder.ParseConnections(c.Request().Body, func(connection conf.ConnectionConfig) error {
		handler.mngr.Register(connection)
		registered++
		return nil
	})
	if err != nil {
		handler.logger.Warn(err)
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("could not parse the json payload").Error())
	}

	return c.JSON(http.StatusOK, map[string]int{"registered": registered})
}
