package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/coder"
	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/kafka"
)

type recordsHandler struct {
	logger  *zap.SugaredLogger
	records *kafka.Records
}

func NewRecordsHandler(lc fx.Lifecycle, e *echo.Echo, logger *zap.SugaredLogger, mw *Middleware, records *kafka.Records) {
	log := logger.Named("web")

	handler := &recordsHandler{
		logger:  log,
		records: records,
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			e.GET("/connections/:connection/records", handler.consume, mw.authorizer(log, "source:r"))
			return nil
		},
	})
}

func (handler *recordsHandler) consume(c echo.Context) error {
	name, _ := url.QueryUnescape(c.Param("connection"))
	limit := c.QueryParam("limit")
	var l int64 = -1
	if limit != "" {
		f, err := strconv.ParseInt(limit, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		l = f
	}

	if !handler.records.DoesConnectionExist(name) {
		return c.NoContent(http.StatusNotFound)
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c.Response().WriteHeader(http.StatusOK)
	enc := json.NewEncoder(c.Response())

	c.Response().Write([]byte("["))

	first := true
	request := kafka.StreamRequest{
		Connection: name,
		Limit:      l,
	}
	err := handler.records.Stream(request, func(record *coder.Record) {
		if !first {
			c.Response().Write([]byte(","))
		}
		first = false
		_ = enc.Encode(record)
		c.Response().Flush()
	})

	if err != nil {
		// headers are already on the wire at this point, all we can do is log
		handler.logger.Warn(err)
	}

	c.Response().Write([]byte("]"))
	c.Response().Flush()
	return nil
}
