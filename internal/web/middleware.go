package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
)

type Middleware struct {
	logger       *zap.SugaredLogger
	statsdClient statsd.ClientInterface
	env          *conf.Env
}

func NewMiddleware(env *conf.Env, logger *zap.SugaredLogger, statsdClient statsd.ClientInterface) *Middleware {
	if env.Auth.Middleware == "noop" { // don't enable local security (yet)
		logger.Infof("WARNING: Security is disabled")
	}
	return &Middleware{
		logger:       logger,
		statsdClient: statsdClient,
		env:          env,
	}
}

func (mw *Middleware) funcs() []echo.MiddlewareFunc {
	skipper := func(c echo.Context) bool {
		// don't instrument health endpoints
		return strings.HasPrefix(c.Request().URL.Path, "/health")
	}

	m := []echo.MiddlewareFunc{mw.requestLogger(skipper)}
	if mw.env.Auth.Middleware != "noop" {
		m = append(m, setupCors())
	}
	m = append(m, middleware.Recover())
	return m
}

func (mw *Middleware) requestLogger(skipper func(c echo.Context) bool) echo.MiddlewareFunc {
	log := mw.logger.Desugar().Named("web")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			elapsed := time.Since(start)

			req := c.Request()
			res := c.Response()
			tags := []string{
				fmt.Sprintf("application:%s", mw.env.ServiceName),
				fmt.Sprintf("method:%s", strings.ToLower(req.Method)),
				fmt.Sprintf("status:%d", res.Status),
			}
			_ = mw.statsdClient.Incr("http.count", tags, 1)
			_ = mw.statsdClient.Timing("http.time", elapsed, tags, 1)

			log.Info("Request",
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", res.Status),
				zap.Duration("elapsed", elapsed),
			)
			return err
		}
	}
}

// authorizer guards an endpoint with a bearer token check for the given
// scope. In noop mode it passes everything through.
func (mw *Middleware) authorizer(log *zap.SugaredLogger, scope string) echo.MiddlewareFunc {
	if mw.env.Auth.Middleware == "noop" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	auth := mw.env.Auth
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")
			token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(auth.Secret), nil
			})
			if err != nil || !token.Valid {
				log.Infof("Rejected token: %v", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid claims")
			}
			if auth.Audience != "" && !claims.VerifyAudience(auth.Audience, true) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid audience")
			}
			if auth.Issuer != "" && !claims.VerifyIssuer(auth.Issuer, true) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid issuer")
			}
			if scope != "" && !hasScope(claims, scope) {
				return echo.NewHTTPError(http.StatusForbidden, "missing scope "+scope)
			}
			return next(c)
		}
	}
}

func hasScope(claims jwt.MapClaims, scope string) bool {
	raw, ok := claims["scope"].(string)
	if !ok {
		return false
	}
	for _, s := range strings.Fields(raw) {
		if s == scope {
			return true
		}
	}
	return false
}

func setupCors() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"https://api.mimiro.io", "https://platform.mimiro.io"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	})
}
