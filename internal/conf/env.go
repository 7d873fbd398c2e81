package conf

import (
	"fmt"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Env struct {
	Logger          *zap.SugaredLogger
	Port            string
	ServiceName     string
	ConfigLocation  string
	ConfigToken     string
	RefreshInterval string
	AgentHost       string
	Auth            *AuthConfig
}

type AuthConfig struct {
	Middleware string
	Secret     string
	Audience   string
	Issuer     string
}

func NewEnv() *Env {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("SERVICE_NAME", "kafka-source-layer")
	viper.SetDefault("CONFIG_LOCATION", "file://resources/default-config.json")
	viper.SetDefault("CONFIG_REFRESH_INTERVAL", "@every 120s")
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("AUTHORIZATION_MIDDLEWARE", "noop")
	viper.AutomaticEnv()

	logger := newLogger(viper.GetString("LOG_LEVEL"))

	return &Env{
		Logger:          logger,
		Port:            viper.GetString("PORT"),
		ServiceName:     viper.GetString("SERVICE_NAME"),
		ConfigLocation:  viper.GetString("CONFIG_LOCATION"),
		ConfigToken:     viper.GetString("CONFIG_TOKEN"),
		RefreshInterval: viper.GetString("CONFIG_REFRESH_INTERVAL"),
		AgentHost:       viper.GetString("DD_AGENT_HOST"),
		Auth: &AuthConfig{
			Middleware: viper.GetString("AUTHORIZATION_MIDDLEWARE"),
			Secret:     viper.GetString("AUTHORIZATION_SECRET"),
			Audience:   viper.GetString("AUTHORIZATION_AUDIENCE"),
			Issuer:     viper.GetString("AUTHORIZATION_ISSUER"),
		},
	}
}

func NewLogger(env *Env) *zap.SugaredLogger {
	return env.Logger
}

// NewStatsd returns a telemetry client. Without a configured agent host you
// get a no-op client, so metrics calls are always safe.
func NewStatsd(env *Env) (statsd.ClientInterface, error) {
	if env.AgentHost == "" {
		return &statsd.NoOpClient{}, nil
	}
	return statsd.New(env.AgentHost, statsd.WithNamespace(env.ServiceName+"."))
}

func newLogger(level string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("unable to build logger: %v", err))
	}
	return logger.Sugar()
}
