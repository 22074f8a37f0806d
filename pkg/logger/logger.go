// Package logger builds the application's zap logger from configuration.
package logger

import (
	"errors"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DebugLevel = iota - 1
	InfoLevel
	WarnLevel
	ErrorLevel
)

type Configuration struct {
	Level      int
	TimeFormat string
}

func (c Configuration) Validate() error {
	if c.Level < DebugLevel || c.Level > ErrorLevel {
		return errors.New("logger: unknown log level")
	}
	if c.TimeFormat == "" {
		return errors.New("logger: time format must not be empty")
	}
	return nil
}

// New builds a production logger with the configured level and time format.
func New(cfg Configuration) (*zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapcore.Level(cfg.Level))
	zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)

	return zapCfg.Build()
}

// NewFromEnv builds the logger from viper-managed settings (LOG_LEVEL,
// LOG_TIME_FORMAT) and returns a cleanup that flushes buffered entries.
func NewFromEnv() (*zap.Logger, func(), error) {
	viper.SetDefault("LOG_LEVEL", InfoLevel)
	viper.SetDefault("LOG_TIME_FORMAT", time.RFC3339Nano)

	cfg := Configuration{
		Level:      viper.GetInt("LOG_LEVEL"),
		TimeFormat: viper.GetString("LOG_TIME_FORMAT"),
	}

	log, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = log.Sync()
	}
	return log, cleanup, nil
}
