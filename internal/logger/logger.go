// Package logger hands out the process-wide sugared zap logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	instance *zap.SugaredLogger
	once     sync.Once
)

// New builds the process logger on first call; every later call returns the
// same instance regardless of arguments. Production mode emits JSON,
// development mode console output with colored levels; both stamp ISO8601
// times.
func New(development bool) (*zap.SugaredLogger, error) {
	var err error
	once.Do(func() {
		zcfg := zap.NewProductionConfig()
		if development {
			zcfg = zap.NewDevelopmentConfig()
			zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zcfg.DisableStacktrace = true

		var l *zap.Logger
		l, err = zcfg.Build()
		if err != nil {
			return
		}
		instance = l.Sugar()
	})
	return instance, err
}

// Nop returns a no-op logger for tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
