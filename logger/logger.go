package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init sets up the global structured logger. Safe to call more than once.
func Init() {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		l, err := cfg.Build()
		if err != nil {
			l = zap.NewNop()
		}
		sugar = l.Sugar()
	})
}

// L returns the global logger instance.
func L() *zap.SugaredLogger {
	if sugar == nil {
		Init()
	}
	return sugar
}
