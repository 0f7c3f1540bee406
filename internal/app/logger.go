package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger builds a production JSON logger writing to stderr at the given level
// ("DEBUG", "INFO", ...).
func Logger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg.Level.SetLevel(lvl)

	return cfg.Build()
}
