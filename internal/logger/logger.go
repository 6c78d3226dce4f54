package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New returns a JSON production logger for "production" and a console
// development logger otherwise.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}
