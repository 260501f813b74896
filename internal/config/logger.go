package config

import "go.uber.org/zap"

// NewLogger builds a development logger in dev mode and a JSON production logger otherwise
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.IsDev() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
