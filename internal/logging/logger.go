// Package logging provides zap logger helpers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger configured for development or production.
// Each harvester process tags its output with a run identifier so that
// interleaved crawl and ingest runs can be told apart downstream.
func New(development bool, runID string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
	} else {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		logger, err = cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build prod logger: %w", err)
		}
	}
	if runID != "" {
		logger = logger.With(zap.String("run_id", runID))
	}
	return logger, nil
}
