package config

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NewLogger builds a zap logger.  Development mode uses the console encoder.
func NewLogger(l Log) (*zap.Logger, error) {
	var zc zap.Config
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if l.Level != "" {
		level, err := zap.ParseAtomicLevel(l.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "log level %q", l.Level)
		}
		zc.Level = level
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return logger, nil
}
