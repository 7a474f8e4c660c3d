package app

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/config"
)

// newLogger returns a development logger on stderr, or a JSON logger
// appending to the configured log file.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogFile == "" {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, errors.Wrap(err, "new logger")
		}

		return log, nil
	}

	logConfig := zap.NewProductionConfig()
	logConfig.OutputPaths = []string{cfg.LogFile}
	logConfig.ErrorOutputPaths = []string{cfg.LogFile}

	log, err := logConfig.Build()
	if err != nil {
		return nil, errors.Wrap(err, "new logger")
	}

	return log, nil
}
