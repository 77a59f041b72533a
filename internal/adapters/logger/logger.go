package logger

import (
	"fmt"

	"go.uber.org/zap"
)

type option func(*config)

type config struct {
	outputPaths []string
}

// OutputPath adds a log file next to stdout. An empty path is ignored.
func OutputPath(path string) option {
	return func(c *config) {
		if path != "" {
			c.outputPaths = append(c.outputPaths, path)
		}
	}
}

func New(level string, options ...option) (*zap.Logger, error) {
	c := &config{
		outputPaths: []string{"stdout"},
	}
	for _, opt := range options {
		opt(c)
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("failed parse log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.OutputPaths = c.outputPaths

	lgr, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed build logger: %w", err)
	}

	return lgr, nil
}
