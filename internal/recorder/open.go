package recorder

import (
	"fmt"

	"CandleAlert/internal/config"

	"go.uber.org/zap"
)

// Open returns the recorder selected by cfg.Driver.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (Recorder, error) {
	switch cfg.Driver {
	case "", "none":
		return NewNoopRecorder(), nil
	case "sqlite":
		return NewSQLiteRecorder(cfg.SQLitePath, logger)
	case "postgres":
		return NewPostgresRecorder(cfg.Postgres, logger)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
