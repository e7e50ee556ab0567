package recorder

import (
	"context"
	"fmt"
	"time"

	"CandleAlert/internal/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// signalRun is the gorm model of the signal_runs table.
type signalRun struct {
	ID         uint      `gorm:"primaryKey"`
	RunID      string    `gorm:"size:36;uniqueIndex;not null"`
	StartedAt  time.Time `gorm:"index;not null"`
	FinishedAt time.Time `gorm:"not null"`
	Symbol     string    `gorm:"size:32;not null"`
	Interval   string    `gorm:"size:8;not null"`
	Outcome    string    `gorm:"size:32;not null"`
	Signal     bool      `gorm:"not null"`
	Price      *float64
	Conditions string
	Error      string
}

func (signalRun) TableName() string { return "signal_runs" }

func toSignalRun(rec *RunRecord) (*signalRun, error) {
	conds, err := encodeConditions(rec.Conditions)
	if err != nil {
		return nil, err
	}
	row := &signalRun{
		RunID:      rec.RunID,
		StartedAt:  rec.StartedAt.UTC(),
		FinishedAt: rec.FinishedAt.UTC(),
		Symbol:     rec.Symbol,
		Interval:   rec.Interval,
		Outcome:    rec.Outcome,
		Signal:     rec.Signal,
		Conditions: conds,
		Error:      rec.Error,
	}
	if rec.Price != 0 {
		p := rec.Price
		row.Price = &p
	}
	return row, nil
}

func (s *signalRun) toRecord() (RunRecord, error) {
	rec := RunRecord{
		RunID:      s.RunID,
		StartedAt:  s.StartedAt.UTC(),
		FinishedAt: s.FinishedAt.UTC(),
		Symbol:     s.Symbol,
		Interval:   s.Interval,
		Outcome:    s.Outcome,
		Signal:     s.Signal,
		Error:      s.Error,
	}
	if s.Price != nil {
		rec.Price = *s.Price
	}
	var err error
	rec.Conditions, err = decodeConditions(s.Conditions)
	return rec, err
}

// PostgresRecorder persists run history to PostgreSQL through gorm.
type PostgresRecorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPostgresRecorder connects and auto-migrates the signal_runs table.
func NewPostgresRecorder(cfg config.PostgresConfig, logger *zap.Logger) (*PostgresRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := db.AutoMigrate(&signalRun{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto-migrate signal_runs: %w", err)
	}
	logger.Info("postgres recorder opened", zap.String("host", cfg.Host), zap.String("dbname", cfg.DBName))
	return &PostgresRecorder{db: db, logger: logger}, nil
}

func (p *PostgresRecorder) RecordRun(ctx context.Context, rec *RunRecord) error {
	row, err := toSignalRun(rec)
	if err != nil {
		return err
	}
	if err := p.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (p *PostgresRecorder) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	var rows []signalRun
	if err := p.db.WithContext(ctx).Order("started_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	out := make([]RunRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (p *PostgresRecorder) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	p.logger.Info("closing postgres recorder")
	return sqlDB.Close()
}
