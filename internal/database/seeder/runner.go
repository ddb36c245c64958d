package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devhub/internal/database"
	applog "devhub/internal/pkg/logger"

	"go.uber.org/zap"
)

type Runner struct {
	Seeders []Seeder
	Logger  *zap.Logger
}

// Run executes the seeders in order and stops at the first failure.
func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return errors.New("nil db")
	}
	log := applog.OrNop(r.Logger)

	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		started := time.Now()
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		log.Info("seeder finished", zap.String("seeder", s.Name()), zap.Duration("took", time.Since(started)))
	}
	return nil
}
