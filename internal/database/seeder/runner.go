package seeder

import (
	"context"
	"fmt"
	"time"

	"hire/internal/database"

	"go.uber.org/zap"
)

// Seeder fills demo data. Implementations must be idempotent: the runner is
// invoked on every boot with DB_SEED_DEMO set.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) (int, error)
}

func Defaults() []Seeder {
	return []Seeder{CandidateProfilesSeeder{}}
}

type Runner struct {
	Seeders []Seeder
	Logger  *zap.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return database.ErrNilDB
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}

	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		n, err := s.Run(ctx, db)
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		log.Info("seeder done",
			zap.String("seeder", s.Name()),
			zap.Int("inserted", n),
			zap.Duration("took", time.Since(start)),
		)
	}
	return nil
}
