package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hire/internal/config"
	"hire/internal/database"
	"hire/internal/database/migration"
	dbpostgres "hire/internal/database/postgres"
	"hire/internal/database/seeder"
	"hire/internal/domain/action"
	"hire/internal/infrastructure/cache"
	"hire/internal/pkg/jwt"
	"hire/internal/ranking"
	"hire/internal/repository"
	"hire/internal/usecase"
	"hire/internal/ws"

	"go.uber.org/zap"
)

// Container owns every long-lived dependency of the HTTP service.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Cache  *cache.Redis
	Hub    *ws.Hub
	JWT    jwt.Service

	ProfileGraph    usecase.ProfileGraphUsecase
	CandidateSearch usecase.CandidateSearchUsecase

	stopHub context.CancelFunc
}

func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout(cfg))
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := (migration.Runner{Dir: cfg.Database.MigrationsDir, Logger: logger.Named("migration")}).Run(ctx, db.SQLDB()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if cfg.Database.SeedDemo {
		seeds := seeder.Runner{Seeders: seeder.Defaults(), Logger: logger.Named("seeder")}
		if err := seeds.Run(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	ranker, err := ranking.New(ctx, cfg.Ranking, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ranking: %w", err)
	}
	if ranker == nil {
		logger.Warn("no ranking provider configured, searches use lexical scores only")
	}

	redisCache := cache.NewRedis(cfg.Redis, logger)

	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := ws.NewHub(logger.Named("ws"))
	go hub.Run(hubCtx)

	profiles := repository.NewPostgresProfileRepository(db, logger.Named("profiles"))

	graphUC := usecase.NewProfileGraphUsecase(
		profiles,
		action.NewApplier(logger.Named("applier")),
		redisCache,
		hub,
		logger.Named("graph"),
	)
	searchUC := usecase.NewCandidateSearchUsecase(
		profiles,
		ranker,
		redisCache,
		usecase.CandidateSearchConfig{
			PrefilterLimit:   cfg.Search.PrefilterLimit,
			SerializeWorkers: cfg.Search.SerializeWorkers,
			RankTimeout:      cfg.Ranking.Timeout,
			CacheTTL:         cfg.Search.CacheTTL,
		},
		logger.Named("search"),
	)

	return &Container{
		Config:          cfg,
		Logger:          logger,
		DB:              db,
		Cache:           redisCache,
		Hub:             hub,
		JWT:             jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn),
		ProfileGraph:    graphUC,
		CandidateSearch: searchUC,
		stopHub:         stopHub,
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.stopHub != nil {
		c.stopHub()
	}

	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}

func connectTimeout(cfg config.Config) time.Duration {
	if cfg.Database.ConnectTimeout > 0 {
		return 2 * cfg.Database.ConnectTimeout
	}
	return 10 * time.Second
}
