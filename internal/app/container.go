package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devhub/internal/config"
	"devhub/internal/database"
	"devhub/internal/database/migration"
	dbpostgres "devhub/internal/database/postgres"
	"devhub/internal/database/seeder"
	"devhub/internal/domain/picture"
	"devhub/internal/events"
	"devhub/internal/infrastructure/cache"
	"devhub/internal/infrastructure/storage"
	"devhub/internal/infrastructure/storage/local"
	"devhub/internal/infrastructure/storage/minio"
	"devhub/internal/pkg/jwt"
	applog "devhub/internal/pkg/logger"
	"devhub/internal/repository"
	ucauth "devhub/internal/usecase/auth"
	ucprofile "devhub/internal/usecase/profile"
	ucproject "devhub/internal/usecase/project"
	"devhub/internal/ws"

	"go.uber.org/zap"
)

// Container holds the long-lived dependencies of the API process.
type Container struct {
	Config config.Config
	Logger *zap.Logger

	DB       database.DB
	Cache    *cache.Redis
	Pictures picture.Storage
	Janitor  *storage.Janitor
	Hub      *ws.Hub
	Broker   *events.Broker
	Tokens   jwt.Service

	Auth     *ucauth.Service
	Profiles *ucprofile.Service
	Projects *ucproject.Service

	// LocalUploadDir is set when pictures are served from disk.
	LocalUploadDir string

	cancel context.CancelFunc
}

// NewContainer connects to Postgres and Redis, prepares the schema, and wires
// every component.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := PrepareDatabase(ctx, cfg.Database, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	redisCache := cache.NewRedis(ctx, cfg.Redis, logger)

	c, err := NewContainerWithDB(ctx, cfg, logger, db, redisCache)
	if err != nil {
		_ = redisCache.Close()
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// PrepareDatabase applies migrations and seeders as configured.
func PrepareDatabase(ctx context.Context, cfg config.DatabaseConfig, db database.DB, logger *zap.Logger) error {
	if cfg.RunMigrations {
		r := migration.Runner{Dir: cfg.MigrationsDir, Logger: logger}
		if err := r.Run(ctx, db.SQLDB()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.RunSeeders {
		if err := (seeder.Runner{Seeders: seeder.Defaults(), Logger: logger}).Run(ctx, db); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

// NewContainerWithDB wires the components around an open database. A nil
// cache disables caching and cross-instance events.
func NewContainerWithDB(ctx context.Context, cfg config.Config, logger *zap.Logger, db database.DB, redisCache *cache.Redis) (*Container, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	logger = applog.OrNop(logger)
	if redisCache == nil {
		redisCache = cache.NewRedisWithClient(nil, cfg.Redis.TTL, logger)
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Cache:  redisCache,
	}

	if err := c.initStorage(ctx); err != nil {
		return nil, err
	}

	c.Janitor = storage.NewJanitor(c.Pictures, cfg.Storage.JanitorWorkers, logger)
	c.Hub = ws.NewHub(logger)
	c.Broker = events.NewBroker(c.Hub, redisCache, logger)
	c.Tokens = jwt.NewHMACService(cfg.JWT.Secret, cfg.JWT.ExpiresIn, cfg.App.AppName)

	users := repository.NewPostgresUserRepository(db)
	profiles := repository.NewPostgresProfileRepository(db)
	projects := repository.NewPostgresProjectRepository(db)

	c.Profiles = ucprofile.NewService(ucprofile.Deps{
		Profiles:  profiles,
		Projects:  projects,
		Pictures:  c.Pictures,
		Discarder: c.Janitor,
		Cache:     redisCache,
		CacheTTL:  cfg.Redis.TTL,
		Events:    c.Broker,
		Logger:    logger,
	}, ucprofile.PictureLimits{
		MaxBytes:     cfg.Storage.MaxPictureBytes,
		AllowedTypes: cfg.Storage.AllowedContentTypes,
	})
	c.Projects = ucproject.NewService(projects, redisCache, c.Broker, logger)
	c.Auth = ucauth.NewService(users, c.Tokens, c.Profiles, logger)

	return c, nil
}

func (c *Container) initStorage(ctx context.Context) error {
	switch c.Config.Storage.Driver {
	case "minio":
		s, err := minio.New(ctx, c.Config.Storage)
		if err != nil {
			return fmt.Errorf("minio storage: %w", err)
		}
		c.Pictures = s
	default:
		s, err := local.New(c.Config.Storage.UploadDir, c.Config.App.PublicBaseURL)
		if err != nil {
			return fmt.Errorf("local storage: %w", err)
		}
		c.Pictures = s
		c.LocalUploadDir = s.Dir()
	}
	return nil
}

// Start launches the background workers: the picture janitor, the websocket
// hub and the cross-instance event relay.
func (c *Container) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	c.Janitor.Start(ctx)
	go c.Hub.Run(ctx)
	go func() {
		if err := c.Broker.Relay(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.Logger.Warn("event relay stopped", zap.Error(err))
		}
	}()
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if c.Janitor != nil {
		c.Janitor.Stop(stopCtx)
	}
	if c.cancel != nil {
		c.cancel()
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
