package app

import (
	"context"
	"errors"
	"time"

	"kala/internal/config"
	"kala/internal/database"
	dbpostgres "kala/internal/database/postgres"
	"kala/internal/domain/catalog"
	"kala/internal/domain/product"
	"kala/internal/domain/profile"
	"kala/internal/domain/session"
	"kala/internal/infrastructure/cache"
	sessionstore "kala/internal/infrastructure/session"
	"kala/internal/pkg/task"
	"kala/internal/repository"
	"kala/internal/ws"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Container owns the long-lived backends. PostgreSQL and Redis are
// optional; without them profiles, products and sessions stay in memory.
type Container struct {
	Config  config.Config
	Logger  *zap.Logger
	Catalog *catalog.Catalog

	DB    database.DB
	Redis *cache.Redis

	Sessions session.Store
	Profiles profile.Repository
	Products product.Repository

	Hub     *ws.Hub
	Replies *task.Group

	sweeper   *cron.Cron
	cancelHub context.CancelFunc
	hubDone   chan struct{}
}

func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, Logger: logger, Catalog: cat, Replies: task.NewGroup()}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if cfg.Database.Enabled {
		db, err := dbpostgres.Connect(connectCtx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		c.DB = db
		c.Profiles = repository.NewPostgresProfileRepository(db)
		c.Products = repository.NewPostgresProductRepository(db)
	} else {
		logger.Info("database disabled, using in-memory repositories")
		c.Profiles = repository.NewMemoryProfileRepository()
		c.Products = repository.NewMemoryProductRepository()
	}

	if cfg.Redis.Enabled {
		r, err := cache.Dial(connectCtx, cfg.Redis, logger)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.Redis = r
		c.Sessions = sessionstore.NewRedisStore(r, cfg.Session.TTL)
	} else {
		mem := sessionstore.NewMemoryStore(cfg.Session.TTL)
		sweeper, err := mem.StartSweeper(cfg.Session.SweepSchedule, logger)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.sweeper = sweeper
		c.Sessions = mem
	}

	hubCtx, cancelHub := context.WithCancel(context.Background())
	c.Hub = ws.NewHub(logger)
	c.cancelHub = cancelHub
	c.hubDone = make(chan struct{})
	go func() {
		defer close(c.hubDone)
		c.Hub.Run(hubCtx)
	}()

	return c, nil
}

// Close stops pending replies first so none lands on a closed store.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}

	if c.Replies != nil {
		c.Replies.Close()
	}
	if c.sweeper != nil {
		<-c.sweeper.Stop().Done()
	}
	if c.cancelHub != nil {
		c.cancelHub()
		<-c.hubDone
	}

	var errs []error
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
