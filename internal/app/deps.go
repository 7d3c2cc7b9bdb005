// Package app builds the dependency graph shared by the server and the CLI.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/config"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/messaging/kafka"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/metrics"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/repository/memory"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/repository/postgres"
	rediscache "github.com/devrana9696-ux/civic-issue-reporter/internal/repository/redis"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/service"
)

// Dependencies holds every long-lived component
type Dependencies struct {
	Repo      domain.IssueRepository
	Engine    *intelligence.Engine
	Metrics   *metrics.Metrics
	Issues    *service.IssueService
	Analytics *service.AnalyticsService
	Cache     *rediscache.AnalyticsCache

	closers []func() error
	log     logging.Logger
}

// Build connects to the configured backends. Postgres, Redis and Kafka are
// optional: without DATABASE_URL issues live in memory, without REDIS_ADDR
// analytics are not cached and without KAFKA_BROKERS events are dropped.
func Build(ctx context.Context, cfg *config.Config, log logging.Logger) (*Dependencies, error) {
	engine, err := intelligence.New(cfg.Intelligence)
	if err != nil {
		return nil, err
	}
	cls, prio := engine.Models()
	log.Info("intelligence engine ready", logging.String("classifier", cls), logging.String("priority", prio))

	d := &Dependencies{
		Engine:  engine,
		Metrics: metrics.New(true),
		log:     log,
	}

	d.Repo = d.openRepository(ctx, cfg)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithRecorder(d.Metrics),
	}

	if cfg.RedisAddr != "" {
		rdb, err := rediscache.NewClient(ctx, rediscache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn("analytics cache disabled", logging.Err(err))
		} else {
			d.Cache = rediscache.NewAnalyticsCache(rdb, cfg.CacheTTL, log)
			d.closers = append(d.closers, rdb.Close)
			opts = append(opts, service.WithCache(d.Cache))
			log.Info("connected to Redis", logging.String("addr", cfg.RedisAddr))
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		}, log)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.closers = append(d.closers, producer.Close)
		opts = append(opts, service.WithPublisher(producer))
		log.Info("publishing issue events", logging.String("topic", cfg.KafkaTopic))
	}

	d.Issues = service.NewIssueService(d.Repo, engine, opts...)
	d.Analytics = service.NewAnalyticsService(d.Repo, engine, opts...)
	return d, nil
}

func (d *Dependencies) openRepository(ctx context.Context, cfg *config.Config) domain.IssueRepository {
	if cfg.DatabaseURL == "" {
		d.log.Warn("DATABASE_URL not set, running with in-memory storage")
		return memory.NewMemoryRepository()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := postgres.Open(connectCtx, cfg.DatabaseURL)
	if err == nil {
		err = postgres.Bootstrap(connectCtx, pool)
		if err != nil {
			pool.Close()
		}
	}
	if err != nil {
		d.log.Warn("could not connect to database, running with in-memory storage", logging.Err(err))
		return memory.NewMemoryRepository()
	}

	d.closers = append(d.closers, func() error {
		pool.Close()
		return nil
	})
	d.log.Info("connected to PostgreSQL")
	return postgres.NewPostgresRepository(pool)
}

// Close drains background work and releases connections in reverse order
func (d *Dependencies) Close() error {
	if d.Issues != nil {
		d.Issues.WaitBackground()
	}
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
