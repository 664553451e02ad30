package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kitbuilder587/nosible-go/internal/cache"
	"github.com/kitbuilder587/nosible-go/internal/cache/memory"
	"github.com/kitbuilder587/nosible-go/internal/cache/redis"
	"github.com/kitbuilder587/nosible-go/internal/config"
	"github.com/kitbuilder587/nosible-go/internal/metrics"
	"github.com/kitbuilder587/nosible-go/internal/repository"
	"github.com/kitbuilder587/nosible-go/internal/repository/postgres"
	"github.com/kitbuilder587/nosible-go/pkg/nosible"
)

var errNoDatabase = errors.New("DATABASE_URL is not set")

// app carries what commands share. Resources it opens are released by close.
type app struct {
	ctx      context.Context
	out      io.Writer
	cli      *CLI
	logger   *zap.Logger
	registry *prometheus.Registry

	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) config() (*config.Config, error) {
	if a.cli.APIKey != "" {
		os.Setenv("NOSIBLE_API_KEY", a.cli.APIKey)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// client builds a nosible client from the environment and starts the metrics
// endpoint when METRICS_ADDR is set.
func (a *app) client() (*nosible.Client, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}

	c, err := a.newCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	client, err := nosible.New(nosible.Config{
		APIKey:      cfg.Nosible.APIKey,
		BaseURL:     cfg.Nosible.BaseURL,
		Timeout:     cfg.Nosible.Timeout,
		Retries:     cfg.Nosible.Retries,
		Concurrency: cfg.Nosible.Concurrency,
		LLMAPIKey:   cfg.LLM.APIKey,
		LLMBaseURL:  cfg.LLM.BaseURL,
		LLMModel:    cfg.LLM.Model,
		Cache:       c,
		CacheTTL:    cfg.Cache.TTL,
		Registerer:  a.registry,
	}, a.logger)
	if err != nil {
		if c != nil {
			c.Close()
		}
		return nil, err
	}
	a.closers = append(a.closers, func() { client.Close() })

	if cfg.Metrics.Addr != "" {
		a.serveMetrics(cfg.Metrics.Addr)
	}
	return client, nil
}

func (a *app) newCache(cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(), nil
	case "redis":
		c, err := redis.New(redis.Config{Addrs: strings.Split(cfg.RedisAddr, ",")})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return c, nil
	}
	return nil, nil
}

func (a *app) serveMetrics(addr string) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           metrics.HandlerFor(a.registry),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("metrics server failed", zap.Error(err))
		}
	}()
	a.logger.Info("serving metrics", zap.String("addr", addr))

	a.closers = append(a.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
}

// archive opens the Postgres result archive from DATABASE_URL.
func (a *app) archive() (repository.ResultArchive, error) {
	dbCfg := config.LoadDatabase()
	if dbCfg.URL == "" {
		return nil, errNoDatabase
	}

	db, err := postgres.New(a.ctx, dbCfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	if err := db.Migrate(a.ctx); err != nil {
		return nil, err
	}
	return postgres.NewArchiveRepo(db), nil
}
