package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/actuallystonmai/country-directory/internal/cache"
	"github.com/actuallystonmai/country-directory/internal/config"
	"github.com/actuallystonmai/country-directory/internal/handler"
	"github.com/actuallystonmai/country-directory/internal/logger"
	"github.com/actuallystonmai/country-directory/internal/router"
	"github.com/actuallystonmai/country-directory/internal/service"
	"github.com/actuallystonmai/country-directory/internal/source"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	// A missing .env is normal outside development.
	envErr := godotenv.Load()

	// Load configuration
	cfg := config.MustLoad(configPath)

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()
	if envErr != nil {
		log.Debug("dotenv_not_loaded", zap.Error(envErr))
	}

	if err := run(cfg, log); err != nil {
		log.Error("server_failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ------------ Session store ---------------
	var (
		store  service.Store
		pinger handler.Pinger
	)
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		c := cache.NewCache(client, cfg.Sessions.TTL)
		if err := waitForRedis(ctx, c, log); err != nil {
			return err
		}
		log.Info("redis_connected")
		store, pinger = c, c
	} else {
		store = service.NewMemoryStore(cfg.Sessions.TTL)
		log.Info("sessions_in_memory")
	}

	// ------------ Source ---------------
	loader := newLoader(cfg, log)

	svc := service.NewService(store, loader, log, service.WithLoadTimeout(cfg.Source.Timeout))
	defer svc.Close()

	// ---------------- Server --------------------
	srv := &http.Server{
		Addr: cfg.HTTP.Addr(),
		Handler: router.Setup(handler.NewHandler(svc, pinger, log), log, router.Options{
			Timeout:     cfg.Timeouts.Request,
			CORSOrigins: cfg.HTTP.CORSOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http_listen_start", zap.String("addr", srv.Addr), zap.String("source", cfg.Source.Kind))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown_requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server_stopped")
	return nil
}

func newLoader(cfg *config.Config, log *zap.Logger) source.Loader {
	if cfg.Source.Kind == config.SourceSeed {
		return source.NewSeed(cfg.Source.Seed)
	}
	return source.NewClient(&http.Client{Timeout: cfg.Source.Timeout}, cfg.Source.URL, log)
}

func waitForRedis(ctx context.Context, c *cache.Cache, log *zap.Logger) error {
	for i := 0; i < 30; i++ {
		if err := c.Ping(ctx); err == nil {
			return nil
		}
		log.Info("waiting for redis", zap.Int("attempt", i+1))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("redis connection timeout after 30s")
}
