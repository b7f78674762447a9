package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"agencia/internal/amqp"
	"agencia/internal/backend"
	"agencia/internal/cache"
	"agencia/internal/cli"
	"agencia/internal/config"
	apphttp "agencia/internal/http"
	"agencia/internal/locale"
	applog "agencia/internal/log"
	"agencia/internal/services"
)

// amqpPinger adapts the AMQP client to the readiness check interface.
type amqpPinger struct{ c *amqp.Client }

func (p amqpPinger) Ping(context.Context) error { return p.c.Ping() }

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	if err := run(logger, cfg); err != nil {
		os.Exit(1)
	}
}

func run(logger *applog.Logger, cfg *config.Config) error {
	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		return err
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend",
			applog.FieldError, err,
			"backend", cfg.DataBackend,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		return err
	}
	defer func() {
		if err := result.Close(); err != nil {
			logger.Error("Backend close error", applog.FieldError, err)
		}
	}()

	checks := map[string]apphttp.Pinger{}
	if p, ok := result.Store.(apphttp.Pinger); ok {
		checks[cfg.DataBackend] = p
	}

	// Change events are optional. The server gets its own exclusive queue so
	// every replica drops its cache when any of them records a snapshot.
	var (
		publisher  services.Publisher
		amqpClient *amqp.Client
	)
	if cfg.HasAMQP() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, "")
		if err != nil {
			logger.Error("Failed to connect to AMQP, continuing without change events",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeNetwork)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			checks["amqp"] = amqpPinger{amqpClient}
		}
	}

	svc := services.NewSnapshotService(result.Store, publisher, cfg.CacheSize, cfg.CacheTTL)

	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	for _, c := range svc.Cleaners() {
		cacheManager.Register(c)
	}
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:             logger,
		Locale:             locale.Lookup(cfg.Locale),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Checks:             checks,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting agencia server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			applog.FieldLocale, cfg.Locale,
			"amqp", amqpClient != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		cli.RunCleanup(logger, 30*time.Second, srv.Shutdown)
		return nil
	})

	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.Consume(gctx, svc.HandleChange)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
