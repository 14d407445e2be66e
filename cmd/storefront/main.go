package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/internal/basket"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/order"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/internal/storefront"
	"github.com/angelmondragon/storefront/internal/viewstate"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/events"
	"github.com/angelmondragon/storefront/pkg/instance"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/redis"
	"github.com/angelmondragon/storefront/pkg/storeapi"
)

const serviceName = "storefront"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "storefront stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionID := cfg.Session.ID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})
	ctx = logg.WithSessionID(ctx, sessionID)

	var (
		repo        session.Repository = session.NewMemoryRepository()
		redisPinger redis.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		repo = session.NewRedisRepository(redisClient, cfg.Session.SnapshotTTL)
		redisPinger = redisClient
	} else {
		logg.Info(ctx, "redis not configured, keeping basket snapshots in memory")
	}

	gateway, err := storeapi.NewClient(cfg.API.BaseURL, storeapi.WithTimeout(cfg.API.Timeout))
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	bus := events.NewBus(events.WithObserver(storefrontMetrics.ObserveEmit), events.WithLogger(logg))
	loop := events.NewLoop(logg)
	catalogStore := catalog.NewStore(bus, catalog.WithImageBase(cfg.API.CDNURL))
	basketStore := basket.NewStore(bus, catalogStore)
	orderStore := order.NewStore(bus)
	view := viewstate.NewRecorder()

	controller, err := storefront.NewController(storefront.ControllerParams{
		Bus:     bus,
		Loop:    loop,
		Gateway: gateway,
		View:    view,
		Catalog: catalogStore,
		Basket:  basketStore,
		Order:   orderStore,
		Logger:  logg,
		Metrics: storefrontMetrics,
		Strict:  cfg.App.IsDev(),
	})
	if err != nil {
		return err
	}
	defer controller.Close()

	persister, err := session.NewPersister(session.PersisterParams{
		Bus:       bus,
		Basket:    basketStore,
		Repo:      repo,
		SessionID: sessionID,
		Logger:    logg,
	})
	if err != nil {
		return err
	}
	defer persister.Close()
	persister.RestoreAfterCatalog(ctx)

	server := &http.Server{
		Addr: ":" + cfg.App.Port,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:   cfg,
			Logger:   logg,
			Loop:     loop,
			Bus:      bus,
			View:     view,
			Redis:    redisPinger,
			Gatherer: registry,
		}),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return ignoreCanceled(loop.Run(groupCtx))
	})
	group.Go(func() error {
		return ignoreCanceled(persister.Run(groupCtx))
	})
	group.Go(func() error {
		logg.Info(logg.WithField(groupCtx, "addr", server.Addr), "starting storefront server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(groupCtx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		logg.Info(groupCtx, "shutting down storefront server")
		return server.Shutdown(shutdownCtx)
	})

	if err := controller.Start(groupCtx); err != nil {
		stop()
		return multierr.Append(err, group.Wait())
	}

	err = group.Wait()
	controller.Wait()
	return err
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
