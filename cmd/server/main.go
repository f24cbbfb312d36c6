package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/query-params-practice/internal/config"
	"github.com/iliyamo/query-params-practice/internal/logger"
	"github.com/iliyamo/query-params-practice/internal/middleware"
	"github.com/iliyamo/query-params-practice/internal/queue"
	"github.com/iliyamo/query-params-practice/internal/repository"
	"github.com/iliyamo/query-params-practice/internal/router"
	"github.com/iliyamo/query-params-practice/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the real logger needs cfg, so fall back to a plain one
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped gracefully")
}

func run(cfg config.Config, log zerolog.Logger) error {
	catalogCfg, err := config.LoadCatalogConfig()
	if err != nil {
		return err
	}
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		return err
	}
	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		return err
	}
	rlCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		return err
	}
	redisCfg, err := config.LoadRedisConfig()
	if err != nil {
		return err
	}
	auditCfg, err := config.LoadAuditConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	catalog, err := repository.Open(loadCtx, catalogCfg, dbCfg)
	cancel()
	if err != nil {
		return err
	}
	log.Info().Str("source", catalogCfg.Source).Interface("tables", catalog.Counts()).Msg("catalog loaded")

	rdb := config.NewRedisClient(redisCfg)
	if rdb != nil {
		defer rdb.Close()
		log.Info().Str("addr", redisCfg.Addr).Msg("redis connected")
	} else if redisCfg.Enabled {
		log.Warn().Str("addr", redisCfg.Addr).Msg("redis unreachable; cache disabled, rate limiting is local")
	}

	g, gctx := errgroup.WithContext(ctx)

	var limiter *middleware.LocalLimiterStore
	if rlCfg.Enabled {
		limiter = middleware.NewLocalLimiterStore(rlCfg.RefillRate(), rlCfg.Capacity, rlCfg.TTL)
		limiter.StartJanitor(gctx)
	}

	var audit middleware.AuditSink
	if auditCfg.Enabled {
		pub := queue.NewPublisher(auditCfg.URL, auditCfg.Queue, auditCfg.Buffer, log)
		audit = pub
		g.Go(func() error { return pub.Run(gctx) })
	}

	e := router.New(router.Deps{
		Logger:    log,
		Service:   service.NewQueryService(catalog, cfg.RangeMaxSpan),
		Cache:     cacheCfg,
		RateLimit: rlCfg,
		Redis:     rdb,
		Limiter:   limiter,
		Audit:     audit,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
