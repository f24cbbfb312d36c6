// Command audit-consumer drains the query audit queue into a log file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/iliyamo/query-params-practice/internal/config"
	"github.com/iliyamo/query-params-practice/internal/logger"
	"github.com/iliyamo/query-params-practice/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.Env)

	auditCfg, err := config.LoadAuditConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load audit config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("queue", auditCfg.Queue).Str("dir", auditCfg.LogDir).Msg("consuming")
	c := queue.NewConsumer(auditCfg.URL, auditCfg.Queue, auditCfg.LogDir, log)
	if err := c.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("consumer error")
	}
	log.Info().Msg("consumer stopped")
}
