package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"quickspese/internal/amqp"
	"quickspese/internal/cache"
	"quickspese/internal/cli"
	"quickspese/internal/config"
	"quickspese/internal/log"
	"quickspese/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting spese-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the budget alert worker")
		os.Exit(1)
	}
	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Memory backend holds no shared state; budget alerts will only see an empty store")
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	res := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	client, ok := res.Publisher.(*amqp.Client)
	if !ok {
		logger.Error("Failed to connect to AMQP broker", "url_set", cfg.AMQPURL != "")
		_ = res.Cleanup()
		os.Exit(1)
	}

	seen := worker.NewSeenEvents()
	janitor := cache.NewJanitor(seen)
	janitor.Start(10*time.Minute, func(removed int) {
		logger.Debug("Expired handled events", "removed", removed)
	})
	defer janitor.Stop()

	budgetWorker := worker.NewBudgetWorker(res.Store, logger, cfg.BudgetAlertPercent,
		worker.WithWeekStart(cfg.WeekStartDay()),
		worker.WithSeenEvents(seen))

	logger.Info("Performing startup budget check...")
	if err := budgetWorker.StartupCheck(ctx); err != nil {
		// Not fatal: events still get processed.
		logger.Error("Failed startup budget check", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeCommandEvents(gctx, budgetWorker.HandleCommandEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err)
		_ = res.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
