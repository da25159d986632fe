package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/pool-league/internal/app"
	"github.com/riskibarqy/pool-league/internal/config"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
	"github.com/riskibarqy/pool-league/internal/usecase"
)

// The scheduler runs the expiry sweep and payment flush in-process on fixed
// intervals. Use it when QStash delivery is disabled.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.NewJSON(cfg.LogLevel).Named("scheduler")
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Error("close storage", "error", err)
		}
	}()

	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		logger.Error("create scheduler", "error", err)
		os.Exit(1)
	}

	jobs := []struct {
		name     string
		interval time.Duration
		run      func(context.Context, usecase.JobRunInput) (usecase.JobRunResult, error)
	}{
		{name: "expire-challenges", interval: cfg.JobSweepInterval, run: container.Jobs.RunExpirySweep},
		{name: "flush-payments", interval: cfg.JobFlushInterval, run: container.Jobs.RunPaymentFlush},
	}
	for _, job := range jobs {
		_, err := sched.NewJob(
			gocron.DurationJob(job.interval),
			gocron.NewTask(func() {
				runJob(ctx, logger, job.name, job.run)
			}),
			gocron.WithName(job.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			logger.Error("register job", "job", job.name, "error", err)
			os.Exit(1)
		}
		logger.Info("job registered", "job", job.name, "interval", job.interval.String())
	}

	sched.Start()
	<-ctx.Done()

	if err := sched.Shutdown(); err != nil {
		logger.Error("scheduler shutdown failed", "error", err)
	}
	logger.Info("scheduler stopped")
}

func runJob(
	ctx context.Context,
	logger *logging.Logger,
	name string,
	run func(context.Context, usecase.JobRunInput) (usecase.JobRunResult, error),
) {
	started := time.Now().UTC()
	dispatchID := fmt.Sprintf("scheduler-%s-%s", name, started.Format("20060102T150405Z"))

	result, err := run(ctx, usecase.JobRunInput{DispatchID: dispatchID})
	if err != nil {
		logger.ErrorContext(ctx, "scheduled job failed", "job", name, "dispatch_id", dispatchID, "error", err)
		return
	}
	logger.InfoContext(ctx, "scheduled job finished",
		"job", name,
		"dispatch_id", dispatchID,
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"duration_ms", time.Since(started).Milliseconds(),
	)
}
