// Command reminders runs one reminder scan and exits. Schedule it with cron
// when the server's own loop is disabled.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"TRIPPLANNER_BACK-END/internal/config"
	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/mailer"
	"TRIPPLANNER_BACK-END/internal/reminders"
	"TRIPPLANNER_BACK-END/internal/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatalf("load config: %v", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg, "trip-planner-reminders")
	if err != nil {
		logger.L().Fatalf("database: %v", err)
	}
	defer pool.Close()

	var locker reminders.Locker
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		locker = reminders.NewRedisLocker(rdb)
	}

	mail := mailer.New(postgres.NewSettingsRepository(pool), cfg.DefaultFromEmail)
	job := reminders.NewJob(postgres.NewItemRepository(pool), mail, locker, cfg.Server.BaseURL, cfg.Location())

	report, err := job.Run(ctx, time.Now())
	if err != nil {
		logger.L().Errorf("reminder scan failed: %v", err)
		pool.Close()
		os.Exit(1)
	}
	if report.Failed > 0 {
		logger.L().Warnf("%d reminders failed and stay pending", report.Failed)
	}
}
