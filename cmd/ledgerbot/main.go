package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"ledger-bot/internal/bot"
	"ledger-bot/internal/config"
	"ledger-bot/internal/parser"
	"ledger-bot/internal/repository"
	"ledger-bot/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", "err", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db", "err", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	txRepo := repository.NewTransactionRepository(db)

	reportSvc := service.NewReportService(txRepo, cfg.ReportWindow)
	msgParser := parser.New(parser.NewWhenResolver())

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, txRepo, msgParser, reportSvc, logger)
	if err != nil {
		logger.Fatal("bot", "err", err)
	}

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.ReportInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.ReportInterval, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := telegramBot.SendSpendingReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("report", "err", err)
			}
		}); err != nil {
			logger.Fatal("schedule reports", "err", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	logger.Info("ledger bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("bot stopped with error", "err", err)
	}
	logger.Info("shutdown complete")
}
