package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/begintolern/linkmint-core/internal/app/background"
	"github.com/begintolern/linkmint-core/internal/attribution"
	"github.com/begintolern/linkmint-core/internal/config"
	httpdelivery "github.com/begintolern/linkmint-core/internal/delivery/http"
	"github.com/begintolern/linkmint-core/internal/delivery/http/handlers"
	"github.com/begintolern/linkmint-core/internal/infrastructure/kafka"
	"github.com/begintolern/linkmint-core/internal/infrastructure/logger"
	"github.com/begintolern/linkmint-core/internal/infrastructure/metrics"
	"github.com/begintolern/linkmint-core/internal/infrastructure/migrate"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/repository"
	redisinfra "github.com/begintolern/linkmint-core/internal/infrastructure/redis"
	"github.com/begintolern/linkmint-core/internal/infrastructure/sender"
	"github.com/begintolern/linkmint-core/internal/usecase/commission"
	"github.com/begintolern/linkmint-core/internal/usecase/disburse"
	"github.com/begintolern/linkmint-core/internal/usecase/eligibility"
	"github.com/begintolern/linkmint-core/internal/usecase/ops"
	"github.com/begintolern/linkmint-core/internal/usecase/payout"
	"github.com/joho/godotenv"
)

// watchdogLockKey is the fixed advisory lock keyspace for leader election.
const watchdogLockKey = 7441001

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)

	if err := migrate.RunMigrations(db, cfg.PayoutDB.MigrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	redisClient, err := redisinfra.NewClient(cfg)
	if err != nil {
		log.Fatalf("failed to init redis: %v", err)
	}

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := kafka.NewDefaultKafkaPublisher(brokers)
	sub := kafka.NewDefaultKafkaSubscriber(brokers)

	// Repositories
	commissionRepo := repository.NewDefaultCommissionRepository(db)
	requestRepo := repository.NewDefaultPayoutRequestRepository(db)
	floatRepo := repository.NewDefaultFloatRepository(db)
	eventLogRepo := repository.NewDefaultEventLogRepository(db)
	clickRepo := repository.NewDefaultClickRepository(db)
	ruleRepo := repository.NewDefaultMerchantRuleRepository(db)
	referralRepo := repository.NewDefaultReferralRepository(db)
	profileRepo := repository.NewDefaultUserProfileRepository(db)
	settingsRepo := repository.NewDefaultSettingsRepository(db)
	tokenRepo := repository.NewDefaultAuthTokenRepository(db)

	events := logger.NewPGEventLogger(eventLogRepo)
	payoutMetrics := metrics.NewPayoutMetrics()

	shares := attribution.Shares{
		InviteeFraction:  cfg.Referral.InviteeShare,
		ReferrerFraction: cfg.Referral.ReferrerShare,
	}

	commissionUC := commission.NewDefaultCommissionUsecase(
		commissionRepo, clickRepo, ruleRepo, referralRepo, events, payoutMetrics, shares)
	payoutUC := payout.NewDefaultPayoutUsecase(requestRepo, commissionRepo, events, payoutMetrics)

	gate := eligibility.NewGate(eligibility.Config{
		MinTrustScore:      cfg.Eligibility.MinTrustScore,
		HoneymoonDays:      cfg.Eligibility.HoneymoonDays,
		AllowListedUserIDs: cfg.Eligibility.AllowList,
	}, floatRepo, events)

	paymentSender := sender.NewHTTPSender(cfg.SenderService.Address)

	runner := disburse.NewRunner(
		commissionRepo, requestRepo, profileRepo, settingsRepo, gate,
		paymentSender, events, payoutMetrics, pub,
		cfg.KafkaService.PayoutTopic, cfg.Disbursement.Currency)

	leaderLock, err := postgres.NewAdvisoryLock(db, watchdogLockKey)
	if err != nil {
		log.Fatalf("failed to init advisory lock: %v", err)
	}
	defer leaderLock.Close()

	watchdog := ops.NewWatchdog(
		leaderLock,
		&postgres.Pinger{DB: db},
		commissionRepo, requestRepo, eventLogRepo, tokenRepo, floatRepo,
		settingsRepo,
		redisinfra.NewHeartbeatMarker(redisClient),
		pub, events, payoutMetrics,
		ops.Config{
			ErrorThreshold:     cfg.Watchdog.ErrorThreshold,
			ErrorWindow:        cfg.Watchdog.ErrorWindow,
			SustainedTicks:     cfg.Watchdog.SustainedTicks,
			StuckTimeout:       cfg.Watchdog.StuckTimeout,
			LogRetention:       cfg.Watchdog.LogRetention,
			FloatLowWaterMinor: cfg.Disbursement.FloatLowWater,
			AlertTopic:         cfg.KafkaService.AlertTopic,
		})

	consumer := kafka.NewOrderEventConsumer(sub, commissionUC, cfg.KafkaService.OrderTopic, cfg.KafkaService.GroupID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tasks := background.NewBackgroundTasks(
		runner, watchdog, consumer,
		cfg.Disbursement.Interval, cfg.Watchdog.Interval, cfg.Disbursement.BatchSize)
	tasks.StartAll(ctx)

	allowList := make(map[string]bool, len(cfg.Eligibility.AllowList))
	for _, id := range cfg.Eligibility.AllowList {
		allowList[id] = true
	}

	e := httpdelivery.NewRouter(httpdelivery.RouterDeps{
		Commissions: handlers.NewCommissionHandler(commissionUC),
		Payouts:     handlers.NewPayoutHandler(payoutUC),
		Disburse:    handlers.NewDisburseHandler(runner),
		Ops:         handlers.NewOpsHandler(watchdog, floatRepo),
		JWTSecret:   cfg.HTTPServer.JWTSecret,
		AllowList:   allowList,
	})

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
		slog.Info("http server starting", "addr", addr)
		if err := e.Start(addr); err != nil {
			slog.Error("http server stopped", "error", err)
			cancel()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
		slog.Info("shutdown signal received")
	case <-ctx.Done():
	}
	cancel()
	_ = e.Close()
}
