package cmd

import (
	"context"
	"fmt"
	"time"

	"overbank/bot"
	"overbank/config"
	"overbank/database"
	"overbank/events"
	"overbank/games/blackjack"
	"overbank/games/higherlower"
	"overbank/games/roulette"
	"overbank/games/russianroulette"
	"overbank/games/slots"
	"overbank/infrastructure"
	"overbank/logging"
	"overbank/metrics"
	"overbank/repository"
	"overbank/server"
	"overbank/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

const activeGamesInterval = 15 * time.Second

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	cleanupLogging, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	defer cleanupLogging()

	log.WithField("environment", cfg.Environment).Info("Starting overbank...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Initialize database connection
	db, err := database.NewConnection(ctx, database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	checks := map[string]server.Check{
		"database": db.Healthy,
	}

	// Cooldowns live in the ledger unless redis is configured
	var cooldownStore service.CooldownStore
	switch cfg.CooldownBackend {
	case "redis":
		client, err := infrastructure.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		cooldownStore = infrastructure.NewRedisCooldownStore(client)
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
		log.Info("Cooldowns stored in redis")
	default:
		cooldownStore = service.NewLedgerCooldownStore(uowFactory)
		log.Info("Cooldowns stored in postgres")
	}

	// Initialize services
	cooldownService := service.NewCooldownService(cooldownStore)
	economyService := service.NewEconomyService(uowFactory, cfg)
	services := bot.Services{
		Economy:    economyService,
		Loans:      service.NewLoanService(uowFactory, cfg),
		Inventory:  service.NewInventoryService(uowFactory),
		Coinflip:   service.NewCoinflipService(uowFactory),
		Cooldowns:  cooldownService,
		Activities: service.NewActivityService(uowFactory, cooldownService, cfg),
		Rounds:     repository.NewActiveRoundGuilds(db),
	}

	// Initialize game engines; they settle through the economy service
	blackjackEngine := blackjack.NewEngine(economyService, eventBus, cfg)
	higherLowerEngine := higherlower.NewEngine(economyService, cooldownService, eventBus, cfg)
	russianRouletteEngine := russianroulette.NewEngine(economyService, eventBus, cfg)
	engines := bot.Engines{
		Blackjack:       blackjackEngine,
		HigherLower:     higherLowerEngine,
		RussianRoulette: russianRouletteEngine,
		Roulette:        roulette.NewEngine(economyService, cooldownService, eventBus, cfg),
		Slots:           slots.NewEngine(economyService, eventBus),
	}

	// Forward committed events to NATS when configured
	if cfg.NATSURL != "" {
		nc, err := infrastructure.ConnectNATS(cfg.NATSURL, "overbank")
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nc.Drain()
		infrastructure.NewNATSForwarder(nc, "overbank").Attach(eventBus)
		checks["nats"] = func(context.Context) error {
			if !nc.IsConnected() {
				return fmt.Errorf("nats status %s", nc.Status())
			}
			return nil
		}
		log.WithField("url", cfg.NATSURL).Info("Forwarding events to NATS")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)
	appMetrics.Attach(eventBus)
	go appMetrics.CollectActiveGames(ctx, activeGamesInterval, map[string]metrics.GameCounter{
		"blackjack":       blackjackEngine,
		"higherlower":     higherLowerEngine,
		"russianroulette": russianRouletteEngine,
	})

	// Initialize Discord bot
	discordBot, err := bot.New(bot.NewConfig(cfg), services, engines, appMetrics)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	checks["discord"] = discordBot.Ping

	serverErr := make(chan error, 1)
	if cfg.MetricsAddr != "" {
		ops := server.New(cfg.MetricsAddr, checks, registry)
		go func() {
			serverErr <- ops.Run(ctx)
		}()
	}

	log.WithField("environment", cfg.Environment).Info("Bot is running")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("Ops server failed")
		}
	}
	cancel()

	log.Info("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}

	log.Info("Shutdown completed")
	return nil
}
