package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"overbank/bot/common"
	"overbank/bot/features/activities"
	"overbank/bot/features/admin"
	"overbank/bot/features/balance"
	"overbank/bot/features/blackjack"
	"overbank/bot/features/casino"
	"overbank/bot/features/coinflip"
	"overbank/bot/features/help"
	"overbank/bot/features/higherlower"
	"overbank/bot/features/inventory"
	"overbank/bot/features/loans"
	"overbank/bot/features/russianroulette"
	"overbank/bot/features/transfer"
	"overbank/config"
	"overbank/metrics"
	"overbank/models"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Interaction outcomes recorded by the command metrics
const (
	statusOK        = "ok"
	statusUserError = "user_error"
	statusError     = "error"
)

// requestTimeout bounds the work of a single interaction; Discord stops waiting after 3 seconds anyway
const requestTimeout = 10 * time.Second

// Config holds bot configuration
type Config struct {
	Token           string
	GuildID         string // registers commands to this guild only when set
	CommandCooldown time.Duration
	LeaderboardSize int
	MaxLoanAmount   int64
	LoanInterestPct int64
	CoinflipTTL     time.Duration
}

// NewConfig derives the bot configuration from the application configuration
func NewConfig(cfg *config.Config) Config {
	return Config{
		Token:           cfg.DiscordToken,
		GuildID:         cfg.DiscordGuildID,
		CommandCooldown: cfg.CommandCooldown,
		LeaderboardSize: cfg.LeaderboardSize,
		MaxLoanAmount:   cfg.MaxLoanAmount,
		LoanInterestPct: cfg.LoanInterestPct,
		CoinflipTTL:     cfg.CoinflipTTL,
	}
}

// Services are the ledger operations the commands call
type Services struct {
	Economy    service.EconomyService
	Loans      service.LoanService
	Inventory  service.InventoryService
	Coinflip   service.CoinflipService
	Cooldowns  service.CooldownService
	Activities service.ActivityService
	Rounds     service.ActiveRoundLister
}

// Engines are the game engines the commands drive
type Engines struct {
	Blackjack       blackjack.Engine
	HigherLower     higherlower.Engine
	RussianRoulette russianroulette.Engine
	Roulette        casino.RouletteEngine
	Slots           casino.SlotsEngine
}

type commandHandler interface {
	HandleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error
}

type componentHandler interface {
	HandleComponent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation, action, gameID string) error
}

// Bot manages the Discord session and routes interactions to the feature modules
type Bot struct {
	config    Config
	session   *discordgo.Session
	services  Services
	metrics   *metrics.Metrics
	commands  map[string]commandHandler
	buttons   map[string]componentHandler
	stopFuncs []func()
}

// New creates the bot, connects to Discord and registers the slash commands
func New(cfg Config, services Services, engines Engines, m *metrics.Metrics) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	bot := newBot(dg, cfg, services, engines, m)

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleComponents)
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.WithFields(log.Fields{
			"user":   r.User.Username,
			"guilds": len(r.Guilds),
		}).Info("Connected to Discord")
	})

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	bot.stopFuncs = append(bot.stopFuncs, bot.StartCoinflipExpirationWorker(context.Background()))
	log.Info("Background workers started")

	return bot, nil
}

// newBot wires the features without touching the network
func newBot(dg *discordgo.Session, cfg Config, services Services, engines Engines, m *metrics.Metrics) *Bot {
	bot := &Bot{
		config:   cfg,
		session:  dg,
		services: services,
		metrics:  m,
	}

	balanceFeature := balance.New(services.Economy, services.Loans, cfg.LeaderboardSize)
	activitiesFeature := activities.New(services.Economy, services.Activities)
	inventoryFeature := inventory.New(services.Inventory)
	casinoFeature := casino.New(services.Economy, engines.Roulette, engines.Slots)

	blackjackFeature := blackjack.New(dg, services.Economy, engines.Blackjack)
	higherLowerFeature := higherlower.New(dg, services.Economy, engines.HigherLower)
	russianRouletteFeature := russianroulette.New(dg, services.Economy, engines.RussianRoulette)
	adminFeature := admin.New(services.Economy)

	bot.commands = map[string]commandHandler{
		"help":            help.New(commandDefinitions()),
		"balance":         balanceFeature,
		"deposit":         balanceFeature,
		"withdraw":        balanceFeature,
		"leaderboard":     balanceFeature,
		"pay":             transfer.New(services.Economy),
		"daily":           activitiesFeature,
		"work":            activitiesFeature,
		"search":          activitiesFeature,
		"rob":             activitiesFeature,
		"inventory":       inventoryFeature,
		"sell":            inventoryFeature,
		"loan":            loans.New(services.Economy, services.Loans, cfg.MaxLoanAmount, cfg.LoanInterestPct),
		"addcoins":        adminFeature,
		"removebalance":   adminFeature,
		"coinflip":        coinflip.New(services.Economy, services.Coinflip, cfg.CoinflipTTL),
		"blackjack":       blackjackFeature,
		"higherlower":     higherLowerFeature,
		"russianroulette": russianRouletteFeature,
		"roulette":        casinoFeature,
		"slots":           casinoFeature,
	}
	bot.buttons = map[string]componentHandler{
		blackjack.ActionHit:       blackjackFeature,
		blackjack.ActionStand:     blackjackFeature,
		higherlower.ActionHigher:  higherLowerFeature,
		higherlower.ActionLower:   higherLowerFeature,
		higherlower.ActionCashOut: higherLowerFeature,
	}
	return bot
}

// Close stops the workers and disconnects from Discord
func (b *Bot) Close() error {
	for _, stop := range b.stopFuncs {
		stop()
	}
	log.Info("Background workers stopped")

	return b.session.Close()
}

// Ping reports whether the gateway connection is up
func (b *Bot) Ping(ctx context.Context) error {
	if !b.session.DataReady {
		return fmt.Errorf("discord gateway not ready")
	}
	return nil
}

// handleCommands routes slash commands to the feature that owns them
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	handler, ok := b.commands[name]
	if !ok {
		log.WithField("command", name).Warn("Unknown command")
		return
	}

	b.dispatch(s, i, name, func(ctx context.Context, inv *common.Invocation) error {
		if err := b.checkThrottle(ctx, name, inv); err != nil {
			return err
		}
		if err := handler.HandleCommand(ctx, s, i, inv); err != nil {
			return err
		}
		b.startThrottle(ctx, name, inv)
		return nil
	})
}

// handleComponents routes button presses by the action prefix of their custom id
func (b *Bot) handleComponents(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	action, gameID, ok := common.ParseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	handler, ok := b.buttons[action]
	if !ok {
		return
	}

	b.dispatch(s, i, action, func(ctx context.Context, inv *common.Invocation) error {
		return handler.HandleComponent(ctx, s, i, inv, action, gameID)
	})
}

// dispatch provisions the caller, runs fn and reports failures to the user and the metrics
func (b *Bot) dispatch(s *discordgo.Session, i *discordgo.InteractionCreate, name string, fn func(ctx context.Context, inv *common.Invocation) error) {
	start := time.Now()
	status := statusOK
	defer func() {
		if r := recover(); r != nil {
			status = statusError
			log.WithFields(log.Fields{
				"interaction": name,
				"panic":       r,
			}).Error("Panic while handling interaction")
			common.RespondWithError(s, i, "Something went wrong. Please try again later.")
		}
		if b.metrics != nil {
			b.metrics.RecordCommand(name, status, time.Since(start))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	err := b.invoke(ctx, i, fn)
	if err == nil {
		return
	}

	botErr := common.HandleError(s, i, name, err)
	if botErr.User {
		status = statusUserError
		return
	}
	status = statusError
	if b.metrics != nil {
		b.metrics.RecordError("interaction", "error")
	}
}

func (b *Bot) invoke(ctx context.Context, i *discordgo.InteractionCreate, fn func(ctx context.Context, inv *common.Invocation) error) error {
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}

	// Every user gets an account the first time they interact
	if _, err := b.services.Economy.GetOrCreateAccount(ctx, inv.GuildID, inv.UserID, inv.Username); err != nil {
		return common.NewSystemError(err, "failed to provision account")
	}

	return fn(ctx, inv)
}

// checkThrottle rejects a throttled command while its cooldown is running
func (b *Bot) checkThrottle(ctx context.Context, name string, inv *common.Invocation) error {
	if !b.throttles(name) {
		return nil
	}

	status, err := b.services.Cooldowns.Check(ctx, models.CommandCooldown(name, inv.GuildID, inv.UserID))
	if err != nil {
		return common.NewSystemError(err, "failed to check command cooldown")
	}
	if status.OnCooldown {
		return &service.CooldownError{Action: name, Remaining: status.Remaining}
	}
	return nil
}

// startThrottle starts the cooldown of a throttled command that succeeded
func (b *Bot) startThrottle(ctx context.Context, name string, inv *common.Invocation) {
	if !b.throttles(name) {
		return
	}

	if err := b.services.Cooldowns.Set(ctx, models.CommandCooldown(name, inv.GuildID, inv.UserID), b.config.CommandCooldown); err != nil {
		log.WithFields(log.Fields{
			"command":  name,
			"guild_id": inv.GuildID,
			"user_id":  inv.UserID,
			"error":    err,
		}).Warn("Failed to start command cooldown")
	}
}

func (b *Bot) throttles(name string) bool {
	return b.config.CommandCooldown > 0 && throttledCommands[strings.ToLower(name)]
}
