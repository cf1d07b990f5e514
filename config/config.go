package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string `mapstructure:"discord_token" validate:"required_unless=Environment test"`
	DiscordGuildID string `mapstructure:"discord_guild_id"`

	// Database configuration
	DatabaseURL  string `mapstructure:"database_url" validate:"required_unless=Environment test"`
	DatabaseName string `mapstructure:"database_name"`

	// Cooldown storage: "postgres" keeps cooldowns in the ledger, "redis" uses RedisURL
	CooldownBackend string `mapstructure:"cooldown_backend" validate:"oneof=postgres redis"`
	RedisURL        string `mapstructure:"redis_url" validate:"required_if=CooldownBackend redis"`

	// Optional NATS server that receives committed domain events
	NATSURL string `mapstructure:"nats_url"`

	// Economy settings
	DailyReward        int64         `mapstructure:"daily_reward" validate:"gt=0"`
	DailyInterval      time.Duration `mapstructure:"daily_interval" validate:"gt=0"`
	MaxLoanAmount      int64         `mapstructure:"max_loan_amount" validate:"gt=0"`
	LoanInterestPct    int64         `mapstructure:"loan_interest_pct" validate:"gte=0"`
	MaxGameWager       int64         `mapstructure:"max_game_wager" validate:"gt=0"`
	CommandCooldown    time.Duration `mapstructure:"command_cooldown"`
	GameTimeout        time.Duration `mapstructure:"game_timeout" validate:"gt=0"`
	RussianRouletteTTL time.Duration `mapstructure:"russian_roulette_ttl" validate:"gt=0"`
	CoinflipTTL        time.Duration `mapstructure:"coinflip_ttl" validate:"gt=0"`
	LeaderboardSize    int           `mapstructure:"leaderboard_size" validate:"gt=0"`
	RobMinVictimWealth int64         `mapstructure:"rob_min_victim_wealth" validate:"gt=0"`

	// Observability
	LogLevel    string `mapstructure:"log_level"`
	LogFile     string `mapstructure:"log_file"`
	SentryDSN   string `mapstructure:"sentry_dsn"`
	MetricsAddr string `mapstructure:"metrics_addr"`

	// Environment
	Environment string `mapstructure:"environment" validate:"oneof=development production test"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.RWMutex
)

// Get returns the global configuration instance
func Get() *Config {
	mu.RLock()
	cfg := instance
	mu.RUnlock()
	if cfg != nil {
		return cfg
	}

	once.Do(func() {
		loaded, err := load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
		mu.Lock()
		instance = loaded
		mu.Unlock()
	})

	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// SetTestConfig replaces the global configuration. Tests only.
func SetTestConfig(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// ResetConfig drops the global configuration so the next Get reloads it. Tests only.
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig returns a configuration populated with defaults and Environment "test"
func NewTestConfig() *Config {
	cfg := defaults()
	cfg.Environment = "test"
	return cfg
}

func defaults() *Config {
	return &Config{
		CooldownBackend:    "postgres",
		DailyReward:        500,
		DailyInterval:      24 * time.Hour,
		MaxLoanAmount:      2500,
		LoanInterestPct:    15,
		MaxGameWager:       10000,
		CommandCooldown:    10 * time.Second,
		GameTimeout:        2 * time.Minute,
		RussianRouletteTTL: 5 * time.Minute,
		CoinflipTTL:        10 * time.Minute,
		LeaderboardSize:    10,
		RobMinVictimWealth: 250,
		LogLevel:           "info",
		MetricsAddr:        ":9090",
		Environment:        "development",
	}
}

// load reads .env files and the environment, applies defaults and validates the result
func load() (*Config, error) {
	// Missing .env files are fine; the process environment still applies
	_ = godotenv.Load(".env.local", ".env")

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := defaults()
	v.SetDefault("cooldown_backend", def.CooldownBackend)
	v.SetDefault("daily_reward", def.DailyReward)
	v.SetDefault("daily_interval", def.DailyInterval)
	v.SetDefault("max_loan_amount", def.MaxLoanAmount)
	v.SetDefault("loan_interest_pct", def.LoanInterestPct)
	v.SetDefault("max_game_wager", def.MaxGameWager)
	v.SetDefault("command_cooldown", def.CommandCooldown)
	v.SetDefault("game_timeout", def.GameTimeout)
	v.SetDefault("russian_roulette_ttl", def.RussianRouletteTTL)
	v.SetDefault("coinflip_ttl", def.CoinflipTTL)
	v.SetDefault("leaderboard_size", def.LeaderboardSize)
	v.SetDefault("rob_min_victim_wealth", def.RobMinVictimWealth)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("metrics_addr", def.MetricsAddr)
	v.SetDefault("environment", def.Environment)

	// AutomaticEnv only resolves keys viper already knows about
	for _, key := range []string{
		"discord_token", "discord_guild_id", "database_url", "database_name",
		"redis_url", "nats_url", "log_file", "sentry_dsn",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Backwards compatible with the ENVIRONMENT-less deployments
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration invariants
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// IsProduction reports whether the bot runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
