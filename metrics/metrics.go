// Package metrics exposes Prometheus collectors for commands, games and the ledger.
package metrics

import (
	"context"
	"time"

	"overbank/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

// Metrics holds every collector of the bot
type Metrics struct {
	commandsTotal      *prometheus.CounterVec
	commandDuration    *prometheus.HistogramVec
	errorsTotal        *prometheus.CounterVec
	balanceChanges     *prometheus.CounterVec
	gameSettlements    *prometheus.CounterVec
	coinsWagered       *prometheus.CounterVec
	coinsPaidOut       *prometheus.CounterVec
	coinflipsCompleted prometheus.Counter
	loansTaken         prometheus.Counter
	activeGames        *prometheus.GaugeVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		commandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bot_commands_total",
				Help: "Total number of bot commands received labeled by command and status",
			},
			[]string{"command", "status"},
		),
		commandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "command_duration_seconds",
				Help:    "Duration of bot commands in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errors_total",
				Help: "Total number of errors split by type and severity",
			},
			[]string{"type", "severity"},
		),
		balanceChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balance_changes_total",
				Help: "Committed balance changes by transaction type",
			},
			[]string{"transaction_type"},
		),
		gameSettlements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game_settlements_total",
				Help: "Settled games by game and outcome",
			},
			[]string{"game", "outcome"},
		),
		coinsWagered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game_coins_wagered_total",
				Help: "Coins staked on settled games",
			},
			[]string{"game"},
		),
		coinsPaidOut: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game_coins_paid_out_total",
				Help: "Coins paid back to players, refunds included",
			},
			[]string{"game"},
		),
		coinflipsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "coinflips_completed_total",
			Help: "Completed coinflip rounds",
		}),
		loansTaken: factory.NewCounter(prometheus.CounterOpts{
			Name: "loans_taken_total",
			Help: "Issued loans",
		}),
		activeGames: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "active_games",
				Help: "Games currently held in memory",
			},
			[]string{"game"},
		),
	}
}

// RecordCommand increments command counters and records duration
func (m *Metrics) RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	m.commandsTotal.WithLabelValues(command, status).Inc()
	m.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordError increments error counters with metadata
func (m *Metrics) RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	m.errorsTotal.WithLabelValues(errType, severity).Inc()
}

// Attach feeds the event counters from the bus
func (m *Metrics) Attach(bus *events.Bus) {
	bus.SubscribeAll(m.HandleEvent)
}

// HandleEvent updates the counters an event touches
func (m *Metrics) HandleEvent(_ context.Context, event events.Event) {
	switch e := event.(type) {
	case events.BalanceChangeEvent:
		m.balanceChanges.WithLabelValues(string(e.TransactionType)).Inc()
	case events.GameSettledEvent:
		m.gameSettlements.WithLabelValues(e.Game, e.Outcome).Inc()
		m.coinsWagered.WithLabelValues(e.Game).Add(float64(e.Wager))
		m.coinsPaidOut.WithLabelValues(e.Game).Add(float64(e.Payout))
	case events.CoinflipCompletedEvent:
		m.coinflipsCompleted.Inc()
	case events.LoanTakenEvent:
		m.loansTaken.Inc()
	}
}

// GameCounter reports how many games an engine holds
type GameCounter interface {
	ActiveGames() int
}

// CollectActiveGames polls the engines until ctx is cancelled
func (m *Metrics) CollectActiveGames(ctx context.Context, interval time.Duration, engines map[string]GameCounter) {
	log.WithField("interval", interval).Debug("Active game collector started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.SetActiveGames(engines)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SetActiveGames samples every engine once
func (m *Metrics) SetActiveGames(engines map[string]GameCounter) {
	for game, engine := range engines {
		m.activeGames.WithLabelValues(game).Set(float64(engine.ActiveGames()))
	}
}
