package metrics

import (
	"context"
	"testing"
	"time"

	"overbank/events"
	"overbank/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordCommand(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordCommand("balance", "success", 15*time.Millisecond)
	m.RecordCommand("balance", "success", 5*time.Millisecond)
	m.RecordCommand("", "", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.commandsTotal.WithLabelValues("balance", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commandsTotal.WithLabelValues("unknown", "unknown")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.commandDuration))
}

func TestMetrics_HandleEvent(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.HandleEvent(ctx, events.GameSettledEvent{Game: "slots", Wager: 50, Payout: 500, Outcome: "win"})
	m.HandleEvent(ctx, events.GameSettledEvent{Game: "slots", Wager: 50, Outcome: "loss"})
	m.HandleEvent(ctx, events.BalanceChangeEvent{TransactionType: models.TransactionTypeWork})
	m.HandleEvent(ctx, events.CoinflipCompletedEvent{})
	m.HandleEvent(ctx, events.LoanTakenEvent{})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.gameSettlements.WithLabelValues("slots", "win")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.coinsWagered.WithLabelValues("slots")))
	assert.Equal(t, 500.0, testutil.ToFloat64(m.coinsPaidOut.WithLabelValues("slots")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.balanceChanges.WithLabelValues("work")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.coinflipsCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loansTaken))
}

type fixedCounter int

func (c fixedCounter) ActiveGames() int { return int(c) }

func TestMetrics_SetActiveGames(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetActiveGames(map[string]GameCounter{"blackjack": fixedCounter(3), "higherlower": fixedCounter(0)})

	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeGames.WithLabelValues("blackjack")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeGames.WithLabelValues("higherlower")))
}

func TestMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
