package slots

import (
	"context"
	"testing"

	"overbank/games"
	"overbank/games/gamestest"
	"overbank/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guildID int64 = 900000000000000001
	userID  int64 = 111111
)

func TestMultiplier(t *testing.T) {
	tests := []struct {
		name string
		line [3]Symbol
		want int64
	}{
		{name: "triple seven", line: [3]Symbol{Seven, Seven, Seven}, want: 10},
		{name: "triple star", line: [3]Symbol{Star, Star, Star}, want: 7},
		{name: "triple cherry", line: [3]Symbol{Cherry, Cherry, Cherry}, want: 5},
		{name: "pair first two", line: [3]Symbol{Grape, Grape, Lemon}, want: 2},
		{name: "pair outer", line: [3]Symbol{Seven, Lemon, Seven}, want: 2},
		{name: "nothing", line: [3]Symbol{Cherry, Lemon, Orange}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Multiplier(tt.line))
		})
	}
}

func TestEngine_Pick(t *testing.T) {
	assert.Equal(t, 110, reelWeight)

	tests := []struct {
		roll int
		want Symbol
	}{
		{roll: 0, want: Cherry},
		{roll: 29, want: Cherry},
		{roll: 30, want: Lemon},
		{roll: 80, want: Grape},
		{roll: 100, want: Star},
		{roll: 108, want: Seven},
		{roll: 109, want: Seven},
	}
	for _, tt := range tests {
		engine := NewEngine(gamestest.NewLedger(), nil)
		engine.rng = gamestest.NewRandom(tt.roll)
		assert.Equal(t, tt.want, engine.pick(), "roll %d", tt.roll)
	}
}

func TestEngine_Spin(t *testing.T) {
	ctx := context.Background()

	t.Run("jackpot", func(t *testing.T) {
		ledger := gamestest.NewLedger()
		ledger.Fund(guildID, userID, 500)
		emitter := &gamestest.Emitter{}
		engine := NewEngine(ledger, emitter)
		engine.rng = gamestest.NewRandom(109, 108, 109)

		result, err := engine.Spin(ctx, guildID, userID, 50)

		require.NoError(t, err)
		assert.Equal(t, int64(10), result.Multiplier)
		assert.Equal(t, int64(500), result.Payout)
		assert.Equal(t, int64(950), ledger.Balance(guildID, userID))
		assert.Equal(t, games.OutcomeWin, emitter.Settled()[0].Outcome)
	})

	t.Run("miss keeps the wager", func(t *testing.T) {
		ledger := gamestest.NewLedger()
		ledger.Fund(guildID, userID, 500)
		engine := NewEngine(ledger, nil)
		engine.rng = gamestest.NewRandom(0, 30, 80)

		result, err := engine.Spin(ctx, guildID, userID, 50)

		require.NoError(t, err)
		assert.Zero(t, result.Payout)
		assert.Equal(t, int64(450), result.Account.Balance)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		engine := NewEngine(gamestest.NewLedger(), nil)
		_, err := engine.Spin(ctx, guildID, userID, 50)
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)
	})
}
