package higherlower

import (
	"context"
	"errors"
	"testing"
	"time"

	"overbank/config"
	"overbank/games"
	"overbank/games/gamestest"
	"overbank/models"
	"overbank/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guildID int64 = 900000000000000001
	userID  int64 = 111111
)

func newTestEngine(t *testing.T, rolls ...int) (*Engine, *gamestest.Ledger, *gamestest.Cooldowns) {
	t.Helper()
	ledger := gamestest.NewLedger()
	ledger.Fund(guildID, userID, 1000)
	cooldowns := gamestest.NewCooldowns()

	engine := NewEngine(ledger, cooldowns, &gamestest.Emitter{}, config.NewTestConfig())
	engine.rng = gamestest.NewRandom(rolls...)
	return engine, ledger, cooldowns
}

func TestEngine_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("escrows and draws", func(t *testing.T) {
		engine, ledger, _ := newTestEngine(t, 49)

		game, err := engine.Start(ctx, guildID, userID, 100)

		require.NoError(t, err)
		assert.Equal(t, 50, game.Current)
		assert.Equal(t, 1, game.Round)
		assert.False(t, game.CanCashOut())
		assert.Equal(t, int64(900), ledger.Balance(guildID, userID))
	})

	t.Run("wager cap", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		_, err := engine.Start(ctx, guildID, userID, 10001)
		assert.ErrorIs(t, err, games.ErrWagerTooLarge)
	})

	t.Run("cooldown between games", func(t *testing.T) {
		engine, _, cooldowns := newTestEngine(t, 49, 49, 49)
		game, err := engine.Start(ctx, guildID, userID, 100)
		require.NoError(t, err)
		_, err = engine.Guess(ctx, guildID, userID, game.ID, Higher)
		require.NoError(t, err)

		_, err = engine.Start(ctx, guildID, userID, 100)
		var cooldownErr *service.CooldownError
		require.ErrorAs(t, err, &cooldownErr)
		assert.Equal(t, StartCooldown, cooldownErr.Remaining)

		cooldowns.Advance(StartCooldown)
		_, err = engine.Start(ctx, guildID, userID, 100)
		assert.NoError(t, err)
	})

	t.Run("insufficient funds keeps cooldown free", func(t *testing.T) {
		engine, _, cooldowns := newTestEngine(t)

		_, err := engine.Start(ctx, guildID, userID, 5000)

		assert.ErrorIs(t, err, service.ErrInsufficientFunds)
		status, _ := cooldowns.Check(ctx, models.ActionCooldown(games.HigherLower, guildID, userID))
		assert.False(t, status.OnCooldown)
	})
}

func TestEngine_Guess(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		first   int
		next    int
		dir     Direction
		correct bool
	}{
		{name: "higher", first: 50, next: 51, dir: Higher, correct: true},
		{name: "lower", first: 50, next: 1, dir: Lower, correct: true},
		{name: "wrong direction", first: 50, next: 80, dir: Lower, correct: false},
		{name: "tie going higher", first: 50, next: 50, dir: Higher, correct: false},
		{name: "tie going lower", first: 50, next: 50, dir: Lower, correct: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, ledger, _ := newTestEngine(t, tt.first-1, tt.next-1)
			game, err := engine.Start(ctx, guildID, userID, 100)
			require.NoError(t, err)

			game, err = engine.Guess(ctx, guildID, userID, game.ID, tt.dir)

			require.NoError(t, err)
			assert.Equal(t, tt.first, game.Previous)
			assert.Equal(t, tt.next, game.Current)
			if tt.correct {
				assert.Equal(t, StatusActive, game.Status)
				assert.Equal(t, 2, game.Round)
				assert.Equal(t, 1, engine.ActiveGames())
			} else {
				assert.Equal(t, StatusLost, game.Status)
				assert.Zero(t, engine.ActiveGames())
				assert.Equal(t, int64(900), ledger.Balance(guildID, userID))
			}
		})
	}
}

func TestEngine_MaxRoundsSettles(t *testing.T) {
	ctx := context.Background()
	// Start at 1, then climb 2..10 for nine correct guesses
	engine, ledger, _ := newTestEngine(t, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	game, err := engine.Start(ctx, guildID, userID, 100)
	require.NoError(t, err)

	for i := 0; i < MaxRounds-1; i++ {
		game, err = engine.Guess(ctx, guildID, userID, game.ID, Higher)
		require.NoError(t, err)
	}

	assert.Equal(t, StatusMaxed, game.Status)
	assert.Equal(t, MaxRounds, game.Round)
	assert.Equal(t, int64(1100), game.Payout)
	assert.Equal(t, int64(900+1100), ledger.Balance(guildID, userID))
	assert.Zero(t, engine.ActiveGames())
}

func TestEngine_CashOut(t *testing.T) {
	ctx := context.Background()

	t.Run("needs a correct guess", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, 49)
		game, err := engine.Start(ctx, guildID, userID, 100)
		require.NoError(t, err)

		_, err = engine.CashOut(ctx, guildID, userID, game.ID)
		assert.ErrorIs(t, err, games.ErrNothingToCashOut)
		assert.Equal(t, 1, engine.ActiveGames())
	})

	t.Run("pays round plus one", func(t *testing.T) {
		engine, ledger, _ := newTestEngine(t, 49, 79, 19)
		game, err := engine.Start(ctx, guildID, userID, 100)
		require.NoError(t, err)
		game, err = engine.Guess(ctx, guildID, userID, game.ID, Higher)
		require.NoError(t, err)
		game, err = engine.Guess(ctx, guildID, userID, game.ID, Lower)
		require.NoError(t, err)
		require.Equal(t, 3, game.Round)

		game, err = engine.CashOut(ctx, guildID, userID, game.ID)

		require.NoError(t, err)
		assert.Equal(t, StatusCashedOut, game.Status)
		assert.Equal(t, int64(400), game.Payout)
		assert.Equal(t, int64(1300), ledger.Balance(guildID, userID))

		_, err = engine.CashOut(ctx, guildID, userID, game.ID)
		assert.ErrorIs(t, err, games.ErrNoGame)
	})
}

func TestEngine_PayoutFailureKeepsGame(t *testing.T) {
	ctx := context.Background()

	t.Run("cash out retries the payout", func(t *testing.T) {
		engine, ledger, _ := newTestEngine(t, 49, 79)
		game, err := engine.Start(ctx, guildID, userID, 100)
		require.NoError(t, err)
		game, err = engine.Guess(ctx, guildID, userID, game.ID, Higher)
		require.NoError(t, err)

		ledger.FailNext = errors.New("db down")
		_, err = engine.CashOut(ctx, guildID, userID, game.ID)
		require.Error(t, err)
		assert.Equal(t, int64(900), ledger.Balance(guildID, userID))
		assert.Equal(t, 1, engine.ActiveGames())

		game, err = engine.CashOut(ctx, guildID, userID, game.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCashedOut, game.Status)
		assert.Equal(t, int64(1200), ledger.Balance(guildID, userID))
		assert.Zero(t, engine.ActiveGames())
	})

	t.Run("guess on a decided game settles it without drawing", func(t *testing.T) {
		engine, ledger, _ := newTestEngine(t, 49, 79)
		game, err := engine.Start(ctx, guildID, userID, 100)
		require.NoError(t, err)
		game, err = engine.Guess(ctx, guildID, userID, game.ID, Higher)
		require.NoError(t, err)

		ledger.FailNext = errors.New("db down")
		_, err = engine.CashOut(ctx, guildID, userID, game.ID)
		require.Error(t, err)

		game, err = engine.Guess(ctx, guildID, userID, game.ID, Lower)
		require.NoError(t, err)
		assert.Equal(t, StatusCashedOut, game.Status)
		assert.Equal(t, 80, game.Current)
		assert.Equal(t, int64(1200), ledger.Balance(guildID, userID))
	})

	t.Run("start pays the decided game first", func(t *testing.T) {
		engine, ledger, cooldowns := newTestEngine(t, 49, 79, 29)
		game, err := engine.Start(ctx, guildID, userID, 100)
		require.NoError(t, err)
		game, err = engine.Guess(ctx, guildID, userID, game.ID, Higher)
		require.NoError(t, err)

		ledger.FailNext = errors.New("db down")
		_, err = engine.CashOut(ctx, guildID, userID, game.ID)
		require.Error(t, err)
		cooldowns.Advance(StartCooldown)

		next, err := engine.Start(ctx, guildID, userID, 100)
		require.NoError(t, err)
		assert.NotEqual(t, game.ID, next.ID)
		assert.Equal(t, int64(1100), ledger.Balance(guildID, userID))
		assert.Equal(t, 1, engine.ActiveGames())
	})
}

func TestEngine_Expiry(t *testing.T) {
	ctx := context.Background()
	engine, ledger, _ := newTestEngine(t, 49)
	engine.timeout = 20 * time.Millisecond
	expired := make(chan games.Expiry, 1)
	engine.OnExpire(func(e games.Expiry) { expired <- e })

	_, err := engine.Start(ctx, guildID, userID, 100)
	require.NoError(t, err)

	select {
	case e := <-expired:
		assert.Equal(t, games.HigherLower, e.Game)
	case <-time.After(time.Second):
		t.Fatal("game never expired")
	}
	assert.Equal(t, int64(900), ledger.Balance(guildID, userID))
	assert.Zero(t, engine.ActiveGames())
}
