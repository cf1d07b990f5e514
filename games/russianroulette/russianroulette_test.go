package russianroulette

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
	guildID   int64 = 900000000000000001
	channelID int64 = 789012
	hostID    int64 = 111111
	joinerID  int64 = 222222
)

func newTestEngine(t *testing.T, rolls ...int) (*Engine, *gamestest.Ledger, *gamestest.Emitter) {
	t.Helper()
	ledger := gamestest.NewLedger()
	ledger.Fund(guildID, hostID, 1000)
	ledger.Fund(guildID, joinerID, 1000)
	emitter := &gamestest.Emitter{}

	engine := NewEngine(ledger, emitter, config.NewTestConfig())
	engine.rng = gamestest.NewRandom(rolls...)
	return engine, ledger, emitter
}

func TestEngine_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("escrows host", func(t *testing.T) {
		engine, ledger, _ := newTestEngine(t)

		game, err := engine.Create(ctx, guildID, channelID, hostID, 200)

		require.NoError(t, err)
		assert.Equal(t, hostID, game.HostID)
		assert.Equal(t, int64(800), ledger.Balance(guildID, hostID))
		assert.Equal(t, 1, engine.ActiveGames())

		open, ok := engine.Open(guildID, channelID)
		require.True(t, ok)
		assert.Equal(t, game.ID, open.ID)
		assert.Equal(t, int64(200), open.Wager)

		_, ok = engine.Open(guildID, channelID+1)
		assert.False(t, ok)
	})

	t.Run("one game per channel", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		_, err := engine.Create(ctx, guildID, channelID, hostID, 200)
		require.NoError(t, err)

		_, err = engine.Create(ctx, guildID, channelID, joinerID, 200)
		assert.ErrorIs(t, err, games.ErrGameInProgress)

		_, err = engine.Create(ctx, guildID, channelID+1, joinerID, 200)
		assert.NoError(t, err)
	})

	t.Run("insufficient funds opens nothing", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		_, err := engine.Create(ctx, guildID, channelID, hostID, 5000)
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)
		assert.Zero(t, engine.ActiveGames())
	})
}

func TestEngine_JoinValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("no game", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		_, err := engine.Join(ctx, guildID, channelID, joinerID, 200)
		assert.ErrorIs(t, err, games.ErrNoGame)
	})

	tests := []struct {
		name   string
		joiner int64
		wager  int64
		want   error
	}{
		{name: "host cannot join", joiner: hostID, wager: 200, want: games.ErrSelfJoin},
		{name: "stake must match", joiner: joinerID, wager: 150, want: games.ErrStakeMismatch},
		{name: "joiner must afford stake", joiner: 333333, wager: 200, want: service.ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, ledger, _ := newTestEngine(t)
			_, err := engine.Create(ctx, guildID, channelID, hostID, 200)
			require.NoError(t, err)

			_, err = engine.Join(ctx, guildID, channelID, tt.joiner, tt.wager)

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, engine.ActiveGames())
			assert.Equal(t, int64(1000), ledger.Balance(guildID, joinerID))
		})
	}
}

func TestEngine_Join(t *testing.T) {
	ctx := context.Background()

	for bullet := 1; bullet <= Chambers; bullet++ {
		engine, ledger, emitter := newTestEngine(t, bullet-1)
		_, err := engine.Create(ctx, guildID, channelID, hostID, 200)
		require.NoError(t, err)

		outcome, err := engine.Join(ctx, guildID, channelID, joinerID, 200)

		require.NoError(t, err)
		require.Len(t, outcome.Shots, bullet)
		fired := 0
		for i, shot := range outcome.Shots {
			assert.Equal(t, i+1, shot.Chamber)
			if shot.Chamber%2 == 1 {
				assert.Equal(t, hostID, shot.ShooterID)
			} else {
				assert.Equal(t, joinerID, shot.ShooterID)
			}
			if shot.Fired {
				fired++
			}
		}
		assert.Equal(t, 1, fired, "bullet %d", bullet)
		assert.True(t, outcome.Shots[bullet-1].Fired)

		wantLoser := hostID
		if bullet%2 == 0 {
			wantLoser = joinerID
		}
		assert.Equal(t, wantLoser, outcome.LoserID)
		assert.NotEqual(t, outcome.LoserID, outcome.WinnerID)

		assert.Equal(t, int64(1200), ledger.Balance(guildID, outcome.WinnerID))
		assert.Equal(t, int64(800), ledger.Balance(guildID, outcome.LoserID))
		assert.Equal(t, int64(2000), ledger.Total())
		assert.Zero(t, engine.ActiveGames())
		assert.Len(t, emitter.Settled(), 2)
	}
}

func TestEngine_JoinRefundsBothOnPayoutFailure(t *testing.T) {
	ctx := context.Background()
	engine, ledger, _ := newTestEngine(t, 0)
	_, err := engine.Create(ctx, guildID, channelID, hostID, 200)
	require.NoError(t, err)

	// Escrow of the joiner succeeds, then the payout fails
	engine.settlement.Ledger = &failingPayout{Ledger: ledger}

	_, err = engine.Join(ctx, guildID, channelID, joinerID, 200)

	assert.Error(t, err)
	assert.Equal(t, int64(1000), ledger.Balance(guildID, hostID))
	assert.Equal(t, int64(1000), ledger.Balance(guildID, joinerID))
	assert.Zero(t, engine.ActiveGames())
}

type failingPayout struct {
	*gamestest.Ledger
	failed bool
}

func (f *failingPayout) Payout(ctx context.Context, guildID, userID int64, amount int64, txType models.TransactionType) (*models.Account, error) {
	if !f.failed {
		f.failed = true
		return nil, errors.New("connection reset")
	}
	return f.Ledger.Payout(ctx, guildID, userID, amount, txType)
}

func TestEngine_ExpiryRefundsHost(t *testing.T) {
	ctx := context.Background()
	engine, ledger, emitter := newTestEngine(t)
	engine.ttl = 20 * time.Millisecond
	expired := make(chan games.Expiry, 1)
	engine.OnExpire(func(e games.Expiry) { expired <- e })

	_, err := engine.Create(ctx, guildID, channelID, hostID, 200)
	require.NoError(t, err)

	select {
	case e := <-expired:
		assert.True(t, e.Refunded)
		assert.Equal(t, channelID, e.ChannelID)
	case <-time.After(time.Second):
		t.Fatal("game never expired")
	}

	assert.Equal(t, int64(1000), ledger.Balance(guildID, hostID))
	assert.Equal(t, games.OutcomeRefunded, emitter.Settled()[0].Outcome)
	_, err = engine.Join(ctx, guildID, channelID, joinerID, 200)
	assert.ErrorIs(t, err, games.ErrNoGame)
}
