package russianroulette

import (
	"context"
	"errors"
	"testing"

	"overbank/bot/common"
	"overbank/games"
	"overbank/games/russianroulette"
	"overbank/models"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEconomy struct {
	service.EconomyService
	account *models.Account
	err     error
	loads   int
}

func (f *fakeEconomy) GetAccount(context.Context, int64, int64) (*models.Account, error) {
	f.loads++
	return f.account, f.err
}

type fakeEngine struct {
	open *russianroulette.Game
}

func (f *fakeEngine) Open(int64, int64) (*russianroulette.Game, bool) {
	return f.open, f.open != nil
}

func (f *fakeEngine) Create(context.Context, int64, int64, int64, int64) (*russianroulette.Game, error) {
	return nil, errors.New("not used")
}

func (f *fakeEngine) Join(context.Context, int64, int64, int64, int64) (*russianroulette.Outcome, error) {
	return nil, errors.New("not used")
}

func (f *fakeEngine) OnExpire(games.ExpiryHandler) {}

func TestJoinWager(t *testing.T) {
	ctx := context.Background()
	inv := &common.Invocation{GuildID: 1, ChannelID: 2, UserID: 3}

	t.Run("all resolves against the joiner's hand", func(t *testing.T) {
		f := New(&discordgo.Session{}, &fakeEconomy{account: &models.Account{Balance: 640}}, &fakeEngine{})

		wager, err := f.joinWager(ctx, inv, "all")
		require.NoError(t, err)
		assert.Equal(t, int64(640), wager)

		wager, err = f.joinWager(ctx, inv, "half")
		require.NoError(t, err)
		assert.Equal(t, int64(320), wager)
	})

	t.Run("plain amount skips the account", func(t *testing.T) {
		economy := &fakeEconomy{}
		f := New(&discordgo.Session{}, economy, &fakeEngine{})

		wager, err := f.joinWager(ctx, inv, "250")
		require.NoError(t, err)
		assert.Equal(t, int64(250), wager)
		assert.Zero(t, economy.loads)
	})

	t.Run("empty hand", func(t *testing.T) {
		f := New(&discordgo.Session{}, &fakeEconomy{}, &fakeEngine{})
		_, err := f.joinWager(ctx, inv, "all")
		assert.ErrorIs(t, err, service.ErrInvalidAmount)
	})

	t.Run("account failure", func(t *testing.T) {
		f := New(&discordgo.Session{}, &fakeEconomy{err: errors.New("database unavailable")}, &fakeEngine{})
		_, err := f.joinWager(ctx, inv, "half")
		var botErr *common.BotError
		assert.ErrorAs(t, err, &botErr)
	})

	t.Run("no amount matches the host", func(t *testing.T) {
		f := New(&discordgo.Session{}, &fakeEconomy{}, &fakeEngine{open: &russianroulette.Game{Wager: 500}})
		wager, err := f.joinWager(ctx, inv, "")
		require.NoError(t, err)
		assert.Equal(t, int64(500), wager)

		f = New(&discordgo.Session{}, &fakeEconomy{}, &fakeEngine{})
		_, err = f.joinWager(ctx, inv, "")
		assert.ErrorIs(t, err, games.ErrNoGame)
	})
}
