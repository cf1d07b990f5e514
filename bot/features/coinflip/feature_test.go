package coinflip

import (
	"context"
	"errors"
	"testing"
	"time"

	"overbank/bot/common"
	"overbank/models"
	"overbank/service"

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

type fakeRounds struct {
	service.CoinflipService
	round *models.CoinflipRound
}

func (f *fakeRounds) Active(context.Context, int64, int64) (*models.CoinflipRound, error) {
	return f.round, nil
}

func TestRoundEmbed(t *testing.T) {
	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	round := &models.CoinflipRound{CreatorID: 5, Amount: 200, Participants: []int64{5}, CreatedAt: created}

	embed := RoundEmbed(round, created.Add(10*time.Minute))
	assert.Contains(t, embed.Description, "<@5> put **200** coins on the table.")
	assert.Contains(t, embed.Description, "<t:1735733400:R>")
}

func TestJoinEmbed(t *testing.T) {
	round := &models.CoinflipRound{Amount: 200, Participants: []int64{5, 6}}

	completed := JoinEmbed(&models.CoinflipJoinResult{Round: round, Completed: true, WinnerID: 6, Pot: 400})
	assert.Equal(t, "The coin spins between <@5> and <@6>...\n\n🎉 <@6> wins the pot of **400** coins!", completed.Description)

	open := JoinEmbed(&models.CoinflipJoinResult{Round: &models.CoinflipRound{Amount: 200, Participants: []int64{5}}})
	assert.Equal(t, "1 players are in for **200** coins each.", open.Description)
}

func TestJoinMentions(t *testing.T) {
	assert.Equal(t, "", joinMentions(nil))
	assert.Equal(t, "a", joinMentions([]string{"a"}))
	assert.Equal(t, "a, b and c", joinMentions([]string{"a", "b", "c"}))
}

func TestJoinAmount(t *testing.T) {
	ctx := context.Background()
	inv := &common.Invocation{GuildID: 1, ChannelID: 2, UserID: 3}

	t.Run("all resolves against the joiner's hand", func(t *testing.T) {
		economy := &fakeEconomy{account: &models.Account{Balance: 750}}
		f := New(economy, &fakeRounds{}, time.Minute)

		amount, err := f.joinAmount(ctx, inv, "all")
		require.NoError(t, err)
		assert.Equal(t, int64(750), amount)

		amount, err = f.joinAmount(ctx, inv, "half")
		require.NoError(t, err)
		assert.Equal(t, int64(375), amount)
	})

	t.Run("plain amount skips the account", func(t *testing.T) {
		economy := &fakeEconomy{}
		f := New(economy, &fakeRounds{}, time.Minute)

		amount, err := f.joinAmount(ctx, inv, "1,200")
		require.NoError(t, err)
		assert.Equal(t, int64(1200), amount)
		assert.Zero(t, economy.loads)
	})

	t.Run("empty hand", func(t *testing.T) {
		f := New(&fakeEconomy{}, &fakeRounds{}, time.Minute)
		_, err := f.joinAmount(ctx, inv, "all")
		assert.ErrorIs(t, err, service.ErrInvalidAmount)
	})

	t.Run("account failure", func(t *testing.T) {
		f := New(&fakeEconomy{err: errors.New("database unavailable")}, &fakeRounds{}, time.Minute)
		_, err := f.joinAmount(ctx, inv, "all")
		var botErr *common.BotError
		assert.ErrorAs(t, err, &botErr)
	})

	t.Run("no amount matches the round", func(t *testing.T) {
		f := New(&fakeEconomy{}, &fakeRounds{round: &models.CoinflipRound{Amount: 200}}, time.Minute)
		amount, err := f.joinAmount(ctx, inv, "")
		require.NoError(t, err)
		assert.Equal(t, int64(200), amount)

		f = New(&fakeEconomy{}, &fakeRounds{}, time.Minute)
		_, err = f.joinAmount(ctx, inv, "")
		assert.ErrorIs(t, err, service.ErrNoActiveRound)
	})
}
