package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"overbank/bot/common"
	bjfeature "overbank/bot/features/blackjack"
	"overbank/bot/features/help"
	hlfeature "overbank/bot/features/higherlower"
	"overbank/config"
	"overbank/games/blackjack"
	"overbank/games/gamestest"
	"overbank/games/higherlower"
	"overbank/games/roulette"
	"overbank/games/russianroulette"
	"overbank/games/slots"
	"overbank/models"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGuildID int64 = 111
	testUserID  int64 = 222
)

type fakeRounds struct {
	guilds []int64
	err    error
}

func (f *fakeRounds) GuildsWithActiveRounds(context.Context) ([]int64, error) {
	return f.guilds, f.err
}

type fakeCoinflip struct {
	service.CoinflipService

	mu      sync.Mutex
	swept   []int64
	ttl     time.Duration
	failFor int64
}

func (f *fakeCoinflip) ExpireStale(_ context.Context, guildID int64, olderThan time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swept = append(f.swept, guildID)
	f.ttl = olderThan
	if guildID == f.failFor {
		return 0, errors.New("database unavailable")
	}
	return 1, nil
}

func newTestBot(t *testing.T, services Services) *Bot {
	t.Helper()
	cfg := config.NewTestConfig()
	ledger := gamestest.NewLedger()
	cooldowns := gamestest.NewCooldowns()
	emitter := &gamestest.Emitter{}

	if services.Cooldowns == nil {
		services.Cooldowns = cooldowns
	}

	engines := Engines{
		Blackjack:       blackjack.NewEngine(ledger, emitter, cfg),
		HigherLower:     higherlower.NewEngine(ledger, cooldowns, emitter, cfg),
		RussianRoulette: russianroulette.NewEngine(ledger, emitter, cfg),
		Roulette:        roulette.NewEngine(ledger, cooldowns, emitter, cfg),
		Slots:           slots.NewEngine(ledger, emitter),
	}

	botCfg := NewConfig(cfg)
	botCfg.CommandCooldown = 5 * time.Second
	return newBot(&discordgo.Session{}, botCfg, services, engines, nil)
}

func TestCommandDefinitions_AllRouted(t *testing.T) {
	bot := newTestBot(t, Services{})
	defs := commandDefinitions()

	names := make(map[string]bool, len(defs))
	for _, def := range defs {
		assert.False(t, names[def.Name], "duplicate command %s", def.Name)
		names[def.Name] = true

		assert.Contains(t, bot.commands, def.Name)
		assert.NotNil(t, bot.commands[def.Name])
		assert.NotEmpty(t, def.Description)
		require.NotNil(t, def.Contexts)
	}
	assert.Len(t, bot.commands, len(defs))

	for name := range throttledCommands {
		assert.True(t, names[name], "throttled command %s is not defined", name)
	}
}

func TestCommandDefinitions_AdminCommandsRequirePermission(t *testing.T) {
	for _, def := range commandDefinitions() {
		switch def.Name {
		case "addcoins", "removebalance":
			require.NotNil(t, def.DefaultMemberPermissions, def.Name)
			assert.Equal(t, int64(discordgo.PermissionAdministrator), *def.DefaultMemberPermissions)
		default:
			assert.Nil(t, def.DefaultMemberPermissions, def.Name)
		}
	}
}

func TestHelpListsRegisteredCommands(t *testing.T) {
	bot := newTestBot(t, Services{})
	require.IsType(t, &help.Feature{}, bot.commands["help"])

	embed := help.HelpEmbed(commandDefinitions(), true)
	listing := embed.Description
	for _, field := range embed.Fields {
		listing += "\n" + field.Value
	}
	for name := range bot.commands {
		assert.Contains(t, listing, "`/"+name, "help misses /%s", name)
	}
}

func TestComponentRoutes(t *testing.T) {
	bot := newTestBot(t, Services{})

	for _, customID := range []string{
		common.CustomID(bjfeature.ActionHit, "1"),
		common.CustomID(bjfeature.ActionStand, "1"),
		common.CustomID(hlfeature.ActionHigher, "1"),
		common.CustomID(hlfeature.ActionLower, "1"),
		common.CustomID(hlfeature.ActionCashOut, "1"),
	} {
		action, _, ok := common.ParseCustomID(customID)
		require.True(t, ok)
		assert.Contains(t, bot.buttons, action)
	}
	assert.NotContains(t, bot.buttons, "unknown")
}

func TestThrottle(t *testing.T) {
	ctx := context.Background()
	cooldowns := gamestest.NewCooldowns()
	bot := newTestBot(t, Services{Cooldowns: cooldowns})
	inv := &common.Invocation{GuildID: testGuildID, UserID: testUserID}

	t.Run("unthrottled command passes", func(t *testing.T) {
		bot.startThrottle(ctx, "work", inv)
		assert.NoError(t, bot.checkThrottle(ctx, "work", inv))
	})

	t.Run("throttled command blocks after success", func(t *testing.T) {
		require.NoError(t, bot.checkThrottle(ctx, "balance", inv))
		bot.startThrottle(ctx, "balance", inv)

		err := bot.checkThrottle(ctx, "balance", inv)
		var cooldownErr *service.CooldownError
		require.ErrorAs(t, err, &cooldownErr)
		assert.Equal(t, "balance", cooldownErr.Action)

		// other commands and other users are unaffected
		assert.NoError(t, bot.checkThrottle(ctx, "deposit", inv))
		assert.NoError(t, bot.checkThrottle(ctx, "balance", &common.Invocation{GuildID: testGuildID, UserID: testUserID + 1}))

		cooldowns.Advance(6 * time.Second)
		assert.NoError(t, bot.checkThrottle(ctx, "balance", inv))
	})

	t.Run("disabled when cooldown is zero", func(t *testing.T) {
		bot.config.CommandCooldown = 0
		defer func() { bot.config.CommandCooldown = 5 * time.Second }()

		bot.startThrottle(ctx, "slots", inv)
		assert.NoError(t, bot.checkThrottle(ctx, "slots", inv))
		status, err := cooldowns.Check(ctx, models.CommandCooldown("slots", testGuildID, testUserID))
		require.NoError(t, err)
		assert.False(t, status.OnCooldown)
	})
}

func TestExpireCoinflips(t *testing.T) {
	ctx := context.Background()

	t.Run("sweeps every guild", func(t *testing.T) {
		coinflip := &fakeCoinflip{failFor: 2}
		bot := newTestBot(t, Services{
			Coinflip: coinflip,
			Rounds:   &fakeRounds{guilds: []int64{1, 2, 3}},
		})

		bot.expireCoinflips(ctx)

		assert.Equal(t, []int64{1, 2, 3}, coinflip.swept)
		assert.Equal(t, bot.config.CoinflipTTL, coinflip.ttl)
	})

	t.Run("lister failure", func(t *testing.T) {
		coinflip := &fakeCoinflip{}
		bot := newTestBot(t, Services{
			Coinflip: coinflip,
			Rounds:   &fakeRounds{err: errors.New("database unavailable")},
		})

		bot.expireCoinflips(ctx)

		assert.Empty(t, coinflip.swept)
	})

	t.Run("worker stops", func(t *testing.T) {
		coinflip := &fakeCoinflip{}
		bot := newTestBot(t, Services{
			Coinflip: coinflip,
			Rounds:   &fakeRounds{guilds: []int64{testGuildID}},
		})

		stop := bot.StartCoinflipExpirationWorker(ctx)
		assert.Eventually(t, func() bool {
			coinflip.mu.Lock()
			defer coinflip.mu.Unlock()
			return len(coinflip.swept) == 1
		}, time.Second, 10*time.Millisecond)
		stop()
	})
}
