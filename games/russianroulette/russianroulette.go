// Package russianroulette runs two-player russian roulette, one game per channel.
// The host opens a game with a stake, the first matching joiner starts it and
// the survivor takes both stakes.
package russianroulette

import (
	"context"
	"time"

	"overbank/config"
	"overbank/events"
	"overbank/games"
	"overbank/games/session"
	"overbank/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Chambers in the revolver
const Chambers = 6

// Game is an open game waiting for a second player
type Game struct {
	ID        string
	GuildID   int64
	ChannelID int64
	HostID    int64
	JoinerID  int64
	Wager     int64
	CreatedAt time.Time
}

// Shot is one pull of the trigger
type Shot struct {
	Chamber   int
	ShooterID int64
	Fired     bool
}

// Outcome is a played and settled game
type Outcome struct {
	Game     Game
	Shots    []Shot
	WinnerID int64
	LoserID  int64
	Payout   int64
	Winner   *models.Account
}

// Engine owns the open games
type Engine struct {
	settlement games.Settlement
	rng        games.Random
	ttl        time.Duration
	table      *session.Table[games.ChannelKey, *Game]
	onExpire   games.ExpiryHandler
}

// NewEngine creates a russian roulette engine
func NewEngine(ledger games.Ledger, emitter events.Emitter, cfg *config.Config) *Engine {
	return &Engine{
		settlement: games.Settlement{Ledger: ledger, Emitter: emitter},
		rng:        games.DefaultRandom{},
		ttl:        cfg.RussianRouletteTTL,
		table:      session.NewTable[games.ChannelKey, *Game](),
	}
}

// OnExpire registers the handler told about games that never found a second player
func (e *Engine) OnExpire(h games.ExpiryHandler) {
	e.onExpire = h
}

// ActiveGames returns the number of games waiting for a joiner
func (e *Engine) ActiveGames() int {
	return e.table.Len()
}

// Open returns the channel's game waiting for a joiner
func (e *Engine) Open(guildID, channelID int64) (*Game, bool) {
	entry := e.table.Lock(games.ChannelKey{GuildID: guildID, ChannelID: channelID})
	defer entry.Unlock()

	g, ok := entry.Value()
	if !ok {
		return nil, false
	}
	c := *g
	return &c, true
}

// Create escrows the host's stake and opens the channel's game
func (e *Engine) Create(ctx context.Context, guildID, channelID, hostID, wager int64) (*Game, error) {
	if wager <= 0 {
		return nil, games.ErrInvalidWager
	}

	entry := e.table.Lock(games.ChannelKey{GuildID: guildID, ChannelID: channelID})
	defer entry.Unlock()

	if _, ok := entry.Value(); ok {
		return nil, games.ErrGameInProgress
	}

	if _, err := e.settlement.Ledger.Escrow(ctx, guildID, hostID, wager, models.TransactionTypeWagerEscrow); err != nil {
		return nil, err
	}

	g := &Game{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		ChannelID: channelID,
		HostID:    hostID,
		Wager:     wager,
		CreatedAt: time.Now(),
	}
	entry.Put(g, e.ttl, e.expire)

	log.WithFields(log.Fields{
		"game_id":    g.ID,
		"guild_id":   guildID,
		"channel_id": channelID,
		"host_id":    hostID,
		"wager":      wager,
	}).Info("Russian roulette game opened")

	c := *g
	return &c, nil
}

// Join escrows the joiner's stake, plays the game out and settles it
func (e *Engine) Join(ctx context.Context, guildID, channelID, joinerID, wager int64) (*Outcome, error) {
	entry := e.table.Lock(games.ChannelKey{GuildID: guildID, ChannelID: channelID})
	defer entry.Unlock()

	g, ok := entry.Value()
	switch {
	case !ok:
		return nil, games.ErrNoGame
	case g.HostID == joinerID:
		return nil, games.ErrSelfJoin
	case g.JoinerID != 0:
		return nil, games.ErrGameFull
	case wager != g.Wager:
		return nil, games.ErrStakeMismatch
	}

	if _, err := e.settlement.Ledger.Escrow(ctx, guildID, joinerID, wager, models.TransactionTypeWagerEscrow); err != nil {
		return nil, err
	}
	g.JoinerID = joinerID
	entry.Delete()

	outcome := e.play(*g)

	winner, err := e.settlement.Settle(ctx, games.RussianRoulette, guildID, outcome.WinnerID, g.Wager, outcome.Payout, games.OutcomeWin)
	if err != nil {
		e.refundBoth(ctx, g)
		return nil, err
	}
	outcome.Winner = winner
	if _, err := e.settlement.Settle(ctx, games.RussianRoulette, guildID, outcome.LoserID, g.Wager, 0, games.OutcomeLoss); err != nil {
		log.WithError(err).Warn("Failed to report russian roulette loss")
	}

	log.WithFields(log.Fields{
		"game_id":   g.ID,
		"guild_id":  guildID,
		"winner_id": outcome.WinnerID,
		"loser_id":  outcome.LoserID,
		"shots":     len(outcome.Shots),
		"payout":    outcome.Payout,
	}).Info("Russian roulette game settled")

	return outcome, nil
}

// play loads one bullet and alternates shots, host first, until it fires
func (e *Engine) play(g Game) *Outcome {
	bullet := 1 + e.rng.IntN(Chambers)

	outcome := &Outcome{Game: g, Payout: g.Wager * 2}
	for chamber := 1; chamber <= bullet; chamber++ {
		shooter := g.HostID
		if chamber%2 == 0 {
			shooter = g.JoinerID
		}
		fired := chamber == bullet
		outcome.Shots = append(outcome.Shots, Shot{Chamber: chamber, ShooterID: shooter, Fired: fired})
		if fired {
			outcome.LoserID = shooter
		}
	}

	outcome.WinnerID = g.HostID
	if outcome.LoserID == g.HostID {
		outcome.WinnerID = g.JoinerID
	}
	return outcome
}

func (e *Engine) refundBoth(ctx context.Context, g *Game) {
	for _, userID := range []int64{g.HostID, g.JoinerID} {
		if _, err := e.settlement.Settle(ctx, games.RussianRoulette, g.GuildID, userID, g.Wager, g.Wager, games.OutcomeRefunded); err != nil {
			log.WithFields(log.Fields{
				"game_id": g.ID,
				"user_id": userID,
				"wager":   g.Wager,
				"error":   err,
			}).Error("Failed to refund russian roulette stake")
		}
	}
}

// expire refunds the host of a game nobody joined
func (e *Engine) expire(g *Game) {
	_, err := e.settlement.Settle(context.Background(), games.RussianRoulette, g.GuildID, g.HostID, g.Wager, g.Wager, games.OutcomeRefunded)
	if err != nil {
		log.WithFields(log.Fields{
			"game_id": g.ID,
			"host_id": g.HostID,
			"wager":   g.Wager,
			"error":   err,
		}).Error("Failed to refund expired russian roulette game")
	}

	log.WithFields(log.Fields{
		"game_id":    g.ID,
		"channel_id": g.ChannelID,
		"host_id":    g.HostID,
	}).Info("Russian roulette game expired")

	if e.onExpire != nil {
		e.onExpire(games.Expiry{
			Game:      games.RussianRoulette,
			GameID:    g.ID,
			GuildID:   g.GuildID,
			ChannelID: g.ChannelID,
			UserID:    g.HostID,
			Wager:     g.Wager,
			Refunded:  err == nil,
		})
	}
}
