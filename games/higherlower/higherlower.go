// Package higherlower runs the higher-or-lower number game: guess whether the next
// number in 1..100 beats the current one and cash out before a miss.
package higherlower

import (
	"context"
	"time"

	"overbank/config"
	"overbank/events"
	"overbank/games"
	"overbank/games/session"
	"overbank/models"
	"overbank/service"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	MaxNumber     = 100
	MaxRounds     = 10
	StartCooldown = 10 * time.Second
)

// Direction is a player's guess
type Direction string

const (
	Higher Direction = "higher"
	Lower  Direction = "lower"
)

// Status is the state of a game
type Status string

const (
	StatusActive    Status = "active"
	StatusLost      Status = "lost"
	StatusCashedOut Status = "cashed_out"
	StatusMaxed     Status = "maxed"
	StatusExpired   Status = "expired"
)

// Game is a snapshot of one higher/lower game
type Game struct {
	ID       string
	GuildID  int64
	UserID   int64
	Wager    int64
	Current  int
	Previous int // number before the last guess, 0 before the first
	Round    int
	Status   Status
	Payout   int64
	Account  *models.Account

	outcome string // kept while a decided game waits for its payout
}

// Multiplier is what a cash-out pays now, as a multiple of the wager
func (g *Game) Multiplier() int64 {
	return int64(g.Round + 1)
}

// CanCashOut reports whether at least one guess was right
func (g *Game) CanCashOut() bool {
	return g.Status == StatusActive && g.Round >= 2
}

// Engine owns the live higher/lower games
type Engine struct {
	settlement games.Settlement
	cooldowns  service.CooldownService
	rng        games.Random
	maxWager   int64
	timeout    time.Duration
	table      *session.Table[games.UserKey, *Game]
	onExpire   games.ExpiryHandler
}

// NewEngine creates a higher/lower engine
func NewEngine(ledger games.Ledger, cooldowns service.CooldownService, emitter events.Emitter, cfg *config.Config) *Engine {
	return &Engine{
		settlement: games.Settlement{Ledger: ledger, Emitter: emitter},
		cooldowns:  cooldowns,
		rng:        games.DefaultRandom{},
		maxWager:   cfg.MaxGameWager,
		timeout:    cfg.GameTimeout,
		table:      session.NewTable[games.UserKey, *Game](),
	}
}

// OnExpire registers the handler told about games forfeited through inactivity
func (e *Engine) OnExpire(h games.ExpiryHandler) {
	e.onExpire = h
}

// ActiveGames returns the number of games in progress
func (e *Engine) ActiveGames() int {
	return e.table.Len()
}

// Start escrows the wager and draws the first number
func (e *Engine) Start(ctx context.Context, guildID, userID, wager int64) (*Game, error) {
	if wager <= 0 {
		return nil, games.ErrInvalidWager
	}
	if wager > e.maxWager {
		return nil, games.ErrWagerTooLarge
	}

	entry := e.table.Lock(games.UserKey{GuildID: guildID, UserID: userID})
	defer entry.Unlock()

	if prev, ok := entry.Value(); ok {
		if prev.Status == StatusActive {
			return nil, games.ErrGameInProgress
		}
		// The previous game was decided but its payout failed; pay it before starting again
		if _, err := e.finish(ctx, entry, prev, prev.Status, prev.Payout, prev.outcome); err != nil {
			return nil, err
		}
	}

	cooldownKey := models.ActionCooldown(games.HigherLower, guildID, userID)
	status, err := e.cooldowns.Check(ctx, cooldownKey)
	if err != nil {
		return nil, err
	}
	if status.OnCooldown {
		return nil, &service.CooldownError{Action: games.HigherLower, Remaining: status.Remaining}
	}

	if _, err := e.settlement.Ledger.Escrow(ctx, guildID, userID, wager, models.TransactionTypeWagerEscrow); err != nil {
		return nil, err
	}
	if err := e.cooldowns.Set(ctx, cooldownKey, StartCooldown); err != nil {
		// The game still runs; the next start is merely ungated
		log.WithError(err).Warn("Failed to set higherlower cooldown")
	}

	g := &Game{
		ID:      uuid.NewString(),
		GuildID: guildID,
		UserID:  userID,
		Wager:   wager,
		Current: e.draw(),
		Round:   1,
		Status:  StatusActive,
	}
	entry.Put(g, e.timeout, e.expire)

	log.WithFields(log.Fields{
		"game_id":  g.ID,
		"guild_id": guildID,
		"user_id":  userID,
		"wager":    wager,
		"number":   g.Current,
	}).Debug("Higher/lower game started")

	c := *g
	return &c, nil
}

// Guess draws the next number. A tie counts as a miss.
func (e *Engine) Guess(ctx context.Context, guildID, userID int64, gameID string, dir Direction) (*Game, error) {
	if dir != Higher && dir != Lower {
		return nil, games.ErrInvalidChoice
	}

	entry := e.table.Lock(games.UserKey{GuildID: guildID, UserID: userID})
	defer entry.Unlock()

	g, err := current(entry, gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != StatusActive {
		return e.finish(ctx, entry, g, g.Status, g.Payout, g.outcome)
	}

	next := e.draw()
	correct := (dir == Higher && next > g.Current) || (dir == Lower && next < g.Current)
	g.Previous, g.Current = g.Current, next

	if !correct {
		return e.finish(ctx, entry, g, StatusLost, 0, games.OutcomeLoss)
	}

	g.Round++
	if g.Round >= MaxRounds {
		return e.finish(ctx, entry, g, StatusMaxed, g.Wager*g.Multiplier(), games.OutcomeWin)
	}

	entry.Touch(e.timeout)
	c := *g
	return &c, nil
}

// CashOut ends the game and pays (round + 1) times the wager
func (e *Engine) CashOut(ctx context.Context, guildID, userID int64, gameID string) (*Game, error) {
	entry := e.table.Lock(games.UserKey{GuildID: guildID, UserID: userID})
	defer entry.Unlock()

	g, err := current(entry, gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != StatusActive {
		return e.finish(ctx, entry, g, g.Status, g.Payout, g.outcome)
	}
	if !g.CanCashOut() {
		return nil, games.ErrNothingToCashOut
	}

	return e.finish(ctx, entry, g, StatusCashedOut, g.Wager*g.Multiplier(), games.OutcomeCashOut)
}

func current(entry *session.Entry[games.UserKey, *Game], gameID string) (*Game, error) {
	g, ok := entry.Value()
	if !ok || (gameID != "" && gameID != g.ID) {
		return nil, games.ErrNoGame
	}
	return g, nil
}

func (e *Engine) draw() int {
	return 1 + e.rng.IntN(MaxNumber)
}

// finish settles a decided game and frees the slot. A failed payout leaves the
// decided game in the slot without a timer, so the next action retries it.
func (e *Engine) finish(ctx context.Context, entry *session.Entry[games.UserKey, *Game], g *Game, status Status, payout int64, outcome string) (*Game, error) {
	g.Status = status
	g.Payout = payout
	g.outcome = outcome

	account, err := e.settlement.Settle(ctx, games.HigherLower, g.GuildID, g.UserID, g.Wager, payout, outcome)
	if err != nil {
		entry.Put(g, 0, nil)
		return nil, err
	}
	entry.Delete()
	g.Account = account

	log.WithFields(log.Fields{
		"game_id":  g.ID,
		"guild_id": g.GuildID,
		"user_id":  g.UserID,
		"status":   status,
		"round":    g.Round,
		"payout":   payout,
	}).Info("Higher/lower game settled")

	c := *g
	return &c, nil
}

func (e *Engine) expire(g *Game) {
	g.Status = StatusExpired
	if _, err := e.settlement.Settle(context.Background(), games.HigherLower, g.GuildID, g.UserID, g.Wager, 0, games.OutcomeExpired); err != nil {
		log.WithError(err).Error("Failed to record expired higher/lower game")
	}

	log.WithFields(log.Fields{
		"game_id": g.ID,
		"user_id": g.UserID,
		"round":   g.Round,
	}).Info("Higher/lower game expired")

	if e.onExpire != nil {
		e.onExpire(games.Expiry{
			Game:    games.HigherLower,
			GameID:  g.ID,
			GuildID: g.GuildID,
			UserID:  g.UserID,
			Wager:   g.Wager,
		})
	}
}
