// Package blackjack runs single-player blackjack against the house, one game per user.
package blackjack

import (
	"context"
	"fmt"
	"time"

	"overbank/config"
	"overbank/events"
	"overbank/games"
	"overbank/games/cards"
	"overbank/games/session"
	"overbank/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DealerStandsOn is the total at which the dealer stops drawing
const DealerStandsOn = 17

// Status is the state of a game
type Status string

const (
	StatusActive     Status = "active"
	StatusBlackjack  Status = "blackjack"
	StatusPush       Status = "push"
	StatusPlayerBust Status = "player_bust"
	StatusPlayerWin  Status = "player_win"
	StatusDealerWin  Status = "dealer_win"
	StatusExpired    Status = "expired"
)

// Game is a snapshot of one blackjack game
type Game struct {
	ID      string
	GuildID int64
	UserID  int64
	Wager   int64
	Player  cards.Hand
	Dealer  cards.Hand
	Status  Status
	Payout  int64
	Account *models.Account // set once the game is settled with a payout

	deck    *cards.Deck
	outcome string // kept while a decided game waits for its payout
}

// Finished reports whether the game has been settled
func (g *Game) Finished() bool {
	return g.Status != StatusActive
}

func (g *Game) snapshot() *Game {
	c := *g
	c.Player = append(cards.Hand(nil), g.Player...)
	c.Dealer = append(cards.Hand(nil), g.Dealer...)
	c.deck = nil
	return &c
}

// Engine owns the live blackjack games
type Engine struct {
	settlement games.Settlement
	newDeck    func() *cards.Deck
	timeout    time.Duration
	table      *session.Table[games.UserKey, *Game]
	onExpire   games.ExpiryHandler
}

// NewEngine creates a blackjack engine settling through ledger
func NewEngine(ledger games.Ledger, emitter events.Emitter, cfg *config.Config) *Engine {
	return &Engine{
		settlement: games.Settlement{Ledger: ledger, Emitter: emitter},
		newDeck:    func() *cards.Deck { return cards.NewShuffledDeck(games.DefaultRandom{}) },
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

// Active returns the game in progress for a user
func (e *Engine) Active(guildID, userID int64) (*Game, bool) {
	entry := e.table.Lock(games.UserKey{GuildID: guildID, UserID: userID})
	defer entry.Unlock()

	g, ok := entry.Value()
	if !ok {
		return nil, false
	}
	return g.snapshot(), true
}

// Start escrows the wager and deals the opening hands. A natural 21 settles immediately.
func (e *Engine) Start(ctx context.Context, guildID, userID, wager int64) (*Game, error) {
	if wager <= 0 {
		return nil, games.ErrInvalidWager
	}

	entry := e.table.Lock(games.UserKey{GuildID: guildID, UserID: userID})
	defer entry.Unlock()

	if prev, ok := entry.Value(); ok {
		if !prev.Finished() {
			return nil, games.ErrGameInProgress
		}
		// The previous game was decided but its payout failed; pay it before dealing again
		if _, err := e.finish(ctx, entry, prev, prev.Status, prev.Payout, prev.outcome); err != nil {
			return nil, err
		}
	}

	if _, err := e.settlement.Ledger.Escrow(ctx, guildID, userID, wager, models.TransactionTypeWagerEscrow); err != nil {
		return nil, err
	}

	g := &Game{
		ID:      uuid.NewString(),
		GuildID: guildID,
		UserID:  userID,
		Wager:   wager,
		Status:  StatusActive,
		deck:    e.newDeck(),
	}
	if err := e.deal(g); err != nil {
		e.refund(ctx, g)
		return nil, err
	}

	log.WithFields(log.Fields{
		"game_id":  g.ID,
		"guild_id": guildID,
		"user_id":  userID,
		"wager":    wager,
	}).Debug("Blackjack game started")

	if g.Player.IsBlackjack() {
		if g.Dealer.IsBlackjack() {
			return e.finish(ctx, entry, g, StatusPush, g.Wager, games.OutcomePush)
		}
		return e.finish(ctx, entry, g, StatusBlackjack, g.Wager*5/2, games.OutcomeBlackjack)
	}

	entry.Put(g, e.timeout, e.expire)
	return g.snapshot(), nil
}

// Hit draws a card for the player; going over 21 loses the wager
func (e *Engine) Hit(ctx context.Context, guildID, userID int64, gameID string) (*Game, error) {
	entry := e.table.Lock(games.UserKey{GuildID: guildID, UserID: userID})
	defer entry.Unlock()

	g, err := current(entry, gameID)
	if err != nil {
		return nil, err
	}
	if g.Finished() {
		return e.finish(ctx, entry, g, g.Status, g.Payout, g.outcome)
	}

	c, err := g.deck.Draw()
	if err != nil {
		return nil, fmt.Errorf("failed to draw card: %w", err)
	}
	g.Player = append(g.Player, c)

	if g.Player.IsBust() {
		return e.finish(ctx, entry, g, StatusPlayerBust, 0, games.OutcomeLoss)
	}

	entry.Touch(e.timeout)
	return g.snapshot(), nil
}

// Stand plays out the dealer and settles the game
func (e *Engine) Stand(ctx context.Context, guildID, userID int64, gameID string) (*Game, error) {
	entry := e.table.Lock(games.UserKey{GuildID: guildID, UserID: userID})
	defer entry.Unlock()

	g, err := current(entry, gameID)
	if err != nil {
		return nil, err
	}
	if g.Finished() {
		return e.finish(ctx, entry, g, g.Status, g.Payout, g.outcome)
	}

	for g.Dealer.Total() < DealerStandsOn {
		c, err := g.deck.Draw()
		if err != nil {
			return nil, fmt.Errorf("failed to draw card: %w", err)
		}
		g.Dealer = append(g.Dealer, c)
	}

	player, dealer := g.Player.Total(), g.Dealer.Total()
	switch {
	case dealer > 21 || player > dealer:
		return e.finish(ctx, entry, g, StatusPlayerWin, g.Wager*2, games.OutcomeWin)
	case player < dealer:
		return e.finish(ctx, entry, g, StatusDealerWin, 0, games.OutcomeLoss)
	default:
		return e.finish(ctx, entry, g, StatusPush, g.Wager, games.OutcomePush)
	}
}

func current(entry *session.Entry[games.UserKey, *Game], gameID string) (*Game, error) {
	g, ok := entry.Value()
	if !ok {
		return nil, games.ErrNoGame
	}
	// Buttons of an earlier game carry a stale id
	if gameID != "" && gameID != g.ID {
		return nil, games.ErrNoGame
	}
	return g, nil
}

func (e *Engine) deal(g *Game) error {
	for range 2 {
		for _, hand := range []*cards.Hand{&g.Player, &g.Dealer} {
			c, err := g.deck.Draw()
			if err != nil {
				return fmt.Errorf("failed to deal: %w", err)
			}
			*hand = append(*hand, c)
		}
	}
	return nil
}

// finish settles a decided game and frees the slot. When the payout fails the
// decided game stays in the slot without a timer, so the next action retries it.
func (e *Engine) finish(ctx context.Context, entry *session.Entry[games.UserKey, *Game], g *Game, status Status, payout int64, outcome string) (*Game, error) {
	g.Status = status
	g.Payout = payout
	g.outcome = outcome

	account, err := e.settlement.Settle(ctx, games.Blackjack, g.GuildID, g.UserID, g.Wager, payout, outcome)
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
		"player":   g.Player.Total(),
		"dealer":   g.Dealer.Total(),
		"payout":   payout,
	}).Info("Blackjack game settled")

	return g.snapshot(), nil
}

func (e *Engine) refund(ctx context.Context, g *Game) {
	if _, err := e.settlement.Settle(ctx, games.Blackjack, g.GuildID, g.UserID, g.Wager, g.Wager, games.OutcomeRefunded); err != nil {
		log.WithFields(log.Fields{
			"game_id": g.ID,
			"user_id": g.UserID,
			"wager":   g.Wager,
			"error":   err,
		}).Error("Failed to refund blackjack wager")
	}
}

// expire runs under the key lock once the game went idle for the timeout
func (e *Engine) expire(g *Game) {
	g.Status = StatusExpired
	if _, err := e.settlement.Settle(context.Background(), games.Blackjack, g.GuildID, g.UserID, g.Wager, 0, games.OutcomeExpired); err != nil {
		log.WithError(err).Error("Failed to record expired blackjack game")
	}

	log.WithFields(log.Fields{
		"game_id":  g.ID,
		"guild_id": g.GuildID,
		"user_id":  g.UserID,
		"wager":    g.Wager,
	}).Info("Blackjack game expired")

	if e.onExpire != nil {
		e.onExpire(games.Expiry{
			Game:    games.Blackjack,
			GameID:  g.ID,
			GuildID: g.GuildID,
			UserID:  g.UserID,
			Wager:   g.Wager,
		})
	}
}
