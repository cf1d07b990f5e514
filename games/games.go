// Package games holds what the game engines share: session keys, the ledger they
// settle through and the settlement helper that reports finished games.
package games

import (
	"context"
	"fmt"
	"math/rand/v2"

	"overbank/events"
	"overbank/models"

	log "github.com/sirupsen/logrus"
)

// Game names, used in events, metrics and cooldown keys
const (
	Blackjack       = "blackjack"
	HigherLower     = "higherlower"
	RussianRoulette = "russianroulette"
	Roulette        = "roulette"
	Slots           = "slots"
)

// Outcomes reported in GameSettledEvent
const (
	OutcomeWin       = "win"
	OutcomeLoss      = "loss"
	OutcomePush      = "push"
	OutcomeBlackjack = "blackjack"
	OutcomeCashOut   = "cashout"
	OutcomeExpired   = "expired"
	OutcomeRefunded  = "refunded"
)

// UserKey identifies a per-user game slot
type UserKey struct {
	GuildID int64
	UserID  int64
}

// ChannelKey identifies a per-channel game slot
type ChannelKey struct {
	GuildID   int64
	ChannelID int64
}

// Ledger is the part of the economy the engines move money through
type Ledger interface {
	// Escrow takes the wager from the hand balance or fails with service.ErrInsufficientFunds
	Escrow(ctx context.Context, guildID, userID int64, amount int64, txType models.TransactionType) (*models.Account, error)

	// Payout credits winnings or a refund to the hand balance
	Payout(ctx context.Context, guildID, userID int64, amount int64, txType models.TransactionType) (*models.Account, error)
}

// Random is the source of chance for the engines
type Random interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// DefaultRandom uses the top-level math/rand/v2 generator
type DefaultRandom struct{}

func (DefaultRandom) IntN(n int) int                     { return rand.IntN(n) }
func (DefaultRandom) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Expiry describes a game removed by its inactivity timer
type Expiry struct {
	Game      string
	GameID    string
	GuildID   int64
	ChannelID int64 // per-channel games only
	UserID    int64 // the player, or the host of a per-channel game
	Wager     int64
	Refunded  bool
}

// ExpiryHandler is notified after an expired game has been settled
type ExpiryHandler func(Expiry)

// Settlement pays out a finished game and reports it
type Settlement struct {
	Ledger  Ledger
	Emitter events.Emitter
}

// Settle credits payout when positive and emits a GameSettledEvent either way.
// A refund of the exact wager is booked as a refund, anything else as a payout.
func (s Settlement) Settle(ctx context.Context, game string, guildID, userID, wager, payout int64, outcome string) (*models.Account, error) {
	var account *models.Account
	if payout > 0 {
		txType := models.TransactionTypeWagerPayout
		if outcome == OutcomePush || outcome == OutcomeRefunded {
			txType = models.TransactionTypeWagerRefund
		}

		var err error
		account, err = s.Ledger.Payout(ctx, guildID, userID, payout, txType)
		if err != nil {
			log.WithFields(log.Fields{
				"game":     game,
				"guild_id": guildID,
				"user_id":  userID,
				"payout":   payout,
				"error":    err,
			}).Error("Failed to settle game")
			return nil, fmt.Errorf("failed to pay out %s: %w", game, err)
		}
	}

	if s.Emitter != nil {
		s.Emitter.Emit(ctx, events.GameSettledEvent{
			Game:    game,
			GuildID: guildID,
			UserID:  userID,
			Wager:   wager,
			Payout:  payout,
			Outcome: outcome,
		})
	}

	return account, nil
}
