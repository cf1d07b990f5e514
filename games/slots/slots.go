// Package slots runs a three-reel slot machine.
package slots

import (
	"context"

	"overbank/events"
	"overbank/games"
	"overbank/models"

	log "github.com/sirupsen/logrus"
)

// Symbol on a reel
type Symbol struct {
	Emoji  string
	Weight int
}

var (
	Cherry = Symbol{Emoji: "🍒", Weight: 30}
	Lemon  = Symbol{Emoji: "🍋", Weight: 25}
	Orange = Symbol{Emoji: "🍊", Weight: 25}
	Grape  = Symbol{Emoji: "🍇", Weight: 20}
	Star   = Symbol{Emoji: "⭐", Weight: 8}
	Seven  = Symbol{Emoji: "7️⃣", Weight: 2}
)

// Reel lists every symbol in weight order
var Reel = []Symbol{Cherry, Lemon, Orange, Grape, Star, Seven}

var reelWeight = func() int {
	total := 0
	for _, s := range Reel {
		total += s.Weight
	}
	return total
}()

// Multiplier returns the payout multiple of a line, stake included
func Multiplier(line [3]Symbol) int64 {
	a, b, c := line[0], line[1], line[2]
	switch {
	case a == b && b == c && a == Seven:
		return 10
	case a == b && b == c && a == Star:
		return 7
	case a == b && b == c:
		return 5
	case a == b || b == c || a == c:
		return 2
	default:
		return 0
	}
}

// Result of one spin
type Result struct {
	Line       [3]Symbol
	Multiplier int64
	Wager      int64
	Payout     int64
	Account    *models.Account
}

// Engine runs the machine
type Engine struct {
	settlement games.Settlement
	rng        games.Random
}

// NewEngine creates a slot machine
func NewEngine(ledger games.Ledger, emitter events.Emitter) *Engine {
	return &Engine{
		settlement: games.Settlement{Ledger: ledger, Emitter: emitter},
		rng:        games.DefaultRandom{},
	}
}

// Spin escrows the wager, spins all three reels and settles
func (e *Engine) Spin(ctx context.Context, guildID, userID, wager int64) (*Result, error) {
	if wager <= 0 {
		return nil, games.ErrInvalidWager
	}

	escrowed, err := e.settlement.Ledger.Escrow(ctx, guildID, userID, wager, models.TransactionTypeWagerEscrow)
	if err != nil {
		return nil, err
	}

	result := &Result{Wager: wager, Account: escrowed}
	for i := range result.Line {
		result.Line[i] = e.pick()
	}
	result.Multiplier = Multiplier(result.Line)
	result.Payout = wager * result.Multiplier

	outcome := games.OutcomeLoss
	if result.Payout > 0 {
		outcome = games.OutcomeWin
	}
	account, err := e.settlement.Settle(ctx, games.Slots, guildID, userID, wager, result.Payout, outcome)
	if err != nil {
		return nil, err
	}
	if account != nil {
		result.Account = account
	}

	log.WithFields(log.Fields{
		"guild_id":   guildID,
		"user_id":    userID,
		"multiplier": result.Multiplier,
		"payout":     result.Payout,
	}).Debug("Slots spun")

	return result, nil
}

func (e *Engine) pick() Symbol {
	roll := e.rng.IntN(reelWeight)
	for _, s := range Reel {
		if roll < s.Weight {
			return s
		}
		roll -= s.Weight
	}
	return Reel[len(Reel)-1]
}
