// Package roulette spins a single-zero wheel for color bets.
package roulette

import (
	"context"
	"strings"
	"time"

	"overbank/config"
	"overbank/events"
	"overbank/games"
	"overbank/models"
	"overbank/service"

	log "github.com/sirupsen/logrus"
)

const SpinCooldown = 10 * time.Second

// Color of a pocket
type Color string

const (
	Red   Color = "red"
	Black Color = "black"
	Green Color = "green"
)

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// ColorOf returns the pocket color of n in 0..36
func ColorOf(n int) Color {
	switch {
	case n == 0:
		return Green
	case redNumbers[n]:
		return Red
	default:
		return Black
	}
}

// Multiplier is the payout for a winning bet on c, stake included
func Multiplier(c Color) int64 {
	if c == Green {
		return 14
	}
	return 2
}

// ParseColor accepts red, black or green in any case
func ParseColor(s string) (Color, error) {
	switch c := Color(strings.ToLower(strings.TrimSpace(s))); c {
	case Red, Black, Green:
		return c, nil
	}
	return "", games.ErrInvalidChoice
}

// Result of one spin
type Result struct {
	Bet     Color
	Number  int
	Color   Color
	Won     bool
	Wager   int64
	Payout  int64
	Account *models.Account
}

// Engine spins the wheel
type Engine struct {
	settlement games.Settlement
	cooldowns  service.CooldownService
	rng        games.Random
	maxWager   int64
}

// NewEngine creates a roulette engine
func NewEngine(ledger games.Ledger, cooldowns service.CooldownService, emitter events.Emitter, cfg *config.Config) *Engine {
	return &Engine{
		settlement: games.Settlement{Ledger: ledger, Emitter: emitter},
		cooldowns:  cooldowns,
		rng:        games.DefaultRandom{},
		maxWager:   cfg.MaxGameWager,
	}
}

// Spin escrows the wager, spins and settles
func (e *Engine) Spin(ctx context.Context, guildID, userID, wager int64, bet Color) (*Result, error) {
	if bet != Red && bet != Black && bet != Green {
		return nil, games.ErrInvalidChoice
	}
	if wager <= 0 {
		return nil, games.ErrInvalidWager
	}
	if wager > e.maxWager {
		return nil, games.ErrWagerTooLarge
	}

	cooldownKey := models.ActionCooldown(games.Roulette, guildID, userID)
	status, err := e.cooldowns.Check(ctx, cooldownKey)
	if err != nil {
		return nil, err
	}
	if status.OnCooldown {
		return nil, &service.CooldownError{Action: games.Roulette, Remaining: status.Remaining}
	}

	escrowed, err := e.settlement.Ledger.Escrow(ctx, guildID, userID, wager, models.TransactionTypeWagerEscrow)
	if err != nil {
		return nil, err
	}
	if err := e.cooldowns.Set(ctx, cooldownKey, SpinCooldown); err != nil {
		log.WithError(err).Warn("Failed to set roulette cooldown")
	}

	number := e.rng.IntN(37)
	result := &Result{
		Bet:     bet,
		Number:  number,
		Color:   ColorOf(number),
		Wager:   wager,
		Account: escrowed,
	}

	outcome := games.OutcomeLoss
	if result.Color == bet {
		result.Won = true
		result.Payout = wager * Multiplier(bet)
		outcome = games.OutcomeWin
	}

	account, err := e.settlement.Settle(ctx, games.Roulette, guildID, userID, wager, result.Payout, outcome)
	if err != nil {
		return nil, err
	}
	if account != nil {
		result.Account = account
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"user_id":  userID,
		"bet":      bet,
		"number":   number,
		"payout":   result.Payout,
	}).Debug("Roulette spun")

	return result, nil
}
