// Package higherlower serves /higherlower and its guess and cash-out buttons.
package higherlower

import (
	"context"

	"overbank/bot/common"
	"overbank/games"
	"overbank/games/higherlower"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Button actions
const (
	ActionHigher  = "hl_higher"
	ActionLower   = "hl_lower"
	ActionCashOut = "hl_cashout"
)

// Engine is the part of the higher/lower engine the feature drives
type Engine interface {
	Start(ctx context.Context, guildID, userID, wager int64) (*higherlower.Game, error)
	Guess(ctx context.Context, guildID, userID int64, gameID string, dir higherlower.Direction) (*higherlower.Game, error)
	CashOut(ctx context.Context, guildID, userID int64, gameID string) (*higherlower.Game, error)
	OnExpire(h games.ExpiryHandler)
}

type Feature struct {
	session  *discordgo.Session
	economy  service.EconomyService
	engine   Engine
	messages *common.MessageTracker
}

func New(session *discordgo.Session, economy service.EconomyService, engine Engine) *Feature {
	f := &Feature{
		session:  session,
		economy:  economy,
		engine:   engine,
		messages: common.NewMessageTracker(),
	}
	engine.OnExpire(f.OnExpire)
	return f
}

func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	account, err := f.economy.GetAccount(ctx, inv.GuildID, inv.UserID)
	if err != nil {
		return common.NewSystemError(err, "failed to load account")
	}
	var hand int64
	if account != nil {
		hand = account.Balance
	}

	wager, err := common.ParseAmount(common.NewOptions(i.ApplicationCommandData().Options).String("amount"), hand)
	if err != nil {
		return err
	}

	game, err := f.engine.Start(ctx, inv.GuildID, inv.UserID, wager)
	if err != nil {
		return err
	}

	if err := common.RespondWithEmbed(s, i, GameEmbed(game), Components(game), false); err != nil {
		log.Errorf("Error responding to higherlower command: %v", err)
		return nil
	}
	f.messages.TrackResponse(s, i, game.ID)
	return nil
}

// HandleComponent serves the guess and cash-out buttons
func (f *Feature) HandleComponent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation, action, gameID string) error {
	var (
		game *higherlower.Game
		err  error
	)
	switch action {
	case ActionHigher:
		game, err = f.engine.Guess(ctx, inv.GuildID, inv.UserID, gameID, higherlower.Higher)
	case ActionLower:
		game, err = f.engine.Guess(ctx, inv.GuildID, inv.UserID, gameID, higherlower.Lower)
	case ActionCashOut:
		game, err = f.engine.CashOut(ctx, inv.GuildID, inv.UserID, gameID)
	default:
		return games.ErrInvalidChoice
	}
	if err != nil {
		return err
	}

	if game.Status != higherlower.StatusActive {
		f.messages.Forget(game.ID)
	}
	if err := common.UpdateComponentMessage(s, i, GameEmbed(game), Components(game)); err != nil {
		log.Errorf("Error updating higherlower message: %v", err)
	}
	return nil
}

// OnExpire rewrites the message of a game that timed out
func (f *Feature) OnExpire(exp games.Expiry) {
	ref, ok := f.messages.Take(exp.GameID)
	if !ok {
		return
	}
	go common.EditTrackedMessage(f.session, ref, ExpiredEmbed(exp))
}
