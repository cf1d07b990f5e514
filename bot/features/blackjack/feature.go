// Package blackjack serves /blackjack and its hit and stand buttons.
package blackjack

import (
	"context"

	"overbank/bot/common"
	"overbank/games"
	"overbank/games/blackjack"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Button actions
const (
	ActionHit   = "blackjack_hit"
	ActionStand = "blackjack_stand"
)

// Engine is the part of the blackjack engine the feature drives
type Engine interface {
	Start(ctx context.Context, guildID, userID, wager int64) (*blackjack.Game, error)
	Hit(ctx context.Context, guildID, userID int64, gameID string) (*blackjack.Game, error)
	Stand(ctx context.Context, guildID, userID int64, gameID string) (*blackjack.Game, error)
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
		log.Errorf("Error responding to blackjack command: %v", err)
		return nil
	}
	if !game.Finished() {
		f.messages.TrackResponse(s, i, game.ID)
	}
	return nil
}

// HandleComponent serves the hit and stand buttons
func (f *Feature) HandleComponent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation, action, gameID string) error {
	var (
		game *blackjack.Game
		err  error
	)
	switch action {
	case ActionHit:
		game, err = f.engine.Hit(ctx, inv.GuildID, inv.UserID, gameID)
	case ActionStand:
		game, err = f.engine.Stand(ctx, inv.GuildID, inv.UserID, gameID)
	default:
		return games.ErrInvalidChoice
	}
	if err != nil {
		return err
	}

	if game.Finished() {
		f.messages.Forget(game.ID)
	}
	if err := common.UpdateComponentMessage(s, i, GameEmbed(game), Components(game)); err != nil {
		log.Errorf("Error updating blackjack message: %v", err)
	}
	return nil
}

// OnExpire rewrites the message of a game that timed out
func (f *Feature) OnExpire(exp games.Expiry) {
	ref, ok := f.messages.Take(exp.GameID)
	if !ok {
		return
	}
	// The engine calls this while holding the player's game lock
	go common.EditTrackedMessage(f.session, ref, ExpiredEmbed(exp))
}
