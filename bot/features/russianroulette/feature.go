// Package russianroulette serves /russianroulette create and join.
package russianroulette

import (
	"context"

	"overbank/bot/common"
	"overbank/games"
	"overbank/games/russianroulette"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Engine is the part of the russian roulette engine the feature drives
type Engine interface {
	Open(guildID, channelID int64) (*russianroulette.Game, bool)
	Create(ctx context.Context, guildID, channelID, hostID, wager int64) (*russianroulette.Game, error)
	Join(ctx context.Context, guildID, channelID, joinerID, wager int64) (*russianroulette.Outcome, error)
	OnExpire(h games.ExpiryHandler)
}

type Feature struct {
	session *discordgo.Session
	economy service.EconomyService
	engine  Engine
}

func New(session *discordgo.Session, economy service.EconomyService, engine Engine) *Feature {
	f := &Feature{
		session: session,
		economy: economy,
		engine:  engine,
	}
	engine.OnExpire(f.OnExpire)
	return f
}

func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	sub, opts := common.Subcommand(i)
	if sub == "join" {
		return f.handleJoin(ctx, s, i, inv, opts)
	}
	return f.handleCreate(ctx, s, i, inv, opts)
}

func (f *Feature) handleCreate(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation, opts common.Options) error {
	account, err := f.economy.GetAccount(ctx, inv.GuildID, inv.UserID)
	if err != nil {
		return common.NewSystemError(err, "failed to load account")
	}
	var hand int64
	if account != nil {
		hand = account.Balance
	}

	wager, err := common.ParseAmount(opts.String("amount"), hand)
	if err != nil {
		return err
	}

	game, err := f.engine.Create(ctx, inv.GuildID, inv.ChannelID, inv.UserID, wager)
	if err != nil {
		return err
	}

	if err := common.RespondWithEmbed(s, i, OpenEmbed(game), nil, false); err != nil {
		log.Errorf("Error responding to russianroulette create command: %v", err)
	}
	return nil
}

func (f *Feature) handleJoin(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation, opts common.Options) error {
	wager, err := f.joinWager(ctx, inv, opts.String("amount"))
	if err != nil {
		return err
	}

	outcome, err := f.engine.Join(ctx, inv.GuildID, inv.ChannelID, inv.UserID, wager)
	if err != nil {
		return err
	}

	if err := common.RespondWithEmbed(s, i, OutcomeEmbed(outcome), nil, false); err != nil {
		log.Errorf("Error responding to russianroulette join command: %v", err)
	}
	return nil
}

// joinWager resolves the stake of a join. Without an amount the joiner matches
// the host; "all" and "half" resolve against the joiner's hand.
func (f *Feature) joinWager(ctx context.Context, inv *common.Invocation, raw string) (int64, error) {
	if raw == "" {
		game, ok := f.engine.Open(inv.GuildID, inv.ChannelID)
		if !ok {
			return 0, games.ErrNoGame
		}
		return game.Wager, nil
	}

	var hand int64
	if common.NeedsBalance(raw) {
		account, err := f.economy.GetAccount(ctx, inv.GuildID, inv.UserID)
		if err != nil {
			return 0, common.NewSystemError(err, "failed to load account")
		}
		if account != nil {
			hand = account.Balance
		}
	}
	return common.ParseAmount(raw, hand)
}

// OnExpire tells the channel that a game nobody joined was called off
func (f *Feature) OnExpire(exp games.Expiry) {
	channelID := common.FormatUserID(exp.ChannelID)
	go func() {
		if _, err := f.session.ChannelMessageSendEmbed(channelID, ExpiredEmbed(exp)); err != nil {
			log.WithFields(log.Fields{
				"game_id":    exp.GameID,
				"channel_id": channelID,
				"error":      err,
			}).Warn("Failed to announce expired russian roulette game")
		}
	}()
}
