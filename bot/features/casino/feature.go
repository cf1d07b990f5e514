// Package casino serves the single-spin games: roulette and slots.
package casino

import (
	"context"
	"fmt"
	"strings"

	"overbank/bot/common"
	"overbank/games/roulette"
	"overbank/games/slots"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// RouletteEngine spins the wheel
type RouletteEngine interface {
	Spin(ctx context.Context, guildID, userID, wager int64, bet roulette.Color) (*roulette.Result, error)
}

// SlotsEngine spins the reels
type SlotsEngine interface {
	Spin(ctx context.Context, guildID, userID, wager int64) (*slots.Result, error)
}

type Feature struct {
	economy  service.EconomyService
	roulette RouletteEngine
	slots    SlotsEngine
}

func New(economy service.EconomyService, roulette RouletteEngine, slots SlotsEngine) *Feature {
	return &Feature{
		economy:  economy,
		roulette: roulette,
		slots:    slots,
	}
}

func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	data := i.ApplicationCommandData()
	opts := common.NewOptions(data.Options)

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

	var embed *discordgo.MessageEmbed
	if data.Name == "roulette" {
		bet, err := roulette.ParseColor(opts.String("color"))
		if err != nil {
			return err
		}
		result, err := f.roulette.Spin(ctx, inv.GuildID, inv.UserID, wager, bet)
		if err != nil {
			return err
		}
		embed = RouletteEmbed(result)
	} else {
		result, err := f.slots.Spin(ctx, inv.GuildID, inv.UserID, wager)
		if err != nil {
			return err
		}
		embed = SlotsEmbed(result)
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Error responding to %s command: %v", data.Name, err)
	}
	return nil
}

var colorEmoji = map[roulette.Color]string{
	roulette.Red:   "🔴",
	roulette.Black: "⚫",
	roulette.Green: "🟢",
}

// RouletteEmbed shows where the ball landed
func RouletteEmbed(r *roulette.Result) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🎡 Roulette",
		Description: fmt.Sprintf("The ball lands on %s **%d %s**.\nYou bet %s on %s.",
			colorEmoji[r.Color], r.Number, r.Color, common.FormatCoins(r.Wager), r.Bet),
	}
	if r.Won {
		embed.Description += fmt.Sprintf("\n\n🎉 You win %s!", common.FormatCoins(r.Payout))
		embed.Color = common.ColorSuccess
	} else {
		embed.Description += "\n\n😔 You lose."
		embed.Color = common.ColorDanger
	}
	if r.Account != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Hand balance: %s coins", common.FormatBalance(r.Account.Balance)),
		}
	}
	return embed
}

// SlotsEmbed shows the reels
func SlotsEmbed(r *slots.Result) *discordgo.MessageEmbed {
	reels := make([]string, len(r.Line))
	for idx, symbol := range r.Line {
		reels[idx] = symbol.Emoji
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎰 Slots",
		Description: fmt.Sprintf("**[ %s ]**", strings.Join(reels, " | ")),
	}
	if r.Multiplier > 0 {
		embed.Description += fmt.Sprintf("\n\n🎉 %dx! You win %s.", r.Multiplier, common.FormatCoins(r.Payout))
		embed.Color = common.ColorSuccess
	} else {
		embed.Description += fmt.Sprintf("\n\n😔 No match. You lose %s.", common.FormatCoins(r.Wager))
		embed.Color = common.ColorDanger
	}
	if r.Account != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Hand balance: %s coins", common.FormatBalance(r.Account.Balance)),
		}
	}
	return embed
}
