package blackjack

import (
	"fmt"

	"overbank/bot/common"
	"overbank/games"
	"overbank/games/blackjack"

	"github.com/bwmarrin/discordgo"
)

// GameEmbed renders a game. The dealer's hole card stays hidden while the player acts.
func GameEmbed(g *blackjack.Game) *discordgo.MessageEmbed {
	dealer := fmt.Sprintf("%s 🂠", g.Dealer[0])
	if g.Finished() {
		dealer = fmt.Sprintf("%s (%d)", g.Dealer, g.Dealer.Total())
	}

	embed := &discordgo.MessageEmbed{
		Title: "🃏 Blackjack",
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Your hand", Value: fmt.Sprintf("%s (%d)", g.Player, g.Player.Total()), Inline: true},
			{Name: "Dealer", Value: dealer, Inline: true},
			{Name: "Wager", Value: common.FormatCoins(g.Wager)},
		},
	}

	switch g.Status {
	case blackjack.StatusActive:
		embed.Description = fmt.Sprintf("%s, hit or stand?", common.GetUserMention(g.UserID))
	case blackjack.StatusBlackjack:
		embed.Description = fmt.Sprintf("🎉 Blackjack! You win %s.", common.FormatCoins(g.Payout))
		embed.Color = common.ColorGold
	case blackjack.StatusPlayerWin:
		embed.Description = fmt.Sprintf("🎉 You win %s.", common.FormatCoins(g.Payout))
		embed.Color = common.ColorSuccess
	case blackjack.StatusPush:
		embed.Description = "🤝 Push. Your wager was returned."
		embed.Color = common.ColorWarning
	case blackjack.StatusPlayerBust:
		embed.Description = "💥 Bust! You lose your wager."
		embed.Color = common.ColorDanger
	case blackjack.StatusDealerWin:
		embed.Description = "😔 The dealer wins."
		embed.Color = common.ColorDanger
	}

	if g.Account != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Hand balance: %s coins", common.FormatBalance(g.Account.Balance)),
		}
	}
	return embed
}

// Components returns the buttons of a running game, none once it is over
func Components(g *blackjack.Game) []discordgo.MessageComponent {
	if g.Finished() {
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Hit",
					Style:    discordgo.PrimaryButton,
					CustomID: common.CustomID(ActionHit, g.ID),
				},
				discordgo.Button{
					Label:    "Stand",
					Style:    discordgo.SecondaryButton,
					CustomID: common.CustomID(ActionStand, g.ID),
				},
			},
		},
	}
}

// ExpiredEmbed replaces the game message after the inactivity timeout
func ExpiredEmbed(exp games.Expiry) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🃏 Blackjack",
		Description: fmt.Sprintf("⏰ %s took too long. The wager of %s is forfeited.",
			common.GetUserMention(exp.UserID), common.FormatCoins(exp.Wager)),
		Color: common.ColorDanger,
	}
}
