package higherlower

import (
	"fmt"

	"overbank/bot/common"
	"overbank/games"
	"overbank/games/higherlower"

	"github.com/bwmarrin/discordgo"
)

// GameEmbed renders a game
func GameEmbed(g *higherlower.Game) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🔢 Higher or Lower",
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Number", Value: fmt.Sprintf("**%d**", g.Current), Inline: true},
			{Name: "Round", Value: fmt.Sprintf("%d/%d", g.Round, higherlower.MaxRounds), Inline: true},
			{Name: "Wager", Value: common.FormatCoins(g.Wager), Inline: true},
		},
	}

	switch g.Status {
	case higherlower.StatusActive:
		embed.Description = fmt.Sprintf("Will the next number (1-%d) be higher or lower?", higherlower.MaxNumber)
		if g.Previous != 0 {
			embed.Description = fmt.Sprintf("✅ %d → %d. ", g.Previous, g.Current) + embed.Description
		}
		if g.CanCashOut() {
			embed.Description += fmt.Sprintf("\nCash out now for %s.", common.FormatCoins(g.Wager*g.Multiplier()))
		}
	case higherlower.StatusLost:
		embed.Description = fmt.Sprintf("❌ %d → %d. You lose your wager.", g.Previous, g.Current)
		embed.Color = common.ColorDanger
	case higherlower.StatusCashedOut:
		embed.Description = fmt.Sprintf("💰 Cashed out for %s.", common.FormatCoins(g.Payout))
		embed.Color = common.ColorSuccess
	case higherlower.StatusMaxed:
		embed.Description = fmt.Sprintf("🏆 %d → %d. You cleared every round and win %s!", g.Previous, g.Current, common.FormatCoins(g.Payout))
		embed.Color = common.ColorGold
	}

	if g.Account != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Hand balance: %s coins", common.FormatBalance(g.Account.Balance)),
		}
	}
	return embed
}

// Components returns the buttons of a running game; cash-out only after a correct guess
func Components(g *higherlower.Game) []discordgo.MessageComponent {
	if g.Status != higherlower.StatusActive {
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Higher",
					Emoji:    &discordgo.ComponentEmoji{Name: "⬆️"},
					Style:    discordgo.PrimaryButton,
					CustomID: common.CustomID(ActionHigher, g.ID),
				},
				discordgo.Button{
					Label:    "Lower",
					Emoji:    &discordgo.ComponentEmoji{Name: "⬇️"},
					Style:    discordgo.PrimaryButton,
					CustomID: common.CustomID(ActionLower, g.ID),
				},
				discordgo.Button{
					Label:    "Cash out",
					Style:    discordgo.SuccessButton,
					CustomID: common.CustomID(ActionCashOut, g.ID),
					Disabled: !g.CanCashOut(),
				},
			},
		},
	}
}

// ExpiredEmbed replaces the game message after the inactivity timeout
func ExpiredEmbed(exp games.Expiry) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🔢 Higher or Lower",
		Description: fmt.Sprintf("⏰ %s took too long. The wager of %s is forfeited.",
			common.GetUserMention(exp.UserID), common.FormatCoins(exp.Wager)),
		Color: common.ColorDanger,
	}
}
