package russianroulette

import (
	"fmt"
	"strings"

	"overbank/bot/common"
	"overbank/games"
	"overbank/games/russianroulette"

	"github.com/bwmarrin/discordgo"
)

// OpenEmbed announces a game waiting for a challenger
func OpenEmbed(g *russianroulette.Game) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🔫 Russian Roulette",
		Description: fmt.Sprintf("%s loaded one bullet into a %d-chamber revolver and bet %s.\nUse `/russianroulette join` to take the other seat.",
			common.GetUserMention(g.HostID), russianroulette.Chambers, common.FormatCoins(g.Wager)),
		Color: common.ColorWarning,
	}
}

// OutcomeEmbed replays every pull of the trigger
func OutcomeEmbed(o *russianroulette.Outcome) *discordgo.MessageEmbed {
	var sb strings.Builder
	for _, shot := range o.Shots {
		if shot.Fired {
			fmt.Fprintf(&sb, "💥 Chamber %d: %s pulls the trigger... **BANG!**\n", shot.Chamber, common.GetUserMention(shot.ShooterID))
			continue
		}
		fmt.Fprintf(&sb, "😮‍💨 Chamber %d: %s pulls the trigger... *click*\n", shot.Chamber, common.GetUserMention(shot.ShooterID))
	}
	fmt.Fprintf(&sb, "\n🏆 %s survives and takes %s!", common.GetUserMention(o.WinnerID), common.FormatCoins(o.Payout))

	return &discordgo.MessageEmbed{
		Title:       "🔫 Russian Roulette",
		Description: sb.String(),
		Color:       common.ColorDanger,
	}
}

// ExpiredEmbed reports a game that timed out before anyone joined
func ExpiredEmbed(exp games.Expiry) *discordgo.MessageEmbed {
	description := fmt.Sprintf("Nobody joined %s's game.", common.GetUserMention(exp.UserID))
	if exp.Refunded {
		description += fmt.Sprintf(" The %s stake was refunded.", common.FormatCoins(exp.Wager))
	} else {
		description += " The refund failed, ask an admin to check your balance."
	}
	return &discordgo.MessageEmbed{
		Title:       "🔫 Russian Roulette",
		Description: description,
		Color:       common.ColorInfo,
	}
}
