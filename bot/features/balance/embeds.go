package balance

import (
	"fmt"
	"strings"

	"overbank/bot/common"
	"overbank/models"

	"github.com/bwmarrin/discordgo"
)

var medals = []string{"🥇", "🥈", "🥉"}

// BalanceEmbed shows both purses and any outstanding loan
func BalanceEmbed(displayName string, account *models.Account, loan *models.Loan) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "👛 Hand", Value: common.FormatCoins(account.Balance), Inline: true},
		{Name: "🏦 Bank", Value: common.FormatCoins(account.BankBalance), Inline: true},
		{Name: "💰 Net worth", Value: common.FormatCoins(account.Wealth()), Inline: true},
	}
	if loan != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "📜 Loan outstanding",
			Value: fmt.Sprintf("%s of %s", common.FormatCoins(loan.RemainingBalance), common.FormatCoins(loan.TotalRepayment)),
		})
	}

	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("%s's balance", displayName),
		Color:  common.ColorPrimary,
		Fields: fields,
	}
}

// LeaderboardEmbed ranks accounts by net worth
func LeaderboardEmbed(accounts []*models.Account) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🏆 Richest members",
		Color: common.ColorGold,
	}

	if len(accounts) == 0 {
		embed.Description = "Nobody has any coins yet."
		return embed
	}

	var sb strings.Builder
	for idx, account := range accounts {
		rank := fmt.Sprintf("**%d.**", idx+1)
		if idx < len(medals) {
			rank = medals[idx]
		}
		fmt.Fprintf(&sb, "%s %s: %s\n", rank, common.GetUserMention(account.UserID), common.FormatCoins(account.Wealth()))
	}
	embed.Description = strings.TrimSuffix(sb.String(), "\n")
	return embed
}
