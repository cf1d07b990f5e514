package inventory

import (
	"fmt"
	"strings"

	"overbank/bot/common"
	"overbank/models"

	"github.com/bwmarrin/discordgo"
)

// InventoryEmbed lists every stack and what selling all of them pays
func InventoryEmbed(displayName string, items []*models.InventoryItem) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎒 %s's inventory", displayName),
		Color: common.ColorInfo,
	}

	if len(items) == 0 {
		embed.Description = "Empty. Try `/search` to find something."
		return embed
	}

	var sb strings.Builder
	var total int64
	for _, item := range items {
		fmt.Fprintf(&sb, "**%s** x%d (%s each)\n", item.ItemName, item.Quantity, common.FormatCoins(item.UnitValue))
		total += item.Value()
	}
	embed.Description = strings.TrimSuffix(sb.String(), "\n")
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Sell everything for %s coins with /sell", common.FormatBalance(total)),
	}
	return embed
}
