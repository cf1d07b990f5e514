// Package inventory serves the inventory and sell commands.
package inventory

import (
	"context"
	"fmt"

	"overbank/bot/common"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type Feature struct {
	inventory service.InventoryService
}

func New(inventory service.InventoryService) *Feature {
	return &Feature{inventory: inventory}
}

func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	if i.ApplicationCommandData().Name == "sell" {
		return f.handleSell(ctx, s, i, inv)
	}
	return f.handleInventory(ctx, s, i, inv)
}

func (f *Feature) handleInventory(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	items, err := f.inventory.Inventory(ctx, inv.GuildID, inv.UserID)
	if err != nil {
		return common.NewSystemError(err, "failed to load inventory")
	}

	displayName := common.GetDisplayName(s, i.GuildID, i.Member.User.ID)
	if err := common.RespondWithEmbed(s, i, InventoryEmbed(displayName, items), nil, true); err != nil {
		log.Errorf("Error responding to inventory command: %v", err)
	}
	return nil
}

func (f *Feature) handleSell(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	result, err := f.inventory.SellAll(ctx, inv.GuildID, inv.UserID)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("🛒 Sold %d item stacks for %s. Hand: %s",
		result.ItemsSold, common.FormatCoins(result.TotalValue), common.FormatCoins(result.Account.Balance))
	if err := common.RespondWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to sell command: %v", err)
	}
	return nil
}
