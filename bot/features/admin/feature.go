// Package admin serves the administrator-only balance commands.
package admin

import (
	"context"
	"fmt"

	"overbank/bot/common"
	"overbank/models"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type Feature struct {
	economy service.EconomyService
}

func New(economy service.EconomyService) *Feature {
	return &Feature{economy: economy}
}

func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	// Command permissions can be overridden per guild, so check again here
	if !common.IsUserAdmin(i) {
		return common.NewUserError("You need administrator permissions to use this command.", "admin command without permission")
	}

	data := i.ApplicationCommandData()
	opts := common.NewOptions(data.Options)
	target, err := common.ResolveUser(data, opts.User("user"))
	if err != nil {
		return err
	}
	targetID, err := common.ParseUserID(target.ID)
	if err != nil {
		return common.NewSystemError(err, "failed to parse target id")
	}
	if _, err := f.economy.GetOrCreateAccount(ctx, inv.GuildID, targetID, target.Username); err != nil {
		return common.NewSystemError(err, "failed to provision target")
	}

	amount := opts.Int("amount")
	var message string
	if data.Name == "addcoins" {
		account, err := f.economy.AdminCredit(ctx, inv.GuildID, targetID, amount)
		if err != nil {
			return err
		}
		message = fmt.Sprintf("Added %s to %s. Hand: %s",
			common.FormatCoins(amount), common.GetUserMention(targetID), common.FormatCoins(account.Balance))
	} else {
		result, err := f.economy.AdminDebit(ctx, inv.GuildID, targetID, amount)
		if err != nil {
			return err
		}
		message = DebitMessage(targetID, result)
	}

	log.WithFields(log.Fields{
		"guild_id":  inv.GuildID,
		"admin_id":  inv.UserID,
		"target_id": targetID,
		"command":   data.Name,
		"amount":    amount,
	}).Info("Administrative balance change")

	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to %s command: %v", data.Name, err)
	}
	return nil
}

// DebitMessage describes a clamped debit, including what could not be taken
func DebitMessage(targetID int64, r *models.AdminDebitResult) string {
	message := fmt.Sprintf("Removed %s from %s (%s from hand, %s from bank).",
		common.FormatCoins(r.Debited), common.GetUserMention(targetID),
		common.FormatBalance(r.FromHand), common.FormatBalance(r.FromBank))
	if r.Shortfall > 0 {
		message += fmt.Sprintf(" They were %s short.", common.FormatCoins(r.Shortfall))
	}
	return message
}
