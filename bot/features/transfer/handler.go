package transfer

import (
	"context"
	"fmt"

	"overbank/bot/common"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handlePay(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	data := i.ApplicationCommandData()
	options := common.NewOptions(data.Options)

	recipient, err := common.ResolveUser(data, options.User("user"))
	if err != nil {
		return err
	}
	if recipient.Bot {
		return common.NewUserError("Bots don't carry coins.", "pay to bot")
	}

	recipientID, err := common.ParseUserID(recipient.ID)
	if err != nil {
		return common.NewSystemError(err, "failed to parse recipient id")
	}
	if recipientID == inv.UserID {
		return service.ErrSelfTransfer
	}

	sender, err := f.economy.GetAccount(ctx, inv.GuildID, inv.UserID)
	if err != nil {
		return common.NewSystemError(err, "failed to load sender")
	}
	var hand int64
	if sender != nil {
		hand = sender.Balance
	}

	amount, err := common.ParseAmount(options.String("amount"), hand)
	if err != nil {
		return err
	}

	// The recipient may never have used the bot
	if _, err := f.economy.GetOrCreateAccount(ctx, inv.GuildID, recipientID, recipient.Username); err != nil {
		return common.NewSystemError(err, "failed to provision recipient")
	}

	result, err := f.economy.Transfer(ctx, inv.GuildID, inv.UserID, recipientID, amount)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("✅ Sent %s to %s. You have %s left in hand.",
		common.FormatCoins(result.Amount), common.GetUserMention(recipientID), common.FormatCoins(result.Sender.Balance))
	if err := common.RespondWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to pay command: %v", err)
	}
	return nil
}
