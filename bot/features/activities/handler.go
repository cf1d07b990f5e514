package activities

import (
	"context"
	"fmt"

	"overbank/bot/common"
	"overbank/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleDaily(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	result, err := f.economy.ClaimDailyReward(ctx, inv.GuildID, inv.UserID)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("🎁 You claimed your daily %s! Hand: %s",
		common.FormatCoins(result.Amount), common.FormatCoins(result.Account.Balance))
	if err := common.RespondWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to daily command: %v", err)
	}
	return nil
}

func (f *Feature) handleWork(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	result, err := f.activities.Work(ctx, inv.GuildID, inv.UserID)
	if err != nil {
		return err
	}

	if err := common.RespondWithMessage(s, i, WorkMessage(result)); err != nil {
		log.Errorf("Error responding to work command: %v", err)
	}
	return nil
}

func (f *Feature) handleSearch(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	result, err := f.activities.Search(ctx, inv.GuildID, inv.UserID)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("🔍 You found %s **%s** worth %s! It went into your inventory.",
		result.Emoji, result.ItemName, common.FormatCoins(result.UnitValue))
	if err := common.RespondWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to search command: %v", err)
	}
	return nil
}

func (f *Feature) handleRob(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	data := i.ApplicationCommandData()
	target, err := common.ResolveUser(data, common.NewOptions(data.Options).User("user"))
	if err != nil {
		return err
	}
	if target.Bot {
		return common.NewUserError("Bots keep their coins in the cloud.", "rob a bot")
	}

	victimID, err := common.ParseUserID(target.ID)
	if err != nil {
		return common.NewSystemError(err, "failed to parse victim id")
	}
	if victimID != inv.UserID {
		if _, err := f.economy.GetOrCreateAccount(ctx, inv.GuildID, victimID, target.Username); err != nil {
			return common.NewSystemError(err, "failed to provision victim")
		}
	}

	result, err := f.activities.Rob(ctx, inv.GuildID, inv.UserID, victimID)
	if err != nil {
		return err
	}

	if err := common.RespondWithMessage(s, i, RobMessage(result, victimID)); err != nil {
		log.Errorf("Error responding to rob command: %v", err)
	}
	return nil
}

// WorkMessage describes a shift; a negative amount is a bad day
func WorkMessage(result *models.WorkResult) string {
	if result.Amount >= 0 {
		return fmt.Sprintf("💼 You worked a shift and earned %s. Hand: %s",
			common.FormatCoins(result.Amount), common.FormatCoins(result.Account.Balance))
	}
	return fmt.Sprintf("😓 Rough day. You spilled coffee on the boss and lost %s. Hand: %s",
		common.FormatCoins(-result.Amount), common.FormatCoins(result.Account.Balance))
}

// RobMessage describes a robbery attempt on victimID
func RobMessage(result *models.RobResult, victimID int64) string {
	if result.Success {
		return fmt.Sprintf("🦹 You robbed %s and got away with %s!",
			common.GetUserMention(victimID), common.FormatCoins(result.Stolen))
	}
	if result.Fine == 0 {
		return fmt.Sprintf("🚓 You got caught trying to rob %s, but you had nothing to pay the fine with.",
			common.GetUserMention(victimID))
	}
	return fmt.Sprintf("🚓 You got caught trying to rob %s and paid a %s fine.",
		common.GetUserMention(victimID), common.FormatCoins(result.Fine))
}
