package balance

import (
	"context"
	"fmt"

	"overbank/bot/common"
	"overbank/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBalance(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	account, err := f.account(ctx, inv)
	if err != nil {
		return err
	}

	loan, err := f.loans.GetLoan(ctx, inv.GuildID, inv.UserID)
	if err != nil {
		return common.NewSystemError(err, "failed to load loan")
	}

	displayName := common.GetDisplayName(s, i.GuildID, i.Member.User.ID)
	if err := common.RespondWithEmbed(s, i, BalanceEmbed(displayName, account, loan), nil, false); err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
	return nil
}

func (f *Feature) handleDeposit(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	account, err := f.account(ctx, inv)
	if err != nil {
		return err
	}

	amount, err := common.ParseAmount(common.NewOptions(i.ApplicationCommandData().Options).String("amount"), account.Balance)
	if err != nil {
		return err
	}

	updated, err := f.economy.Deposit(ctx, inv.GuildID, inv.UserID, amount)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("🏦 Deposited %s. Hand: %s · Bank: %s",
		common.FormatCoins(amount), common.FormatCoins(updated.Balance), common.FormatCoins(updated.BankBalance))
	if err := common.RespondWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to deposit command: %v", err)
	}
	return nil
}

func (f *Feature) handleWithdraw(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	account, err := f.account(ctx, inv)
	if err != nil {
		return err
	}

	amount, err := common.ParseAmount(common.NewOptions(i.ApplicationCommandData().Options).String("amount"), account.BankBalance)
	if err != nil {
		return err
	}

	updated, err := f.economy.Withdraw(ctx, inv.GuildID, inv.UserID, amount)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("💵 Withdrew %s. Hand: %s · Bank: %s",
		common.FormatCoins(amount), common.FormatCoins(updated.Balance), common.FormatCoins(updated.BankBalance))
	if err := common.RespondWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to withdraw command: %v", err)
	}
	return nil
}

func (f *Feature) handleLeaderboard(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	accounts, err := f.economy.Leaderboard(ctx, inv.GuildID, f.leaderboardSize)
	if err != nil {
		return common.NewSystemError(err, "failed to load leaderboard")
	}

	if err := common.RespondWithEmbed(s, i, LeaderboardEmbed(accounts), nil, false); err != nil {
		log.Errorf("Error responding to leaderboard command: %v", err)
	}
	return nil
}

func (f *Feature) account(ctx context.Context, inv *common.Invocation) (*models.Account, error) {
	account, err := f.economy.GetAccount(ctx, inv.GuildID, inv.UserID)
	if err != nil {
		return nil, common.NewSystemError(err, "failed to load account")
	}
	if account == nil {
		return nil, common.NewSystemError(fmt.Errorf("account %d missing after provisioning", inv.UserID), "failed to load account")
	}
	return account, nil
}
