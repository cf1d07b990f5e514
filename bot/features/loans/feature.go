// Package loans serves /loan take, pay and status.
package loans

import (
	"context"
	"errors"
	"fmt"

	"overbank/bot/common"
	"overbank/models"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type Feature struct {
	economy     service.EconomyService
	loans       service.LoanService
	maxLoan     int64
	interestPct int64
}

func New(economy service.EconomyService, loans service.LoanService, maxLoan, interestPct int64) *Feature {
	return &Feature{
		economy:     economy,
		loans:       loans,
		maxLoan:     maxLoan,
		interestPct: interestPct,
	}
}

func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	sub, opts := common.Subcommand(i)
	switch sub {
	case "take":
		return f.handleTake(ctx, s, i, inv, opts)
	case "pay":
		return f.handlePay(ctx, s, i, inv, opts)
	default:
		return f.handleStatus(ctx, s, i, inv)
	}
}

func (f *Feature) handleTake(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation, opts common.Options) error {
	loan, err := f.loans.TakeLoan(ctx, inv.GuildID, inv.UserID, opts.Int("amount"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidLoanAmount) {
			return common.NewUserError(
				fmt.Sprintf("You can borrow between 1 and %s coins.", common.FormatBalance(f.maxLoan)),
				"loan amount out of range")
		}
		return err
	}

	message := fmt.Sprintf("📜 The bank lent you %s. It went to your bank account; you owe %s (%d%% interest).",
		common.FormatCoins(loan.LoanAmount), common.FormatCoins(loan.TotalRepayment), f.interestPct)
	if err := common.RespondWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to loan take command: %v", err)
	}
	return nil
}

func (f *Feature) handlePay(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation, opts common.Options) error {
	loan, err := f.loans.GetLoan(ctx, inv.GuildID, inv.UserID)
	if err != nil {
		return common.NewSystemError(err, "failed to load loan")
	}
	if loan == nil {
		return service.ErrNoLoan
	}

	// "all" means the whole debt, not the whole bank
	amount, err := common.ParseAmount(opts.String("amount"), loan.RemainingBalance)
	if err != nil {
		return err
	}

	repayment, err := f.loans.RepayLoan(ctx, inv.GuildID, inv.UserID, amount)
	if err != nil {
		return err
	}

	if err := common.RespondWithMessage(s, i, RepaymentMessage(repayment)); err != nil {
		log.Errorf("Error responding to loan pay command: %v", err)
	}
	return nil
}

func (f *Feature) handleStatus(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	loan, err := f.loans.GetLoan(ctx, inv.GuildID, inv.UserID)
	if err != nil {
		return common.NewSystemError(err, "failed to load loan")
	}

	message := fmt.Sprintf("You have no outstanding loan. You can borrow up to %s.", common.FormatCoins(f.maxLoan))
	if loan != nil {
		message = fmt.Sprintf("📜 You borrowed %s %s and still owe %s of %s.",
			common.FormatCoins(loan.LoanAmount), common.FormatDiscordTimestamp(loan.CreatedAt, "R"),
			common.FormatCoins(loan.RemainingBalance), common.FormatCoins(loan.TotalRepayment))
	}
	if err := common.RespondEphemeral(s, i, message); err != nil {
		log.Errorf("Error responding to loan status command: %v", err)
	}
	return nil
}

// RepaymentMessage describes a repayment
func RepaymentMessage(r *models.LoanRepayment) string {
	if r.FullyPaid {
		return fmt.Sprintf("🎉 You paid %s and your loan is settled!", common.FormatCoins(r.Repaid))
	}
	return fmt.Sprintf("💸 You paid %s. Still owed: %s.", common.FormatCoins(r.Repaid), common.FormatCoins(r.Remaining))
}
