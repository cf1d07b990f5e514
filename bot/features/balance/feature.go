package balance

import (
	"context"

	"overbank/bot/common"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
)

// Feature serves the banking commands: balance, deposit, withdraw and leaderboard
type Feature struct {
	economy         service.EconomyService
	loans           service.LoanService
	leaderboardSize int
}

func New(economy service.EconomyService, loans service.LoanService, leaderboardSize int) *Feature {
	return &Feature{
		economy:         economy,
		loans:           loans,
		leaderboardSize: leaderboardSize,
	}
}

func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	switch i.ApplicationCommandData().Name {
	case "deposit":
		return f.handleDeposit(ctx, s, i, inv)
	case "withdraw":
		return f.handleWithdraw(ctx, s, i, inv)
	case "leaderboard":
		return f.handleLeaderboard(ctx, s, i, inv)
	default:
		return f.handleBalance(ctx, s, i, inv)
	}
}
