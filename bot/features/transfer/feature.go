package transfer

import (
	"context"

	"overbank/bot/common"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	economy service.EconomyService
}

func New(economy service.EconomyService) *Feature {
	return &Feature{
		economy: economy,
	}
}

func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	return f.handlePay(ctx, s, i, inv)
}
