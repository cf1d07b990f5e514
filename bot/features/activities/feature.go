// Package activities serves the earning commands: daily, work, search and rob.
package activities

import (
	"context"

	"overbank/bot/common"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	economy    service.EconomyService
	activities service.ActivityService
}

func New(economy service.EconomyService, activities service.ActivityService) *Feature {
	return &Feature{
		economy:    economy,
		activities: activities,
	}
}

func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	switch i.ApplicationCommandData().Name {
	case "daily":
		return f.handleDaily(ctx, s, i, inv)
	case "work":
		return f.handleWork(ctx, s, i, inv)
	case "search":
		return f.handleSearch(ctx, s, i, inv)
	default:
		return f.handleRob(ctx, s, i, inv)
	}
}
