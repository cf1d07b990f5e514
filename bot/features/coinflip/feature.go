// Package coinflip serves /coinflip start and join.
package coinflip

import (
	"context"
	"fmt"
	"time"

	"overbank/bot/common"
	"overbank/models"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type Feature struct {
	economy  service.EconomyService
	coinflip service.CoinflipService
	ttl      time.Duration
}

func New(economy service.EconomyService, coinflip service.CoinflipService, ttl time.Duration) *Feature {
	return &Feature{
		economy:  economy,
		coinflip: coinflip,
		ttl:      ttl,
	}
}

func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	sub, opts := common.Subcommand(i)
	if sub == "join" {
		return f.handleJoin(ctx, s, i, inv, opts)
	}
	return f.handleStart(ctx, s, i, inv, opts)
}

func (f *Feature) handleStart(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation, opts common.Options) error {
	account, err := f.economy.GetAccount(ctx, inv.GuildID, inv.UserID)
	if err != nil {
		return common.NewSystemError(err, "failed to load account")
	}
	var hand int64
	if account != nil {
		hand = account.Balance
	}

	amount, err := common.ParseAmount(opts.String("amount"), hand)
	if err != nil {
		return err
	}

	round, err := f.coinflip.Start(ctx, inv.GuildID, inv.ChannelID, inv.UserID, amount)
	if err != nil {
		return err
	}

	if err := common.RespondWithEmbed(s, i, RoundEmbed(round, round.CreatedAt.Add(f.ttl)), nil, false); err != nil {
		log.Errorf("Error responding to coinflip start command: %v", err)
	}
	return nil
}

func (f *Feature) handleJoin(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation, opts common.Options) error {
	amount, err := f.joinAmount(ctx, inv, opts.String("amount"))
	if err != nil {
		return err
	}

	result, err := f.coinflip.Join(ctx, inv.GuildID, inv.ChannelID, inv.UserID, amount)
	if err != nil {
		return err
	}

	if err := common.RespondWithEmbed(s, i, JoinEmbed(result), nil, false); err != nil {
		log.Errorf("Error responding to coinflip join command: %v", err)
	}
	return nil
}

// joinAmount resolves the stake of a join. Without an amount the joiner matches
// whatever the round asks for; "all" and "half" resolve against the joiner's hand.
func (f *Feature) joinAmount(ctx context.Context, inv *common.Invocation, raw string) (int64, error) {
	if raw == "" {
		round, err := f.coinflip.Active(ctx, inv.GuildID, inv.ChannelID)
		if err != nil {
			return 0, common.NewSystemError(err, "failed to load coinflip round")
		}
		if round == nil {
			return 0, service.ErrNoActiveRound
		}
		return round.Amount, nil
	}

	var hand int64
	if common.NeedsBalance(raw) {
		account, err := f.economy.GetAccount(ctx, inv.GuildID, inv.UserID)
		if err != nil {
			return 0, common.NewSystemError(err, "failed to load account")
		}
		if account != nil {
			hand = account.Balance
		}
	}
	return common.ParseAmount(raw, hand)
}

// RoundEmbed announces an open round
func RoundEmbed(round *models.CoinflipRound, expiresAt time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🪙 Coinflip",
		Description: fmt.Sprintf("%s put %s on the table.\nUse `/coinflip join` to match the stake. The round closes %s.",
			common.GetUserMention(round.CreatorID), common.FormatCoins(round.Amount), common.FormatDiscordTimestamp(expiresAt, "R")),
		Color: common.ColorPrimary,
	}
}

// JoinEmbed reports a join, and the flip once the round filled
func JoinEmbed(result *models.CoinflipJoinResult) *discordgo.MessageEmbed {
	if !result.Completed {
		return &discordgo.MessageEmbed{
			Title: "🪙 Coinflip",
			Description: fmt.Sprintf("%d players are in for %s each.",
				len(result.Round.Participants), common.FormatCoins(result.Round.Amount)),
			Color: common.ColorPrimary,
		}
	}

	mentions := make([]string, 0, len(result.Round.Participants))
	for _, id := range result.Round.Participants {
		mentions = append(mentions, common.GetUserMention(id))
	}
	return &discordgo.MessageEmbed{
		Title: "🪙 Coinflip",
		Description: fmt.Sprintf("The coin spins between %s...\n\n🎉 %s wins the pot of %s!",
			joinMentions(mentions), common.GetUserMention(result.WinnerID), common.FormatCoins(result.Pot)),
		Color: common.ColorSuccess,
	}
}

func joinMentions(mentions []string) string {
	switch len(mentions) {
	case 0:
		return ""
	case 1:
		return mentions[0]
	}
	out := ""
	for idx, m := range mentions[:len(mentions)-1] {
		if idx > 0 {
			out += ", "
		}
		out += m
	}
	return out + " and " + mentions[len(mentions)-1]
}
