// Package help serves /help, a listing of the registered slash commands.
package help

import (
	"context"
	"fmt"
	"strings"

	"overbank/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type Feature struct {
	commands []*discordgo.ApplicationCommand
}

func New(commands []*discordgo.ApplicationCommand) *Feature {
	return &Feature{commands: commands}
}

func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, inv *common.Invocation) error {
	embed := HelpEmbed(f.commands, common.IsUserAdmin(i))
	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Error responding to help command: %v", err)
	}
	return nil
}

// HelpEmbed lists every command with its subcommands. Commands gated behind a
// member permission only show up for administrators.
func HelpEmbed(commands []*discordgo.ApplicationCommand, admin bool) *discordgo.MessageEmbed {
	var everyone, restricted strings.Builder
	for _, cmd := range commands {
		sb := &everyone
		if cmd.DefaultMemberPermissions != nil {
			if !admin {
				continue
			}
			sb = &restricted
		}
		writeCommand(sb, cmd)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📖 Commands",
		Description: strings.TrimSuffix(everyone.String(), "\n"),
		Color:       common.ColorPrimary,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Amounts accept a number, \"all\" or \"half\"",
		},
	}
	if restricted.Len() > 0 {
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "🛡️ Administration", Value: strings.TrimSuffix(restricted.String(), "\n")},
		}
	}
	return embed
}

func writeCommand(sb *strings.Builder, cmd *discordgo.ApplicationCommand) {
	var subs []*discordgo.ApplicationCommandOption
	for _, opt := range cmd.Options {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			subs = append(subs, opt)
		}
	}

	if len(subs) == 0 {
		fmt.Fprintf(sb, "`/%s` %s\n", cmd.Name, cmd.Description)
		return
	}
	for _, sub := range subs {
		fmt.Fprintf(sb, "`/%s %s` %s\n", cmd.Name, sub.Name, sub.Description)
	}
}
