package bot

import (
	"fmt"

	"overbank/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// throttledCommands share the per-command cooldown
var throttledCommands = map[string]bool{
	"balance":         true,
	"deposit":         true,
	"withdraw":        true,
	"leaderboard":     true,
	"inventory":       true,
	"sell":            true,
	"pay":             true,
	"loan":            true,
	"coinflip":        true,
	"blackjack":       true,
	"russianroulette": true,
	"slots":           true,
}

var (
	adminPermissions int64 = discordgo.PermissionAdministrator
	guildOnly              = &[]discordgo.InteractionContextType{discordgo.InteractionContextGuild}
	minAmount              = 1.0
)

func amountOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "amount",
		Description: common.AmountOptionDescription,
		Required:    required,
	}
}

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

func integerAmountOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "amount",
		Description: description,
		Required:    true,
		MinValue:    &minAmount,
	}
}

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// commandDefinitions returns every slash command the bot serves
func commandDefinitions() []*discordgo.ApplicationCommand {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "help",
			Description: "List the available commands",
		},

		// Economy
		{
			Name:        "balance",
			Description: "Show your hand and bank balance",
		},
		{
			Name:        "deposit",
			Description: "Move coins from your hand into the bank",
			Options:     []*discordgo.ApplicationCommandOption{amountOption(true)},
		},
		{
			Name:        "withdraw",
			Description: "Move coins from the bank into your hand",
			Options:     []*discordgo.ApplicationCommandOption{amountOption(true)},
		},
		{
			Name:        "leaderboard",
			Description: "Show the wealthiest members of the server",
		},
		{
			Name:        "pay",
			Description: "Give coins from your hand to another member",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to pay"),
				amountOption(true),
			},
		},

		// Activities
		{
			Name:        "daily",
			Description: "Claim your daily reward",
		},
		{
			Name:        "work",
			Description: "Work a shift for coins",
		},
		{
			Name:        "search",
			Description: "Search around for coins and items",
		},
		{
			Name:        "rob",
			Description: "Try to steal coins from another member's hand",
			Options:     []*discordgo.ApplicationCommandOption{userOption("Member to rob")},
		},
		{
			Name:        "inventory",
			Description: "Show the items you have found",
		},
		{
			Name:        "sell",
			Description: "Sell every item in your inventory",
		},
		{
			Name:        "loan",
			Description: "Borrow coins from the bank",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("take", "Take out a loan", integerAmountOption("Amount to borrow")),
				subcommand("pay", "Repay your loan from the bank", amountOption(true)),
				subcommand("status", "Show your outstanding loan"),
			},
		},

		// Administration
		{
			Name:                     "addcoins",
			Description:              "Add coins to a member's hand",
			DefaultMemberPermissions: &adminPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to credit"),
				integerAmountOption("Amount to add"),
			},
		},
		{
			Name:                     "removebalance",
			Description:              "Remove coins from a member, hand first then bank",
			DefaultMemberPermissions: &adminPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to debit"),
				integerAmountOption("Amount to remove"),
			},
		},

		// Games
		{
			Name:        "coinflip",
			Description: "Flip a coin against other members, winner takes the pot",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("start", "Open a coinflip in this channel", amountOption(true)),
				subcommand("join", "Join the open coinflip in this channel", amountOption(false)),
			},
		},
		{
			Name:        "blackjack",
			Description: "Play a hand of blackjack against the dealer",
			Options:     []*discordgo.ApplicationCommandOption{amountOption(true)},
		},
		{
			Name:        "higherlower",
			Description: "Guess whether the next card is higher or lower",
			Options:     []*discordgo.ApplicationCommandOption{amountOption(true)},
		},
		{
			Name:        "russianroulette",
			Description: "Duel another member, the loser takes the bullet",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("create", "Open a duel in this channel", amountOption(true)),
				subcommand("join", "Accept the open duel in this channel", amountOption(false)),
			},
		},
		{
			Name:        "roulette",
			Description: "Bet on the color of the roulette wheel",
			Options: []*discordgo.ApplicationCommandOption{
				amountOption(true),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "color",
					Description: "Color to bet on",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Red (2x)", Value: "red"},
						{Name: "Black (2x)", Value: "black"},
						{Name: "Green (14x)", Value: "green"},
					},
				},
			},
		},
		{
			Name:        "slots",
			Description: "Spin the slot machine",
			Options:     []*discordgo.ApplicationCommandOption{amountOption(true)},
		},
	}

	for _, cmd := range commands {
		cmd.Contexts = guildOnly
	}
	return commands
}

// registerCommands replaces the registered slash commands with the current definitions
func (b *Bot) registerCommands() error {
	commands := commandDefinitions()

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.config.GuildID, commands)
	if err != nil {
		return fmt.Errorf("failed to overwrite commands: %w", err)
	}

	log.WithFields(log.Fields{
		"count":    len(registered),
		"guild_id": b.config.GuildID,
	}).Info("Slash commands registered")
	return nil
}
