package common

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Options indexes command options by name
type Options map[string]*discordgo.ApplicationCommandInteractionDataOption

// NewOptions indexes opts
func NewOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) Options {
	m := make(Options, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

// Subcommand returns the invoked subcommand and its options
func Subcommand(i *discordgo.InteractionCreate) (string, Options) {
	data := i.ApplicationCommandData()
	for _, opt := range data.Options {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			return opt.Name, NewOptions(opt.Options)
		}
	}
	return "", NewOptions(data.Options)
}

// String returns a string option or ""
func (o Options) String(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

// Int returns an integer option or 0
func (o Options) Int(name string) int64 {
	if opt, ok := o[name]; ok {
		return opt.IntValue()
	}
	return 0
}

// User returns the id of a user option or ""
func (o Options) User(name string) string {
	opt, ok := o[name]
	if !ok {
		return ""
	}
	// The value of a user option is the snowflake; resolving it needs the session
	if id, ok := opt.Value.(string); ok {
		return id
	}
	return ""
}

// ResolveUser returns the user a user option points at, as resolved by Discord
func ResolveUser(data discordgo.ApplicationCommandInteractionData, id string) (*discordgo.User, error) {
	if id == "" {
		return nil, NewUserError("Pick a member.", "user option missing")
	}
	if data.Resolved != nil {
		if user, ok := data.Resolved.Users[id]; ok && user != nil {
			return user, nil
		}
	}
	return nil, NewUserError("I couldn't find that member.", fmt.Sprintf("user %s not resolved", id))
}
