package common

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandInteraction(data discordgo.ApplicationCommandInteractionData) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: data,
		},
	}
}

func TestSubcommand(t *testing.T) {
	i := commandInteraction(discordgo.ApplicationCommandInteractionData{
		Name: "loan",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{
				Name: "pay",
				Type: discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "amount", Type: discordgo.ApplicationCommandOptionString, Value: "half"},
				},
			},
		},
	})

	name, opts := Subcommand(i)
	assert.Equal(t, "pay", name)
	assert.Equal(t, "half", opts.String("amount"))
	assert.Equal(t, "", opts.String("missing"))
}

func TestOptions(t *testing.T) {
	opts := NewOptions([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "amount", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(2500)},
		{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "42"},
	})

	assert.Equal(t, int64(2500), opts.Int("amount"))
	assert.Equal(t, int64(0), opts.Int("missing"))
	assert.Equal(t, "42", opts.User("user"))
}

func TestResolveUser(t *testing.T) {
	data := discordgo.ApplicationCommandInteractionData{
		Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
			Users: map[string]*discordgo.User{"42": {ID: "42", Username: "bob"}},
		},
	}

	user, err := ResolveUser(data, "42")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)

	_, err = ResolveUser(data, "43")
	assert.True(t, Classify(err).User)

	_, err = ResolveUser(data, "")
	assert.True(t, Classify(err).User)
}
