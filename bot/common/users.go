package common

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Invocation identifies who triggered an interaction and where
type Invocation struct {
	GuildID   int64
	ChannelID int64
	UserID    int64
	Username  string
}

// ParseInvocation extracts the numeric ids of an interaction.
// Interactions outside a guild are rejected since every account is guild scoped.
func ParseInvocation(i *discordgo.InteractionCreate) (*Invocation, error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return nil, NewUserError("This command only works inside a server.", "interaction outside a guild")
	}

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		return nil, NewSystemError(err, fmt.Sprintf("parse guild id %q", i.GuildID))
	}
	channelID, err := strconv.ParseInt(i.ChannelID, 10, 64)
	if err != nil {
		return nil, NewSystemError(err, fmt.Sprintf("parse channel id %q", i.ChannelID))
	}
	userID, err := ParseUserID(i.Member.User.ID)
	if err != nil {
		return nil, NewSystemError(err, fmt.Sprintf("parse user id %q", i.Member.User.ID))
	}

	return &Invocation{
		GuildID:   guildID,
		ChannelID: channelID,
		UserID:    userID,
		Username:  i.Member.User.Username,
	}, nil
}

// InteractionUserID returns the id of whoever triggered the interaction
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// GetDisplayName returns the server-specific display name for a user
// Falls back to username if nickname is not set or if there's an error
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			return member.User.Username
		}
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.Username
	}

	return "Unknown"
}

// ParseUserID converts a Discord user ID string to int64
func ParseUserID(userID string) (int64, error) {
	return strconv.ParseInt(userID, 10, 64)
}

// FormatUserID converts an int64 user ID to string
func FormatUserID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// GetUserMention returns a Discord mention string for a user
func GetUserMention(userID int64) string {
	return "<@" + FormatUserID(userID) + ">"
}

// IsUserAdmin checks the administrator permission the interaction was resolved with
func IsUserAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	if i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	log.WithFields(log.Fields{
		"guild_id": i.GuildID,
		"user_id":  InteractionUserID(i),
	}).Debug("Administrator permission missing")
	return false
}
