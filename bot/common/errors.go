package common

import (
	"errors"
	"fmt"
	"strings"

	"overbank/games"
	"overbank/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const genericErrorMessage = "Something went wrong. Please try again later."

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Ephemeral   bool   // Whether the error message should be ephemeral
	Err         error  // Underlying error
	User        bool   // Caused by the user rather than the system
}

func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues (validation, insufficient funds, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
		User:        true,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: genericErrorMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         err,
	}
}

// Classify turns any error returned by a service or engine into a BotError.
// Domain failures keep their message; everything else becomes a system error.
func Classify(err error) *BotError {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr
	}

	var dailyErr *service.DailyCooldownError
	if errors.As(err, &dailyErr) {
		return &BotError{
			UserMessage: fmt.Sprintf("You already claimed your daily reward. Come back in %dh %dm.", dailyErr.Hours(), dailyErr.Minutes()),
			LogMessage:  "daily reward on cooldown",
			Ephemeral:   true,
			Err:         err,
			User:        true,
		}
	}

	var cooldownErr *service.CooldownError
	if errors.As(err, &cooldownErr) {
		return &BotError{
			UserMessage: fmt.Sprintf("Slow down! You can use that again in %s.", FormatDuration(cooldownErr.Remaining)),
			LogMessage:  "action on cooldown",
			Ephemeral:   true,
			Err:         err,
			User:        true,
		}
	}

	if service.IsUserError(err) || games.IsUserError(err) || errors.Is(err, ErrInvalidAmountFormat) {
		return &BotError{
			UserMessage: userMessage(err),
			LogMessage:  "request rejected",
			Ephemeral:   true,
			Err:         err,
			User:        true,
		}
	}

	return NewSystemError(err, "unexpected error")
}

// userMessage picks the innermost domain error so wrapping context stays in the logs
func userMessage(err error) string {
	msg := err.Error()
	for inner := errors.Unwrap(err); inner != nil; inner = errors.Unwrap(inner) {
		msg = inner.Error()
	}
	if msg == "" {
		return genericErrorMessage
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// HandleError logs err and tells the user what went wrong
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, name string, err error) *BotError {
	botErr := Classify(err)

	entry := log.WithFields(log.Fields{
		"guild_id":     i.GuildID,
		"user_id":      InteractionUserID(i),
		"interaction":  name,
		"error":        botErr.Error(),
		"user_message": botErr.UserMessage,
	})
	if botErr.User {
		entry.Info(botErr.LogMessage)
	} else {
		entry.Error(botErr.LogMessage)
	}

	RespondWithError(s, i, botErr.UserMessage)
	return botErr
}
