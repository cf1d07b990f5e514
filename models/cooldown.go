package models

import (
	"fmt"
	"time"
)

// CooldownCategory separates per-action lockouts from the generic command throttle
type CooldownCategory string

const (
	CooldownCategoryAction  CooldownCategory = "action"
	CooldownCategoryCommand CooldownCategory = "command"
)

// CooldownKey identifies one cooldown slot
type CooldownKey struct {
	Category CooldownCategory
	Action   string
	GuildID  int64
	UserID   int64
}

// ActionCooldown builds the key for an action-specific lockout such as "work"
func ActionCooldown(action string, guildID, userID int64) CooldownKey {
	return CooldownKey{Category: CooldownCategoryAction, Action: action, GuildID: guildID, UserID: userID}
}

// CommandCooldown builds the key for the per-command throttle
func CommandCooldown(command string, guildID, userID int64) CooldownKey {
	return CooldownKey{Category: CooldownCategoryCommand, Action: command, GuildID: guildID, UserID: userID}
}

func (k CooldownKey) String() string {
	return fmt.Sprintf("%d:%d:%s:%s", k.GuildID, k.UserID, k.Category, k.Action)
}

// CooldownEntry is a stored cooldown
type CooldownEntry struct {
	Key       CooldownKey
	ExpiresAt time.Time
}
