package common

import "strings"

// CustomID joins a button action and the game it belongs to
func CustomID(action, gameID string) string {
	return action + ":" + gameID
}

// ParseCustomID splits a custom id built by CustomID
func ParseCustomID(customID string) (action, gameID string, ok bool) {
	action, gameID, ok = strings.Cut(customID, ":")
	if !ok || action == "" || gameID == "" {
		return "", "", false
	}
	return action, gameID, true
}
