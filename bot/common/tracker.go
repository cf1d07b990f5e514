package common

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// MessageRef points at a posted message
type MessageRef struct {
	ChannelID string
	MessageID string
}

// MessageTracker remembers which message shows a live game so the
// message can be rewritten when the game expires without a click.
type MessageTracker struct {
	mu   sync.Mutex
	refs map[string]MessageRef
}

// NewMessageTracker creates an empty tracker
func NewMessageTracker() *MessageTracker {
	return &MessageTracker{refs: make(map[string]MessageRef)}
}

// Track records the message of gameID
func (t *MessageTracker) Track(gameID string, ref MessageRef) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refs[gameID] = ref
}

// TrackResponse records the original response of an interaction
func (t *MessageTracker) TrackResponse(s *discordgo.Session, i *discordgo.InteractionCreate, gameID string) {
	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		log.WithFields(log.Fields{
			"game_id": gameID,
			"error":   err,
		}).Warn("Failed to fetch game message")
		return
	}
	t.Track(gameID, MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID})
}

// Take removes and returns the message of gameID
func (t *MessageTracker) Take(gameID string) (MessageRef, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ref, ok := t.refs[gameID]
	delete(t.refs, gameID)
	return ref, ok
}

// Forget drops gameID
func (t *MessageTracker) Forget(gameID string) {
	t.Take(gameID)
}

// Len is the number of tracked games
func (t *MessageTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.refs)
}
