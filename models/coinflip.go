package models

import (
	"slices"
	"time"
)

// CoinflipRound is a pot that participants join with equal stakes
type CoinflipRound struct {
	ID           int64      `db:"id"`
	GuildID      int64      `db:"guild_id"`
	ChannelID    int64      `db:"channel_id"`
	CreatorID    int64      `db:"creator_id"`
	Amount       int64      `db:"amount"` // per participant
	Participants []int64    `db:"participants"`
	IsActive     bool       `db:"is_active"`
	WinnerID     *int64     `db:"winner_id"`
	CreatedAt    time.Time  `db:"created_at"`
	CompletedAt  *time.Time `db:"completed_at"`
}

// HasParticipant reports whether userID already joined
func (r *CoinflipRound) HasParticipant(userID int64) bool {
	return slices.Contains(r.Participants, userID)
}

// Pot is the amount paid to the winner
func (r *CoinflipRound) Pot() int64 {
	return r.Amount * int64(len(r.Participants))
}

// CoinflipJoinResult is returned when someone joins a round.
// Completed is set when the join filled the round and a winner was paid.
type CoinflipJoinResult struct {
	Round     *CoinflipRound
	Completed bool
	WinnerID  int64
	Pot       int64
}
