package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"overbank/models"

	"github.com/jackc/pgx/v5"
)

// CooldownRepository implements the CooldownRepository interface
type CooldownRepository struct {
	q       queryable
	guildID int64
}

func newCooldownRepository(tx queryable, guildID int64) *CooldownRepository {
	return &CooldownRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Get returns the live cooldown for the slot. Expired rows are ignored, not purged.
func (r *CooldownRepository) Get(ctx context.Context, userID int64, category models.CooldownCategory, action string) (*models.CooldownEntry, error) {
	query := `
		SELECT expires_at
		FROM cooldowns
		WHERE guild_id = $1 AND user_id = $2 AND category = $3 AND action = $4
		  AND expires_at > NOW()
	`

	var expiresAt time.Time
	err := r.q.QueryRow(ctx, query, r.guildID, userID, string(category), action).Scan(&expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cooldown %s/%s for user %d: %w", category, action, userID, err)
	}

	return &models.CooldownEntry{
		Key: models.CooldownKey{
			Category: category,
			Action:   action,
			GuildID:  r.guildID,
			UserID:   userID,
		},
		ExpiresAt: expiresAt,
	}, nil
}

// Set deletes the previous row for the slot and inserts the new expiry.
// Must run inside a transaction so the slot never holds two rows.
func (r *CooldownRepository) Set(ctx context.Context, userID int64, category models.CooldownCategory, action string, expiresAt time.Time) error {
	deleteQuery := `
		DELETE FROM cooldowns
		WHERE guild_id = $1 AND user_id = $2 AND category = $3 AND action = $4
	`
	if _, err := r.q.Exec(ctx, deleteQuery, r.guildID, userID, string(category), action); err != nil {
		return fmt.Errorf("failed to clear cooldown %s/%s for user %d: %w", category, action, userID, err)
	}

	insertQuery := `
		INSERT INTO cooldowns (guild_id, user_id, category, action, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.q.Exec(ctx, insertQuery, r.guildID, userID, string(category), action, expiresAt); err != nil {
		return fmt.Errorf("failed to set cooldown %s/%s for user %d: %w", category, action, userID, err)
	}

	return nil
}
