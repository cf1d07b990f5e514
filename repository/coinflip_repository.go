package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"overbank/database"
	"overbank/models"
	"overbank/service"

	"github.com/jackc/pgx/v5"
)

const coinflipColumns = `id, guild_id, channel_id, creator_id, amount, participants, is_active, winner_id, created_at, completed_at`

// CoinflipRepository implements the CoinflipRepository interface
type CoinflipRepository struct {
	q       queryable
	guildID int64
}

func newCoinflipRepository(tx queryable, guildID int64) *CoinflipRepository {
	return &CoinflipRepository{
		q:       tx,
		guildID: guildID,
	}
}

func scanRound(row pgx.Row) (*models.CoinflipRound, error) {
	var round models.CoinflipRound
	err := row.Scan(
		&round.ID,
		&round.GuildID,
		&round.ChannelID,
		&round.CreatorID,
		&round.Amount,
		&round.Participants,
		&round.IsActive,
		&round.WinnerID,
		&round.CreatedAt,
		&round.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// Create inserts a new active round with the creator as its first participant
func (r *CoinflipRepository) Create(ctx context.Context, round *models.CoinflipRound) error {
	if len(round.Participants) == 0 {
		round.Participants = []int64{round.CreatorID}
	}

	query := `
		INSERT INTO coinflip_rounds (guild_id, channel_id, creator_id, amount, participants)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at
	`

	err := r.q.QueryRow(ctx, query,
		r.guildID,
		round.ChannelID,
		round.CreatorID,
		round.Amount,
		round.Participants,
	).Scan(&round.ID, &round.IsActive, &round.CreatedAt)
	if isUniqueViolation(err) {
		return service.ErrRoundActive
	}
	if err != nil {
		return fmt.Errorf("failed to create coinflip round in channel %d: %w", round.ChannelID, err)
	}

	round.GuildID = r.guildID
	return nil
}

// GetActiveByChannel returns the active round of a channel
func (r *CoinflipRepository) GetActiveByChannel(ctx context.Context, channelID int64) (*models.CoinflipRound, error) {
	query := `SELECT ` + coinflipColumns + ` FROM coinflip_rounds WHERE guild_id = $1 AND channel_id = $2 AND is_active`

	round, err := scanRound(r.q.QueryRow(ctx, query, r.guildID, channelID))
	if err != nil {
		return nil, fmt.Errorf("failed to get active coinflip round in channel %d: %w", channelID, err)
	}
	return round, nil
}

// GetActiveByChannelForUpdate returns the active round of a channel and locks it
func (r *CoinflipRepository) GetActiveByChannelForUpdate(ctx context.Context, channelID int64) (*models.CoinflipRound, error) {
	query := `SELECT ` + coinflipColumns + ` FROM coinflip_rounds WHERE guild_id = $1 AND channel_id = $2 AND is_active FOR UPDATE`

	round, err := scanRound(r.q.QueryRow(ctx, query, r.guildID, channelID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock active coinflip round in channel %d: %w", channelID, err)
	}
	return round, nil
}

// AddParticipant appends userID to the participant list
func (r *CoinflipRepository) AddParticipant(ctx context.Context, roundID int64, userID int64) (*models.CoinflipRound, error) {
	query := `
		UPDATE coinflip_rounds
		SET participants = array_append(participants, $3)
		WHERE guild_id = $1 AND id = $2 AND is_active
		RETURNING ` + coinflipColumns

	round, err := scanRound(r.q.QueryRow(ctx, query, r.guildID, roundID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to add participant %d to round %d: %w", userID, roundID, err)
	}
	if round == nil {
		return nil, fmt.Errorf("coinflip round %d is no longer active", roundID)
	}
	return round, nil
}

// Complete closes the round with a winner
func (r *CoinflipRepository) Complete(ctx context.Context, roundID int64, winnerID int64) error {
	query := `
		UPDATE coinflip_rounds
		SET is_active = FALSE, winner_id = $3, completed_at = NOW()
		WHERE guild_id = $1 AND id = $2 AND is_active
	`

	result, err := r.q.Exec(ctx, query, r.guildID, roundID, winnerID)
	if err != nil {
		return fmt.Errorf("failed to complete coinflip round %d: %w", roundID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("coinflip round %d is no longer active", roundID)
	}
	return nil
}

// Close closes the round without a winner
func (r *CoinflipRepository) Close(ctx context.Context, roundID int64) error {
	query := `
		UPDATE coinflip_rounds
		SET is_active = FALSE, completed_at = NOW()
		WHERE guild_id = $1 AND id = $2 AND is_active
	`

	result, err := r.q.Exec(ctx, query, r.guildID, roundID)
	if err != nil {
		return fmt.Errorf("failed to close coinflip round %d: %w", roundID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("coinflip round %d is no longer active", roundID)
	}
	return nil
}

// GetStaleActive returns active rounds created before cutoff. Rows locked by another
// transaction are skipped so overlapping expiry runs never refund a round twice.
func (r *CoinflipRepository) GetStaleActive(ctx context.Context, cutoff time.Time) ([]*models.CoinflipRound, error) {
	query := `
		SELECT ` + coinflipColumns + `
		FROM coinflip_rounds
		WHERE guild_id = $1 AND is_active AND created_at < $2
		ORDER BY created_at
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.q.Query(ctx, query, r.guildID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get stale coinflip rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*models.CoinflipRound
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coinflip round: %w", err)
		}
		rounds = append(rounds, round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate coinflip rounds: %w", err)
	}

	return rounds, nil
}

// ActiveRoundGuilds lists guilds that have open rounds. It is not guild scoped.
type ActiveRoundGuilds struct {
	q queryable
}

// NewActiveRoundGuilds creates the lister on the pool
func NewActiveRoundGuilds(db *database.DB) *ActiveRoundGuilds {
	return &ActiveRoundGuilds{q: db.Pool}
}

// GuildsWithActiveRounds returns the distinct guild ids with at least one active round
func (l *ActiveRoundGuilds) GuildsWithActiveRounds(ctx context.Context) ([]int64, error) {
	rows, err := l.q.Query(ctx, `SELECT DISTINCT guild_id FROM coinflip_rounds WHERE is_active ORDER BY guild_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds with active coinflip rounds: %w", err)
	}

	guildIDs, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan guild ids: %w", err)
	}
	return guildIDs, nil
}
