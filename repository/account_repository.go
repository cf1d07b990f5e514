package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"overbank/database"
	"overbank/models"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `guild_id, user_id, username, balance, bank_balance, total_earned, last_daily_claim, created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q       queryable
	guildID int64
}

// NewAccountRepository creates an account repository on the pool
func NewAccountRepository(db *database.DB, guildID int64) *AccountRepository {
	return &AccountRepository{q: db.Pool, guildID: guildID}
}

// newAccountRepository creates an account repository with a transaction and guild scope
func newAccountRepository(tx queryable, guildID int64) *AccountRepository {
	return &AccountRepository{
		q:       tx,
		guildID: guildID,
	}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.GuildID,
		&a.UserID,
		&a.Username,
		&a.Balance,
		&a.BankBalance,
		&a.TotalEarned,
		&a.LastDailyClaim,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByUserID retrieves an account in the current guild
func (r *AccountRepository) GetByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE guild_id = $1 AND user_id = $2`

	account, err := scanAccount(r.q.QueryRow(ctx, query, r.guildID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d in guild %d: %w", userID, r.guildID, err)
	}
	return account, nil
}

// GetForUpdate retrieves an account and locks it for the rest of the transaction
func (r *AccountRepository) GetForUpdate(ctx context.Context, userID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE guild_id = $1 AND user_id = $2 FOR UPDATE`

	account, err := scanAccount(r.q.QueryRow(ctx, query, r.guildID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %d in guild %d: %w", userID, r.guildID, err)
	}
	return account, nil
}

// GetOrCreate inserts the account if it does not exist yet. An existing username is never overwritten.
func (r *AccountRepository) GetOrCreate(ctx context.Context, userID int64, username string) (*models.Account, bool, error) {
	insert := `
		INSERT INTO accounts (guild_id, user_id, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, user_id) DO NOTHING
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, insert, r.guildID, userID, username))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create account %d in guild %d: %w", userID, r.guildID, err)
	}
	if account != nil {
		return account, true, nil
	}

	account, err = r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if account == nil {
		return nil, false, fmt.Errorf("account %d in guild %d vanished after conflict", userID, r.guildID)
	}
	return account, false, nil
}

// AddHand adds delta to the hand balance. Positive deltas also count towards total_earned.
func (r *AccountRepository) AddHand(ctx context.Context, userID int64, delta int64) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $3,
		    total_earned = total_earned + GREATEST($3, 0),
		    updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, r.guildID, userID, delta))
	if err != nil {
		return nil, fmt.Errorf("failed to adjust hand balance for user %d in guild %d: %w", userID, r.guildID, err)
	}
	return account, nil
}

// DeductHand subtracts amount from the hand balance if it covers the amount.
// Returns nil, nil when the balance is insufficient.
func (r *AccountRepository) DeductHand(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance - $3, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2 AND balance >= $3
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, r.guildID, userID, amount))
	if err != nil {
		return nil, fmt.Errorf("failed to deduct hand balance for user %d in guild %d: %w", userID, r.guildID, err)
	}
	return account, nil
}

// MoveHandToBank moves amount into the bank if the hand balance covers it
func (r *AccountRepository) MoveHandToBank(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance - $3, bank_balance = bank_balance + $3, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2 AND balance >= $3
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, r.guildID, userID, amount))
	if err != nil {
		return nil, fmt.Errorf("failed to deposit for user %d in guild %d: %w", userID, r.guildID, err)
	}
	return account, nil
}

// MoveBankToHand moves amount out of the bank if the bank balance covers it
func (r *AccountRepository) MoveBankToHand(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET bank_balance = bank_balance - $3, balance = balance + $3, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2 AND bank_balance >= $3
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, r.guildID, userID, amount))
	if err != nil {
		return nil, fmt.Errorf("failed to withdraw for user %d in guild %d: %w", userID, r.guildID, err)
	}
	return account, nil
}

// AddBank adds amount to the bank balance
func (r *AccountRepository) AddBank(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET bank_balance = bank_balance + $3, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, r.guildID, userID, amount))
	if err != nil {
		return nil, fmt.Errorf("failed to credit bank for user %d in guild %d: %w", userID, r.guildID, err)
	}
	return account, nil
}

// DeductBank subtracts amount from the bank balance if it covers the amount
func (r *AccountRepository) DeductBank(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET bank_balance = bank_balance - $3, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2 AND bank_balance >= $3
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, r.guildID, userID, amount))
	if err != nil {
		return nil, fmt.Errorf("failed to debit bank for user %d in guild %d: %w", userID, r.guildID, err)
	}
	return account, nil
}

// SetBalances overwrites both purses
func (r *AccountRepository) SetBalances(ctx context.Context, userID int64, hand, bank int64) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET balance = $3, bank_balance = $4, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, r.guildID, userID, hand, bank))
	if err != nil {
		return nil, fmt.Errorf("failed to set balances for user %d in guild %d: %w", userID, r.guildID, err)
	}
	return account, nil
}

// ClaimDaily credits amount and stamps last_daily_claim in one statement.
// Returns nil, nil when the previous claim is more recent than interval.
func (r *AccountRepository) ClaimDaily(ctx context.Context, userID int64, amount int64, interval time.Duration) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $3,
		    total_earned = total_earned + $3,
		    last_daily_claim = NOW(),
		    updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2
		  AND (last_daily_claim IS NULL OR last_daily_claim <= NOW() - ($4::bigint * INTERVAL '1 millisecond'))
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, r.guildID, userID, amount, interval.Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("failed to claim daily reward for user %d in guild %d: %w", userID, r.guildID, err)
	}
	return account, nil
}

// GetTop returns the wealthiest accounts of the guild
func (r *AccountRepository) GetTop(ctx context.Context, limit int) ([]*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE guild_id = $1
		ORDER BY (balance + bank_balance) DESC, user_id
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard for guild %d: %w", r.guildID, err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}
