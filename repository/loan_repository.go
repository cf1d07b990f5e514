package repository

import (
	"context"
	"errors"
	"fmt"

	"overbank/models"
	"overbank/service"

	"github.com/jackc/pgx/v5"
)

// LoanRepository implements the LoanRepository interface
type LoanRepository struct {
	q       queryable
	guildID int64
}

func newLoanRepository(tx queryable, guildID int64) *LoanRepository {
	return &LoanRepository{
		q:       tx,
		guildID: guildID,
	}
}

func (r *LoanRepository) get(ctx context.Context, userID int64, lock bool) (*models.Loan, error) {
	query := `
		SELECT guild_id, user_id, loan_amount, total_repayment, remaining_balance, created_at, updated_at
		FROM loans
		WHERE guild_id = $1 AND user_id = $2
	`
	if lock {
		query += ` FOR UPDATE`
	}

	var loan models.Loan
	err := r.q.QueryRow(ctx, query, r.guildID, userID).Scan(
		&loan.GuildID,
		&loan.UserID,
		&loan.LoanAmount,
		&loan.TotalRepayment,
		&loan.RemainingBalance,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan for user %d in guild %d: %w", userID, r.guildID, err)
	}
	return &loan, nil
}

// Get returns the outstanding loan, nil if none
func (r *LoanRepository) Get(ctx context.Context, userID int64) (*models.Loan, error) {
	return r.get(ctx, userID, false)
}

// GetForUpdate returns the outstanding loan and locks it
func (r *LoanRepository) GetForUpdate(ctx context.Context, userID int64) (*models.Loan, error) {
	return r.get(ctx, userID, true)
}

// Create inserts the loan. The primary key enforces one loan per account.
func (r *LoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	query := `
		INSERT INTO loans (guild_id, user_id, loan_amount, total_repayment, remaining_balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		r.guildID,
		loan.UserID,
		loan.LoanAmount,
		loan.TotalRepayment,
		loan.RemainingBalance,
	).Scan(&loan.CreatedAt, &loan.UpdatedAt)
	if isUniqueViolation(err) {
		return service.ErrLoanOutstanding
	}
	if err != nil {
		return fmt.Errorf("failed to create loan for user %d in guild %d: %w", loan.UserID, r.guildID, err)
	}

	loan.GuildID = r.guildID
	return nil
}

// UpdateRemaining sets the remaining balance
func (r *LoanRepository) UpdateRemaining(ctx context.Context, userID int64, remaining int64) error {
	query := `
		UPDATE loans
		SET remaining_balance = $3, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2
	`

	result, err := r.q.Exec(ctx, query, r.guildID, userID, remaining)
	if err != nil {
		return fmt.Errorf("failed to update loan for user %d in guild %d: %w", userID, r.guildID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("loan for user %d not found in guild %d", userID, r.guildID)
	}
	return nil
}

// Delete removes the loan
func (r *LoanRepository) Delete(ctx context.Context, userID int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM loans WHERE guild_id = $1 AND user_id = $2`, r.guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete loan for user %d in guild %d: %w", userID, r.guildID, err)
	}
	return nil
}
