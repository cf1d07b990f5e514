package models

import (
	"time"
)

// Loan is an outstanding bank loan; at most one per account
type Loan struct {
	GuildID          int64     `db:"guild_id"`
	UserID           int64     `db:"user_id"`
	LoanAmount       int64     `db:"loan_amount"`
	TotalRepayment   int64     `db:"total_repayment"`
	RemainingBalance int64     `db:"remaining_balance"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// LoanRepayment describes one repayment
type LoanRepayment struct {
	Repaid    int64
	Remaining int64
	FullyPaid bool
	Account   *Account
}
