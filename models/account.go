package models

import (
	"time"
)

// Account is a user's wallet inside one guild
type Account struct {
	GuildID        int64      `db:"guild_id"`
	UserID         int64      `db:"user_id"`
	Username       string     `db:"username"`
	Balance        int64      `db:"balance"`      // In hand, spendable
	BankBalance    int64      `db:"bank_balance"` // Sheltered from robbery
	TotalEarned    int64      `db:"total_earned"` // Sum of all positive hand credits
	LastDailyClaim *time.Time `db:"last_daily_claim"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// Wealth is the hand and bank balance combined
func (a *Account) Wealth() int64 {
	return a.Balance + a.BankBalance
}

// TransferResult describes a completed peer transfer
type TransferResult struct {
	Amount            int64
	RecipientUsername string
	Sender            *Account
	Recipient         *Account
}

// AdminDebitResult describes a clamped administrative debit.
// Debited can be lower than Requested; the difference is Shortfall.
type AdminDebitResult struct {
	Requested int64
	Debited   int64
	FromHand  int64
	FromBank  int64
	Shortfall int64
	Account   *Account
}

// DailyRewardResult describes a successful daily claim
type DailyRewardResult struct {
	Amount  int64
	Account *Account
}
