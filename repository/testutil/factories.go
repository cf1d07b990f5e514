package testutil

import (
	"context"
	"testing"

	"overbank/database"
	"overbank/models"

	"github.com/stretchr/testify/require"
)

// Test guild and user ids
const (
	TestGuildID      = 900000000000000001
	OtherGuildID     = 900000000000000002
	TestUser1ID      = 111111
	TestUser2ID      = 222222
	TestUser3ID      = 333333
	TestChannelID    = 789012
	OtherChannelID   = 789013
	DefaultTestFunds = 10000
)

// SeedAccount inserts an account with the given purses directly, bypassing the services
func SeedAccount(t *testing.T, db *database.DB, guildID, userID int64, username string, hand, bank int64) *models.Account {
	t.Helper()

	query := `
		INSERT INTO accounts (guild_id, user_id, username, balance, bank_balance)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET balance = EXCLUDED.balance, bank_balance = EXCLUDED.bank_balance
		RETURNING created_at, updated_at
	`

	account := &models.Account{
		GuildID:     guildID,
		UserID:      userID,
		Username:    username,
		Balance:     hand,
		BankBalance: bank,
	}
	err := db.QueryRow(context.Background(), query, guildID, userID, username, hand, bank).
		Scan(&account.CreatedAt, &account.UpdatedAt)
	require.NoError(t, err)

	return account
}

// HandBalance reads the current hand balance straight from the table
func HandBalance(t *testing.T, db *database.DB, guildID, userID int64) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(context.Background(),
		`SELECT balance FROM accounts WHERE guild_id = $1 AND user_id = $2`, guildID, userID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

// BankBalance reads the current bank balance straight from the table
func BankBalance(t *testing.T, db *database.DB, guildID, userID int64) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(context.Background(),
		`SELECT bank_balance FROM accounts WHERE guild_id = $1 AND user_id = $2`, guildID, userID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

// CountRows returns the number of rows of a table for a guild
func CountRows(t *testing.T, db *database.DB, table string, guildID int64) int {
	t.Helper()

	var count int
	err := db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM `+table+` WHERE guild_id = $1`, guildID).Scan(&count)
	require.NoError(t, err)
	return count
}

// CreateTestBalanceHistory creates a balance history entry with default amounts
func CreateTestBalanceHistory(userID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		Purse:           models.PurseHand,
		BalanceBefore:   1000,
		BalanceAfter:    900,
		ChangeAmount:    -100,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}
