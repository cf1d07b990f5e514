package models

import (
	"time"
)

// TransactionType classifies a balance change
type TransactionType string

const (
	TransactionTypeDeposit        TransactionType = "deposit"
	TransactionTypeWithdraw       TransactionType = "withdraw"
	TransactionTypeTransferIn     TransactionType = "transfer_in"
	TransactionTypeTransferOut    TransactionType = "transfer_out"
	TransactionTypeAdminCredit    TransactionType = "admin_credit"
	TransactionTypeAdminDebit     TransactionType = "admin_debit"
	TransactionTypeDailyReward    TransactionType = "daily_reward"
	TransactionTypeLoanIssued     TransactionType = "loan_issued"
	TransactionTypeLoanRepayment  TransactionType = "loan_repayment"
	TransactionTypeItemSale       TransactionType = "item_sale"
	TransactionTypeWork           TransactionType = "work"
	TransactionTypeRobbery        TransactionType = "robbery"
	TransactionTypeRobberyFine    TransactionType = "robbery_fine"
	TransactionTypeWagerEscrow    TransactionType = "wager_escrow"
	TransactionTypeWagerPayout    TransactionType = "wager_payout"
	TransactionTypeWagerRefund    TransactionType = "wager_refund"
	TransactionTypeCoinflipEscrow TransactionType = "coinflip_escrow"
	TransactionTypeCoinflipPayout TransactionType = "coinflip_payout"
	TransactionTypeCoinflipRefund TransactionType = "coinflip_refund"
)

// Purse identifies which sub-balance of an account changed
type Purse string

const (
	PurseHand Purse = "hand"
	PurseBank Purse = "bank"
)

// BalanceHistory is one recorded change of one purse
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	GuildID             int64           `db:"guild_id"`
	UserID              int64           `db:"user_id"`
	Purse               Purse           `db:"purse"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}
