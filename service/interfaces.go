package service

import (
	"context"
	"time"

	"overbank/events"
	"overbank/models"
)

// AccountRepository defines the interface for account data access.
// Methods returning (*models.Account, error) return nil, nil when the row does not
// exist or when a conditional update matched nothing.
type AccountRepository interface {
	// GetByUserID retrieves an account in the current guild
	GetByUserID(ctx context.Context, userID int64) (*models.Account, error)

	// GetForUpdate retrieves an account and locks the row until the transaction ends
	GetForUpdate(ctx context.Context, userID int64) (*models.Account, error)

	// GetOrCreate inserts the account if missing; created reports whether this call created it
	GetOrCreate(ctx context.Context, userID int64, username string) (account *models.Account, created bool, err error)

	// AddHand adds delta to the hand balance unconditionally; a positive delta also raises total_earned
	AddHand(ctx context.Context, userID int64, delta int64) (*models.Account, error)

	// DeductHand subtracts amount only if the hand balance covers it
	DeductHand(ctx context.Context, userID int64, amount int64) (*models.Account, error)

	// MoveHandToBank moves amount from hand to bank only if the hand balance covers it
	MoveHandToBank(ctx context.Context, userID int64, amount int64) (*models.Account, error)

	// MoveBankToHand moves amount from bank to hand only if the bank balance covers it
	MoveBankToHand(ctx context.Context, userID int64, amount int64) (*models.Account, error)

	// AddBank adds a positive amount to the bank balance
	AddBank(ctx context.Context, userID int64, amount int64) (*models.Account, error)

	// DeductBank subtracts amount only if the bank balance covers it
	DeductBank(ctx context.Context, userID int64, amount int64) (*models.Account, error)

	// SetBalances overwrites both purses; callers must hold the row lock
	SetBalances(ctx context.Context, userID int64, hand, bank int64) (*models.Account, error)

	// ClaimDaily credits amount and stamps the claim time if the last claim is older than interval
	ClaimDaily(ctx context.Context, userID int64, amount int64, interval time.Duration) (*models.Account, error)

	// GetTop returns the wealthiest accounts of the guild
	GetTop(ctx context.Context, limit int) ([]*models.Account, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// CooldownRepository defines the interface for persisted cooldowns
type CooldownRepository interface {
	// Get returns the live cooldown for the slot, nil when none or expired
	Get(ctx context.Context, userID int64, category models.CooldownCategory, action string) (*models.CooldownEntry, error)

	// Set replaces the cooldown for the slot
	Set(ctx context.Context, userID int64, category models.CooldownCategory, action string, expiresAt time.Time) error
}

// InventoryRepository defines the interface for inventory data access
type InventoryRepository interface {
	// Add inserts the stack or increases its quantity
	Add(ctx context.Context, userID int64, itemName string, quantity int, unitValue int64) (*models.InventoryItem, error)

	// GetByUser returns the user's stacks ordered by name
	GetByUser(ctx context.Context, userID int64) ([]*models.InventoryItem, error)

	// DeleteAllByUser deletes every stack of the user and returns what was deleted
	DeleteAllByUser(ctx context.Context, userID int64) ([]*models.InventoryItem, error)
}

// CoinflipRepository defines the interface for coinflip round data access
type CoinflipRepository interface {
	// Create inserts a new active round; returns ErrRoundActive if the channel already has one
	Create(ctx context.Context, round *models.CoinflipRound) error

	// GetActiveByChannel returns the active round of a channel
	GetActiveByChannel(ctx context.Context, channelID int64) (*models.CoinflipRound, error)

	// GetActiveByChannelForUpdate returns the active round of a channel and locks it
	GetActiveByChannelForUpdate(ctx context.Context, channelID int64) (*models.CoinflipRound, error)

	// AddParticipant appends userID to the round's participants
	AddParticipant(ctx context.Context, roundID int64, userID int64) (*models.CoinflipRound, error)

	// Complete closes the round with a winner
	Complete(ctx context.Context, roundID int64, winnerID int64) error

	// Close closes the round without a winner
	Close(ctx context.Context, roundID int64) error

	// GetStaleActive returns active rounds created before cutoff, locked and skipping rows other workers hold
	GetStaleActive(ctx context.Context, cutoff time.Time) ([]*models.CoinflipRound, error)
}

// LoanRepository defines the interface for loan data access
type LoanRepository interface {
	// Get returns the outstanding loan, nil if none
	Get(ctx context.Context, userID int64) (*models.Loan, error)

	// GetForUpdate returns the outstanding loan and locks the row
	GetForUpdate(ctx context.Context, userID int64) (*models.Loan, error)

	// Create inserts a loan; returns ErrLoanOutstanding if one exists
	Create(ctx context.Context, loan *models.Loan) error

	// UpdateRemaining sets the remaining balance
	UpdateRemaining(ctx context.Context, userID int64, remaining int64) error

	// Delete removes the loan
	Delete(ctx context.Context, userID int64) error
}

// ActiveRoundLister reports which guilds have open coinflip rounds
type ActiveRoundLister interface {
	GuildsWithActiveRounds(ctx context.Context) ([]int64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	CooldownRepository() CooldownRepository
	InventoryRepository() InventoryRepository
	CoinflipRepository() CoinflipRepository
	LoanRepository() LoanRepository

	// Event publisher (transactional)
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForGuild creates a new UnitOfWork instance scoped to a specific guild
	CreateForGuild(guildID int64) UnitOfWork
}

// EconomyService defines the interface for account and balance operations
type EconomyService interface {
	// GetOrCreateAccount provisions the account on first sight; the username is only written on creation
	GetOrCreateAccount(ctx context.Context, guildID, userID int64, username string) (*models.Account, error)

	// GetAccount returns the account or nil
	GetAccount(ctx context.Context, guildID, userID int64) (*models.Account, error)

	// AdjustHandBalance adds delta unconditionally. Internal and privileged callers only.
	AdjustHandBalance(ctx context.Context, guildID, userID int64, delta int64, txType models.TransactionType) (*models.Account, error)

	// Escrow takes amount from the hand balance, failing with ErrInsufficientFunds
	Escrow(ctx context.Context, guildID, userID int64, amount int64, txType models.TransactionType) (*models.Account, error)

	// Payout credits a positive amount to the hand balance
	Payout(ctx context.Context, guildID, userID int64, amount int64, txType models.TransactionType) (*models.Account, error)

	// Deposit moves amount from hand to bank
	Deposit(ctx context.Context, guildID, userID int64, amount int64) (*models.Account, error)

	// Withdraw moves amount from bank to hand
	Withdraw(ctx context.Context, guildID, userID int64, amount int64) (*models.Account, error)

	// Transfer moves amount between the hand balances of two users
	Transfer(ctx context.Context, guildID, fromID, toID int64, amount int64) (*models.TransferResult, error)

	// AdminCredit adds a positive amount to the hand balance
	AdminCredit(ctx context.Context, guildID, userID int64, amount int64) (*models.Account, error)

	// AdminDebit removes up to amount, hand first then bank, never below zero
	AdminDebit(ctx context.Context, guildID, userID int64, amount int64) (*models.AdminDebitResult, error)

	// ClaimDailyReward grants the daily reward or returns a *DailyCooldownError
	ClaimDailyReward(ctx context.Context, guildID, userID int64) (*models.DailyRewardResult, error)

	// Leaderboard returns the wealthiest accounts
	Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.Account, error)

	// BalanceHistory returns the most recent balance changes of a user
	BalanceHistory(ctx context.Context, guildID, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// LoanService defines the interface for loan operations
type LoanService interface {
	TakeLoan(ctx context.Context, guildID, userID int64, principal int64) (*models.Loan, error)
	RepayLoan(ctx context.Context, guildID, userID int64, amount int64) (*models.LoanRepayment, error)
	GetLoan(ctx context.Context, guildID, userID int64) (*models.Loan, error)
}

// InventoryService defines the interface for inventory operations
type InventoryService interface {
	AddItem(ctx context.Context, guildID, userID int64, itemName string, quantity int, unitValue int64) (*models.InventoryItem, error)
	Inventory(ctx context.Context, guildID, userID int64) ([]*models.InventoryItem, error)
	SellAll(ctx context.Context, guildID, userID int64) (*models.SellResult, error)
}

// CoinflipService defines the interface for multi-party coinflip rounds
type CoinflipService interface {
	// Start opens a round in the channel and escrows the creator's stake
	Start(ctx context.Context, guildID, channelID, userID int64, amount int64) (*models.CoinflipRound, error)

	// Join adds a participant and completes the round once it is full
	Join(ctx context.Context, guildID, channelID, userID int64, amount int64) (*models.CoinflipJoinResult, error)

	// Active returns the open round of the channel or nil
	Active(ctx context.Context, guildID, channelID int64) (*models.CoinflipRound, error)

	// ExpireStale refunds and closes rounds that never filled
	ExpireStale(ctx context.Context, guildID int64, olderThan time.Duration) (int, error)
}

// CooldownStore persists cooldown expiry times
type CooldownStore interface {
	// Get returns the live entry for key or nil
	Get(ctx context.Context, key models.CooldownKey) (*models.CooldownEntry, error)

	// Set replaces the entry for key
	Set(ctx context.Context, key models.CooldownKey, expiresAt time.Time) error
}

// CooldownService defines the interface of the cooldown gate
type CooldownService interface {
	Check(ctx context.Context, key models.CooldownKey) (CooldownStatus, error)
	Set(ctx context.Context, key models.CooldownKey, duration time.Duration) error

	// Acquire returns a *CooldownError if key is on cooldown, otherwise starts it
	Acquire(ctx context.Context, key models.CooldownKey, duration time.Duration) error
}

// ActivityService defines the interface for the earning activities
type ActivityService interface {
	Work(ctx context.Context, guildID, userID int64) (*models.WorkResult, error)
	Search(ctx context.Context, guildID, userID int64) (*models.SearchResult, error)
	Rob(ctx context.Context, guildID, robberID, victimID int64) (*models.RobResult, error)
}
