package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"overbank/config"
	"overbank/events"
	"overbank/models"

	log "github.com/sirupsen/logrus"
)

type economyService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
	now        func() time.Time
}

// NewEconomyService creates a new economy service
func NewEconomyService(uowFactory UnitOfWorkFactory, cfg *config.Config) EconomyService {
	return &economyService{
		uowFactory: uowFactory,
		config:     cfg,
		now:        time.Now,
	}
}

// provision returns the account, creating it on first sight
func provision(ctx context.Context, uow UnitOfWork, guildID, userID int64, username string) (*models.Account, error) {
	account, created, err := uow.AccountRepository().GetOrCreate(ctx, userID, username)
	if err != nil {
		return nil, err
	}
	if created {
		uow.EventBus().Publish(events.AccountCreatedEvent{
			GuildID:  guildID,
			UserID:   userID,
			Username: username,
		})
	}
	return account, nil
}

// lockAccounts takes the row locks of several accounts in user id order, so two
// transactions touching the same pair cannot deadlock. Locked accounts are keyed by user id.
func lockAccounts(ctx context.Context, uow UnitOfWork, userIDs ...int64) (map[int64]*models.Account, error) {
	ids := slices.Clone(userIDs)
	slices.Sort(ids)

	locked := make(map[int64]*models.Account, len(ids))
	for _, id := range slices.Compact(ids) {
		account, err := uow.AccountRepository().GetForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to lock account %d: %w", id, err)
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}
		locked[id] = account
	}
	return locked, nil
}

func (s *economyService) GetOrCreateAccount(ctx context.Context, guildID, userID int64, username string) (*models.Account, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := provision(ctx, uow, guildID, userID, username)
	if err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

func (s *economyService) GetAccount(ctx context.Context, guildID, userID int64) (*models.Account, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (s *economyService) AdjustHandBalance(ctx context.Context, guildID, userID int64, delta int64, txType models.TransactionType) (*models.Account, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := provision(ctx, uow, guildID, userID, ""); err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	account, err := uow.AccountRepository().AddHand(ctx, userID, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust hand balance: %w", err)
	}

	if err := recordHand(ctx, uow, account, delta, txType, nil); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

func (s *economyService) Escrow(ctx context.Context, guildID, userID int64, amount int64, txType models.TransactionType) (*models.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := provision(ctx, uow, guildID, userID, ""); err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	account, err := uow.AccountRepository().DeductHand(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to escrow wager: %w", err)
	}
	if account == nil {
		return nil, ErrInsufficientFunds
	}

	if err := recordHand(ctx, uow, account, -amount, txType, nil); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

func (s *economyService) Payout(ctx context.Context, guildID, userID int64, amount int64, txType models.TransactionType) (*models.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.AdjustHandBalance(ctx, guildID, userID, amount, txType)
}

func (s *economyService) Deposit(ctx context.Context, guildID, userID int64, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := provision(ctx, uow, guildID, userID, ""); err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	account, err := uow.AccountRepository().MoveHandToBank(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to deposit: %w", err)
	}
	if account == nil {
		return nil, ErrInsufficientFunds
	}

	if err := recordHand(ctx, uow, account, -amount, models.TransactionTypeDeposit, nil); err != nil {
		return nil, err
	}
	if err := recordBank(ctx, uow, account, amount, models.TransactionTypeDeposit, nil); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

func (s *economyService) Withdraw(ctx context.Context, guildID, userID int64, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := provision(ctx, uow, guildID, userID, ""); err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	account, err := uow.AccountRepository().MoveBankToHand(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to withdraw: %w", err)
	}
	if account == nil {
		return nil, ErrInsufficientFunds
	}

	if err := recordBank(ctx, uow, account, -amount, models.TransactionTypeWithdraw, nil); err != nil {
		return nil, err
	}
	if err := recordHand(ctx, uow, account, amount, models.TransactionTypeWithdraw, nil); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

func (s *economyService) Transfer(ctx context.Context, guildID, fromID, toID int64, amount int64) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if fromID == toID {
		return nil, ErrSelfTransfer
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if _, err := provision(ctx, uow, guildID, fromID, ""); err != nil {
		return nil, fmt.Errorf("failed to provision sender: %w", err)
	}
	recipient, err := provision(ctx, uow, guildID, toID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to provision recipient: %w", err)
	}

	if _, err := lockAccounts(ctx, uow, fromID, toID); err != nil {
		return nil, err
	}

	// The balance check and the debit are one statement
	sender, err := uow.AccountRepository().DeductHand(ctx, fromID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to deduct transfer amount: %w", err)
	}
	if sender == nil {
		return nil, ErrInsufficientFunds
	}

	recipient, err = uow.AccountRepository().AddHand(ctx, toID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to add transfer amount: %w", err)
	}

	if err := recordHand(ctx, uow, sender, -amount, models.TransactionTypeTransferOut, map[string]any{
		"recipient_user_id": toID,
		"transfer_amount":   amount,
	}); err != nil {
		return nil, fmt.Errorf("failed to record sender balance change: %w", err)
	}

	if err := recordHand(ctx, uow, recipient, amount, models.TransactionTypeTransferIn, map[string]any{
		"sender_user_id":  fromID,
		"transfer_amount": amount,
	}); err != nil {
		return nil, fmt.Errorf("failed to record recipient balance change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.TransferResult{
		Amount:            amount,
		RecipientUsername: recipient.Username,
		Sender:            sender,
		Recipient:         recipient,
	}, nil
}

func (s *economyService) AdminCredit(ctx context.Context, guildID, userID int64, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.AdjustHandBalance(ctx, guildID, userID, amount, models.TransactionTypeAdminCredit)
}

// AdminDebit never rejects for lack of funds. It drains the hand first, then the bank,
// and reports what it could not take as Shortfall.
func (s *economyService) AdminDebit(ctx context.Context, guildID, userID int64, amount int64) (*models.AdminDebitResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := provision(ctx, uow, guildID, userID, ""); err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	account, err := uow.AccountRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	split := splitDebit(account.Balance, account.BankBalance, amount)

	if split.Debited > 0 {
		account, err = uow.AccountRepository().SetBalances(ctx, userID, account.Balance-split.FromHand, account.BankBalance-split.FromBank)
		if err != nil {
			return nil, fmt.Errorf("failed to debit account: %w", err)
		}

		metadata := map[string]any{"requested": amount, "shortfall": split.Shortfall}
		if split.FromHand > 0 {
			if err := recordHand(ctx, uow, account, -split.FromHand, models.TransactionTypeAdminDebit, metadata); err != nil {
				return nil, err
			}
		}
		if split.FromBank > 0 {
			if err := recordBank(ctx, uow, account, -split.FromBank, models.TransactionTypeAdminDebit, metadata); err != nil {
				return nil, err
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if split.Shortfall > 0 {
		log.WithFields(log.Fields{
			"guild_id":  guildID,
			"user_id":   userID,
			"requested": amount,
			"debited":   split.Debited,
		}).Info("Admin debit clamped to available funds")
	}

	split.Account = account
	return &split, nil
}

// splitDebit works out how much of amount comes from each purse; neither goes below zero
func splitDebit(hand, bank, amount int64) models.AdminDebitResult {
	fromHand := min(max(hand, 0), amount)
	fromBank := min(max(bank, 0), amount-fromHand)
	debited := fromHand + fromBank
	return models.AdminDebitResult{
		Requested: amount,
		Debited:   debited,
		FromHand:  fromHand,
		FromBank:  fromBank,
		Shortfall: amount - debited,
	}
}

func (s *economyService) ClaimDailyReward(ctx context.Context, guildID, userID int64) (*models.DailyRewardResult, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := provision(ctx, uow, guildID, userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	account, err := uow.AccountRepository().ClaimDaily(ctx, userID, s.config.DailyReward, s.config.DailyInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to claim daily reward: %w", err)
	}
	if account == nil {
		remaining := time.Second
		if existing.LastDailyClaim != nil {
			remaining = max(existing.LastDailyClaim.Add(s.config.DailyInterval).Sub(s.now()), time.Second)
		}
		return nil, &DailyCooldownError{Remaining: remaining}
	}

	if err := recordHand(ctx, uow, account, s.config.DailyReward, models.TransactionTypeDailyReward, nil); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.DailyRewardResult{
		Amount:  s.config.DailyReward,
		Account: account,
	}, nil
}

func (s *economyService) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.Account, error) {
	if limit <= 0 {
		limit = s.config.LeaderboardSize
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	accounts, err := uow.AccountRepository().GetTop(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return accounts, nil
}

func (s *economyService) BalanceHistory(ctx context.Context, guildID, userID int64, limit int) ([]*models.BalanceHistory, error) {
	if limit <= 0 {
		limit = 10
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	histories, err := uow.BalanceHistoryRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}
	return histories, nil
}
