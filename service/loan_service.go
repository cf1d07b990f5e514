package service

import (
	"context"
	"fmt"

	"overbank/config"
	"overbank/events"
	"overbank/models"
)

type loanService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewLoanService creates a new loan service
func NewLoanService(uowFactory UnitOfWorkFactory, cfg *config.Config) LoanService {
	return &loanService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// TotalRepayment is principal plus interest, floored
func TotalRepayment(principal, interestPct int64) int64 {
	return principal * (100 + interestPct) / 100
}

func (s *loanService) TakeLoan(ctx context.Context, guildID, userID int64, principal int64) (*models.Loan, error) {
	if principal <= 0 || principal > s.config.MaxLoanAmount {
		return nil, ErrInvalidLoanAmount
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := provision(ctx, uow, guildID, userID, ""); err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	existing, err := uow.LoanRepository().Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check outstanding loan: %w", err)
	}
	if existing != nil {
		return nil, ErrLoanOutstanding
	}

	repayment := TotalRepayment(principal, s.config.LoanInterestPct)
	loan := &models.Loan{
		UserID:           userID,
		LoanAmount:       principal,
		TotalRepayment:   repayment,
		RemainingBalance: repayment,
	}
	// A concurrent TakeLoan that slipped past the check fails here on the primary key
	if err := uow.LoanRepository().Create(ctx, loan); err != nil {
		return nil, err
	}

	account, err := uow.AccountRepository().AddBank(ctx, userID, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to credit loan: %w", err)
	}

	if err := recordBank(ctx, uow, account, principal, models.TransactionTypeLoanIssued, map[string]any{
		"total_repayment": repayment,
	}); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.LoanTakenEvent{
		GuildID:        guildID,
		UserID:         userID,
		Principal:      principal,
		TotalRepayment: repayment,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return loan, nil
}

// RepayLoan pays down the loan from the bank balance. The bank must cover the requested
// amount even though only the outstanding debt is actually taken.
func (s *loanService) RepayLoan(ctx context.Context, guildID, userID int64, amount int64) (*models.LoanRepayment, error) {
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

	loan, err := uow.LoanRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	if loan == nil {
		return nil, ErrNoLoan
	}

	account, err := uow.AccountRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account.BankBalance < amount {
		return nil, ErrInsufficientFunds
	}

	repaid := min(amount, loan.RemainingBalance)
	account, err = uow.AccountRepository().DeductBank(ctx, userID, repaid)
	if err != nil {
		return nil, fmt.Errorf("failed to debit repayment: %w", err)
	}
	if account == nil {
		return nil, ErrInsufficientFunds
	}

	remaining := loan.RemainingBalance - repaid
	if remaining == 0 {
		err = uow.LoanRepository().Delete(ctx, userID)
	} else {
		err = uow.LoanRepository().UpdateRemaining(ctx, userID, remaining)
	}
	if err != nil {
		return nil, err
	}

	if err := recordBank(ctx, uow, account, -repaid, models.TransactionTypeLoanRepayment, map[string]any{
		"remaining": remaining,
	}); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.LoanRepaidEvent{
		GuildID:   guildID,
		UserID:    userID,
		Repaid:    repaid,
		Remaining: remaining,
		FullyPaid: remaining == 0,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.LoanRepayment{
		Repaid:    repaid,
		Remaining: remaining,
		FullyPaid: remaining == 0,
		Account:   account,
	}, nil
}

func (s *loanService) GetLoan(ctx context.Context, guildID, userID int64) (*models.Loan, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	loan, err := uow.LoanRepository().Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return loan, nil
}
