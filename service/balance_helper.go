package service

import (
	"context"
	"fmt"

	"overbank/events"
	"overbank/models"
)

// RecordBalanceChange records a balance history entry and publishes the matching event.
// This is the single entry point for all balance changes in the system.
func RecordBalanceChange(ctx context.Context, historyRepo BalanceHistoryRepository, publisher EventPublisher, history *models.BalanceHistory) error {
	if err := historyRepo.Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	// Flushed after the transaction commits
	publisher.Publish(events.BalanceChangeEvent{
		GuildID:         history.GuildID,
		UserID:          history.UserID,
		Purse:           history.Purse,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		ChangeAmount:    history.ChangeAmount,
		TransactionType: history.TransactionType,
	})

	return nil
}

// recordHand records a hand change given the account after the mutation
func recordHand(ctx context.Context, uow UnitOfWork, after *models.Account, change int64, txType models.TransactionType, metadata map[string]any) error {
	return RecordBalanceChange(ctx, uow.BalanceHistoryRepository(), uow.EventBus(), &models.BalanceHistory{
		GuildID:             after.GuildID,
		UserID:              after.UserID,
		Purse:               models.PurseHand,
		BalanceBefore:       after.Balance - change,
		BalanceAfter:        after.Balance,
		ChangeAmount:        change,
		TransactionType:     txType,
		TransactionMetadata: metadata,
	})
}

// recordBank records a bank change given the account after the mutation
func recordBank(ctx context.Context, uow UnitOfWork, after *models.Account, change int64, txType models.TransactionType, metadata map[string]any) error {
	return RecordBalanceChange(ctx, uow.BalanceHistoryRepository(), uow.EventBus(), &models.BalanceHistory{
		GuildID:             after.GuildID,
		UserID:              after.UserID,
		Purse:               models.PurseBank,
		BalanceBefore:       after.BankBalance - change,
		BalanceAfter:        after.BankBalance,
		ChangeAmount:        change,
		TransactionType:     txType,
		TransactionMetadata: metadata,
	})
}
