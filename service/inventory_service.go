package service

import (
	"context"
	"fmt"

	"overbank/models"
)

type inventoryService struct {
	uowFactory UnitOfWorkFactory
}

// NewInventoryService creates a new inventory service
func NewInventoryService(uowFactory UnitOfWorkFactory) InventoryService {
	return &inventoryService{
		uowFactory: uowFactory,
	}
}

func (s *inventoryService) AddItem(ctx context.Context, guildID, userID int64, itemName string, quantity int, unitValue int64) (*models.InventoryItem, error) {
	if quantity <= 0 || unitValue < 0 {
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

	item, err := uow.InventoryRepository().Add(ctx, userID, itemName, quantity, unitValue)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return item, nil
}

func (s *inventoryService) Inventory(ctx context.Context, guildID, userID int64) ([]*models.InventoryItem, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.InventoryRepository().GetByUser(ctx, userID)
}

// SellAll credits the value of every stack and deletes them in one transaction
func (s *inventoryService) SellAll(ctx context.Context, guildID, userID int64) (*models.SellResult, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	items, err := uow.InventoryRepository().DeleteAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyInventory
	}

	var total int64
	for _, item := range items {
		total += item.Value()
	}

	result := &models.SellResult{
		TotalValue: total,
		ItemsSold:  len(items),
		Items:      items,
	}

	account, err := uow.AccountRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if total > 0 {
		account, err = uow.AccountRepository().AddHand(ctx, userID, total)
		if err != nil {
			return nil, fmt.Errorf("failed to credit sale: %w", err)
		}
		if err := recordHand(ctx, uow, account, total, models.TransactionTypeItemSale, map[string]any{
			"items_sold": len(items),
		}); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result.Account = account
	return result, nil
}
