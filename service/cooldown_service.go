package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"overbank/models"
)

// CooldownStatus is the result of a cooldown check
type CooldownStatus struct {
	OnCooldown bool
	Remaining  time.Duration
}

// RemainingMinutes returns the minutes left, rounded up
func (s CooldownStatus) RemainingMinutes() int {
	return int(math.Ceil(s.Remaining.Minutes()))
}

// RemainingSeconds returns the seconds left, rounded up
func (s CooldownStatus) RemainingSeconds() int {
	return int(math.Ceil(s.Remaining.Seconds()))
}

type cooldownService struct {
	store CooldownStore
	now   func() time.Time
}

// NewCooldownService creates the cooldown gate on top of a store
func NewCooldownService(store CooldownStore) CooldownService {
	return &cooldownService{
		store: store,
		now:   time.Now,
	}
}

func (s *cooldownService) Check(ctx context.Context, key models.CooldownKey) (CooldownStatus, error) {
	entry, err := s.store.Get(ctx, key)
	if err != nil {
		return CooldownStatus{}, fmt.Errorf("failed to check cooldown %s: %w", key, err)
	}
	if entry == nil {
		return CooldownStatus{}, nil
	}

	remaining := entry.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return CooldownStatus{}, nil
	}
	return CooldownStatus{OnCooldown: true, Remaining: remaining}, nil
}

func (s *cooldownService) Set(ctx context.Context, key models.CooldownKey, duration time.Duration) error {
	if err := s.store.Set(ctx, key, s.now().Add(duration)); err != nil {
		return fmt.Errorf("failed to set cooldown %s: %w", key, err)
	}
	return nil
}

func (s *cooldownService) Acquire(ctx context.Context, key models.CooldownKey, duration time.Duration) error {
	status, err := s.Check(ctx, key)
	if err != nil {
		return err
	}
	if status.OnCooldown {
		return &CooldownError{Action: key.Action, Remaining: status.Remaining}
	}
	return s.Set(ctx, key, duration)
}

// ledgerCooldownStore keeps cooldowns in the cooldowns table
type ledgerCooldownStore struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerCooldownStore creates a CooldownStore backed by the ledger database
func NewLedgerCooldownStore(uowFactory UnitOfWorkFactory) CooldownStore {
	return &ledgerCooldownStore{uowFactory: uowFactory}
}

func (s *ledgerCooldownStore) Get(ctx context.Context, key models.CooldownKey) (*models.CooldownEntry, error) {
	uow := s.uowFactory.CreateForGuild(key.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.CooldownRepository().Get(ctx, key.UserID, key.Category, key.Action)
}

func (s *ledgerCooldownStore) Set(ctx context.Context, key models.CooldownKey, expiresAt time.Time) error {
	uow := s.uowFactory.CreateForGuild(key.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.CooldownRepository().Set(ctx, key.UserID, key.Category, key.Action, expiresAt); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
