package service

import (
	"context"
	"fmt"
	"time"

	"overbank/config"
	"overbank/models"

	log "github.com/sirupsen/logrus"
)

// Activity cooldowns
const (
	WorkCooldown   = 5 * time.Minute
	SearchCooldown = 2 * time.Minute
	RobCooldown    = 10 * time.Minute
)

// SearchItem is one entry of the search loot table
type SearchItem struct {
	Name   string
	Emoji  string
	Value  int64
	Weight int
}

// SearchItems is the loot table for Search; weights sum to 100
var SearchItems = []SearchItem{
	{Name: "Old Mouse", Emoji: "🖱️", Value: 50, Weight: 25},
	{Name: "Mechanical Keyboard", Emoji: "⌨️", Value: 100, Weight: 20},
	{Name: "Old Phone", Emoji: "📱", Value: 80, Weight: 15},
	{Name: "32GB Flash Drive", Emoji: "💾", Value: 60, Weight: 15},
	{Name: "Headphones", Emoji: "🎧", Value: 120, Weight: 10},
	{Name: "Old Graphics Card", Emoji: "🎮", Value: 250, Weight: 5},
	{Name: "Broken Laptop", Emoji: "💻", Value: 300, Weight: 5},
	{Name: "Power Supply", Emoji: "🔌", Value: 70, Weight: 5},
}

// RobFines are the possible fines for a failed robbery
var RobFines = []int64{100, 250, 500, 1000}

type activityService struct {
	uowFactory UnitOfWorkFactory
	cooldowns  CooldownService
	config     *config.Config
	rng        Random
}

// NewActivityService creates the work/search/rob service
func NewActivityService(uowFactory UnitOfWorkFactory, cooldowns CooldownService, cfg *config.Config) ActivityService {
	return &activityService{
		uowFactory: uowFactory,
		cooldowns:  cooldowns,
		config:     cfg,
		rng:        defaultRandom{},
	}
}

// Work pays 30..110 seven times out of ten, otherwise costs 20..80 limited to what is in hand
func (s *activityService) Work(ctx context.Context, guildID, userID int64) (*models.WorkResult, error) {
	key := models.ActionCooldown("work", guildID, userID)
	if err := s.checkCooldown(ctx, key); err != nil {
		return nil, err
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := provision(ctx, uow, guildID, userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	var amount int64
	if s.rng.Float64() < 0.7 {
		amount = 30 + int64(s.rng.IntN(81))
		account, err = uow.AccountRepository().AddHand(ctx, userID, amount)
	} else {
		loss := min(20+int64(s.rng.IntN(61)), max(account.Balance, 0))
		amount = -loss
		if loss > 0 {
			account, err = uow.AccountRepository().DeductHand(ctx, userID, loss)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply work result: %w", err)
	}
	if account == nil {
		return nil, ErrInsufficientFunds
	}

	if amount != 0 {
		if err := recordHand(ctx, uow, account, amount, models.TransactionTypeWork, nil); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.startCooldown(ctx, key, WorkCooldown)

	return &models.WorkResult{Amount: amount, Account: account}, nil
}

// Search finds one item from the weighted loot table and adds it to the inventory
func (s *activityService) Search(ctx context.Context, guildID, userID int64) (*models.SearchResult, error) {
	key := models.ActionCooldown("search", guildID, userID)
	if err := s.checkCooldown(ctx, key); err != nil {
		return nil, err
	}

	item := s.pickSearchItem()

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := provision(ctx, uow, guildID, userID, ""); err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	if _, err := uow.InventoryRepository().Add(ctx, userID, item.Name, 1, item.Value); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.startCooldown(ctx, key, SearchCooldown)

	return &models.SearchResult{
		ItemName:  item.Name,
		Emoji:     item.Emoji,
		UnitValue: item.Value,
	}, nil
}

func (s *activityService) checkCooldown(ctx context.Context, key models.CooldownKey) error {
	status, err := s.cooldowns.Check(ctx, key)
	if err != nil {
		return err
	}
	if status.OnCooldown {
		return &CooldownError{Action: key.Action, Remaining: status.Remaining}
	}
	return nil
}

// startCooldown runs after the commit; the reward is already booked, so a failure only loses the gate
func (s *activityService) startCooldown(ctx context.Context, key models.CooldownKey, d time.Duration) {
	if err := s.cooldowns.Set(ctx, key, d); err != nil {
		log.WithFields(log.Fields{
			"action":   key.Action,
			"guild_id": key.GuildID,
			"user_id":  key.UserID,
			"error":    err,
		}).Warn("Failed to start activity cooldown")
	}
}

func (s *activityService) pickSearchItem() SearchItem {
	total := 0
	for _, item := range SearchItems {
		total += item.Weight
	}

	roll := s.rng.IntN(total)
	for _, item := range SearchItems {
		if roll < item.Weight {
			return item
		}
		roll -= item.Weight
	}
	return SearchItems[0]
}

// Rob tries to steal from another user's hand. The cooldown starts before the roll,
// so a failed attempt still costs the robber their turn.
func (s *activityService) Rob(ctx context.Context, guildID, robberID, victimID int64) (*models.RobResult, error) {
	if robberID == victimID {
		return nil, ErrSelfRob
	}

	key := models.ActionCooldown("rob", guildID, robberID)
	if err := s.checkCooldown(ctx, key); err != nil {
		return nil, err
	}

	victim, err := s.account(ctx, guildID, victimID)
	if err != nil {
		return nil, err
	}
	if victim.Balance < s.config.RobMinVictimWealth {
		return nil, ErrVictimTooPoor
	}

	if err := s.cooldowns.Set(ctx, key, RobCooldown); err != nil {
		return nil, err
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	robber, err := provision(ctx, uow, guildID, robberID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	result := &models.RobResult{}
	if s.rng.Float64() < 0.5 {
		locked, err := lockAccounts(ctx, uow, robberID, victimID)
		if err != nil {
			return nil, err
		}
		victim = locked[victimID]
		maxSteal := victim.Balance * 3 / 4
		if maxSteal < 1 {
			return nil, ErrVictimTooPoor
		}
		stolen := 1 + int64(s.rng.IntN(int(maxSteal)))

		victim, err = uow.AccountRepository().DeductHand(ctx, victimID, stolen)
		if err != nil {
			return nil, fmt.Errorf("failed to take stolen coins: %w", err)
		}
		if victim == nil {
			return nil, ErrVictimTooPoor
		}
		robber, err = uow.AccountRepository().AddHand(ctx, robberID, stolen)
		if err != nil {
			return nil, fmt.Errorf("failed to credit stolen coins: %w", err)
		}

		if err := recordHand(ctx, uow, victim, -stolen, models.TransactionTypeRobbery, map[string]any{"robber_user_id": robberID}); err != nil {
			return nil, err
		}
		if err := recordHand(ctx, uow, robber, stolen, models.TransactionTypeRobbery, map[string]any{"victim_user_id": victimID}); err != nil {
			return nil, err
		}

		result.Success = true
		result.Stolen = stolen
	} else {
		fine := min(RobFines[s.rng.IntN(len(RobFines))], max(robber.Balance, 0))
		if fine > 0 {
			robber, err = uow.AccountRepository().DeductHand(ctx, robberID, fine)
			if err != nil {
				return nil, fmt.Errorf("failed to collect fine: %w", err)
			}
			if robber == nil {
				return nil, ErrInsufficientFunds
			}
			if err := recordHand(ctx, uow, robber, -fine, models.TransactionTypeRobberyFine, map[string]any{"victim_user_id": victimID}); err != nil {
				return nil, err
			}
		}
		result.Fine = fine
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result.Robber = robber
	return result, nil
}

func (s *activityService) account(ctx context.Context, guildID, userID int64) (*models.Account, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := provision(ctx, uow, guildID, userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return account, nil
}
