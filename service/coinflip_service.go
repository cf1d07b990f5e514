package service

import (
	"context"
	"fmt"
	"time"

	"overbank/events"
	"overbank/models"

	log "github.com/sirupsen/logrus"
)

// coinflipParticipants is the number of players that fills a round
const coinflipParticipants = 2

type coinflipService struct {
	uowFactory UnitOfWorkFactory
	rng        Random
	now        func() time.Time
}

// NewCoinflipService creates a new coinflip service
func NewCoinflipService(uowFactory UnitOfWorkFactory) CoinflipService {
	return &coinflipService{
		uowFactory: uowFactory,
		rng:        defaultRandom{},
		now:        time.Now,
	}
}

func (s *coinflipService) Start(ctx context.Context, guildID, channelID, userID int64, amount int64) (*models.CoinflipRound, error) {
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

	active, err := uow.CoinflipRepository().GetActiveByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrRoundActive
	}

	account, err := uow.AccountRepository().DeductHand(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to escrow stake: %w", err)
	}
	if account == nil {
		return nil, ErrInsufficientFunds
	}

	round := &models.CoinflipRound{
		ChannelID:    channelID,
		CreatorID:    userID,
		Amount:       amount,
		Participants: []int64{userID},
	}
	// The partial unique index rejects a round created concurrently; the escrow rolls back with it
	if err := uow.CoinflipRepository().Create(ctx, round); err != nil {
		return nil, err
	}

	if err := recordHand(ctx, uow, account, -amount, models.TransactionTypeCoinflipEscrow, map[string]any{
		"round_id": round.ID,
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id":   guildID,
		"channel_id": channelID,
		"round_id":   round.ID,
		"amount":     amount,
	}).Info("Coinflip round started")

	return round, nil
}

// Join validates and escrows inside one transaction, so a failure after the escrow
// leaves no trace and needs no explicit refund.
func (s *coinflipService) Join(ctx context.Context, guildID, channelID, userID int64, amount int64) (*models.CoinflipJoinResult, error) {
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

	round, err := uow.CoinflipRepository().GetActiveByChannelForUpdate(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, ErrNoActiveRound
	}
	if round.HasParticipant(userID) {
		return nil, ErrAlreadyJoined
	}
	if amount != round.Amount {
		return nil, ErrStakeMismatch
	}

	account, err := uow.AccountRepository().DeductHand(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to escrow stake: %w", err)
	}
	if account == nil {
		return nil, ErrInsufficientFunds
	}
	if err := recordHand(ctx, uow, account, -amount, models.TransactionTypeCoinflipEscrow, map[string]any{
		"round_id": round.ID,
	}); err != nil {
		return nil, err
	}

	round, err = uow.CoinflipRepository().AddParticipant(ctx, round.ID, userID)
	if err != nil {
		return nil, err
	}

	result := &models.CoinflipJoinResult{Round: round}
	if len(round.Participants) >= coinflipParticipants {
		winnerID, err := s.complete(ctx, uow, guildID, round)
		if err != nil {
			return nil, err
		}
		result.Completed = true
		result.WinnerID = winnerID
		result.Pot = round.Pot()
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// complete picks a uniform winner, pays the pot and closes the round.
// Rounds with fewer than two participants are left untouched.
func (s *coinflipService) complete(ctx context.Context, uow UnitOfWork, guildID int64, round *models.CoinflipRound) (int64, error) {
	if len(round.Participants) < coinflipParticipants {
		return 0, nil
	}

	winnerID := round.Participants[s.rng.IntN(len(round.Participants))]
	pot := round.Pot()

	account, err := uow.AccountRepository().AddHand(ctx, winnerID, pot)
	if err != nil {
		return 0, fmt.Errorf("failed to pay coinflip winner: %w", err)
	}
	if err := recordHand(ctx, uow, account, pot, models.TransactionTypeCoinflipPayout, map[string]any{
		"round_id": round.ID,
	}); err != nil {
		return 0, err
	}

	if err := uow.CoinflipRepository().Complete(ctx, round.ID, winnerID); err != nil {
		return 0, err
	}

	round.IsActive = false
	round.WinnerID = &winnerID

	uow.EventBus().Publish(events.CoinflipCompletedEvent{
		GuildID:      guildID,
		ChannelID:    round.ChannelID,
		RoundID:      round.ID,
		WinnerID:     winnerID,
		Pot:          pot,
		Participants: round.Participants,
	})

	return winnerID, nil
}

func (s *coinflipService) Active(ctx context.Context, guildID, channelID int64) (*models.CoinflipRound, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.CoinflipRepository().GetActiveByChannel(ctx, channelID)
}

// ExpireStale refunds every participant of rounds older than olderThan and closes them
func (s *coinflipService) ExpireStale(ctx context.Context, guildID int64, olderThan time.Duration) (int, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rounds, err := uow.CoinflipRepository().GetStaleActive(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	for _, round := range rounds {
		for _, participantID := range round.Participants {
			account, err := uow.AccountRepository().AddHand(ctx, participantID, round.Amount)
			if err != nil {
				return 0, fmt.Errorf("failed to refund participant %d of round %d: %w", participantID, round.ID, err)
			}
			if err := recordHand(ctx, uow, account, round.Amount, models.TransactionTypeCoinflipRefund, map[string]any{
				"round_id": round.ID,
			}); err != nil {
				return 0, err
			}
		}

		if err := uow.CoinflipRepository().Close(ctx, round.ID); err != nil {
			return 0, err
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if len(rounds) > 0 {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"expired":  len(rounds),
		}).Info("Expired stale coinflip rounds")
	}

	return len(rounds), nil
}
