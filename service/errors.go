package service

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Domain failures. The bot reports these to the user as their own fault;
// anything else is treated as a system error.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrSelfTransfer      = errors.New("cannot transfer to yourself")
	ErrAccountNotFound   = errors.New("account not found")

	ErrLoanOutstanding   = errors.New("a loan is already outstanding")
	ErrNoLoan            = errors.New("no outstanding loan")
	ErrInvalidLoanAmount = errors.New("loan amount out of range")

	ErrEmptyInventory = errors.New("inventory is empty")

	ErrRoundActive   = errors.New("a coinflip round is already active in this channel")
	ErrNoActiveRound = errors.New("no active coinflip round in this channel")
	ErrStakeMismatch = errors.New("stake does not match the round")
	ErrAlreadyJoined = errors.New("already joined this round")

	ErrSelfRob       = errors.New("cannot rob yourself")
	ErrVictimTooPoor = errors.New("victim does not carry enough coins")
)

// DailyCooldownError is returned when the daily reward was claimed too recently
type DailyCooldownError struct {
	Remaining time.Duration
}

func (e *DailyCooldownError) Error() string {
	return fmt.Sprintf("daily reward already claimed, next claim in %s", e.Remaining.Round(time.Minute))
}

// Hours returns the whole hours left
func (e *DailyCooldownError) Hours() int {
	return int(e.Remaining / time.Hour)
}

// Minutes returns the minutes left past Hours, rounded up
func (e *DailyCooldownError) Minutes() int {
	rest := e.Remaining - time.Duration(e.Hours())*time.Hour
	return int(math.Ceil(rest.Minutes()))
}

// CooldownError is returned when an action is gated by an active cooldown
type CooldownError struct {
	Action    string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s is on cooldown for another %s", e.Action, e.Remaining.Round(time.Second))
}

// IsUserError reports whether err is a domain failure the user can act on
func IsUserError(err error) bool {
	var dailyErr *DailyCooldownError
	var cooldownErr *CooldownError
	if errors.As(err, &dailyErr) || errors.As(err, &cooldownErr) {
		return true
	}
	for _, target := range []error{
		ErrInsufficientFunds, ErrInvalidAmount, ErrSelfTransfer, ErrAccountNotFound,
		ErrLoanOutstanding, ErrNoLoan, ErrInvalidLoanAmount, ErrEmptyInventory,
		ErrRoundActive, ErrNoActiveRound, ErrStakeMismatch, ErrAlreadyJoined,
		ErrSelfRob, ErrVictimTooPoor,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
