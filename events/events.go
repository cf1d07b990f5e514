package events

import (
	"context"
	"sync"

	"overbank/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange     EventType = "balance_change"
	EventTypeAccountCreated    EventType = "account_created"
	EventTypeCoinflipCompleted EventType = "coinflip_completed"
	EventTypeLoanTaken         EventType = "loan_taken"
	EventTypeLoanRepaid        EventType = "loan_repaid"
	EventTypeGameSettled       EventType = "game_settled"
)

// AllEventTypes lists every event type, used by subscribers that mirror the whole stream
var AllEventTypes = []EventType{
	EventTypeBalanceChange,
	EventTypeAccountCreated,
	EventTypeCoinflipCompleted,
	EventTypeLoanTaken,
	EventTypeLoanRepaid,
	EventTypeGameSettled,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents one purse changing
type BalanceChangeEvent struct {
	GuildID         int64                  `json:"guild_id"`
	UserID          int64                  `json:"user_id"`
	Purse           models.Purse           `json:"purse"`
	OldBalance      int64                  `json:"old_balance"`
	NewBalance      int64                  `json:"new_balance"`
	ChangeAmount    int64                  `json:"change_amount"`
	TransactionType models.TransactionType `json:"transaction_type"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent is emitted the first time a user is seen in a guild
type AccountCreatedEvent struct {
	GuildID  int64  `json:"guild_id"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// CoinflipCompletedEvent is emitted when a round is decided
type CoinflipCompletedEvent struct {
	GuildID      int64   `json:"guild_id"`
	ChannelID    int64   `json:"channel_id"`
	RoundID      int64   `json:"round_id"`
	WinnerID     int64   `json:"winner_id"`
	Pot          int64   `json:"pot"`
	Participants []int64 `json:"participants"`
}

func (e CoinflipCompletedEvent) Type() EventType {
	return EventTypeCoinflipCompleted
}

// LoanTakenEvent is emitted when a loan is issued
type LoanTakenEvent struct {
	GuildID        int64 `json:"guild_id"`
	UserID         int64 `json:"user_id"`
	Principal      int64 `json:"principal"`
	TotalRepayment int64 `json:"total_repayment"`
}

func (e LoanTakenEvent) Type() EventType {
	return EventTypeLoanTaken
}

// LoanRepaidEvent is emitted for every repayment
type LoanRepaidEvent struct {
	GuildID   int64 `json:"guild_id"`
	UserID    int64 `json:"user_id"`
	Repaid    int64 `json:"repaid"`
	Remaining int64 `json:"remaining"`
	FullyPaid bool  `json:"fully_paid"`
}

func (e LoanRepaidEvent) Type() EventType {
	return EventTypeLoanRepaid
}

// GameSettledEvent is emitted by the game engines once a wager is resolved
type GameSettledEvent struct {
	Game    string `json:"game"`
	GuildID int64  `json:"guild_id"`
	UserID  int64  `json:"user_id"`
	Wager   int64  `json:"wager"`
	Payout  int64  `json:"payout"`
	Outcome string `json:"outcome"`
}

func (e GameSettledEvent) Type() EventType {
	return EventTypeGameSettled
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Emitter publishes events immediately, outside of any transaction
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes {
		b.Subscribe(eventType, handler)
	}
}

// Emit publishes an event to all registered handlers.
// Handlers run on their own goroutines; a panicking handler is logged and dropped.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until it commits
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes e until Flush
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Pending returns the events waiting for commit
func (b *TransactionalBus) Pending() []Event {
	return b.pending
}

// Flush hands pending events to the real bus; called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}

	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing committed events")

	// The transaction context may already be cancelled; handlers get their own
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range b.pending {
		if b.real != nil {
			b.real.Emit(eventCtx, ev)
		}
	}
	b.pending = nil
	return nil
}

// Discard drops pending events; called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
