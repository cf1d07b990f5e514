// Package gamestest provides in-memory stand-ins for the collaborators of the game engines.
package gamestest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"overbank/events"
	"overbank/models"
	"overbank/service"
)

type ledgerKey struct {
	guildID int64
	userID  int64
}

// Ledger keeps hand balances in memory and mirrors the conditional debit of the real store
type Ledger struct {
	mu       sync.Mutex
	balances map[ledgerKey]int64
	Entries  []Entry
	FailNext error
}

// Entry is one recorded ledger movement
type Entry struct {
	UserID int64
	Amount int64 // negative for escrow
	Type   models.TransactionType
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[ledgerKey]int64)}
}

// Fund sets the hand balance of a user
func (l *Ledger) Fund(guildID, userID, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[ledgerKey{guildID, userID}] = amount
}

// Balance returns the hand balance of a user
func (l *Ledger) Balance(guildID, userID int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[ledgerKey{guildID, userID}]
}

// Total returns the sum of all balances
func (l *Ledger) Total() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var total int64
	for _, b := range l.balances {
		total += b
	}
	return total
}

// Types returns the recorded transaction types in order
func (l *Ledger) Types() []models.TransactionType {
	l.mu.Lock()
	defer l.mu.Unlock()
	types := make([]models.TransactionType, len(l.Entries))
	for i, e := range l.Entries {
		types[i] = e.Type
	}
	return types
}

func (l *Ledger) Escrow(ctx context.Context, guildID, userID int64, amount int64, txType models.TransactionType) (*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.takeFailure(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, service.ErrInvalidAmount
	}

	key := ledgerKey{guildID, userID}
	if l.balances[key] < amount {
		return nil, service.ErrInsufficientFunds
	}
	l.balances[key] -= amount
	l.Entries = append(l.Entries, Entry{UserID: userID, Amount: -amount, Type: txType})
	return &models.Account{GuildID: guildID, UserID: userID, Balance: l.balances[key]}, nil
}

func (l *Ledger) Payout(ctx context.Context, guildID, userID int64, amount int64, txType models.TransactionType) (*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.takeFailure(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, service.ErrInvalidAmount
	}

	key := ledgerKey{guildID, userID}
	l.balances[key] += amount
	l.Entries = append(l.Entries, Entry{UserID: userID, Amount: amount, Type: txType})
	return &models.Account{GuildID: guildID, UserID: userID, Balance: l.balances[key]}, nil
}

func (l *Ledger) takeFailure() error {
	err := l.FailNext
	l.FailNext = nil
	return err
}

// Cooldowns is an in-memory service.CooldownService with a fixed clock
type Cooldowns struct {
	mu      sync.Mutex
	expires map[models.CooldownKey]time.Time
	Now     time.Time
}

// NewCooldowns creates a cooldown gate frozen at a fixed instant
func NewCooldowns() *Cooldowns {
	return &Cooldowns{
		expires: make(map[models.CooldownKey]time.Time),
		Now:     time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (c *Cooldowns) Check(ctx context.Context, key models.CooldownKey) (service.CooldownStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.check(key), nil
}

func (c *Cooldowns) check(key models.CooldownKey) service.CooldownStatus {
	remaining := c.expires[key].Sub(c.Now)
	if remaining <= 0 {
		return service.CooldownStatus{}
	}
	return service.CooldownStatus{OnCooldown: true, Remaining: remaining}
}

func (c *Cooldowns) Set(ctx context.Context, key models.CooldownKey, duration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expires[key] = c.Now.Add(duration)
	return nil
}

func (c *Cooldowns) Acquire(ctx context.Context, key models.CooldownKey, duration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if status := c.check(key); status.OnCooldown {
		return &service.CooldownError{Action: key.Action, Remaining: status.Remaining}
	}
	c.expires[key] = c.Now.Add(duration)
	return nil
}

// Advance moves the clock forward
func (c *Cooldowns) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Now = c.Now.Add(d)
}

// Random replays scripted IntN results. Shuffle leaves the order untouched.
type Random struct {
	mu   sync.Mutex
	Ints []int
}

// NewRandom scripts the given IntN results
func NewRandom(ints ...int) *Random {
	return &Random{Ints: ints}
}

func (r *Random) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Ints) == 0 {
		panic("gamestest: random script exhausted")
	}
	v := r.Ints[0]
	r.Ints = r.Ints[1:]
	if v < 0 || v >= n {
		panic(fmt.Sprintf("gamestest: scripted %d outside [0, %d)", v, n))
	}
	return v
}

func (r *Random) Shuffle(n int, swap func(i, j int)) {}

// Emitter records emitted events
type Emitter struct {
	mu     sync.Mutex
	Events []events.Event
}

func (e *Emitter) Emit(ctx context.Context, event events.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Events = append(e.Events, event)
}

// Settled returns the recorded game settlements
func (e *Emitter) Settled() []events.GameSettledEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var settled []events.GameSettledEvent
	for _, ev := range e.Events {
		if s, ok := ev.(events.GameSettledEvent); ok {
			settled = append(settled, s)
		}
	}
	return settled
}
