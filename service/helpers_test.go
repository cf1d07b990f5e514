package service

import (
	"context"
	"sync"
	"time"

	"overbank/models"

	"github.com/stretchr/testify/mock"
)

const (
	testGuildID   int64 = 900000000000000001
	testUserID    int64 = 111111
	otherUserID   int64 = 222222
	testChannelID int64 = 789012
)

// scriptedRandom replays fixed rolls; it panics when a test under-scripts it
type scriptedRandom struct {
	floats []float64
	ints   []int
}

func (r *scriptedRandom) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRandom) IntN(n int) int {
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v >= n {
		panic("scripted roll out of range")
	}
	return v
}

// newTestUnitOfWork wires a mock unit of work that begins, rolls back and, when
// commit is set, commits
func newTestUnitOfWork(ctx context.Context, commit bool) (*MockUnitOfWorkFactory, *MockUnitOfWork) {
	uow := NewMockUnitOfWork()
	factory := new(MockUnitOfWorkFactory)
	factory.On("CreateForGuild", testGuildID).Return(uow)
	uow.On("Begin", ctx).Return(nil)
	uow.On("Rollback").Return(nil)
	if commit {
		uow.On("Commit").Return(nil)
	}
	return factory, uow
}

// expectExisting makes GetOrCreate return an existing account
func expectExisting(ctx context.Context, uow *MockUnitOfWork, account *models.Account) {
	uow.Accounts.On("GetOrCreate", ctx, account.UserID, "").Return(account, false, nil)
}

// expectLedgerWrites accepts any history row and any published event
func expectLedgerWrites(ctx context.Context, uow *MockUnitOfWork) {
	uow.History.On("Record", ctx, mock.Anything).Return(nil)
	uow.Events.On("Publish", mock.Anything).Return()
}

func testAccount(userID, hand, bank int64) *models.Account {
	return &models.Account{GuildID: testGuildID, UserID: userID, Balance: hand, BankBalance: bank}
}

// memoryCooldownStore is a CooldownStore for tests
type memoryCooldownStore struct {
	mu      sync.Mutex
	entries map[models.CooldownKey]time.Time
}

func newMemoryCooldownStore() *memoryCooldownStore {
	return &memoryCooldownStore{entries: make(map[models.CooldownKey]time.Time)}
}

func (s *memoryCooldownStore) Get(_ context.Context, key models.CooldownKey) (*models.CooldownEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return &models.CooldownEntry{Key: key, ExpiresAt: expiresAt}, nil
}

func (s *memoryCooldownStore) Set(_ context.Context, key models.CooldownKey, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = expiresAt
	return nil
}
