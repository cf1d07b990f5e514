package service

import (
	"context"
	"time"

	"overbank/events"
	"overbank/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) account(args mock.Arguments) (*models.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	return m.account(m.Called(ctx, userID))
}

func (m *MockAccountRepository) GetForUpdate(ctx context.Context, userID int64) (*models.Account, error) {
	return m.account(m.Called(ctx, userID))
}

func (m *MockAccountRepository) GetOrCreate(ctx context.Context, userID int64, username string) (*models.Account, bool, error) {
	args := m.Called(ctx, userID, username)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Account), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepository) AddHand(ctx context.Context, userID int64, delta int64) (*models.Account, error) {
	return m.account(m.Called(ctx, userID, delta))
}

func (m *MockAccountRepository) DeductHand(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	return m.account(m.Called(ctx, userID, amount))
}

func (m *MockAccountRepository) MoveHandToBank(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	return m.account(m.Called(ctx, userID, amount))
}

func (m *MockAccountRepository) MoveBankToHand(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	return m.account(m.Called(ctx, userID, amount))
}

func (m *MockAccountRepository) AddBank(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	return m.account(m.Called(ctx, userID, amount))
}

func (m *MockAccountRepository) DeductBank(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	return m.account(m.Called(ctx, userID, amount))
}

func (m *MockAccountRepository) SetBalances(ctx context.Context, userID int64, hand, bank int64) (*models.Account, error) {
	return m.account(m.Called(ctx, userID, hand, bank))
}

func (m *MockAccountRepository) ClaimDaily(ctx context.Context, userID int64, amount int64, interval time.Duration) (*models.Account, error) {
	return m.account(m.Called(ctx, userID, amount, interval))
}

func (m *MockAccountRepository) GetTop(ctx context.Context, limit int) ([]*models.Account, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockCooldownRepository is a mock implementation of CooldownRepository
type MockCooldownRepository struct {
	mock.Mock
}

func (m *MockCooldownRepository) Get(ctx context.Context, userID int64, category models.CooldownCategory, action string) (*models.CooldownEntry, error) {
	args := m.Called(ctx, userID, category, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CooldownEntry), args.Error(1)
}

func (m *MockCooldownRepository) Set(ctx context.Context, userID int64, category models.CooldownCategory, action string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, category, action, expiresAt)
	return args.Error(0)
}

// MockInventoryRepository is a mock implementation of InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) Add(ctx context.Context, userID int64, itemName string, quantity int, unitValue int64) (*models.InventoryItem, error) {
	args := m.Called(ctx, userID, itemName, quantity, unitValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) GetByUser(ctx context.Context, userID int64) ([]*models.InventoryItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) DeleteAllByUser(ctx context.Context, userID int64) ([]*models.InventoryItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryItem), args.Error(1)
}

// MockCoinflipRepository is a mock implementation of CoinflipRepository
type MockCoinflipRepository struct {
	mock.Mock
}

func (m *MockCoinflipRepository) round(args mock.Arguments) (*models.CoinflipRound, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CoinflipRound), args.Error(1)
}

func (m *MockCoinflipRepository) Create(ctx context.Context, round *models.CoinflipRound) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockCoinflipRepository) GetActiveByChannel(ctx context.Context, channelID int64) (*models.CoinflipRound, error) {
	return m.round(m.Called(ctx, channelID))
}

func (m *MockCoinflipRepository) GetActiveByChannelForUpdate(ctx context.Context, channelID int64) (*models.CoinflipRound, error) {
	return m.round(m.Called(ctx, channelID))
}

func (m *MockCoinflipRepository) AddParticipant(ctx context.Context, roundID int64, userID int64) (*models.CoinflipRound, error) {
	return m.round(m.Called(ctx, roundID, userID))
}

func (m *MockCoinflipRepository) Complete(ctx context.Context, roundID int64, winnerID int64) error {
	args := m.Called(ctx, roundID, winnerID)
	return args.Error(0)
}

func (m *MockCoinflipRepository) Close(ctx context.Context, roundID int64) error {
	args := m.Called(ctx, roundID)
	return args.Error(0)
}

func (m *MockCoinflipRepository) GetStaleActive(ctx context.Context, cutoff time.Time) ([]*models.CoinflipRound, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CoinflipRound), args.Error(1)
}

// MockLoanRepository is a mock implementation of LoanRepository
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) loan(args mock.Arguments) (*models.Loan, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoanRepository) Get(ctx context.Context, userID int64) (*models.Loan, error) {
	return m.loan(m.Called(ctx, userID))
}

func (m *MockLoanRepository) GetForUpdate(ctx context.Context, userID int64) (*models.Loan, error) {
	return m.loan(m.Called(ctx, userID))
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) UpdateRemaining(ctx context.Context, userID int64, remaining int64) error {
	args := m.Called(ctx, userID, remaining)
	return args.Error(0)
}

func (m *MockLoanRepository) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork.
// Repositories are plain fields so tests only wire the ones they use.
type MockUnitOfWork struct {
	mock.Mock

	Accounts  *MockAccountRepository
	History   *MockBalanceHistoryRepository
	Cooldowns *MockCooldownRepository
	Inventory *MockInventoryRepository
	Coinflips *MockCoinflipRepository
	Loans     *MockLoanRepository
	Events    *MockEventPublisher
}

// NewMockUnitOfWork returns a unit of work with a fresh mock for every repository
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		Accounts:  new(MockAccountRepository),
		History:   new(MockBalanceHistoryRepository),
		Cooldowns: new(MockCooldownRepository),
		Inventory: new(MockInventoryRepository),
		Coinflips: new(MockCoinflipRepository),
		Loans:     new(MockLoanRepository),
		Events:    new(MockEventPublisher),
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository             { return m.Accounts }
func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository { return m.History }
func (m *MockUnitOfWork) CooldownRepository() CooldownRepository           { return m.Cooldowns }
func (m *MockUnitOfWork) InventoryRepository() InventoryRepository         { return m.Inventory }
func (m *MockUnitOfWork) CoinflipRepository() CoinflipRepository           { return m.Coinflips }
func (m *MockUnitOfWork) LoanRepository() LoanRepository                   { return m.Loans }
func (m *MockUnitOfWork) EventBus() EventPublisher                         { return m.Events }

// AssertRepositories asserts the expectations of every repository mock
func (m *MockUnitOfWork) AssertRepositories(t mock.TestingT) {
	m.AssertExpectations(t)
	m.Accounts.AssertExpectations(t)
	m.History.AssertExpectations(t)
	m.Cooldowns.AssertExpectations(t)
	m.Inventory.AssertExpectations(t)
	m.Coinflips.AssertExpectations(t)
	m.Loans.AssertExpectations(t)
	m.Events.AssertExpectations(t)
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) CreateForGuild(guildID int64) UnitOfWork {
	args := m.Called(guildID)
	return args.Get(0).(UnitOfWork)
}

// MockCooldownService is a mock implementation of CooldownService
type MockCooldownService struct {
	mock.Mock
}

func (m *MockCooldownService) Check(ctx context.Context, key models.CooldownKey) (CooldownStatus, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(CooldownStatus), args.Error(1)
}

func (m *MockCooldownService) Set(ctx context.Context, key models.CooldownKey, duration time.Duration) error {
	args := m.Called(ctx, key, duration)
	return args.Error(0)
}

func (m *MockCooldownService) Acquire(ctx context.Context, key models.CooldownKey, duration time.Duration) error {
	args := m.Called(ctx, key, duration)
	return args.Error(0)
}
