package service

import (
	"context"
	"testing"

	"overbank/config"
	"overbank/events"
	"overbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTotalRepayment(t *testing.T) {
	assert.Equal(t, int64(1150), TotalRepayment(1000, 15))
	assert.Equal(t, int64(2875), TotalRepayment(2500, 15))
	// Floored
	assert.Equal(t, int64(1), TotalRepayment(1, 15))
	assert.Equal(t, int64(114), TotalRepayment(99, 15))
	assert.Equal(t, int64(500), TotalRepayment(500, 0))
}

func TestLoanService_TakeLoan(t *testing.T) {
	ctx := context.Background()
	factory, uow := newTestUnitOfWork(ctx, true)
	svc := NewLoanService(factory, config.NewTestConfig())

	expectExisting(ctx, uow, testAccount(testUserID, 0, 0))
	uow.Loans.On("Get", ctx, testUserID).Return(nil, nil)
	uow.Loans.On("Create", ctx, mock.MatchedBy(func(l *models.Loan) bool {
		return l.LoanAmount == 1000 && l.TotalRepayment == 1150 && l.RemainingBalance == 1150
	})).Return(nil)
	uow.Accounts.On("AddBank", ctx, testUserID, int64(1000)).Return(testAccount(testUserID, 0, 1000), nil)
	uow.History.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.Purse == models.PurseBank && h.ChangeAmount == 1000 && h.TransactionType == models.TransactionTypeLoanIssued
	})).Return(nil)
	uow.Events.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()
	uow.Events.On("Publish", events.LoanTakenEvent{
		GuildID:        testGuildID,
		UserID:         testUserID,
		Principal:      1000,
		TotalRepayment: 1150,
	}).Return()

	loan, err := svc.TakeLoan(ctx, testGuildID, testUserID, 1000)

	require.NoError(t, err)
	assert.Equal(t, int64(1150), loan.RemainingBalance)
	uow.AssertRepositories(t)
}

func TestLoanService_TakeLoan_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("out of range", func(t *testing.T) {
		svc := NewLoanService(new(MockUnitOfWorkFactory), config.NewTestConfig())
		for _, principal := range []int64{0, -1, 2501} {
			_, err := svc.TakeLoan(ctx, testGuildID, testUserID, principal)
			assert.ErrorIs(t, err, ErrInvalidLoanAmount, "principal %d", principal)
		}
	})

	t.Run("already outstanding", func(t *testing.T) {
		factory, uow := newTestUnitOfWork(ctx, false)
		svc := NewLoanService(factory, config.NewTestConfig())

		expectExisting(ctx, uow, testAccount(testUserID, 0, 0))
		uow.Loans.On("Get", ctx, testUserID).Return(&models.Loan{UserID: testUserID, RemainingBalance: 10}, nil)

		_, err := svc.TakeLoan(ctx, testGuildID, testUserID, 100)

		assert.ErrorIs(t, err, ErrLoanOutstanding)
		uow.Accounts.AssertNotCalled(t, "AddBank", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLoanService_RepayLoan(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewTestConfig()

	tests := []struct {
		name          string
		remaining     int64
		bank          int64
		amount        int64
		wantRepaid    int64
		wantRemaining int64
	}{
		{name: "partial", remaining: 1150, bank: 2000, amount: 150, wantRepaid: 150, wantRemaining: 1000},
		{name: "exact", remaining: 1150, bank: 2000, amount: 1150, wantRepaid: 1150, wantRemaining: 0},
		{name: "over repay clamps", remaining: 100, bank: 2000, amount: 500, wantRepaid: 100, wantRemaining: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory, uow := newTestUnitOfWork(ctx, true)
			svc := NewLoanService(factory, cfg)

			expectExisting(ctx, uow, testAccount(testUserID, 0, tt.bank))
			uow.Loans.On("GetForUpdate", ctx, testUserID).Return(&models.Loan{UserID: testUserID, RemainingBalance: tt.remaining}, nil)
			uow.Accounts.On("GetForUpdate", ctx, testUserID).Return(testAccount(testUserID, 0, tt.bank), nil)
			uow.Accounts.On("DeductBank", ctx, testUserID, tt.wantRepaid).Return(testAccount(testUserID, 0, tt.bank-tt.wantRepaid), nil)
			if tt.wantRemaining == 0 {
				uow.Loans.On("Delete", ctx, testUserID).Return(nil)
			} else {
				uow.Loans.On("UpdateRemaining", ctx, testUserID, tt.wantRemaining).Return(nil)
			}
			expectLedgerWrites(ctx, uow)

			result, err := svc.RepayLoan(ctx, testGuildID, testUserID, tt.amount)

			require.NoError(t, err)
			assert.Equal(t, tt.wantRepaid, result.Repaid)
			assert.Equal(t, tt.wantRemaining, result.Remaining)
			assert.Equal(t, tt.wantRemaining == 0, result.FullyPaid)
			uow.Loans.AssertExpectations(t)
			uow.Accounts.AssertExpectations(t)
		})
	}
}

func TestLoanService_RepayLoan_ChecksRequestedAmount(t *testing.T) {
	ctx := context.Background()
	factory, uow := newTestUnitOfWork(ctx, false)
	svc := NewLoanService(factory, config.NewTestConfig())

	// Bank covers the debt but not the requested amount
	expectExisting(ctx, uow, testAccount(testUserID, 0, 200))
	uow.Loans.On("GetForUpdate", ctx, testUserID).Return(&models.Loan{UserID: testUserID, RemainingBalance: 100}, nil)
	uow.Accounts.On("GetForUpdate", ctx, testUserID).Return(testAccount(testUserID, 0, 200), nil)

	_, err := svc.RepayLoan(ctx, testGuildID, testUserID, 500)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	uow.Accounts.AssertNotCalled(t, "DeductBank", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoanService_RepayLoan_NoLoan(t *testing.T) {
	ctx := context.Background()
	factory, uow := newTestUnitOfWork(ctx, false)
	svc := NewLoanService(factory, config.NewTestConfig())

	expectExisting(ctx, uow, testAccount(testUserID, 0, 200))
	uow.Loans.On("GetForUpdate", ctx, testUserID).Return(nil, nil)

	_, err := svc.RepayLoan(ctx, testGuildID, testUserID, 50)

	assert.ErrorIs(t, err, ErrNoLoan)
}
