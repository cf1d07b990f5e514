package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"overbank/config"
	"overbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestActivityService(factory UnitOfWorkFactory, cooldowns CooldownService, rng Random) *activityService {
	svc := NewActivityService(factory, cooldowns, config.NewTestConfig()).(*activityService)
	svc.rng = rng
	return svc
}

func TestActivityService_Work(t *testing.T) {
	ctx := context.Background()
	workKey := models.ActionCooldown("work", testGuildID, testUserID)

	t.Run("good shift", func(t *testing.T) {
		factory, uow := newTestUnitOfWork(ctx, true)
		cooldowns := new(MockCooldownService)
		cooldowns.On("Check", ctx, workKey).Return(CooldownStatus{}, nil)
		cooldowns.On("Set", ctx, workKey, WorkCooldown).Return(nil)
		svc := newTestActivityService(factory, cooldowns, &scriptedRandom{floats: []float64{0.3}, ints: []int{80}})

		expectExisting(ctx, uow, testAccount(testUserID, 100, 0))
		uow.Accounts.On("AddHand", ctx, testUserID, int64(110)).Return(testAccount(testUserID, 210, 0), nil)
		expectLedgerWrites(ctx, uow)

		result, err := svc.Work(ctx, testGuildID, testUserID)

		require.NoError(t, err)
		assert.Equal(t, int64(110), result.Amount)
		assert.Equal(t, int64(210), result.Account.Balance)
	})

	t.Run("bad shift clamps to hand", func(t *testing.T) {
		factory, uow := newTestUnitOfWork(ctx, true)
		cooldowns := new(MockCooldownService)
		cooldowns.On("Check", ctx, workKey).Return(CooldownStatus{}, nil)
		cooldowns.On("Set", ctx, workKey, WorkCooldown).Return(nil)
		svc := newTestActivityService(factory, cooldowns, &scriptedRandom{floats: []float64{0.9}, ints: []int{60}})

		expectExisting(ctx, uow, testAccount(testUserID, 25, 0))
		uow.Accounts.On("DeductHand", ctx, testUserID, int64(25)).Return(testAccount(testUserID, 0, 0), nil)
		expectLedgerWrites(ctx, uow)

		result, err := svc.Work(ctx, testGuildID, testUserID)

		require.NoError(t, err)
		assert.Equal(t, int64(-25), result.Amount)
		assert.Equal(t, int64(0), result.Account.Balance)
	})

	t.Run("bad shift with empty hand", func(t *testing.T) {
		factory, uow := newTestUnitOfWork(ctx, true)
		cooldowns := new(MockCooldownService)
		cooldowns.On("Check", ctx, workKey).Return(CooldownStatus{}, nil)
		cooldowns.On("Set", ctx, workKey, WorkCooldown).Return(nil)
		svc := newTestActivityService(factory, cooldowns, &scriptedRandom{floats: []float64{0.9}, ints: []int{0}})

		expectExisting(ctx, uow, testAccount(testUserID, 0, 500))

		result, err := svc.Work(ctx, testGuildID, testUserID)

		require.NoError(t, err)
		assert.Zero(t, result.Amount)
		uow.History.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("on cooldown", func(t *testing.T) {
		cooldowns := new(MockCooldownService)
		cooldowns.On("Check", ctx, workKey).Return(CooldownStatus{OnCooldown: true, Remaining: time.Minute}, nil)
		svc := newTestActivityService(new(MockUnitOfWorkFactory), cooldowns, &scriptedRandom{})

		_, err := svc.Work(ctx, testGuildID, testUserID)

		var cooldownErr *CooldownError
		require.ErrorAs(t, err, &cooldownErr)
		assert.Equal(t, "work", cooldownErr.Action)
		assert.Equal(t, time.Minute, cooldownErr.Remaining)
	})

	t.Run("storage failure keeps cooldown free", func(t *testing.T) {
		factory, uow := newTestUnitOfWork(ctx, false)
		cooldowns := new(MockCooldownService)
		cooldowns.On("Check", ctx, workKey).Return(CooldownStatus{}, nil)
		svc := newTestActivityService(factory, cooldowns, &scriptedRandom{floats: []float64{0.3}, ints: []int{80}})

		expectExisting(ctx, uow, testAccount(testUserID, 100, 0))
		uow.Accounts.On("AddHand", ctx, testUserID, int64(110)).Return(nil, errors.New("connection reset"))

		_, err := svc.Work(ctx, testGuildID, testUserID)

		require.Error(t, err)
		cooldowns.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed commit keeps cooldown free", func(t *testing.T) {
		factory, uow := newTestUnitOfWork(ctx, false)
		uow.On("Commit").Return(errors.New("serialization failure"))
		cooldowns := new(MockCooldownService)
		cooldowns.On("Check", ctx, workKey).Return(CooldownStatus{}, nil)
		svc := newTestActivityService(factory, cooldowns, &scriptedRandom{floats: []float64{0.3}, ints: []int{80}})

		expectExisting(ctx, uow, testAccount(testUserID, 100, 0))
		uow.Accounts.On("AddHand", ctx, testUserID, int64(110)).Return(testAccount(testUserID, 210, 0), nil)
		expectLedgerWrites(ctx, uow)

		_, err := svc.Work(ctx, testGuildID, testUserID)

		require.Error(t, err)
		cooldowns.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestActivityService_PickSearchItem(t *testing.T) {
	total := 0
	for _, item := range SearchItems {
		total += item.Weight
	}
	require.Equal(t, 100, total)

	tests := []struct {
		roll int
		want string
	}{
		{roll: 0, want: "Old Mouse"},
		{roll: 24, want: "Old Mouse"},
		{roll: 25, want: "Mechanical Keyboard"},
		{roll: 60, want: "32GB Flash Drive"},
		{roll: 94, want: "Broken Laptop"},
		{roll: 99, want: "Power Supply"},
	}
	for _, tt := range tests {
		svc := newTestActivityService(nil, nil, &scriptedRandom{ints: []int{tt.roll}})
		assert.Equal(t, tt.want, svc.pickSearchItem().Name, "roll %d", tt.roll)
	}
}

func TestActivityService_Search(t *testing.T) {
	ctx := context.Background()
	searchKey := models.ActionCooldown("search", testGuildID, testUserID)

	t.Run("finds an item", func(t *testing.T) {
		factory, uow := newTestUnitOfWork(ctx, true)
		cooldowns := new(MockCooldownService)
		cooldowns.On("Check", ctx, searchKey).Return(CooldownStatus{}, nil)
		cooldowns.On("Set", ctx, searchKey, SearchCooldown).Return(nil)
		svc := newTestActivityService(factory, cooldowns, &scriptedRandom{ints: []int{87}})

		expectExisting(ctx, uow, testAccount(testUserID, 0, 0))
		uow.Inventory.On("Add", ctx, testUserID, "Old Graphics Card", 1, int64(250)).
			Return(&models.InventoryItem{UserID: testUserID, ItemName: "Old Graphics Card", Quantity: 1, UnitValue: 250}, nil)

		result, err := svc.Search(ctx, testGuildID, testUserID)

		require.NoError(t, err)
		assert.Equal(t, "Old Graphics Card", result.ItemName)
		assert.Equal(t, int64(250), result.UnitValue)
		uow.Inventory.AssertExpectations(t)
		cooldowns.AssertExpectations(t)
	})

	t.Run("storage failure keeps cooldown free", func(t *testing.T) {
		factory, uow := newTestUnitOfWork(ctx, false)
		cooldowns := new(MockCooldownService)
		cooldowns.On("Check", ctx, searchKey).Return(CooldownStatus{}, nil)
		svc := newTestActivityService(factory, cooldowns, &scriptedRandom{ints: []int{0}})

		expectExisting(ctx, uow, testAccount(testUserID, 0, 0))
		uow.Inventory.On("Add", ctx, testUserID, "Old Mouse", 1, int64(50)).Return(nil, errors.New("connection reset"))

		_, err := svc.Search(ctx, testGuildID, testUserID)

		require.Error(t, err)
		cooldowns.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestActivityService_Rob(t *testing.T) {
	ctx := context.Background()
	robKey := models.ActionCooldown("rob", testGuildID, testUserID)

	t.Run("self", func(t *testing.T) {
		svc := newTestActivityService(nil, nil, nil)
		_, err := svc.Rob(ctx, testGuildID, testUserID, testUserID)
		assert.ErrorIs(t, err, ErrSelfRob)
	})

	t.Run("victim too poor keeps cooldown free", func(t *testing.T) {
		factory, uow := newTestUnitOfWork(ctx, true)
		cooldowns := new(MockCooldownService)
		cooldowns.On("Check", ctx, robKey).Return(CooldownStatus{}, nil)
		svc := newTestActivityService(factory, cooldowns, &scriptedRandom{})

		expectExisting(ctx, uow, testAccount(otherUserID, 249, 10000))

		_, err := svc.Rob(ctx, testGuildID, testUserID, otherUserID)

		assert.ErrorIs(t, err, ErrVictimTooPoor)
		cooldowns.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		factory, uow := newTestUnitOfWork(ctx, true)
		cooldowns := new(MockCooldownService)
		cooldowns.On("Check", ctx, robKey).Return(CooldownStatus{}, nil)
		cooldowns.On("Set", ctx, robKey, RobCooldown).Return(nil)
		// floor(0.75 * 400) = 300, roll 199 steals 200
		svc := newTestActivityService(factory, cooldowns, &scriptedRandom{floats: []float64{0.2}, ints: []int{199}})

		expectExisting(ctx, uow, testAccount(otherUserID, 400, 0))
		expectExisting(ctx, uow, testAccount(testUserID, 50, 0))
		uow.Accounts.On("GetForUpdate", ctx, testUserID).Return(testAccount(testUserID, 50, 0), nil)
		uow.Accounts.On("GetForUpdate", ctx, otherUserID).Return(testAccount(otherUserID, 400, 0), nil)
		uow.Accounts.On("DeductHand", ctx, otherUserID, int64(200)).Return(testAccount(otherUserID, 200, 0), nil)
		uow.Accounts.On("AddHand", ctx, testUserID, int64(200)).Return(testAccount(testUserID, 250, 0), nil)
		expectLedgerWrites(ctx, uow)

		result, err := svc.Rob(ctx, testGuildID, testUserID, otherUserID)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, int64(200), result.Stolen)
		assert.Equal(t, int64(250), result.Robber.Balance)
		uow.History.AssertNumberOfCalls(t, "Record", 2)
		cooldowns.AssertExpectations(t)
	})

	t.Run("failure fine clamps to hand", func(t *testing.T) {
		factory, uow := newTestUnitOfWork(ctx, true)
		cooldowns := new(MockCooldownService)
		cooldowns.On("Check", ctx, robKey).Return(CooldownStatus{}, nil)
		cooldowns.On("Set", ctx, robKey, RobCooldown).Return(nil)
		svc := newTestActivityService(factory, cooldowns, &scriptedRandom{floats: []float64{0.7}, ints: []int{3}})

		expectExisting(ctx, uow, testAccount(otherUserID, 400, 0))
		expectExisting(ctx, uow, testAccount(testUserID, 120, 0))
		uow.Accounts.On("DeductHand", ctx, testUserID, int64(120)).Return(testAccount(testUserID, 0, 0), nil)
		expectLedgerWrites(ctx, uow)

		result, err := svc.Rob(ctx, testGuildID, testUserID, otherUserID)

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, int64(120), result.Fine)
		assert.Equal(t, int64(0), result.Robber.Balance)
		cooldowns.AssertExpectations(t)
	})

	t.Run("on cooldown", func(t *testing.T) {
		cooldowns := new(MockCooldownService)
		cooldowns.On("Check", ctx, robKey).Return(CooldownStatus{OnCooldown: true, Remaining: 3 * time.Minute}, nil)
		svc := newTestActivityService(nil, cooldowns, nil)

		_, err := svc.Rob(ctx, testGuildID, testUserID, otherUserID)

		var cooldownErr *CooldownError
		require.ErrorAs(t, err, &cooldownErr)
		assert.Equal(t, 3*time.Minute, cooldownErr.Remaining)
	})
}
