package ledger

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/reelfaucet/internal/balance"
)

type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) Fetch(ctx context.Context, token string) (balance.Account, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(balance.Account), args.Error(1)
}

func (m *MockBalanceService) Add(ctx context.Context, token string, mut balance.Mutation) (int64, error) {
	args := m.Called(ctx, token, mut)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceService) Subtract(ctx context.Context, token string, mut balance.Mutation) (int64, error) {
	args := m.Called(ctx, token, mut)
	return args.Get(0).(int64), args.Error(1)
}
